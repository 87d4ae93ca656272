package middleware

import (
	"reflect"
	"testing"
)

func TestAllowedOrigins(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty", "", []string{"http://localhost:3000"}},
		{"single", "https://app.example.com", []string{"http://localhost:3000", "https://app.example.com"}},
		{
			"multiple with whitespace",
			"https://app.example.com, https://staging.example.com",
			[]string{"http://localhost:3000", "https://app.example.com", "https://staging.example.com"},
		},
		{"duplicate default", "http://localhost:3000", []string{"http://localhost:3000"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AllowedOrigins(tt.input); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("AllowedOrigins(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
