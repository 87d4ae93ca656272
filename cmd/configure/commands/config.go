package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/convoly/chat-api/internal/config"
)

// configView is the YAML shape printed by the config command. The shared
// secret is redacted; everything else is safe to echo.
type configView struct {
	ServerPort  string `yaml:"server_port"`
	BaseURL     string `yaml:"base_url"`
	FrontendURL string `yaml:"frontend_url"`

	JWTSecret       string `yaml:"jwt_secret"`
	JWKSURL         string `yaml:"jwks_url,omitempty"`
	JWTAudience     string `yaml:"jwt_audience,omitempty"`
	JWTIssuer       string `yaml:"jwt_issuer,omitempty"`
	JWKSCacheMaxAge string `yaml:"jwks_cache_max_age"`

	RateLimitWindow        string `yaml:"rate_limit_window"`
	RateLimitMax           int    `yaml:"rate_limit_max"`
	RateLimitMaxChat       int    `yaml:"rate_limit_max_chat"`
	RateLimitSweepInterval string `yaml:"rate_limit_sweep_interval"`

	TelemetrySink string `yaml:"telemetry_sink"`
	OTELEnabled   bool   `yaml:"otel_enabled"`
}

// NewConfigCmd creates the config command
func NewConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the effective gateway configuration",
		Long:  "Load configuration from the environment, validate it, and print the effective values as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			view := configView{
				ServerPort:             cfg.ServerPort,
				BaseURL:                cfg.BaseURL,
				FrontendURL:            cfg.FrontendURL,
				JWKSURL:                cfg.JWKSURL,
				JWTAudience:            cfg.JWTAudience,
				JWTIssuer:              cfg.JWTIssuer,
				JWKSCacheMaxAge:        cfg.JWKSCacheMaxAge.String(),
				RateLimitWindow:        cfg.RateLimitWindow.String(),
				RateLimitMax:           cfg.RateLimitMax,
				RateLimitMaxChat:       cfg.RateLimitMaxChat,
				RateLimitSweepInterval: cfg.RateLimitSweepInterval.String(),
				TelemetrySink:          cfg.TelemetrySink,
				OTELEnabled:            cfg.OTELEnabled,
			}
			if cfg.JWTSecret != "" {
				view.JWTSecret = "[redacted]"
			}

			out, err := yaml.Marshal(view)
			if err != nil {
				return fmt.Errorf("failed to render config: %w", err)
			}
			_, _ = os.Stdout.Write(out)
			return nil
		},
	}
}
