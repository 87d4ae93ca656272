package commands

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/convoly/chat-api/internal/config"
)

// NewStatsCmd creates the stats command
func NewStatsCmd() *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Fetch admission throttle stats from a running gateway",
		Long:  "Call GET /rate-limit/stats on the configured base URL with an admin bearer token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if token == "" {
				return fmt.Errorf("--token is required")
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			url := cfg.BaseURL + "/rate-limit/stats"
			req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, url, nil)
			if err != nil {
				return fmt.Errorf("failed to build request: %w", err)
			}
			req.Header.Set("Authorization", "Bearer "+token)

			client := &http.Client{Timeout: 10 * time.Second}
			resp, err := client.Do(req)
			if err != nil {
				return fmt.Errorf("failed to reach gateway: %w", err)
			}
			defer func() {
				if err := resp.Body.Close(); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: failed to close response body: %v\n", err)
				}
			}()

			body, err := io.ReadAll(resp.Body)
			if err != nil {
				return fmt.Errorf("failed to read response: %w", err)
			}
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("gateway returned status %d: %s", resp.StatusCode, string(body))
			}

			fmt.Println(string(body))
			return nil
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "Admin bearer token (required)")

	return cmd
}
