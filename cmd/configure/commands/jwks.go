package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/spf13/cobra"

	"github.com/convoly/chat-api/internal/config"
)

// NewJWKSCmd creates the jwks command
func NewJWKSCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "jwks",
		Short: "Probe the configured key set endpoint",
		Long:  "Fetch the remote JWKS document and list the keys the gateway would verify asymmetric tokens against",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if cfg.JWKSURL == "" {
				return fmt.Errorf("JWKS_URL is not configured")
			}

			fmt.Printf("Fetching key set: %s\n", cfg.JWKSURL)

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			set, err := jwk.Fetch(ctx, cfg.JWKSURL)
			if err != nil {
				return fmt.Errorf("failed to fetch key set: %w", err)
			}

			fmt.Printf("✓ Key set is accessible (%d keys)\n\n", set.Len())
			for i := 0; i < set.Len(); i++ {
				key, _ := set.Key(i)
				fmt.Printf("  - kid: %s\n", key.KeyID())
				fmt.Printf("    kty: %s\n", key.KeyType())
				if alg := key.Algorithm(); alg != nil && alg.String() != "" {
					fmt.Printf("    alg: %s\n", alg.String())
				}
				fmt.Println()
			}

			return nil
		},
	}
}
