package commands

import (
	"fmt"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/spf13/cobra"

	"github.com/convoly/chat-api/internal/config"
)

// NewTokenCmd creates the token command
func NewTokenCmd() *cobra.Command {
	var (
		sub   string
		email string
		ttl   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a development bearer token",
		Long:  "Sign an HS256 token with the configured shared secret for local testing against the gateway",
		RunE: func(cmd *cobra.Command, args []string) error {
			if sub == "" {
				return fmt.Errorf("--sub is required")
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if cfg.JWTSecret == "" {
				return fmt.Errorf("JWT_SECRET is not configured; only symmetric tokens can be minted")
			}

			builder := jwt.NewBuilder().
				Subject(sub).
				IssuedAt(time.Now()).
				Expiration(time.Now().Add(ttl))
			if cfg.JWTIssuer != "" {
				builder = builder.Issuer(cfg.JWTIssuer)
			}
			if cfg.JWTAudience != "" {
				builder = builder.Audience([]string{cfg.JWTAudience})
			}
			if email != "" {
				builder = builder.Claim("email", email)
			}

			tok, err := builder.Build()
			if err != nil {
				return fmt.Errorf("failed to build token: %w", err)
			}

			key, err := jwk.FromRaw([]byte(cfg.JWTSecret))
			if err != nil {
				return fmt.Errorf("failed to build signing key: %w", err)
			}
			signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, key))
			if err != nil {
				return fmt.Errorf("failed to sign token: %w", err)
			}

			fmt.Println(string(signed))
			return nil
		},
	}

	cmd.Flags().StringVar(&sub, "sub", "", "Subject id for the token (required)")
	cmd.Flags().StringVar(&email, "email", "", "Email claim to embed")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "Token lifetime")

	return cmd
}
