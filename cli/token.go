package cli

import (
	"errors"
	"fmt"
	"os"
	"rabbit-bot/config"
	"rabbit-bot/middleware"
	"time"

	"github.com/spf13/cobra"
)

func newTokenCmd(envFile *string) *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an operator token for the HTTP API and event feed",
		RunE: func(cmd *cobra.Command, args []string) error {
			if subject == "" {
				return errors.New("--subject is required")
			}
			if ttl <= 0 {
				return fmt.Errorf("--ttl must be positive, got %s", ttl)
			}
			if err := config.LoadEnvFile(*envFile); err != nil {
				return err
			}

			token, err := middleware.NewAuth(os.Getenv("FEED_SECRET")).GenerateToken(subject, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "who the token is issued to")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "how long the token stays valid")
	return cmd
}
