package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"notifier/internal/auth"
)

var (
	tokenUserID int64
	tokenTTL    time.Duration
	secretLen   int
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mints a bearer token for a user",
	RunE: func(cmd *cobra.Command, args []string) error {
		if tokenUserID <= 0 {
			return fmt.Errorf("--user must be a positive user id")
		}

		token, err := auth.GenerateToken(cfg.Auth.JWTSecret, tokenUserID, tokenTTL)
		if err != nil {
			return err
		}
		printf(cmd, "%s\n", token)
		return nil
	},
}

var secretCmd = &cobra.Command{
	Use:   "secret",
	Short: "Prints a random secret for JWT_SECRET or INTERNAL_API_TOKEN",
	// No configuration is needed to generate a secret.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		secret, err := auth.GenerateSecret(secretLen)
		if err != nil {
			return err
		}
		printf(cmd, "%s\n", secret)
		return nil
	},
}

func init() {
	tokenCmd.Flags().Int64Var(&tokenUserID, "user", 0, "user id to issue the token for")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "token lifetime")
	secretCmd.Flags().IntVar(&secretLen, "length", 48, "secret length")
}
