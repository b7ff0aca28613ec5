package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"eventbooking/config"
	"eventbooking/internal/adapters/auth"
	"eventbooking/internal/domain"
)

var adminTokenCmd = &cobra.Command{
	Use:   "admin-token",
	Short: "Issue a signed admin JWT for POST /events",
	Long: `Issue an HS256 JWT signed with API_SECRET_KEY that carries the admin role.

The token can be sent as "Authorization: Bearer <token>" instead of the raw secret.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		subject, _ := cmd.Flags().GetString("subject")
		ttl, _ := cmd.Flags().GetDuration("ttl")

		secret := config.AdminSecret()
		if secret == "" {
			return errors.New("API_SECRET_KEY is not set")
		}
		if ttl <= 0 {
			return errors.New("--ttl must be positive")
		}

		token, err := auth.NewJWTIssuer(secret).Issue(subject, []string{domain.RoleAdmin}, ttl)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	adminTokenCmd.Flags().String("subject", "admin", "Subject recorded in the token")
	adminTokenCmd.Flags().Duration("ttl", 24*time.Hour, "Token lifetime")
}
