package cli

import (
	"context"
	"fmt"

	"github.com/rpggio/grantflow/internal/app"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// APIKeyCmd manages bearer tokens for HTTP authentication.
func APIKeyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apikey",
		Short: "Manage API keys",
	}

	create := &cobra.Command{
		Use:   "create",
		Short: "Issue a bearer token acting as a principal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			principal, _ := cmd.Flags().GetString("principal")
			description, _ := cmd.Flags().GetString("description")

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return withServices(cmd.Context(), cfg, log.Logger, func(ctx context.Context, s *app.Services) error {
				token, err := s.APIKeys.Create(ctx, principal, description)
				if err != nil {
					return err
				}
				// The token is shown once; only its hash is stored.
				_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
				return err
			})
		},
	}
	create.Flags().String("principal", "", "identity the token acts as")
	create.Flags().String("description", "", "free-form note")
	_ = create.MarkFlagRequired("principal")

	cmd.AddCommand(create)
	return cmd
}
