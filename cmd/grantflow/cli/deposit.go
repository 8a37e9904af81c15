package cli

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rpggio/grantflow/internal/app"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// DepositCmd credits an owner's custody account. It is the operator's way to fund authorities.
func DepositCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deposit",
		Short: "Credit tokens to an owner's custody account",
		Args:  cobra.NoArgs,
		RunE:  deposit,
	}
	cmd.Flags().String("owner", "", "account owner")
	cmd.Flags().String("mint", "", "token mint")
	cmd.Flags().Uint64("amount", 0, "amount in base units")
	_ = cmd.MarkFlagRequired("owner")
	_ = cmd.MarkFlagRequired("mint")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func deposit(cmd *cobra.Command, _ []string) error {
	owner, _ := cmd.Flags().GetString("owner")
	mint, _ := cmd.Flags().GetString("mint")
	amount, _ := cmd.Flags().GetUint64("amount")
	if amount == 0 {
		return errors.New("amount must be positive")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	return withServices(cmd.Context(), cfg, log.Logger, func(ctx context.Context, s *app.Services) error {
		acct, err := s.Custody.Deposit(ctx, owner, mint, amount)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(acct)
	})
}
