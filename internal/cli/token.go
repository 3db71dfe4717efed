package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/player/pkg/types"
)

type holdingView struct {
	Actor types.ID `json:"actor"`
	Mint  types.ID `json:"mint"`
	Holds bool     `json:"holds"`
}

func (a *app) newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage the local token ledger",
		Long:  "The token ledger answers who holds which mint. Grants and revocations are\nwritten directly and are not themselves authorized.",
	}
	cmd.AddCommand(a.newTokenChangeCmd("grant", "Record that an account holds a mint", (types.TokenLedger).Grant))
	cmd.AddCommand(a.newTokenChangeCmd("revoke", "Remove a holding", (types.TokenLedger).Revoke))
	cmd.AddCommand(a.newTokenHoldsCmd())
	return cmd
}

func (a *app) newTokenChangeCmd(use, short string, change func(types.TokenLedger, context.Context, types.ID, types.ID) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <account> <mint>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			account, err := parseID("account", args[0])
			if err != nil {
				return err
			}
			mint, err := parseID("mint", args[1])
			if err != nil {
				return err
			}
			return a.withSession(func(ctx context.Context, s *session) error {
				if err := change(s.backend, ctx, account, mint); err != nil {
					return err
				}
				a.success("%s %s for %s", use, mint, account)
				return nil
			})
		},
	}
}

func (a *app) newTokenHoldsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "holds <account> <mint>",
		Short: "Report whether an account holds a mint",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			account, err := parseID("account", args[0])
			if err != nil {
				return err
			}
			mint, err := parseID("mint", args[1])
			if err != nil {
				return err
			}
			return a.withSession(func(ctx context.Context, s *session) error {
				ok, err := s.backend.HoldsToken(ctx, account, mint)
				if err != nil {
					return err
				}
				return a.printJSON(holdingView{Actor: account, Mint: mint, Holds: ok})
			})
		},
	}
}
