package cli

import (
	"context"

	"github.com/spf13/cobra"
)

type refreshView struct {
	Key     string `json:"key"`
	Changed bool   `json:"changed"`
}

func (a *app) newPropagateCmd() *cobra.Command {
	var player bool
	cmd := &cobra.Command{
		Use:   "propagate <mint> <namespace>",
		Short: "Refresh inherited fields below a class",
		Long: "Walk the class's child classes and players depth-first and refresh every\n" +
			"inherited field. A dependent that fails is reported and the walk continues.\n" +
			"With --player, refresh a single player from its class instead.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(func(ctx context.Context, s *session) error {
				if player {
					key, err := s.playerKey(args)
					if err != nil {
						return err
					}
					changed, err := s.reg.RefreshPlayer(ctx, key)
					if err != nil {
						return err
					}
					return a.printJSON(refreshView{Key: string(key), Changed: changed})
				}

				key, err := s.classKey(args)
				if err != nil {
					return err
				}
				report, err := s.reg.Propagate(ctx, key)
				if report == nil {
					return err
				}
				if perr := a.printJSON(report); perr != nil {
					return perr
				}
				if err != nil {
					a.warning("%d of %d dependents failed", len(report.Failed), report.Visited)
					return err
				}
				a.success("%d dependents visited, %d updated", report.Visited, len(report.Updated))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&player, "player", false, "treat the arguments as a player and refresh it alone")
	return cmd
}
