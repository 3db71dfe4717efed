package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/player/internal/snapshot"
)

func (a *app) newSnapshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Export or import every record as a compressed snapshot",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "export <file>",
		Short: "Write every record to a snapshot file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(func(ctx context.Context, s *session) error {
				n, err := snapshot.Export(ctx, s.backend, s.program, args[0])
				if err != nil {
					return err
				}
				a.success("%d records exported to %s", n, args[0])
				return nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "import <file>",
		Short: "Write every record of a snapshot file into the store",
		Long:  "Write every record of a snapshot file into the store. Records with the same\nkey are replaced. The snapshot must belong to the configured program.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(func(ctx context.Context, s *session) error {
				n, err := snapshot.Import(ctx, s.backend, s.program, args[0])
				if err != nil {
					return err
				}
				a.success("%d records imported from %s", n, args[0])
				return nil
			})
		},
	})
	return cmd
}
