package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/player/pkg/types"
)

type accessView struct {
	Namespace types.ID `json:"namespace"`
	Class     types.ID `json:"class"`
	Actor     types.ID `json:"actor"`
	Allowed   bool     `json:"allowed"`
}

func (a *app) newNamespaceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "namespace",
		Short: "Manage class namespace registration and whitelists",
	}
	cmd.AddCommand(a.newNamespaceRegisterCmd())
	cmd.AddCommand(a.newNamespaceUnregisterCmd())
	cmd.AddCommand(a.newNamespaceWhitelistCmd())
	cmd.AddCommand(a.newNamespaceUnwhitelistCmd())
	cmd.AddCommand(a.newNamespaceCheckCmd())
	return cmd
}

// namespaceArgs parses "<class-mint> <namespace>" plus the acting account.
func (s *session) namespaceArgs(args []string) (actor, mint, ns types.ID, err error) {
	if actor, err = s.actor(); err != nil {
		return
	}
	if mint, err = parseID("class mint", args[0]); err != nil {
		return
	}
	ns, err = parseID("namespace", args[1])
	return
}

func (a *app) newNamespaceRegisterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "register <class-mint> <namespace>",
		Short: "Make a class discoverable under a namespace",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(func(ctx context.Context, s *session) error {
				actor, mint, ns, err := s.namespaceArgs(args)
				if err != nil {
					return err
				}
				index, err := s.reg.RegisterNamespace(ctx, actor, mint, ns)
				if err != nil {
					return err
				}
				a.success("namespace %s registered (%d of %d)", ns, len(index.Namespaces), types.MaxNamespaces)
				return a.printJSON(index)
			})
		},
	}
}

func (a *app) newNamespaceUnregisterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unregister <class-mint> <namespace>",
		Short: "Remove a namespace from a class's index",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(func(ctx context.Context, s *session) error {
				actor, mint, ns, err := s.namespaceArgs(args)
				if err != nil {
					return err
				}
				index, err := s.reg.UnregisterNamespace(ctx, actor, mint, ns)
				if err != nil {
					return err
				}
				a.success("namespace %s unregistered", ns)
				return a.printJSON(index)
			})
		},
	}
}

func (a *app) newNamespaceWhitelistCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whitelist <class-mint> <namespace>",
		Short: "Let a namespace create under a class without its token",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(func(ctx context.Context, s *session) error {
				actor, mint, ns, err := s.namespaceArgs(args)
				if err != nil {
					return err
				}
				if err := s.reg.AddWhitelist(ctx, actor, mint, ns); err != nil {
					return err
				}
				a.success("namespace %s whitelisted", ns)
				return nil
			})
		},
	}
}

func (a *app) newNamespaceUnwhitelistCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unwhitelist <class-mint> <namespace>",
		Short: "Remove a namespace whitelist",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(func(ctx context.Context, s *session) error {
				actor, mint, ns, err := s.namespaceArgs(args)
				if err != nil {
					return err
				}
				if err := s.reg.RemoveWhitelist(ctx, actor, mint, ns); err != nil {
					return err
				}
				a.success("whitelist for %s removed", ns)
				return nil
			})
		},
	}
}

func (a *app) newNamespaceCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <class-mint> <namespace>",
		Short: "Report whether the actor may create under a namespace",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(func(ctx context.Context, s *session) error {
				actor, mint, ns, err := s.namespaceArgs(args)
				if err != nil {
					return err
				}
				ok, err := s.reg.CanCreateUnderNamespace(ctx, actor, ns, mint)
				if err != nil {
					return err
				}
				return a.printJSON(accessView{Namespace: ns, Class: mint, Actor: actor, Allowed: ok})
			})
		},
	}
}
