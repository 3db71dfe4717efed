package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/player/internal/classdef"
	"github.com/mesh-intelligence/player/pkg/types"
)

type playerView struct {
	Key    types.Key     `json:"key"`
	Player *types.Player `json:"player"`
}

func (a *app) newPlayerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "player",
		Short: "Manage players",
		Long:  "Players are addressed by <mint> <namespace>. Every update is authorized\nagainst the player's effective update policy.",
	}
	cmd.AddCommand(a.newPlayerCreateCmd())
	cmd.AddCommand(a.newPlayerGetCmd())
	cmd.AddCommand(a.newPlayerSetURICmd())
	cmd.AddCommand(a.newPlayerSetCategoryCmd())
	cmd.AddCommand(a.newPlayerSetPolicyCmd())
	cmd.AddCommand(a.newPlayerSetStatCmd())
	cmd.AddCommand(a.newPlayerAddStatCmd())
	cmd.AddCommand(a.newPlayerRemoveStatCmd())
	cmd.AddCommand(a.newPlayerResetCmd())
	cmd.AddCommand(a.newPlayerEquipCmd())
	cmd.AddCommand(a.newPlayerUnequipCmd())
	return cmd
}

// playerKey parses "<mint> <namespace>" arguments into a player key.
func (s *session) playerKey(args []string) (types.Key, error) {
	mint, err := parseID("mint", args[0])
	if err != nil {
		return "", err
	}
	ns, err := parseID("namespace", args[1])
	if err != nil {
		return "", err
	}
	return s.keys.PlayerKey(mint, ns), nil
}

// playerUpdate is one registry call against an existing player. extra holds
// the arguments after <mint> <namespace>.
type playerUpdate func(ctx context.Context, s *session, actor types.ID, key types.Key, extra []string) (*types.Player, error)

// runPlayerUpdate resolves actor and key, runs fn and prints the result.
func (a *app) runPlayerUpdate(args []string, verb string, fn playerUpdate) error {
	return a.withSession(func(ctx context.Context, s *session) error {
		actor, err := s.actor()
		if err != nil {
			return err
		}
		key, err := s.playerKey(args)
		if err != nil {
			return err
		}
		p, err := fn(ctx, s, actor, key, args[2:])
		if err != nil {
			return err
		}
		a.success("player %s %s", key, verb)
		return a.printJSON(playerView{Key: key, Player: p})
	})
}

func (a *app) newPlayerCreateCmd() *cobra.Command {
	var (
		mint, namespace, metadata, edition string
		indexed, categoryLocked            bool
	)
	cmd := &cobra.Command{
		Use:   "create <class-mint> <class-namespace>",
		Short: "Create a player of a class",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(func(ctx context.Context, s *session) error {
				actor, err := s.actor()
				if err != nil {
					return err
				}
				classKey, err := s.classKey(args)
				if err != nil {
					return err
				}
				id := types.PlayerIdentity{Indexed: indexed, CategoryLocked: categoryLocked}
				if id.Mint, err = parseID("mint", mint); err != nil {
					return err
				}
				if id.Namespace, err = parseID("namespace", namespace); err != nil {
					return err
				}
				if id.Metadata, err = parseOptionalID("metadata", metadata); err != nil {
					return err
				}
				if id.Edition, err = parseOptionalID("edition", edition); err != nil {
					return err
				}
				key, p, err := s.reg.CreatePlayer(ctx, actor, classKey, id)
				if err != nil {
					return err
				}
				a.success("player %s created", key)
				return a.printJSON(playerView{Key: key, Player: p})
			})
		},
	}
	cmd.Flags().StringVar(&mint, "mint", "", "hex mint of the player token")
	cmd.Flags().StringVar(&namespace, "namespace", "", "hex namespace the player is created under")
	cmd.Flags().StringVar(&metadata, "metadata", "", "hex metadata account")
	cmd.Flags().StringVar(&edition, "edition", "", "hex edition account")
	cmd.Flags().BoolVar(&indexed, "indexed", false, "mark the player as indexed")
	cmd.Flags().BoolVar(&categoryLocked, "category-locked", false, "create without a local category slot")
	_ = cmd.MarkFlagRequired("mint")
	_ = cmd.MarkFlagRequired("namespace")
	return cmd
}

func (a *app) newPlayerGetCmd() *cobra.Command {
	var effective bool
	cmd := &cobra.Command{
		Use:   "get <mint> <namespace>",
		Short: "Show a player",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(func(ctx context.Context, s *session) error {
				key, err := s.playerKey(args)
				if err != nil {
					return err
				}
				get := s.reg.GetPlayer
				if effective {
					get = s.reg.EffectivePlayer
				}
				p, err := get(ctx, key)
				if err != nil {
					return err
				}
				return a.printJSON(playerView{Key: key, Player: p})
			})
		},
	}
	cmd.Flags().BoolVar(&effective, "effective", false, "resolve inherited fields against the class chain")
	return cmd
}

func (a *app) newPlayerSetURICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-uri <mint> <namespace> <uri>",
		Short: "Override the stats URI",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runPlayerUpdate(args, "updated", func(ctx context.Context, s *session, actor types.ID, key types.Key, extra []string) (*types.Player, error) {
				return s.reg.SetStatsURI(ctx, actor, key, extra[0])
			})
		},
	}
}

func (a *app) newPlayerSetCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-category <mint> <namespace> <category>",
		Short: "Override the category",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runPlayerUpdate(args, "updated", func(ctx context.Context, s *session, actor types.ID, key types.Key, extra []string) (*types.Player, error) {
				return s.reg.SetCategory(ctx, actor, key, extra[0])
			})
		},
	}
}

func (a *app) newPlayerSetPolicyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-policy <mint> <namespace> <token_holder|player_class_holder|anybody>",
		Short: "Override the update policy",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			var kind types.PermissivenessKind
			if err := kind.UnmarshalText([]byte(args[2])); err != nil {
				return err
			}
			return a.runPlayerUpdate(args, "updated", func(ctx context.Context, s *session, actor types.ID, key types.Key, _ []string) (*types.Player, error) {
				return s.reg.SetUpdatePermissiveness(ctx, actor, key, kind)
			})
		},
	}
}

func (a *app) newPlayerSetStatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-stat <mint> <namespace> <name>=<value>",
		Short: "Set a stat value",
		Long:  "Set a stat value. Enum values are given by name or index.",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, raw, err := splitAssign(args[2])
			if err != nil {
				return err
			}
			return a.runPlayerUpdate(args, "updated", func(ctx context.Context, s *session, actor types.ID, key types.Key, _ []string) (*types.Player, error) {
				p, err := s.reg.GetPlayer(ctx, key)
				if err != nil {
					return nil, err
				}
				stat, err := p.BasicStats.Get(name)
				if err != nil {
					return nil, err
				}
				v, err := classdef.ParseValue(stat.Type, raw)
				if err != nil {
					return nil, err
				}
				return s.reg.SetStat(ctx, actor, key, name, v)
			})
		},
	}
}

func (a *app) newPlayerAddStatCmd() *cobra.Command {
	var (
		def           classdef.StatDef
		values, value string
		lo, hi        int64
	)
	cmd := &cobra.Command{
		Use:   "add-stat <mint> <namespace> <name>",
		Short: "Add a stat the player owns",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if values != "" {
				def.Values = strings.Split(values, ",")
			}
			if cmd.Flags().Changed("min") {
				def.Min = types.Bound(lo)
			}
			if cmd.Flags().Changed("max") {
				def.Max = types.Bound(hi)
			}
			if cmd.Flags().Changed("value") {
				def.Value = value
			}
			t, err := def.Type()
			if err != nil {
				return err
			}
			return a.runPlayerUpdate(args, "updated", func(ctx context.Context, s *session, actor types.ID, key types.Key, extra []string) (*types.Player, error) {
				return s.reg.AddStat(ctx, actor, key, extra[0], t)
			})
		},
	}
	cmd.Flags().StringVar(&def.Kind, "kind", "", "stat kind: enum, integer, bool or text")
	cmd.Flags().StringVar(&values, "values", "", "comma-separated enum values")
	cmd.Flags().Int64Var(&lo, "min", 0, "integer lower bound")
	cmd.Flags().Int64Var(&hi, "max", 0, "integer upper bound")
	cmd.Flags().StringVar(&value, "value", "", "starting value (default: zero value or --min)")
	_ = cmd.MarkFlagRequired("kind")
	return cmd
}

func (a *app) newPlayerRemoveStatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove-stat <mint> <namespace> <name>",
		Short: "Remove a stat the player owns",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runPlayerUpdate(args, "updated", func(ctx context.Context, s *session, actor types.ID, key types.Key, extra []string) (*types.Player, error) {
				return s.reg.RemoveStat(ctx, actor, key, extra[0])
			})
		},
	}
}

func (a *app) newPlayerResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset <mint> <namespace> <stats_uri|category|update_permissiveness|stat:name>",
		Short: "Return a field to inheriting from the class",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runPlayerUpdate(args, "reset", func(ctx context.Context, s *session, actor types.ID, key types.Key, extra []string) (*types.Player, error) {
				field := extra[0]
				if name, ok := strings.CutPrefix(field, "stat:"); ok {
					return s.reg.ResetStat(ctx, actor, key, name)
				}
				switch field {
				case "stats_uri":
					return s.reg.ResetStatsURI(ctx, actor, key)
				case "category":
					return s.reg.ResetCategory(ctx, actor, key)
				case "update_permissiveness":
					return s.reg.ResetUpdatePermissiveness(ctx, actor, key)
				}
				return nil, usageErrorf("unknown field %q", field)
			})
		},
	}
}

func (a *app) newPlayerEquipCmd() *cobra.Command {
	var itemClass, bodyPart, category string
	cmd := &cobra.Command{
		Use:   "equip <mint> <namespace> <item>",
		Short: "Equip an item",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			item, err := parseID("item", args[2])
			if err != nil {
				return err
			}
			class, err := parseOptionalID("item class", itemClass)
			if err != nil {
				return err
			}
			slot, err := types.NewEquippedItem(item, class, bodyPart, category)
			if err != nil {
				return err
			}
			return a.runPlayerUpdate(args, "updated", func(ctx context.Context, s *session, actor types.ID, key types.Key, _ []string) (*types.Player, error) {
				return s.reg.Equip(ctx, actor, key, slot)
			})
		},
	}
	cmd.Flags().StringVar(&itemClass, "item-class", "", "hex id of the item's class")
	cmd.Flags().StringVar(&bodyPart, "body-part", "", "body part label")
	cmd.Flags().StringVar(&category, "category", "", "item category label")
	return cmd
}

func (a *app) newPlayerUnequipCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unequip <mint> <namespace> <item>",
		Short: "Remove an equipped item",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			item, err := parseID("item", args[2])
			if err != nil {
				return err
			}
			return a.runPlayerUpdate(args, "updated", func(ctx context.Context, s *session, actor types.ID, key types.Key, _ []string) (*types.Player, error) {
				return s.reg.Unequip(ctx, actor, key, item)
			})
		},
	}
}
