package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/player/internal/classdef"
	"github.com/mesh-intelligence/player/pkg/registry"
	"github.com/mesh-intelligence/player/pkg/types"
)

type classView struct {
	Key   types.Key          `json:"key"`
	Class *types.PlayerClass `json:"class"`
}

type classUpdateView struct {
	Key         types.Key                   `json:"key"`
	Class       *types.PlayerClass          `json:"class"`
	Propagation *registry.PropagationReport `json:"propagation,omitempty"`
}

func (a *app) newClassCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "class",
		Short: "Manage player classes",
	}
	cmd.AddCommand(a.newClassCreateCmd())
	cmd.AddCommand(a.newClassGetCmd())
	cmd.AddCommand(a.newClassUpdateCmd())
	cmd.AddCommand(a.newClassCloseCmd())
	cmd.AddCommand(a.newClassIndexCmd())
	return cmd
}

// classKey parses "<mint> <namespace>" arguments into a class key.
func (s *session) classKey(args []string) (types.Key, error) {
	mint, err := parseID("mint", args[0])
	if err != nil {
		return "", err
	}
	ns, err := parseID("namespace", args[1])
	if err != nil {
		return "", err
	}
	return s.keys.ClassKey(mint, ns), nil
}

func (a *app) newClassCreateCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a class from a YAML definition",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := classdef.Load(file)
			if err != nil {
				return err
			}
			return a.withSession(func(ctx context.Context, s *session) error {
				actor, err := s.actor()
				if err != nil {
					return err
				}
				draft, err := def.Draft(s.keys)
				if err != nil {
					return err
				}
				key, c, err := s.reg.CreateClass(ctx, actor, draft)
				if err != nil {
					return err
				}
				a.success("class %s created", key)
				return a.printJSON(classView{Key: key, Class: c})
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "class definition file (YAML)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func (a *app) newClassGetCmd() *cobra.Command {
	var effective bool
	cmd := &cobra.Command{
		Use:   "get <mint> <namespace>",
		Short: "Show a class",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(func(ctx context.Context, s *session) error {
				key, err := s.classKey(args)
				if err != nil {
					return err
				}
				get := s.reg.GetClass
				if effective {
					get = s.reg.EffectiveClass
				}
				c, err := get(ctx, key)
				if err != nil {
					return err
				}
				return a.printJSON(classView{Key: key, Class: c})
			})
		},
	}
	cmd.Flags().BoolVar(&effective, "effective", false, "resolve inherited fields against the parent chain")
	return cmd
}

type classUpdateFlags struct {
	statsURI    string
	category    string
	policy      string
	stats       []string
	defineStats []string
	removeStats []string
	resets      []string
	propagation []string
}

func (a *app) newClassUpdateCmd() *cobra.Command {
	var f classUpdateFlags
	cmd := &cobra.Command{
		Use:   "update <mint> <namespace>",
		Short: "Update a class and propagate the change",
		Long: "Apply every given change to the class in one write, then refresh the\n" +
			"inherited fields of its child classes and players.\n\n" +
			"--define-stat takes a stat in the class file's form, e.g.\n" +
			"  --define-stat '{name: luck, kind: integer, min: 0, max: 9, value: 3}'\n\n" +
			"--reset takes stats_uri, category, update_permissiveness or stat:<name>.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(func(ctx context.Context, s *session) error {
				actor, err := s.actor()
				if err != nil {
					return err
				}
				key, err := s.classKey(args)
				if err != nil {
					return err
				}
				current, err := s.reg.EffectiveClass(ctx, key)
				if err != nil {
					return err
				}
				muts, err := f.mutations(cmd, current)
				if err != nil {
					return err
				}
				if len(muts) == 0 {
					return usageErrorf("nothing to update")
				}
				c, report, err := s.reg.UpdateClass(ctx, actor, key, muts...)
				if c == nil {
					return err
				}
				if err != nil {
					a.warning("class %s updated; propagation failed: %v", key, err)
				} else {
					a.success("class %s updated", key)
				}
				if perr := a.printJSON(classUpdateView{Key: key, Class: c, Propagation: report}); perr != nil {
					return perr
				}
				return err
			})
		},
	}
	cmd.Flags().StringVar(&f.statsURI, "stats-uri", "", "set the starting stats URI")
	cmd.Flags().StringVar(&f.category, "category", "", "set the default category")
	cmd.Flags().StringVar(&f.policy, "policy", "", "set the default update policy (token_holder, player_class_holder, anybody)")
	cmd.Flags().StringArrayVar(&f.stats, "stat", nil, "set a stat value as name=value (repeatable)")
	cmd.Flags().StringArrayVar(&f.defineStats, "define-stat", nil, "add a stat or replace its definition, as a YAML mapping (repeatable)")
	cmd.Flags().StringArrayVar(&f.removeStats, "remove-stat", nil, "remove a stat the class owns (repeatable)")
	cmd.Flags().StringArrayVar(&f.resets, "reset", nil, "return a field to inheriting from the parent (repeatable)")
	cmd.Flags().StringArrayVar(&f.propagation, "propagation", nil, "replace propagation entries with domain=true|false pairs")
	return cmd
}

// mutations turns the changed flags into registry mutations. current is the
// class's effective view, used to type stat values.
func (f *classUpdateFlags) mutations(cmd *cobra.Command, current *types.PlayerClass) ([]registry.ClassMutation, error) {
	var muts []registry.ClassMutation
	if cmd.Flags().Changed("stats-uri") {
		muts = append(muts, registry.SetClassStatsURI(f.statsURI))
	}
	if cmd.Flags().Changed("category") {
		muts = append(muts, registry.SetClassCategory(f.category))
	}
	if cmd.Flags().Changed("policy") {
		var kind types.PermissivenessKind
		if err := kind.UnmarshalText([]byte(f.policy)); err != nil {
			return nil, err
		}
		muts = append(muts, registry.SetClassUpdatePermissiveness(kind))
	}
	if cmd.Flags().Changed("propagation") {
		policies, err := parsePropagation(f.propagation)
		if err != nil {
			return nil, err
		}
		muts = append(muts, registry.SetClassPropagation(policies))
	}
	for _, raw := range f.defineStats {
		def, err := classdef.ParseStat([]byte(raw))
		if err != nil {
			return nil, err
		}
		t, err := def.Type()
		if err != nil {
			return nil, err
		}
		muts = append(muts, registry.DefineClassStat(def.Name, t))
	}
	for _, assign := range f.stats {
		name, raw, err := splitAssign(assign)
		if err != nil {
			return nil, err
		}
		stat, err := current.BasicStats.Get(name)
		if err != nil {
			return nil, err
		}
		v, err := classdef.ParseValue(stat.Type, raw)
		if err != nil {
			return nil, err
		}
		muts = append(muts, registry.SetClassStat(name, v))
	}
	for _, name := range f.removeStats {
		muts = append(muts, registry.RemoveClassStat(name))
	}
	for _, field := range f.resets {
		m, err := classReset(field)
		if err != nil {
			return nil, err
		}
		muts = append(muts, m)
	}
	return muts, nil
}

func classReset(field string) (registry.ClassMutation, error) {
	if name, ok := strings.CutPrefix(field, "stat:"); ok {
		return registry.ResetClassStat(name), nil
	}
	switch field {
	case "stats_uri":
		return registry.ResetClassStatsURI(), nil
	case "category":
		return registry.ResetClassCategory(), nil
	case "update_permissiveness":
		return registry.ResetClassUpdatePermissiveness(), nil
	}
	return nil, usageErrorf("unknown field %q", field)
}

func (a *app) newClassCloseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "close <mint> <namespace>",
		Short: "Delete a class that has no dependents",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(func(ctx context.Context, s *session) error {
				actor, err := s.actor()
				if err != nil {
					return err
				}
				key, err := s.classKey(args)
				if err != nil {
					return err
				}
				if err := s.reg.CloseClass(ctx, actor, key); err != nil {
					return err
				}
				a.success("class %s closed", key)
				return nil
			})
		},
	}
}

func (a *app) newClassIndexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "index <mint>",
		Short: "List the namespaces a class mint is registered under",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mint, err := parseID("mint", args[0])
			if err != nil {
				return err
			}
			return a.withSession(func(ctx context.Context, s *session) error {
				index, err := s.reg.Index(ctx, mint)
				if err != nil {
					return err
				}
				return a.printJSON(index)
			})
		},
	}
}
