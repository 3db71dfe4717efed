package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/player/internal/paths"
	"github.com/mesh-intelligence/player/pkg/types"
)

// configFile holds the structure init writes to config.yaml.
type configFile struct {
	Backend   string `yaml:"backend"`
	DataDir   string `yaml:"data_dir,omitempty"`
	RedisAddr string `yaml:"redis_addr,omitempty"`
	ProgramID string `yaml:"program_id,omitempty"`
	Actor     string `yaml:"actor,omitempty"`
}

func (a *app) newInitCmd() *cobra.Command {
	var (
		backend   string
		redisAddr string
		program   string
	)
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration and storage",
		Long:  "Create the configuration and data directories, write config.yaml if it is missing,\nthen attach and detach the configured backend once.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := paths.LoadEnv()
			if err != nil {
				return err
			}
			configDir, err := env.ResolveConfigDir(a.flags.configDir)
			if err != nil {
				return fmt.Errorf("resolve config dir: %w", err)
			}
			if err := ensureConfigDir(configDir); err != nil {
				return fmt.Errorf("create config directory: %w", err)
			}
			cfg := configFile{
				Backend:   backend,
				DataDir:   a.flags.dataDir,
				RedisAddr: redisAddr,
				ProgramID: program,
				Actor:     a.flags.actor,
			}
			written, err := writeConfigIfMissing(filepath.Join(configDir, configFileExt), cfg)
			if err != nil {
				return fmt.Errorf("write config: %w", err)
			}
			if !written {
				a.warning("config.yaml already exists in %s; leaving it unchanged", configDir)
			}

			return a.withSession(func(_ context.Context, s *session) error {
				fmt.Fprintf(a.out, "config: %s\n", s.settings.ConfigDir)
				if s.settings.Config.Backend == types.BackendSQLite {
					fmt.Fprintf(a.out, "data:   %s\n", s.settings.Config.DataDir)
				} else {
					fmt.Fprintf(a.out, "redis:  %s/%d\n", s.settings.Config.RedisAddr, s.settings.Config.RedisDB)
				}
				a.success("player storage initialized")
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&backend, "backend", types.BackendSQLite, "storage backend: sqlite or redis")
	cmd.Flags().StringVar(&redisAddr, "redis-addr", "", "redis address for the redis backend")
	cmd.Flags().StringVar(&program, "program", "", "hex program id scoping every record key")
	return cmd
}

// writeConfigIfMissing creates config.yaml from cfg if the file does not
// exist and reports whether it wrote one.
func writeConfigIfMissing(path string, cfg configFile) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}
	return true, os.WriteFile(path, data, 0o644)
}
