package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/mesh-intelligence/player/internal/paths"
	"github.com/mesh-intelligence/player/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	cfgKeyBackend   = "backend"
	cfgKeyDataDir   = "data_dir"
	cfgKeyRedisAddr = "redis_addr"
	cfgKeyRedisDB   = "redis_db"
	cfgKeyProgramID = "program_id"
	cfgKeyActor     = "actor"
)

// defaultConfigYAML is written to config.yaml on first run.
const defaultConfigYAML = `# playerctl configuration

# Backend selection: sqlite or redis
# backend: sqlite

# Data directory for sqlite (optional; overridable by --data-dir)
# data_dir:

# Redis connection, used when backend is redis
# redis_addr: localhost:6379
# redis_db: 0

# Hex id of the program; scopes every record key
# program_id:

# Hex id used as the acting account when --actor is not given
# actor:
`

// settings is the resolved configuration of one invocation.
type settings struct {
	ConfigDir string
	Config    types.Config
	Actor     string
}

// loadSettings resolves directories and reads config.yaml. The config
// directory and a default config.yaml are created on first run.
func (a *app) loadSettings() (*settings, error) {
	env, err := paths.LoadEnv()
	if err != nil {
		return nil, err
	}
	configDir, err := env.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return nil, fmt.Errorf("resolve config dir: %w", err)
	}
	v, err := loadConfig(configDir)
	if err != nil {
		return nil, err
	}

	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg = env.Apply(cfg)
	cfg.DataDir, err = env.ResolveDataDir(a.flags.dataDir, v.GetString(cfgKeyDataDir))
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}

	actor := a.flags.actor
	if actor == "" {
		actor = v.GetString(cfgKeyActor)
	}
	return &settings{ConfigDir: configDir, Config: cfg, Actor: actor}, nil
}

// loadConfig reads config.yaml from configDir using Viper. A missing
// config.yaml is not an error.
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := ensureConfigDir(configDir); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := ensureDefaultConfigFile(configDir); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

func ensureConfigDir(configDir string) error {
	return os.MkdirAll(configDir, 0o755)
}

// ensureDefaultConfigFile creates a default config.yaml if the file does not
// exist in the config directory.
func ensureDefaultConfigFile(configDir string) error {
	path := filepath.Join(configDir, configFileExt)

	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}
