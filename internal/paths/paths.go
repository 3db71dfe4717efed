// Package paths resolves configuration and data directory locations and the
// environment layer of the CLI configuration.
//
// Precedence is flag > config.yaml > environment > default.
package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/caarlos0/env/v11"

	"github.com/mesh-intelligence/player/pkg/types"
)

// AppName names the per-user configuration directory.
const AppName = "player"

// DefaultDataDirName is the CWD-relative data directory used when nothing
// else is configured.
const DefaultDataDirName = ".player"

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "PLAYER_CONFIG_DIR"
	EnvDataDir   = "PLAYER_DATA_DIR"
)

// Env is the environment layer.
type Env struct {
	ConfigDir     string `env:"PLAYER_CONFIG_DIR"`
	DataDir       string `env:"PLAYER_DATA_DIR"`
	Backend       string `env:"PLAYER_BACKEND"`
	RedisAddr     string `env:"PLAYER_REDIS_ADDR"`
	RedisDB       int    `env:"PLAYER_REDIS_DB"`
	ProgramID     string `env:"PLAYER_PROGRAM_ID"`
	XDGConfigHome string `env:"XDG_CONFIG_HOME"`
}

// LoadEnv reads Env from the process environment.
func LoadEnv() (Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return Env{}, fmt.Errorf("parse env: %w", err)
	}
	return e, nil
}

// platformDir holds platform lookups that tests override.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// DefaultConfigDir returns the platform default configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/player (fallback ~/.config/player)
// macOS:   ~/Library/Application Support/player
// Windows: %APPDATA%/player
func (e Env) DefaultConfigDir() (string, error) {
	if runtime.GOOS != "linux" {
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, AppName), nil
	}
	if e.XDGConfigHome != "" {
		return filepath.Join(e.XDGConfigHome, AppName), nil
	}
	home, err := platformDir.homeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName), nil
}

// ResolveConfigDir returns flag, else PLAYER_CONFIG_DIR, else the platform
// default. Relative paths are made absolute.
func (e Env) ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if e.ConfigDir != "" {
		return filepath.Abs(e.ConfigDir)
	}
	return e.DefaultConfigDir()
}

// ResolveDataDir returns flag, else the config.yaml value, else
// PLAYER_DATA_DIR, else ./.player.
func (e Env) ResolveDataDir(flag, configValue string) (string, error) {
	for _, dir := range []string{flag, configValue, e.DataDir} {
		if dir != "" {
			return filepath.Abs(dir)
		}
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, DefaultDataDirName), nil
}

// Apply fills the backend fields cfg leaves empty from the environment and
// defaults the backend to SQLite.
func (e Env) Apply(cfg types.Config) types.Config {
	if cfg.Backend == "" {
		cfg.Backend = e.Backend
	}
	if cfg.Backend == "" {
		cfg.Backend = types.BackendSQLite
	}
	if cfg.RedisAddr == "" {
		cfg.RedisAddr = e.RedisAddr
	}
	if cfg.RedisDB == 0 {
		cfg.RedisDB = e.RedisDB
	}
	if cfg.ProgramID == "" {
		cfg.ProgramID = e.ProgramID
	}
	return cfg
}
