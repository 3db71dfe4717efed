package paths

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/player/pkg/types"
)

func TestLoadEnv(t *testing.T) {
	t.Setenv(EnvConfigDir, "/env/config")
	t.Setenv(EnvDataDir, "/env/data")
	t.Setenv("PLAYER_BACKEND", "redis")
	t.Setenv("PLAYER_REDIS_ADDR", "localhost:6379")
	t.Setenv("PLAYER_REDIS_DB", "3")
	t.Setenv("PLAYER_PROGRAM_ID", "abc")

	e, err := LoadEnv()
	require.NoError(t, err)
	assert.Equal(t, "/env/config", e.ConfigDir)
	assert.Equal(t, "/env/data", e.DataDir)
	assert.Equal(t, "redis", e.Backend)
	assert.Equal(t, "localhost:6379", e.RedisAddr)
	assert.Equal(t, 3, e.RedisDB)
	assert.Equal(t, "abc", e.ProgramID)

	t.Setenv("PLAYER_REDIS_DB", "three")
	_, err = LoadEnv()
	assert.Error(t, err)
}

func TestDefaultConfigDir_Linux(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("linux-only test")
	}

	t.Run("uses XDG_CONFIG_HOME when set", func(t *testing.T) {
		got, err := Env{XDGConfigHome: "/tmp/xdg-config"}.DefaultConfigDir()
		require.NoError(t, err)
		assert.Equal(t, "/tmp/xdg-config/player", got)
	})

	t.Run("falls back to ~/.config when XDG unset", func(t *testing.T) {
		orig := platformDir.homeDir
		platformDir.homeDir = func() (string, error) { return "/home/tester", nil }
		t.Cleanup(func() { platformDir.homeDir = orig })

		got, err := Env{}.DefaultConfigDir()
		require.NoError(t, err)
		assert.Equal(t, "/home/tester/.config/player", got)
	})
}

func TestDefaultConfigDir_Darwin(t *testing.T) {
	if runtime.GOOS != "darwin" {
		t.Skip("darwin-only test")
	}

	got, err := Env{}.DefaultConfigDir()
	require.NoError(t, err)

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "Library", "Application Support", "player"), got)
}

func TestResolveConfigDir(t *testing.T) {
	tests := []struct {
		name    string
		flag    string
		envVal  string
		wantSub string // substring the result must contain
	}{
		{name: "flag wins over env", flag: "/explicit/config", envVal: "/env/config", wantSub: "/explicit/config"},
		{name: "env wins when flag empty", envVal: "/env/config", wantSub: "/env/config"},
		{name: "platform default when both empty", wantSub: AppName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Env{ConfigDir: tt.envVal}.ResolveConfigDir(tt.flag)
			require.NoError(t, err)
			assert.Contains(t, got, tt.wantSub)
		})
	}
}

func TestResolveDataDir(t *testing.T) {
	cwd, err := os.Getwd()
	require.NoError(t, err)

	tests := []struct {
		name        string
		flag        string
		configValue string
		envVal      string
		want        string
	}{
		{name: "flag wins over all", flag: "/flag/data", configValue: "/config/data", envVal: "/env/data", want: "/flag/data"},
		{name: "config.yaml wins over env", configValue: "/config/data", envVal: "/env/data", want: "/config/data"},
		{name: "env wins when flag and config empty", envVal: "/env/data", want: "/env/data"},
		{name: "CWD default when all empty", want: filepath.Join(cwd, DefaultDataDirName)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Env{DataDir: tt.envVal}.ResolveDataDir(tt.flag, tt.configValue)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve_AbsolutePath(t *testing.T) {
	got, err := Env{}.ResolveConfigDir("relative/path")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(got), "expected absolute path, got %s", got)

	got, err = Env{ConfigDir: "relative/env"}.ResolveConfigDir("")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(got), "expected absolute path, got %s", got)

	got, err = Env{}.ResolveDataDir("", "relative/config")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(got), "expected absolute path, got %s", got)
}

func TestApply(t *testing.T) {
	e := Env{Backend: types.BackendRedis, RedisAddr: "env:6379", RedisDB: 2, ProgramID: "env-program"}

	got := e.Apply(types.Config{})
	assert.Equal(t, types.Config{Backend: types.BackendRedis, RedisAddr: "env:6379", RedisDB: 2, ProgramID: "env-program"}, got)

	got = e.Apply(types.Config{Backend: types.BackendSQLite, ProgramID: "file"})
	assert.Equal(t, types.BackendSQLite, got.Backend, "config.yaml wins over env")
	assert.Equal(t, "file", got.ProgramID)

	assert.Equal(t, types.BackendSQLite, Env{}.Apply(types.Config{}).Backend)
}
