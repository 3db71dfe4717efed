package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/player/pkg/types"
)

var (
	ownerHex   = strings.Repeat("a1", 32)
	otherHex   = strings.Repeat("b2", 32)
	classHex   = strings.Repeat("c3", 32)
	playerHex  = strings.Repeat("d4", 32)
	nsHex      = strings.Repeat("e5", 32)
	programHex = strings.Repeat("f6", 32)
)

const classYAML = `mint: %CLASS%
namespace: %NS%
stats_uri: https://example.com/warrior.json
category: warrior
update_permissiveness: token_holder
propagation:
  - domain: class
    overridable: false
stats:
  - name: strength
    kind: integer
    min: 0
    max: 10
    value: 5
  - name: rank
    kind: enum
    values: [novice, veteran, elite]
`

// harness runs the root command in-process against a private config and
// data directory.
type harness struct {
	t         *testing.T
	configDir string
	dataDir   string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	for _, key := range []string{"PLAYER_CONFIG_DIR", "PLAYER_DATA_DIR", "PLAYER_BACKEND", "PLAYER_REDIS_ADDR", "PLAYER_REDIS_DB", "PLAYER_PROGRAM_ID"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	t.Setenv("NO_COLOR", "1")
	dir := t.TempDir()
	return &harness{t: t, configDir: filepath.Join(dir, "config"), dataDir: filepath.Join(dir, "data")}
}

func (h *harness) run(args ...string) (string, error) {
	h.t.Helper()
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--config-dir", h.configDir, "--data-dir", h.dataDir}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, err := h.run(args...)
	require.NoError(h.t, err, "playerctl %v", args)
	return out
}

func (h *harness) as(actor string, args ...string) []string {
	return append([]string{"--actor", actor}, args...)
}

// setup initializes storage, grants the owner both mints and creates the
// class from classYAML.
func (h *harness) setup() {
	h.t.Helper()
	h.mustRun("init", "--program", programHex)
	h.mustRun("token", "grant", ownerHex, classHex)
	h.mustRun("token", "grant", ownerHex, playerHex)

	path := filepath.Join(h.t.TempDir(), "class.yaml")
	body := strings.NewReplacer("%CLASS%", classHex, "%NS%", nsHex).Replace(classYAML)
	require.NoError(h.t, os.WriteFile(path, []byte(body), 0o644))
	h.mustRun(h.as(ownerHex, "class", "create", "-f", path)...)
}

func decode[T any](t *testing.T, out string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(out), &v), out)
	return v
}

func TestVersion(t *testing.T) {
	h := newHarness(t)
	out := h.mustRun("version")
	assert.Contains(t, out, "playerctl v")
	assert.Contains(t, out, "module: github.com/mesh-intelligence/player")
}

func TestInit(t *testing.T) {
	h := newHarness(t)
	out := h.mustRun("init", "--program", programHex)
	assert.Contains(t, out, "config: "+h.configDir)
	assert.FileExists(t, filepath.Join(h.configDir, "config.yaml"))
	assert.DirExists(t, h.dataDir)

	raw, err := os.ReadFile(filepath.Join(h.configDir, "config.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), programHex)

	// A second init leaves the file alone.
	h.mustRun("init", "--program", otherHex)
	again, err := os.ReadFile(filepath.Join(h.configDir, "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, raw, again)
}

func TestClassCreateAndGet(t *testing.T) {
	h := newHarness(t)
	h.setup()

	out := h.mustRun("class", "get", classHex, nsHex)
	view := decode[classView](t, out)
	assert.NotEmpty(t, view.Key)
	assert.Equal(t, "warrior", view.Class.DefaultCategory.Category)
	require.Len(t, view.Class.BasicStats, 2)
	assert.Equal(t, types.IntegerValue(5), view.Class.BasicStats[0].Type.Value)
}

func TestClassDefineStat(t *testing.T) {
	h := newHarness(t)
	h.setup()
	h.mustRun(h.as(ownerHex, "player", "create", classHex, nsHex, "--mint", playerHex, "--namespace", nsHex)...)

	out := h.mustRun(h.as(ownerHex, "class", "update", classHex, nsHex,
		"--define-stat", "{name: luck, kind: integer, min: 0, max: 9, value: 3}",
		"--define-stat", "{name: strength, kind: integer, min: 0, max: 20, value: 15}",
	)...)
	update := decode[classUpdateView](t, out)
	require.Len(t, update.Class.BasicStats, 3)
	strength, err := update.Class.BasicStats.Get("strength")
	require.NoError(t, err)
	assert.Equal(t, types.Bound(20), strength.Type.Max)

	p := decode[playerView](t, h.mustRun("player", "get", playerHex, nsHex)).Player
	luck, err := p.BasicStats.Get("luck")
	require.NoError(t, err)
	assert.Equal(t, types.IntegerValue(3), luck.Type.Value)
	assert.Equal(t, types.Inherited, luck.Inherited)

	for _, raw := range []string{"{name: luck}", "{name: luck, kind: integer, color: red}", "{name: luck, kind: integer, min: 5, max: 1}"} {
		_, err = h.run(h.as(ownerHex, "class", "update", classHex, nsHex, "--define-stat", raw)...)
		assert.Error(t, err, raw)
	}
}

func TestPlayerLifecycle(t *testing.T) {
	h := newHarness(t)
	h.setup()

	out := h.mustRun(h.as(ownerHex, "player", "create", classHex, nsHex, "--mint", playerHex, "--namespace", nsHex)...)
	created := decode[playerView](t, out)
	assert.Equal(t, "warrior", created.Player.Category.Category)
	assert.Equal(t, types.Inherited, created.Player.Category.Inherited)

	out = h.mustRun(h.as(ownerHex, "player", "set-stat", playerHex, nsHex, "rank=elite")...)
	p := decode[playerView](t, out).Player
	rank, err := p.BasicStats.Get("rank")
	require.NoError(t, err)
	assert.Equal(t, types.EnumValue(2), rank.Type.Value)
	assert.Equal(t, types.Overridden, rank.Inherited)

	out = h.mustRun(h.as(ownerHex, "class", "update", classHex, nsHex, "--stat", "strength=8", "--stat", "rank=veteran")...)
	update := decode[classUpdateView](t, out)
	require.NotNil(t, update.Propagation)
	assert.Len(t, update.Propagation.Updated, 1)

	p = decode[playerView](t, h.mustRun("player", "get", playerHex, nsHex)).Player
	strength, err := p.BasicStats.Get("strength")
	require.NoError(t, err)
	assert.Equal(t, types.IntegerValue(8), strength.Type.Value)
	rank, err = p.BasicStats.Get("rank")
	require.NoError(t, err)
	assert.Equal(t, types.EnumValue(2), rank.Type.Value, "overridden stat kept")

	out = h.mustRun(h.as(ownerHex, "player", "reset", playerHex, nsHex, "stat:rank")...)
	rank, err = decode[playerView](t, out).Player.BasicStats.Get("rank")
	require.NoError(t, err)
	assert.Equal(t, types.EnumValue(1), rank.Type.Value)
	assert.Equal(t, types.Inherited, rank.Inherited)
}

func TestPlayerAddStat(t *testing.T) {
	h := newHarness(t)
	h.setup()
	h.mustRun(h.as(ownerHex, "player", "create", classHex, nsHex, "--mint", playerHex, "--namespace", nsHex)...)

	out := h.mustRun(h.as(ownerHex, "player", "add-stat", playerHex, nsHex, "luck", "--kind", "integer", "--min", "1", "--max", "6")...)
	luck, err := decode[playerView](t, out).Player.BasicStats.Get("luck")
	require.NoError(t, err)
	assert.Equal(t, types.IntegerValue(1), luck.Type.Value)
	assert.Equal(t, types.NotInherited, luck.Inherited)

	h.mustRun(h.as(ownerHex, "player", "remove-stat", playerHex, nsHex, "luck")...)
}

func TestCommandErrors(t *testing.T) {
	h := newHarness(t)
	h.setup()
	h.mustRun(h.as(ownerHex, "player", "create", classHex, nsHex, "--mint", playerHex, "--namespace", nsHex)...)

	tests := []struct {
		name string
		args []string
		want error
	}{
		{"stranger update", h.as(otherHex, "player", "set-uri", playerHex, nsHex, "https://x"), types.ErrUpdateDenied},
		{"locked category", h.as(ownerHex, "player", "set-category", playerHex, nsHex, "mage"), types.ErrNotOverridable},
		{"out of range", h.as(ownerHex, "player", "set-stat", playerHex, nsHex, "strength=11"), types.ErrIntegerOutOfRange},
		{"unknown player", []string{"player", "get", otherHex, nsHex}, types.ErrPlayerNotFound},
		{"close with dependents", h.as(ownerHex, "class", "close", classHex, nsHex), types.ErrHasDependents},
		{"no actor", []string{"player", "set-uri", playerHex, nsHex, "https://x"}, errUsage},
		{"bad id", h.as(ownerHex, "class", "get", "zz", nsHex), types.ErrInvalidID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.run(tt.args...)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, exitUserError, exitCode(err))
		})
	}
}

func TestNamespaceCommands(t *testing.T) {
	h := newHarness(t)
	h.setup()

	check := decode[accessView](t, h.mustRun(h.as(otherHex, "namespace", "check", classHex, nsHex)...))
	assert.False(t, check.Allowed)

	h.mustRun(h.as(ownerHex, "namespace", "whitelist", classHex, nsHex)...)
	check = decode[accessView](t, h.mustRun(h.as(otherHex, "namespace", "check", classHex, nsHex)...))
	assert.True(t, check.Allowed)

	index := decode[types.PlayerClassIndex](t, h.mustRun(h.as(ownerHex, "namespace", "register", classHex, nsHex)...))
	assert.Equal(t, []types.ID{types.MustParseID(nsHex)}, index.Namespaces)
	index = decode[types.PlayerClassIndex](t, h.mustRun("class", "index", classHex))
	assert.Len(t, index.Namespaces, 1)

	h.mustRun(h.as(ownerHex, "namespace", "unregister", classHex, nsHex)...)
	h.mustRun(h.as(ownerHex, "namespace", "unwhitelist", classHex, nsHex)...)
	_, err := h.run(h.as(ownerHex, "namespace", "unwhitelist", classHex, nsHex)...)
	assert.ErrorIs(t, err, types.ErrWhitelistNotFound)
}

func TestTokenHolds(t *testing.T) {
	h := newHarness(t)
	h.mustRun("init")
	h.mustRun("token", "grant", otherHex, classHex)
	assert.True(t, decode[holdingView](t, h.mustRun("token", "holds", otherHex, classHex)).Holds)
	h.mustRun("token", "revoke", otherHex, classHex)
	assert.False(t, decode[holdingView](t, h.mustRun("token", "holds", otherHex, classHex)).Holds)
}

func TestSnapshotRoundTrip(t *testing.T) {
	h := newHarness(t)
	h.setup()
	h.mustRun(h.as(ownerHex, "player", "create", classHex, nsHex, "--mint", playerHex, "--namespace", nsHex)...)
	file := filepath.Join(t.TempDir(), "records.zst")
	h.mustRun("snapshot", "export", file)

	restored := newHarness(t)
	restored.mustRun("init", "--program", programHex)
	restored.mustRun("snapshot", "import", file)
	p := decode[playerView](t, restored.mustRun("player", "get", playerHex, nsHex)).Player
	assert.Equal(t, types.MustParseID(playerHex), p.Mint)

	other := newHarness(t)
	other.mustRun("init", "--program", otherHex)
	_, err := other.run("snapshot", "import", file)
	assert.Error(t, err)
}

func TestPropagateCommand(t *testing.T) {
	h := newHarness(t)
	h.setup()
	h.mustRun(h.as(ownerHex, "player", "create", classHex, nsHex, "--mint", playerHex, "--namespace", nsHex)...)

	out := h.mustRun("propagate", classHex, nsHex)
	assert.Contains(t, out, `"Visited": 1`)

	refresh := decode[refreshView](t, h.mustRun("propagate", "--player", playerHex, nsHex))
	assert.False(t, refresh.Changed)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, exitSuccess, exitCode(nil))
	assert.Equal(t, exitUserError, exitCode(types.ErrUpdateDenied))
	assert.Equal(t, exitUserError, exitCode(usageErrorf("bad")))
	assert.Equal(t, exitSysError, exitCode(errors.New("disk on fire")))
}
