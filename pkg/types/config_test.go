package types

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{
			name:    "empty backend returns ErrBackendEmpty",
			config:  Config{Backend: "", DataDir: "/tmp/data"},
			wantErr: ErrBackendEmpty,
		},
		{
			name:    "unknown backend returns ErrBackendUnknown",
			config:  Config{Backend: "postgres", DataDir: "/tmp/data"},
			wantErr: ErrBackendUnknown,
		},
		{
			name:   "valid sqlite config",
			config: Config{Backend: "sqlite", DataDir: "/tmp/data"},
		},
		{
			name:   "sqlite with empty DataDir is valid at config level",
			config: Config{Backend: "sqlite", DataDir: ""},
		},
		{
			name:    "redis without address",
			config:  Config{Backend: "redis"},
			wantErr: ErrRedisAddrEmpty,
		},
		{
			name:    "redis negative database",
			config:  Config{Backend: "redis", RedisAddr: "localhost:6379", RedisDB: -1},
			wantErr: ErrRedisDBInvalid,
		},
		{
			name:   "valid redis config",
			config: Config{Backend: "redis", RedisAddr: "localhost:6379", RedisDB: 2},
		},
		{
			name:    "short program id",
			config:  Config{Backend: "sqlite", ProgramID: "abcd"},
			wantErr: ErrProgramIDInvalid,
		},
		{
			name:   "full program id",
			config: Config{Backend: "sqlite", ProgramID: strings.Repeat("ab", IDSize)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestConfigProgram(t *testing.T) {
	p, err := Config{}.Program()
	require.NoError(t, err)
	assert.True(t, p.ID.IsZero())

	p, err = Config{ProgramID: strings.Repeat("01", IDSize)}.Program()
	require.NoError(t, err)
	assert.Equal(t, byte(1), p.ID[0])
}
