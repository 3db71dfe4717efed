package types

import (
	"errors"
	"fmt"
)

// Config holds backend selection and parameters for Backend.Attach.
type Config struct {
	Backend   string `json:"backend" yaml:"backend" mapstructure:"backend"`
	DataDir   string `json:"data_dir" yaml:"data_dir" mapstructure:"data_dir"`
	RedisAddr string `json:"redis_addr" yaml:"redis_addr" mapstructure:"redis_addr"`
	RedisDB   int    `json:"redis_db" yaml:"redis_db" mapstructure:"redis_db"`
	ProgramID string `json:"program_id" yaml:"program_id" mapstructure:"program_id"`
}

// Supported backend names.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Config validation errors.
var (
	ErrBackendEmpty     = errors.New("backend must not be empty")
	ErrBackendUnknown   = errors.New("unknown backend")
	ErrRedisAddrEmpty   = errors.New("redis backend requires an address")
	ErrRedisDBInvalid   = errors.New("redis database must not be negative")
	ErrProgramIDInvalid = errors.New("program id must be 64 hex characters")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendSQLite: true,
	BackendRedis:  true,
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	if c.Backend == BackendRedis {
		if c.RedisAddr == "" {
			return ErrRedisAddrEmpty
		}
		if c.RedisDB < 0 {
			return ErrRedisDBInvalid
		}
	}
	if c.ProgramID != "" {
		if _, err := ParseID(c.ProgramID); err != nil {
			return fmt.Errorf("%w: %v", ErrProgramIDInvalid, err)
		}
	}
	return nil
}

// Program returns the program identity named by ProgramID. An empty
// ProgramID yields the zero program.
func (c Config) Program() (Program, error) {
	if c.ProgramID == "" {
		return Program{}, nil
	}
	id, err := ParseID(c.ProgramID)
	if err != nil {
		return Program{}, fmt.Errorf("%w: %v", ErrProgramIDInvalid, err)
	}
	return Program{ID: id}, nil
}
