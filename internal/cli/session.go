package cli

import (
	"context"
	"fmt"

	"github.com/mesh-intelligence/player/internal/keys"
	"github.com/mesh-intelligence/player/internal/redisstore"
	"github.com/mesh-intelligence/player/pkg/registry"
	"github.com/mesh-intelligence/player/pkg/sqlite"
	"github.com/mesh-intelligence/player/pkg/types"
)

// session is an attached backend plus the registry built on it.
type session struct {
	settings *settings
	backend  types.Backend
	keys     *keys.Deriver
	program  types.Program
	reg      *registry.Registry
}

// attachBackend returns the configured backend, attached.
func attachBackend(cfg types.Config) (types.Backend, error) {
	switch cfg.Backend {
	case types.BackendSQLite:
		return sqlite.Open(cfg)
	case types.BackendRedis:
		b := redisstore.New()
		if err := b.Attach(cfg); err != nil {
			return nil, err
		}
		return b, nil
	default:
		return nil, fmt.Errorf("backend %q: %w", cfg.Backend, types.ErrBackendUnknown)
	}
}

// open loads settings and attaches the configured backend. Callers must
// call close.
func (a *app) open() (*session, error) {
	st, err := a.loadSettings()
	if err != nil {
		return nil, err
	}
	if err := st.Config.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	program, err := st.Config.Program()
	if err != nil {
		return nil, err
	}
	backend, err := attachBackend(st.Config)
	if err != nil {
		return nil, fmt.Errorf("attach %s backend: %w", st.Config.Backend, err)
	}
	a.logger.Debug("backend attached", "backend", st.Config.Backend, "data_dir", st.Config.DataDir)

	d := keys.New(program)
	return &session{
		settings: st,
		backend:  backend,
		keys:     d,
		program:  program,
		reg:      registry.New(backend, backend, d, registry.WithLogger(a.logger)),
	}, nil
}

func (s *session) close() error {
	return s.backend.Detach()
}

// withSession opens a session, runs fn and detaches. A detach failure is
// reported only when fn succeeded.
func (a *app) withSession(fn func(ctx context.Context, s *session) error) (err error) {
	s, err := a.open()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.close(); cerr != nil && err == nil {
			err = fmt.Errorf("detach: %w", cerr)
		}
	}()
	return fn(context.Background(), s)
}

// actor returns the acting account from --actor or config.yaml.
func (s *session) actor() (types.ID, error) {
	if s.settings.Actor == "" {
		return types.ID{}, usageErrorf("no actor: pass --actor or set actor in config.yaml")
	}
	return parseID("actor", s.settings.Actor)
}
