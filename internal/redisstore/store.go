// Package redisstore implements the record store and token ledger on Redis.
// Each record is a hash; set indexes answer List and Dependents.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/mesh-intelligence/player/pkg/types"
)

// DefaultInstance namespaces keys when the config names no program.
const DefaultInstance = "default"

const (
	fieldKind   = "kind"
	fieldParent = "parent"
	fieldData   = "data"
)

// Store implements types.Backend on Redis.
type Store struct {
	mu       sync.RWMutex
	rdb      *redis.Client
	instance string
}

// New creates a detached store.
func New() *Store {
	return &Store{}
}

// Attach connects to config.RedisAddr and verifies the server answers.
func (s *Store) Attach(config types.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rdb != nil {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}
	if config.Backend != types.BackendRedis {
		return fmt.Errorf("redis store given %q: %w", config.Backend, types.ErrBackendUnknown)
	}

	rdb := redis.NewClient(&redis.Options{Addr: config.RedisAddr, DB: config.RedisDB})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		rdb.Close()
		return fmt.Errorf("connecting to redis at %s: %w", config.RedisAddr, err)
	}

	s.rdb = rdb
	s.instance = config.ProgramID
	if s.instance == "" {
		s.instance = DefaultInstance
	}
	return nil
}

// Detach closes the connection. Idempotent.
func (s *Store) Detach() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rdb == nil {
		return nil
	}
	err := s.rdb.Close()
	s.rdb = nil
	return err
}

func (s *Store) client() (*redis.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.rdb == nil {
		return nil, types.ErrStoreDetached
	}
	return s.rdb, nil
}

// Read returns the record stored under key.
func (s *Store) Read(ctx context.Context, key types.Key) (types.Record, error) {
	if key == "" {
		return types.Record{}, types.ErrInvalidID
	}
	rdb, err := s.client()
	if err != nil {
		return types.Record{}, err
	}

	hash, err := rdb.HGetAll(ctx, RecordKey(s.instance, string(key))).Result()
	if err != nil {
		return types.Record{}, fmt.Errorf("reading record %s: %w", key, err)
	}
	if len(hash) == 0 {
		return types.Record{}, fmt.Errorf("record %s: %w", key, types.ErrRecordNotFound)
	}
	return hashToRecord(key, hash)
}

// Write creates or replaces the record under rec.Key and moves it between
// indexes when its kind or parent changed.
func (s *Store) Write(ctx context.Context, rec types.Record) error {
	if rec.Key == "" {
		return types.ErrInvalidID
	}
	if !rec.Kind.Valid() || rec.Data == nil {
		return types.ErrInvalidData
	}
	rdb, err := s.client()
	if err != nil {
		return err
	}

	key := string(rec.Key)
	prev, err := rdb.HMGet(ctx, RecordKey(s.instance, key), fieldKind, fieldParent).Result()
	if err != nil {
		return fmt.Errorf("reading record %s: %w", rec.Key, err)
	}

	_, err = rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if oldKind, ok := prev[0].(string); ok {
			oldParent, _ := prev[1].(string)
			pipe.SRem(ctx, KindKey(s.instance, oldKind), key)
			if oldParent != "" {
				pipe.SRem(ctx, DependentsKey(s.instance, oldParent, oldKind), key)
			}
		}
		pipe.HSet(ctx, RecordKey(s.instance, key),
			fieldKind, string(rec.Kind),
			fieldParent, string(rec.Parent),
			fieldData, rec.Data,
		)
		pipe.SAdd(ctx, KindKey(s.instance, string(rec.Kind)), key)
		if rec.Parent != "" {
			pipe.SAdd(ctx, DependentsKey(s.instance, string(rec.Parent), string(rec.Kind)), key)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("writing record %s: %w", rec.Key, err)
	}
	return nil
}

// Exists reports whether a record is stored under key.
func (s *Store) Exists(ctx context.Context, key types.Key) (bool, error) {
	rdb, err := s.client()
	if err != nil {
		return false, err
	}
	n, err := rdb.Exists(ctx, RecordKey(s.instance, string(key))).Result()
	if err != nil {
		return false, fmt.Errorf("checking record %s: %w", key, err)
	}
	return n > 0, nil
}

// Delete removes the record under key and its index entries.
func (s *Store) Delete(ctx context.Context, key types.Key) error {
	if key == "" {
		return types.ErrInvalidID
	}
	rdb, err := s.client()
	if err != nil {
		return err
	}

	rec, err := s.Read(ctx, key)
	if err != nil {
		return err
	}
	_, err = rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, RecordKey(s.instance, string(key)))
		pipe.SRem(ctx, KindKey(s.instance, string(rec.Kind)), string(key))
		if rec.Parent != "" {
			pipe.SRem(ctx, DependentsKey(s.instance, string(rec.Parent), string(rec.Kind)), string(key))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("deleting record %s: %w", key, err)
	}
	return nil
}

// Dependents returns the records of kind whose parent is parent.
func (s *Store) Dependents(ctx context.Context, parent types.Key, kind types.Kind) ([]types.Record, error) {
	if parent == "" {
		return nil, types.ErrInvalidID
	}
	return s.readSet(ctx, DependentsKey(s.instance, string(parent), string(kind)))
}

// List returns every record of kind.
func (s *Store) List(ctx context.Context, kind types.Kind) ([]types.Record, error) {
	return s.readSet(ctx, KindKey(s.instance, string(kind)))
}

// readSet loads every record named in an index set, ordered by key.
func (s *Store) readSet(ctx context.Context, setKey string) ([]types.Record, error) {
	rdb, err := s.client()
	if err != nil {
		return nil, err
	}
	keys, err := rdb.SMembers(ctx, setKey).Result()
	if err != nil {
		return nil, fmt.Errorf("reading index %s: %w", setKey, err)
	}
	slices.Sort(keys)

	var out []types.Record
	for _, k := range keys {
		rec, err := s.Read(ctx, types.Key(k))
		if errors.Is(err, types.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func hashToRecord(key types.Key, hash map[string]string) (types.Record, error) {
	kind, err := types.ParseKind(hash[fieldKind])
	if err != nil {
		return types.Record{}, fmt.Errorf("record %s: %w", key, err)
	}
	return types.Record{
		Key:    key,
		Kind:   kind,
		Parent: types.Key(hash[fieldParent]),
		Data:   []byte(hash[fieldData]),
	}, nil
}

// HoldsToken reports whether actor holds the token minted as mint.
func (s *Store) HoldsToken(ctx context.Context, actor, mint types.ID) (bool, error) {
	rdb, err := s.client()
	if err != nil {
		return false, err
	}
	held, err := rdb.SIsMember(ctx, HoldingsKey(s.instance, actor.String()), mint.String()).Result()
	if err != nil {
		return false, fmt.Errorf("checking holding: %w", err)
	}
	return held, nil
}

// Grant records that actor holds mint.
func (s *Store) Grant(ctx context.Context, actor, mint types.ID) error {
	if actor.IsZero() || mint.IsZero() {
		return types.ErrInvalidID
	}
	rdb, err := s.client()
	if err != nil {
		return err
	}
	if err := rdb.SAdd(ctx, HoldingsKey(s.instance, actor.String()), mint.String()).Err(); err != nil {
		return fmt.Errorf("granting holding: %w", err)
	}
	return nil
}

// Revoke removes a holding.
func (s *Store) Revoke(ctx context.Context, actor, mint types.ID) error {
	rdb, err := s.client()
	if err != nil {
		return err
	}
	if err := rdb.SRem(ctx, HoldingsKey(s.instance, actor.String()), mint.String()).Err(); err != nil {
		return fmt.Errorf("revoking holding: %w", err)
	}
	return nil
}

var _ types.Backend = (*Store)(nil)
