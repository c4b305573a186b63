package report

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dgraph-io/badger/v3"
	"github.com/redis/go-redis/v9"

	"github.com/bastiangx/wordfix/internal/utils"
)

// Store keeps reports by id.
type Store interface {
	Save(ctx context.Context, id string, pairs []Pair) error
	Load(ctx context.Context, id string) ([]Pair, error)
	Close() error
}

// Backend names accepted by Open.
const (
	BackendNone   = "none"
	BackendDir    = "dir"
	BackendBadger = "badger"
	BackendRedis  = "redis"
)

// Options selects and configures a Store backend.
type Options struct {
	Backend     string
	Dir         string
	BadgerPath  string
	RedisPrefix string
}

// Open returns the store named by opts.Backend. It returns a nil Store for
// BackendNone. client is only used by the redis backend.
func Open(opts Options, client redis.UniversalClient) (Store, error) {
	switch opts.Backend {
	case "", BackendNone:
		return nil, nil
	case BackendDir:
		s, err := NewDirStore(opts.Dir)
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendBadger:
		s, err := OpenBadgerStore(opts.BadgerPath)
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendRedis:
		if client == nil {
			return nil, errors.New("redis report store needs a redis client")
		}
		return NewRedisStore(client, opts.RedisPrefix), nil
	default:
		return nil, fmt.Errorf("unknown report backend %q", opts.Backend)
	}
}

// DirStore keeps each report in <dir>/<id>.txt.
type DirStore struct {
	dir string
}

// NewDirStore creates dir when missing.
func NewDirStore(dir string) (*DirStore, error) {
	if dir == "" {
		return nil, errors.New("report directory not set")
	}
	if err := utils.EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("failed to create report directory: %w", err)
	}
	return &DirStore{dir: dir}, nil
}

// Path returns the file that holds report id.
func (s *DirStore) Path(id string) string {
	return filepath.Join(s.dir, id+".txt")
}

func (s *DirStore) Save(_ context.Context, id string, pairs []Pair) error {
	if err := ValidateID(id); err != nil {
		return err
	}
	data, err := encodeBytes(pairs)
	if err != nil {
		return err
	}
	return utils.WriteFileAtomic(s.Path(id), data)
}

func (s *DirStore) Load(_ context.Context, id string) ([]Pair, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path(id))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return decodeBytes(data)
}

func (s *DirStore) Close() error { return nil }

// BadgerStore keeps reports under "report:<id>" in a Badger database.
type BadgerStore struct {
	db *badger.DB
}

// OpenBadgerStore opens the database at path. An empty path opens an
// in-memory database.
func OpenBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path).WithLoggingLevel(badger.WARNING)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger at %q: %w", path, err)
	}
	return &BadgerStore{db: db}, nil
}

func badgerKey(id string) []byte {
	return []byte("report:" + id)
}

func (s *BadgerStore) Save(_ context.Context, id string, pairs []Pair) error {
	if err := ValidateID(id); err != nil {
		return err
	}
	data, err := encodeBytes(pairs)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(badgerKey(id), data)
	})
}

func (s *BadgerStore) Load(_ context.Context, id string) ([]Pair, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(badgerKey(id))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return decodeBytes(data)
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// DefaultRedisPrefix namespaces report keys in Redis.
const DefaultRedisPrefix = "wordfix"

// RedisStore keeps reports under "<prefix>:report:<id>". The client stays
// owned by the caller.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStore wraps client. An empty prefix means DefaultRedisPrefix.
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(id string) string {
	return s.prefix + ":report:" + id
}

func (s *RedisStore) Save(ctx context.Context, id string, pairs []Pair) error {
	if err := ValidateID(id); err != nil {
		return err
	}
	data, err := encodeBytes(pairs)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(id), data, 0).Err()
}

func (s *RedisStore) Load(ctx context.Context, id string) ([]Pair, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", s.key(id), err)
	}
	return decodeBytes(data)
}

func (s *RedisStore) Close() error { return nil }
