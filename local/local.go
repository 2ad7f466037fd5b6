// Package local implements the on-device half of the cachestore backend
// pair: a durable store on SQLite with values encoded as CBOR blobs.
//
// The store is slot-oriented. Each read kind (query, queryWithQuery,
// aggregate) owns a slot namespace, and within a slot entries are keyed by
// [cachestore.CacheKey] of the operation argument. Cache maintenance
// writes issued by the orchestrator through Put land in the exact slot a
// later read of the same operation will consult.
package local

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/fxamacker/cbor/v2"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"github.com/dalalsunil1986/cachestore"
)

// Config locates the database file.
type Config struct {
	Path string `env:"CACHESTORE_DB_PATH" envDefault:"cachestore.db"`
}

// ConfigFromEnv reads the configuration from the environment.
func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("local: parse env: %w", err)
	}
	return cfg, nil
}

// Store is a [cachestore.Local] backed by a single SQLite database. It is
// safe for concurrent use; the database is opened in WAL mode so reads
// and maintenance writes from independent operations do not block each
// other.
type Store struct {
	db  *sql.DB
	log zerolog.Logger
	enc cbor.EncMode
	dec cbor.DecMode
}

var _ cachestore.Local = (*Store)(nil)

// Option customizes a Store at open time.
type Option func(*Store)

// WithLogger attaches a logger. The default is a no-op logger.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Store) { s.log = log }
}

const schema = `
CREATE TABLE IF NOT EXISTS entries (
	slot       TEXT    NOT NULL,
	key        TEXT    NOT NULL,
	value      BLOB    NOT NULL,
	updated_at INTEGER NOT NULL,
	PRIMARY KEY (slot, key)
);`

// Open opens (and if necessary creates) the database at cfg.Path.
func Open(cfg Config, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", cfg.Path))
	if err != nil {
		return nil, fmt.Errorf("local: open %s: %w", cfg.Path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("local: migrate: %w", err)
	}

	enc, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		db.Close()
		return nil, err
	}
	dec, err := cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		db.Close()
		return nil, err
	}

	s := &Store{db: db, log: zerolog.Nop(), enc: enc, dec: dec}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// --------------------------------------------------
// Backend surface
// --------------------------------------------------

func (s *Store) Aggregate(ctx context.Context, spec any, _ cachestore.SubOptions) (*cachestore.Result, error) {
	return s.get(ctx, cachestore.KindAggregate, cachestore.CacheKey(cachestore.KindAggregate, spec))
}

func (s *Store) Query(ctx context.Context, id string, _ cachestore.SubOptions) (*cachestore.Result, error) {
	return s.get(ctx, cachestore.KindQuery, id)
}

func (s *Store) QueryWithQuery(ctx context.Context, query any, _ cachestore.SubOptions) (*cachestore.Result, error) {
	return s.get(ctx, cachestore.KindQueryWithQuery, cachestore.CacheKey(cachestore.KindQueryWithQuery, query))
}

// Save upserts an object into the single-object slot. The object must
// carry an identity; the local store never assigns ids.
func (s *Store) Save(ctx context.Context, object any, _ cachestore.SubOptions) (*cachestore.Result, error) {
	id, ok := cachestore.IdentityOf(object)
	if !ok {
		return nil, errors.New("local: save: object has no identity")
	}
	if err := s.put(ctx, cachestore.KindQuery, id, object); err != nil {
		return nil, err
	}
	return &cachestore.Result{Value: object}, nil
}

func (s *Store) Remove(ctx context.Context, object any, _ cachestore.SubOptions) (*cachestore.Result, error) {
	id, ok := cachestore.IdentityOf(object)
	if !ok {
		return nil, errors.New("local: remove: object has no identity")
	}
	n, err := s.del(ctx, cachestore.KindQuery, id)
	if err != nil {
		return nil, err
	}
	return &cachestore.Result{Value: n}, nil
}

func (s *Store) RemoveWithQuery(ctx context.Context, query any, _ cachestore.SubOptions) (*cachestore.Result, error) {
	n, err := s.del(ctx, cachestore.KindQueryWithQuery, cachestore.CacheKey(cachestore.KindQueryWithQuery, query))
	if err != nil {
		return nil, err
	}
	return &cachestore.Result{Value: n}, nil
}

// Put is the maintenance entry point. A nil value invalidates the slot
// entry instead of writing it.
func (s *Store) Put(ctx context.Context, kind cachestore.Kind, key string, value any) error {
	if value == nil {
		_, err := s.del(ctx, kind, key)
		return err
	}
	return s.put(ctx, kind, key, value)
}

// --------------------------------------------------
// Row access
// --------------------------------------------------

func (s *Store) get(ctx context.Context, kind cachestore.Kind, key string) (*cachestore.Result, error) {
	var blob []byte
	row := s.db.QueryRowContext(ctx, `SELECT value FROM entries WHERE slot = ? AND key = ?`, kind.String(), key)
	if err := row.Scan(&blob); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("local: %s %q: %w", kind, key, cachestore.ErrNotFound)
		}
		return nil, fmt.Errorf("local: %s %q: %w", kind, key, err)
	}

	var value any
	if err := s.dec.Unmarshal(blob, &value); err != nil {
		return nil, fmt.Errorf("local: decode %s %q: %w", kind, key, err)
	}
	return &cachestore.Result{Value: value}, nil
}

func (s *Store) put(ctx context.Context, kind cachestore.Kind, key string, value any) error {
	blob, err := s.enc.Marshal(value)
	if err != nil {
		return fmt.Errorf("local: encode %s %q: %w", kind, key, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO entries (slot, key, value, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (slot, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		kind.String(), key, blob, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("local: put %s %q: %w", kind, key, err)
	}
	s.log.Trace().Stringer("slot", kind).Str("key", key).Msg("put")
	return nil
}

func (s *Store) del(ctx context.Context, kind cachestore.Kind, key string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM entries WHERE slot = ? AND key = ?`, kind.String(), key)
	if err != nil {
		return 0, fmt.Errorf("local: delete %s %q: %w", kind, key, err)
	}
	n, _ := res.RowsAffected()
	s.log.Trace().Stringer("slot", kind).Str("key", key).Int64("rows", n).Msg("delete")
	return n, nil
}
