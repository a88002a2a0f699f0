// Package sqlstore is a relational Store on sqlx. Each region gets its own
// table, TCACHE_<region> (TCACHE_DEFAULT for the default region). Region
// bytes outside [a-z0-9_] are written as "$xx", so "Users" lives in
// TCACHE_$55sers and never meets "users" on case-folding SQLite:
//
//	"Key"     TEXT PRIMARY KEY
//	"Value"   BLOB / BYTEA      codec bytes
//	"Updated" BIGINT            unix nanos
//	"Expiry"  BIGINT NULL       unix nanos, NULL = never
//
// Tables and their "Expiry" index are created the first time a batch
// touches a region. Batches are cut into partitions of PartitionSize rows,
// one statement each; a failing partition fails the call but partitions
// already written stay written.
//
// SQLite (modernc.org/sqlite) and PostgreSQL (lib/pq) are supported.
// PostgreSQL truncates identifiers to 63 bytes, so long region names can
// collide there.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"

	"github.com/unkn0wn-root/regioncache/codec"
	"github.com/unkn0wn-root/regioncache/internal/keyspace"
	"github.com/unkn0wn-root/regioncache/store"
)

const DefaultPartitionSize = 500

var (
	ErrNilDB    = errors.New("sqlstore: nil db")
	ErrNilCodec = errors.New("sqlstore: nil codec")
)

type Config[V any] struct {
	DB    *sqlx.DB
	Codec codec.Codec[V]

	// Dialect is inferred from DB.DriverName() when left zero.
	Dialect Dialect
	// Schema qualifies every table. PostgreSQL only; created if missing.
	Schema string

	// PartitionSize bounds the rows per statement; 0 => DefaultPartitionSize.
	// An upsert binds four parameters per row, so PartitionSize*4 must fit
	// the dialect's MaxParams.
	PartitionSize int
	// MaxConcurrency bounds partitions in flight; 0 => 1 (sequential).
	MaxConcurrency int

	CloseDB bool // set true only if this store exclusively owns the db

	// OnSweepError receives errors from the background sweeper.
	OnSweepError func(region string, err error)
}

type Store[V any] struct {
	db       *sqlx.DB
	codec    codec.Codec[V]
	d        Dialect
	schema   string
	partSize int
	maxConc  int
	closeDB  bool

	onSweepErr func(string, error)
	now        func() time.Time

	tables sync.Map // qualified table name -> region
}

var (
	_ store.Store[struct{}] = (*Store[struct{}])(nil)
	_ store.Deleter         = (*Store[struct{}])(nil)
)

func New[V any](cfg Config[V]) (*Store[V], error) {
	if cfg.DB == nil {
		return nil, ErrNilDB
	}
	if cfg.Codec == nil {
		return nil, ErrNilCodec
	}
	d := cfg.Dialect
	if d.Name == "" {
		var err error
		if d, err = DialectFor(cfg.DB.DriverName()); err != nil {
			return nil, err
		}
	}
	if cfg.Schema != "" && !d.Schemas {
		return nil, fmt.Errorf("sqlstore: %s does not support schemas", d.Name)
	}
	if cfg.PartitionSize < 0 || cfg.MaxConcurrency < 0 {
		return nil, errors.New("sqlstore: negative PartitionSize or MaxConcurrency")
	}

	s := &Store[V]{
		db:         cfg.DB,
		codec:      cfg.Codec,
		d:          d,
		schema:     cfg.Schema,
		partSize:   cfg.PartitionSize,
		maxConc:    cfg.MaxConcurrency,
		closeDB:    cfg.CloseDB,
		onSweepErr: cfg.OnSweepError,
		now:        time.Now,
	}
	if s.partSize == 0 {
		s.partSize = DefaultPartitionSize
	}
	if s.maxConc == 0 {
		s.maxConc = 1
	}
	if s.partSize*4 > d.MaxParams {
		return nil, fmt.Errorf("sqlstore: PartitionSize %d exceeds %s limit of %d parameters",
			s.partSize, d.Name, d.MaxParams)
	}
	return s, nil
}

type row struct {
	Key     string        `db:"Key"`
	Value   []byte        `db:"Value"`
	Updated int64         `db:"Updated"`
	Expiry  sql.NullInt64 `db:"Expiry"`
}

func (s *Store[V]) FetchItems(ctx context.Context, keys []string, region string) ([]store.Item[V], error) {
	if len(keys) == 0 {
		return nil, nil
	}
	table, err := s.ensureTable(ctx, region)
	if err != nil {
		return nil, err
	}

	now := s.now().UnixNano()
	parts := keyspace.Partition(keys, s.partSize)
	results := make([][]row, len(parts))
	err = s.run(ctx, len(parts), func(ctx context.Context, i int) error {
		part := parts[i]
		args := make([]any, 0, len(part)+1)
		for _, k := range part {
			args = append(args, k)
		}
		args = append(args, now)
		return s.db.SelectContext(ctx, &results[i], selectSQL(s.d, table, len(part)), args...)
	})
	if err != nil {
		return nil, err
	}

	out := make([]store.Item[V], 0, len(keys))
	var corrupt []string
	for _, rows := range results {
		for _, r := range rows {
			v, err := s.codec.Decode(r.Value)
			if err != nil {
				corrupt = append(corrupt, r.Key)
				continue
			}
			out = append(out, store.Item[V]{
				Key:         r.Key,
				Value:       v,
				LastUpdated: fromUnixNano(r.Updated),
				Expiration:  fromNullUnixNano(r.Expiry),
			})
		}
	}
	if len(corrupt) > 0 {
		// self-heal, best effort
		_ = s.DeleteKeys(ctx, corrupt, region)
	}
	return out, nil
}

// UpsertItems writes one multi-row upsert per partition. Keys within items
// must be distinct.
func (s *Store[V]) UpsertItems(ctx context.Context, items []store.Item[V], region string) error {
	if len(items) == 0 {
		return nil
	}

	args := make([]any, 0, len(items)*4)
	for _, it := range items {
		b, err := s.codec.Encode(it.Value)
		if err != nil {
			return fmt.Errorf("encode %q: %w", it.Key, err)
		}
		var expiry any
		if !it.Expiration.IsZero() {
			expiry = it.Expiration.UnixNano()
		}
		args = append(args, it.Key, b, unixNano(it.LastUpdated), expiry)
	}

	table, err := s.ensureTable(ctx, region)
	if err != nil {
		return err
	}

	parts := keyspace.Partition(args, s.partSize*4)
	return s.run(ctx, len(parts), func(ctx context.Context, i int) error {
		part := parts[i]
		_, err := s.db.ExecContext(ctx, upsertSQL(s.d, table, len(part)/4), part...)
		return err
	})
}

func (s *Store[V]) DeleteKeys(ctx context.Context, keys []string, region string) error {
	if len(keys) == 0 {
		return nil
	}
	table, err := s.ensureTable(ctx, region)
	if err != nil {
		return err
	}

	parts := keyspace.Partition(keys, s.partSize)
	return s.run(ctx, len(parts), func(ctx context.Context, i int) error {
		part := parts[i]
		args := make([]any, len(part))
		for j, k := range part {
			args[j] = k
		}
		_, err := s.db.ExecContext(ctx, deleteSQL(s.d, table, len(part)), args...)
		return err
	})
}

// Close closes the db only when this store owns it.
func (s *Store[V]) Close(context.Context) error {
	if s.closeDB {
		return s.db.Close()
	}
	return nil
}

// run calls fn for partitions 0..n-1 with at most maxConc in flight and
// returns the first error. Partitions not yet started are skipped once one
// has failed.
func (s *Store[V]) run(ctx context.Context, n int, fn func(ctx context.Context, i int) error) error {
	if n == 1 {
		return fn(ctx, 0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConc)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return fn(gctx, i)
		})
	}
	return g.Wait()
}

func (s *Store[V]) qualified(name string) string {
	if s.schema == "" {
		return quoteIdent(name)
	}
	return quoteIdent(s.schema) + "." + quoteIdent(name)
}

// ensureTable creates the region's table and index once per store.
func (s *Store[V]) ensureTable(ctx context.Context, region string) (string, error) {
	name := keyspace.PhysicalTable(region)
	table := s.qualified(name)
	if _, ok := s.tables.Load(table); ok {
		return table, nil
	}

	if s.schema != "" {
		if _, err := s.db.ExecContext(ctx, "CREATE SCHEMA IF NOT EXISTS "+quoteIdent(s.schema)); err != nil {
			return "", fmt.Errorf("create schema %s: %w", s.schema, err)
		}
	}
	if _, err := s.db.ExecContext(ctx, createTableSQL(s.d, table)); err != nil {
		return "", fmt.Errorf("create table %s: %w", table, err)
	}
	if _, err := s.db.ExecContext(ctx, createIndexSQL(quoteIdent("IX_"+name+"_Expiry"), table)); err != nil {
		return "", fmt.Errorf("create index on %s: %w", table, err)
	}
	s.tables.Store(table, region)
	return table, nil
}

func unixNano(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func fromUnixNano(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n).UTC()
}

func fromNullUnixNano(n sql.NullInt64) time.Time {
	if !n.Valid {
		return time.Time{}
	}
	return fromUnixNano(n.Int64)
}
