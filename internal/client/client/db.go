package client

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/emezab/registro/internal/client/migrations"
	"github.com/emezab/registro/internal/client/models"
	"github.com/emezab/registro/internal/client/repositories/attachments"
	"github.com/emezab/registro/internal/client/repositories/entries"
	"github.com/emezab/registro/internal/client/repositories/metadata"
	"github.com/emezab/registro/internal/client/repositories/queue"
	"github.com/emezab/registro/internal/common"
	"github.com/emezab/registro/internal/dbx"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

// Repositories bundles the four local collections. A Store hands out one set
// bound to the database and, through WithTx, transaction-scoped sets.
type Repositories struct {
	Entries     entries.Repository
	Queue       queue.Repository
	Attachments attachments.Repository
	Metadata    metadata.Repository
}

func newRepositories(db dbx.DBTX) *Repositories {
	return &Repositories{
		Entries:     entries.NewSQLiteRepository(db),
		Queue:       queue.NewSQLiteRepository(db),
		Attachments: attachments.NewSQLiteRepository(db),
		Metadata:    metadata.NewSQLiteRepository(db),
	}
}

// Store owns the local durable database for one session. It is created once
// at startup and closed on shutdown; everything else borrows repositories
// from it.
type Store struct {
	db *sql.DB
	*Repositories
}

func runMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// OpenStore opens (creating if needed) the local database at path and brings
// its schema up to date. Failures map to common.ErrStorageUnavailable: fatal
// for this session, not for the device.
func OpenStore(ctx context.Context, path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
	}

	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
	}

	return &Store{db: db, Repositories: newRepositories(db)}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// WithTx runs fn against transaction-scoped repositories, committing on
// success and rolling back on error. The sync engine uses it to apply one
// queue item's local effects as a unit.
func (s *Store) WithTx(ctx context.Context, fn func(r *Repositories) error) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(newRepositories(tx))
	})
}

// Stats counts records per collection.
func (s *Store) Stats(ctx context.Context) (*models.StorageStats, error) {
	stats := &models.StorageStats{}
	var err error
	if stats.Entries, err = s.Entries.Count(ctx); err != nil {
		return nil, err
	}
	if stats.Queue, err = s.Queue.Count(ctx); err != nil {
		return nil, err
	}
	if stats.Attachments, err = s.Attachments.Count(ctx); err != nil {
		return nil, err
	}
	return stats, nil
}

// ClearAll wipes every collection. Used by the "clear cache" escape hatch
// when the device runs out of storage.
func (s *Store) ClearAll(ctx context.Context) error {
	return s.WithTx(ctx, func(r *Repositories) error {
		if err := r.Entries.Clear(ctx); err != nil {
			return err
		}
		if err := r.Queue.Clear(ctx); err != nil {
			return err
		}
		if err := r.Attachments.Clear(ctx); err != nil {
			return err
		}
		return r.Metadata.Clear(ctx)
	})
}
