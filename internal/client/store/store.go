// Package store opens the local audit database, applies schema migrations
// and hands out the repository set. Opening is idempotent: migrations are
// additive only, so reopening a database written by an older schema version
// preserves every existing record.
package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/liftaudit/internal/client/migrations"
	"github.com/dmitrijs2005/liftaudit/internal/client/repositories/additions"
	"github.com/dmitrijs2005/liftaudit/internal/client/repositories/attachments"
	"github.com/dmitrijs2005/liftaudit/internal/client/repositories/catalog"
	"github.com/dmitrijs2005/liftaudit/internal/client/repositories/drafts"
	"github.com/dmitrijs2005/liftaudit/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/liftaudit/internal/client/repositories/responses"
	"github.com/dmitrijs2005/liftaudit/internal/common"
	"github.com/dmitrijs2005/liftaudit/internal/dbx"
	"github.com/google/uuid"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

// Store bundles the open database handle with one repository per collection.
type Store struct {
	db *sql.DB

	Drafts      drafts.Repository
	Responses   responses.Repository
	Attachments attachments.Repository
	Additions   additions.Repository
	Catalog     catalog.Repository
	Metadata    metadata.Repository
}

// RunMigrations applies all embedded migrations to db.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// Open opens (creating if needed) the database at dsn and migrates it to the
// current schema version. Every failure is wrapped in
// common.ErrStorageUnavailable so callers can degrade offline features
// instead of crashing.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
	}

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
	}

	return &Store{
		db:          db,
		Drafts:      drafts.NewSQLiteRepository(db),
		Responses:   responses.NewSQLiteRepository(db),
		Attachments: attachments.NewSQLiteRepository(db),
		Additions:   additions.NewSQLiteRepository(db),
		Catalog:     catalog.NewSQLiteRepository(db),
		Metadata:    metadata.NewSQLiteRepository(db),
	}, nil
}

// DB exposes the raw handle for transaction helpers.
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) Close() error {
	return s.db.Close()
}

// DeleteDraftCascade removes a draft together with its responses, attachments
// and catalog additions in one transaction. This is the only code path that
// deletes a draft, and it runs only after the server confirmed durable
// receipt of everything the draft owns.
func (s *Store) DeleteDraftCascade(ctx context.Context, clientID string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := responses.NewSQLiteRepository(tx).DeleteByDraft(ctx, clientID); err != nil {
			return err
		}
		if err := attachments.NewSQLiteRepository(tx).DeleteByDraft(ctx, clientID); err != nil {
			return err
		}
		if err := additions.NewSQLiteRepository(tx).DeleteByDraft(ctx, clientID); err != nil {
			return err
		}
		return drafts.NewSQLiteRepository(tx).DeleteByClientID(ctx, clientID)
	})
}

// DeviceID returns the persisted device identifier, generating and storing a
// fresh one on first use. The id is stable across sessions; the server uses
// it to attribute sync batches.
func (s *Store) DeviceID(ctx context.Context) (string, error) {
	v, err := s.Metadata.Get(ctx, common.MetaKeyDeviceID)
	if err != nil {
		return "", err
	}
	if len(v) > 0 {
		return string(v), nil
	}

	id := uuid.NewString()
	if err := s.Metadata.Set(ctx, common.MetaKeyDeviceID, []byte(id)); err != nil {
		return "", err
	}
	return id, nil
}
