package drafts

import (
	"context"

	"github.com/dmitrijs2005/liftaudit/internal/client/models"
)

// Repository describes persistence operations for draft audits.
// Implementations are backed by the local SQLite database.
type Repository interface {
	// CreateOrUpdate upserts a draft by its client id.
	CreateOrUpdate(ctx context.Context, d *models.Draft) error

	// GetByClientID returns a single draft or common.ErrNotFound.
	GetByClientID(ctx context.Context, clientID string) (*models.Draft, error)

	// GetAll lists every draft, ordered by creation time.
	GetAll(ctx context.Context) ([]models.Draft, error)

	// GetAllUnsynced returns drafts whose sync state is not "synced",
	// i.e. everything the sync engine should consider.
	GetAllUnsynced(ctx context.Context) ([]*models.Draft, error)

	// SetSyncState transitions a draft's sync state and records the failure
	// reason (empty for non-error states).
	SetSyncState(ctx context.Context, clientID string, state models.SyncState, reason string) error

	// DeleteByClientID removes the draft row only; cascading cleanup of
	// responses, attachments and additions is the store's job.
	DeleteByClientID(ctx context.Context, clientID string) error
}
