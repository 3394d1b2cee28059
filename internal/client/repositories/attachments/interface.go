package attachments

import (
	"context"

	"github.com/dmitrijs2005/liftaudit/internal/client/models"
)

// Repository describes persistence operations for photo attachments.
// Keys are deterministic ({clientID}:{localID}); binary payloads live in the
// same row as their metadata.
type Repository interface {
	// Upsert inserts or updates one attachment by its deterministic key.
	Upsert(ctx context.Context, a *models.Attachment) error

	// ListByDraft returns a draft's attachments ordered by creation time,
	// which is the order they are restored into the form.
	ListByDraft(ctx context.Context, clientID string) ([]models.Attachment, error)

	// ListKeysByDraft returns the stored keys for one draft, used for
	// set-difference cleanup during a flush.
	ListKeysByDraft(ctx context.Context, clientID string) ([]string, error)

	// SetOfflineUUID persists a lazily-minted idempotency token. It is an
	// error to call it for a key that does not exist: the token must never
	// be lost between retries.
	SetOfflineUUID(ctx context.Context, key, offlineUUID string) error

	// DeleteKeys removes the given attachment keys.
	DeleteKeys(ctx context.Context, keys []string) error

	// DeleteByDraft removes every attachment of one draft.
	DeleteByDraft(ctx context.Context, clientID string) error
}
