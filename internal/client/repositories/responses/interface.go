package responses

import (
	"context"

	"github.com/dmitrijs2005/liftaudit/internal/client/models"
)

// Repository describes persistence operations for question responses.
// The storage key is deterministic ({clientID}:{questionID}) so flushes are
// idempotent: re-saving the same in-memory state never duplicates rows.
type Repository interface {
	// Upsert inserts or updates one response by its deterministic key.
	Upsert(ctx context.Context, resp *models.Response) error

	// ListByDraft returns all responses of one draft ordered by question id.
	ListByDraft(ctx context.Context, clientID string) ([]models.Response, error)

	// ListKeysByDraft returns the stored keys for one draft, used for
	// set-difference cleanup during a flush.
	ListKeysByDraft(ctx context.Context, clientID string) ([]string, error)

	// DeleteKeys removes the given response keys.
	DeleteKeys(ctx context.Context, keys []string) error

	// DeleteByDraft removes every response of one draft.
	DeleteByDraft(ctx context.Context, clientID string) error
}
