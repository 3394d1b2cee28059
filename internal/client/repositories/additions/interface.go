package additions

import (
	"context"

	"github.com/dmitrijs2005/liftaudit/internal/client/models"
)

// Repository describes persistence operations for offline catalog additions
// (buildings and elevators created while disconnected).
type Repository interface {
	// Create inserts a new addition. Additions are immutable once created;
	// they are deleted when their owning draft syncs.
	Create(ctx context.Context, a *models.CatalogAddition) error

	// ListAll returns every addition, ordered by creation time. The sync
	// engine indexes these by draft and type, first-seen wins.
	ListAll(ctx context.Context) ([]models.CatalogAddition, error)

	// ListByDraft returns the additions owned by one draft.
	ListByDraft(ctx context.Context, clientID string) ([]models.CatalogAddition, error)

	// DeleteByDraft removes every addition owned by one draft.
	DeleteByDraft(ctx context.Context, clientID string) error
}
