package catalog

import (
	"context"

	"github.com/dmitrijs2005/liftaudit/internal/client/models"
)

// Repository describes the local catalog cache: buildings, elevators and
// object-info field definitions plus the snapshot generation timestamp.
type Repository interface {
	// ReplaceAll atomically swaps the three reference collections and the
	// generation timestamp for the given snapshot. The previous cache stays
	// intact unless the whole replace commits.
	ReplaceAll(ctx context.Context, snap *models.Snapshot) error

	// IsEmpty reports whether the cache holds no reference data at all.
	IsEmpty(ctx context.Context) (bool, error)

	// ListBuildings returns all cached buildings in insertion order.
	ListBuildings(ctx context.Context) ([]models.Building, error)

	// ListElevatorsByBuilding returns the elevators of one building.
	ListElevatorsByBuilding(ctx context.Context, buildingID int64) ([]models.Elevator, error)

	// GetElevator returns one elevator or common.ErrNotFound.
	GetElevator(ctx context.Context, id int64) (*models.Elevator, error)

	// ListFields returns object-info field definitions in display order.
	ListFields(ctx context.Context) ([]models.ObjectInfoField, error)

	// Generation returns the cached snapshot's generation timestamp, empty
	// when no snapshot was ever stored.
	Generation(ctx context.Context) (string, error)
}
