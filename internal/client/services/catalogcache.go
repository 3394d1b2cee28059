package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/liftaudit/internal/client/client"
	"github.com/dmitrijs2005/liftaudit/internal/client/models"
	"github.com/dmitrijs2005/liftaudit/internal/client/store"
	"github.com/dmitrijs2005/liftaudit/internal/logging"
)

// CatalogCache keeps the local snapshot of reference data (buildings,
// elevators, object-info fields) fresh. Reads always hit the local cache;
// network refreshes replace it atomically.
type CatalogCache struct {
	st  *store.Store
	api client.API
	log logging.Logger
}

func NewCatalogCache(st *store.Store, api client.API, log logging.Logger) *CatalogCache {
	return &CatalogCache{st: st, api: api, log: log}
}

// SeedIfEmpty stores the bundled snapshot when the cache has never been
// populated, so a first launch without connectivity still has reference data.
func (c *CatalogCache) SeedIfEmpty(ctx context.Context, snap *models.Snapshot) error {
	empty, err := c.st.Catalog.IsEmpty(ctx)
	if err != nil {
		return fmt.Errorf("checking catalog cache: %w", err)
	}
	if !empty || snap == nil {
		return nil
	}
	if err := c.st.Catalog.ReplaceAll(ctx, snap); err != nil {
		return fmt.Errorf("seeding catalog cache: %w", err)
	}
	c.log.Info(ctx, "catalog cache seeded", "generatedAt", snap.GeneratedAt,
		"buildings", len(snap.Buildings), "elevators", len(snap.Elevators))
	return nil
}

// Refresh fetches the current snapshot and swaps the cache. A fetch failure
// keeps the previous cache: it is returned as an error only when the cache
// is empty and the client therefore has nothing to work with; otherwise it
// is logged and swallowed.
func (c *CatalogCache) Refresh(ctx context.Context) error {
	snap, err := c.api.FetchSnapshot(ctx)
	if err != nil {
		empty, checkErr := c.st.Catalog.IsEmpty(ctx)
		if checkErr != nil {
			return fmt.Errorf("checking catalog cache: %w", checkErr)
		}
		if empty {
			return fmt.Errorf("catalog refresh failed with empty cache: %w", err)
		}
		c.log.Warn(ctx, "catalog refresh failed, keeping cached snapshot", "error", err)
		return nil
	}

	if err := c.st.Catalog.ReplaceAll(ctx, snap); err != nil {
		return fmt.Errorf("replacing catalog cache: %w", err)
	}
	c.log.Info(ctx, "catalog cache refreshed", "generatedAt", snap.GeneratedAt,
		"buildings", len(snap.Buildings), "elevators", len(snap.Elevators))
	return nil
}
