package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/liftaudit/internal/client/models"
)

// Sync runs one sync pass and prints the summary.
func (a *App) Sync(ctx context.Context) error {
	summary, err := a.engine.Sync(ctx)
	if err != nil {
		return err
	}

	if summary.NothingToSync {
		printlnFn("Nothing to sync.")
		return nil
	}

	printlnFn(fmt.Sprintf("Synced %d draft(s), uploaded %d attachment(s).",
		summary.SyncedDrafts, summary.UploadedAttachments))
	for _, msg := range summary.Errors {
		printlnFn("  failed:", msg)
	}
	return nil
}

// Refresh updates the local catalog cache from the server.
func (a *App) Refresh(ctx context.Context) error {
	if err := a.catalog.Refresh(ctx); err != nil {
		return err
	}
	gen, err := a.st.Catalog.Generation(ctx)
	if err != nil {
		return err
	}
	printlnFn("Catalog generation:", gen)
	return nil
}

// Status prints connectivity, catalog generation and the local queue state.
func (a *App) Status(ctx context.Context) error {
	printlnFn("Mode:", string(a.currentMode()))

	gen, err := a.st.Catalog.Generation(ctx)
	if err != nil {
		return err
	}
	if gen == "" {
		printlnFn("Catalog: never refreshed")
	} else {
		printlnFn("Catalog generation:", gen)
	}

	drafts, err := a.st.Drafts.GetAll(ctx)
	if err != nil {
		return err
	}
	counts := map[models.SyncState]int{}
	for _, d := range drafts {
		counts[d.SyncState]++
	}
	printlnFn(fmt.Sprintf("Drafts: %d total, %d pending, %d error",
		len(drafts), counts[models.SyncStatePending], counts[models.SyncStateError]))
	return nil
}
