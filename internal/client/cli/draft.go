package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/liftaudit/internal/client/services"
	"github.com/google/uuid"
)

// ListDrafts prints every local draft with its sync state.
func (a *App) ListDrafts(ctx context.Context) error {
	drafts, err := a.st.Drafts.GetAll(ctx)
	if err != nil {
		return err
	}
	if len(drafts) == 0 {
		printlnFn("No local drafts.")
		return nil
	}

	for _, d := range drafts {
		line := fmt.Sprintf("%s  [%s]  updated %s  attachments: %d",
			shortID(d.ClientID), d.SyncState, d.UpdatedAt.Format("2006-01-02 15:04"), d.AttachmentCount)
		if d.SyncError != "" {
			line += "  error: " + d.SyncError
		}
		printlnFn(line)
	}
	return nil
}

// NewDraft creates a fresh draft and opens it for editing.
func (a *App) NewDraft(ctx context.Context) error {
	id := uuid.NewString()
	if err := a.openForm(ctx, id); err != nil {
		return err
	}
	printlnFn("Created draft", shortID(id))
	return nil
}

// OpenDraft opens an existing draft by id or unique id prefix.
func (a *App) OpenDraft(ctx context.Context, id string) error {
	drafts, err := a.st.Drafts.GetAll(ctx)
	if err != nil {
		return err
	}

	var matches []string
	for _, d := range drafts {
		if strings.HasPrefix(d.ClientID, id) {
			matches = append(matches, d.ClientID)
		}
	}
	switch len(matches) {
	case 0:
		return fmt.Errorf("no draft matches %q", id)
	case 1:
	default:
		return fmt.Errorf("%q is ambiguous (%d matches)", id, len(matches))
	}

	if err := a.openForm(ctx, matches[0]); err != nil {
		return err
	}
	printlnFn("Opened draft", shortID(matches[0]))
	return nil
}

// openForm builds a fresh form for the draft and binds it to the store,
// restoring any previously saved answers.
func (a *App) openForm(ctx context.Context, clientID string) error {
	form := services.NewChecklistForm(a.structure, a.formLimits())
	binder := services.NewBinder(clientID, a.st, form, a.log)
	if err := binder.Bind(ctx); err != nil {
		return err
	}

	a.draftID = clientID
	a.form = form
	a.binder = binder
	return nil
}

// formLimits applies configured attachment limits over the defaults.
func (a *App) formLimits() services.FormLimits {
	limits := services.DefaultFormLimits()
	if a.config == nil {
		return limits
	}
	if a.config.MaxAttachmentsPerQuestion > 0 {
		limits.MaxPerQuestion = a.config.MaxAttachmentsPerQuestion
	}
	if a.config.MaxAttachmentsPerAudit > 0 {
		limits.MaxPerAudit = a.config.MaxAttachmentsPerAudit
	}
	if a.config.MaxAttachmentBytes > 0 {
		limits.Image.MaxBytes = a.config.MaxAttachmentBytes
	}
	return limits
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
