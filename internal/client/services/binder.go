package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/liftaudit/internal/client/models"
	"github.com/dmitrijs2005/liftaudit/internal/client/store"
	"github.com/dmitrijs2005/liftaudit/internal/common"
	"github.com/dmitrijs2005/liftaudit/internal/logging"
)

// DefaultFlushDebounce coalesces bursts of change events into one write.
const DefaultFlushDebounce = 300 * time.Millisecond

// Binder keeps one draft's form state mirrored into the local store. It
// restores stored answers on Bind, then listens to form events: change
// events schedule a debounced flush, save events flush immediately.
type Binder struct {
	clientID string
	st       *store.Store
	form     *ChecklistForm
	log      logging.Logger
	debounce time.Duration
	now      func() time.Time

	mu    sync.Mutex
	timer *time.Timer
}

// BinderOption tweaks a Binder during construction.
type BinderOption func(*Binder)

// WithFlushDebounce overrides the debounce interval (tests use a short one).
func WithFlushDebounce(d time.Duration) BinderOption {
	return func(b *Binder) { b.debounce = d }
}

// NewBinder wires a form to the store under the given draft client id.
func NewBinder(clientID string, st *store.Store, form *ChecklistForm, log logging.Logger, opts ...BinderOption) *Binder {
	b := &Binder{
		clientID: clientID,
		st:       st,
		form:     form,
		log:      log,
		debounce: DefaultFlushDebounce,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Bind restores the stored draft state into the form (creating a fresh
// pending draft when none exists), then subscribes to form events. Restore
// runs with change events suppressed so it cannot trigger a write-back loop.
func (b *Binder) Bind(ctx context.Context) error {
	if err := b.restore(ctx); err != nil {
		return err
	}

	b.form.Subscribe(func(ev FormEvent) {
		switch ev.Kind {
		case EventChange:
			b.scheduleFlush()
		case EventSave:
			ctx := context.Background()
			if err := b.Flush(ctx); err != nil {
				b.log.Error(ctx, "flush on save failed", "clientID", b.clientID, "error", err)
				return
			}
			if err := b.updateLifecycle(ctx); err != nil {
				b.log.Error(ctx, "updating draft status failed", "clientID", b.clientID, "error", err)
			}
		}
	})

	b.form.EmitReady()
	return nil
}

func (b *Binder) restore(ctx context.Context) error {
	draft, err := b.st.Drafts.GetByClientID(ctx, b.clientID)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return fmt.Errorf("loading draft %s: %w", b.clientID, err)
	}

	if draft == nil {
		now := b.now().UTC()
		draft = &models.Draft{
			ClientID:  b.clientID,
			Status:    models.DraftStatusDraft,
			SyncState: models.SyncStatePending,
			StartedAt: &now,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := b.st.Drafts.CreateOrUpdate(ctx, draft); err != nil {
			return fmt.Errorf("creating draft %s: %w", b.clientID, err)
		}
	}

	responses, err := b.st.Responses.ListByDraft(ctx, b.clientID)
	if err != nil {
		return fmt.Errorf("loading responses for %s: %w", b.clientID, err)
	}
	attachments, err := b.st.Attachments.ListByDraft(ctx, b.clientID)
	if err != nil {
		return fmt.Errorf("loading attachments for %s: %w", b.clientID, err)
	}

	b.form.Restoring(func() {
		for _, r := range responses {
			if err := b.form.SetScore(r.QuestionID, r.Score); err != nil {
				b.log.Warn(ctx, "skipping stored response for unknown question", "key", r.Key(), "error", err)
				continue
			}
			if r.Comment != "" {
				_ = b.form.SetComment(r.QuestionID, r.Comment)
			}
		}
		for _, a := range attachments {
			att := FormAttachment{
				LocalID:      a.LocalID,
				Name:         a.Name,
				Size:         a.Size,
				MimeType:     a.MimeType,
				LastModified: a.LastModified,
				Data:         a.Data,
				Caption:      a.Caption,
				CreatedAt:    a.CreatedAt,
			}
			if err := b.form.RestoreAttachment(a.QuestionID, att); err != nil {
				b.log.Warn(ctx, "skipping stored attachment for unknown question", "key", models.AttachmentKey(a.ClientID, a.LocalID), "error", err)
			}
		}
	})

	return nil
}

// scheduleFlush restarts the debounce timer; only the last change in a burst
// actually reaches the database.
func (b *Binder) scheduleFlush() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.timer != nil {
		b.timer.Stop()
	}
	b.timer = time.AfterFunc(b.debounce, func() {
		if err := b.Flush(context.Background()); err != nil {
			b.log.Error(context.Background(), "debounced flush failed", "clientID", b.clientID, "error", err)
		}
	})
}

// Flush writes the current form snapshot to the store. Upserts use
// deterministic keys, so flushing the same state twice is a no-op; rows
// whose source disappeared from the form are removed by set difference.
func (b *Binder) Flush(ctx context.Context) error {
	b.mu.Lock()
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.mu.Unlock()

	snap := b.form.Snapshot()
	now := b.now().UTC()

	draft, err := b.st.Drafts.GetByClientID(ctx, b.clientID)
	if err != nil {
		return fmt.Errorf("loading draft %s: %w", b.clientID, err)
	}

	wantResponses := make(map[string]bool)
	wantAttachments := make(map[string]bool)
	attachmentCount := 0

	for _, q := range snap.Questions {
		if q.Answered() || q.Comment != "" {
			resp := &models.Response{
				ClientID:        b.clientID,
				QuestionID:      q.ID,
				Score:           q.Score,
				Comment:         q.Comment,
				RequiresComment: q.RequiresComment,
				QuestionType:    string(q.Type),
				MaxScore:        q.MaxScore,
				UpdatedAt:       now,
			}
			if err := b.st.Responses.Upsert(ctx, resp); err != nil {
				return fmt.Errorf("saving response %s: %w", resp.Key(), err)
			}
			wantResponses[resp.Key()] = true
		}

		for _, a := range q.Attachments {
			att := &models.Attachment{
				ClientID:     b.clientID,
				LocalID:      a.LocalID,
				QuestionID:   q.ID,
				Name:         a.Name,
				Size:         a.Size,
				MimeType:     a.MimeType,
				LastModified: a.LastModified,
				Data:         a.Data,
				Caption:      a.Caption,
				CreatedAt:    a.CreatedAt,
			}
			if err := b.st.Attachments.Upsert(ctx, att); err != nil {
				return fmt.Errorf("saving attachment %s: %w", models.AttachmentKey(att.ClientID, att.LocalID), err)
			}
			wantAttachments[models.AttachmentKey(att.ClientID, att.LocalID)] = true
			attachmentCount++
		}
	}

	if err := b.cleanupStale(ctx, wantResponses, wantAttachments); err != nil {
		return err
	}

	draft.UpdatedAt = now
	draft.AttachmentCount = attachmentCount
	draft.HasChecklist = true
	if err := b.st.Drafts.CreateOrUpdate(ctx, draft); err != nil {
		return fmt.Errorf("saving draft %s: %w", b.clientID, err)
	}
	return nil
}

// updateLifecycle runs after a successful save-draft flush: a checklist with
// every question answered moves the draft to submitted and stamps the finish
// time; an incomplete one moves it back to draft.
func (b *Binder) updateLifecycle(ctx context.Context) error {
	snap := b.form.Snapshot()
	complete := true
	for _, q := range snap.Questions {
		if !q.Answered() {
			complete = false
			break
		}
	}

	draft, err := b.st.Drafts.GetByClientID(ctx, b.clientID)
	if err != nil {
		return fmt.Errorf("loading draft %s: %w", b.clientID, err)
	}

	if complete {
		now := b.now().UTC()
		draft.Status = models.DraftStatusSubmitted
		draft.FinishedAt = &now
	} else {
		draft.Status = models.DraftStatusDraft
		draft.FinishedAt = nil
	}
	if err := b.st.Drafts.CreateOrUpdate(ctx, draft); err != nil {
		return fmt.Errorf("saving draft %s: %w", b.clientID, err)
	}
	return nil
}

// cleanupStale deletes stored rows that no longer exist in the form.
func (b *Binder) cleanupStale(ctx context.Context, wantResponses, wantAttachments map[string]bool) error {
	respKeys, err := b.st.Responses.ListKeysByDraft(ctx, b.clientID)
	if err != nil {
		return fmt.Errorf("listing response keys for %s: %w", b.clientID, err)
	}
	stale := staleKeys(respKeys, wantResponses)
	if len(stale) > 0 {
		if err := b.st.Responses.DeleteKeys(ctx, stale); err != nil {
			return fmt.Errorf("deleting stale responses for %s: %w", b.clientID, err)
		}
	}

	attKeys, err := b.st.Attachments.ListKeysByDraft(ctx, b.clientID)
	if err != nil {
		return fmt.Errorf("listing attachment keys for %s: %w", b.clientID, err)
	}
	stale = staleKeys(attKeys, wantAttachments)
	if len(stale) > 0 {
		if err := b.st.Attachments.DeleteKeys(ctx, stale); err != nil {
			return fmt.Errorf("deleting stale attachments for %s: %w", b.clientID, err)
		}
	}
	return nil
}

func staleKeys(stored []string, want map[string]bool) []string {
	var stale []string
	for _, k := range stored {
		if !want[k] {
			stale = append(stale, k)
		}
	}
	return stale
}
