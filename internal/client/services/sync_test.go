package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/dmitrijs2005/liftaudit/internal/client/client"
	"github.com/dmitrijs2005/liftaudit/internal/client/models"
	"github.com/dmitrijs2005/liftaudit/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSync_NothingToSync(t *testing.T) {
	st := newTestStore(t)
	api := &mockAPI{}
	e := NewSyncEngine(st, api, testLogger())

	summary, err := e.Sync(context.Background())
	require.NoError(t, err)
	assert.True(t, summary.NothingToSync)
	assert.Empty(t, api.requests, "no batch is sent for an empty queue")
}

func TestSync_OfflineAbortsBeforeAnyWork(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	seedDraft(t, st, "draft-1", 11)

	api := &mockAPI{pingErr: common.ErrOffline}
	e := NewSyncEngine(st, api, testLogger())

	_, err := e.Sync(ctx)
	require.ErrorIs(t, err, common.ErrOffline)

	state, _ := draftState(t, st, "draft-1")
	assert.Equal(t, models.SyncStatePending, state, "drafts stay untouched when offline")
}

func TestSync_HappyPathDeletesDraft(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	seedDraft(t, st, "draft-1", 11)
	seedAttachment(t, st, "draft-1", "att-1", "door.jpg")

	api := &mockAPI{}
	e := NewSyncEngine(st, api, testLogger())

	summary, err := e.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.SyncedDrafts)
	assert.Equal(t, 1, summary.UploadedAttachments)
	assert.Empty(t, summary.Errors)

	_, err = st.Drafts.GetByClientID(ctx, "draft-1")
	assert.ErrorIs(t, err, common.ErrNotFound, "synced draft is removed")

	atts, err := st.Attachments.ListByDraft(ctx, "draft-1")
	require.NoError(t, err)
	assert.Empty(t, atts, "cascade removes attachments too")

	require.Len(t, api.uploads, 1)
	assert.NotEmpty(t, api.uploads[0].meta.OfflineUUID)
	assert.NotZero(t, api.uploads[0].meta.ResponseID)
}

func TestSync_CorrelatesByClientID(t *testing.T) {
	// The mock acknowledges audits in reverse order; resolution must still
	// pair every draft and response with its own server id.
	ctx := context.Background()
	st := newTestStore(t)
	seedDraft(t, st, "draft-a", 11)
	seedDraft(t, st, "draft-b", 12)
	seedAttachment(t, st, "draft-b", "att-1", "b.jpg")

	api := &mockAPI{}
	e := NewSyncEngine(st, api, testLogger())

	summary, err := e.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.SyncedDrafts)

	require.Len(t, api.uploads, 1)
	req := api.requests[0]
	res, err := api.SubmitBatch(ctx, req)
	require.NoError(t, err)
	ar, ok := res.AuditByClientID("draft-b")
	require.True(t, ok)
	wantID, ok := ar.ResponseIDByClientID(models.ResponseKey("draft-b", 1))
	require.True(t, ok)
	assert.Equal(t, wantID, api.uploads[0].meta.ResponseID)
}

func TestSync_ValidationFailureIsIsolated(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	seedDraft(t, st, "draft-good", 11)

	// draft-bad has no elevator reference at all.
	require.NoError(t, st.Drafts.CreateOrUpdate(ctx, &models.Draft{
		ClientID:  "draft-bad",
		Status:    models.DraftStatusDraft,
		SyncState: models.SyncStatePending,
	}))

	api := &mockAPI{}
	e := NewSyncEngine(st, api, testLogger())

	summary, err := e.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.SyncedDrafts)
	require.Len(t, summary.Errors, 1)
	assert.Contains(t, summary.Errors[0], "no elevator reference")

	state, reason := draftState(t, st, "draft-bad")
	assert.Equal(t, models.SyncStateError, state)
	assert.Contains(t, reason, "no elevator reference")

	require.Len(t, api.requests, 1)
	assert.Len(t, api.requests[0].Audits, 1, "invalid draft is excluded from the batch")
}

func TestSync_BatchRejectionMarksAllDrafts(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	seedDraft(t, st, "draft-1", 11)
	seedDraft(t, st, "draft-2", 12)

	api := &mockAPI{submitErr: &client.ServerError{HTTPStatus: 400, Code: "invalid", Message: "bad payload"}}
	e := NewSyncEngine(st, api, testLogger())

	summary, err := e.Sync(ctx)
	require.NoError(t, err)
	assert.Zero(t, summary.SyncedDrafts)
	require.Len(t, summary.Errors, 1, "one shared failure message")

	for _, id := range []string{"draft-1", "draft-2"} {
		state, reason := draftState(t, st, id)
		assert.Equal(t, models.SyncStateError, state)
		assert.Contains(t, reason, "bad payload")
	}
}

func TestSync_UploadFailureKeepsDraftForRetry(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	seedDraft(t, st, "draft-ok", 11)
	seedDraft(t, st, "draft-fail", 12)
	seedAttachment(t, st, "draft-fail", "att-1", "broken.jpg")

	api := &mockAPI{uploadErrs: map[string]error{"broken.jpg": errors.New("disk full")}}
	e := NewSyncEngine(st, api, testLogger())

	summary, err := e.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.SyncedDrafts)

	// The failed draft keeps everything locally and records the reason.
	state, reason := draftState(t, st, "draft-fail")
	assert.Equal(t, models.SyncStateError, state)
	assert.Contains(t, reason, "disk full")

	atts, err := st.Attachments.ListByDraft(ctx, "draft-fail")
	require.NoError(t, err)
	assert.Len(t, atts, 1)

	_, err = st.Drafts.GetByClientID(ctx, "draft-ok")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSync_OfflineUUIDStableAcrossRetries(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	seedDraft(t, st, "draft-1", 11)
	seedAttachment(t, st, "draft-1", "att-1", "door.jpg")

	api := &mockAPI{uploadErrs: map[string]error{"door.jpg": errors.New("connection reset")}}
	e := NewSyncEngine(st, api, testLogger())

	_, err := e.Sync(ctx)
	require.NoError(t, err)
	require.Len(t, api.uploads, 1)
	firstUUID := api.uploads[0].meta.OfflineUUID
	require.NotEmpty(t, firstUUID)

	// Second pass succeeds and must reuse the persisted token.
	api.uploadErrs = nil
	summary, err := e.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.SyncedDrafts)
	require.Len(t, api.uploads, 2)
	assert.Equal(t, firstUUID, api.uploads[1].meta.OfflineUUID)
}

func TestSync_OfflineAdditionsOnTheWire(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	require.NoError(t, st.Drafts.CreateOrUpdate(ctx, &models.Draft{
		ClientID:  "draft-1",
		Status:    models.DraftStatusDraft,
		SyncState: models.SyncStatePending,
	}))
	require.NoError(t, st.Responses.Upsert(ctx, &models.Response{
		ClientID: "draft-1", QuestionID: 1, Score: intPtr(5),
	}))
	require.NoError(t, st.Additions.Create(ctx, &models.CatalogAddition{
		LocalID: "b-local", Type: models.AdditionTypeBuilding, ClientID: "draft-1",
		Address: "Jauna iela 3",
	}))
	require.NoError(t, st.Additions.Create(ctx, &models.CatalogAddition{
		LocalID: "e-local", Type: models.AdditionTypeElevator, ClientID: "draft-1",
		Identifier: "L-7", BuildingLocalID: "b-local",
	}))

	api := &mockAPI{}
	e := NewSyncEngine(st, api, testLogger())

	summary, err := e.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.SyncedDrafts)

	require.Len(t, api.requests, 1)
	req := api.requests[0]
	require.NotNil(t, req.Catalog)
	require.Len(t, req.Catalog.Buildings, 1)
	require.Len(t, req.Catalog.Elevators, 1)
	assert.Equal(t, "b-local", req.Catalog.Buildings[0].ClientID)
	assert.Equal(t, "b-local", req.Catalog.Elevators[0].BuildingClientID)
	assert.Equal(t, "e-local", req.Audits[0].ElevatorClientID)
	assert.Nil(t, req.Audits[0].ElevatorID)

	adds, err := st.Additions.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, adds, "additions are deleted with their synced draft")
}

func TestSync_NoScoredResponses(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	id := int64(11)
	require.NoError(t, st.Drafts.CreateOrUpdate(ctx, &models.Draft{
		ClientID:   "draft-1",
		ElevatorID: &id,
		Status:     models.DraftStatusDraft,
		SyncState:  models.SyncStatePending,
	}))
	// A comment-only response does not make the draft syncable.
	require.NoError(t, st.Responses.Upsert(ctx, &models.Response{
		ClientID: "draft-1", QuestionID: 1, Comment: "looks fine",
	}))

	api := &mockAPI{}
	e := NewSyncEngine(st, api, testLogger())

	summary, err := e.Sync(ctx)
	require.NoError(t, err)
	assert.Zero(t, summary.SyncedDrafts)
	require.Len(t, summary.Errors, 1)
	assert.Contains(t, summary.Errors[0], "no scored responses")
	assert.Empty(t, api.requests, "empty batch is not submitted")
}

func TestSync_Reentrancy(t *testing.T) {
	st := newTestStore(t)
	e := NewSyncEngine(st, &mockAPI{}, testLogger())

	require.True(t, e.inFlight.CompareAndSwap(false, true))
	defer e.inFlight.Store(false)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := e.Sync(context.Background())
		assert.ErrorIs(t, err, common.ErrSyncInProgress)
	}()
	wg.Wait()
	assert.True(t, e.InProgress())
}

func TestSync_ErroredDraftsAreRetried(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	seedDraft(t, st, "draft-1", 11)
	require.NoError(t, st.Drafts.SetSyncState(ctx, "draft-1", models.SyncStateError, "previous failure"))

	api := &mockAPI{}
	e := NewSyncEngine(st, api, testLogger())

	summary, err := e.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.SyncedDrafts, "error state drafts re-enter the queue")
}
