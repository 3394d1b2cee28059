package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/liftaudit/internal/client/client"
	"github.com/dmitrijs2005/liftaudit/internal/client/models"
	"github.com/dmitrijs2005/liftaudit/internal/client/store"
	"github.com/dmitrijs2005/liftaudit/internal/common"
	"github.com/dmitrijs2005/liftaudit/internal/logging"
	"github.com/google/uuid"
)

// Summary reports the outcome of one sync pass.
type Summary struct {
	// NothingToSync is set when no unsynced drafts existed.
	NothingToSync bool

	// SyncedDrafts counts drafts fully confirmed and deleted locally.
	SyncedDrafts int

	// UploadedAttachments counts successful attachment uploads, including
	// those on drafts that later failed.
	UploadedAttachments int

	// Errors lists distinct failure messages in first-seen order.
	Errors []string
}

func (s *Summary) addError(msg string) {
	for _, e := range s.Errors {
		if e == msg {
			return
		}
	}
	s.Errors = append(s.Errors, msg)
}

// pendingAudit is one validated draft staged for the batch.
type pendingAudit struct {
	draft       *models.Draft
	payload     client.AuditPayload
	attachments []models.Attachment
	buildingAdd *models.CatalogAddition
	elevatorAdd *models.CatalogAddition
}

// SyncEngine pushes local drafts to the server: validate, mark processing,
// submit one batch, upload attachments, then delete confirmed drafts. It is
// reentrancy-guarded; drafts that fail are marked with a reason and retried
// on the next pass.
type SyncEngine struct {
	st  *store.Store
	api client.API
	log logging.Logger
	now func() time.Time

	inFlight atomic.Bool
}

func NewSyncEngine(st *store.Store, api client.API, log logging.Logger) *SyncEngine {
	return &SyncEngine{st: st, api: api, log: log, now: time.Now}
}

// InProgress reports whether a sync pass is currently running.
func (e *SyncEngine) InProgress() bool {
	return e.inFlight.Load()
}

// Sync runs one full pass. It returns common.ErrSyncInProgress when a pass
// is already running, common.ErrStorageUnavailable / common.ErrOffline when
// preconditions fail, and otherwise a Summary; per-draft failures land in
// the summary, not the error.
func (e *SyncEngine) Sync(ctx context.Context) (*Summary, error) {
	if !e.inFlight.CompareAndSwap(false, true) {
		return nil, common.ErrSyncInProgress
	}
	defer e.inFlight.Store(false)

	if e.st == nil {
		return nil, fmt.Errorf("%w: no local store", common.ErrStorageUnavailable)
	}
	if e.api == nil {
		return nil, errors.New("sync endpoint not configured")
	}
	if err := e.api.Ping(ctx); err != nil {
		return nil, err
	}

	deviceID, err := e.st.DeviceID(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
	}

	drafts, err := e.st.Drafts.GetAllUnsynced(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
	}
	summary := &Summary{}
	if len(drafts) == 0 {
		summary.NothingToSync = true
		return summary, nil
	}

	additions, err := e.st.Additions.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
	}
	addIndex := indexAdditions(additions)

	var batch []*pendingAudit
	for _, d := range drafts {
		pa, err := e.stageDraft(ctx, d, addIndex)
		if err != nil {
			e.markError(ctx, d.ClientID, err.Error())
			summary.addError(fmt.Sprintf("%s: %s", d.ClientID, err.Error()))
			continue
		}
		batch = append(batch, pa)
	}
	if len(batch) == 0 {
		return summary, nil
	}

	for _, pa := range batch {
		if err := e.st.Drafts.SetSyncState(ctx, pa.draft.ClientID, models.SyncStateProcessing, ""); err != nil {
			return summary, fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
		}
	}

	req := buildBatchRequest(deviceID, batch)
	e.log.Info(ctx, "submitting sync batch", "drafts", len(batch))

	res, err := e.api.SubmitBatch(ctx, req)
	if err != nil {
		msg := err.Error()
		for _, pa := range batch {
			e.markError(ctx, pa.draft.ClientID, msg)
		}
		summary.addError(msg)
		return summary, nil
	}

	for _, pa := range batch {
		e.reconcileDraft(ctx, deviceID, pa, res, summary)
	}

	e.log.Info(ctx, "sync finished",
		"synced", summary.SyncedDrafts,
		"attachments", summary.UploadedAttachments,
		"errors", len(summary.Errors))
	return summary, nil
}

// indexAdditions builds draft -> type -> addition, first created wins when a
// draft somehow owns more than one addition of the same type.
func indexAdditions(additions []models.CatalogAddition) map[string]map[models.AdditionType]*models.CatalogAddition {
	idx := make(map[string]map[models.AdditionType]*models.CatalogAddition)
	for i := range additions {
		a := &additions[i]
		byType, ok := idx[a.ClientID]
		if !ok {
			byType = make(map[models.AdditionType]*models.CatalogAddition)
			idx[a.ClientID] = byType
		}
		if _, dup := byType[a.Type]; !dup {
			byType[a.Type] = a
		}
	}
	return idx
}

// stageDraft validates one draft and builds its wire payload. Attachments
// without an idempotency token get one minted and persisted before any
// network traffic, so a retried upload is always recognizable.
func (e *SyncEngine) stageDraft(ctx context.Context, d *models.Draft, addIndex map[string]map[models.AdditionType]*models.CatalogAddition) (*pendingAudit, error) {
	byType := addIndex[d.ClientID]

	pa := &pendingAudit{draft: d}
	if d.ElevatorID != nil {
		pa.payload.ElevatorID = d.ElevatorID
	} else if add := byType[models.AdditionTypeElevator]; add != nil {
		pa.elevatorAdd = add
		pa.payload.ElevatorClientID = add.LocalID
		if add.BuildingLocalID != "" {
			bAdd := byType[models.AdditionTypeBuilding]
			if bAdd == nil || bAdd.LocalID != add.BuildingLocalID {
				return nil, errors.New("elevator addition references a missing building addition")
			}
			pa.buildingAdd = bAdd
		}
	} else {
		return nil, errors.New("draft has no elevator reference")
	}

	responses, err := e.st.Responses.ListByDraft(ctx, d.ClientID)
	if err != nil {
		return nil, fmt.Errorf("loading responses: %w", err)
	}
	for _, r := range responses {
		if r.Score == nil {
			continue
		}
		pa.payload.Responses = append(pa.payload.Responses, client.ResponsePayload{
			ClientID:   r.Key(),
			QuestionID: r.QuestionID,
			Score:      *r.Score,
			Comment:    r.Comment,
			IsFlagged:  r.IsFlagged,
		})
	}
	if len(pa.payload.Responses) == 0 {
		return nil, errors.New("draft has no scored responses")
	}

	attachments, err := e.st.Attachments.ListByDraft(ctx, d.ClientID)
	if err != nil {
		return nil, fmt.Errorf("loading attachments: %w", err)
	}
	for i := range attachments {
		a := &attachments[i]
		if len(a.Data) == 0 {
			return nil, fmt.Errorf("attachment %s has no payload", a.LocalID)
		}
		if a.OfflineUUID == "" {
			a.OfflineUUID = uuid.NewString()
			if err := e.st.Attachments.SetOfflineUUID(ctx, a.Key(), a.OfflineUUID); err != nil {
				return nil, fmt.Errorf("persisting upload token for %s: %w", a.LocalID, err)
			}
		}
	}
	pa.attachments = attachments

	pa.payload.ClientID = d.ClientID
	pa.payload.Status = string(d.Status)
	pa.payload.PlannedDate = d.PlannedDate
	if d.StartedAt != nil {
		pa.payload.StartedAt = d.StartedAt.UTC().Format(time.RFC3339)
	}
	if d.FinishedAt != nil {
		pa.payload.FinishedAt = d.FinishedAt.UTC().Format(time.RFC3339)
	}
	pa.payload.ObjectInfo = d.ObjectInfo

	return pa, nil
}

// buildBatchRequest assembles the wire request from staged drafts. The
// catalog section carries only additions actually referenced by this batch,
// deduplicated by local id.
func buildBatchRequest(deviceID string, batch []*pendingAudit) *client.BatchRequest {
	req := &client.BatchRequest{DeviceID: deviceID}

	seen := make(map[string]bool)
	var cat client.CatalogPayload
	for _, pa := range batch {
		if b := pa.buildingAdd; b != nil && !seen[b.LocalID] {
			seen[b.LocalID] = true
			cat.Buildings = append(cat.Buildings, client.BuildingAddition{
				ClientID: b.LocalID,
				Address:  b.Address,
				Entrance: b.Entrance,
				Notes:    b.Notes,
			})
		}
		if el := pa.elevatorAdd; el != nil && !seen[el.LocalID] {
			seen[el.LocalID] = true
			cat.Elevators = append(cat.Elevators, client.ElevatorAddition{
				ClientID:         el.LocalID,
				Identifier:       el.Identifier,
				Description:      el.Description,
				Status:           el.Status,
				BuildingID:       el.BuildingID,
				BuildingClientID: el.BuildingLocalID,
			})
		}
		req.Audits = append(req.Audits, pa.payload)
	}
	if len(cat.Buildings) > 0 || len(cat.Elevators) > 0 {
		req.Catalog = &cat
	}
	return req
}

// reconcileDraft processes one draft after a successful batch: upload its
// attachments against the server-assigned response ids, then delete the
// draft cascade. Any failure marks the draft error and leaves local data
// untouched for the next pass; server ids are never persisted, a retry
// resubmits the draft and relies on server-side idempotency.
func (e *SyncEngine) reconcileDraft(ctx context.Context, deviceID string, pa *pendingAudit, res *client.BatchResult, summary *Summary) {
	clientID := pa.draft.ClientID

	ar, ok := res.AuditByClientID(clientID)
	if !ok {
		msg := "server response is missing this draft"
		e.markError(ctx, clientID, msg)
		summary.addError(fmt.Sprintf("%s: %s", clientID, msg))
		return
	}

	for _, att := range pa.attachments {
		respID, ok := ar.ResponseIDByClientID(models.ResponseKey(clientID, att.QuestionID))
		if !ok {
			msg := fmt.Sprintf("no server response id for attachment %s", att.LocalID)
			e.markError(ctx, clientID, msg)
			summary.addError(fmt.Sprintf("%s: %s", clientID, msg))
			return
		}

		meta := client.AttachmentMeta{
			ResponseID:  respID,
			Caption:     att.Caption,
			OfflineUUID: att.OfflineUUID,
		}
		up, err := e.api.UploadAttachment(ctx, deviceID, meta, att.Name, att.Data)
		if err != nil {
			msg := fmt.Errorf("%w: attachment %s: %v", common.ErrPartialUpload, att.LocalID, err).Error()
			e.markError(ctx, clientID, msg)
			summary.addError(fmt.Sprintf("%s: %s", clientID, msg))
			return
		}
		if up.Duplicate {
			e.log.Debug(ctx, "attachment already known to server", "attachment", att.LocalID)
		}
		summary.UploadedAttachments++
	}

	if err := e.st.DeleteDraftCascade(ctx, clientID); err != nil {
		msg := fmt.Sprintf("cleaning up synced draft: %s", err.Error())
		e.markError(ctx, clientID, msg)
		summary.addError(fmt.Sprintf("%s: %s", clientID, msg))
		return
	}
	summary.SyncedDrafts++
}

func (e *SyncEngine) markError(ctx context.Context, clientID, reason string) {
	if err := e.st.Drafts.SetSyncState(ctx, clientID, models.SyncStateError, reason); err != nil {
		e.log.Error(ctx, "failed to record sync error", "clientID", clientID, "error", err)
	}
}
