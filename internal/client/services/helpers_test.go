package services

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/liftaudit/internal/client/client"
	"github.com/dmitrijs2005/liftaudit/internal/client/models"
	"github.com/dmitrijs2005/liftaudit/internal/client/store"
	"github.com/dmitrijs2005/liftaudit/internal/logging"
	"github.com/stretchr/testify/require"
)

func testLogger() logging.Logger {
	return logging.NewDiscard()
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "audit.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

// testStructure builds a three-question checklist:
// q1 requires a comment for any score, q2 only for reduced scores, q3 never.
func testStructure() *models.ChecklistStructure {
	return &models.ChecklistStructure{
		Categories: []models.Category{{
			ID: 1, Code: "safety", Name: "Safety",
			Sections: []models.Section{{
				ID: 10, Title: "Cabin",
				Questions: []models.Question{
					{ID: 1, Text: "Door closes", Type: models.QuestionTypeScore, MaxScore: 5, RequiresComment: true},
					{ID: 2, Text: "Lighting", Type: models.QuestionTypeScore, MaxScore: 5, RequiresCommentOnReducedScore: true},
					{ID: 3, Text: "Signage", Type: models.QuestionTypeScore, MaxScore: 5},
				},
			}},
		}},
	}
}

func testSnapshot() *models.Snapshot {
	return &models.Snapshot{
		GeneratedAt: "2026-08-30T10:00:00Z",
		Buildings: []models.Building{
			{ID: 1, Address: "Brivibas iela 1", Label: "Brivibas iela 1"},
			{ID: 2, Address: "Dzirnavu iela 5", Label: "Dzirnavu iela 5"},
		},
		Elevators: []models.Elevator{
			{ID: 11, BuildingID: 1, Identifier: "A", Label: "A"},
			{ID: 12, BuildingID: 2, Identifier: "B", Label: "B"},
		},
		ObjectFields: []models.ObjectInfoField{
			{Code: "manufacturer", Label: "Manufacturer", FieldType: models.FieldTypeText, IsRequired: true, Order: 1},
			{Code: "floors", Label: "Floors", FieldType: models.FieldTypeNumber, Order: 2},
			{Code: "inspected", Label: "Inspected", FieldType: models.FieldTypeBoolean, Order: 3},
			{Code: "install_date", Label: "Installation date", FieldType: models.FieldTypeDate, Order: 4},
			{Code: "drive", Label: "Drive type", FieldType: models.FieldTypeChoice, Order: 5, Choices: []string{"traction", "hydraulic"}},
		},
	}
}

func intPtr(v int) *int { return &v }

// mockAPI is a scriptable transport double for sync tests.
type mockAPI struct {
	pingErr     error
	snapshot    *models.Snapshot
	snapshotErr error

	submitErr error
	result    *client.BatchResult
	requests  []*client.BatchRequest

	uploads    []uploadCall
	uploadErrs map[string]error
	knownUUIDs map[string]bool
	nextUpload int64
}

type uploadCall struct {
	deviceID string
	meta     client.AttachmentMeta
	filename string
	size     int
}

func (m *mockAPI) Ping(ctx context.Context) error { return m.pingErr }

func (m *mockAPI) FetchSnapshot(ctx context.Context) (*models.Snapshot, error) {
	if m.snapshotErr != nil {
		return nil, m.snapshotErr
	}
	return m.snapshot, nil
}

func (m *mockAPI) SubmitBatch(ctx context.Context, req *client.BatchRequest) (*client.BatchResult, error) {
	m.requests = append(m.requests, req)
	if m.submitErr != nil {
		return nil, m.submitErr
	}
	if m.result != nil {
		return m.result, nil
	}
	// Default: acknowledge every audit and response, reversing audit order to
	// catch positional correlation.
	res := &client.BatchResult{DeviceID: req.DeviceID}
	id := int64(100)
	for i := len(req.Audits) - 1; i >= 0; i-- {
		a := req.Audits[i]
		ar := client.AuditResult{ClientID: a.ClientID, ID: id}
		id++
		for _, r := range a.Responses {
			ar.Responses = append(ar.Responses, client.IDMapping{ClientID: r.ClientID, ID: id})
			id++
		}
		res.Audits = append(res.Audits, ar)
	}
	return res, nil
}

func (m *mockAPI) UploadAttachment(ctx context.Context, deviceID string, meta client.AttachmentMeta, filename string, data []byte) (*client.UploadResult, error) {
	m.uploads = append(m.uploads, uploadCall{deviceID: deviceID, meta: meta, filename: filename, size: len(data)})
	if err := m.uploadErrs[filename]; err != nil {
		return nil, err
	}

	dup := false
	if m.knownUUIDs == nil {
		m.knownUUIDs = make(map[string]bool)
	}
	if m.knownUUIDs[meta.OfflineUUID] {
		dup = true
	}
	m.knownUUIDs[meta.OfflineUUID] = true

	m.nextUpload++
	return &client.UploadResult{
		ID:          m.nextUpload,
		ResponseID:  meta.ResponseID,
		OfflineUUID: meta.OfflineUUID,
		Duplicate:   dup,
	}, nil
}

// seedDraft stores a syncable draft with one scored response.
func seedDraft(t *testing.T, st *store.Store, clientID string, elevatorID int64) {
	t.Helper()
	ctx := context.Background()

	id := elevatorID
	require.NoError(t, st.Drafts.CreateOrUpdate(ctx, &models.Draft{
		ClientID:   clientID,
		ElevatorID: &id,
		Status:     models.DraftStatusDraft,
		SyncState:  models.SyncStatePending,
	}))
	require.NoError(t, st.Responses.Upsert(ctx, &models.Response{
		ClientID:   clientID,
		QuestionID: 1,
		Score:      intPtr(4),
		Comment:    "scuffed door",
	}))
}

// seedAttachment stores one attachment for a draft's question 1.
func seedAttachment(t *testing.T, st *store.Store, clientID, localID, name string) {
	t.Helper()
	require.NoError(t, st.Attachments.Upsert(context.Background(), &models.Attachment{
		ClientID:   clientID,
		LocalID:    localID,
		QuestionID: 1,
		Name:       name,
		Size:       3,
		MimeType:   "image/jpeg",
		Data:       []byte{0xff, 0xd8, 0xff},
	}))
}

func draftState(t *testing.T, st *store.Store, clientID string) (models.SyncState, string) {
	t.Helper()
	d, err := st.Drafts.GetByClientID(context.Background(), clientID)
	require.NoError(t, err)
	return d.SyncState, d.SyncError
}
