package client

// Wire DTOs for the sync endpoint. Field names follow the server contract;
// every entity carries a client-supplied client_id echoed back in the
// response, so correlation never depends on array order.

// BuildingAddition is an offline-added building submitted for promotion.
type BuildingAddition struct {
	ClientID string `json:"client_id"`
	Address  string `json:"address"`
	Entrance string `json:"entrance,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

// ElevatorAddition is an offline-added elevator. It references its building
// either by server id or by the client id of a sibling BuildingAddition.
type ElevatorAddition struct {
	ClientID         string `json:"client_id"`
	Identifier       string `json:"identifier"`
	Description      string `json:"description,omitempty"`
	Status           string `json:"status,omitempty"`
	BuildingID       *int64 `json:"building_id,omitempty"`
	BuildingClientID string `json:"building_client_id,omitempty"`
}

// CatalogPayload carries only the additions actually referenced by audits in
// the same batch.
type CatalogPayload struct {
	Buildings []BuildingAddition `json:"buildings,omitempty"`
	Elevators []ElevatorAddition `json:"elevators,omitempty"`
}

// ResponsePayload is one question answer inside an audit payload.
type ResponsePayload struct {
	ClientID   string `json:"client_id"`
	QuestionID int64  `json:"question_id"`
	Score      int    `json:"score"`
	Comment    string `json:"comment"`
	IsFlagged  bool   `json:"is_flagged"`
}

// AuditPayload is one draft's metadata plus responses. Attachments are
// deferred to individual multipart uploads.
type AuditPayload struct {
	ClientID         string            `json:"client_id"`
	Status           string            `json:"status,omitempty"`
	PlannedDate      string            `json:"planned_date,omitempty"`
	StartedAt        string            `json:"started_at,omitempty"`
	FinishedAt       string            `json:"finished_at,omitempty"`
	ObjectInfo       map[string]any    `json:"object_info,omitempty"`
	ElevatorID       *int64            `json:"elevator_id,omitempty"`
	ElevatorClientID string            `json:"elevator_client_id,omitempty"`
	Responses        []ResponsePayload `json:"responses"`
}

// BatchRequest is the JSON body of a sync batch submit.
type BatchRequest struct {
	DeviceID string          `json:"device_id"`
	Catalog  *CatalogPayload `json:"catalog,omitempty"`
	Audits   []AuditPayload  `json:"audits"`
}

// IDMapping pairs a client-supplied correlation id with the server-assigned
// numeric id.
type IDMapping struct {
	ClientID string `json:"client_id"`
	ID       int64  `json:"id"`
}

// AuditResult maps one audit and its responses to server ids.
type AuditResult struct {
	ClientID  string      `json:"client_id"`
	ID        int64       `json:"id"`
	Responses []IDMapping `json:"responses"`
}

// CatalogResult maps submitted additions to server ids.
type CatalogResult struct {
	Buildings []IDMapping `json:"buildings"`
	Elevators []IDMapping `json:"elevators"`
}

// BatchResult is the decoded success envelope of a batch submit.
type BatchResult struct {
	DeviceID string        `json:"device_id"`
	Catalog  CatalogResult `json:"catalog"`
	Audits   []AuditResult `json:"audits"`
}

// AuditByClientID finds a result by correlation id, never by position.
func (r *BatchResult) AuditByClientID(clientID string) (*AuditResult, bool) {
	for i := range r.Audits {
		if r.Audits[i].ClientID == clientID {
			return &r.Audits[i], true
		}
	}
	return nil, false
}

// ResponseIDByClientID resolves a response's server id by correlation id.
func (a *AuditResult) ResponseIDByClientID(clientID string) (int64, bool) {
	for _, m := range a.Responses {
		if m.ClientID == clientID {
			return m.ID, true
		}
	}
	return 0, false
}

// AttachmentMeta is the JSON part of a multipart attachment upload.
type AttachmentMeta struct {
	ResponseID  int64  `json:"response_id"`
	Caption     string `json:"caption"`
	OfflineUUID string `json:"offline_uuid"`
}

// UploadResult is the decoded success envelope of an attachment upload.
// Duplicate is set when the server recognized the offline UUID and skipped
// storing the payload again.
type UploadResult struct {
	ID          int64  `json:"id"`
	ResponseID  int64  `json:"response_id"`
	OfflineUUID string `json:"offline_uuid"`
	Duplicate   bool   `json:"duplicate"`
}

// envelope is the common response wrapper: status "ok" plus result fields,
// or status "error" plus code/message/errors.
type envelope struct {
	Status   string              `json:"status"`
	Code     string              `json:"code"`
	Message  string              `json:"message"`
	Errors   map[string][]string `json:"errors"`
	DeviceID string              `json:"device_id"`

	Catalog    *CatalogResult `json:"catalog"`
	Audits     []AuditResult  `json:"audits"`
	Attachment *UploadResult  `json:"attachment"`
	Duplicate  bool           `json:"duplicate"`
}
