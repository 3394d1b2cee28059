// Package models defines the client-side data model for offline audits:
// drafts, question responses, photo attachments and locally-added catalog
// records, all keyed by client-generated identifiers.
package models

import "time"

// SyncState tracks a draft's reconciliation status with the server.
type SyncState string

const (
	SyncStatePending    SyncState = "pending"
	SyncStateProcessing SyncState = "processing"
	SyncStateError      SyncState = "error"
	SyncStateSynced     SyncState = "synced"
)

// DraftStatus mirrors the audit lifecycle accepted by the sync endpoint.
type DraftStatus string

const (
	DraftStatusDraft     DraftStatus = "draft"
	DraftStatusSubmitted DraftStatus = "submitted"
)

// Draft is one in-progress inspection held locally until the server confirms
// durable receipt. ClientID is minted once at creation and never reused; the
// sync engine may move SyncState but must not touch the identifier.
type Draft struct {
	// ClientID is the client-generated opaque identifier for the draft.
	ClientID string

	// ElevatorID references a server-known elevator; nil when the elevator
	// was added offline (see CatalogAddition).
	ElevatorID *int64

	// BuildingID is kept for UI filtering; the wire payload references only
	// the elevator.
	BuildingID *int64

	// ObjectInfo is the free-form field map (field code -> value).
	ObjectInfo map[string]any

	// PlannedDate is an ISO date (YYYY-MM-DD), empty when unset.
	PlannedDate string

	StartedAt  *time.Time
	FinishedAt *time.Time

	Status    DraftStatus
	SyncState SyncState

	// SyncError holds the human-readable reason for the last failed sync.
	SyncError string

	// AttachmentCount is the aggregate number of locally stored attachments.
	AttachmentCount int

	// HasChecklist reports that at least one response was captured.
	HasChecklist bool

	CreatedAt time.Time
	UpdatedAt time.Time
}
