package models

import (
	"fmt"
	"time"
)

// Attachment is a locally-held photo tied to one question response.
//
// OfflineUUID is the idempotency token for server-side deduplication: it is
// minted lazily, persisted immediately, and never regenerated, so a retried
// upload of the same attachment is recognized rather than duplicated.
type Attachment struct {
	// ClientID is the owning draft's client identifier.
	ClientID string

	// LocalID identifies the attachment within its draft.
	LocalID string

	// QuestionID ties the attachment to a question response.
	QuestionID int64

	Name         string
	Size         int64
	MimeType     string
	LastModified time.Time

	// Data holds the binary payload (possibly re-encoded to fit the size
	// ceiling).
	Data []byte

	// OfflineUUID is empty until first needed for upload.
	OfflineUUID string

	Caption string

	CreatedAt time.Time
}

// AttachmentKey builds the deterministic storage key for an attachment.
func AttachmentKey(clientID, localID string) string {
	return fmt.Sprintf("%s:%s", clientID, localID)
}

// Key returns the attachment's storage key.
func (a *Attachment) Key() string {
	return AttachmentKey(a.ClientID, a.LocalID)
}
