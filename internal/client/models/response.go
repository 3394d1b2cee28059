package models

import (
	"fmt"
	"time"
)

// Response is one answer to one checklist question within a draft.
//
// Its key is deterministic ({clientID}:{questionID}) so repeated flushes of
// the same in-memory state upsert instead of duplicating rows. The same key
// doubles as the correlation identifier sent to the server.
type Response struct {
	// ClientID is the owning draft's client identifier.
	ClientID string

	QuestionID int64

	// Score is nil while the question is unanswered.
	Score *int

	Comment string

	// RequiresComment is the derived comment-requirement flag, denormalized
	// so restore does not need the checklist structure.
	RequiresComment bool

	IsFlagged bool

	// QuestionType and MaxScore are denormalized from the checklist
	// structure for the same reason.
	QuestionType string
	MaxScore     int

	UpdatedAt time.Time
}

// ResponseKey builds the deterministic storage key for a draft/question pair.
func ResponseKey(clientID string, questionID int64) string {
	return fmt.Sprintf("%s:%d", clientID, questionID)
}

// Key returns the response's storage and correlation key.
func (r *Response) Key() string {
	return ResponseKey(r.ClientID, r.QuestionID)
}
