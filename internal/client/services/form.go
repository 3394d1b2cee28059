// Package services holds the client-side controllers: the checklist form,
// the offline binder that persists it, the object-info form, the catalog
// cache and the sync engine.
package services

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/liftaudit/internal/client/models"
	"github.com/dmitrijs2005/liftaudit/internal/common"
	"github.com/dmitrijs2005/liftaudit/internal/imagex"
	"github.com/google/uuid"
)

// EventKind classifies form events.
type EventKind string

const (
	// EventReady fires once after the form finished restoring stored state.
	EventReady EventKind = "ready"
	// EventChange fires on every user mutation (score, comment, attachment).
	EventChange EventKind = "change"
	// EventSave fires when save-draft validation passed.
	EventSave EventKind = "save"
)

// FormEvent is delivered to subscribers; QuestionID is zero for form-wide
// events (ready, save).
type FormEvent struct {
	Kind       EventKind
	QuestionID int64
}

// FormAttachment is an in-memory photo attached to a question.
type FormAttachment struct {
	LocalID      string
	Name         string
	Size         int64
	MimeType     string
	LastModified time.Time
	Data         []byte
	Caption      string
	CreatedAt    time.Time
}

// FormLimits bound attachment acceptance.
type FormLimits struct {
	MaxPerQuestion int
	MaxPerAudit    int
	Image          imagex.Options
}

// DefaultFormLimits mirror the server-side attachment limits.
func DefaultFormLimits() FormLimits {
	return FormLimits{
		MaxPerQuestion: 10,
		MaxPerAudit:    100,
		Image:          imagex.DefaultOptions(),
	}
}

var (
	ErrUnknownQuestion      = errors.New("unknown question")
	ErrNotAnImage           = errors.New("attachment is not an image")
	ErrQuestionLimitReached = errors.New("per-question attachment limit reached")
	ErrAuditLimitReached    = errors.New("audit-wide attachment limit reached")
	ErrScoreOutOfRange      = errors.New("score out of range")
)

// questionState holds one question's answer. Comment-missing is derived, not
// stored: it is recomputed whenever score or comment change.
type questionState struct {
	question    models.Question
	score       *int
	comment     string
	attachments []FormAttachment
}

// ChecklistForm is the single source of truth for the active checklist. UI
// layers and the offline binder subscribe to its event stream; no business
// logic lives outside it.
type ChecklistForm struct {
	mu          sync.Mutex
	order       []int64
	questions   map[int64]*questionState
	limits      FormLimits
	subscribers []func(FormEvent)
	restoring   bool
	now         func() time.Time
}

// NewChecklistForm builds a form over the checklist structure's questions,
// preserving their display order.
func NewChecklistForm(structure *models.ChecklistStructure, limits FormLimits) *ChecklistForm {
	f := &ChecklistForm{
		questions: make(map[int64]*questionState),
		limits:    limits,
		now:       time.Now,
	}
	for _, q := range structure.AllQuestions() {
		f.order = append(f.order, q.ID)
		f.questions[q.ID] = &questionState{question: q}
	}
	return f
}

// Subscribe registers an event listener. Listeners are invoked synchronously
// on the mutating goroutine, after the mutation is applied and the form lock
// is released, so a listener may call back into the form.
func (f *ChecklistForm) Subscribe(fn func(FormEvent)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subscribers = append(f.subscribers, fn)
}

// emit delivers an event to subscribers. Callers must not hold f.mu: the
// subscriber list is copied under the lock and the callbacks run without it.
func (f *ChecklistForm) emit(ev FormEvent) {
	f.mu.Lock()
	if f.restoring {
		f.mu.Unlock()
		return
	}
	subs := append(([]func(FormEvent))(nil), f.subscribers...)
	f.mu.Unlock()

	for _, fn := range subs {
		fn(ev)
	}
}

// Restoring runs fn with change events suppressed, so re-applying stored
// state does not loop back into a persistence write.
func (f *ChecklistForm) Restoring(fn func()) {
	f.mu.Lock()
	f.restoring = true
	f.mu.Unlock()

	fn()

	f.mu.Lock()
	f.restoring = false
	f.mu.Unlock()
}

// EmitReady announces that restore is finished.
func (f *ChecklistForm) EmitReady() {
	f.emit(FormEvent{Kind: EventReady})
}

// requiresComment derives the comment requirement for a question state:
// "always requires comment" holds for any score including none; "on reduced
// score" holds only when a score is selected and strictly below the maximum.
func requiresComment(q models.Question, score *int) bool {
	if q.RequiresComment {
		return true
	}
	if q.RequiresCommentOnReducedScore && score != nil && *score < q.MaxScore {
		return true
	}
	return false
}

func commentMissing(st *questionState) bool {
	return requiresComment(st.question, st.score) && strings.TrimSpace(st.comment) == ""
}

// SetScore selects a score (nil clears the answer) and re-derives the
// comment requirement. A previously-entered comment that now satisfies the
// requirement clears the missing flag implicitly, since the flag is derived.
func (f *ChecklistForm) SetScore(questionID int64, score *int) error {
	f.mu.Lock()
	err := f.setScoreLocked(questionID, score)
	f.mu.Unlock()
	if err != nil {
		return err
	}

	f.emit(FormEvent{Kind: EventChange, QuestionID: questionID})
	return nil
}

func (f *ChecklistForm) setScoreLocked(questionID int64, score *int) error {
	st, ok := f.questions[questionID]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownQuestion, questionID)
	}

	if score != nil {
		if *score < 0 || *score > st.question.MaxScore {
			return fmt.Errorf("%w: %d not in [0, %d]", ErrScoreOutOfRange, *score, st.question.MaxScore)
		}
		if len(st.question.ScoreOptions) > 0 && !scoreAllowed(st.question.ScoreOptions, *score) {
			return fmt.Errorf("%w: %d is not a declared option", ErrScoreOutOfRange, *score)
		}
	}

	st.score = score
	return nil
}

func scoreAllowed(options []models.ScoreOption, score int) bool {
	for _, opt := range options {
		if opt.Score == score {
			return true
		}
	}
	return false
}

// SetComment stores the free-text comment for a question.
func (f *ChecklistForm) SetComment(questionID int64, comment string) error {
	f.mu.Lock()
	st, ok := f.questions[questionID]
	if !ok {
		f.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrUnknownQuestion, questionID)
	}
	st.comment = comment
	f.mu.Unlock()

	f.emit(FormEvent{Kind: EventChange, QuestionID: questionID})
	return nil
}

// AddAttachment accepts an image for a question, enforcing MIME type and the
// per-question/audit-wide caps, and re-encoding oversized payloads to fit
// the configured byte ceiling.
func (f *ChecklistForm) AddAttachment(questionID int64, name, mimeType string, lastModified time.Time, data []byte) (*FormAttachment, error) {
	f.mu.Lock()
	att, err := f.addAttachmentLocked(questionID, name, mimeType, lastModified, data)
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}

	f.emit(FormEvent{Kind: EventChange, QuestionID: questionID})
	return att, nil
}

func (f *ChecklistForm) addAttachmentLocked(questionID int64, name, mimeType string, lastModified time.Time, data []byte) (*FormAttachment, error) {
	st, ok := f.questions[questionID]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownQuestion, questionID)
	}

	if !imagex.IsImageMime(mimeType) {
		return nil, fmt.Errorf("%w: %s", ErrNotAnImage, mimeType)
	}
	if len(st.attachments) >= f.limits.MaxPerQuestion {
		return nil, fmt.Errorf("%w (%d)", ErrQuestionLimitReached, f.limits.MaxPerQuestion)
	}
	if f.attachmentCountLocked() >= f.limits.MaxPerAudit {
		return nil, fmt.Errorf("%w (%d)", ErrAuditLimitReached, f.limits.MaxPerAudit)
	}

	fitted, err := imagex.FitUnderLimit(data, f.limits.Image)
	if err != nil {
		return nil, fmt.Errorf("attachment %s rejected: %w", name, err)
	}
	payload := fitted.Data
	if fitted.Resized {
		mimeType = fitted.MimeType
	}

	att := FormAttachment{
		LocalID:      uuid.NewString(),
		Name:         name,
		Size:         int64(len(payload)),
		MimeType:     mimeType,
		LastModified: lastModified,
		Data:         payload,
		CreatedAt:    f.now(),
	}
	st.attachments = append(st.attachments, att)
	return &att, nil
}

// RestoreAttachment re-materializes a stored attachment during restore,
// bypassing acceptance checks (the payload already passed them once).
func (f *ChecklistForm) RestoreAttachment(questionID int64, att FormAttachment) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	st, ok := f.questions[questionID]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownQuestion, questionID)
	}
	st.attachments = append(st.attachments, att)
	return nil
}

// RemoveAttachment detaches a photo from a question.
func (f *ChecklistForm) RemoveAttachment(questionID int64, localID string) bool {
	f.mu.Lock()
	removed := false
	if st, ok := f.questions[questionID]; ok {
		for i := range st.attachments {
			if st.attachments[i].LocalID == localID {
				st.attachments = append(st.attachments[:i], st.attachments[i+1:]...)
				removed = true
				break
			}
		}
	}
	f.mu.Unlock()

	if removed {
		f.emit(FormEvent{Kind: EventChange, QuestionID: questionID})
	}
	return removed
}

func (f *ChecklistForm) attachmentCountLocked() int {
	n := 0
	for _, st := range f.questions {
		n += len(st.attachments)
	}
	return n
}

// AttachmentCount returns the audit-wide number of in-memory attachments.
func (f *ChecklistForm) AttachmentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.attachmentCountLocked()
}

// QuestionSnapshot is one question's state inside a form snapshot.
type QuestionSnapshot struct {
	ID              int64
	Type            models.QuestionType
	MaxScore        int
	Score           *int
	Comment         string
	RequiresComment bool
	Attachments     []FormAttachment
}

// Answered reports whether the question carries a score.
func (q *QuestionSnapshot) Answered() bool {
	return q.Score != nil
}

// FormSnapshot is an immutable copy of the full form state, ordered by
// question display order.
type FormSnapshot struct {
	Questions []QuestionSnapshot
}

// Snapshot copies the current state. Attachment payloads are shared (they
// are never mutated in place), everything else is copied.
func (f *ChecklistForm) Snapshot() *FormSnapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshotLocked()
}

func (f *ChecklistForm) snapshotLocked() *FormSnapshot {
	snap := &FormSnapshot{Questions: make([]QuestionSnapshot, 0, len(f.order))}
	for _, id := range f.order {
		st := f.questions[id]
		qs := QuestionSnapshot{
			ID:              st.question.ID,
			Type:            st.question.Type,
			MaxScore:        st.question.MaxScore,
			Comment:         st.comment,
			RequiresComment: requiresComment(st.question, st.score),
			Attachments:     append([]FormAttachment(nil), st.attachments...),
		}
		if st.score != nil {
			v := *st.score
			qs.Score = &v
		}
		snap.Questions = append(snap.Questions, qs)
	}
	return snap
}

// SaveDraft validates the whole form and, on success, emits a save event and
// returns the snapshot. When comments are missing the save is aborted with a
// count-aware error and no event is emitted.
func (f *ChecklistForm) SaveDraft() (*FormSnapshot, error) {
	f.mu.Lock()
	missing := 0
	for _, st := range f.questions {
		if commentMissing(st) {
			missing++
		}
	}
	if missing > 0 {
		f.mu.Unlock()
		return nil, fmt.Errorf("%w: %d question(s) still require a comment", common.ErrValidation, missing)
	}
	snap := f.snapshotLocked()
	f.mu.Unlock()

	f.emit(FormEvent{Kind: EventSave})
	return snap, nil
}
