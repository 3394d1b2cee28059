package models

// QuestionType enumerates checklist question kinds.
type QuestionType string

const (
	QuestionTypeScore   QuestionType = "score"
	QuestionTypeYesNo   QuestionType = "yes_no"
	QuestionTypeComment QuestionType = "comment"
)

// ScoreOption is one selectable score for a score-type question.
type ScoreOption struct {
	ID          int64  `json:"id"`
	Score       int    `json:"score"`
	Description string `json:"description"`
	Order       int    `json:"order"`
}

// Question is a checklist question as served in the checklist structure.
//
// RequiresComment forces a comment for any score; when
// RequiresCommentOnReducedScore is set, a comment is required only for
// scores strictly below MaxScore.
type Question struct {
	ID                            int64         `json:"id"`
	Text                          string        `json:"text"`
	Type                          QuestionType  `json:"type"`
	MaxScore                      int           `json:"max_score"`
	Guideline                     string        `json:"guideline"`
	RequiresComment               bool          `json:"requires_comment"`
	RequiresCommentOnReducedScore bool          `json:"requires_comment_on_reduced_score"`
	ScoreOptions                  []ScoreOption `json:"score_options"`
}

// Section groups ordered questions.
type Section struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Order       int        `json:"order"`
	Questions   []Question `json:"questions"`
}

// Category groups ordered sections.
type Category struct {
	ID       int64     `json:"id"`
	Code     string    `json:"code"`
	Name     string    `json:"name"`
	Order    int       `json:"order"`
	Sections []Section `json:"sections"`
}

// ChecklistStructure is the full checklist tree used to configure the form.
type ChecklistStructure struct {
	Categories     []Category `json:"categories"`
	TotalSections  int        `json:"total_sections"`
	TotalQuestions int        `json:"total_questions"`
	GeneratedAt    string     `json:"generated_at"`
}

// AllQuestions flattens the checklist tree in display order.
func (s *ChecklistStructure) AllQuestions() []Question {
	var out []Question
	for _, cat := range s.Categories {
		for _, sec := range cat.Sections {
			out = append(out, sec.Questions...)
		}
	}
	return out
}
