package models

// QuestionType enumerates supported question kinds
type QuestionType string

const (
	QuestionTypeMultipleChoice QuestionType = "multiple_choice"
	QuestionTypeFreeText       QuestionType = "free_text"
)

// Question represents a question in the bank. Answer is never serialized;
// learners only ever see QuestionResponse.
type Question struct {
	ID          int          `json:"id"`
	Content     string       `json:"content"`
	Type        QuestionType `json:"type"`
	Level       int          `json:"level"`
	Rule        string       `json:"rule,omitempty"`
	Choices     []string     `json:"choices,omitempty"`
	Answer      string       `json:"-"`
	Explanation string       `json:"explanation,omitempty"`
}

// QuestionResponse is the learner-facing question shape. It deliberately has
// no answer and no explanation field, so the struct cannot leak them.
type QuestionResponse struct {
	ID      int          `json:"id"`
	Content string       `json:"content"`
	Type    QuestionType `json:"type"`
	Level   int          `json:"level"`
	Rule    string       `json:"rule,omitempty"`
	Choices []string     `json:"choices,omitempty"`
}

// Redacted converts a Question to its learner-facing shape
func (q Question) Redacted() QuestionResponse {
	return QuestionResponse{
		ID:      q.ID,
		Content: q.Content,
		Type:    q.Type,
		Level:   q.Level,
		Rule:    q.Rule,
		Choices: q.Choices,
	}
}

// CreateQuestionRequest represents an admin request to create a question
type CreateQuestionRequest struct {
	Content     string       `json:"content"`
	Type        QuestionType `json:"type"`
	Level       int          `json:"level"`
	Rule        string       `json:"rule,omitempty"`
	Choices     []string     `json:"choices,omitempty"`
	Answer      string       `json:"answer"`
	Explanation string       `json:"explanation,omitempty"`
}

// UpdateQuestionRequest represents an admin request to update a question (partial update)
type UpdateQuestionRequest struct {
	Content     string        `json:"content,omitempty"`
	Type        *QuestionType `json:"type,omitempty"`
	Level       *int          `json:"level,omitempty"`
	Rule        *string       `json:"rule,omitempty"`
	Choices     []string      `json:"choices,omitempty"`
	Answer      string        `json:"answer,omitempty"`
	Explanation *string       `json:"explanation,omitempty"`
}

// ValidateAnswerRequest represents a learner answer submission
type ValidateAnswerRequest struct {
	QuestionID int    `json:"question_id"`
	UserAnswer string `json:"user_answer"`
}

// ValidateAnswerResult is the validation verdict. The stored answer itself is
// never part of this payload; explanation and rule are included only when the
// answer is wrong, to support learning.
type ValidateAnswerResult struct {
	IsCorrect   bool   `json:"is_correct"`
	Explanation string `json:"explanation,omitempty"`
	Rule        string `json:"rule,omitempty"`
}
