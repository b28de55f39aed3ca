package dto

import (
	"encoding/json"

	"studygen/internal/domain"
)

// QuizGenerateRequest is the body of POST /api/quiz/generate.
type QuizGenerateRequest struct {
	Content             string                   `json:"content" validate:"required"`
	QuestionCount       int                      `json:"questionCount" validate:"min=1,max=50"`
	QuestionTypes       *domain.TypeDistribution `json:"questionTypes,omitempty"`
	Difficulty          string                   `json:"difficulty,omitempty" validate:"omitempty,oneof=easy medium hard"`
	IncludeExplanations bool                     `json:"includeExplanations,omitempty"`
	RedactPII           bool                     `json:"redactPII,omitempty"`
	Seed                string                   `json:"seed,omitempty" validate:"omitempty,max=64"`
}

func (r QuizGenerateRequest) ToDomain() domain.QuizRequest {
	return domain.QuizRequest{
		Content:             r.Content,
		QuestionCount:       r.QuestionCount,
		QuestionTypes:       r.QuestionTypes,
		Difficulty:          domain.Difficulty(r.Difficulty),
		IncludeExplanations: r.IncludeExplanations,
		RedactPII:           r.RedactPII,
		Seed:                r.Seed,
	}
}

// QuizGenerateResponse is a generated quiz plus the request ID.
type QuizGenerateResponse struct {
	domain.QuizResponse
	RequestID string `json:"requestId"`
}

// ExportOptions selects the export format. Both flags default to true.
type ExportOptions struct {
	Format              string `json:"format" validate:"required,oneof=json csv"`
	IncludeExplanations *bool  `json:"includeExplanations,omitempty"`
	IncludeMetadata     *bool  `json:"includeMetadata,omitempty"`
}

func (o ExportOptions) Explanations() bool { return o.IncludeExplanations == nil || *o.IncludeExplanations }
func (o ExportOptions) Metadata() bool     { return o.IncludeMetadata == nil || *o.IncludeMetadata }

// QuizExportRequest is the body of POST /api/quiz/export.
type QuizExportRequest struct {
	Questions []domain.QuizQuestion `json:"questions" validate:"required"`
	Options   *ExportOptions        `json:"options" validate:"required"`
}

// QuizValidateRequest is the body of POST /api/quiz/validate.
type QuizValidateRequest struct {
	Questions []QuestionInput `json:"questions" validate:"required"`
}

// QuestionInput is a question submitted for validation. The answer is kept
// raw so a malformed answer fails that question's checks instead of the
// whole request.
type QuestionInput struct {
	domain.QuizQuestion
	CorrectAnswer json.RawMessage `json:"correctAnswer,omitempty"`
}

// ToDomain converts the input. An answer that is not a number, boolean or
// string becomes the empty answer, which every question type rejects.
func (in QuestionInput) ToDomain() domain.QuizQuestion {
	q := in.QuizQuestion
	q.CorrectAnswer = domain.CorrectAnswer{}
	if len(in.CorrectAnswer) > 0 {
		var answer domain.CorrectAnswer
		if err := json.Unmarshal(in.CorrectAnswer, &answer); err == nil {
			q.CorrectAnswer = answer
		}
	}
	return q
}

// QuestionsFromInputs converts every input with ToDomain.
func QuestionsFromInputs(inputs []QuestionInput) []domain.QuizQuestion {
	questions := make([]domain.QuizQuestion, 0, len(inputs))
	for _, in := range inputs {
		questions = append(questions, in.ToDomain())
	}
	return questions
}

type QuestionValidationResult struct {
	QuestionIndex int      `json:"questionIndex"`
	QuestionID    string   `json:"questionId"`
	Errors        []string `json:"errors"`
	IsValid       bool     `json:"isValid"`
}

type ValidationSummary struct {
	TotalQuestions   int `json:"totalQuestions"`
	ValidQuestions   int `json:"validQuestions"`
	InvalidQuestions int `json:"invalidQuestions"`
	TotalErrors      int `json:"totalErrors"`
}

type QuizValidateResponse struct {
	ValidationResults []QuestionValidationResult `json:"validationResults"`
	Summary           ValidationSummary          `json:"summary"`
	AmbiguityWarnings []string                   `json:"ambiguityWarnings"`
	RequestID         string                     `json:"requestId"`
}
