package domain

import "context"

// SummaryParams are the inputs of a single summary generation call.
type SummaryParams struct {
	Text        string
	Mode        SummaryMode
	BulletCount int
	Temperature float64
}

// GeneratedSummary holds raw generator output. Abstract is set in abstract
// mode, Bullets in bullets mode.
type GeneratedSummary struct {
	Abstract string
	Bullets  []string
}

// QuestionParams are the inputs of a single question generation call.
// Cursor and SectionHint carry the per-item batch state so every variant
// sees the same visitation order.
type QuestionParams struct {
	Content             string
	Type                QuestionType
	Difficulty          Difficulty
	IncludeExplanations bool
	Seed                string
	Cursor              int
	SectionHint         string
}

// GeneratedQuestion is a question as produced by a generator, before the
// quiz service assigns IDs and metadata.
type GeneratedQuestion struct {
	Stem          string
	Options       []string
	CorrectAnswer CorrectAnswer
	Explanation   string
	SourceSection string
	TokensUsed    int
}

// Generator is the capability the summarization and quiz services depend on.
// Implementations must return a validation DomainError for malformed params
// and may handle every other failure internally.
type Generator interface {
	GenerateSummary(ctx context.Context, params SummaryParams) (*GeneratedSummary, error)
	GenerateQuizQuestion(ctx context.Context, params QuestionParams) (*GeneratedQuestion, error)
}
