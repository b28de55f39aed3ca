package domain

// QuestionType is the format of a generated question.
type QuestionType string

const (
	QuestionMCQ         QuestionType = "mcq"
	QuestionTrueFalse   QuestionType = "true_false"
	QuestionShortAnswer QuestionType = "short_answer"
)

// QuestionTypes lists every type in generation order.
var QuestionTypes = []QuestionType{QuestionMCQ, QuestionTrueFalse, QuestionShortAnswer}

func (t QuestionType) Valid() bool {
	switch t {
	case QuestionMCQ, QuestionTrueFalse, QuestionShortAnswer:
		return true
	}
	return false
}

// Difficulty of a generated question.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// MCQOptionCount is the exact number of options a multiple choice question carries.
const MCQOptionCount = 4

// QuestionMetadata records how a question was produced.
type QuestionMetadata struct {
	TokensUsed   int    `json:"tokensUsed"`
	GeneratedAt  string `json:"generatedAt"`
	SourceLength int    `json:"sourceLength"`
}

// QuizQuestion is a single generated question.
type QuizQuestion struct {
	ID            string           `json:"id"`
	Type          QuestionType     `json:"type"`
	Stem          string           `json:"stem"`
	Options       []string         `json:"options,omitempty"`
	CorrectAnswer CorrectAnswer    `json:"correctAnswer"`
	Explanation   string           `json:"explanation,omitempty"`
	Difficulty    Difficulty       `json:"difficulty"`
	SourceSection string           `json:"sourceSection,omitempty"`
	Metadata      QuestionMetadata `json:"metadata"`
}

// TypeDistribution is an explicit per-type question count.
type TypeDistribution struct {
	MCQ         int `json:"mcq,omitempty"`
	TrueFalse   int `json:"true_false,omitempty"`
	ShortAnswer int `json:"short_answer,omitempty"`
}

func (d TypeDistribution) Total() int {
	return d.MCQ + d.TrueFalse + d.ShortAnswer
}

// Count returns the number of questions requested for t.
func (d TypeDistribution) Count(t QuestionType) int {
	switch t {
	case QuestionMCQ:
		return d.MCQ
	case QuestionTrueFalse:
		return d.TrueFalse
	case QuestionShortAnswer:
		return d.ShortAnswer
	}
	return 0
}

// QuizRequest asks for a quiz generated from Content.
type QuizRequest struct {
	Content             string            `json:"content"`
	QuestionCount       int               `json:"questionCount"`
	QuestionTypes       *TypeDistribution `json:"questionTypes,omitempty"`
	Difficulty          Difficulty        `json:"difficulty,omitempty"`
	IncludeExplanations bool              `json:"includeExplanations,omitempty"`
	RedactPII           bool              `json:"redactPII,omitempty"`
	Seed                string            `json:"seed,omitempty"`
}

// Coverage reports which extracted sections were referenced by a question.
type Coverage struct {
	Sections           []string `json:"sections"`
	CoveragePercentage int      `json:"coveragePercentage"`
}

// QuizMetadata summarises a generated quiz. GenerationTime is in milliseconds.
type QuizMetadata struct {
	TotalQuestions int        `json:"totalQuestions"`
	Difficulty     Difficulty `json:"difficulty"`
	Coverage       Coverage   `json:"coverage"`
	GenerationTime int64      `json:"generationTime"`
	TokensUsed     int        `json:"tokensUsed"`
}

// QuizResponse is the result of a quiz generation run.
type QuizResponse struct {
	QuizID    string         `json:"quizId"`
	Questions []QuizQuestion `json:"questions"`
	Metadata  QuizMetadata   `json:"metadata"`
}

// Severity of a question validation finding.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// QuizValidationError is one finding about one question. Errors fail a
// batch, warnings are advisory.
type QuizValidationError struct {
	QuestionID string   `json:"questionId"`
	Error      string   `json:"error"`
	Severity   Severity `json:"severity"`
}
