package service

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"studygen/internal/domain"
)

type ExportFormat string

const (
	FormatJSON ExportFormat = "json"
	FormatCSV  ExportFormat = "csv"
)

func (f ExportFormat) Valid() bool {
	return f == FormatJSON || f == FormatCSV
}

// ContentType is the MIME type of an export in format f.
func (f ExportFormat) ContentType() string {
	if f == FormatCSV {
		return "text/csv"
	}
	return "application/json"
}

type ExportOptions struct {
	Format              ExportFormat
	IncludeExplanations bool
	IncludeMetadata     bool
}

// exportedQuestion mirrors domain.QuizQuestion with optional metadata.
type exportedQuestion struct {
	ID            string                   `json:"id"`
	Type          domain.QuestionType      `json:"type"`
	Stem          string                   `json:"stem"`
	Options       []string                 `json:"options,omitempty"`
	CorrectAnswer domain.CorrectAnswer     `json:"correctAnswer"`
	Explanation   string                   `json:"explanation,omitempty"`
	Difficulty    domain.Difficulty        `json:"difficulty"`
	SourceSection string                   `json:"sourceSection,omitempty"`
	Metadata      *domain.QuestionMetadata `json:"metadata,omitempty"`
}

// QuizExport is the document written by ExportJSON.
type QuizExport struct {
	Questions      []exportedQuestion `json:"questions"`
	ExportedAt     string             `json:"exportedAt"`
	TotalQuestions int                `json:"totalQuestions"`
}

// Export renders questions in the format named by opts.
func Export(questions []domain.QuizQuestion, opts ExportOptions) ([]byte, error) {
	switch opts.Format {
	case FormatJSON:
		return ExportJSON(questions, opts)
	case FormatCSV:
		return ExportCSV(questions, opts)
	}
	return nil, domain.NewValidationError(`Unsupported export format. Use "json" or "csv"`)
}

// ExportJSON writes an indented JSON document that ParseJSONExport reads back.
func ExportJSON(questions []domain.QuizQuestion, opts ExportOptions) ([]byte, error) {
	doc := QuizExport{
		Questions:      make([]exportedQuestion, 0, len(questions)),
		ExportedAt:     time.Now().UTC().Format(time.RFC3339),
		TotalQuestions: len(questions),
	}
	for _, q := range questions {
		eq := exportedQuestion{
			ID:            q.ID,
			Type:          q.Type,
			Stem:          q.Stem,
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
			Difficulty:    q.Difficulty,
			SourceSection: q.SourceSection,
		}
		if opts.IncludeExplanations {
			eq.Explanation = q.Explanation
		}
		if opts.IncludeMetadata {
			meta := q.Metadata
			eq.Metadata = &meta
		}
		doc.Questions = append(doc.Questions, eq)
	}

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, domain.NewProcessingError("Failed to encode quiz export", err)
	}
	return out, nil
}

// ParseJSONExport reads a document produced by ExportJSON. Questions exported
// without metadata come back with zero metadata.
func ParseJSONExport(data []byte) ([]domain.QuizQuestion, error) {
	var doc QuizExport
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid quiz export: %v", err))
	}
	questions := make([]domain.QuizQuestion, 0, len(doc.Questions))
	for _, eq := range doc.Questions {
		q := domain.QuizQuestion{
			ID:            eq.ID,
			Type:          eq.Type,
			Stem:          eq.Stem,
			Options:       eq.Options,
			CorrectAnswer: eq.CorrectAnswer,
			Explanation:   eq.Explanation,
			Difficulty:    eq.Difficulty,
			SourceSection: eq.SourceSection,
		}
		if eq.Metadata != nil {
			q.Metadata = *eq.Metadata
		}
		questions = append(questions, q)
	}
	return questions, nil
}

var csvHeader = []string{
	"ID", "Type", "Stem",
	"Option 1", "Option 2", "Option 3", "Option 4",
	"Correct Answer", "Explanation", "Difficulty", "Source Section",
}

var csvMetadataHeader = []string{"Tokens Used", "Generated At", "Source Length"}

// ExportCSV writes one row per question. Fields holding the delimiter,
// quotes or newlines are quoted with embedded quotes doubled.
func ExportCSV(questions []domain.QuizQuestion, opts ExportOptions) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := append([]string{}, csvHeader...)
	if opts.IncludeMetadata {
		header = append(header, csvMetadataHeader...)
	}
	if err := w.Write(header); err != nil {
		return nil, domain.NewProcessingError("Failed to write CSV header", err)
	}

	for _, q := range questions {
		options := make([]string, domain.MCQOptionCount)
		copy(options, q.Options)

		explanation := ""
		if opts.IncludeExplanations {
			explanation = q.Explanation
		}

		row := []string{q.ID, string(q.Type), q.Stem}
		row = append(row, options...)
		row = append(row, q.CorrectAnswer.String(), explanation, string(q.Difficulty), q.SourceSection)
		if opts.IncludeMetadata {
			row = append(row,
				strconv.Itoa(q.Metadata.TokensUsed),
				q.Metadata.GeneratedAt,
				strconv.Itoa(q.Metadata.SourceLength),
			)
		}
		if err := w.Write(row); err != nil {
			return nil, domain.NewProcessingError("Failed to write CSV row", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, domain.NewProcessingError("Failed to write CSV export", err)
	}
	return buf.Bytes(), nil
}

// ExportFilename names an export file created at t.
func ExportFilename(format ExportFormat, t time.Time) string {
	return fmt.Sprintf("quiz_%d.%s", t.UnixMilli(), format)
}
