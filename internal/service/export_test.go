package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studygen/internal/domain"
	"studygen/internal/generator"
)

func sampleQuestions() []domain.QuizQuestion {
	meta := domain.QuestionMetadata{TokensUsed: 42, GeneratedAt: "2024-03-01T12:00:00Z", SourceLength: 900}
	return []domain.QuizQuestion{
		{
			ID:            "q_mcq_1",
			Type:          domain.QuestionMCQ,
			Stem:          `Which "layer", if any, receives input`,
			Options:       []string{"Input, first", "Hidden", "Output", `Say "none"`},
			CorrectAnswer: domain.IndexAnswer(0),
			Explanation:   "The input layer comes first.",
			Difficulty:    domain.DifficultyMedium,
			SourceSection: "Layers",
			Metadata:      meta,
		},
		{
			ID:            "q_tf_1",
			Type:          domain.QuestionTrueFalse,
			Stem:          "Neural networks learn from data",
			CorrectAnswer: domain.BoolAnswer(true),
			Difficulty:    domain.DifficultyEasy,
			Metadata:      meta,
		},
		{
			ID:            "q_sa_1",
			Type:          domain.QuestionShortAnswer,
			Stem:          "Fill in the blank: _____ descent",
			CorrectAnswer: domain.TextAnswer("Gradient"),
			Difficulty:    domain.DifficultyHard,
			SourceSection: "Training",
			Metadata:      meta,
		},
	}
}

func TestExportJSON_RoundTripOfGeneratedQuiz(t *testing.T) {
	svc := newTestQuizService(generator.NewOffline())
	resp, err := svc.GenerateQuiz(context.Background(), domain.QuizRequest{
		Content:             mlArticle(600),
		QuestionCount:       10,
		IncludeExplanations: true,
		Seed:                "export",
	})
	require.NoError(t, err)

	data, err := ExportJSON(resp.Questions, ExportOptions{Format: FormatJSON, IncludeExplanations: true, IncludeMetadata: true})
	require.NoError(t, err)

	parsed, err := ParseJSONExport(data)
	require.NoError(t, err)
	assert.Equal(t, resp.Questions, parsed)
	assert.Empty(t, ValidateQuestionFormat(parsed))
}

func TestExportJSON_Document(t *testing.T) {
	questions := sampleQuestions()

	data, err := ExportJSON(questions, ExportOptions{Format: FormatJSON, IncludeExplanations: true})
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.EqualValues(t, 3, doc["totalQuestions"])
	_, err = time.Parse(time.RFC3339, doc["exportedAt"].(string))
	assert.NoError(t, err)

	items := doc["questions"].([]any)
	first := items[0].(map[string]any)
	assert.NotContains(t, first, "metadata")
	assert.EqualValues(t, 0, first["correctAnswer"])
	assert.Equal(t, true, items[1].(map[string]any)["correctAnswer"])
	assert.Equal(t, "Gradient", items[2].(map[string]any)["correctAnswer"])

	parsed, err := ParseJSONExport(data)
	require.NoError(t, err)
	assert.Equal(t, domain.QuestionMetadata{}, parsed[0].Metadata)
	assert.Equal(t, questions[0].Explanation, parsed[0].Explanation)
}

func TestExportJSON_WithoutExplanations(t *testing.T) {
	data, err := ExportJSON(sampleQuestions(), ExportOptions{Format: FormatJSON})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "The input layer comes first.")
}

func TestParseJSONExport_Invalid(t *testing.T) {
	_, err := ParseJSONExport([]byte(`{"questions": [`))
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
}

func TestExportCSV(t *testing.T) {
	data, err := ExportCSV(sampleQuestions(), ExportOptions{Format: FormatCSV, IncludeExplanations: true, IncludeMetadata: true})
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)

	assert.Equal(t, []string{
		"ID", "Type", "Stem", "Option 1", "Option 2", "Option 3", "Option 4",
		"Correct Answer", "Explanation", "Difficulty", "Source Section",
		"Tokens Used", "Generated At", "Source Length",
	}, records[0])
	assert.Equal(t, []string{
		"q_mcq_1", "mcq", `Which "layer", if any, receives input`,
		"Input, first", "Hidden", "Output", `Say "none"`,
		"0", "The input layer comes first.", "medium", "Layers",
		"42", "2024-03-01T12:00:00Z", "900",
	}, records[1])
	assert.Equal(t, "true", records[2][7])
	assert.Equal(t, "", records[2][3])
	assert.Equal(t, "Gradient", records[3][7])

	assert.Contains(t, string(data), `"Which ""layer"", if any, receives input"`)
}

func TestExportCSV_WithoutMetadata(t *testing.T) {
	data, err := ExportCSV(sampleQuestions(), ExportOptions{Format: FormatCSV})
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records[0], 11)
	assert.Equal(t, "", records[1][8])
}

func TestExport_Dispatch(t *testing.T) {
	_, err := Export(sampleQuestions(), ExportOptions{Format: "xml"})
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))

	data, err := Export(sampleQuestions(), ExportOptions{Format: FormatCSV})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("ID,Type,Stem")))

	assert.Equal(t, "text/csv", FormatCSV.ContentType())
	assert.Equal(t, "application/json", FormatJSON.ContentType())
	assert.Equal(t, "quiz_1709294400000.json", ExportFilename(FormatJSON, fixedNow))
}
