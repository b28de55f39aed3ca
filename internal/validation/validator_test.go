package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studygen/internal/domain"
	"studygen/internal/dto"
)

func TestValidator_SummarizeRequest(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name       string
		req        dto.SummarizeRequest
		wantFields []string
	}{
		{"valid abstract", dto.SummarizeRequest{Text: "some text", Mode: "abstract"}, nil},
		{"valid bullets with count", dto.SummarizeRequest{Text: "some text", Mode: "bullets", BulletCount: 7}, nil},
		{"missing text and mode", dto.SummarizeRequest{}, []string{"text", "mode"}},
		{"bad mode", dto.SummarizeRequest{Text: "x", Mode: "essay"}, []string{"mode"}},
		{"bullet count too high", dto.SummarizeRequest{Text: "x", Mode: "bullets", BulletCount: 9}, []string{"bulletCount"}},
		{"bullet count too low", dto.SummarizeRequest{Text: "x", Mode: "bullets", BulletCount: 2}, []string{"bulletCount"}},
		{"bullet count ignored for abstract", dto.SummarizeRequest{Text: "x", Mode: "abstract", BulletCount: 9}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.req)
			if tt.wantFields == nil {
				assert.NoError(t, err)
				return
			}
			var fieldErrs domain.FieldErrors
			require.ErrorAs(t, err, &fieldErrs)
			var got []string
			for _, fe := range fieldErrs {
				got = append(got, fe.Field)
			}
			assert.Equal(t, tt.wantFields, got)
		})
	}
}

func TestValidator_Messages(t *testing.T) {
	v := NewValidator()

	err := v.Struct(dto.QuizGenerateRequest{Content: "c", QuestionCount: 51, Difficulty: "extreme"})
	var fieldErrs domain.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	require.Len(t, fieldErrs, 2)
	assert.Equal(t, domain.FieldError{Field: "questionCount", Message: "must be at most 50", Value: 51}, fieldErrs[0])
	assert.Equal(t, "difficulty", fieldErrs[1].Field)
	assert.Equal(t, "must be one of [easy medium hard]", fieldErrs[1].Message)
}

func TestValidator_BulletCountMessage(t *testing.T) {
	err := NewValidator().Struct(dto.SummarizeRequest{Text: "x", Mode: "bullets", BulletCount: 8})
	var fieldErrs domain.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	require.Len(t, fieldErrs, 1)
	assert.Equal(t, domain.FieldError{Field: "bulletCount", Message: "must be between 3 and 7 in bullets mode", Value: 8}, fieldErrs[0])
}

func TestValidator_NestedOptions(t *testing.T) {
	v := NewValidator()

	err := v.Struct(dto.QuizExportRequest{Questions: []domain.QuizQuestion{}, Options: &dto.ExportOptions{Format: "xml"}})
	var fieldErrs domain.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Equal(t, "options.format", fieldErrs[0].Field)

	err = v.Struct(dto.QuizExportRequest{})
	require.ErrorAs(t, err, &fieldErrs)
	assert.Len(t, fieldErrs, 2)

	assert.NoError(t, v.Struct(dto.QuizExportRequest{Questions: []domain.QuizQuestion{}, Options: &dto.ExportOptions{Format: "csv"}}))
}

func TestValidator_TruncatesEchoedValues(t *testing.T) {
	v := NewValidator()

	err := v.Struct(dto.SummarizeRequest{Text: "x", Mode: strings.Repeat("m", 100)})
	var fieldErrs domain.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Equal(t, strings.Repeat("m", 64)+"...", fieldErrs[0].Value)
}
