package generator

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studygen/internal/domain"
)

func TestStripThink(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripThink("<think>hmm</think>\n{\"a\":1}"))
	assert.Equal(t, "plain", stripThink("  plain  "))
	assert.Equal(t, "<think>unterminated", stripThink("<think>unterminated"))
}

func TestCleanJSONBlock(t *testing.T) {
	assert.Equal(t, `{"a":1}`, cleanJSONBlock("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, cleanJSONBlock("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, cleanJSONBlock(`{"a":1}`))
}

func TestExtractJSONObject(t *testing.T) {
	got, ok := extractJSONObject(`Sure! {"stem": "x", "meta": {"k": 1}} Hope this helps.`)
	require.True(t, ok)
	assert.Equal(t, `{"stem": "x", "meta": {"k": 1}}`, got)

	_, ok = extractJSONObject("no braces here")
	assert.False(t, ok)
	_, ok = extractJSONObject("} backwards {")
	assert.False(t, ok)
}

func TestCoerceAnswer(t *testing.T) {
	options := []string{"Gradient descent", "Dropout", "Pooling", "Batching"}
	tests := []struct {
		name    string
		raw     string
		qt      domain.QuestionType
		want    domain.CorrectAnswer
		wantErr bool
	}{
		{"mcq number", `2`, domain.QuestionMCQ, domain.IndexAnswer(2), false},
		{"mcq numeric string", `"3"`, domain.QuestionMCQ, domain.IndexAnswer(3), false},
		{"mcq letter", `"b"`, domain.QuestionMCQ, domain.IndexAnswer(1), false},
		{"mcq option text", `"pooling"`, domain.QuestionMCQ, domain.IndexAnswer(2), false},
		{"mcq option text with extra spacing", `" GRADIENT   descent "`, domain.QuestionMCQ, domain.IndexAnswer(0), false},
		{"mcq unknown text", `"Convolution"`, domain.QuestionMCQ, domain.CorrectAnswer{}, true},
		{"mcq boolean", `true`, domain.QuestionMCQ, domain.CorrectAnswer{}, true},
		{"tf boolean", `false`, domain.QuestionTrueFalse, domain.BoolAnswer(false), false},
		{"tf string", `"True"`, domain.QuestionTrueFalse, domain.BoolAnswer(true), false},
		{"tf other string", `"maybe"`, domain.QuestionTrueFalse, domain.CorrectAnswer{}, true},
		{"sa string", `"  backprop "`, domain.QuestionShortAnswer, domain.TextAnswer("backprop"), false},
		{"sa number", `42`, domain.QuestionShortAnswer, domain.TextAnswer("42"), false},
		{"missing", ``, domain.QuestionShortAnswer, domain.CorrectAnswer{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := coerceAnswer(json.RawMessage(tt.raw), tt.qt, options)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseQuestion_SchemaRejectsBadShapes(t *testing.T) {
	tests := []struct {
		name string
		text string
		qt   domain.QuestionType
	}{
		{"duplicate options", `{"stem": "Pick", "options": ["a", "a", "b", "c"], "correctAnswer": 0}`, domain.QuestionMCQ},
		{"index out of range", `{"stem": "Pick", "options": ["a", "b", "c", "d"], "correctAnswer": 4}`, domain.QuestionMCQ},
		{"fractional index", `{"stem": "Pick", "options": ["a", "b", "c", "d"], "correctAnswer": 1.5}`, domain.QuestionMCQ},
		{"empty stem", `{"stem": "", "correctAnswer": true}`, domain.QuestionTrueFalse},
		{"blank short answer", `{"stem": "Name it", "correctAnswer": "   "}`, domain.QuestionShortAnswer},
		{"mcq without json", "Which one is right", domain.QuestionMCQ},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseQuestion(tt.text, tt.qt)
			assert.Error(t, err)
		})
	}
}

func TestParseQuestion_BrokenJSONUsesFirstLine(t *testing.T) {
	q, err := parseQuestion("Gradient descent updates weights {not json}\nsecond line", domain.QuestionTrueFalse)
	require.NoError(t, err)
	assert.Equal(t, "Gradient descent updates weights {not json}", q.Stem)
	truth, ok := q.CorrectAnswer.Bool()
	assert.True(t, ok)
	assert.True(t, truth)
}

func TestParseSummary(t *testing.T) {
	_, err := parseSummary("  ", domain.ModeAbstract, 0)
	assert.ErrorIs(t, err, errEmptyResponse)

	got, err := parseSummary("First point. Second point. Third point.", domain.ModeBullets, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"First point", "Second point"}, got.Bullets)
}
