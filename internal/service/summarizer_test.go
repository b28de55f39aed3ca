package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"studygen/internal/domain"
	"studygen/internal/generator"
)

const studyParagraph = "Photosynthesis lets plants turn light into chemical energy. " +
	"Chlorophyll absorbs mostly blue and red light. " +
	"The light reactions happen in the thylakoid membranes. " +
	"The Calvin cycle fixes carbon dioxide into sugars. " +
	"Oxygen is released as a by-product of splitting water. " +
	"Stomata control the exchange of gases with the air. "

// wordsText repeats studyParagraph until it holds at least n words.
func wordsText(n int) string {
	var b strings.Builder
	for len(strings.Fields(b.String())) < n {
		b.WriteString(studyParagraph)
	}
	return strings.TrimSpace(b.String())
}

func textOfLength(n int) string {
	base := strings.Repeat(studyParagraph, 1+n/len(studyParagraph))
	return base[:n]
}

func offlineSummarizer() SummarizerService {
	return NewSummarizerService(generator.NewOffline(), 0, zap.NewNop())
}

func TestSummarize_LengthBoundary(t *testing.T) {
	svc := offlineSummarizer()

	_, err := svc.Summarize(context.Background(), domain.SummarizeRequest{Text: textOfLength(199), Mode: domain.ModeAbstract})
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))

	resp, err := svc.Summarize(context.Background(), domain.SummarizeRequest{Text: textOfLength(250), Mode: domain.ModeAbstract})
	require.NoError(t, err)
	assert.Equal(t, domain.ModeAbstract, resp.SummaryType)
	assert.NotEmpty(t, resp.Abstract)
}

func TestSummarize_RequestValidation(t *testing.T) {
	tests := []struct {
		name string
		req  domain.SummarizeRequest
	}{
		{"empty text", domain.SummarizeRequest{Text: "", Mode: domain.ModeAbstract}},
		{"blank text", domain.SummarizeRequest{Text: strings.Repeat(" ", 300), Mode: domain.ModeAbstract}},
		{"unknown mode", domain.SummarizeRequest{Text: wordsText(60), Mode: "essay"}},
		{"too few bullets", domain.SummarizeRequest{Text: wordsText(60), Mode: domain.ModeBullets, BulletCount: 2}},
		{"too many bullets", domain.SummarizeRequest{Text: wordsText(60), Mode: domain.ModeBullets, BulletCount: 8}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := new(MockGenerator)
			svc := NewSummarizerService(gen, 0, nil)

			_, err := svc.Summarize(context.Background(), tt.req)
			require.Error(t, err)
			assert.True(t, domain.IsValidation(err))
			gen.AssertNotCalled(t, "GenerateSummary", mock.Anything, mock.Anything)
		})
	}
}

func TestSummarize_BulletsExactCount(t *testing.T) {
	svc := offlineSummarizer()
	text := wordsText(300)

	resp, err := svc.Summarize(context.Background(), domain.SummarizeRequest{Text: text, Mode: domain.ModeBullets, BulletCount: 5})
	require.NoError(t, err)
	assert.Len(t, resp.Bullets, 5)
	for _, b := range resp.Bullets {
		assert.NotEmpty(t, b)
	}
}

func TestSummarize_DefaultBulletCount(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("GenerateSummary", mock.Anything, mock.MatchedBy(func(p domain.SummaryParams) bool {
		return p.BulletCount == domain.DefaultBulletCount
	})).Return(&domain.GeneratedSummary{Bullets: []string{"a", "b", "c", "d", "e"}}, nil)

	svc := NewSummarizerService(gen, 0.3, nil)
	resp, err := svc.Summarize(context.Background(), domain.SummarizeRequest{Text: wordsText(60), Mode: domain.ModeBullets})
	require.NoError(t, err)
	assert.Len(t, resp.Bullets, 5)
	gen.AssertExpectations(t)
}

func TestSummarize_PadsAndTruncatesBullets(t *testing.T) {
	t.Run("pads with placeholders", func(t *testing.T) {
		gen := new(MockGenerator)
		gen.On("GenerateSummary", mock.Anything, mock.Anything).
			Return(&domain.GeneratedSummary{Bullets: []string{"  Plants   use light. ", "", "Chlorophyll absorbs light."}}, nil)

		svc := NewSummarizerService(gen, 0, nil)
		resp, err := svc.Summarize(context.Background(), domain.SummarizeRequest{Text: wordsText(60), Mode: domain.ModeBullets, BulletCount: 4})
		require.NoError(t, err)
		assert.Equal(t, []string{
			"Plants use light.",
			"Chlorophyll absorbs light.",
			"Key point three from the content.",
			"Key point four from the content.",
		}, resp.Bullets)
	})

	t.Run("truncates extra bullets", func(t *testing.T) {
		gen := new(MockGenerator)
		gen.On("GenerateSummary", mock.Anything, mock.Anything).
			Return(&domain.GeneratedSummary{Bullets: []string{"a", "b", "c", "d", "e", "f"}}, nil)

		svc := NewSummarizerService(gen, 0, nil)
		resp, err := svc.Summarize(context.Background(), domain.SummarizeRequest{Text: wordsText(60), Mode: domain.ModeBullets, BulletCount: 3})
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c"}, resp.Bullets)
		assert.Equal(t, 3, resp.Meta.TokensOut)
	})
}

func TestSummarize_HallucinationGuard(t *testing.T) {
	source := "The class meets 3 times a week for 50 minutes. " + wordsText(50)

	tests := []struct {
		name      string
		source    string
		abstract  string
		wantError bool
	}{
		{"number present in source", source, "The class meets 3 times a week.", false},
		{"both source numbers", source, "Sessions last 50 minutes, 3 times a week.", false},
		{"number absent from source", source, "The class meets 5 times a week.", true},
		{"source without numbers", wordsText(60), "Plants have 12 ways to capture light.", true},
		{"decimal close enough", "The ratio is 2.5 in most leaves. " + wordsText(50), "A ratio of 2.50 is typical.", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := new(MockGenerator)
			gen.On("GenerateSummary", mock.Anything, mock.Anything).
				Return(&domain.GeneratedSummary{Abstract: tt.abstract}, nil)

			svc := NewSummarizerService(gen, 0, nil)
			resp, err := svc.Summarize(context.Background(), domain.SummarizeRequest{Text: tt.source, Mode: domain.ModeAbstract})
			if tt.wantError {
				require.Error(t, err)
				assert.True(t, domain.IsHallucination(err))
				assert.Nil(t, resp)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.abstract, resp.Abstract)
		})
	}
}

func TestSummarize_HallucinationInBullets(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("GenerateSummary", mock.Anything, mock.Anything).
		Return(&domain.GeneratedSummary{Bullets: []string{"Plants use light.", "About 40 species were studied."}}, nil)

	svc := NewSummarizerService(gen, 0, nil)
	_, err := svc.Summarize(context.Background(), domain.SummarizeRequest{Text: wordsText(60), Mode: domain.ModeBullets, BulletCount: 3})
	require.Error(t, err)
	assert.True(t, domain.IsHallucination(err))
}

func TestSummarize_TrimsLongAbstract(t *testing.T) {
	sentence := "Plants capture light and store its energy in sugar molecules for later use."
	long := strings.TrimSpace(strings.Repeat(sentence+" ", 20))

	gen := new(MockGenerator)
	gen.On("GenerateSummary", mock.Anything, mock.Anything).
		Return(&domain.GeneratedSummary{Abstract: long}, nil)

	svc := NewSummarizerService(gen, 0, nil)
	resp, err := svc.Summarize(context.Background(), domain.SummarizeRequest{Text: wordsText(60), Mode: domain.ModeAbstract})
	require.NoError(t, err)

	words := len(strings.Fields(resp.Abstract))
	assert.LessOrEqual(t, words, abstractMaxWords)
	assert.Greater(t, words, abstractMinWords)
	assert.True(t, strings.HasSuffix(resp.Abstract, "later use."))
	assert.Equal(t, words, resp.Meta.TokensOut)
}

func TestSummarize_ShortAbstractNotPadded(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("GenerateSummary", mock.Anything, mock.Anything).
		Return(&domain.GeneratedSummary{Abstract: "Plants make sugar from light."}, nil)

	svc := NewSummarizerService(gen, 0, nil)
	resp, err := svc.Summarize(context.Background(), domain.SummarizeRequest{Text: wordsText(60), Mode: domain.ModeAbstract})
	require.NoError(t, err)
	assert.Equal(t, "Plants make sugar from light.", resp.Abstract)
}

func TestSummarize_RedactsBeforeGenerating(t *testing.T) {
	text := wordsText(50) + " Contact jane.doe@example.com or call 555-123-4567 for notes."

	gen := new(MockGenerator)
	gen.On("GenerateSummary", mock.Anything, mock.MatchedBy(func(p domain.SummaryParams) bool {
		return strings.Contains(p.Text, "[REDACTED_EMAIL]") &&
			strings.Contains(p.Text, "[REDACTED_PHONE]") &&
			!strings.Contains(p.Text, "example.com") &&
			p.Temperature == 0.2
	})).Return(&domain.GeneratedSummary{Abstract: "Plants make sugar from light."}, nil)

	svc := NewSummarizerService(gen, 0.2, nil)
	resp, err := svc.Summarize(context.Background(), domain.SummarizeRequest{Text: text, Mode: domain.ModeAbstract, RedactPII: true})
	require.NoError(t, err)
	assert.Equal(t, len(strings.Fields(text)), resp.Meta.TokensIn)
	gen.AssertExpectations(t)
}

func TestSummarize_GeneratorErrors(t *testing.T) {
	t.Run("failure becomes processing error", func(t *testing.T) {
		gen := new(MockGenerator)
		gen.On("GenerateSummary", mock.Anything, mock.Anything).Return(nil, errors.New("boom"))

		svc := NewSummarizerService(gen, 0, nil)
		_, err := svc.Summarize(context.Background(), domain.SummarizeRequest{Text: wordsText(60), Mode: domain.ModeAbstract})
		require.Error(t, err)
		assert.True(t, domain.IsProcessing(err))
	})

	t.Run("validation error passes through", func(t *testing.T) {
		gen := new(MockGenerator)
		gen.On("GenerateSummary", mock.Anything, mock.Anything).Return(nil, domain.NewValidationError("bad params"))

		svc := NewSummarizerService(gen, 0, nil)
		_, err := svc.Summarize(context.Background(), domain.SummarizeRequest{Text: wordsText(60), Mode: domain.ModeAbstract})
		require.Error(t, err)
		assert.True(t, domain.IsValidation(err))
	})

	t.Run("nil summary", func(t *testing.T) {
		gen := new(MockGenerator)
		gen.On("GenerateSummary", mock.Anything, mock.Anything).Return(nil, nil)

		svc := NewSummarizerService(gen, 0, nil)
		_, err := svc.Summarize(context.Background(), domain.SummarizeRequest{Text: wordsText(60), Mode: domain.ModeAbstract})
		require.Error(t, err)
		assert.True(t, domain.IsProcessing(err))
	})
}

func TestTrimToWordCount(t *testing.T) {
	text := "One two three. Four five six. Seven eight nine."
	assert.Equal(t, "One two three. Four five six.", trimToWordCount(text, 7))
	assert.Equal(t, "One two three.", trimToWordCount("One two three. Four five six.", 2))
}
