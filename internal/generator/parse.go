package generator

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"studygen/internal/domain"
	"studygen/internal/util"
)

const heuristicShortAnswer = "Generated answer"

var (
	errNoJSON        = errors.New("no JSON object found in model response")
	errEmptyResponse = errors.New("model returned an empty response")

	modelBulletRe = regexp.MustCompile(`^\s*[-•*]\s*(.*)$`)
)

type rawQuestion struct {
	Stem          string          `json:"stem"`
	Options       []string        `json:"options"`
	CorrectAnswer json.RawMessage `json:"correctAnswer"`
	Explanation   string          `json:"explanation"`
	SourceSection string          `json:"sourceSection"`
	TokensUsed    int             `json:"tokensUsed"`
}

// stripThink removes a <think>...</think> block emitted by reasoning models.
func stripThink(s string) string {
	s = strings.TrimSpace(s)
	if start := strings.Index(s, "<think>"); start != -1 {
		if end := strings.Index(s, "</think>"); end != -1 && end > start {
			s = strings.TrimSpace(s[:start] + s[end+len("</think>"):])
		}
	}
	return s
}

// cleanJSONBlock removes markdown code fences around a JSON payload.
func cleanJSONBlock(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// extractJSONObject slices the outermost {...} block out of s.
func extractJSONObject(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}

// parseQuestion turns a model completion into a question. A JSON object is
// preferred; without one the first line becomes the stem, which only works
// for question types whose answer can be defaulted.
func parseQuestion(completion string, qt domain.QuestionType) (*domain.GeneratedQuestion, error) {
	text := cleanJSONBlock(stripThink(completion))
	if text == "" {
		return nil, errEmptyResponse
	}

	block, ok := extractJSONObject(text)
	if !ok {
		return heuristicQuestion(text, qt)
	}
	var raw rawQuestion
	if err := json.Unmarshal([]byte(block), &raw); err != nil {
		return heuristicQuestion(text, qt)
	}

	answer, err := coerceAnswer(raw.CorrectAnswer, qt, raw.Options)
	if err != nil {
		return nil, err
	}
	q := &domain.GeneratedQuestion{
		Stem:          strings.TrimSpace(raw.Stem),
		CorrectAnswer: answer,
		Explanation:   strings.TrimSpace(raw.Explanation),
		SourceSection: strings.TrimSpace(raw.SourceSection),
		TokensUsed:    raw.TokensUsed,
	}
	if qt == domain.QuestionMCQ {
		q.Options = make([]string, 0, len(raw.Options))
		for _, o := range raw.Options {
			q.Options = append(q.Options, strings.TrimSpace(o))
		}
	}
	if err := validateQuestionShape(qt, q); err != nil {
		return nil, err
	}
	return q, nil
}

func heuristicQuestion(text string, qt domain.QuestionType) (*domain.GeneratedQuestion, error) {
	if qt == domain.QuestionMCQ {
		return nil, fmt.Errorf("%w: multiple choice needs structured options", errNoJSON)
	}
	stem := strings.TrimSpace(strings.SplitN(text, "\n", 2)[0])
	if stem == "" {
		return nil, errEmptyResponse
	}
	q := &domain.GeneratedQuestion{Stem: stem}
	if qt == domain.QuestionTrueFalse {
		q.CorrectAnswer = domain.BoolAnswer(true)
	} else {
		q.CorrectAnswer = domain.TextAnswer(heuristicShortAnswer)
	}
	return q, nil
}

// coerceAnswer maps the loosely typed correctAnswer a model returns onto the
// representation each question type requires.
func coerceAnswer(raw json.RawMessage, qt domain.QuestionType, options []string) (domain.CorrectAnswer, error) {
	var value domain.CorrectAnswer
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &value); err != nil {
			return domain.CorrectAnswer{}, fmt.Errorf("decode correctAnswer: %w", err)
		}
	}

	switch qt {
	case domain.QuestionMCQ:
		if _, ok := value.Index(); ok {
			return value, nil
		}
		if s, ok := value.Text(); ok {
			if idx, ok := optionIndex(s, options); ok {
				return domain.IndexAnswer(idx), nil
			}
		}
	case domain.QuestionTrueFalse:
		if _, ok := value.Bool(); ok {
			return value, nil
		}
		if s, ok := value.Text(); ok {
			switch strings.ToLower(strings.TrimSpace(s)) {
			case "true":
				return domain.BoolAnswer(true), nil
			case "false":
				return domain.BoolAnswer(false), nil
			}
		}
	case domain.QuestionShortAnswer:
		if s, ok := value.Text(); ok {
			return domain.TextAnswer(strings.TrimSpace(s)), nil
		}
		if value.Kind() == domain.AnswerNumber {
			return domain.TextAnswer(value.String()), nil
		}
	}
	return domain.CorrectAnswer{}, fmt.Errorf("correctAnswer %s is not usable for %s", string(raw), qt)
}

// optionIndex resolves "2", "C" or the option text itself to an index.
func optionIndex(s string, options []string) (int, bool) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	if len(s) == 1 {
		if c := s[0] | 0x20; c >= 'a' && c <= 'd' {
			return int(c - 'a'), true
		}
	}
	for i, o := range options {
		if domain.MatchShortAnswer(o, s) {
			return i, true
		}
	}
	return 0, false
}

// parseSummary reads an abstract as-is and bullets from "-", "•" or "*"
// prefixed lines, falling back to sentence splitting.
func parseSummary(completion string, mode domain.SummaryMode, bulletCount int) (*domain.GeneratedSummary, error) {
	text := strings.TrimSpace(cleanJSONBlock(stripThink(completion)))
	if text == "" {
		return nil, errEmptyResponse
	}
	if mode == domain.ModeAbstract {
		return &domain.GeneratedSummary{Abstract: text}, nil
	}

	count := bulletCountOrDefault(bulletCount)
	var bullets []string
	for _, line := range strings.Split(text, "\n") {
		m := modelBulletRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if b := strings.TrimSpace(m[1]); b != "" {
			bullets = append(bullets, b)
		}
	}
	if len(bullets) == 0 {
		bullets = util.SplitIntoBullets(text, count)
	}
	if len(bullets) > count {
		bullets = bullets[:count]
	}
	return &domain.GeneratedSummary{Bullets: bullets}, nil
}
