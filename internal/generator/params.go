package generator

import (
	"strings"

	"studygen/internal/domain"
)

// validateSummaryParams and validateQuestionParams are shared by every
// variant so malformed requests fail the same way whichever is active.
func validateSummaryParams(p domain.SummaryParams) error {
	if strings.TrimSpace(p.Text) == "" {
		return domain.NewValidationError("summary text must not be empty")
	}
	if !p.Mode.Valid() {
		return domain.NewValidationError("summary mode must be abstract or bullets").
			WithContext("mode", string(p.Mode))
	}
	if p.Mode == domain.ModeBullets && p.BulletCount < 0 {
		return domain.NewValidationError("bullet count must not be negative")
	}
	return nil
}

func validateQuestionParams(p domain.QuestionParams) error {
	if strings.TrimSpace(p.Content) == "" {
		return domain.NewValidationError("question content must not be empty")
	}
	if !p.Type.Valid() {
		return domain.NewValidationError("unknown question type").
			WithContext("type", string(p.Type))
	}
	if p.Difficulty != "" && !p.Difficulty.Valid() {
		return domain.NewValidationError("unknown difficulty").
			WithContext("difficulty", string(p.Difficulty))
	}
	return nil
}

func bulletCountOrDefault(n int) int {
	if n <= 0 {
		return domain.DefaultBulletCount
	}
	return n
}
