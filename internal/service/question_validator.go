package service

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"studygen/internal/domain"
)

const minStemLength = 10

var (
	bannedPhrases = []string{"all of the above", "none of the above"}
	stemWordRe    = regexp.MustCompile(`\b\w+\b`)
)

// ValidateQuestion lists every format and answer-key problem of q, one
// message per violated rule.
func ValidateQuestion(q domain.QuizQuestion) []string {
	errs := []string{}
	if q.ID == "" {
		errs = append(errs, "Question ID is required")
	}
	if !q.Type.Valid() {
		errs = append(errs, "Valid question type is required (mcq, true_false, short_answer)")
	}
	if utf8.RuneCountInString(strings.TrimSpace(q.Stem)) < minStemLength {
		errs = append(errs, "Question stem is too short (minimum 10 characters)")
	}
	errs = append(errs, answerKeyErrors(q)...)
	if hasBannedPhrase(q.Stem) {
		errs = append(errs, `Avoid "all/none of the above" patterns`)
	}
	return errs
}

// ValidateQuestionFormat grades a batch. Answer-key and structural problems
// are errors, stem style problems are warnings.
func ValidateQuestionFormat(questions []domain.QuizQuestion) []domain.QuizValidationError {
	var findings []domain.QuizValidationError
	add := func(id, msg string, sev domain.Severity) {
		findings = append(findings, domain.QuizValidationError{QuestionID: id, Error: msg, Severity: sev})
	}

	for _, q := range questions {
		if q.ID == "" {
			add(q.ID, "Question ID is required", domain.SeverityError)
		}
		if !q.Type.Valid() {
			add(q.ID, fmt.Sprintf("Unknown question type %q", q.Type), domain.SeverityError)
		}
		for _, msg := range answerKeyErrors(q) {
			add(q.ID, msg, domain.SeverityError)
		}
		if hasBannedPhrase(q.Stem) {
			add(q.ID, `Avoid "all/none of the above" patterns`, domain.SeverityWarning)
		}
		if utf8.RuneCountInString(strings.TrimSpace(q.Stem)) < minStemLength {
			add(q.ID, "Question stem too short", domain.SeverityWarning)
		}
	}
	return findings
}

// HasErrors reports whether any finding has error severity.
func HasErrors(findings []domain.QuizValidationError) bool {
	for _, f := range findings {
		if f.Severity == domain.SeverityError {
			return true
		}
	}
	return false
}

func answerKeyErrors(q domain.QuizQuestion) []string {
	var errs []string
	switch q.Type {
	case domain.QuestionMCQ:
		if len(q.Options) != domain.MCQOptionCount {
			errs = append(errs, "MCQ must have exactly 4 options")
		} else if !uniqueOptions(q.Options) {
			errs = append(errs, "MCQ options must be unique")
		}
		idx, ok := q.CorrectAnswer.Index()
		if !ok || idx < 0 || idx >= len(q.Options) || idx >= domain.MCQOptionCount {
			errs = append(errs, "MCQ correct answer must be a valid option index (0-3)")
		}
	case domain.QuestionTrueFalse:
		if _, ok := q.CorrectAnswer.Bool(); !ok {
			errs = append(errs, "T/F questions must have boolean correct answer")
		}
	case domain.QuestionShortAnswer:
		if text, ok := q.CorrectAnswer.Text(); !ok || strings.TrimSpace(text) == "" {
			errs = append(errs, "Short answer questions must have non-empty string answer")
		}
	}
	return errs
}

func uniqueOptions(options []string) bool {
	seen := make(map[string]struct{}, len(options))
	for _, o := range options {
		if _, dup := seen[o]; dup {
			return false
		}
		seen[o] = struct{}{}
	}
	return true
}

func hasBannedPhrase(stem string) bool {
	lower := strings.ToLower(stem)
	for _, p := range bannedPhrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// DetectAmbiguity warns about stem words longer than three letters that occur
// more than once across the batch. Warnings come out in alphabetical order.
func DetectAmbiguity(questions []domain.QuizQuestion) []string {
	counts := make(map[string]int)
	for _, q := range questions {
		for _, w := range stemWordRe.FindAllString(strings.ToLower(q.Stem), -1) {
			if utf8.RuneCountInString(w) > 3 {
				counts[w]++
			}
		}
	}

	terms := make([]string, 0, len(counts))
	for term, n := range counts {
		if n > 1 {
			terms = append(terms, term)
		}
	}
	sort.Strings(terms)

	warnings := make([]string, 0, len(terms))
	for _, term := range terms {
		warnings = append(warnings, fmt.Sprintf("Term %q appears in multiple questions - may cause confusion", term))
	}
	return warnings
}
