package util

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var (
	horizontalSpaceRe = regexp.MustCompile(`[ \t]+`)
	blankLinesRe      = regexp.MustCompile(`\n\s*\n\s*\n+`)
	numberRe          = regexp.MustCompile(`\d+(?:\.\d+)?`)
	dashBulletRe      = regexp.MustCompile(`^\s*-\s+(.*)$`)
	numberedItemRe    = regexp.MustCompile(`^\s*\d+\.\s+(.*)$`)
)

// WordCount counts whitespace-separated tokens.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// Normalize collapses runs of spaces and tabs, limits blank lines to one
// and trims the result.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	text = horizontalSpaceRe.ReplaceAllString(text, " ")
	text = blankLinesRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// ExtractSentences splits normalized text on '.', '!' and '?', dropping the
// terminators and empty fragments. A '.' between two digits is part of a
// decimal literal and does not end a sentence.
func ExtractSentences(text string) []string {
	return splitSentences(Normalize(text), false)
}

// SentencesWithPunctuation is ExtractSentences but keeps each sentence's
// terminators, so the pieces can be joined back into prose.
func SentencesWithPunctuation(text string) []string {
	return splitSentences(Normalize(text), true)
}

func splitSentences(text string, keep bool) []string {
	runes := []rune(text)
	var out []string
	start := 0
	for i := 0; i < len(runes); i++ {
		if !isTerminator(runes, i) {
			continue
		}
		end := i
		for end+1 < len(runes) && isTerminator(runes, end+1) {
			end++
		}
		piece := runes[start:i]
		if keep {
			piece = runes[start : end+1]
		}
		if s := strings.TrimSpace(string(piece)); s != "" && (!keep || hasContent(s)) {
			out = append(out, s)
		}
		start = end + 1
		i = end
	}
	if start < len(runes) {
		if s := strings.TrimSpace(string(runes[start:])); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func isTerminator(runes []rune, i int) bool {
	switch runes[i] {
	case '!', '?':
		return true
	case '.':
		if i > 0 && i+1 < len(runes) && unicode.IsDigit(runes[i-1]) && unicode.IsDigit(runes[i+1]) {
			return false
		}
		return true
	}
	return false
}

func hasContent(s string) bool {
	return strings.TrimFunc(s, func(r rune) bool { return r == '.' || r == '!' || r == '?' || unicode.IsSpace(r) }) != ""
}

// ExtractNumbers returns every integer or decimal literal in order of appearance.
func ExtractNumbers(text string) []float64 {
	matches := numberRe.FindAllString(text, -1)
	numbers := make([]float64, 0, len(matches))
	for _, m := range matches {
		f, err := strconv.ParseFloat(m, 64)
		if err != nil {
			continue
		}
		numbers = append(numbers, f)
	}
	return numbers
}

// ContainsNumbers reports whether text contains any digit.
func ContainsNumbers(text string) bool {
	return strings.IndexFunc(text, unicode.IsDigit) >= 0
}

// SplitIntoBullets returns at most maxBullets points. Lines starting with
// "- " win, then numbered list lines, then sentences.
func SplitIntoBullets(text string, maxBullets int) []string {
	if maxBullets <= 0 {
		maxBullets = 5
	}
	normalized := Normalize(text)
	if normalized == "" {
		return []string{}
	}

	bullets := matchLines(normalized, dashBulletRe)
	if len(bullets) == 0 {
		bullets = matchLines(normalized, numberedItemRe)
	}
	if len(bullets) == 0 {
		bullets = splitSentences(normalized, false)
	}
	if len(bullets) > maxBullets {
		bullets = bullets[:maxBullets]
	}
	return bullets
}

func matchLines(text string, re *regexp.Regexp) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		m := re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if item := strings.TrimSpace(m[1]); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// TruncateToWordCount keeps the first maxWords words and appends "..." when
// anything was cut.
func TruncateToWordCount(text string, maxWords int) string {
	words := strings.Fields(text)
	if len(words) <= maxWords {
		return text
	}
	if maxWords <= 0 {
		return "..."
	}
	return strings.Join(words[:maxWords], " ") + "..."
}
