// Package sections derives topical sections from free text and scores how
// many of them a question set touches.
package sections

import (
	"math"
	"regexp"
	"strings"

	"studygen/internal/domain"
)

// longContentWords is the word count above which the generic fallback
// splits content into three parts instead of one.
const longContentWords = 1000

// Heuristics run in this order; earlier matches win during de-duplication.
var headerPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?m)^#+\s+(.+)$`),             // markdown headers
	regexp.MustCompile(`(?m)^[A-Z][A-Z \t]+$`),        // ALL CAPS lines
	regexp.MustCompile(`(?m)^\d+\.\s*([A-Z][^.\n]+)`), // numbered sections
	regexp.MustCompile(`(?m)^[A-Z][^.\n]*:$`),         // colon-terminated headers
}

var (
	markdownPrefixRe = regexp.MustCompile(`^#+\s+`)
	numberPrefixRe   = regexp.MustCompile(`^\d+\.\s*`)
)

// Extract returns the de-duplicated section titles found in content. When
// no header is found it falls back to generic sections. The result is
// best-effort segmentation, not a structural parse.
func Extract(content string) []string {
	content = strings.ReplaceAll(content, "\r\n", "\n")

	var found []string
	for _, re := range headerPatterns {
		for _, match := range re.FindAllString(content, -1) {
			title := clean(match)
			if n := len(title); n > 3 && n < 100 {
				found = append(found, title)
			}
		}
	}

	if len(found) == 0 {
		if len(strings.Fields(content)) > longContentWords {
			return []string{"Introduction", "Main Content", "Conclusion"}
		}
		return []string{"Content"}
	}
	return dedupe(found)
}

func clean(match string) string {
	s := markdownPrefixRe.ReplaceAllString(match, "")
	s = numberPrefixRe.ReplaceAllString(s, "")
	s = strings.Replace(s, ":", "", 1)
	return strings.TrimSpace(s)
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// CalculateCoverage marks a section covered when some question's source
// section and the section title contain one another, ignoring case. Covered
// sections are listed in the order questions first reference them. With no
// sections the coverage is 100.
func CalculateCoverage(questions []domain.QuizQuestion, sections []string) domain.Coverage {
	covered := make([]string, 0, len(sections))
	seen := make(map[string]struct{}, len(sections))

	for _, q := range questions {
		hint := strings.ToLower(strings.TrimSpace(q.SourceSection))
		if hint == "" {
			continue
		}
		for _, section := range sections {
			lower := strings.ToLower(section)
			if !strings.Contains(lower, hint) && !strings.Contains(hint, lower) {
				continue
			}
			if _, ok := seen[section]; !ok {
				seen[section] = struct{}{}
				covered = append(covered, section)
			}
			break
		}
	}

	percentage := 100
	if len(sections) > 0 {
		percentage = int(math.Round(float64(len(covered)) / float64(len(sections)) * 100))
	}
	return domain.Coverage{Sections: covered, CoveragePercentage: percentage}
}
