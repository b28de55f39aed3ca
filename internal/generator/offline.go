package generator

import (
	"context"
	"fmt"
	"hash/fnv"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"studygen/internal/domain"
	"studygen/internal/sections"
	"studygen/internal/util"
)

const (
	abstractSentences   = 3
	abstractMinWords    = 50
	abstractClosingLine = "This content covers important topics and key concepts."
	maxBulletRunes      = 100
	maxOptionWords      = 30
	minStatementRunes   = 10
	clozeBlank          = "_____"
	defaultSourceLabel  = "General Content"
)

var (
	bulletMarkerRe = regexp.MustCompile(`^(?:[-•*]\s*|\d+\.\s*)`)

	// Auxiliaries that can be negated by inserting or removing "not".
	negatableVerbs = map[string]bool{
		"is": true, "are": true, "was": true, "were": true,
		"can": true, "will": true, "should": true, "must": true,
		"could": true, "would": true, "may": true, "might": true,
	}
)

// Offline derives summaries and questions from the input text alone. It
// makes no network calls and returns identical output for identical input.
type Offline struct{}

var _ domain.Generator = (*Offline)(nil)

func NewOffline() *Offline {
	return &Offline{}
}

func (o *Offline) GenerateSummary(ctx context.Context, params domain.SummaryParams) (*domain.GeneratedSummary, error) {
	if err := validateSummaryParams(params); err != nil {
		return nil, err
	}
	if params.Mode == domain.ModeBullets {
		return &domain.GeneratedSummary{Bullets: offlineBullets(params.Text, bulletCountOrDefault(params.BulletCount))}, nil
	}
	return &domain.GeneratedSummary{Abstract: offlineAbstract(params.Text)}, nil
}

func offlineAbstract(text string) string {
	sentences := util.SentencesWithPunctuation(prose(text))
	if len(sentences) > abstractSentences {
		sentences = sentences[:abstractSentences]
	}
	abstract := strings.Join(strings.Fields(strings.Join(sentences, " ")), " ")
	if abstract != "" && !strings.ContainsAny(abstract[len(abstract)-1:], ".!?") {
		abstract += "."
	}
	if util.WordCount(abstract) < abstractMinWords {
		abstract = strings.TrimSpace(abstract + " " + abstractClosingLine)
	}
	return abstract
}

// offlineBullets strides through the sentences so the points spread over the
// whole text. It may return fewer than count bullets.
func offlineBullets(text string, count int) []string {
	sentences := util.ExtractSentences(prose(text))
	step := len(sentences) / count
	if step < 1 {
		step = 1
	}

	bullets := make([]string, 0, count)
	for i := 0; i < count && i*step < len(sentences); i++ {
		b := strings.Join(strings.Fields(sentences[i*step]), " ")
		b = strings.TrimSpace(bulletMarkerRe.ReplaceAllString(b, ""))
		if b == "" {
			continue
		}
		bullets = append(bullets, cutAtWord(b, maxBulletRunes))
	}
	return bullets
}

// prose drops markdown header lines, which are titles rather than statements.
func prose(text string) string {
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

// cutAtWord shortens s to at most limit runes without splitting a word.
func cutAtWord(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	cut := string(runes[:limit-3])
	if i := strings.LastIndexFunc(cut, unicode.IsSpace); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRightFunc(cut, func(r rune) bool { return unicode.IsSpace(r) || unicode.IsPunct(r) }) + "..."
}

func (o *Offline) GenerateQuizQuestion(ctx context.Context, params domain.QuestionParams) (*domain.GeneratedQuestion, error) {
	if err := validateQuestionParams(params); err != nil {
		return nil, err
	}

	statements := candidateStatements(params.Content)
	if len(statements) == 0 {
		return nil, domain.NewValidationError("content has no usable sentences")
	}

	offset := int(hashOf(params.Seed, string(params.Type)) % uint32(len(statements)))
	idx := (offset + params.Cursor) % len(statements)

	var q *domain.GeneratedQuestion
	switch params.Type {
	case domain.QuestionMCQ:
		q = offlineMCQ(statements, idx, params)
	case domain.QuestionTrueFalse:
		q = offlineTrueFalse(statements, idx, params)
	default:
		q = offlineShortAnswer(statements, idx, params)
	}

	q.SourceSection = params.SectionHint
	if q.SourceSection == "" {
		q.SourceSection = firstSection(params.Content)
	}
	q.TokensUsed = util.WordCount(q.Stem) + util.WordCount(strings.Join(q.Options, " ")) + util.WordCount(q.Explanation)
	return q, nil
}

// candidateStatements returns the sentences long enough to quiz on, or all
// sentences when none is.
func candidateStatements(content string) []string {
	all := util.ExtractSentences(prose(content))
	var out []string
	for _, s := range all {
		s = strings.Join(strings.Fields(s), " ")
		if len([]rune(s)) > minStatementRunes {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return all
	}
	return out
}

func offlineMCQ(statements []string, idx int, p domain.QuestionParams) *domain.GeneratedQuestion {
	correct := util.TruncateToWordCount(statements[idx], maxOptionWords)

	seen := map[string]bool{strings.ToLower(correct): true}
	distractors := make([]string, 0, domain.MCQOptionCount-1)
	add := func(opt string) {
		key := strings.ToLower(opt)
		if opt == "" || seen[key] || len(distractors) == domain.MCQOptionCount-1 {
			return
		}
		seen[key] = true
		distractors = append(distractors, opt)
	}

	// Negated neighbours read like real claims but are not supported.
	for k := 1; k < len(statements) && len(distractors) < domain.MCQOptionCount-1; k++ {
		other := statements[(idx+k)%len(statements)]
		if neg, ok := negate(other); ok {
			add(util.TruncateToWordCount(neg, maxOptionWords))
		}
	}
	if neg, ok := negate(statements[idx]); ok {
		add(util.TruncateToWordCount(neg, maxOptionWords))
	}
	topic := keyTerm(statements[idx])
	if topic == "" {
		topic = "this topic"
	}
	for _, filler := range []string{
		fmt.Sprintf("The material argues that %s is irrelevant to the topic", topic),
		fmt.Sprintf("The material never mentions %s", topic),
		fmt.Sprintf("The material treats %s as a purely historical idea", topic),
		"The material draws no conclusion on this point",
	} {
		add(filler)
	}

	pos := int(hashOf(p.Seed, strconv.Itoa(p.Cursor), correct) % domain.MCQOptionCount)
	options := make([]string, 0, domain.MCQOptionCount)
	options = append(options, distractors[:pos]...)
	options = append(options, correct)
	options = append(options, distractors[pos:]...)

	q := &domain.GeneratedQuestion{
		Stem:          fmt.Sprintf("Which statement about %s is supported by the material", topic),
		Options:       options,
		CorrectAnswer: domain.IndexAnswer(pos),
	}
	if p.IncludeExplanations {
		q.Explanation = fmt.Sprintf("The material states: %s.", statements[idx])
	}
	return q
}

func offlineTrueFalse(statements []string, idx int, p domain.QuestionParams) *domain.GeneratedQuestion {
	statement := statements[idx]
	truth := hashOf(p.Seed, strconv.Itoa(p.Cursor), statement)%2 == 0

	stem := statement
	if !truth {
		if neg, ok := negate(statement); ok {
			stem = neg
		} else {
			truth = true
		}
	}

	q := &domain.GeneratedQuestion{
		Stem:          stem,
		CorrectAnswer: domain.BoolAnswer(truth),
	}
	if p.IncludeExplanations {
		verdict := "true"
		if !truth {
			verdict = "false"
		}
		q.Explanation = fmt.Sprintf("This statement is %s. The material states: %s.", verdict, statement)
	}
	return q
}

func offlineShortAnswer(statements []string, idx int, p domain.QuestionParams) *domain.GeneratedQuestion {
	statement := statements[idx]
	answer := keyTerm(statement)

	var q *domain.GeneratedQuestion
	if answer != "" {
		q = &domain.GeneratedQuestion{
			Stem:          "Fill in the blank: " + replaceWord(statement, answer, clozeBlank),
			CorrectAnswer: domain.TextAnswer(answer),
		}
	} else {
		answer = util.TruncateToWordCount(statement, 3)
		q = &domain.GeneratedQuestion{
			Stem:          "Summarize the main idea of this statement: " + statement,
			CorrectAnswer: domain.TextAnswer(answer),
		}
	}
	if p.IncludeExplanations {
		q.Explanation = fmt.Sprintf("The answer is %q, from: %s.", answer, statement)
	}
	return q
}

// negate inserts "not" after the first negatable auxiliary, or removes an
// existing "not" following it.
func negate(sentence string) (string, bool) {
	words := strings.Fields(sentence)
	for i, w := range words {
		if !negatableVerbs[strings.ToLower(strings.Trim(w, ",;:"))] {
			continue
		}
		if i+1 < len(words) && strings.EqualFold(words[i+1], "not") {
			out := append(append([]string{}, words[:i+1]...), words[i+2:]...)
			return strings.Join(out, " "), true
		}
		out := make([]string, 0, len(words)+1)
		out = append(out, words[:i+1]...)
		out = append(out, "not")
		out = append(out, words[i+1:]...)
		return strings.Join(out, " "), true
	}
	return "", false
}

// keyTerm returns the longest alphabetic word of at least four letters, the
// first one winning ties.
func keyTerm(sentence string) string {
	best := ""
	for _, w := range strings.Fields(sentence) {
		w = strings.TrimFunc(w, func(r rune) bool { return !unicode.IsLetter(r) })
		if len([]rune(w)) < 4 || strings.IndexFunc(w, func(r rune) bool { return !unicode.IsLetter(r) }) >= 0 {
			continue
		}
		if len([]rune(w)) > len([]rune(best)) {
			best = w
		}
	}
	return best
}

// replaceWord swaps the first whole-word occurrence of word.
func replaceWord(sentence, word, with string) string {
	words := strings.Fields(sentence)
	for i, w := range words {
		trimmed := strings.TrimFunc(w, func(r rune) bool { return !unicode.IsLetter(r) })
		if trimmed == word {
			words[i] = strings.Replace(w, word, with, 1)
			break
		}
	}
	return strings.Join(words, " ")
}

func firstSection(content string) string {
	found := sections.Extract(content)
	if len(found) == 0 || found[0] == "Content" {
		return defaultSourceLabel
	}
	return found[0]
}

func hashOf(parts ...string) uint32 {
	h := fnv.New32a()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return h.Sum32()
}
