package generator

import (
	"fmt"
	"strings"

	"studygen/internal/domain"
)

var difficultyGuidance = map[domain.Difficulty]string{
	domain.DifficultyEasy:   "Focus on basic definitions, facts, and straightforward concepts.",
	domain.DifficultyMedium: "Include application of concepts and moderate complexity.",
	domain.DifficultyHard:   "Require synthesis, analysis, and complex reasoning.",
}

var typeGuidance = map[domain.QuestionType]string{
	domain.QuestionMCQ:         "Generate a multiple choice question with exactly 4 options, where only 1 is correct. Make distractors plausible but clearly wrong. correctAnswer is the 0-based index of the correct option.",
	domain.QuestionTrueFalse:   "Generate a true/false statement that is clearly true or false based on the content. correctAnswer is a JSON boolean.",
	domain.QuestionShortAnswer: "Generate a short answer question requiring a brief, specific response (1-3 words or a short phrase). correctAnswer is that response as a string.",
}

func buildQuizPrompt(p domain.QuestionParams) string {
	difficulty := p.Difficulty
	if difficulty == "" {
		difficulty = domain.DifficultyMedium
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Based on the following content, generate a %s difficulty %s question.\n\n", difficulty, p.Type)
	b.WriteString(typeGuidance[p.Type])
	b.WriteString("\n\n")
	b.WriteString(difficultyGuidance[difficulty])
	b.WriteString("\n\n")
	if p.SectionHint != "" {
		fmt.Fprintf(&b, "Focus on the section titled %q and use it as sourceSection.\n\n", p.SectionHint)
	}
	if p.IncludeExplanations {
		b.WriteString("Include a brief explanation citing the relevant part of the source content.\n\n")
	}
	fmt.Fprintf(&b, "Content:\n%s\n\n", p.Content)
	b.WriteString(`Requirements:
- Question must be answerable from the provided content
- No "all of the above" or "none of the above" options
- Avoid ambiguous wording
- Ensure exactly one correct answer
- Ground all content in the source material

Respond with ONLY a JSON object in the following format:
{
  "stem": "question text",
  "options": ["option1", "option2", "option3", "option4"],
  "correctAnswer": 0,
  "explanation": "explanation text",
  "sourceSection": "section title or topic"
}
Omit "options" unless the question is multiple choice.`)
	return b.String()
}

func buildSummaryPrompt(p domain.SummaryParams) string {
	var b strings.Builder
	if p.Mode == domain.ModeBullets {
		fmt.Fprintf(&b, "Summarize the following text as exactly %d concise bullet points.\n", bulletCountOrDefault(p.BulletCount))
		b.WriteString("Start every bullet on its own line with \"- \". Do not number the bullets.\n")
	} else {
		b.WriteString("Write a single-paragraph abstract of the following text in 100 to 150 words.\n")
	}
	b.WriteString("Use only facts stated in the text. Never introduce numbers that do not appear in it.\n")
	b.WriteString("Respond with the summary only.\n\n")
	fmt.Fprintf(&b, "Text:\n%s", p.Text)
	return b.String()
}
