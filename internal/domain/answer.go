package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// AnswerKind tells which JSON shape a CorrectAnswer was built from.
type AnswerKind int

const (
	AnswerNone AnswerKind = iota
	AnswerNumber
	AnswerBool
	AnswerString
)

func (k AnswerKind) String() string {
	switch k {
	case AnswerNumber:
		return "number"
	case AnswerBool:
		return "boolean"
	case AnswerString:
		return "string"
	default:
		return "none"
	}
}

// CorrectAnswer holds an option index (mcq), a boolean (true_false) or a
// text answer (short_answer). The kind is preserved exactly as received so
// that a string "true" is never mistaken for a boolean.
type CorrectAnswer struct {
	kind AnswerKind
	num  float64
	flag bool
	text string
}

func IndexAnswer(i int) CorrectAnswer      { return CorrectAnswer{kind: AnswerNumber, num: float64(i)} }
func NumberAnswer(f float64) CorrectAnswer { return CorrectAnswer{kind: AnswerNumber, num: f} }
func BoolAnswer(b bool) CorrectAnswer      { return CorrectAnswer{kind: AnswerBool, flag: b} }
func TextAnswer(s string) CorrectAnswer    { return CorrectAnswer{kind: AnswerString, text: s} }

func (a CorrectAnswer) Kind() AnswerKind { return a.kind }
func (a CorrectAnswer) IsZero() bool     { return a.kind == AnswerNone }

// Index returns the option index when the answer is an integral number.
func (a CorrectAnswer) Index() (int, bool) {
	if a.kind != AnswerNumber || a.num != math.Trunc(a.num) {
		return 0, false
	}
	return int(a.num), true
}

func (a CorrectAnswer) Bool() (bool, bool) {
	return a.flag, a.kind == AnswerBool
}

func (a CorrectAnswer) Text() (string, bool) {
	return a.text, a.kind == AnswerString
}

// String renders the answer the way the CSV export writes it.
func (a CorrectAnswer) String() string {
	switch a.kind {
	case AnswerNumber:
		if i, ok := a.Index(); ok {
			return fmt.Sprintf("%d", i)
		}
		return fmt.Sprintf("%g", a.num)
	case AnswerBool:
		if a.flag {
			return "true"
		}
		return "false"
	case AnswerString:
		return a.text
	default:
		return ""
	}
}

func (a CorrectAnswer) MarshalJSON() ([]byte, error) {
	switch a.kind {
	case AnswerNumber:
		return json.Marshal(a.num)
	case AnswerBool:
		return json.Marshal(a.flag)
	case AnswerString:
		return json.Marshal(a.text)
	default:
		return []byte("null"), nil
	}
}

func (a *CorrectAnswer) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*a = CorrectAnswer{}
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = TextAnswer(s)
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*a = BoolAnswer(b)
	default:
		var f float64
		if err := json.Unmarshal(data, &f); err != nil {
			return fmt.Errorf("correctAnswer must be a number, boolean or string: %w", err)
		}
		*a = NumberAnswer(f)
	}
	return nil
}

// MatchShortAnswer compares a response against a short-answer key,
// ignoring case and runs of whitespace.
func MatchShortAnswer(key, response string) bool {
	norm := func(s string) string {
		return strings.ToLower(strings.Join(strings.Fields(s), " "))
	}
	k := norm(key)
	return k != "" && k == norm(response)
}
