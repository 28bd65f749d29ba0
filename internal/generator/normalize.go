package generator

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/studysphere/backend/internal/apperr"
	"github.com/studysphere/backend/internal/models"
)

var (
	ErrUnparseable      = apperr.New(apperr.KindUpstream, "AI response could not be parsed into questions.")
	ErrNoValidQuestions = apperr.New(apperr.KindUpstream, "AI did not return any valid questions. Please try again.")
)

// ParseError reports model output that was not JSON at all.
type ParseError struct {
	Snippet string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("model output is not valid JSON: %q", e.Snippet)
}

func (e *ParseError) Unwrap() error { return ErrUnparseable }

// NormalizeOptions bounds the normalized set. Zero means unbounded.
type NormalizeOptions struct {
	Count      int
	MaxOptions int
}

var enumeratorPrefix = regexp.MustCompile(`(?i)^\s*(Q(uestion)?\s*\d+\.?\s*:?\s*)`)

// correct-answer keys in the order they are consulted
var indexKeys = []string{"correctIndex", "answerIndex", "correctOptionIndex"}

// Normalize turns raw model output into canonical questions. Nothing about the
// shape of raw is trusted: each candidate is validated field by field and dropped
// if it cannot be repaired.
func Normalize(raw string, opts NormalizeOptions) ([]models.Question, error) {
	cleaned := extractJSON(stripCodeFences(raw))
	if !gjson.Valid(cleaned) {
		return nil, &ParseError{Snippet: snippet(raw)}
	}

	root := gjson.Parse(cleaned)
	var candidates []gjson.Result
	switch {
	case root.IsArray():
		candidates = root.Array()
	case root.IsObject():
		if qs := root.Get("questions"); qs.IsArray() {
			candidates = qs.Array()
		}
	}

	out := make([]models.Question, 0, len(candidates))
	for _, c := range candidates {
		q, ok := normalizeCandidate(c, opts.MaxOptions)
		if !ok {
			continue
		}
		out = append(out, q)
		if opts.Count > 0 && len(out) == opts.Count {
			break
		}
	}

	if len(out) == 0 {
		return nil, ErrNoValidQuestions
	}
	return out, nil
}

func normalizeCandidate(c gjson.Result, maxOptions int) (models.Question, bool) {
	if !c.IsObject() {
		return models.Question{}, false
	}

	qv := c.Get("question")
	if qv.Type != gjson.String {
		return models.Question{}, false
	}
	text := StripEnumerator(qv.String())
	if text == "" {
		return models.Question{}, false
	}

	ov := c.Get("options")
	if !ov.IsArray() {
		return models.Question{}, false
	}
	var options []string
	for _, o := range ov.Array() {
		s, ok := optionText(o)
		if !ok {
			return models.Question{}, false
		}
		options = append(options, s)
	}
	if len(options) < 2 {
		return models.Question{}, false
	}
	if maxOptions > 0 && len(options) > maxOptions {
		options = options[:maxOptions]
	}

	idx := 0
	for _, key := range indexKeys {
		if v := c.Get(key); v.Exists() {
			idx = coerceIndex(v, len(options))
			break
		}
	}

	return models.Question{Question: text, Options: options, CorrectOptionIndex: idx}, true
}

// StripEnumerator removes a leading "Q1.", "Question 2:" style label.
func StripEnumerator(s string) string {
	return strings.TrimSpace(enumeratorPrefix.ReplaceAllString(s, ""))
}

func optionText(o gjson.Result) (string, bool) {
	switch o.Type {
	case gjson.String:
		return o.String(), true
	case gjson.Number:
		return strconv.FormatFloat(o.Num, 'f', -1, 64), true
	case gjson.True, gjson.False, gjson.Null:
		return o.Raw, true
	default:
		return "", false
	}
}

func coerceIndex(v gjson.Result, n int) int {
	if v.Type != gjson.Number {
		return 0
	}
	f := v.Num
	if f != math.Trunc(f) || f < 0 || f >= float64(n) {
		return 0
	}
	return int(f)
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimSpace(s)
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSpace(s)
	}
	if strings.HasSuffix(s, "```") {
		s = strings.TrimSuffix(s, "```")
		s = strings.TrimSpace(s)
	}
	return s
}

// extractJSON trims chatter around a JSON document, e.g. "Here are your questions: [...]".
// Each opening bracket is tried in turn, so stray brackets in the chatter are skipped.
func extractJSON(s string) string {
	if gjson.Valid(s) {
		return s
	}
	for offset := 0; offset < len(s); {
		i := strings.IndexAny(s[offset:], "[{")
		if i < 0 {
			break
		}
		start := offset + i
		closer := byte(']')
		if s[start] == '{' {
			closer = '}'
		}
		if end := strings.LastIndexByte(s, closer); end > start {
			if candidate := s[start : end+1]; gjson.Valid(candidate) {
				return candidate
			}
		}
		offset = start + 1
	}
	return s
}

func snippet(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 120 {
		return s[:120] + "..."
	}
	return s
}
