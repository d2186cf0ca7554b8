// Package extract pulls a single JSON object out of free-form model output.
//
// Extraction runs in three stages: Normalize strips Markdown fences, a
// SpanLocator picks the brace-delimited substring, and Parse decodes it.
// Each stage is usable on its own.
package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/kaptinlin/jsonrepair"
)

const (
	fence = "```"

	DefaultDiagnosticLimit = 500
)

var (
	ErrNoJSONFound   = errors.New("no json object found in model output")
	ErrMalformedJSON = errors.New("malformed json in model output")

	errNotObject = errors.New("json value is not an object")
)

// Result is the decoded object. Field presence and types are not checked.
type Result map[string]any

// MalformedJSONError is returned when a span was located but did not parse.
// Raw holds a bounded prefix of the original model output.
type MalformedJSONError struct {
	Raw string
	Err error
}

func (e *MalformedJSONError) Error() string {
	return fmt.Sprintf("%v: %v", ErrMalformedJSON, e.Err)
}

func (e *MalformedJSONError) Unwrap() error { return e.Err }

func (e *MalformedJSONError) Is(target error) bool { return target == ErrMalformedJSON }

// SpanLocator returns the byte offsets of the first and last brace of the
// object to decode. ok is false when no span exists.
type SpanLocator func(text string) (start, end int, ok bool)

type Extractor struct {
	locate          SpanLocator
	repair          bool
	diagnosticLimit int
}

type Option func(*Extractor)

func WithLocator(l SpanLocator) Option {
	return func(e *Extractor) {
		if l != nil {
			e.locate = l
		}
	}
}

// WithRepair makes the extractor run jsonrepair over a span that fails to
// parse and retry once before giving up.
func WithRepair() Option {
	return func(e *Extractor) { e.repair = true }
}

func WithDiagnosticLimit(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.diagnosticLimit = n
		}
	}
}

func New(opts ...Option) *Extractor {
	e := &Extractor{
		locate:          GreedySpan,
		diagnosticLimit: DefaultDiagnosticLimit,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var defaultExtractor = New()

// Extract runs the default extractor: greedy span, no repair.
func Extract(raw string) (Result, error) {
	return defaultExtractor.Extract(raw)
}

func (e *Extractor) Extract(raw string) (Result, error) {
	text := Normalize(raw)

	start, end, ok := e.locate(text)
	if !ok {
		return nil, ErrNoJSONFound
	}
	span := text[start : end+1]

	result, err := Parse(span)
	if err == nil {
		return result, nil
	}
	if e.repair {
		if repaired, repairErr := jsonrepair.JSONRepair(span); repairErr == nil {
			if result, retryErr := Parse(repaired); retryErr == nil {
				return result, nil
			}
		}
	}
	return nil, &MalformedJSONError{Raw: Truncate(raw, e.diagnosticLimit), Err: err}
}

// Normalize trims whitespace and removes a leading ``` marker (with its
// optional language tag) and a trailing ``` marker. Text without fences is
// only trimmed.
func Normalize(raw string) string {
	clean := strings.TrimSpace(raw)

	if rest, found := strings.CutPrefix(clean, fence); found {
		rest = strings.TrimLeftFunc(rest, isTagRune)
		clean = strings.TrimLeftFunc(rest, unicode.IsSpace)
	}

	clean = strings.TrimSuffix(clean, fence)
	return strings.TrimSpace(clean)
}

func isTagRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-' || r == '+' || r == '.'
}

// GreedySpan picks the first '{' and the last '}'. Unmatched braces in the
// surrounding commentary will widen or corrupt the span.
func GreedySpan(text string) (int, int, bool) {
	start := strings.Index(text, "{")
	if start == -1 {
		return 0, 0, false
	}
	end := strings.LastIndex(text, "}")
	if end < start {
		return 0, 0, false
	}
	return start, end, true
}

// BalancedSpan scans from the first '{' and stops at the brace that closes
// it, skipping braces inside JSON strings.
func BalancedSpan(text string) (int, int, bool) {
	start := strings.Index(text, "{")
	if start == -1 {
		return 0, 0, false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return start, i, true
			}
		}
	}
	return 0, 0, false
}

// Parse decodes span into a Result. A JSON null is rejected.
func Parse(span string) (Result, error) {
	var result Result
	if err := json.Unmarshal([]byte(span), &result); err != nil {
		return nil, err
	}
	if result == nil {
		return nil, errNotObject
	}
	return result, nil
}

// Truncate returns at most limit runes of s.
func Truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
