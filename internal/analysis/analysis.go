package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/VirajsNexus/HireVoid/internal/extract"
	"github.com/VirajsNexus/HireVoid/internal/llm"
	"github.com/rs/zerolog"
)

type Category string

const (
	CategoryMatch          Category = "match"
	CategoryResume         Category = "resume"
	CategoryJobDescription Category = "jd"
)

var ErrUnknownCategory = errors.New("unknown analysis category")

// MissingInputError carries the message shown to the client.
type MissingInputError struct {
	Message string
}

func (e *MissingInputError) Error() string { return e.Message }

type Inputs struct {
	Resume         string
	JobDescription string
}

type categorySpec struct {
	prompt       func(Inputs) string
	needsResume  bool
	needsJD      bool
	missingInput string
}

var categories = map[Category]categorySpec{
	CategoryMatch: {
		prompt:       matchPrompt,
		needsResume:  true,
		needsJD:      true,
		missingInput: "Both resume and job description are required",
	},
	CategoryResume: {
		prompt:       resumePrompt,
		needsResume:  true,
		missingInput: "Resume text is required",
	},
	CategoryJobDescription: {
		prompt:       jobDescriptionPrompt,
		needsJD:      true,
		missingInput: "Job description is required",
	},
}

func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := categories[c]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
	}
	return c, nil
}

func (in Inputs) trimmed() Inputs {
	return Inputs{
		Resume:         strings.TrimSpace(in.Resume),
		JobDescription: strings.TrimSpace(in.JobDescription),
	}
}

// Validate reports a *MissingInputError when the category's required text is blank.
func (in Inputs) Validate(c Category) error {
	spec, ok := categories[c]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, c)
	}
	in = in.trimmed()
	if (spec.needsResume && in.Resume == "") || (spec.needsJD && in.JobDescription == "") {
		return &MissingInputError{Message: spec.missingInput}
	}
	return nil
}

// Prompt fills the category's template with trimmed inputs.
func Prompt(c Category, in Inputs) (string, error) {
	if err := in.Validate(c); err != nil {
		return "", err
	}
	return categories[c].prompt(in.trimmed()), nil
}

type Analyzer struct {
	generator llm.Generator
	extractor *extract.Extractor
	log       zerolog.Logger
}

func NewAnalyzer(generator llm.Generator, extractor *extract.Extractor, log zerolog.Logger) *Analyzer {
	if extractor == nil {
		extractor = extract.New()
	}
	return &Analyzer{
		generator: generator,
		extractor: extractor,
		log:       log,
	}
}

// Analyze builds the category prompt, calls the model once and extracts the
// JSON object from its reply. It never retries.
func (a *Analyzer) Analyze(ctx context.Context, c Category, in Inputs) (extract.Result, error) {
	prompt, err := Prompt(c, in)
	if err != nil {
		return nil, err
	}

	raw, err := a.generator.Generate(ctx, prompt)
	if err != nil {
		observe(c, outcomeProviderError)
		a.log.Error().Err(err).Str("category", string(c)).Msg("model call failed")
		return nil, fmt.Errorf("generate %s analysis: %w", c, err)
	}

	return a.Extract(c, raw)
}

// Extract runs the extractor over a reply obtained elsewhere, recording the
// outcome and logging the diagnostic prefix on failure.
func (a *Analyzer) Extract(c Category, raw string) (extract.Result, error) {
	result, err := a.extractor.Extract(raw)
	if err != nil {
		var malformed *extract.MalformedJSONError
		switch {
		case errors.As(err, &malformed):
			observe(c, outcomeMalformedJSON)
			a.log.Error().Err(err).Str("category", string(c)).Str("raw", malformed.Raw).Msg("model reply is not valid json")
		default:
			observe(c, outcomeNoJSON)
			a.log.Error().Err(err).Str("category", string(c)).Str("raw", extract.Truncate(raw, extract.DefaultDiagnosticLimit)).Msg("model reply has no json object")
		}
		return nil, err
	}

	observe(c, outcomeOK)
	return result, nil
}
