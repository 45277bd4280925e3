package search

import (
	"errors"
	"fmt"
)

// Stage names the pipeline step an error came from.
type Stage string

const (
	StageInstant Stage = "instant"
	StageScrape  Stage = "scrape"
)

// ExtractStep names the point of the scrape extraction that failed.
type ExtractStep string

const (
	StepContainer ExtractStep = "result container"
	StepAnchor    ExtractStep = "result anchor"
	StepHref      ExtractStep = "anchor href"
	StepTitle     ExtractStep = "result title"
	StepSnippet   ExtractStep = "result snippet"
)

var (
	ErrResultNotFound  = errors.New("result container not found")
	ErrAnchorNotFound  = errors.New("result anchor not found")
	ErrHrefMissing     = errors.New("anchor has no href attribute")
	ErrTitleMissing    = errors.New("result title is empty")
	ErrSnippetNotFound = errors.New("result snippet not found")
)

var stepErrors = map[ExtractStep]error{
	StepContainer: ErrResultNotFound,
	StepAnchor:    ErrAnchorNotFound,
	StepHref:      ErrHrefMissing,
	StepTitle:     ErrTitleMissing,
	StepSnippet:   ErrSnippetNotFound,
}

// TransportError is a network failure or non-2xx response from either endpoint.
type TransportError struct {
	Stage      Stage
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s request failed (status %d): %v", e.Stage, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s request failed: %v", e.Stage, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// DecodeError means the instant-answer response body did not match the expected schema.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to parse instant answer: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// ExtractionError means an expected element or attribute was missing from the results page.
// Use errors.Is with the Err* sentinels to tell the steps apart.
type ExtractionError struct {
	Step   ExtractStep
	Detail string
}

func newExtractionError(step ExtractStep, detail string) *ExtractionError {
	return &ExtractionError{Step: step, Detail: detail}
}

func (e *ExtractionError) Error() string {
	msg := fmt.Sprintf("scrape extraction failed at %s: %v", e.Step, stepErrors[e.Step])
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	return msg
}

func (e *ExtractionError) Unwrap() error {
	return stepErrors[e.Step]
}

// IsTransportError reports whether err is or wraps a *TransportError.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
