package services

import (
	"errors"
	"fmt"
)

// ErrorKind names a terminal outcome class for one analysis attempt. The
// kind is persisted verbatim into the audit log and returned to callers.
type ErrorKind string

const (
	ErrKindDocumentParse                ErrorKind = "document_parse"
	ErrKindUnknownPromptVersion         ErrorKind = "unknown_prompt_version"
	ErrKindRequestedProviderUnavailable ErrorKind = "requested_provider_unavailable"
	ErrKindNoProviderConfigured         ErrorKind = "no_provider_configured"
	ErrKindProviderCall                 ErrorKind = "provider_call_failed"
	ErrKindResponseValidation           ErrorKind = "response_validation"
	ErrKindAnalysisTimeout              ErrorKind = "analysis_timeout"
)

// AnalysisError is the structured error surfaced to callers. Only
// provider_call_failed and response_validation are eligible for fallback to
// the next candidate provider; every other kind terminates the run.
type AnalysisError struct {
	Kind        ErrorKind
	Provider    string
	RawResponse string
	Err         error
}

func (e *AnalysisError) Error() string {
	if e.Provider != "" {
		return fmt.Sprintf("[%s] %s: %v", e.Provider, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *AnalysisError) Unwrap() error {
	return e.Err
}

// Retryable reports whether a fallback to the next candidate provider may
// absorb this failure.
func (e *AnalysisError) Retryable() bool {
	return e.Kind == ErrKindProviderCall || e.Kind == ErrKindResponseValidation
}

// AsAnalysisError unwraps err into an *AnalysisError when the chain holds one.
func AsAnalysisError(err error) (*AnalysisError, bool) {
	var ae *AnalysisError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

func newDocumentParseError(err error) *AnalysisError {
	return &AnalysisError{Kind: ErrKindDocumentParse, Err: err}
}

func newUnknownPromptVersionError(version string) *AnalysisError {
	return &AnalysisError{
		Kind: ErrKindUnknownPromptVersion,
		Err:  fmt.Errorf("prompt version %q is not registered", version),
	}
}

func newProviderCallError(provider string, err error) *AnalysisError {
	return &AnalysisError{Kind: ErrKindProviderCall, Provider: provider, Err: err}
}

func newResponseValidationError(provider, rawResponse string, err error) *AnalysisError {
	return &AnalysisError{
		Kind:        ErrKindResponseValidation,
		Provider:    provider,
		RawResponse: rawResponse,
		Err:         err,
	}
}
