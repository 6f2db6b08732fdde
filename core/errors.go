package core

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a pipeline failure for transport mapping.
// Only the first three kinds ever cross the pipeline boundary as errors;
// provider and post-processing failures are absorbed into degraded results.
type ErrorKind string

const (
	// KindValidation covers missing/empty prompts and non-numeric parameters.
	// Mapped to HTTP 400. No fallback.
	KindValidation ErrorKind = "validation_error"

	// KindQuota covers admission-limiter rejections. Mapped to HTTP 429.
	KindQuota ErrorKind = "quota_exceeded"

	// KindModelConfig covers unknown model ids and missing credentials.
	// Mapped to HTTP 500: the deployment, not the provider, is broken.
	KindModelConfig ErrorKind = "model_not_configured"

	// KindProvider covers network, timeout and malformed-response failures
	// from a provider adapter. Never surfaced; resolved by placeholder.
	KindProvider ErrorKind = "provider_failure"

	// KindPostProcess covers image normalization failures. Never surfaced;
	// resolved by returning the unprocessed image.
	KindPostProcess ErrorKind = "post_processing_failure"

	// KindInternal covers unexpected failures. Mapped to HTTP 500.
	KindInternal ErrorKind = "internal_error"
)

// PipelineError is a classified error produced by the generation pipeline.
// The Kind drives the HTTP status and short code in the error response body.
type PipelineError struct {
	Kind    ErrorKind
	Message string
	Err     error // wrapped cause, may be nil
}

func (e *PipelineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// NewValidationError returns a PipelineError of kind KindValidation.
func NewValidationError(message string) *PipelineError {
	return &PipelineError{Kind: KindValidation, Message: message}
}

// NewQuotaError returns a PipelineError of kind KindQuota.
func NewQuotaError(message string) *PipelineError {
	return &PipelineError{Kind: KindQuota, Message: message}
}

// NewModelConfigError returns a PipelineError of kind KindModelConfig.
func NewModelConfigError(message string) *PipelineError {
	return &PipelineError{Kind: KindModelConfig, Message: message}
}

// WrapProviderError wraps an adapter failure. Callers absorb these into the
// placeholder fallback; they exist so the failure can be classified and logged.
func WrapProviderError(message string, err error) *PipelineError {
	return &PipelineError{Kind: KindProvider, Message: message, Err: err}
}

// AsPipelineError extracts a *PipelineError from an error chain.
func AsPipelineError(err error) (*PipelineError, bool) {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// KindOf returns the error kind of err, or KindInternal for unclassified errors.
func KindOf(err error) ErrorKind {
	if pe, ok := AsPipelineError(err); ok {
		return pe.Kind
	}
	return KindInternal
}
