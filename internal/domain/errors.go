package domain

import (
	"errors"
	"time"
)

var (
	ErrMissingAPIKey   = errors.New("google_custom_search_api_key is required")
	ErrMissingEngineID = errors.New("google_custom_search_engine_id is required")
)

var (
	ErrCredentialsNotFound = errors.New("credentials not found")
	ErrEmptyUserID         = errors.New("empty user id")
	ErrRateLimited         = errors.New("too many requests")
)

var (
	ErrEmptyQuery        = errors.New("empty query")
	ErrInvalidNumResults = errors.New("num_results must be a positive integer")
)

// CredentialValidationError is what the provider reports when the check search
// fails. The cause is never classified.
type CredentialValidationError struct {
	Cause error
}

func NewCredentialValidationError(cause error) *CredentialValidationError {
	return &CredentialValidationError{Cause: cause}
}

func (e *CredentialValidationError) Error() string {
	if e.Cause == nil {
		return "credential validation failed"
	}
	return e.Cause.Error()
}

func (e *CredentialValidationError) Unwrap() error {
	return e.Cause
}

func IsCredentialValidationError(err error) bool {
	var cve *CredentialValidationError
	return errors.As(err, &cve)
}

// RateLimitError - лимит вызовов пользователя исчерпан до ResetAt.
// errors.Is(err, ErrRateLimited) для нее true.
type RateLimitError struct {
	ResetAt time.Time
}

func (e *RateLimitError) Error() string {
	return ErrRateLimited.Error()
}

func (e *RateLimitError) Unwrap() error {
	return ErrRateLimited
}

// RetryAfter округляет ожидание вверх до секунды, минимум 1s.
func (e *RateLimitError) RetryAfter(now time.Time) time.Duration {
	d := e.ResetAt.Sub(now)
	if d <= 0 {
		return time.Second
	}
	return (d + time.Second - 1).Truncate(time.Second)
}
