package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeNetwork represents fetch failures (timeout, non-2xx, DNS)
	ErrorTypeNetwork ErrorType = "network"
	// ErrorTypeParsing represents pages that fetched but lacked the expected structure
	ErrorTypeParsing ErrorType = "parsing"
	// ErrorTypeIO represents CSV/log/report write failures
	ErrorTypeIO ErrorType = "io"
	// ErrorTypeCache represents cache-related errors
	ErrorTypeCache ErrorType = "cache"
	// ErrorTypePublisher represents publisher-related errors
	ErrorTypePublisher ErrorType = "publisher"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
)

// ScrapeError represents a pipeline-specific error
type ScrapeError struct {
	Type    ErrorType
	Stage   string
	Message string
	Err     error
	Time    time.Time
}

// Error implements the error interface
func (e *ScrapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Stage, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Stage, e.Message)
}

// Unwrap returns the underlying error
func (e *ScrapeError) Unwrap() error {
	return e.Err
}

// Recoverable reports whether the pipeline may substitute a mock record and
// continue. IO failures are fatal for the owning stage since there is no
// value in continuing without durable output.
func (e *ScrapeError) Recoverable() bool {
	switch e.Type {
	case ErrorTypeNetwork, ErrorTypeParsing:
		return true
	default:
		return false
	}
}

// New creates a new ScrapeError
func New(errType ErrorType, stage, message string, err error) *ScrapeError {
	return &ScrapeError{
		Type:    errType,
		Stage:   stage,
		Message: message,
		Err:     err,
		Time:    time.Now(),
	}
}

// NewNetwork creates a new network error
func NewNetwork(stage, message string, err error) *ScrapeError {
	return New(ErrorTypeNetwork, stage, message, err)
}

// NewParsing creates a new parsing error
func NewParsing(stage, message string, err error) *ScrapeError {
	return New(ErrorTypeParsing, stage, message, err)
}

// NewIO creates a new io error
func NewIO(stage, message string, err error) *ScrapeError {
	return New(ErrorTypeIO, stage, message, err)
}

// NewCache creates a new cache error
func NewCache(stage, message string, err error) *ScrapeError {
	return New(ErrorTypeCache, stage, message, err)
}

// NewPublisher creates a new publisher error
func NewPublisher(stage, message string, err error) *ScrapeError {
	return New(ErrorTypePublisher, stage, message, err)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *ScrapeError {
	return New(ErrorTypeConfiguration, "", message, err)
}

// IsType reports whether err is (or wraps) a ScrapeError of the given type.
func IsType(err error, errType ErrorType) bool {
	var se *ScrapeError
	if stderrors.As(err, &se) {
		return se.Type == errType
	}
	return false
}

// IsRecoverable reports whether err allows the per-item mock fallback.
func IsRecoverable(err error) bool {
	var se *ScrapeError
	if stderrors.As(err, &se) {
		return se.Recoverable()
	}
	return false
}
