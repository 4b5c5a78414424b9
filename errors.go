package dominator

import (
	"errors"
	"fmt"
)

// Sentinel errors for common evaluation error conditions.
// These errors can be used with errors.Is() for error checking.
var (
	// ErrNoReadyTiers indicates that no frozen tier in the suite had a
	// usable checkpoint or script at evaluation time.
	ErrNoReadyTiers = errors.New("no ready tiers configured")

	// ErrAllTiersExcluded indicates that every evaluated tier was excluded
	// from the rating computation (for example, all had zero games).
	ErrAllTiersExcluded = errors.New("all tiers excluded from rating computation")

	// ErrSimulatorFailure indicates the match simulator errored or timed
	// out mid-tier. The whole evaluation is aborted; partial tier results
	// are never recorded.
	ErrSimulatorFailure = errors.New("simulator failure")

	// ErrInvalidSuite indicates the evaluation suite configuration is
	// invalid or incomplete.
	ErrInvalidSuite = errors.New("invalid suite configuration")

	// ErrEvaluationNotFound indicates no evaluation record exists for the
	// requested lineage.
	ErrEvaluationNotFound = errors.New("evaluation not found")

	// ErrSimulatorUnavailable indicates no live simulator instance could be
	// discovered or probed for game dispatch.
	ErrSimulatorUnavailable = errors.New("simulator unavailable")
)

// Error kinds categorize errors by their type.
const (
	// KindConfiguration represents errors in suite or tier configuration.
	KindConfiguration = "configuration"

	// KindValidation represents errors related to input validation.
	KindValidation = "validation"

	// KindSimulation represents failures of the match simulator.
	KindSimulation = "simulation"

	// KindStorage represents errors from the evaluation store.
	KindStorage = "storage"

	// KindTimeout represents errors related to operation timeouts.
	KindTimeout = "timeout"

	// KindNotFound represents errors where a record was not found.
	KindNotFound = "not_found"

	// KindInternal represents internal engine errors.
	KindInternal = "internal"
)

// Error is a structured error type that wraps underlying errors with
// additional context about the operation that failed and the category
// of error.
//
// Error implements the error interface and supports error unwrapping,
// making it compatible with errors.Is() and errors.As().
//
// Example usage:
//
//	err := &dominator.Error{
//		Op:   "Engine.Run",
//		Kind: dominator.KindSimulation,
//		Err:  dominator.ErrSimulatorFailure,
//	}
type Error struct {
	// Op is the operation that failed (e.g., "Engine.Run", "Store.Commit").
	Op string

	// Kind categorizes the error (e.g., KindConfiguration, KindSimulation).
	Kind string

	// Err is the underlying error that caused this error.
	Err error

	// Context provides additional context about the error (optional).
	// This can include tier names, checkpoint steps, or other debugging
	// information.
	Context map[string]any
}

// Error implements the error interface, returning a formatted error message
// that includes the operation, kind, and underlying error.
func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("dominator: %s: %s", e.Op, e.Kind)
	}

	if len(e.Context) > 0 {
		return fmt.Sprintf("dominator: %s (%s): %v [context: %+v]", e.Op, e.Kind, e.Err, e.Context)
	}

	return fmt.Sprintf("dominator: %s (%s): %v", e.Op, e.Kind, e.Err)
}

// Unwrap returns the underlying error, allowing errors.Is() and errors.As()
// to work correctly with wrapped errors.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is implements error matching for Error, allowing comparison based on
// the underlying error or the Error itself.
func (e *Error) Is(target error) bool {
	if target == nil {
		return false
	}

	// Check if target is an Error with matching Kind
	if t, ok := target.(*Error); ok {
		if t.Kind != "" && e.Kind == t.Kind {
			if t.Op == "" || e.Op == t.Op {
				return true
			}
		}
	}

	// Delegate to underlying error
	return errors.Is(e.Err, target)
}

// WithContext returns a new Error with the provided context added.
// This is useful for adding debugging information to errors.
//
// Example:
//
//	err := dominator.NewSimulationError("Evaluator.RunTier", dominator.ErrSimulatorFailure)
//	err = err.WithContext(map[string]any{
//		"tier": "baseline",
//		"game": 17,
//	})
func (e *Error) WithContext(ctx map[string]any) *Error {
	newErr := *e
	if newErr.Context == nil {
		newErr.Context = make(map[string]any)
	}
	for k, v := range ctx {
		newErr.Context[k] = v
	}
	return &newErr
}

// NewConfigurationError creates a new Error with KindConfiguration.
func NewConfigurationError(op string, err error) *Error {
	return &Error{
		Op:   op,
		Kind: KindConfiguration,
		Err:  err,
	}
}

// NewValidationError creates a new Error with KindValidation.
func NewValidationError(op string, err error) *Error {
	return &Error{
		Op:   op,
		Kind: KindValidation,
		Err:  err,
	}
}

// NewSimulationError creates a new Error with KindSimulation.
func NewSimulationError(op string, err error) *Error {
	return &Error{
		Op:   op,
		Kind: KindSimulation,
		Err:  err,
	}
}

// NewStorageError creates a new Error with KindStorage.
func NewStorageError(op string, err error) *Error {
	return &Error{
		Op:   op,
		Kind: KindStorage,
		Err:  err,
	}
}

// NewTimeoutError creates a new Error with KindTimeout.
func NewTimeoutError(op string, err error) *Error {
	return &Error{
		Op:   op,
		Kind: KindTimeout,
		Err:  err,
	}
}

// NewNotFoundError creates a new Error with KindNotFound.
func NewNotFoundError(op string, err error) *Error {
	return &Error{
		Op:   op,
		Kind: KindNotFound,
		Err:  err,
	}
}

// NewInternalError creates a new Error with KindInternal.
func NewInternalError(op string, err error) *Error {
	return &Error{
		Op:   op,
		Kind: KindInternal,
		Err:  err,
	}
}
