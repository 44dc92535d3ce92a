package runtime

import "strings"

// invalidRequestError signals a bad mode/model selection for 400 mapping.
type invalidRequestError struct{ msg string }

func (e invalidRequestError) Error() string { return e.msg }

// ErrInvalidRequest constructs an invalidRequestError.
func ErrInvalidRequest(msg string) error { return invalidRequestError{msg: msg} }

// IsInvalidRequest reports whether err indicates a client error (return 400).
func IsInvalidRequest(err error) bool {
	_, ok := err.(invalidRequestError)
	return ok
}

// conflictError signals an operation that races the lifecycle (return 409),
// e.g. unload while a load is in flight.
type conflictError struct{ msg string }

func (e conflictError) Error() string { return e.msg }

// ErrConflict constructs a conflictError.
func ErrConflict(msg string) error { return conflictError{msg: msg} }

// IsConflict reports whether err indicates a lifecycle conflict.
func IsConflict(err error) bool {
	_, ok := err.(conflictError)
	return ok
}

// notReadyError signals synthesis attempted while the engine is not loaded.
// Carries the status observed at rejection time for the retry hint.
type notReadyError struct{ status Status }

func (e notReadyError) Error() string {
	if e.status == StatusLoading {
		return "model is currently loading; retry shortly"
	}
	return "model is not loaded"
}

// ErrNotReady constructs a notReadyError for the given status.
func ErrNotReady(status Status) error { return notReadyError{status: status} }

// IsNotReady reports whether err indicates the engine is not ready (503).
func IsNotReady(err error) bool {
	_, ok := err.(notReadyError)
	return ok
}

// dependencyUnavailableError signals a missing external dependency so the
// HTTP layer can return 503 Service Unavailable instead of 500.
type dependencyUnavailableError struct{ msg string }

func (e dependencyUnavailableError) Error() string { return e.msg }

// ErrDependencyUnavailable constructs a dependencyUnavailableError.
func ErrDependencyUnavailable(msg string) error { return dependencyUnavailableError{msg: msg} }

// IsDependencyUnavailable reports whether err indicates a missing/failed
// runtime dependency.
func IsDependencyUnavailable(err error) bool {
	_, ok := err.(dependencyUnavailableError)
	return ok
}

// loadError signals a fatal model load failure.
type loadError struct{ msg string }

func (e loadError) Error() string { return e.msg }

// ErrLoadFailed constructs a loadError.
func ErrLoadFailed(msg string) error { return loadError{msg: msg} }

// IsLoadFailed reports whether err indicates a fatal load failure (500).
func IsLoadFailed(err error) bool {
	_, ok := err.(loadError)
	return ok
}

// synthesisError signals a fatal synthesis failure after policy handling.
type synthesisError struct{ msg string }

func (e synthesisError) Error() string { return e.msg }

// ErrSynthesisFailed constructs a synthesisError.
func ErrSynthesisFailed(msg string) error { return synthesisError{msg: msg} }

// IsSynthesisFailed reports whether err indicates a fatal synthesis failure.
func IsSynthesisFailed(err error) bool {
	_, ok := err.(synthesisError)
	return ok
}

// placeholderWeightsError is the transient failure signature: the engine
// reports operating on placeholder/uninitialized parameters after automatic
// device placement. Adapters that can classify the condition should return
// this type.
type placeholderWeightsError struct{ msg string }

func (e placeholderWeightsError) Error() string { return e.msg }

// ErrPlaceholderWeights constructs a placeholderWeightsError.
func ErrPlaceholderWeights(msg string) error { return placeholderWeightsError{msg: msg} }

// IsPlaceholderWeights reports whether err carries the placeholder-weights
// signature.
func IsPlaceholderWeights(err error) bool {
	_, ok := err.(placeholderWeightsError)
	return ok
}

// defaultTransientPredicate detects the placeholder-weights signature. It
// prefers the structured error type and keeps a message heuristic for
// adapters that only surface opaque strings.
func defaultTransientPredicate(err error) bool {
	if err == nil {
		return false
	}
	if IsPlaceholderWeights(err) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "meta tensor") && strings.Contains(msg, "tensor.item()")
}
