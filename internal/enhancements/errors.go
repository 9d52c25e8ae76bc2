package enhancements

import "errors"

var (
	// ErrNotFound indicates an entity was not found.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates validation or bad input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrForbidden indicates access is not allowed.
	ErrForbidden = errors.New("forbidden")

	// ErrNotReady indicates the generator has not produced the requested
	// artifact yet. Maps to 409, never 404: the enhancement exists.
	ErrNotReady = errors.New("enhancement not ready")

	// ErrIllegalTransition indicates a status change the state machine does
	// not allow. pending -> completed is the only legal transition.
	ErrIllegalTransition = errors.New("illegal status transition")

	// ErrRendererUnavailable indicates the PDF renderer is not configured or
	// failed to start.
	ErrRendererUnavailable = errors.New("renderer unavailable")
)
