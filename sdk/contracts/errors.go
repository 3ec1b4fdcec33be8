package contracts

import "errors"

// Error taxonomy of the routing layer. Platform I/O errors are not given a
// sentinel of their own: transports wrap and surface them unchanged, and
// retry policy belongs to the caller.
var (
	// ErrMalformedMessage indicates an invalid byte layout on encode.
	ErrMalformedMessage = errors.New("malformed MIDI message")
	// ErrUnsupportedDirection indicates an endpoint that lacks the
	// transmit or receive capability required for the requested coercion.
	ErrUnsupportedDirection = errors.New("endpoint does not support the requested direction")
	// ErrNotFound indicates that no device matched a name/capability query.
	ErrNotFound = errors.New("no matching MIDI device")
)
