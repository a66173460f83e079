package task

import "errors"

var (
	// ErrInvalidParams marks parameter records outside the resource caps or
	// carrying non-finite floats.
	ErrInvalidParams = errors.New("invalid task parameters")
	// ErrBufferSize marks an encode/decode buffer whose length does not
	// match the fixed record layout.
	ErrBufferSize = errors.New("parameter buffer size mismatch")
	// ErrKindMismatch marks params handed to a kernel of a different kind.
	ErrKindMismatch = errors.New("params kind does not match kernel")
	// ErrRoundTrip marks a round-trip whose output differs from its input.
	ErrRoundTrip = errors.New("round-trip mismatch")
	// ErrBadHandle marks an ABI call with an unknown or zero handle.
	ErrBadHandle = errors.New("unknown allocation handle")
)
