// Package errs defines sentinel error values shared across the simio packages.
//
// All errors are plain sentinel values so callers can match them with
// errors.Is. Errors wrapping lower-level storage failures are produced with
// fmt.Errorf("...: %w", err) at the call site instead.
package errs

import "errors"

// Format integration errors.
//
// A concrete format supplies its read primitives by implementing the
// capability interfaces in the handler package. When a pipeline needs a
// primitive the format does not provide, the read fails with one of these
// errors. They signal an integration defect in the format, not a data
// problem, and are never recovered from.
var (
	ErrUnimplementedIOIter               = errors.New("format does not implement fluid iteration (FluidIterator)")
	ErrUnimplementedReadParticleCoords   = errors.New("format does not implement particle coordinate reads (ParticleCoordReader)")
	ErrUnimplementedReadParticleDataFile = errors.New("format does not implement particle data file reads (ParticleFileReader)")
	ErrUnimplementedReadPrimitive        = errors.New("format does not implement single-object reads (PrimitiveReader)")
)

// Handler API misuse errors.
var (
	ErrDuplicateQueueEntry = errors.New("queue entry already exists for object and field")
	ErrDuplicateField      = errors.New("duplicate field in request")
	ErrHandlerNotFound     = errors.New("no handler registered for dataset type")
)

// Array and slicing errors.
var (
	ErrInvalidAxis    = errors.New("axis out of range")
	ErrInvalidCoord   = errors.New("slice coordinate out of range")
	ErrNotGridded     = errors.New("array is not three-dimensional grid data")
	ErrShapeMismatch  = errors.New("array shapes do not match")
	ErrInvalidShape   = errors.New("invalid array shape")
	ErrRowOutOfRange  = errors.New("row index out of range")
	ErrTrimOutOfRange = errors.New("trim length exceeds array length")
)

// Stream payload errors.
var (
	ErrInvalidPayloadHeader = errors.New("invalid payload header")
	ErrInvalidPayloadDtype  = errors.New("invalid payload element type")
	ErrTruncatedPayload     = errors.New("payload shorter than declared length")
	ErrUnknownField         = errors.New("field not present in dataset")
	ErrUnknownObject        = errors.New("object not present in dataset")
	ErrUnknownDataFile      = errors.New("data file not present in dataset")
)
