package copyframe

import "errors"

var (
	// ErrBadSignature indicates the frame does not start with the PGCOPY signature.
	ErrBadSignature = errors.New("bad copy signature")
	// ErrTruncated indicates the frame ended in the middle of a header, tuple, or trailer.
	ErrTruncated = errors.New("truncated copy frame")
	// ErrFieldCount indicates a tuple with a field count other than one.
	ErrFieldCount = errors.New("unexpected field count")
	// ErrNullField indicates a tuple carrying a NULL field.
	ErrNullField = errors.New("null field in key tuple")
	// ErrTrailingData indicates bytes after the end-of-data trailer.
	ErrTrailingData = errors.New("data after copy trailer")
)
