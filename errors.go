package termdraw

import "errors"

var (
	// ErrNotFound is returned when a local file does not exist or a remote
	// server answers 404
	ErrNotFound = errors.New("not found")
	// ErrInvalidSource is returned for a malformed remote URL
	ErrInvalidSource = errors.New("invalid source")
	// ErrInvalidSize is returned for a non-positive target size
	ErrInvalidSize = errors.New("invalid size")
	// ErrDecode is returned when image bytes cannot be decoded
	ErrDecode = errors.New("failed to decode image")
)
