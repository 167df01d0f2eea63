package bytearray

import "errors"

var (
	// ErrOutOfRange is returned when a read would go past the committed length.
	ErrOutOfRange = errors.New("bytearray: read out of range")
	// ErrUnsupportedEncoding is returned for string encodings other than UTF-8 and UTF-16.
	ErrUnsupportedEncoding = errors.New("bytearray: unsupported encoding")
)
