package bytearray

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
)

// Encoding selects the character encoding used by the string operations.
type Encoding int

// Supported string encodings.
const (
	UTF8 Encoding = iota
	UTF16
)

func (e Encoding) String() string {
	switch e {
	case UTF8:
		return "UTF-8"
	case UTF16:
		return "UTF-16"
	}
	return fmt.Sprintf("Encoding(%d)", int(e))
}

// ParseEncoding converts an encoding name into an Encoding.
// The name is case insensitive and may be hyphenated, e.g. "utf8" or "UTF-16".
func ParseEncoding(name string) (Encoding, error) {
	switch strings.ToUpper(name) {
	case "UTF8", "UTF-8":
		return UTF8, nil
	case "UTF16", "UTF-16":
		return UTF16, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedEncoding, name)
}

// codec returns the x/text encoding backing e. UTF-16 is little-endian without BOM.
func (e Encoding) codec() (encoding.Encoding, error) {
	switch e {
	case UTF8:
		return unicode.UTF8, nil
	case UTF16:
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM), nil
	}
	return nil, fmt.Errorf("%w: %v", ErrUnsupportedEncoding, e)
}

// WriteString encodes s and writes it at the cursor.
// It returns the number of bytes written.
func (b *ByteArray) WriteString(s string, enc Encoding) (int, error) {
	codec, err := enc.codec()
	if err != nil {
		return 0, err
	}
	data, err := codec.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return 0, fmt.Errorf("bytearray: cannot encode string as %v: %w", enc, err)
	}

	return b.Write(data)
}

// ReadString reads n bytes from the cursor and decodes them.
// A negative n fails with ErrOutOfRange, like ReadBytes.
func (b *ByteArray) ReadString(n int, enc Encoding) (string, error) {
	codec, err := enc.codec()
	if err != nil {
		return "", err
	}
	if n == 0 {
		return "", nil
	}
	span, err := b.next(n)
	if err != nil {
		return "", err
	}
	data, err := codec.NewDecoder().Bytes(span)
	if err != nil {
		return "", fmt.Errorf("bytearray: cannot decode %v string: %w", enc, err)
	}

	return string(data), nil
}
