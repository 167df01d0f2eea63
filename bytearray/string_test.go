package bytearray

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString_ParseEncoding(t *testing.T) {
	testCases := []struct {
		name string
		want Encoding
		ok   bool
	}{
		{"utf8", UTF8, true},
		{"UTF-8", UTF8, true},
		{"Utf8", UTF8, true},
		{"utf16", UTF16, true},
		{"UTF-16", UTF16, true},
		{"latin1", 0, false},
		{"utf_8", 0, false},
		{"", 0, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			enc, err := ParseEncoding(tc.name)
			if !tc.ok {
				assert.ErrorIs(t, err, ErrUnsupportedEncoding)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.want, enc)
		})
	}
}

func TestString_UTF8RoundTrip(t *testing.T) {
	assert := assert.New(t)

	const text = "ByteArray，你好！"

	b := New(0, 8)
	b.WriteUint16(uint16(len(text)), nil)
	n, err := b.WriteString(text, UTF8)
	assert.NoError(err)
	assert.Equal(len(text), n)
	assert.Equal(2+len(text), b.Offset())

	b.SetOffset(0)
	size, err := b.ReadUint16(nil)
	assert.NoError(err)
	s, err := b.ReadString(int(size), UTF8)
	assert.NoError(err)
	assert.Equal(text, s)
}

func TestString_UTF16(t *testing.T) {
	assert := assert.New(t)

	b := New(0, 8)
	n, err := b.WriteString("Hi你", UTF16)
	assert.NoError(err)
	assert.Equal(6, n)
	assert.Equal([]byte{'H', 0, 'i', 0, 0x60, 0x4f}, b.Bytes())

	b.SetOffset(0)
	s, err := b.ReadString(6, UTF16)
	assert.NoError(err)
	assert.Equal("Hi你", s)
}

func TestString_UnsupportedEncodingWritesNothing(t *testing.T) {
	assert := assert.New(t)

	b := New(0, 8)
	b.WriteUint8(1)
	b.SetOffset(0)

	_, err := b.WriteString("x", Encoding(42))
	assert.ErrorIs(err, ErrUnsupportedEncoding)
	_, err = b.ReadString(1, Encoding(42))
	assert.ErrorIs(err, ErrUnsupportedEncoding)
	assert.Equal(0, b.Offset())
	assert.Equal(1, b.Len())
}

func TestString_ReadPastEnd(t *testing.T) {
	b := New(0, 8)
	b.WriteString("abc", UTF8)
	b.SetOffset(1)

	_, err := b.ReadString(5, UTF8)
	assert.ErrorIs(t, err, ErrOutOfRange)

	s, err := b.ReadString(0, UTF8)
	assert.NoError(t, err)
	assert.Empty(t, s)

	_, err = b.ReadString(-1, UTF8)
	assert.ErrorIs(t, err, ErrOutOfRange)
	assert.Equal(t, 1, b.Offset())
}

func TestFormat_Inspect(t *testing.T) {
	assert := assert.New(t)

	b := New(0, 8)
	assert.Equal("<Buffer>", b.Inspect(0))

	b.Write([]byte{0x47, 0x49, 0x46, 0x00, 0xff})
	assert.Equal("<Buffer 47 49 46 00 ff>", b.Inspect(32))
	assert.Equal("<Buffer 47 49 ...>", b.Inspect(2))
	assert.Equal("<Buffer 47 49 46 00 ff>", b.Inspect(5))

	b.Write(make([]byte, 40))
	out := b.Inspect(0)
	assert.True(strings.HasSuffix(out, " 00 ...>"))
	assert.Equal(32, strings.Count(out, " ")-1)
}

func TestFormat_String(t *testing.T) {
	b := New(0, 8)
	assert.Equal(t, "", b.String())

	b.Write([]byte{0x00, 0x01, 0xa5, 0xff})
	assert.Equal(t, "00000000"+"00000001"+"10100101"+"11111111", b.String())
}
