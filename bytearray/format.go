package bytearray

import (
	"strings"
	"sync"
)

// DefaultInspectSize is the number of bytes shown by Inspect when max is not positive.
const DefaultInspectSize = 32

var (
	tablesOnce  sync.Once
	hexTable    [256]string
	binaryTable [256]string
)

// tables returns the hex and binary digit lookup tables, building them on first use.
func tables() (*[256]string, *[256]string) {
	tablesOnce.Do(func() {
		const alphabet = "0123456789abcdef"
		for i := 0; i < 16; i++ {
			for j := 0; j < 16; j++ {
				hexTable[i*16+j] = string([]byte{alphabet[i], alphabet[j]})
			}
		}
		for i := range binaryTable {
			var digits [8]byte
			for bit := 0; bit < 8; bit++ {
				digits[bit] = '0' + byte(i>>(7-bit)&1)
			}
			binaryTable[i] = string(digits[:])
		}
	})
	return &hexTable, &binaryTable
}

// Inspect renders up to max committed bytes as hex, e.g. <Buffer 47 49 46 ...>.
func (b *ByteArray) Inspect(max int) string {
	if max <= 0 {
		max = DefaultInspectSize
	}
	hex, _ := tables()

	count := b.length
	if count > max {
		count = max
	}

	var sb strings.Builder
	sb.WriteString("<Buffer")
	for _, c := range b.data[:count] {
		sb.WriteByte(' ')
		sb.WriteString(hex[c])
	}
	if b.length > max {
		sb.WriteString(" ...")
	}
	sb.WriteByte('>')

	return sb.String()
}

// String renders every committed byte as 8 binary digits with no separator.
func (b *ByteArray) String() string {
	_, bin := tables()

	var sb strings.Builder
	sb.Grow(b.length * 8)
	for _, c := range b.data[:b.length] {
		sb.WriteString(bin[c])
	}

	return sb.String()
}
