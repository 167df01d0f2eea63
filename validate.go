package neugif

import (
	"errors"
	"fmt"
	"math/bits"
)

// Limits of the encoder parameters.
const (
	MinPaletteSize = 2
	MaxPaletteSize = 256
	MaxColor       = 0xffffff
	MinRepeat      = -1
	MaxRepeat      = 0xffff
	MaxDimension   = 0xffff
)

// ErrRange is matched by every *RangeError through errors.Is.
var ErrRange = errors.New("value out of range")

// RangeError reports a parameter outside of its valid bounds.
type RangeError struct {
	Field string
	Value int
	Min   int
	Max   int
	// Reason, when set, replaces the default bounds message.
	Reason string
}

func (e *RangeError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid %s %d, %s", e.Field, e.Value, e.Reason)
	}
	return fmt.Sprintf("invalid %s %d, must be [%d - %d]", e.Field, e.Value, e.Min, e.Max)
}

// Is makes errors.Is(err, ErrRange) hold for range errors.
func (e *RangeError) Is(target error) bool {
	return target == ErrRange
}

// ValidatePalette checks that the palette length is a power of two
// between 2 and 256 and that every color fits in 24 bits.
func ValidatePalette(palette []uint32) error {
	n := len(palette)
	if n < MinPaletteSize || n > MaxPaletteSize || n&(n-1) != 0 {
		return &RangeError{
			Field:  "palette length",
			Value:  n,
			Min:    MinPaletteSize,
			Max:    MaxPaletteSize,
			Reason: fmt.Sprintf("must be a power of 2 in [%d - %d]", MinPaletteSize, MaxPaletteSize),
		}
	}
	for i, c := range palette {
		if c > MaxColor {
			return &RangeError{
				Field:  "color",
				Value:  int(c),
				Min:    0,
				Max:    MaxColor,
				Reason: fmt.Sprintf("at %d, must be [0x000000 - 0xffffff]", i),
			}
		}
	}
	return nil
}

// ValidateBackground checks that index addresses an entry of palette.
func ValidateBackground(index int, palette []uint32) error {
	max := len(palette) - 1
	if index < 0 || index > max {
		return &RangeError{Field: "background", Value: index, Min: 0, Max: max}
	}
	return nil
}

// ValidateRepeat checks the loop count: -1 plays once, 0 loops forever,
// any other value is the number of extra loops.
func ValidateRepeat(count int) error {
	if count < MinRepeat || count > MaxRepeat {
		return &RangeError{Field: "repeat", Value: count, Min: MinRepeat, Max: MaxRepeat}
	}
	return nil
}

func validateDimension(field string, v int) error {
	if v < 1 || v > MaxDimension {
		return &RangeError{Field: field, Value: v, Min: 1, Max: MaxDimension}
	}
	return nil
}

// ColorDepth returns the position of the highest set bit of n,
// which is log2(n) for the power of two palette sizes.
func ColorDepth(n int) int {
	if n <= 0 {
		return 0
	}
	return bits.Len(uint(n)) - 1
}
