package edi

import (
	"fmt"

	"github.com/danmuck/stiedi/internal/protocol/bits"
)

const (
	NameLen   = 4
	LengthLen = 3
	HeaderLen = NameLen + LengthLen

	// MaxValueBits is the largest value length the 24-bit length field can carry.
	MaxValueBits = 1<<24 - 1
)

// TagItem is anything that can produce a complete TAG Item byte sequence.
type TagItem interface {
	Assemble() ([]byte, error)
}

// TagFunc adapts a function to TagItem.
type TagFunc func() ([]byte, error)

func (f TagFunc) Assemble() ([]byte, error) {
	return f()
}

// envelope frames a value carrying valueBits significant bits behind name.
// value must already be zero-padded to a byte boundary.
func envelope(name string, value []byte, valueBits int) ([]byte, error) {
	if len(name) != NameLen {
		panic(fmt.Sprintf("edi: tag name %q is not %d bytes", name, NameLen))
	}
	if valueBits > MaxValueBits {
		return nil, fmt.Errorf("%w: %q value is %d bits, max %d", ErrLengthOverflow, name, valueBits, MaxValueBits)
	}
	out := make([]byte, HeaderLen, HeaderLen+len(value))
	copy(out, name)
	out[4] = byte(valueBits >> 16)
	out[5] = byte(valueBits >> 8)
	out[6] = byte(valueBits)
	return append(out, value...), nil
}

func envelopeBits(name string, w *bits.Writer) ([]byte, error) {
	if err := w.Err(); err != nil {
		return nil, fmt.Errorf("%q: %w: %w", name, ErrOversizeField, err)
	}
	return envelope(name, w.Bytes(), w.Len())
}

func checkWidth(name, field string, v uint32, width int) error {
	if width < 32 && v>>uint(width) != 0 {
		return fmt.Errorf("%w: %q %s=%d exceeds %d bits", ErrOversizeField, name, field, v, width)
	}
	return nil
}
