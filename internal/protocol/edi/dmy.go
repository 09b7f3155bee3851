package edi

import "fmt"

const (
	NameDMY = "*dmy"

	// MaxDMYLen is the largest padding value, in bytes, whose bit length fits the
	// 24-bit length field.
	MaxDMYLen = MaxValueBits / 8
)

// TagStarDMY pads an AF packet (ETSI TS 102 821, 5.2.2.2).
type TagStarDMY struct {
	length uint32
}

// NewTagStarDMY returns a padding item whose value is length zero bytes.
func NewTagStarDMY(length uint32) TagStarDMY {
	return TagStarDMY{length: length}
}

func (t TagStarDMY) Assemble() ([]byte, error) {
	if uint64(t.length)*8 > MaxValueBits {
		return nil, fmt.Errorf("%w: %q padding of %d bytes, max %d", ErrLengthOverflow, NameDMY, t.length, MaxDMYLen)
	}
	return envelope(NameDMY, make([]byte, t.length), 8*int(t.length))
}
