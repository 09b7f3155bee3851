package edi

import (
	"fmt"

	"github.com/danmuck/stiedi/internal/protocol/bits"
)

const (
	// NamePrefixSS precedes the 16-bit stream number in ss<m> names.
	NamePrefixSS = "ss"

	// SSTC: RFA(2) TID(4) TIDEXT(2) CRCSTF(1) reserved(3) STID(12).
	ssHeaderBits = 2 + 4 + 2 + 1 + 3 + 12

	// MaxSTID is the largest stream identifier the 12-bit STID field holds.
	MaxSTID = 1<<12 - 1
)

// TagSSm carries one STI-D payload stream (ETSI TS 102 693, 5.1.4).
// The ISTD payload is not stored; it is lent to Assemble or Bind.
type TagSSm struct {
	RFA    uint8 // reserved, zero
	TID    uint8 // 0: MSC sub-channel (EN 300 797, 5.4.1.1)
	TIDExt uint8 // 0: MSC audio stream (EN 300 797, 5.4.1.3)
	CRCSTF bool
	STID   uint16

	// ID selects the tag name ss<ID>.
	ID uint16
}

func (t TagSSm) Name() string {
	return string([]byte{NamePrefixSS[0], NamePrefixSS[1], byte(t.ID >> 8), byte(t.ID)})
}

// Assemble frames istd behind the stream header. istd is read only during the call.
func (t TagSSm) Assemble(istd []byte) ([]byte, error) {
	name := t.Name()
	if len(istd) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrMissingPayload, name)
	}
	if err := t.validate(name); err != nil {
		return nil, err
	}

	w := bits.NewWriter(ssHeaderBits/8 + len(istd))
	w.WriteBits(uint32(t.RFA), 2)
	w.WriteBits(uint32(t.TID), 4)
	w.WriteBits(uint32(t.TIDExt), 2)
	w.WriteBool(t.CRCSTF)
	w.WriteBits(0, 3)
	w.WriteBits(uint32(t.STID), 12)
	w.WriteBytes(istd)
	return envelopeBits(name, w)
}

// Bind returns a TagItem that assembles t with istd. istd must stay unchanged
// until that item has been assembled.
func (t TagSSm) Bind(istd []byte) TagItem {
	return TagFunc(func() ([]byte, error) {
		return t.Assemble(istd)
	})
}

func (t TagSSm) validate(name string) error {
	if t.RFA != 0 {
		return fmt.Errorf("%w: %q rfa=%d must be zero", ErrOversizeField, name, t.RFA)
	}
	if err := checkWidth(name, "tid", uint32(t.TID), 4); err != nil {
		return err
	}
	if err := checkWidth(name, "tidext", uint32(t.TIDExt), 2); err != nil {
		return err
	}
	return checkWidth(name, "stid", uint32(t.STID), 12)
}
