package edi

import (
	"fmt"
	"time"

	"github.com/danmuck/stiedi/internal/protocol/bits"
)

const (
	NameDSTI = "dsti"

	// DFLCModulo is the wrap point of the DAB frame counter.
	DFLCModulo = 5000
	// TSTANone marks a frame without a valid time stamp.
	TSTANone uint32 = 0xFFFFFF

	RFADLen = 9
)

// TagDSTI is the STI-D(LI) management item (ETSI TS 102 693, 5.1.2).
type TagDSTI struct {
	STIHF bool // STAT and SPID present
	ATSTF bool // UTCO, Seconds and TSTA present
	RFADF bool // RFAD present

	// DFLC is reduced modulo DFLCModulo on assembly.
	DFLC uint16

	STAT uint8
	SPID uint16

	UTCO uint8
	// Seconds counts SI seconds since 2000-01-01T00:00:00 UTC, leap seconds included.
	Seconds uint32
	// TSTA holds the 24 least significant bits of the STI TIST.
	TSTA uint32

	RFAD [RFADLen]byte
}

func NewTagDSTI() *TagDSTI {
	return &TagDSTI{TSTA: TSTANone}
}

// dstiLayout records which optional groups are present. Both the declared
// length and the emitted fields are derived from the same value.
type dstiLayout struct {
	sti  bool
	atst bool
	rfad bool
}

const (
	dstiHeaderBits = 1 + 1 + 1 + 5 + 8
	dstiSTIBits    = 8 + 16
	dstiATSTBits   = 8 + 32 + 24
	dstiRFADBits   = 8 * RFADLen
)

func (l dstiLayout) valueBits() int {
	n := dstiHeaderBits
	if l.sti {
		n += dstiSTIBits
	}
	if l.atst {
		n += dstiATSTBits
	}
	if l.rfad {
		n += dstiRFADBits
	}
	return n
}

func (t *TagDSTI) layout() dstiLayout {
	return dstiLayout{sti: t.STIHF, atst: t.ATSTF, rfad: t.RFADF}
}

func (t *TagDSTI) Assemble() ([]byte, error) {
	l := t.layout()
	if l.atst {
		if err := checkWidth(NameDSTI, "tsta", t.TSTA, 24); err != nil {
			return nil, err
		}
	}

	dflc := t.DFLC % DFLCModulo
	w := bits.NewWriter(l.valueBits() / 8)
	w.WriteBool(l.sti)
	w.WriteBool(l.atst)
	w.WriteBool(l.rfad)
	w.WriteBits(uint32(dflc/250), 5) // DFCTH
	w.WriteBits(uint32(dflc%250), 8) // DFCTL

	if l.sti {
		w.WriteBits(uint32(t.STAT), 8)
		w.WriteBits(uint32(t.SPID), 16)
	}
	if l.atst {
		w.WriteBits(uint32(t.UTCO), 8)
		w.WriteBits(t.Seconds, 32)
		w.WriteBits(t.TSTA, 24)
	}
	if l.rfad {
		w.WriteBytes(t.RFAD[:])
	}

	if w.Err() == nil && w.Len() != l.valueBits() {
		panic(fmt.Sprintf("edi: dsti emitted %d bits, layout declares %d", w.Len(), l.valueBits()))
	}
	return envelopeBits(NameDSTI, w)
}

// SetEDITime stores the EDI time fields for the UTC instant t. The tag is left
// unchanged on error.
func (t *TagDSTI) SetEDITime(tm time.Time, taiUTCOffset int) error {
	utco, seconds, err := EDITime(tm, taiUTCOffset)
	if err != nil {
		return err
	}
	t.UTCO = utco
	t.Seconds = seconds
	return nil
}

// FrameCounter yields consecutive DFLC values.
type FrameCounter struct {
	next uint16
}

func NewFrameCounter(start uint16) *FrameCounter {
	return &FrameCounter{next: start % DFLCModulo}
}

// Next returns the current value and advances, wrapping at DFLCModulo.
func (c *FrameCounter) Next() uint16 {
	v := c.next
	c.next = (c.next + 1) % DFLCModulo
	return v
}

func (c *FrameCounter) Peek() uint16 {
	return c.next
}
