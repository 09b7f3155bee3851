package bits

import (
	"errors"
	"fmt"
)

var ErrValueOverflow = errors.New("bits: value does not fit width")

// Writer packs values MSB first into a growing byte buffer.
// The first overflow is sticky: later writes are dropped and Err reports it.
type Writer struct {
	buf   []byte
	nbits int
	err   error
}

func NewWriter(sizeHint int) *Writer {
	if sizeHint < 0 {
		sizeHint = 0
	}
	return &Writer{buf: make([]byte, 0, sizeHint)}
}

// WriteBits appends the width low bits of v. Width must be 1..32.
func (w *Writer) WriteBits(v uint32, width int) {
	if width < 1 || width > 32 {
		panic(fmt.Sprintf("bits: invalid width %d", width))
	}
	if w.err != nil {
		return
	}
	if width < 32 && v>>uint(width) != 0 {
		w.err = fmt.Errorf("%w: %d in %d bits", ErrValueOverflow, v, width)
		return
	}
	for i := width - 1; i >= 0; i-- {
		w.writeBit(v>>uint(i)&1 == 1)
	}
}

func (w *Writer) WriteBool(b bool) {
	if w.err != nil {
		return
	}
	w.writeBit(b)
}

// WriteBytes appends p verbatim, shifted to the cursor when unaligned.
func (w *Writer) WriteBytes(p []byte) {
	if w.err != nil {
		return
	}
	if w.nbits%8 == 0 {
		w.buf = append(w.buf, p...)
		w.nbits += 8 * len(p)
		return
	}
	for _, b := range p {
		w.WriteBits(uint32(b), 8)
	}
}

func (w *Writer) writeBit(set bool) {
	off := w.nbits % 8
	if off == 0 {
		w.buf = append(w.buf, 0)
	}
	if set {
		w.buf[len(w.buf)-1] |= 0x80 >> uint(off)
	}
	w.nbits++
}

// Len returns the number of bits written so far, excluding padding.
func (w *Writer) Len() int {
	return w.nbits
}

func (w *Writer) Aligned() bool {
	return w.nbits%8 == 0
}

// Bytes returns the packed buffer. Unwritten bits of the last byte are zero.
func (w *Writer) Bytes() []byte {
	return w.buf
}

func (w *Writer) Err() error {
	return w.err
}
