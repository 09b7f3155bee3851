// Package af sequences TAG Items into EDI AF packets (ETSI TS 102 821, 6).
package af

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/danmuck/stiedi/internal/protocol/edi"
	"github.com/howeyc/crc16"
)

const (
	HeaderLen = 10
	CRCLen    = 2

	Sync = "AF"
	// PTTag marks a payload made of TAG Items.
	PTTag byte = 'T'

	// AR: CRC present, major revision 1, minor revision 0.
	ARDefault byte = 1<<7 | 1<<4

	// CRCResidue is the checksum of a complete packet including its CRC.
	CRCResidue uint16 = 0x1D0F
)

var (
	ErrPayloadTooLarge = errors.New("af: payload too large")
	ErrNoItems         = errors.New("af: no tag items")
)

// Encode wraps an already sequenced TAG payload in an AF packet.
func Encode(seq uint16, payload []byte) ([]byte, error) {
	if uint64(len(payload)) > math.MaxUint32 {
		return nil, ErrPayloadTooLarge
	}
	buf := make([]byte, HeaderLen, HeaderLen+len(payload)+CRCLen)
	copy(buf[0:2], Sync)
	binary.BigEndian.PutUint32(buf[2:6], uint32(len(payload)))
	binary.BigEndian.PutUint16(buf[6:8], seq)
	buf[8] = ARDefault
	buf[9] = PTTag
	buf = append(buf, payload...)
	crc := crc16.ChecksumCCITTFalse(buf) ^ 0xFFFF
	return binary.BigEndian.AppendUint16(buf, crc), nil
}

// Item is a TAG item together with the label it is reported under.
type Item struct {
	Label string
	Tag   edi.TagItem
}

// ItemError names the item that stopped a sequence.
type ItemError struct {
	Label string
	Err   error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("af: item %s: %v", e.Label, e.Err)
}

func (e *ItemError) Unwrap() error {
	return e.Err
}

// Sequence assembles items in order and concatenates them. observe, when not
// nil, is called for every item once its bytes are in the payload.
func Sequence(observe func(label string, size int), items ...Item) ([]byte, error) {
	if len(items) == 0 {
		return nil, ErrNoItems
	}
	var payload []byte
	for _, it := range items {
		b, err := it.Tag.Assemble()
		if err != nil {
			return nil, &ItemError{Label: it.Label, Err: err}
		}
		payload = append(payload, b...)
		if observe != nil {
			observe(it.Label, len(b))
		}
	}
	return payload, nil
}

// Builder numbers consecutive AF packets. Not safe for concurrent use.
type Builder struct {
	seq uint16
}

func NewBuilder(startSeq uint16) *Builder {
	return &Builder{seq: startSeq}
}

// Build wraps a sequenced payload in the next AF packet. The sequence number
// only advances when a packet is produced.
func (b *Builder) Build(payload []byte) ([]byte, error) {
	pkt, err := Encode(b.seq, payload)
	if err != nil {
		return nil, err
	}
	b.seq++
	return pkt, nil
}

// NextSeq returns the sequence number of the next packet.
func (b *Builder) NextSeq() uint16 {
	return b.seq
}
