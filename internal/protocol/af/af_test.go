package af

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/danmuck/stiedi/internal/protocol/edi"
	"github.com/howeyc/crc16"
)

func TestEncodeHeaderAndCRC(t *testing.T) {
	payload := []byte{1, 2, 3, 4, 5}
	pkt, err := Encode(0x0102, payload)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(pkt) != HeaderLen+len(payload)+CRCLen {
		t.Fatalf("unexpected packet length %d", len(pkt))
	}
	wantHeader := []byte{'A', 'F', 0, 0, 0, 5, 0x01, 0x02, 0x90, 'T'}
	if !bytes.Equal(pkt[:HeaderLen], wantHeader) {
		t.Fatalf("header %X want %X", pkt[:HeaderLen], wantHeader)
	}
	if !bytes.Equal(pkt[HeaderLen:HeaderLen+len(payload)], payload) {
		t.Fatalf("payload not copied verbatim")
	}
	if got := crc16.ChecksumCCITTFalse(pkt); got != CRCResidue {
		t.Fatalf("crc residue %#04x want %#04x", got, CRCResidue)
	}
	crc := binary.BigEndian.Uint16(pkt[len(pkt)-CRCLen:])
	if crc != crc16.ChecksumCCITTFalse(pkt[:len(pkt)-CRCLen])^0xFFFF {
		t.Fatalf("crc %#04x is not the inverted ccitt checksum", crc)
	}
}

func TestSequenceConcatenatesAndObserves(t *testing.T) {
	ptr := edi.TagStarPTR{Protocol: edi.ProtocolDSTI}
	dmy := edi.NewTagStarDMY(2)

	var labels []string
	var sizes []int
	payload, err := Sequence(func(label string, size int) {
		labels = append(labels, label)
		sizes = append(sizes, size)
	}, Item{Label: "ptr", Tag: ptr}, Item{Label: "pad", Tag: dmy})
	if err != nil {
		t.Fatalf("sequence: %v", err)
	}
	ptrBytes, _ := ptr.Assemble()
	dmyBytes, _ := dmy.Assemble()
	want := append(append([]byte{}, ptrBytes...), dmyBytes...)
	if !bytes.Equal(payload, want) {
		t.Fatalf("payload %X want %X", payload, want)
	}
	if len(labels) != 2 || labels[0] != "ptr" || labels[1] != "pad" {
		t.Fatalf("observed labels %v", labels)
	}
	if sizes[0] != len(ptrBytes) || sizes[1] != len(dmyBytes) {
		t.Fatalf("observed sizes %v", sizes)
	}
}

func TestSequenceNamesFailedItem(t *testing.T) {
	observed := 0
	_, err := Sequence(func(string, int) { observed++ },
		Item{Label: "ptr", Tag: edi.TagStarPTR{Protocol: edi.ProtocolDSTI}},
		Item{Label: "ss7", Tag: edi.TagSSm{ID: 7}.Bind(nil)},
		Item{Label: "pad", Tag: edi.NewTagStarDMY(1)},
	)
	if !errors.Is(err, edi.ErrMissingPayload) {
		t.Fatalf("expected ErrMissingPayload, got %v", err)
	}
	var itemErr *ItemError
	if !errors.As(err, &itemErr) || itemErr.Label != "ss7" {
		t.Fatalf("expected ItemError for ss7, got %v", err)
	}
	if observed != 1 {
		t.Fatalf("observed %d items before failure, want 1", observed)
	}
	if _, err := Sequence(nil); !errors.Is(err, ErrNoItems) {
		t.Fatalf("expected ErrNoItems, got %v", err)
	}
}

func TestBuilderNumbersPackets(t *testing.T) {
	b := NewBuilder(0xFFFF)
	pkt, err := b.Build([]byte{1, 2})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if !bytes.Equal(pkt[HeaderLen:len(pkt)-CRCLen], []byte{1, 2}) {
		t.Fatalf("payload %X", pkt[HeaderLen:len(pkt)-CRCLen])
	}
	if seq := binary.BigEndian.Uint16(pkt[6:8]); seq != 0xFFFF {
		t.Fatalf("seq %d", seq)
	}
	if b.NextSeq() != 0 {
		t.Fatalf("sequence did not wrap: %d", b.NextSeq())
	}
}
