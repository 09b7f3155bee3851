// Package sti builds one EDI AF packet per 24 ms STI frame from the TAG items
// in internal/protocol/edi.
package sti

import (
	"errors"
	"fmt"
	"time"

	"github.com/danmuck/stiedi/internal/observability"
	"github.com/danmuck/stiedi/internal/protocol/af"
	"github.com/danmuck/stiedi/internal/protocol/edi"
	"github.com/rs/zerolog"
)

// FrameDuration is the STI-D(LI) logical frame period.
const FrameDuration = 24 * time.Millisecond

var ErrPayloadCount = errors.New("sti: payload count does not match streams")

type Options struct {
	Protocol     string
	TAIUTCOffset int
	ATST         bool
	STIHeader    bool
	STAT         uint8
	SPID         uint16
	// PadTo aligns the AF payload to a multiple of PadTo bytes with a *dmy item.
	PadTo     int
	StartDFLC uint16
	StartSeq  uint16

	Clock  func() time.Time
	Logger zerolog.Logger
}

// Frame is one assembled STI frame.
type Frame struct {
	DFLC   uint16
	Seq    uint16
	Tags   []string
	Packet []byte
}

// Assembler owns the frame and AF counters of one EDI output.
// Not safe for concurrent use.
type Assembler struct {
	opts    Options
	streams []edi.TagSSm
	counter *edi.FrameCounter
	builder *af.Builder
	clock   func() time.Time
	log     zerolog.Logger
}

func NewAssembler(opts Options, streams []edi.TagSSm) *Assembler {
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Assembler{
		opts:    opts,
		streams: append([]edi.TagSSm(nil), streams...),
		counter: edi.NewFrameCounter(opts.StartDFLC),
		builder: af.NewBuilder(opts.StartSeq),
		clock:   clock,
		log:     opts.Logger.With().Str("component", "sti").Logger(),
	}
}

// Next assembles the next frame. payloads[i] is the ISTD of the i-th stream and
// is only read during the call. Counters advance only when a packet is produced.
func (a *Assembler) Next(payloads [][]byte) (Frame, error) {
	if len(payloads) != len(a.streams) {
		return Frame{}, fmt.Errorf("%w: got %d want %d", ErrPayloadCount, len(payloads), len(a.streams))
	}
	dflc := a.counter.Peek()

	dsti, err := a.dsti(dflc)
	if err != nil {
		return Frame{}, a.fail(dflc, "dsti", err)
	}

	items := []af.Item{
		{Label: edi.NamePTR, Tag: edi.TagStarPTR{Protocol: a.opts.Protocol}},
		{Label: edi.NameDSTI, Tag: dsti},
	}
	for i, s := range a.streams {
		items = append(items, af.Item{Label: fmt.Sprintf("ss%d", s.ID), Tag: s.Bind(payloads[i])})
	}

	frame := Frame{DFLC: dflc, Seq: a.builder.NextSeq()}
	record := func(label string, size int) {
		frame.Tags = append(frame.Tags, label)
		observability.RecordTag(label, size)
	}
	payload, err := af.Sequence(record, items...)
	if err != nil {
		return Frame{}, a.failItem(dflc, err)
	}

	if pad, ok := paddingFor(len(payload), a.opts.PadTo); ok {
		dmy, err := af.Sequence(record, af.Item{Label: edi.NameDMY, Tag: edi.NewTagStarDMY(pad)})
		if err != nil {
			return Frame{}, a.failItem(dflc, err)
		}
		payload = append(payload, dmy...)
	}

	pkt, err := a.builder.Build(payload)
	if err != nil {
		return Frame{}, a.fail(dflc, "af", err)
	}
	a.counter.Next()
	frame.Packet = pkt
	observability.RecordAFPacket(len(pkt))

	a.log.Debug().
		Uint16("dflc", frame.DFLC).
		Uint16("seq", frame.Seq).
		Strs("tags", frame.Tags).
		Int("bytes", len(pkt)).
		Msg("frame assembled")
	return frame, nil
}

func (a *Assembler) dsti(dflc uint16) (*edi.TagDSTI, error) {
	tag := edi.NewTagDSTI()
	tag.DFLC = dflc
	if a.opts.STIHeader {
		tag.STIHF = true
		tag.STAT = a.opts.STAT
		tag.SPID = a.opts.SPID
	}
	if a.opts.ATST {
		now := a.clock()
		if err := tag.SetEDITime(now, a.opts.TAIUTCOffset); err != nil {
			return nil, err
		}
		tag.ATSTF = true
		tag.TSTA = edi.TSTAFromTIST(edi.TISTFromDuration(time.Duration(now.Nanosecond())))
	}
	return tag, nil
}

func (a *Assembler) fail(dflc uint16, label string, err error) error {
	observability.RecordTagFailure(err)
	a.log.Error().Err(err).Uint16("dflc", dflc).Str("tag", label).Msg("frame assembly failed")
	return fmt.Errorf("sti: frame dflc=%d: %s: %w", dflc, label, err)
}

func (a *Assembler) failItem(dflc uint16, err error) error {
	var itemErr *af.ItemError
	if errors.As(err, &itemErr) {
		return a.fail(dflc, itemErr.Label, itemErr.Err)
	}
	return a.fail(dflc, "af", err)
}

// paddingFor returns the *dmy value length that brings n bytes of items to a
// multiple of align. ok is false when no padding item is needed.
func paddingFor(n, align int) (uint32, bool) {
	if align <= 0 || n%align == 0 {
		return 0, false
	}
	pad := (align - (n+edi.HeaderLen)%align) % align
	return uint32(pad), true
}
