package edi

import "fmt"

const (
	NamePTR = "*ptr"

	// PTRRevision is the protocol revision carried ahead of the identifier.
	PTRRevision uint16 = 0x0000
	// MaxProtocolLen is the width of the protocol type field in bytes.
	MaxProtocolLen = 4

	ProtocolDSTI = "DSTI"
)

// TagStarPTR identifies the protocol carried in the AF packet
// (ETSI TS 102 693, 5.1.1).
type TagStarPTR struct {
	Protocol string
}

func (t TagStarPTR) Assemble() ([]byte, error) {
	if len(t.Protocol) > MaxProtocolLen {
		return nil, fmt.Errorf("%w: %q protocol %q longer than %d bytes", ErrOversizeField, NamePTR, t.Protocol, MaxProtocolLen)
	}
	value := make([]byte, 0, 2+len(t.Protocol))
	value = append(value, byte(PTRRevision>>8), byte(PTRRevision))
	value = append(value, t.Protocol...)
	return envelope(NamePTR, value, 8*len(value))
}
