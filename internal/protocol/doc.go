// Package protocol owns the EDI wire contract.
//
// Ownership boundary:
// - bits: MSB-first bit packing
// - edi: TAG Items for STI-D (*ptr, dsti, ss<m>, *dmy)
// - af: AF packet sequencing
//
// Canonical references (consult before changes):
// - ETSI TS 102 821 (EDI, TAG Items and AF packets)
// - ETSI TS 102 693 (STI-D over EDI)
// - EN 300 797 (STI)
package protocol
