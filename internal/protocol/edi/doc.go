// Package edi assembles ETSI TS 102 821 TAG Items for STI-D carried over EDI
// (ETSI TS 102 693).
//
// Ownership boundary:
// - TAG Item envelope (name, bit length, padded value)
// - *ptr, dsti, ss<m> and *dmy item layouts
// - EDI time fields (UTCO, seconds since 2000)
//
// Every Assemble call is a pure function of the item's fields. Items are plain
// values owned by the caller; do not assemble one item from several goroutines
// while it is being mutated.
package edi
