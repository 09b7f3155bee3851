package edi

import (
	"fmt"
	"math"
	"time"
)

const (
	// EDI time runs 32 s behind TAI: EDI = TAI - 32s = UTC + UTCO.
	ediTAIOffset = 32

	posix2000 = 946684800

	// TISTRate is the STI time stamp resolution in ticks per second.
	TISTRate = 16384000
)

// EDITime converts the UTC instant t into the dsti UTCO and Seconds fields.
// taiUTCOffset is the current TAI-UTC difference in seconds.
func EDITime(t time.Time, taiUTCOffset int) (uint8, uint32, error) {
	utco := taiUTCOffset - ediTAIOffset
	if utco < 0 || utco > math.MaxUint8 {
		return 0, 0, fmt.Errorf("%w: tai-utc %d gives utco %d", ErrInvalidTimeOffset, taiUTCOffset, utco)
	}
	seconds := t.Unix() - posix2000 + int64(utco)
	if seconds < 0 || seconds > math.MaxUint32 {
		return 0, 0, fmt.Errorf("%w: %q seconds %d for %s", ErrOversizeField, NameDSTI, seconds, t.UTC().Format(time.RFC3339))
	}
	return uint8(utco), uint32(seconds), nil
}

// TSTAFromTIST keeps the 24 least significant bits of an STI TIST value.
func TSTAFromTIST(tist uint32) uint32 {
	return tist & 0xFFFFFF
}

// TISTFromDuration converts an offset within the current second into TIST ticks.
func TISTFromDuration(d time.Duration) uint32 {
	d %= time.Second
	if d < 0 {
		d += time.Second
	}
	return uint32(int64(d) * TISTRate / int64(time.Second))
}
