package edi

import (
	"errors"
	"testing"
	"time"
)

func TestEDITime(t *testing.T) {
	tests := []struct {
		name    string
		at      time.Time
		offset  int
		utco    uint8
		seconds uint32
	}{
		{"epoch", time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC), 32, 0, 0},
		{"2024", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 37, 5, 757382405},
		{"subsecond dropped", time.Date(2024, 1, 1, 0, 0, 0, 999_000_000, time.UTC), 37, 5, 757382405},
		{"non-utc zone", time.Date(2024, 1, 1, 1, 0, 0, 0, time.FixedZone("CET", 3600)), 37, 5, 757382405},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			utco, seconds, err := EDITime(tt.at, tt.offset)
			if err != nil {
				t.Fatalf("EDITime: %v", err)
			}
			if utco != tt.utco || seconds != tt.seconds {
				t.Fatalf("got utco=%d seconds=%d want utco=%d seconds=%d", utco, seconds, tt.utco, tt.seconds)
			}
		})
	}
}

func TestEDITimeIsIdempotent(t *testing.T) {
	at := time.Date(2026, 10, 17, 12, 30, 0, 0, time.UTC)
	u1, s1, err1 := EDITime(at, 37)
	u2, s2, err2 := EDITime(at, 37)
	if err1 != nil || err2 != nil {
		t.Fatalf("EDITime: %v %v", err1, err2)
	}
	if u1 != u2 || s1 != s2 {
		t.Fatalf("results differ: (%d,%d) vs (%d,%d)", u1, s1, u2, s2)
	}
}

func TestEDITimeRejectsOffsets(t *testing.T) {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, offset := range []int{31, 0, -5, 32 + 256} {
		if _, _, err := EDITime(at, offset); !errors.Is(err, ErrInvalidTimeOffset) {
			t.Fatalf("offset %d: expected ErrInvalidTimeOffset, got %v", offset, err)
		}
	}
	if _, _, err := EDITime(at, 32+255); err != nil {
		t.Fatalf("utco 255 rejected: %v", err)
	}
}

func TestEDITimeRejectsUnrepresentableSeconds(t *testing.T) {
	before := time.Date(1999, 12, 31, 23, 59, 0, 0, time.UTC)
	if _, _, err := EDITime(before, 37); !errors.Is(err, ErrOversizeField) {
		t.Fatalf("expected ErrOversizeField, got %v", err)
	}
	after := time.Date(2137, 1, 1, 0, 0, 0, 0, time.UTC)
	if _, _, err := EDITime(after, 37); !errors.Is(err, ErrOversizeField) {
		t.Fatalf("expected ErrOversizeField, got %v", err)
	}
}

func TestSetEDITime(t *testing.T) {
	tag := NewTagDSTI()
	if err := tag.SetEDITime(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 37); err != nil {
		t.Fatalf("SetEDITime: %v", err)
	}
	if tag.UTCO != 5 || tag.Seconds != 757382405 {
		t.Fatalf("got utco=%d seconds=%d", tag.UTCO, tag.Seconds)
	}

	if err := tag.SetEDITime(time.Now(), 10); !errors.Is(err, ErrInvalidTimeOffset) {
		t.Fatalf("expected ErrInvalidTimeOffset, got %v", err)
	}
	if tag.UTCO != 5 || tag.Seconds != 757382405 {
		t.Fatalf("failed SetEDITime modified tag: utco=%d seconds=%d", tag.UTCO, tag.Seconds)
	}
}

func TestTISTConversions(t *testing.T) {
	if got := TISTFromDuration(500 * time.Millisecond); got != TISTRate/2 {
		t.Fatalf("500ms: got %d", got)
	}
	if got := TISTFromDuration(1500 * time.Millisecond); got != TISTRate/2 {
		t.Fatalf("1.5s not reduced to the second: got %d", got)
	}
	if got := TSTAFromTIST(0x12345678); got != 0x345678 {
		t.Fatalf("got %#x", got)
	}
}
