package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/stiedi/internal/protocol/edi"
)

// MuxConfig drives STI frame generation for stiedi.
type MuxConfig struct {
	Protocol     string
	TAIUTCOffset int
	ATST         bool
	STIHeader    bool
	STAT         uint8
	SPID         uint16
	PadTo        int
	Frames       int
	StartDFLC    uint16
	StartSeq     uint16
	MetricsAddr  string
	Streams      []StreamConfig
}

// StreamConfig describes one ss<m> payload stream.
type StreamConfig struct {
	ID     uint16
	STID   uint16
	TID    uint8
	TIDExt uint8
	CRC    bool
	Size   int
}

// stiedi config.toml key mapping.
type fileConfig struct {
	Protocol     string             `toml:"protocol"`
	TAIUTCOffset int                `toml:"tai_utc_offset"`
	ATST         bool               `toml:"atst"`
	STIHeader    bool               `toml:"sti_header"`
	STAT         int                `toml:"stat"`
	SPID         int                `toml:"spid"`
	PadTo        int                `toml:"pad_to"`
	Frames       int                `toml:"frames"`
	StartDFLC    int                `toml:"start_dflc"`
	StartSeq     int                `toml:"start_seq"`
	MetricsAddr  string             `toml:"metrics_addr"`
	Streams      []fileStreamConfig `toml:"streams"`
}

type fileStreamConfig struct {
	ID     int  `toml:"id"`
	STID   int  `toml:"stid"`
	TID    int  `toml:"tid"`
	TIDExt int  `toml:"tidext"`
	CRC    bool `toml:"crc"`
	Size   int  `toml:"size"`
}

func DefaultMuxConfig() MuxConfig {
	return MuxConfig{
		Protocol:     "DSTI",
		TAIUTCOffset: 37,
		ATST:         true,
		Frames:       1,
	}
}

// LoadMuxConfig reads path and overlays the defined keys on DefaultMuxConfig.
func LoadMuxConfig(path string) (MuxConfig, error) {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return MuxConfig{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return MuxConfig{}, fmt.Errorf("config parse failed (%s): unknown key %s", path, undecoded[0])
	}
	if err := validateRanges(raw); err != nil {
		return MuxConfig{}, fmt.Errorf("config invalid (%s): %w", path, err)
	}

	cfg := DefaultMuxConfig()
	if meta.IsDefined("protocol") {
		cfg.Protocol = strings.TrimSpace(raw.Protocol)
	}
	if meta.IsDefined("tai_utc_offset") {
		cfg.TAIUTCOffset = raw.TAIUTCOffset
	}
	if meta.IsDefined("atst") {
		cfg.ATST = raw.ATST
	}
	if meta.IsDefined("sti_header") {
		cfg.STIHeader = raw.STIHeader
	}
	if meta.IsDefined("stat") {
		cfg.STAT = uint8(raw.STAT)
	}
	if meta.IsDefined("spid") {
		cfg.SPID = uint16(raw.SPID)
	}
	if meta.IsDefined("pad_to") {
		cfg.PadTo = raw.PadTo
	}
	if meta.IsDefined("frames") {
		cfg.Frames = raw.Frames
	}
	if meta.IsDefined("start_dflc") {
		cfg.StartDFLC = uint16(raw.StartDFLC)
	}
	if meta.IsDefined("start_seq") {
		cfg.StartSeq = uint16(raw.StartSeq)
	}
	if meta.IsDefined("metrics_addr") {
		cfg.MetricsAddr = strings.TrimSpace(raw.MetricsAddr)
	}
	for _, s := range raw.Streams {
		cfg.Streams = append(cfg.Streams, StreamConfig{
			ID:     uint16(s.ID),
			STID:   uint16(s.STID),
			TID:    uint8(s.TID),
			TIDExt: uint8(s.TIDExt),
			CRC:    s.CRC,
			Size:   s.Size,
		})
	}

	if err := ValidateMuxConfig(cfg); err != nil {
		return MuxConfig{}, fmt.Errorf("config invalid (%s): %w", path, err)
	}
	return cfg, nil
}

type rangeCheck struct {
	key      string
	v, limit int
}

// validateRanges rejects file values that would not survive narrowing.
func validateRanges(raw fileConfig) error {
	checks := []rangeCheck{
		{"stat", raw.STAT, 0xFF},
		{"spid", raw.SPID, 0xFFFF},
		{"start_dflc", raw.StartDFLC, 0xFFFF},
		{"start_seq", raw.StartSeq, 0xFFFF},
	}
	for i, s := range raw.Streams {
		prefix := fmt.Sprintf("streams[%d].", i)
		checks = append(checks,
			rangeCheck{prefix + "id", s.ID, 0xFFFF},
			rangeCheck{prefix + "stid", s.STID, 0xFFFF},
			rangeCheck{prefix + "tid", s.TID, 0xFF},
			rangeCheck{prefix + "tidext", s.TIDExt, 0xFF},
		)
	}
	for _, c := range checks {
		if c.v < 0 || c.v > c.limit {
			return fmt.Errorf("%s=%d out of range 0..%d", c.key, c.v, c.limit)
		}
	}
	return nil
}

func ValidateMuxConfig(cfg MuxConfig) error {
	if len(cfg.Protocol) > 4 {
		return fmt.Errorf("protocol %q longer than 4 bytes", cfg.Protocol)
	}
	if cfg.TAIUTCOffset < 32 || cfg.TAIUTCOffset > 32+255 {
		return fmt.Errorf("tai_utc_offset %d outside 32..287", cfg.TAIUTCOffset)
	}
	if cfg.Frames < 1 {
		return fmt.Errorf("frames must be at least 1")
	}
	if cfg.PadTo < 0 {
		return fmt.Errorf("pad_to must not be negative")
	}
	seen := make(map[uint16]bool, len(cfg.Streams))
	for i, s := range cfg.Streams {
		if err := ValidateStream(s); err != nil {
			return fmt.Errorf("streams[%d] invalid: %w", i, err)
		}
		if seen[s.ID] {
			return fmt.Errorf("streams[%d] duplicates id %d", i, s.ID)
		}
		seen[s.ID] = true
	}
	return nil
}

func ValidateStream(s StreamConfig) error {
	if s.STID > edi.MaxSTID {
		return fmt.Errorf("stid %d exceeds 12 bits", s.STID)
	}
	if s.TID > 0x0F {
		return fmt.Errorf("tid %d exceeds 4 bits", s.TID)
	}
	if s.TIDExt > 0x03 {
		return fmt.Errorf("tidext %d exceeds 2 bits", s.TIDExt)
	}
	if s.Size < 1 {
		return fmt.Errorf("size is required")
	}
	return nil
}
