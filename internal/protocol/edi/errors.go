package edi

import "errors"

var (
	ErrOversizeField     = errors.New("edi: field exceeds its width")
	ErrMissingPayload    = errors.New("edi: missing stream payload")
	ErrLengthOverflow    = errors.New("edi: tag value exceeds length field")
	ErrInvalidTimeOffset = errors.New("edi: invalid tai-utc offset")
)
