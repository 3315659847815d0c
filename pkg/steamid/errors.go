package steamid

import "errors"

var (
	// ErrInvalidInputFormat means no detector pattern matched, or a matched
	// numeric field could not be parsed.
	ErrInvalidInputFormat = errors.New("invalid input format")

	// ErrArithmeticUnderflow means a 64-bit id lies below the individual account base.
	ErrArithmeticUnderflow = errors.New("steamid64 below individual account base")

	// ErrUnresolvableVanityURL means a vanity token could not be mapped to a 64-bit id.
	ErrUnresolvableVanityURL = errors.New("unresolvable vanity url")
)
