package snapshot

import "errors"

var (
	// ErrBadMagic is returned when a stream does not start with the snapshot magic.
	ErrBadMagic = errors.New("snapshot: bad magic")
	// ErrCorrupt is returned for framing or checksum violations.
	ErrCorrupt = errors.New("snapshot: corrupt")
)
