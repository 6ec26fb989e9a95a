package scango

import "errors"

var (
	// ErrNilGraph is returned by New when no graph is provided.
	ErrNilGraph = errors.New("scango: graph must not be nil")

	// ErrInvalidMagic is returned when snapshot data does not start with the
	// scango magic number.
	ErrInvalidMagic = errors.New("scango: invalid snapshot magic number")

	// ErrInvalidVersion is returned when a snapshot was written by an
	// unsupported format version.
	ErrInvalidVersion = errors.New("scango: unsupported snapshot version")

	// ErrChecksumMismatch is returned when snapshot data fails checksum
	// verification.
	ErrChecksumMismatch = errors.New("scango: snapshot checksum mismatch")

	// ErrInvalidCompression is returned when a snapshot names an unknown
	// compression algorithm.
	ErrInvalidCompression = errors.New("scango: unknown snapshot compression")
)
