// Package errs defines the sentinel errors returned across the e8z pipeline.
//
// The pipeline's exported functions return these sentinels, typically
// wrapped with fmt.Errorf("%w: ...") to add context while preserving
// errors.Is matchability. Package envelope returns its codecs' own errors,
// which package container wraps in one of these sentinels. No panics cross package boundaries except for programmer
// errors (invalid internal slice bounds), mirroring the teacher's
// internal/pool.ByteBuffer convention.
package errs

import "errors"

var (
	// ErrInvalidMagic is returned when the first two bytes of a container
	// do not match any known magic value.
	ErrInvalidMagic = errors.New("e8z: invalid container magic")

	// ErrTruncatedStream is returned when a reader yields fewer bytes than
	// a header or bit stream promised.
	ErrTruncatedStream = errors.New("e8z: truncated stream")

	// ErrChecksumMismatch is returned when the computed CRC32 differs from
	// the one stored in the container.
	ErrChecksumMismatch = errors.New("e8z: checksum mismatch")

	// ErrUnsupportedVersion is returned when the container magic is
	// recognized but its version or flags cannot be decoded by this
	// implementation.
	ErrUnsupportedVersion = errors.New("e8z: unsupported container version")

	// ErrSymbolTableCorrupt is returned when OOV or symbol-table records
	// fail to deserialize, or exceed their declared length.
	ErrSymbolTableCorrupt = errors.New("e8z: symbol table corrupt")

	// ErrRankOutOfRange is returned when a decoded rank is >= 240,
	// indicating stream corruption or predictor-state disagreement.
	ErrRankOutOfRange = errors.New("e8z: rank out of range")

	// ErrIoError wraps reader/writer failures encountered by the streaming
	// API.
	ErrIoError = errors.New("e8z: io error")

	// ErrInvalidOption is returned when a caller-supplied option value is
	// out of range.
	ErrInvalidOption = errors.New("e8z: invalid option")
)
