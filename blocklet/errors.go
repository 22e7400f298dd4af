package blocklet

import "errors"

var (
	// ErrInvalidMagic is returned when a blob does not end in a blocklet trailer.
	ErrInvalidMagic = errors.New("invalid blocklet magic")

	// ErrInvalidVersion is returned for footers written by an unknown version.
	ErrInvalidVersion = errors.New("unsupported blocklet version")

	// ErrCorrupt is returned when the footer or a chunk region is malformed.
	ErrCorrupt = errors.New("corrupt blocklet")

	// ErrUnknownCodec is returned when the trailer names a codec that is not
	// built in.
	ErrUnknownCodec = errors.New("unknown footer codec")

	// ErrChunkIndex is returned for a chunk index outside the blocklet.
	ErrChunkIndex = errors.New("chunk index out of range")

	// ErrColumnMismatch is returned by the writer when the data does not
	// match the segment layout.
	ErrColumnMismatch = errors.New("blocklet data does not match segment")
)
