package snapshot

import (
	"bytes"
	"fmt"
)

// Kind tags the in-memory shape of a Format and decides which diff algorithms are legal for it.
type Kind int

const (
	// KindText is a UTF-8 textual payload, compared line by line.
	KindText Kind = iota + 1

	// KindBinary is an opaque byte payload, such as an encoded image.
	KindBinary
)

const (
	kindTextName   = "text"
	kindBinaryName = "binary"
)

// String returns the persisted name of the kind.
func (k Kind) String() string {
	switch k {
	case KindText:
		return kindTextName
	case KindBinary:
		return kindBinaryName
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	return k == KindText || k == KindBinary
}

// ParseKind is the inverse of Kind.String.
func ParseKind(name string) (Kind, error) {
	switch name {
	case kindTextName:
		return KindText, nil
	case kindBinaryName:
		return KindBinary, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidKind, name)
	}
}

// Format is the canonical in-memory representation of a snapshot.
//
// The payload is copied on construction and on access, so a Format is immutable once produced.
// It should only be constructed with the supplied factory methods:
//   - TextFormat
//   - BinaryFormat
//   - NewFormat
type Format struct {
	kind          Kind
	payload       []byte
	fileExtension string
}

// TextFormat builds a textual Format.
func TextFormat(text string, fileExtension string) Format {
	return Format{
		kind:          KindText,
		payload:       []byte(text),
		fileExtension: fileExtension,
	}
}

// BinaryFormat builds a binary Format from a copy of payload.
func BinaryFormat(payload []byte, fileExtension string) Format {
	return Format{
		kind:          KindBinary,
		payload:       bytes.Clone(payload),
		fileExtension: fileExtension,
	}
}

// NewFormat builds a Format of the given kind, e.g. when it is read back from a store.
func NewFormat(kind Kind, payload []byte, fileExtension string) (Format, error) {
	if !kind.Valid() {
		return Format{}, ErrInvalidKind
	}

	return Format{
		kind:          kind,
		payload:       bytes.Clone(payload),
		fileExtension: fileExtension,
	}, nil
}

// Kind returns the format kind.
func (f Format) Kind() Kind {
	return f.kind
}

// FileExtension returns the extension used when the format is persisted.
func (f Format) FileExtension() string {
	return f.fileExtension
}

// Bytes returns a copy of the payload.
func (f Format) Bytes() []byte {
	return bytes.Clone(f.payload)
}

// Text returns the payload as a string.
func (f Format) Text() string {
	return string(f.payload)
}

// Len returns the payload size in bytes.
func (f Format) Len() int {
	return len(f.payload)
}

// IsZero reports whether f was never produced.
func (f Format) IsZero() bool {
	return f.kind == 0 && f.payload == nil
}

// Equal reports whether both formats have the same kind and byte-identical payloads.
func (f Format) Equal(other Format) bool {
	return f.kind == other.kind && bytes.Equal(f.payload, other.payload)
}
