package snapshot

import (
	"context"
)

// Store persists reference artifacts at slash-separated locations produced by ResolvePath.
//
// Read of a missing location is not an error: it returns found == false, which callers
// interpret as "needs recording". All other failures wrap ErrArtifactIO.
// Write creates intermediate containers as needed and overwrites existing artifacts.
type Store interface {
	Exists(ctx context.Context, location string) (bool, error)
	Read(ctx context.Context, location string, kind Kind, fileExtension string) (format Format, found bool, err error)
	Write(ctx context.Context, location string, format Format) error
}

// Remover is implemented by stores that can delete artifacts. Removing a missing artifact is not an error.
type Remover interface {
	Remove(ctx context.Context, location string) error
}

// FileLocator is implemented by stores whose artifacts are plain files, so external tools can open them.
type FileLocator interface {
	FilePath(location string) (string, error)
}

// Capability names what a subject can be snapshotted as, e.g. "dump" or "image".
type Capability string
