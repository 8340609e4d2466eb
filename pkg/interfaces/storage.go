package interfaces

// PathResolver maps a recorded media path to a concrete on-disk location.
//
// The inventory records share-style paths (e.g. /volume1/video/show.mkv); the
// share may be mounted elsewhere on the machine running the service. Resolve
// returns the first candidate location that currently exists, or ok=false when
// the file cannot be found anywhere.
type PathResolver interface {
	Resolve(originalPath string) (resolved string, ok bool)
}

// Mover provides the filesystem primitives the deletion lifecycle needs.
// Implementations must treat Move as a blocking, non-cancellable operation.
type Mover interface {
	// Move relocates a file, falling back to copy+remove across devices
	Move(src, dst string) error

	// Remove permanently deletes a file
	Remove(path string) error

	// MkdirAll creates a directory and any missing parents
	MkdirAll(path string) error

	// Exists reports whether a path currently exists
	Exists(path string) bool
}
