package tvc

// FilesystemManager abstracts the filesystem operations the service needs,
// so path handling stays in one place and copy behavior is testable.
type FilesystemManager interface {
	// Resolve validates a raw path and returns a Path object.
	// It resolves the path to an absolute path, stats it, and validates
	// it's a regular file or directory (not a symlink, device, etc.).
	Resolve(rawPath string) (*Path, error)

	// CopyTree copies every top-level entry of src into dst recursively,
	// creating dst if needed. Entries for which exclude returns true are
	// skipped at the top level only; nil means copy everything. File
	// modification times are preserved.
	CopyTree(src, dst string, exclude func(name string) bool) error

	// ClearTree removes every top-level entry of root, recursively for
	// directories. Entries for which exclude returns true are untouched.
	ClearTree(root string, exclude func(name string) bool) error
}

// TreeHasher computes a content checksum for a directory tree. The checksum
// must be stable across repeated computation with no intervening modification
// and change whenever any file's bytes or the included file set changes.
type TreeHasher interface {
	HashTree(root string) (string, error)
}
