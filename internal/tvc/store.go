package tvc

// Store persists the version log and last-commit state for a single tree.
// Implementations must make InsertVersion and DeleteVersionsByChecksum
// transactional: a crash mid-commit must not leave a partial record behind.
type Store interface {
	// InsertVersion appends a version record, never overwriting.
	// Returns *DuplicateVersionError if a record with the same name exists.
	InsertVersion(v *Version) error

	// ListVersions returns all stored versions ordered by ascending timestamp.
	ListVersions() ([]*Version, error)

	// DeleteVersionsByChecksum removes every record with the given checksum
	// and returns the names of the deleted versions.
	DeleteVersionsByChecksum(checksum string) ([]string, error)

	// LastCommit returns the last-commit record, or nil if no commit has been
	// attempted yet.
	LastCommit() (*LastCommit, error)

	// SetLastCommit replaces the singleton last-commit record.
	SetLastCommit(lc *LastCommit) error

	// Close closes the underlying store.
	Close() error
}

// Registry persists the set of monitored directories and the daemon's
// desired lifecycle state.
type Registry interface {
	// Add registers a directory, assigning it an ID.
	// Returns ErrAlreadyMonitored if the path is already registered.
	Add(dir *MonitoredDirectory) error

	// Remove deregisters a directory by its absolute path.
	// Returns ErrNotMonitored if the path is not registered.
	Remove(path string) error

	// List returns all monitored directories ordered by path.
	List() ([]*MonitoredDirectory, error)

	// DesiredDaemonState returns the daemon's desired state.
	// A registry with no recorded state reports DaemonStopped.
	DesiredDaemonState() (DaemonState, error)

	// SetDesiredDaemonState records the daemon's desired state.
	SetDesiredDaemonState(s DaemonState) error

	// Close closes the underlying store.
	Close() error
}
