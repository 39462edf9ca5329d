package tvc

import "time"

// MetadataDirName is the reserved subdirectory inside every monitored tree.
// It holds the version database and the snapshot copies, and is excluded
// from checksums, diffs, commits and clears.
const MetadataDirName = ".tvc"

// VersionNameLayout derives a version's name from its timestamp at second
// resolution. Two commits whose timestamps round to the same second collide.
const VersionNameLayout = "2006.01.02 - 15.04.05"

// Version is an immutable record pairing a tree checksum with the snapshot
// copy stored under MetadataDirName/<Name> at commit time.
type Version struct {
	Checksum  string
	CreatedAt time.Time
	Name      string
}

// LastCommit is the singleton per-tree record of the most recently attempted
// commit. It is updated before the snapshot copy is made and never on ticks
// that decide not to commit.
type LastCommit struct {
	Checksum  string
	CreatedAt time.Time
	Name      string
}

// MonitoredDirectory is a registry row for a tree the daemon polls.
type MonitoredDirectory struct {
	ID      string // UUID
	Path    string // absolute path on host
	AddedAt time.Time
}

// DaemonState is the desired lifecycle state of the polling daemon.
type DaemonState string

const (
	DaemonStopped DaemonState = "stopped"
	DaemonRunning DaemonState = "running"
)

// VersionName formats t into a version name.
func VersionName(t time.Time) string {
	return t.Format(VersionNameLayout)
}
