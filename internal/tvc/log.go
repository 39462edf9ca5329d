package tvc

import (
	"fmt"
	"iter"
	"time"
)

// LogEntry is one rendered history entry: a version, its RFC-2822 local
// timestamp, and the diff summary of the working tree against that version's
// snapshot copy.
type LogEntry struct {
	Version *Version
	Date    string
	Diff    *DiffSummary
}

// Log returns the stored versions as a lazy, finite sequence ordered by
// ascending timestamp. The sequence is restartable: every range over it
// re-reads the store and re-diffs against the current working tree.
func (s *Service) Log() iter.Seq2[*LogEntry, error] {
	return func(yield func(*LogEntry, error) bool) {
		versions, err := s.store.ListVersions()
		if err != nil {
			yield(nil, fmt.Errorf("listing versions: %w", err))
			return
		}
		for _, v := range versions {
			entry, err := s.logEntry(v)
			if !yield(entry, err) {
				return
			}
		}
	}
}

func (s *Service) logEntry(v *Version) (*LogEntry, error) {
	diff, err := Compare(s.root.String(), s.root.Snapshot(v.Name))
	if err != nil {
		return nil, fmt.Errorf("diffing against %s: %w", v.Name, err)
	}
	return &LogEntry{
		Version: v,
		Date:    v.CreatedAt.Local().Format(time.RFC1123Z),
		Diff:    diff,
	}, nil
}
