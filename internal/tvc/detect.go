package tvc

import (
	"fmt"
	"time"
)

// shouldCommit is the commit gate. With no prior commit it always fires.
// Otherwise it fires only when the frequency window has elapsed AND the
// checksum differs from the last commit's, so a change that appears and
// reverts before the window elapses is never captured.
func shouldCommit(now time.Time, checksum string, last *LastCommit, frequency time.Duration) bool {
	if last == nil {
		return true
	}
	isOld := now.Sub(last.CreatedAt) >= frequency
	isOutdated := checksum != last.Checksum
	return isOld && isOutdated
}

// Check runs one detection cycle: hash the tree, decide, and commit if due.
// The last-commit state is updated before the copy is attempted, so a change
// on a tree whose copy keeps failing is marked as seen and not retried on
// every tick.
func (s *Service) Check() error {
	now := s.clock.Now()

	checksum, err := s.hasher.HashTree(s.root.String())
	if err != nil {
		return fmt.Errorf("hashing %s: %w", s.root, err)
	}

	last, err := s.store.LastCommit()
	if err != nil {
		return fmt.Errorf("reading last commit state: %w", err)
	}

	if !shouldCommit(now, checksum, last, s.frequency) {
		s.logger.Debug("no commit due", "dir", s.root.String(), "checksum", checksum)
		return nil
	}

	lc := &LastCommit{Checksum: checksum, CreatedAt: now, Name: VersionName(now)}
	if err := s.store.SetLastCommit(lc); err != nil {
		return fmt.Errorf("updating last commit state: %w", err)
	}

	if _, err := s.Commit(now, checksum); err != nil {
		return fmt.Errorf("committing %s: %w", s.root, err)
	}
	return nil
}
