package tvc

import (
	"fmt"
	"time"
)

// Commit appends a version record derived from now and materializes a full
// copy of the working tree (minus the metadata directory) under the
// metadata directory. The record is written before the copy so history never
// silently loses a commit that half-copied; see Check for the retry policy.
func (s *Service) Commit(now time.Time, checksum string) (*Version, error) {
	v := &Version{
		Checksum:  checksum,
		CreatedAt: now,
		Name:      VersionName(now),
	}

	if err := s.store.InsertVersion(v); err != nil {
		return nil, err
	}

	dst := s.root.Snapshot(v.Name)
	if err := s.fsmgr.CopyTree(s.root.String(), dst, excludeMetadata); err != nil {
		return nil, fmt.Errorf("copying tree to %s: %w", dst, err)
	}

	s.logger.Info("commit created", "dir", s.root.String(), "name", v.Name, "checksum", checksum)
	return v, nil
}
