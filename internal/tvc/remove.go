package tvc

import (
	"fmt"
	"os"
)

// Remove resolves prefix and deletes every stored record whose checksum
// equals the resolved version's checksum. Snapshot copies are retained by
// default so removal acts as a soft delete of history; with purge set, each
// removed version's copy directory is deleted as well.
func (s *Service) Remove(prefix string, purge bool) error {
	v, err := s.Resolve(prefix)
	if err != nil {
		return err
	}

	names, err := s.store.DeleteVersionsByChecksum(v.Checksum)
	if err != nil {
		return fmt.Errorf("deleting versions with checksum %s: %w", v.Checksum, err)
	}

	if purge {
		for _, name := range names {
			if err := os.RemoveAll(s.root.Snapshot(name)); err != nil {
				return fmt.Errorf("purging snapshot copy %s: %w", name, err)
			}
		}
	}

	s.logger.Info("versions removed", "dir", s.root.String(), "checksum", v.Checksum, "count", len(names), "purged", purge)
	return nil
}
