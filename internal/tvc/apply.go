package tvc

import "fmt"

// Apply reverts the working tree to the version resolved from prefix:
// every top-level entry except the metadata directory is deleted, then the
// snapshot copy is copied back in full. The operation is destructive and
// non-transactional; a failure partway through leaves the tree in a mixed
// state.
func (s *Service) Apply(prefix string) error {
	v, err := s.Resolve(prefix)
	if err != nil {
		return err
	}

	if err := s.fsmgr.ClearTree(s.root.String(), excludeMetadata); err != nil {
		return fmt.Errorf("clearing working tree: %w", err)
	}
	if err := s.fsmgr.CopyTree(s.root.Snapshot(v.Name), s.root.String(), nil); err != nil {
		return fmt.Errorf("restoring snapshot %s: %w", v.Name, err)
	}

	s.logger.Info("working tree reverted", "dir", s.root.String(), "name", v.Name, "checksum", v.Checksum)
	return nil
}
