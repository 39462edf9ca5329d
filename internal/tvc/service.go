package tvc

import "time"

// Service coordinates change detection, snapshotting, history, revert and
// record removal for a single working directory. All operations assume
// single-writer access to the tree and its version log; concurrent commits,
// applies or removes against the same tree are undefined.
type Service struct {
	root      *Path
	store     Store
	fsmgr     FilesystemManager
	hasher    TreeHasher
	logger    Logger
	clock     Clock
	frequency time.Duration
}

// NewService creates a Service for the working directory at root.
// frequency is the minimum elapsed time between successive commits.
func NewService(root *Path, store Store, fsmgr FilesystemManager, hasher TreeHasher, logger Logger, clock Clock, frequency time.Duration) *Service {
	return &Service{
		root:      root,
		store:     store,
		fsmgr:     fsmgr,
		hasher:    hasher,
		logger:    logger,
		clock:     clock,
		frequency: frequency,
	}
}

// Root returns the working directory this service operates on.
func (s *Service) Root() *Path {
	return s.root
}

// excludeMetadata is the top-level exclusion applied to every commit copy
// and working-tree clear.
func excludeMetadata(name string) bool {
	return name == MetadataDirName
}
