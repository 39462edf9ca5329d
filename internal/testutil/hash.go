package testutil

import "sync"

// StubHasher reports a settable checksum regardless of tree contents.
// Safe for concurrent use.
type StubHasher struct {
	mu       sync.Mutex
	checksum string
}

// NewStubHasher creates a StubHasher reporting the given checksum.
func NewStubHasher(checksum string) *StubHasher {
	return &StubHasher{checksum: checksum}
}

func (h *StubHasher) HashTree(root string) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.checksum, nil
}

// Set changes the checksum reported by subsequent HashTree calls.
func (h *StubHasher) Set(checksum string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checksum = checksum
}
