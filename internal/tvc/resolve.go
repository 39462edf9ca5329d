package tvc

import (
	"fmt"
	"sort"
	"strings"
)

// Resolve maps a user-supplied checksum prefix to exactly one stored version.
//
// The candidate is found by binary search over the sorted, deduplicated list
// of stored checksums: an exact match wins, otherwise the lexicographically
// smallest checksum with prefix as a proper prefix. If no stored checksum
// starts with prefix, resolution fails with ErrNoSuchCommit. When several
// versions share the winning checksum, the earliest by timestamp is returned.
func (s *Service) Resolve(prefix string) (*Version, error) {
	versions, err := s.store.ListVersions()
	if err != nil {
		return nil, fmt.Errorf("listing versions: %w", err)
	}

	checksums := make([]string, 0, len(versions))
	seen := make(map[string]bool, len(versions))
	for _, v := range versions {
		if !seen[v.Checksum] {
			seen[v.Checksum] = true
			checksums = append(checksums, v.Checksum)
		}
	}
	sort.Strings(checksums)

	// The first checksum >= prefix is the only possible match: any exact
	// match sorts before every checksum that merely starts with prefix.
	i := sort.SearchStrings(checksums, prefix)
	if i == len(checksums) || !strings.HasPrefix(checksums[i], prefix) {
		return nil, fmt.Errorf("%w: %s", ErrNoSuchCommit, prefix)
	}
	candidate := checksums[i]

	// ListVersions is ordered by ascending timestamp, so the first hit is
	// the earliest version carrying the candidate checksum.
	for _, v := range versions {
		if v.Checksum == candidate {
			return v, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNoSuchCommit, prefix)
}
