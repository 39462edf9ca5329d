package tvc

import (
	"errors"
	"fmt"
)

// Sentinel errors for the conditions callers are expected to branch on.
// The CLI maps each of these to a distinct exit code.
var (
	ErrNotFound         = errors.New("directory does not exist")
	ErrNotADirectory    = errors.New("not a directory")
	ErrAlreadyMonitored = errors.New("directory already monitored")
	ErrNotMonitored     = errors.New("directory not monitored")
	ErrNoSuchCommit     = errors.New("no such commit")
)

// DuplicateVersionError reports a commit whose derived name already exists,
// which happens when two commits land within the same second.
type DuplicateVersionError struct {
	Name string
}

func (e *DuplicateVersionError) Error() string {
	return fmt.Sprintf("commit failed: a commit named %q already exists", e.Name)
}
