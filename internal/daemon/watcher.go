package daemon

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"tvc-go/internal/tvc"
)

// watchTrigger wakes the daemon loop early when files change under a
// monitored directory. Events are debounced so a burst of writes
// produces a single wake-up. Directories monitored after the daemon
// starts are picked up by polling only.
type watchTrigger struct {
	C       chan struct{}
	watcher *fsnotify.Watcher
	done    chan struct{}
}

func newWatchTrigger(dirs []*tvc.MonitoredDirectory, debounce time.Duration, logger tvc.Logger) (*watchTrigger, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	t := &watchTrigger{
		C:       make(chan struct{}, 1),
		watcher: watcher,
		done:    make(chan struct{}),
	}

	for _, dir := range dirs {
		if err := t.addTree(dir.Path); err != nil {
			logger.Error("failed to watch directory", "path", dir.Path, "error", err)
		}
	}

	go t.loop(debounce, logger)
	return t, nil
}

// addTree registers watches for root and every subdirectory except the
// metadata directory.
func (t *watchTrigger) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if d.Name() == tvc.MetadataDirName {
			return filepath.SkipDir
		}
		return t.watcher.Add(path)
	})
}

func (t *watchTrigger) loop(debounce time.Duration, logger tvc.Logger) {
	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-t.done:
			timer.Stop()
			return
		case event, ok := <-t.watcher.Events:
			if !ok {
				return
			}
			if t.ignored(event.Name) {
				continue
			}
			if event.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := t.watcher.Add(event.Name); err != nil {
						logger.Error("failed to watch new directory", "path", event.Name, "error", err)
					}
				}
			}
			timer.Reset(debounce)
		case err, ok := <-t.watcher.Errors:
			if !ok {
				return
			}
			logger.Error("filesystem watch error", "error", err)
		case <-timer.C:
			select {
			case t.C <- struct{}{}:
			default:
			}
		}
	}
}

// ignored reports whether the event path lies inside a metadata
// directory. Snapshot copies are written there and must not retrigger
// the loop.
func (t *watchTrigger) ignored(path string) bool {
	sep := string(os.PathSeparator)
	return strings.Contains(path, sep+tvc.MetadataDirName+sep) ||
		strings.HasSuffix(path, sep+tvc.MetadataDirName)
}

func (t *watchTrigger) Close() error {
	close(t.done)
	return t.watcher.Close()
}
