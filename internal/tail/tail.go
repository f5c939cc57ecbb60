// Package tail follows the activity log as it grows, for lightweight
// terminal monitoring of a live session.
package tail

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// pollDefault is the polling interval when fsnotify is unavailable.
const pollDefault = 500 * time.Millisecond

// Follower streams lines appended to a file.
type Follower struct {
	path   string
	out    io.Writer
	poll   time.Duration
	offset int64
}

// New creates a follower that copies appended data to out.
func New(path string, out io.Writer) *Follower {
	return &Follower{path: path, out: out, poll: pollDefault}
}

// Run streams appended data until ctx is cancelled. Watches the parent
// directory with fsnotify so the log can appear after Run starts; falls
// back to polling when the watcher cannot be established (e.g. NFS).
func (f *Follower) Run(ctx context.Context) error {
	// Start from the current end so only new activity streams.
	if info, err := os.Stat(f.path); err == nil {
		f.offset = info.Size()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return f.runPoll(ctx)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(filepath.Dir(f.path)); err != nil {
		return f.runPoll(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Name != f.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				if err := f.drain(); err != nil {
					return err
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			_ = err
		}
	}
}

func (f *Follower) runPoll(ctx context.Context) error {
	ticker := time.NewTicker(f.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := f.drain(); err != nil {
				return err
			}
		}
	}
}

// drain copies everything past the current offset to the output. An
// archived (renamed) or truncated log restarts from the beginning.
func (f *Follower) drain() error {
	file, err := os.Open(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			f.offset = 0
			return nil
		}
		return err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return err
	}
	if info.Size() < f.offset {
		f.offset = 0
	}

	if _, err := file.Seek(f.offset, io.SeekStart); err != nil {
		return err
	}
	n, err := io.Copy(f.out, file)
	f.offset += n
	return err
}
