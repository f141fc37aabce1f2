package capture

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	goutils "go.viam.com/utils"
)

// pollInterval is the fallback cadence for checking the screenshot on disk when
// no filesystem event arrives.
const pollInterval = time.Second

// waitForFile blocks until the file at path exists and exceeds the session's minimum
// size, the screenshot timeout elapses, or the context is canceled. The editor writes
// screenshots asynchronously from its render thread, so the file can appear late and
// grow over several writes; a directory watcher wakes the check early when events are
// available, with timed polling as the fallback.
func (s *Session) waitForFile(ctx context.Context, path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		watcher = nil
		s.logger.Debugw("no filesystem watcher available, polling only", "error", err)
	} else {
		defer goutils.UncheckedErrorFunc(watcher.Close)
		if err := watcher.Add(filepath.Dir(path)); err != nil {
			s.logger.Debugw("cannot watch output directory, polling only", "error", err)
		}
	}

	deadline := s.clock.Now().Add(s.screenshotTimeout)
	for {
		if s.fileReady(path) {
			return nil
		}
		if !s.clock.Now().Before(deadline) {
			return errors.Errorf("timed out after %v waiting for screenshot %q", s.screenshotTimeout, path)
		}
		if watcher == nil {
			if !goutils.SelectContextOrWait(ctx, pollInterval) {
				return ctx.Err()
			}
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-watcher.Events:
		case <-watcher.Errors:
		case <-time.After(pollInterval):
		}
	}
}

func (s *Session) fileReady(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Size() > s.minImageSize
}
