package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// ProfileWatcher reports which profiles changed after files in a
// directory are created, written, renamed or removed.
type ProfileWatcher struct {
	dir      string
	ext      string
	debounce *Debouncer
	log      *logrus.Entry
}

// New creates a watcher for dir. Events for files not ending in ext are
// ignored. onChange receives the sorted stems of the profiles touched in
// each burst.
func New(dir, ext string, wait time.Duration, onChange func(names []string)) *ProfileWatcher {
	w := &ProfileWatcher{
		dir: dir,
		ext: ext,
		log: logrus.WithFields(logrus.Fields{"component": "watcher", "dir": dir}),
	}
	w.debounce = NewDebouncer(wait, func(names []string) {
		w.log.WithField("profiles", strings.Join(names, ",")).Debug("profiles changed on disk")
		onChange(names)
	})
	return w
}

// Run watches until ctx is cancelled
func (w *ProfileWatcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	w.log.Debug("watching profiles")

	for {
		select {
		case <-ctx.Done():
			w.debounce.Cancel()
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if w.relevant(ev) {
				w.debounce.Add(strings.TrimSuffix(filepath.Base(ev.Name), w.ext))
				w.log.WithFields(logrus.Fields{
					"event":   ev.String(),
					"pending": w.debounce.Pending(),
				}).Trace("profile event")
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.WithError(err).Warn("watch error")
		}
	}
}

func (w *ProfileWatcher) relevant(ev fsnotify.Event) bool {
	base := filepath.Base(ev.Name)
	if strings.HasPrefix(base, ".") || !strings.HasSuffix(base, w.ext) {
		return false
	}
	return ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write) ||
		ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename)
}
