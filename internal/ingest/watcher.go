package ingest

import (
	"context"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Watcher re-ingests the course folder when transcript documents appear or
// change, so a running server picks up new material without a restart.
type Watcher struct {
	svc    *Service
	dir    string
	settle time.Duration
	log    zerolog.Logger
}

func NewWatcher(svc *Service, dir string, logger zerolog.Logger) *Watcher {
	return &Watcher{svc: svc, dir: dir, settle: 500 * time.Millisecond, log: logger}
}

// Run blocks until ctx is cancelled. Filesystem events are debounced with a
// short settle window so a file being written in several bursts triggers a
// single re-ingest.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = fsw.Close() }()

	if err := fsw.Add(w.dir); err != nil {
		return err
	}
	w.log.Info().Str("dir", w.dir).Msg("watching course folder")

	var timer *time.Timer
	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !isCourseDocument(event.Name) {
				continue
			}
			w.log.Debug().Str("file", event.Name).Str("op", event.Op.String()).Msg("course folder changed")
			if timer == nil {
				timer = time.NewTimer(w.settle)
				pending = timer.C
			} else {
				timer.Reset(w.settle)
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn().Err(err).Msg("watch error")
		case <-pending:
			timer = nil
			pending = nil
			courses, chunks, err := w.svc.AddCourseFolder(ctx, w.dir, false)
			if err != nil {
				w.log.Error().Err(err).Msg("re-ingest failed")
				continue
			}
			if courses > 0 {
				w.log.Info().Int("courses", courses).Int("chunks", chunks).Msg("re-ingest complete")
			}
		}
	}
}
