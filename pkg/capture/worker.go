// Package capture runs the settle-then-capture sequence off the UI loop.
package capture

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/Dicklesworthstone/picam/pkg/model"
	"github.com/sirupsen/logrus"
)

// DefaultSettleDelay lets auto-exposure and white balance stabilize
const DefaultSettleDelay = 2 * time.Second

// ErrBusy is returned when a capture is already in flight
var ErrBusy = errors.New("a capture is already in progress")

// Camera is the part of the camera controller the worker needs
type Camera interface {
	Capture(ctx context.Context, req model.CaptureRequest) error
	Parameters(ctx context.Context) (model.CameraParameters, error)
}

// Journal records finished captures
type Journal interface {
	Record(c *model.Capture) error
}

// Result is delivered once per Start
type Result struct {
	Request    model.CaptureRequest
	Params     model.CameraParameters
	StartedAt  time.Time
	FinishedAt time.Time
	Err        error
}

// Worker performs at most one capture at a time
type Worker struct {
	cam     Camera
	settle  time.Duration
	journal Journal
	busy    atomic.Bool
	log     *logrus.Entry

	// For testing
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// Option configures a Worker
type Option func(*Worker)

// WithSettleDelay overrides DefaultSettleDelay
func WithSettleDelay(d time.Duration) Option {
	return func(w *Worker) {
		if d >= 0 {
			w.settle = d
		}
	}
}

// WithJournal records every result
func WithJournal(j Journal) Option {
	return func(w *Worker) {
		w.journal = j
	}
}

// NewWorker creates a worker for cam
func NewWorker(cam Camera, opts ...Option) *Worker {
	w := &Worker{
		cam:    cam,
		settle: DefaultSettleDelay,
		log:    logrus.WithField("component", "capture"),
		now:    time.Now,
		sleep:  sleepContext,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SettleDelay returns the configured wait before each capture
func (w *Worker) SettleDelay() time.Duration {
	return w.settle
}

// Start begins a capture in the background. The returned channel
// receives exactly one Result and is then closed. Start fails with
// ErrBusy while another capture runs.
func (w *Worker) Start(ctx context.Context, req model.CaptureRequest) (<-chan Result, error) {
	if !w.busy.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}

	out := make(chan Result, 1)
	go func() {
		defer close(out)
		res := w.run(ctx, req)
		w.busy.Store(false)
		out <- res
	}()
	return out, nil
}

// Capture runs a capture and waits for its result
func (w *Worker) Capture(ctx context.Context, req model.CaptureRequest) (Result, error) {
	ch, err := w.Start(ctx, req)
	if err != nil {
		return Result{}, err
	}
	res := <-ch
	return res, res.Err
}

func (w *Worker) run(ctx context.Context, req model.CaptureRequest) (res Result) {
	res = Result{Request: req, StartedAt: w.now()}
	log := w.log.WithField("path", req.Path)

	defer func() {
		// A panic in a device backend must not take the UI down.
		if r := recover(); r != nil {
			res.Err = &model.DeviceError{Op: "capture", Err: fmt.Errorf("panic: %v", r)}
		}
		res.FinishedAt = w.now()
		w.record(res)
		if res.Err != nil {
			log.WithError(res.Err).Error("capture failed")
		} else {
			log.WithField("elapsed", res.FinishedAt.Sub(res.StartedAt)).Info("capture complete")
		}
	}()

	if dir := filepath.Dir(req.Path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			res.Err = &model.DeviceError{Op: "capture", Err: fmt.Errorf("create output directory: %w", err)}
			return res
		}
	}

	log.WithField("settle", w.settle).Debug("settling before capture")
	if err := w.sleep(ctx, w.settle); err != nil {
		res.Err = fmt.Errorf("capture interrupted: %w", err)
		return res
	}

	if params, err := w.cam.Parameters(ctx); err == nil {
		res.Params = params
	}

	if err := w.cam.Capture(ctx, req); err != nil {
		var de *model.DeviceError
		if !errors.As(err, &de) {
			err = &model.DeviceError{Op: "capture", Err: err}
		}
		res.Err = err
	}
	return res
}

func (w *Worker) record(res Result) {
	if w.journal == nil {
		return
	}
	entry := &model.Capture{
		Path:       res.Request.Path,
		Format:     res.Request.Format,
		Quality:    res.Request.Quality,
		Profile:    res.Request.Profile,
		Params:     res.Params,
		StartedAt:  res.StartedAt,
		FinishedAt: res.FinishedAt,
	}
	if res.Err != nil {
		entry.Error = res.Err.Error()
	}
	if err := w.journal.Record(entry); err != nil {
		w.log.WithError(err).Warn("could not record capture in journal")
	}
}
