package capture

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Dicklesworthstone/picam/pkg/model"
)

type fakeCamera struct {
	mu       sync.Mutex
	requests []model.CaptureRequest
	err      error
	block    chan struct{}
	panicMsg string
}

func (c *fakeCamera) Capture(ctx context.Context, req model.CaptureRequest) error {
	if c.block != nil {
		<-c.block
	}
	if c.panicMsg != "" {
		panic(c.panicMsg)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requests = append(c.requests, req)
	return c.err
}

func (c *fakeCamera) Parameters(ctx context.Context) (model.CameraParameters, error) {
	return model.DefaultParameters(), nil
}

type memJournal struct {
	mu      sync.Mutex
	entries []*model.Capture
}

func (j *memJournal) Record(c *model.Capture) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, c)
	return nil
}

func newTestWorker(cam Camera, opts ...Option) (*Worker, *[]time.Duration) {
	w := NewWorker(cam, opts...)
	var slept []time.Duration
	w.sleep = func(ctx context.Context, d time.Duration) error {
		slept = append(slept, d)
		return ctx.Err()
	}
	return w, &slept
}

func request(t *testing.T) model.CaptureRequest {
	return model.CaptureRequest{Path: filepath.Join(t.TempDir(), "out", "img.jpeg"), Format: "jpeg", Quality: 85}
}

func TestWorker_SettlesThenCapturesOnce(t *testing.T) {
	cam := &fakeCamera{}
	w, slept := newTestWorker(cam, WithSettleDelay(3*time.Second))
	req := request(t)

	res, err := w.Capture(context.Background(), req)
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if len(*slept) != 1 || (*slept)[0] != 3*time.Second {
		t.Errorf("slept %v, want one 3s settle", *slept)
	}
	if len(cam.requests) != 1 || cam.requests[0] != req {
		t.Errorf("camera saw %v, want exactly %v", cam.requests, req)
	}
	if res.Params != model.DefaultParameters() {
		t.Errorf("result params = %+v", res.Params)
	}
	if res.FinishedAt.Before(res.StartedAt) {
		t.Error("FinishedAt before StartedAt")
	}
	if w.busy.Load() {
		t.Error("worker should be idle after completion")
	}
}

func TestWorker_RejectsSecondCaptureWhileBusy(t *testing.T) {
	cam := &fakeCamera{block: make(chan struct{})}
	w, _ := newTestWorker(cam)

	ch, err := w.Start(context.Background(), request(t))
	if err != nil {
		t.Fatal(err)
	}
	if !w.busy.Load() {
		t.Error("worker should be busy while capture runs")
	}
	if _, err := w.Start(context.Background(), request(t)); !errors.Is(err, ErrBusy) {
		t.Errorf("second Start error = %v, want ErrBusy", err)
	}

	close(cam.block)
	res := <-ch
	if res.Err != nil {
		t.Fatalf("first capture failed: %v", res.Err)
	}
	if _, ok := <-ch; ok {
		t.Error("result channel should be closed after one result")
	}

	// A new capture is accepted once the first completed.
	cam.block = nil
	if _, err := w.Capture(context.Background(), request(t)); err != nil {
		t.Errorf("capture after completion: %v", err)
	}
}

func TestWorker_DeviceErrorIsReportedNotFatal(t *testing.T) {
	cam := &fakeCamera{err: errors.New("device busy")}
	j := &memJournal{}
	w, _ := newTestWorker(cam, WithJournal(j))

	_, err := w.Capture(context.Background(), request(t))
	if !model.IsDevice(err) {
		t.Errorf("error = %v, want DeviceError", err)
	}
	if w.busy.Load() {
		t.Error("worker must be idle after a failed capture")
	}
	if len(j.entries) != 1 || j.entries[0].Error == "" {
		t.Errorf("journal should hold one failed entry, got %+v", j.entries)
	}
}

func TestWorker_PanicBecomesDeviceError(t *testing.T) {
	cam := &fakeCamera{panicMsg: "mmal exploded"}
	w, _ := newTestWorker(cam)

	_, err := w.Capture(context.Background(), request(t))
	if !model.IsDevice(err) {
		t.Errorf("error = %v, want DeviceError", err)
	}
	if w.busy.Load() {
		t.Error("worker must be idle after a panic")
	}
}

func TestWorker_CancelledDuringSettle(t *testing.T) {
	cam := &fakeCamera{}
	w, _ := newTestWorker(cam)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := w.Capture(ctx, request(t))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
	if len(cam.requests) != 0 {
		t.Error("no capture should be issued after cancellation")
	}
}

func TestWorker_JournalRecordsSuccess(t *testing.T) {
	cam := &fakeCamera{}
	j := &memJournal{}
	w, _ := newTestWorker(cam, WithJournal(j))
	req := request(t)
	req.Profile = "outdoor"

	if _, err := w.Capture(context.Background(), req); err != nil {
		t.Fatal(err)
	}
	if len(j.entries) != 1 {
		t.Fatalf("journal entries = %d, want 1", len(j.entries))
	}
	e := j.entries[0]
	if e.Path != req.Path || e.Profile != "outdoor" || !e.Succeeded() {
		t.Errorf("unexpected entry %+v", e)
	}
}

func TestSleepContext(t *testing.T) {
	if err := sleepContext(context.Background(), 0); err != nil {
		t.Errorf("zero sleep error: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := sleepContext(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled sleep error = %v", err)
	}
}
