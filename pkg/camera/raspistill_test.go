package camera

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Dicklesworthstone/picam/pkg/model"
)

type fakeProcess struct {
	stopped bool
}

func (p *fakeProcess) Stop() error {
	p.stopped = true
	return nil
}

type startCall struct {
	name string
	args []string
}

func newTestRaspistill() (*Raspistill, *[]startCall, *[]*fakeProcess) {
	r := NewRaspistill(Settings{Width: 800, Height: 600, Binary: "raspistill"})
	var starts []startCall
	var procs []*fakeProcess
	r.startCommand = func(name string, args ...string) (process, error) {
		starts = append(starts, startCall{name: name, args: args})
		p := &fakeProcess{}
		procs = append(procs, p)
		return p, nil
	}
	return r, &starts, &procs
}

func argValue(args []string, flag string) (string, bool) {
	for i, a := range args {
		if a == flag && i+1 < len(args) {
			return args[i+1], true
		}
	}
	return "", false
}

func TestRaspistill_CaptureArgs(t *testing.T) {
	r, _, _ := newTestRaspistill()
	_ = r.SetAttribute(model.Brightness, 60)
	_ = r.SetAttribute(model.ISO, 200)

	var gotName string
	var gotArgs []string
	r.runCommand = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		gotName, gotArgs = name, args
		return nil, nil
	}

	err := r.Capture(model.CaptureRequest{Path: "/tmp/a.jpeg", Format: "jpeg", Quality: 90})
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if gotName != "raspistill" {
		t.Errorf("binary = %q, want raspistill", gotName)
	}

	checks := map[string]string{
		"-o":           "/tmp/a.jpeg",
		"-e":           "jpg",
		"-q":           "90",
		"-w":           "800",
		"-h":           "600",
		"--brightness": "60",
		"--ISO":        "200",
	}
	for flag, want := range checks {
		if got, ok := argValue(gotArgs, flag); !ok || got != want {
			t.Errorf("%s = %q (present %v), want %q", flag, got, ok, want)
		}
	}
	if gotArgs[0] != "-n" {
		t.Errorf("capture should disable the preview window, args = %v", gotArgs)
	}
}

func TestRaspistill_AutoISOOmitsFlag(t *testing.T) {
	r, _, _ := newTestRaspistill()
	var gotArgs []string
	r.runCommand = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		gotArgs = args
		return nil, nil
	}
	if err := r.Capture(model.CaptureRequest{Path: "a.png", Format: "png"}); err != nil {
		t.Fatal(err)
	}
	if _, ok := argValue(gotArgs, "--ISO"); ok {
		t.Errorf("ISO 0 should not pass --ISO, args = %v", gotArgs)
	}
	if q, _ := argValue(gotArgs, "-q"); q != "85" {
		t.Errorf("quality should fall back to the attribute value 85, got %q", q)
	}
}

func TestRaspistill_CaptureFailureIsDeviceError(t *testing.T) {
	r, _, _ := newTestRaspistill()
	r.runCommand = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return []byte("mmal: camera is busy\n"), errors.New("exit status 70")
	}
	err := r.Capture(model.CaptureRequest{Path: "a.jpeg", Format: "jpeg"})
	if !model.IsDevice(err) {
		t.Fatalf("error = %v, want DeviceError", err)
	}
	if !strings.Contains(err.Error(), "camera is busy") {
		t.Errorf("error should include tool output, got %v", err)
	}
}

func TestRaspistill_RejectsBadFormat(t *testing.T) {
	r, _, _ := newTestRaspistill()
	called := false
	r.runCommand = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		called = true
		return nil, nil
	}
	if err := r.Capture(model.CaptureRequest{Path: "a.tiff", Format: "tiff"}); !model.IsDevice(err) {
		t.Errorf("error = %v, want DeviceError", err)
	}
	if called {
		t.Error("raspistill should not run for an unsupported format")
	}
}

func TestRaspistill_SetAttributeRange(t *testing.T) {
	r, _, _ := newTestRaspistill()
	if err := r.SetAttribute(model.Contrast, -101); !model.IsDevice(err) {
		t.Errorf("contrast -101 error = %v, want DeviceError", err)
	}
	if err := r.SetAttribute(model.ISO, 1700); !model.IsDevice(err) {
		t.Errorf("iso 1700 error = %v, want DeviceError", err)
	}
	if got := r.Parameters(); got != model.DefaultParameters() {
		t.Errorf("rejected values must not be applied, got %+v", got)
	}
}

func TestRaspistill_PreviewLifecycle(t *testing.T) {
	r, starts, procs := newTestRaspistill()
	win := model.Window{X: 10, Y: 20, Width: 640, Height: 480}

	if err := r.StartPreview(win); err != nil {
		t.Fatal(err)
	}
	if len(*starts) != 1 {
		t.Fatalf("starts = %d, want 1", len(*starts))
	}
	if p, _ := argValue((*starts)[0].args, "-p"); p != "10,20,640,480" {
		t.Errorf("-p = %q, want 10,20,640,480", p)
	}

	// Attribute change restarts the preview with the new value.
	if err := r.SetAttribute(model.Brightness, 70); err != nil {
		t.Fatal(err)
	}
	if len(*starts) != 2 || !(*procs)[0].stopped {
		t.Fatalf("attribute change should restart preview; starts=%d", len(*starts))
	}
	if b, _ := argValue((*starts)[1].args, "--brightness"); b != "70" {
		t.Errorf("--brightness = %q, want 70", b)
	}

	// Quality only affects captures.
	if err := r.SetAttribute(model.Quality, 50); err != nil {
		t.Fatal(err)
	}
	if len(*starts) != 2 {
		t.Errorf("quality change should not restart preview, starts=%d", len(*starts))
	}

	if err := r.MovePreview(win.Offset(5, 5)); err != nil {
		t.Fatal(err)
	}
	if p, _ := argValue((*starts)[2].args, "-p"); p != "15,25,640,480" {
		t.Errorf("moved -p = %q, want 15,25,640,480", p)
	}

	if err := r.StopPreview(); err != nil {
		t.Fatal(err)
	}
	if !(*procs)[2].stopped {
		t.Error("StopPreview should stop the running process")
	}

	// Moving a stopped preview does nothing.
	if err := r.MovePreview(win); err != nil {
		t.Fatal(err)
	}
	if len(*starts) != 3 {
		t.Errorf("move while stopped started a process, starts=%d", len(*starts))
	}
}

func TestRaspistill_PreviewStartFailure(t *testing.T) {
	r, _, _ := newTestRaspistill()
	r.startCommand = func(name string, args ...string) (process, error) {
		return nil, errors.New("executable file not found in $PATH")
	}
	if err := r.StartPreview(model.Window{}); !model.IsDevice(err) {
		t.Errorf("error = %v, want DeviceError", err)
	}
}

func TestOpen(t *testing.T) {
	if _, ok := mustOpen(t, "raspistill").(*Raspistill); !ok {
		t.Error("raspistill backend should yield *Raspistill")
	}
	if _, ok := mustOpen(t, "").(*Raspistill); !ok {
		t.Error("empty backend should default to raspistill")
	}
	if _, ok := mustOpen(t, "Simulated").(*Simulated); !ok {
		t.Error("simulated backend should yield *Simulated")
	}
	if _, err := Open("webcam", DefaultSettings()); err == nil {
		t.Error("unknown backend should fail")
	}
}

func mustOpen(t *testing.T, backend string) Device {
	t.Helper()
	d, err := Open(backend, DefaultSettings())
	if err != nil {
		t.Fatalf("Open(%q): %v", backend, err)
	}
	return d
}

func TestRaspistill_SetAttributeRestartFailureStopsPreview(t *testing.T) {
	r, _, procs := newTestRaspistill()
	if err := r.StartPreview(model.Window{Width: 320, Height: 240}); err != nil {
		t.Fatal(err)
	}
	r.startCommand = func(string, ...string) (process, error) {
		return nil, errors.New("camera busy")
	}

	err := r.SetAttribute(model.Contrast, 20)
	if !model.IsDevice(err) || !errors.Is(err, model.ErrPreviewStopped) {
		t.Fatalf("err = %v, want DeviceError wrapping ErrPreviewStopped", err)
	}
	if r.preview != nil {
		t.Error("preview handle kept after failed restart")
	}
	if !(*procs)[0].stopped {
		t.Error("old preview process not stopped")
	}
}
