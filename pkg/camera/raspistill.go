package camera

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/Dicklesworthstone/picam/pkg/model"
	"github.com/sirupsen/logrus"
)

// DefaultCaptureTimeout bounds a single raspistill capture
const DefaultCaptureTimeout = 30 * time.Second

// process is a running preview
type process interface {
	Stop() error
}

type execProcess struct {
	cmd *exec.Cmd
}

func (p *execProcess) Stop() error {
	if p.cmd.Process == nil {
		return nil
	}
	if err := p.cmd.Process.Kill(); err != nil {
		return err
	}
	// Wait reaps the process; the kill makes its error uninteresting.
	_ = p.cmd.Wait()
	return nil
}

// Raspistill drives the Pi camera through the raspistill utility.
// Preview is a long-lived raspistill process restarted whenever the
// window or an attribute changes; captures run a separate process.
type Raspistill struct {
	settings Settings
	params   model.CameraParameters
	window   model.Window
	preview  process
	log      *logrus.Entry

	// For testing: allow overriding command execution
	runCommand   func(ctx context.Context, name string, args ...string) ([]byte, error)
	startCommand func(name string, args ...string) (process, error)
}

// NewRaspistill returns a device with camera defaults applied
func NewRaspistill(s Settings) *Raspistill {
	return &Raspistill{
		settings:     s.withDefaults(),
		params:       model.DefaultParameters(),
		log:          logrus.WithField("component", "raspistill"),
		runCommand:   defaultRunCommand,
		startCommand: defaultStartCommand,
	}
}

func defaultRunCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

func defaultStartCommand(name string, args ...string) (process, error) {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return &execProcess{cmd: cmd}, nil
}

// SetAttribute implements Device
func (r *Raspistill) SetAttribute(p model.Parameter, v int) error {
	if err := checkAttribute(p, v); err != nil {
		return err
	}
	if r.params.Get(p) == v {
		return nil
	}
	r.params.Set(p, v)
	if r.preview != nil && p != model.Quality {
		return r.restartPreview("set " + p.Key())
	}
	return nil
}

// Parameters implements Device
func (r *Raspistill) Parameters() model.CameraParameters {
	return r.params
}

// StartPreview implements Device
func (r *Raspistill) StartPreview(win model.Window) error {
	r.window = win
	return r.restartPreview("start preview")
}

// MovePreview implements Device
func (r *Raspistill) MovePreview(win model.Window) error {
	r.window = win
	if r.preview == nil {
		return nil
	}
	return r.restartPreview("move preview")
}

// StopPreview implements Device
func (r *Raspistill) StopPreview() error {
	if r.preview == nil {
		return nil
	}
	p := r.preview
	r.preview = nil
	if err := p.Stop(); err != nil {
		return &model.DeviceError{Op: "stop preview", Err: err}
	}
	return nil
}

func (r *Raspistill) restartPreview(op string) error {
	if r.preview != nil {
		if err := r.preview.Stop(); err != nil {
			r.log.Warnf("stopping previous preview: %v", err)
		}
		r.preview = nil
	}
	args := r.previewArgs()
	r.log.WithField("args", strings.Join(args, " ")).Debug("starting preview")
	p, err := r.startCommand(r.settings.Binary, args...)
	if err != nil {
		return &model.DeviceError{Op: op, Err: fmt.Errorf("%w: %v", model.ErrPreviewStopped, err)}
	}
	r.preview = p
	return nil
}

// Capture implements Device
func (r *Raspistill) Capture(req model.CaptureRequest) error {
	args, err := r.captureArgs(req)
	if err != nil {
		return &model.DeviceError{Op: "capture", Err: err}
	}

	ctx, cancel := context.WithTimeout(context.Background(), DefaultCaptureTimeout)
	defer cancel()

	r.log.WithField("path", req.Path).Debug("capturing")
	output, err := r.runCommand(ctx, r.settings.Binary, args...)
	if err != nil {
		return &model.DeviceError{
			Op:  "capture",
			Err: fmt.Errorf("%s failed: %v, output: %s", r.settings.Binary, err, strings.TrimSpace(string(output))),
		}
	}
	return nil
}

// Close implements Device
func (r *Raspistill) Close() error {
	return r.StopPreview()
}

func (r *Raspistill) attributeArgs() []string {
	args := []string{
		"--brightness", strconv.Itoa(r.params.Brightness),
		"--contrast", strconv.Itoa(r.params.Contrast),
		"--saturation", strconv.Itoa(r.params.Saturation),
		"--sharpness", strconv.Itoa(r.params.Sharpness),
	}
	// ISO 0 leaves the sensor on automatic gain.
	if r.params.ISO > 0 {
		args = append(args, "--ISO", strconv.Itoa(r.params.ISO))
	}
	return args
}

func (r *Raspistill) previewArgs() []string {
	args := []string{"-t", "0", "-p", r.window.String()}
	return append(args, r.attributeArgs()...)
}

func (r *Raspistill) captureArgs(req model.CaptureRequest) ([]string, error) {
	if req.Path == "" {
		return nil, fmt.Errorf("capture path cannot be empty")
	}
	enc, err := encoding(req.Format)
	if err != nil {
		return nil, err
	}
	quality := req.Quality
	if quality == 0 {
		quality = r.params.Quality
	}
	if !model.Quality.Range().Contains(quality) {
		return nil, fmt.Errorf("invalid quality %d", quality)
	}

	args := []string{
		"-n", "-t", "1",
		"-w", strconv.Itoa(r.settings.Width),
		"-h", strconv.Itoa(r.settings.Height),
		"-e", enc,
		"-q", strconv.Itoa(quality),
		"-o", req.Path,
	}
	return append(args, r.attributeArgs()...), nil
}

// encoding maps a capture format to raspistill's -e values
func encoding(format string) (string, error) {
	f, ok := model.NormalizeFormat(format)
	if !ok {
		return "", fmt.Errorf("unsupported format %q", format)
	}
	if f == model.FormatJPEG {
		return "jpg", nil
	}
	return f, nil
}
