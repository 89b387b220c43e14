// Package camera wraps the camera hardware behind a single owning goroutine.
package camera

import (
	"fmt"
	"strings"

	"github.com/Dicklesworthstone/picam/pkg/model"
)

// Default capture settings, used when no config is provided
const (
	DefaultWidth   = 1024
	DefaultHeight  = 768
	DefaultBackend = BackendRaspistill
)

// Backend names accepted in configuration
const (
	BackendRaspistill = "raspistill"
	BackendSimulated  = "simulated"
)

// Device is the camera hardware boundary. Implementations are not
// safe for concurrent use; the Controller serializes every call.
type Device interface {
	// SetAttribute applies one parameter. The device rejects illegal values.
	SetAttribute(p model.Parameter, v int) error
	// Parameters returns the values currently applied
	Parameters() model.CameraParameters
	StartPreview(win model.Window) error
	MovePreview(win model.Window) error
	StopPreview() error
	// Capture writes one still image to req.Path
	Capture(req model.CaptureRequest) error
	Close() error
}

// Settings holds capture configuration passed to a device
type Settings struct {
	Width  int
	Height int
	Binary string // raspistill executable, ignored by the simulated device
}

// DefaultSettings returns a 1024x768 raspistill configuration
func DefaultSettings() Settings {
	return Settings{
		Width:  DefaultWidth,
		Height: DefaultHeight,
		Binary: "raspistill",
	}
}

func (s Settings) withDefaults() Settings {
	if s.Width <= 0 {
		s.Width = DefaultWidth
	}
	if s.Height <= 0 {
		s.Height = DefaultHeight
	}
	if s.Binary == "" {
		s.Binary = "raspistill"
	}
	return s
}

// Open builds the device named by backend
func Open(backend string, s Settings) (Device, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendRaspistill:
		return NewRaspistill(s), nil
	case BackendSimulated, "sim", "fake":
		return NewSimulated(s), nil
	default:
		return nil, fmt.Errorf("unknown camera backend %q", backend)
	}
}

// checkAttribute is the device-side legality check shared by backends
func checkAttribute(p model.Parameter, v int) error {
	if !p.IsValid() {
		return &model.DeviceError{Op: "set attribute", Err: fmt.Errorf("unknown parameter %d", int(p))}
	}
	if r := p.Range(); !r.Contains(v) {
		return &model.DeviceError{
			Op:  "set " + p.Key(),
			Err: fmt.Errorf("invalid value %d, valid range is %d to %d", v, r.Min, r.Max),
		}
	}
	return nil
}
