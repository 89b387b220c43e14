// Package panel is the control panel's state machine. It holds no
// terminal or camera handles: Dispatch turns an Event into state changes
// plus the Effects the caller must run.
package panel

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Dicklesworthstone/picam/pkg/model"
)

// Control is one parameter's slider and spinbox. Both always hold the
// same value.
type Control struct {
	Param  model.Parameter
	Slider int
	Spin   int
}

// Value returns the control's current value
func (c Control) Value() int { return c.Slider }

// PreviewState tracks the preview window
type PreviewState struct {
	Running bool
	Window  model.Window // configured origin and size
	OffsetX int
	OffsetY int
}

// Region is the window actually shown, with offsets applied
func (p PreviewState) Region() model.Window {
	return p.Window.Offset(p.OffsetX, p.OffsetY)
}

// State is everything the control panel shows
type State struct {
	Controls [model.NumParameters]Control
	Defaults model.CameraParameters
	Preview  PreviewState

	TakePictureEnabled bool
	Capturing          bool
	LastCapture        string

	// BaseOutput comes from config; Output is what the next capture uses.
	BaseOutput model.OutputSettings
	Output     model.OutputSettings

	Profiles       []string
	CurrentProfile string
	PendingDelete  string

	Err    error
	Status string
}

// New builds the initial state from the default profile
func New(defaults model.Profile, preview model.Window, out model.OutputSettings) *State {
	s := &State{
		Defaults:           defaults.CameraParameters,
		Preview:            PreviewState{Window: preview},
		TakePictureEnabled: true,
		BaseOutput:         out,
		Output:             defaults.OutputSettings.Merge(out),
		CurrentProfile:     model.DefaultProfileName,
	}
	for _, p := range model.Parameters {
		v := defaults.Get(p)
		s.Controls[p] = Control{Param: p, Slider: v, Spin: v}
	}
	return s
}

// Params returns the values currently shown in the controls
func (s *State) Params() model.CameraParameters {
	var cp model.CameraParameters
	for _, c := range s.Controls {
		cp.Set(c.Param, c.Value())
	}
	return cp
}

// Profile returns the controls and output settings as a profile
func (s *State) Profile() model.Profile {
	p := model.NewProfile(s.Params())
	p.OutputSettings = s.Output
	return p
}

// Modal reports whether the error modal is blocking input
func (s *State) Modal() bool { return s.Err != nil }

// Dispatch applies ev and returns the effects to run, in order
func (s *State) Dispatch(ev Event) []Effect {
	if s.Modal() && isInput(ev) {
		return nil
	}

	switch ev := ev.(type) {
	case SliderMoved:
		return s.setControl(ev.Param, ev.Value)
	case SpinboxChanged:
		return s.setControl(ev.Param, ev.Value)
	case ResetRequested:
		s.Status = "reset to default"
		return s.applyParams(s.Defaults)

	case PreviewToggled:
		if s.Preview.Running {
			s.Preview.Running = false
			return []Effect{StopPreview{}}
		}
		s.Preview.Running = true
		return []Effect{StartPreview{Window: s.Preview.Region()}}
	case OffsetChanged:
		s.Preview.OffsetX, s.Preview.OffsetY = ev.X, ev.Y
		if !s.Preview.Running {
			return nil
		}
		return []Effect{MovePreview{Window: s.Preview.Region()}}
	case FocusLost, Minimized:
		if !s.Preview.Running {
			return nil
		}
		s.Preview.Running = false
		return []Effect{StopPreview{}}

	case TakePictureRequested:
		return s.takePicture(ev)
	case CaptureFinished:
		s.Capturing = false
		s.TakePictureEnabled = true
		if ev.Err != nil {
			if errors.Is(ev.Err, model.ErrPreviewStopped) {
				s.Preview.Running = false
			}
			s.Err = ev.Err
			s.Status = "capture failed"
			return nil
		}
		s.LastCapture = ev.Path
		s.Status = "saved " + ev.Path
		return nil

	case SaveRequested:
		name, err := model.ParseProfileName(ev.Name)
		if err != nil {
			s.Err = err
			return nil
		}
		return []Effect{SaveProfile{Name: name.String(), Profile: s.Profile()}}
	case LoadRequested:
		name, err := model.LookupProfileName(ev.Name)
		if err != nil {
			s.Err = err
			return nil
		}
		return []Effect{LoadProfile{Name: name.String()}}
	case DeleteRequested:
		name, err := model.ParseProfileName(ev.Name)
		if err != nil {
			s.Err = err
			return nil
		}
		s.PendingDelete = name.String()
		return nil
	case DeleteConfirmed:
		name := s.PendingDelete
		s.PendingDelete = ""
		if name == "" {
			return nil
		}
		if !ev.Yes {
			s.Status = "kept " + name
			return nil
		}
		return []Effect{DeleteProfile{Name: name}}

	case ProfileLoaded:
		return s.loadProfile(ev)
	case ProfileSaved:
		s.CurrentProfile = ev.Name
		s.Status = "saved profile " + ev.Name
		return []Effect{RefreshProfiles{}}
	case ProfileDeleted:
		if s.CurrentProfile == ev.Name {
			s.CurrentProfile = ""
		}
		s.Status = "deleted profile " + ev.Name
		return []Effect{RefreshProfiles{}}
	case ProfilesListed:
		s.Profiles = append([]string(nil), ev.Names...)
		return nil
	case ProfilesChanged:
		if len(ev.Names) > 0 {
			s.Status = "changed on disk: " + strings.Join(ev.Names, ", ")
		}
		return []Effect{RefreshProfiles{}}

	case OperationFailed:
		if ev.Err == nil {
			return nil
		}
		s.Err = fmt.Errorf("%s: %w", ev.Op, ev.Err)
		// A failed preview start leaves nothing running, and so does an
		// attribute change whose preview restart failed.
		if ev.Op == OpStartPreview || ev.Op == OpMovePreview || errors.Is(ev.Err, model.ErrPreviewStopped) {
			s.Preview.Running = false
		}
		return nil
	case ErrorDismissed:
		s.Err = nil
		return nil
	}
	return nil
}

// Operation names used in OperationFailed
const (
	OpSetAttribute = "set attribute"
	OpStartPreview = "start preview"
	OpMovePreview  = "move preview"
	OpStopPreview  = "stop preview"
	OpCapture      = "capture"
	OpSave         = "save profile"
	OpLoad         = "load profile"
	OpDelete       = "delete profile"
	OpList         = "list profiles"
)

// isInput reports events that come straight from the user and are
// blocked by the error modal.
func isInput(ev Event) bool {
	switch ev.(type) {
	case SliderMoved, SpinboxChanged, ResetRequested, PreviewToggled, OffsetChanged,
		TakePictureRequested, SaveRequested, LoadRequested, DeleteRequested, DeleteConfirmed:
		return true
	}
	return false
}

func (s *State) setControl(p model.Parameter, v int) []Effect {
	if !p.IsValid() {
		return nil
	}
	v = p.Range().Clamp(v)
	c := &s.Controls[p]
	if c.Slider == v && c.Spin == v {
		return nil
	}
	c.Slider, c.Spin = v, v
	return []Effect{SetAttribute{Param: p, Value: v}}
}

func (s *State) applyParams(cp model.CameraParameters) []Effect {
	var effects []Effect
	for _, p := range model.Parameters {
		effects = append(effects, s.setControl(p, cp.Get(p))...)
	}
	return effects
}

func (s *State) loadProfile(ev ProfileLoaded) []Effect {
	if ev.Name == model.DefaultProfileName {
		s.Defaults = ev.Profile.CameraParameters
	}
	s.CurrentProfile = ev.Name
	s.Output = ev.Profile.OutputSettings.Merge(s.BaseOutput)
	s.Status = "loaded profile " + ev.Name
	return s.applyParams(ev.Profile.CameraParameters)
}

func (s *State) takePicture(ev TakePictureRequested) []Effect {
	if !s.TakePictureEnabled {
		return nil
	}
	req, err := model.NewCaptureRequest(s.Output, s.Controls[model.Quality].Value(), ev.At)
	if err != nil {
		s.Err = err
		return nil
	}
	req.Profile = s.CurrentProfile
	s.TakePictureEnabled = false
	s.Capturing = true
	s.Status = "capturing " + req.Path
	return []Effect{StartCapture{Request: req}}
}
