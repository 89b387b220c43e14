package model

import (
	"fmt"
	"strings"
)

// Parameter identifies one adjustable camera attribute
type Parameter int

const (
	Brightness Parameter = iota
	Sharpness
	Contrast
	Saturation
	ISO
	Quality
)

// NumParameters is the size of the fixed parameter set
const NumParameters = 6

// Parameters lists every parameter in display order
var Parameters = [NumParameters]Parameter{Brightness, Sharpness, Contrast, Saturation, ISO, Quality}

// Range is the hardware-defined legal interval of a parameter, inclusive
type Range struct {
	Min     int
	Max     int
	Default int
}

// Contains reports whether v lies within the range
func (r Range) Contains(v int) bool {
	return v >= r.Min && v <= r.Max
}

// Clamp pulls v into the range
func (r Range) Clamp(v int) int {
	if v < r.Min {
		return r.Min
	}
	if v > r.Max {
		return r.Max
	}
	return v
}

// Ranges mirror the picamera attribute limits. ISO 0 means automatic.
var ranges = [NumParameters]Range{
	Brightness: {Min: 0, Max: 100, Default: 50},
	Sharpness:  {Min: -100, Max: 100, Default: 0},
	Contrast:   {Min: -100, Max: 100, Default: 0},
	Saturation: {Min: -100, Max: 100, Default: 0},
	ISO:        {Min: 0, Max: 1600, Default: 0},
	Quality:    {Min: 1, Max: 100, Default: 85},
}

// Range returns the legal interval for the parameter
func (p Parameter) Range() Range {
	if !p.IsValid() {
		return Range{}
	}
	return ranges[p]
}

// IsValid returns true if p is one of the known parameters
func (p Parameter) IsValid() bool {
	return p >= Brightness && p <= Quality
}

// Key returns the JSON key used in profile files
func (p Parameter) Key() string {
	switch p {
	case Brightness:
		return "brightness"
	case Sharpness:
		return "sharpness"
	case Contrast:
		return "contrast"
	case Saturation:
		return "saturation"
	case ISO:
		return "iso"
	case Quality:
		return "quality"
	default:
		return "unknown"
	}
}

// Label returns a human-readable name
func (p Parameter) Label() string {
	switch p {
	case ISO:
		return "ISO"
	default:
		k := p.Key()
		return strings.ToUpper(k[:1]) + k[1:]
	}
}

func (p Parameter) String() string {
	return p.Key()
}

// CameraParameters holds one value for every parameter
type CameraParameters struct {
	Brightness int `json:"brightness"`
	Sharpness  int `json:"sharpness"`
	Contrast   int `json:"contrast"`
	Saturation int `json:"saturation"`
	ISO        int `json:"iso"`
	Quality    int `json:"quality"`
}

// DefaultParameters returns the values a freshly opened camera reports
func DefaultParameters() CameraParameters {
	var cp CameraParameters
	for _, p := range Parameters {
		cp.Set(p, p.Range().Default)
	}
	return cp
}

// Get returns the value of one parameter
func (cp CameraParameters) Get(p Parameter) int {
	switch p {
	case Brightness:
		return cp.Brightness
	case Sharpness:
		return cp.Sharpness
	case Contrast:
		return cp.Contrast
	case Saturation:
		return cp.Saturation
	case ISO:
		return cp.ISO
	case Quality:
		return cp.Quality
	}
	return 0
}

// Set assigns one parameter. Unknown parameters are ignored.
func (cp *CameraParameters) Set(p Parameter, v int) {
	switch p {
	case Brightness:
		cp.Brightness = v
	case Sharpness:
		cp.Sharpness = v
	case Contrast:
		cp.Contrast = v
	case Saturation:
		cp.Saturation = v
	case ISO:
		cp.ISO = v
	case Quality:
		cp.Quality = v
	}
}

// Validate checks every value against its hardware range
func (cp CameraParameters) Validate() error {
	for _, p := range Parameters {
		v := cp.Get(p)
		if r := p.Range(); !r.Contains(v) {
			return fmt.Errorf("%s %d outside [%d, %d]", p.Key(), v, r.Min, r.Max)
		}
	}
	return nil
}

// Window is a screen region for the live preview
type Window struct {
	X      int `json:"x" yaml:"x"`
	Y      int `json:"y" yaml:"y"`
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// Offset returns the window shifted by dx, dy
func (w Window) Offset(dx, dy int) Window {
	w.X += dx
	w.Y += dy
	return w
}

func (w Window) String() string {
	return fmt.Sprintf("%d,%d,%d,%d", w.X, w.Y, w.Width, w.Height)
}
