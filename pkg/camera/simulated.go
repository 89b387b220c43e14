package camera

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"

	"git.sr.ht/~sbinet/gg"
	"github.com/Dicklesworthstone/picam/pkg/model"
	"golang.org/x/image/bmp"
	"golang.org/x/image/font/basicfont"
)

// Simulated is a camera that renders a synthetic test card. It applies
// the same range checks as the hardware so the UI behaves identically on
// machines without a camera module.
type Simulated struct {
	settings   Settings
	params     model.CameraParameters
	previewing bool
	window     model.Window
	captures   int
	closed     bool
}

// NewSimulated returns a simulated camera at default parameters
func NewSimulated(s Settings) *Simulated {
	return &Simulated{
		settings: s.withDefaults(),
		params:   model.DefaultParameters(),
	}
}

// SetAttribute implements Device
func (s *Simulated) SetAttribute(p model.Parameter, v int) error {
	if err := checkAttribute(p, v); err != nil {
		return err
	}
	s.params.Set(p, v)
	return nil
}

// Parameters implements Device
func (s *Simulated) Parameters() model.CameraParameters {
	return s.params
}

// StartPreview implements Device
func (s *Simulated) StartPreview(win model.Window) error {
	if s.closed {
		return &model.DeviceError{Op: "start preview", Err: fmt.Errorf("camera closed")}
	}
	s.previewing = true
	s.window = win
	return nil
}

// MovePreview implements Device
func (s *Simulated) MovePreview(win model.Window) error {
	s.window = win
	return nil
}

// StopPreview implements Device
func (s *Simulated) StopPreview() error {
	s.previewing = false
	return nil
}

// Previewing reports whether the preview is running and where
func (s *Simulated) Previewing() (bool, model.Window) {
	return s.previewing, s.window
}

// Captures returns how many images were written
func (s *Simulated) Captures() int {
	return s.captures
}

// Capture implements Device
func (s *Simulated) Capture(req model.CaptureRequest) error {
	if s.closed {
		return &model.DeviceError{Op: "capture", Err: fmt.Errorf("camera closed")}
	}
	format, ok := model.NormalizeFormat(req.Format)
	if !ok {
		return &model.DeviceError{Op: "capture", Err: fmt.Errorf("unsupported format %q", req.Format)}
	}
	quality := req.Quality
	if quality == 0 {
		quality = s.params.Quality
	}

	img := s.Render()

	f, err := os.Create(req.Path)
	if err != nil {
		return &model.DeviceError{Op: "capture", Err: err}
	}
	if err := encode(f, img, format, quality); err != nil {
		f.Close()
		return &model.DeviceError{Op: "capture", Err: err}
	}
	if err := f.Close(); err != nil {
		return &model.DeviceError{Op: "capture", Err: err}
	}
	s.captures++
	return nil
}

// Close implements Device
func (s *Simulated) Close() error {
	s.previewing = false
	s.closed = true
	return nil
}

// Render draws the current test card
func (s *Simulated) Render() image.Image {
	w, h := s.settings.Width, s.settings.Height
	dc := gg.NewContext(w, h)

	sky, ground := s.palette()
	grad := gg.NewLinearGradient(0, 0, 0, float64(h))
	grad.AddColorStop(0, sky)
	grad.AddColorStop(1, ground)
	dc.SetFillStyle(grad)
	dc.DrawRectangle(0, 0, float64(w), float64(h))
	dc.Fill()

	// Grey ramp along the bottom shows contrast changes.
	const steps = 8
	bw := float64(w) / steps
	for i := 0; i < steps; i++ {
		v := s.adjust(float64(i) / (steps - 1))
		dc.SetRGB(v, v, v)
		dc.DrawRectangle(float64(i)*bw, float64(h)-40, bw, 40)
		dc.Fill()
	}

	dc.SetFontFace(basicfont.Face7x13)
	dc.SetRGB(1, 1, 1)
	p := s.params
	dc.DrawString(fmt.Sprintf("brightness %d  contrast %d  saturation %d", p.Brightness, p.Contrast, p.Saturation), 10, 20)
	dc.DrawString(fmt.Sprintf("sharpness %d  iso %d  quality %d", p.Sharpness, p.ISO, p.Quality), 10, 36)

	return dc.Image()
}

func (s *Simulated) palette() (color.Color, color.Color) {
	tint := func(r, g, b float64) color.Color {
		gray := (r + g + b) / 3
		sat := 1 + float64(s.params.Saturation)/100
		r, g, b = gray+(r-gray)*sat, gray+(g-gray)*sat, gray+(b-gray)*sat
		return color.RGBA{R: to8(s.adjust(r)), G: to8(s.adjust(g)), B: to8(s.adjust(b)), A: 255}
	}
	return tint(0.35, 0.55, 0.85), tint(0.45, 0.60, 0.30)
}

// adjust applies contrast around mid-grey, then brightness as an offset
func (s *Simulated) adjust(v float64) float64 {
	con := 1 + float64(s.params.Contrast)/100
	v = (v-0.5)*con + 0.5
	v += float64(s.params.Brightness-50) / 100
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

func to8(v float64) uint8 {
	return uint8(v*255 + 0.5)
}

func encode(w io.Writer, img image.Image, format string, quality int) error {
	switch format {
	case model.FormatJPEG:
		return jpeg.Encode(w, img, &jpeg.Options{Quality: quality})
	case model.FormatPNG:
		return png.Encode(w, img)
	case model.FormatGIF:
		return gif.Encode(w, img, nil)
	case model.FormatBMP:
		return bmp.Encode(w, img)
	}
	return fmt.Errorf("unsupported format %q", format)
}
