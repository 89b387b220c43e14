package model

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"
)

func TestParseProfileName(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr error
	}{
		{"outdoor", "outdoor", nil},
		{"  night shot ", "night shot", nil},
		{"", "", ErrEmptyName},
		{"   ", "", ErrEmptyName},
		{"default", "", ErrReservedName},
		{"Default", "", ErrReservedName},
		{"a/b", "", ErrInvalidName},
		{`a\b`, "", ErrInvalidName},
		{".hidden", "", ErrInvalidName},
	}

	for _, tt := range tests {
		got, err := ParseProfileName(tt.input)
		if tt.wantErr != nil {
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ParseProfileName(%q) error = %v, want %v", tt.input, err, tt.wantErr)
			}
			if !IsValidation(err) {
				t.Errorf("ParseProfileName(%q) error should be a ValidationError, got %T", tt.input, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseProfileName(%q) unexpected error: %v", tt.input, err)
			continue
		}
		if got.String() != tt.want {
			t.Errorf("ParseProfileName(%q) = %q, want %q", tt.input, got, tt.want)
		}
		if got.IsDefault() {
			t.Errorf("ParseProfileName(%q) should never yield the default profile", tt.input)
		}
	}
}

func TestLookupProfileName_AllowsDefault(t *testing.T) {
	n, err := LookupProfileName("default")
	if err != nil {
		t.Fatalf("LookupProfileName(default) error: %v", err)
	}
	if !n.IsDefault() {
		t.Error("expected the reserved default profile")
	}
	if n != DefaultProfile {
		t.Errorf("got %+v, want DefaultProfile", n)
	}
}

func TestDefaultParameters(t *testing.T) {
	p := DefaultParameters()
	if p.Brightness != 50 {
		t.Errorf("Brightness = %d, want 50", p.Brightness)
	}
	if p.ISO != 0 {
		t.Errorf("ISO = %d, want 0", p.ISO)
	}
	if p.Quality != 85 {
		t.Errorf("Quality = %d, want 85", p.Quality)
	}
	if err := p.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestCameraParameters_GetSet(t *testing.T) {
	var cp CameraParameters
	for i, p := range Parameters {
		cp.Set(p, i+1)
	}
	for i, p := range Parameters {
		if got := cp.Get(p); got != i+1 {
			t.Errorf("Get(%s) = %d, want %d", p, got, i+1)
		}
	}
}

func TestCameraParameters_ValidateRejectsOutOfRange(t *testing.T) {
	cp := DefaultParameters()
	cp.Brightness = 101
	if err := cp.Validate(); err == nil {
		t.Error("brightness 101 should fail validation")
	}
	cp = DefaultParameters()
	cp.Contrast = -101
	if err := cp.Validate(); err == nil {
		t.Error("contrast -101 should fail validation")
	}
}

func TestRange_Clamp(t *testing.T) {
	r := Brightness.Range()
	if got := r.Clamp(-5); got != 0 {
		t.Errorf("Clamp(-5) = %d, want 0", got)
	}
	if got := r.Clamp(150); got != 100 {
		t.Errorf("Clamp(150) = %d, want 100", got)
	}
	if got := r.Clamp(42); got != 42 {
		t.Errorf("Clamp(42) = %d, want 42", got)
	}
}

func TestNewCaptureRequest(t *testing.T) {
	at := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)
	req, err := NewCaptureRequest(OutputSettings{Directory: "/tmp/pics", Filename: "garden", Format: "jpg"}, 90, at)
	if err != nil {
		t.Fatalf("NewCaptureRequest error: %v", err)
	}
	want := filepath.Join("/tmp/pics", "garden_2024_03_09T14_05_07.jpeg")
	if req.Path != want {
		t.Errorf("Path = %q, want %q", req.Path, want)
	}
	if req.Format != FormatJPEG {
		t.Errorf("Format = %q, want %q", req.Format, FormatJPEG)
	}
	if req.Quality != 90 {
		t.Errorf("Quality = %d, want 90", req.Quality)
	}
}

func TestNewCaptureRequest_Rejects(t *testing.T) {
	at := time.Now()
	if _, err := NewCaptureRequest(OutputSettings{Filename: "x", Format: "tiff"}, 80, at); !IsOutput(err) {
		t.Errorf("tiff: err = %v, want OutputError", err)
	}
	_, err := NewCaptureRequest(OutputSettings{Format: "png"}, 80, at)
	if !IsOutput(err) {
		t.Errorf("empty filename: err = %v, want OutputError", err)
	}
	if IsValidation(err) {
		t.Error("output problems are not profile name problems")
	}
}

func TestErrorKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&ValidationError{Name: "default", Err: ErrReservedName}, "Invalid profile"},
		{&OutputError{Err: errors.New("no filename")}, "Invalid output"},
		{fmt.Errorf("load: %w", &NotFoundError{Name: "x"}), "Not found"},
		{&ParseError{Path: "x.json", Err: errors.New("bad")}, "Corrupt profile"},
		{&DeviceError{Op: "capture", Err: errors.New("busy")}, "Camera error"},
		{errors.New("other"), "Error"},
	}
	for _, tt := range tests {
		if got := ErrorKind(tt.err); got != tt.want {
			t.Errorf("ErrorKind(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestOutputSettings_Merge(t *testing.T) {
	got := OutputSettings{Filename: "night"}.Merge(OutputSettings{Directory: "/d", Filename: "image", Format: "png"})
	want := OutputSettings{Directory: "/d", Filename: "night", Format: "png"}
	if got != want {
		t.Errorf("Merge = %+v, want %+v", got, want)
	}
}
