package model

import (
	"strings"
)

// DefaultProfileName is the reserved, always-present profile
const DefaultProfileName = "default"

// ProfileName is a validated profile identity. The zero value is invalid.
type ProfileName struct {
	name     string
	reserved bool
}

// DefaultProfile is the protected profile seeded from camera defaults
var DefaultProfile = ProfileName{name: DefaultProfileName, reserved: true}

// ParseProfileName validates a user-supplied profile name.
// It rejects empty names, the reserved "default" name and anything
// that cannot be used as a file stem.
func ParseProfileName(raw string) (ProfileName, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return ProfileName{}, &ValidationError{Name: raw, Err: ErrEmptyName}
	}
	if strings.EqualFold(name, DefaultProfileName) {
		return ProfileName{}, &ValidationError{Name: raw, Err: ErrReservedName}
	}
	if strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") || strings.ContainsRune(name, 0) {
		return ProfileName{}, &ValidationError{Name: raw, Err: ErrInvalidName}
	}
	return ProfileName{name: name}, nil
}

// LookupProfileName accepts any existing name including "default".
// Used for read-only operations.
func LookupProfileName(raw string) (ProfileName, error) {
	if strings.EqualFold(strings.TrimSpace(raw), DefaultProfileName) {
		return DefaultProfile, nil
	}
	return ParseProfileName(raw)
}

// IsDefault reports whether this is the reserved default profile
func (n ProfileName) IsDefault() bool {
	return n.reserved
}

func (n ProfileName) String() string {
	return n.name
}

// Image formats accepted for captures
const (
	FormatJPEG = "jpeg"
	FormatPNG  = "png"
	FormatBMP  = "bmp"
	FormatGIF  = "gif"
)

// NormalizeFormat maps aliases to a canonical format and reports support
func NormalizeFormat(f string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(f)) {
	case "jpeg", "jpg":
		return FormatJPEG, true
	case "png":
		return FormatPNG, true
	case "bmp":
		return FormatBMP, true
	case "gif":
		return FormatGIF, true
	}
	return "", false
}

// OutputSettings controls where captures are written
type OutputSettings struct {
	Directory string `json:"directory,omitempty" yaml:"directory"`
	Filename  string `json:"filename,omitempty" yaml:"filename"`
	Format    string `json:"format,omitempty" yaml:"format"`
}

// Merge fills empty fields from fallback
func (o OutputSettings) Merge(fallback OutputSettings) OutputSettings {
	if o.Directory == "" {
		o.Directory = fallback.Directory
	}
	if o.Filename == "" {
		o.Filename = fallback.Filename
	}
	if o.Format == "" {
		o.Format = fallback.Format
	}
	return o
}

// Profile is a named, persisted set of camera parameters
type Profile struct {
	CameraParameters
	OutputSettings
}

// NewProfile builds a profile with no output overrides
func NewProfile(params CameraParameters) Profile {
	return Profile{CameraParameters: params}
}
