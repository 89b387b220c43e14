package model

import (
	"errors"
	"fmt"
)

// Sentinel causes carried inside the typed errors below
var (
	ErrEmptyName    = errors.New("profile name cannot be empty")
	ErrReservedName = errors.New("profile name \"default\" is reserved")
	ErrInvalidName  = errors.New("profile name cannot contain path separators or start with a dot")

	// ErrPreviewStopped marks a device error after which no preview runs.
	ErrPreviewStopped = errors.New("preview stopped")
)

// ValidationError reports a bad or reserved profile name
type ValidationError struct {
	Name string
	Err  error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid profile %q: %v", e.Name, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// OutputError reports output settings a capture cannot be written with
type OutputError struct {
	Err error
}

func (e *OutputError) Error() string {
	return fmt.Sprintf("invalid output settings: %v", e.Err)
}

func (e *OutputError) Unwrap() error { return e.Err }

// NotFoundError reports a missing profile or file
type NotFoundError struct {
	Name string
	Path string
}

func (e *NotFoundError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("profile %q not found at %s", e.Name, e.Path)
	}
	return fmt.Sprintf("profile %q not found", e.Name)
}

// DeviceError reports that the camera rejected a parameter or a capture failed
type DeviceError struct {
	Op  string
	Err error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("camera %s: %v", e.Op, e.Err)
}

func (e *DeviceError) Unwrap() error { return e.Err }

// ParseError reports a profile file that exists but cannot be decoded
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("corrupt profile %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// IsValidation reports whether err is or wraps a ValidationError
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsOutput reports whether err is or wraps an OutputError
func IsOutput(err error) bool {
	var oe *OutputError
	return errors.As(err, &oe)
}

// IsNotFound reports whether err is or wraps a NotFoundError
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsDevice reports whether err is or wraps a DeviceError
func IsDevice(err error) bool {
	var de *DeviceError
	return errors.As(err, &de)
}

// IsParse reports whether err is or wraps a ParseError
func IsParse(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// ErrorKind returns a short label for the error class, used in modal titles
func ErrorKind(err error) string {
	switch {
	case IsValidation(err):
		return "Invalid profile"
	case IsOutput(err):
		return "Invalid output"
	case IsNotFound(err):
		return "Not found"
	case IsParse(err):
		return "Corrupt profile"
	case IsDevice(err):
		return "Camera error"
	default:
		return "Error"
	}
}
