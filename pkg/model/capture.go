package model

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"
)

// TimestampLayout formats capture timestamps as YYYY_MM_DDTHH_MM_SS
const TimestampLayout = "2006_01_02T15_04_05"

// CaptureRequest describes one still image to take
type CaptureRequest struct {
	Path    string
	Format  string
	Quality int
	Profile string // profile the parameters came from, informational
}

// NewCaptureRequest builds <dir>/<filename>_<timestamp>.<format>
func NewCaptureRequest(out OutputSettings, quality int, at time.Time) (CaptureRequest, error) {
	format, ok := NormalizeFormat(out.Format)
	if !ok {
		return CaptureRequest{}, &OutputError{Err: fmt.Errorf("unsupported image format %q", out.Format)}
	}
	if out.Filename == "" {
		return CaptureRequest{}, &OutputError{Err: errors.New("capture filename cannot be empty")}
	}
	name := fmt.Sprintf("%s_%s.%s", out.Filename, at.Format(TimestampLayout), format)
	return CaptureRequest{
		Path:    filepath.Join(out.Directory, name),
		Format:  format,
		Quality: quality,
	}, nil
}

// Capture is a journal entry for one capture attempt
type Capture struct {
	ID         int64            `json:"id"`
	Path       string           `json:"path"`
	Format     string           `json:"format"`
	Quality    int              `json:"quality"`
	Profile    string           `json:"profile"`
	Params     CameraParameters `json:"params"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
	Error      string           `json:"error,omitempty"`
}

// Duration returns the wall time from request to completion
func (c Capture) Duration() time.Duration {
	if c.FinishedAt.IsZero() {
		return 0
	}
	return c.FinishedAt.Sub(c.StartedAt)
}

// Succeeded reports whether the capture produced an image
func (c Capture) Succeeded() bool {
	return c.Error == ""
}
