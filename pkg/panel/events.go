package panel

import (
	"time"

	"github.com/Dicklesworthstone/picam/pkg/model"
)

// Event is something that happened: user input or a finished operation
type Event interface{ event() }

// SliderMoved is a slider drag or arrow-key nudge
type SliderMoved struct {
	Param model.Parameter
	Value int
}

// SpinboxChanged is a value typed into a spinbox
type SpinboxChanged struct {
	Param model.Parameter
	Value int
}

// ResetRequested restores the default profile's values
type ResetRequested struct{}

// PreviewToggled starts or stops the preview
type PreviewToggled struct{}

// OffsetChanged moves the preview window relative to its configured origin
type OffsetChanged struct {
	X, Y int
}

// FocusLost is sent when the terminal loses focus
type FocusLost struct{}

// Minimized is sent before the program suspends
type Minimized struct{}

// TakePictureRequested asks for a capture stamped with At
type TakePictureRequested struct {
	At time.Time
}

// CaptureFinished is the worker's completion signal
type CaptureFinished struct {
	Path string
	Err  error
}

// SaveRequested saves the current controls under Name
type SaveRequested struct{ Name string }

// LoadRequested loads Name into the controls
type LoadRequested struct{ Name string }

// DeleteRequested starts a delete; it waits for DeleteConfirmed
type DeleteRequested struct{ Name string }

// DeleteConfirmed answers the pending delete question
type DeleteConfirmed struct{ Yes bool }

// ProfileLoaded carries a profile read from the store
type ProfileLoaded struct {
	Name    string
	Profile model.Profile
}

// ProfileSaved reports a completed save
type ProfileSaved struct{ Name string }

// ProfileDeleted reports a completed delete
type ProfileDeleted struct{ Name string }

// ProfilesListed carries the current profile names
type ProfilesListed struct{ Names []string }

// ProfilesChanged is sent when profile files change on disk
type ProfilesChanged struct{ Names []string }

// OperationFailed reports an error from any effect
type OperationFailed struct {
	Op  string
	Err error
}

// ErrorDismissed closes the error modal
type ErrorDismissed struct{}

func (SliderMoved) event()          {}
func (SpinboxChanged) event()       {}
func (ResetRequested) event()       {}
func (PreviewToggled) event()       {}
func (OffsetChanged) event()        {}
func (FocusLost) event()            {}
func (Minimized) event()            {}
func (TakePictureRequested) event() {}
func (CaptureFinished) event()      {}
func (SaveRequested) event()        {}
func (LoadRequested) event()        {}
func (DeleteRequested) event()      {}
func (DeleteConfirmed) event()      {}
func (ProfileLoaded) event()        {}
func (ProfileSaved) event()         {}
func (ProfileDeleted) event()       {}
func (ProfilesListed) event()       {}
func (ProfilesChanged) event()      {}
func (OperationFailed) event()      {}
func (ErrorDismissed) event()       {}

// Effect is work the caller must perform. Results come back as Events.
type Effect interface{ effect() }

// SetAttribute pushes one parameter to the camera
type SetAttribute struct {
	Param model.Parameter
	Value int
}

// StartPreview opens the preview in Window
type StartPreview struct{ Window model.Window }

// StopPreview closes the preview
type StopPreview struct{}

// MovePreview relocates a running preview
type MovePreview struct{ Window model.Window }

// StartCapture hands a request to the capture worker
type StartCapture struct{ Request model.CaptureRequest }

// SaveProfile writes Profile under Name
type SaveProfile struct {
	Name    string
	Profile model.Profile
}

// LoadProfile reads Name from the store
type LoadProfile struct{ Name string }

// DeleteProfile removes Name; the user has already confirmed
type DeleteProfile struct{ Name string }

// RefreshProfiles re-lists the store
type RefreshProfiles struct{}

func (SetAttribute) effect()    {}
func (StartPreview) effect()    {}
func (StopPreview) effect()     {}
func (MovePreview) effect()     {}
func (StartCapture) effect()    {}
func (SaveProfile) effect()     {}
func (LoadProfile) effect()     {}
func (DeleteProfile) effect()   {}
func (RefreshProfiles) effect() {}
