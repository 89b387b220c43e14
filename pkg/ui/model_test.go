package ui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Dicklesworthstone/picam/pkg/capture"
	"github.com/Dicklesworthstone/picam/pkg/history"
	"github.com/Dicklesworthstone/picam/pkg/model"
	"github.com/Dicklesworthstone/picam/pkg/panel"
	"github.com/Dicklesworthstone/picam/pkg/profile"
	tea "github.com/charmbracelet/bubbletea"
)

// keyMsg creates a tea.KeyMsg for testing
func keyMsg(key string) tea.KeyMsg {
	switch key {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "ctrl+z":
		return tea.KeyMsg{Type: tea.KeyCtrlZ}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
}

type fakeCamera struct {
	mu     sync.Mutex
	calls  []string
	attrs  map[model.Parameter]int
	err    error
	delays []time.Duration // consumed one per SetAttribute
}

func (c *fakeCamera) record(call string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, call)
	return c.err
}

func (c *fakeCamera) SetAttribute(ctx context.Context, p model.Parameter, v int) error {
	c.mu.Lock()
	var delay time.Duration
	if len(c.delays) > 0 {
		delay, c.delays = c.delays[0], c.delays[1:]
	}
	c.mu.Unlock()
	time.Sleep(delay)

	c.mu.Lock()
	if c.attrs == nil {
		c.attrs = map[model.Parameter]int{}
	}
	c.attrs[p] = v
	c.mu.Unlock()
	return c.record("set " + p.Key())
}

func (c *fakeCamera) attr(p model.Parameter) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attrs[p]
}

func (c *fakeCamera) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}

func (c *fakeCamera) StartPreview(ctx context.Context, win model.Window) error {
	return c.record("start " + win.String())
}

func (c *fakeCamera) MovePreview(ctx context.Context, win model.Window) error {
	return c.record("move " + win.String())
}

func (c *fakeCamera) StopPreview(ctx context.Context) error {
	return c.record("stop")
}

type fakeWorker struct {
	requests []model.CaptureRequest
	err      error
}

func (w *fakeWorker) Start(ctx context.Context, req model.CaptureRequest) (<-chan capture.Result, error) {
	w.requests = append(w.requests, req)
	ch := make(chan capture.Result, 1)
	ch <- capture.Result{Request: req, Err: w.err}
	close(ch)
	return ch, nil
}

type fakeJournal struct{ reads int }

func (j *fakeJournal) Recent(limit int) ([]model.Capture, error) {
	j.reads++
	return []model.Capture{{Path: "/tmp/a.jpeg"}}, nil
}

func (j *fakeJournal) Summary() (history.Summary, error) {
	return history.Summary{Total: 1}, nil
}

type harness struct {
	m       Model
	cam     *fakeCamera
	worker  *fakeWorker
	store   *profile.Store
	journal *fakeJournal
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	store, err := profile.NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	h := &harness{cam: &fakeCamera{}, worker: &fakeWorker{}, store: store, journal: &fakeJournal{}}
	out := model.OutputSettings{Directory: t.TempDir(), Filename: "shot", Format: "jpeg"}
	state := panel.New(model.NewProfile(model.DefaultParameters()), model.Window{Width: 320, Height: 240}, out)
	h.m = NewModel(state, Deps{Camera: h.cam, Worker: h.worker, Profiles: store, Journal: h.journal})
	h.m.now = func() time.Time { return time.Date(2024, 3, 9, 14, 5, 7, 0, time.Local) }
	h.m.copyClipboard = func(string) error { return nil }
	return h
}

// asCmds unpacks tea.Sequence's unexported message type
func asCmds(msg tea.Msg) ([]tea.Cmd, bool) {
	v := reflect.ValueOf(msg)
	if v.Kind() != reflect.Slice || v.Type().Elem() != reflect.TypeOf(tea.Cmd(nil)) {
		return nil, false
	}
	cmds := make([]tea.Cmd, v.Len())
	for i := range cmds {
		cmds[i] = v.Index(i).Interface().(tea.Cmd)
	}
	return cmds, true
}

// isFormMsg reports huh's internal messages (field updates, next field,
// next group). Cursor blinks come from bubbles and are dropped.
func isFormMsg(msg tea.Msg) bool {
	return strings.HasPrefix(reflect.TypeOf(msg).PkgPath(), "github.com/charmbracelet/huh")
}

// run executes cmd and feeds every resulting message back into the model
func (h *harness) run(cmd tea.Cmd) {
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case nil:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case eventMsg, historyMsg, statusMsg, deviceDoneMsg, captureStartedMsg:
			next, more := h.m.Update(msg)
			h.m = next.(Model)
			queue = append(queue, more)
		default:
			if cmds, ok := asCmds(msg); ok {
				queue = append(queue, cmds...)
			} else if h.m.prompt != nil && isFormMsg(msg) {
				next, more := h.m.Update(msg)
				h.m = next.(Model)
				queue = append(queue, more)
			}
		}
	}
}

func (h *harness) send(msg tea.Msg) {
	next, cmd := h.m.Update(msg)
	h.m = next.(Model)
	h.run(cmd)
}

func (h *harness) press(keys ...string) {
	for _, k := range keys {
		h.send(keyMsg(k))
	}
}

func TestInit_ListsProfiles(t *testing.T) {
	h := newHarness(t)
	if _, err := h.store.EnsureDefault(model.DefaultParameters()); err != nil {
		t.Fatal(err)
	}
	h.run(h.m.Init())
	if got := h.m.State().Profiles; !reflect.DeepEqual(got, []string{"default"}) {
		t.Errorf("Profiles = %v", got)
	}
	if h.journal.reads != 1 {
		t.Errorf("history read %d times, want 1", h.journal.reads)
	}
}

func TestSliderKeySetsCameraAttribute(t *testing.T) {
	h := newHarness(t)
	h.press("right", "L")
	if got := h.cam.attrs[model.Brightness]; got != 61 {
		t.Errorf("camera brightness = %d, want 61", got)
	}
	c := h.m.State().Controls[model.Brightness]
	if c.Slider != 61 || c.Spin != 61 {
		t.Errorf("control = %+v", c)
	}
}

func TestSpinboxEntry(t *testing.T) {
	h := newHarness(t)
	h.press("down", "down", "down", "down") // iso
	h.press("2", "0", "0")
	if h.m.editing != "200" {
		t.Fatalf("editing = %q", h.m.editing)
	}
	h.press("enter")
	if got := h.m.State().Controls[model.ISO].Value(); got != 200 {
		t.Errorf("iso = %d, want 200", got)
	}
	if h.cam.attrs[model.ISO] != 200 {
		t.Errorf("camera iso = %d", h.cam.attrs[model.ISO])
	}
	if h.m.editing != "" {
		t.Error("editing buffer should clear after enter")
	}
}

func TestTakePictureDisablesUntilDone(t *testing.T) {
	h := newHarness(t)

	next, cmd := h.m.Update(keyMsg("t"))
	h.m = next.(Model)
	if h.m.State().TakePictureEnabled {
		t.Error("take picture should be disabled as soon as it is pressed")
	}
	if !strings.Contains(h.m.View(), "CAPTURING") {
		t.Error("view should show the capture in progress")
	}

	h.run(cmd)
	if !h.m.State().TakePictureEnabled {
		t.Error("take picture should be re-enabled after completion")
	}
	if len(h.worker.requests) != 1 {
		t.Fatalf("worker saw %d requests", len(h.worker.requests))
	}
	if !strings.HasSuffix(h.m.State().LastCapture, "shot_2024_03_09T14_05_07.jpeg") {
		t.Errorf("LastCapture = %q", h.m.State().LastCapture)
	}
	if h.journal.reads != 1 {
		t.Errorf("history should refresh after a capture, reads = %d", h.journal.reads)
	}
}

func TestCaptureFailureShowsModalAndReenables(t *testing.T) {
	h := newHarness(t)
	h.worker.err = &model.DeviceError{Op: "capture", Err: errors.New("out of memory")}
	h.press("t")

	st := h.m.State()
	if !st.TakePictureEnabled || !st.Modal() {
		t.Errorf("enabled=%v modal=%v", st.TakePictureEnabled, st.Modal())
	}
	if !strings.Contains(h.m.View(), "Camera error") {
		t.Errorf("modal should name the error kind")
	}
	h.press("x")
	if h.m.State().Modal() {
		t.Error("any key should dismiss the modal")
	}
}

func TestBlurStopsPreview(t *testing.T) {
	h := newHarness(t)
	h.press("p", "d")
	h.send(tea.BlurMsg{})
	want := []string{"start 0,0,320,240", "move 10,0,320,240", "stop"}
	if !reflect.DeepEqual(h.cam.calls, want) {
		t.Errorf("camera calls = %v, want %v", h.cam.calls, want)
	}
	if h.m.State().Preview.Running {
		t.Error("preview still marked running")
	}
}

func TestSuspendStopsPreviewFirst(t *testing.T) {
	h := newHarness(t)
	h.press("p")
	_, cmd := h.m.Update(keyMsg("ctrl+z"))
	if cmd == nil {
		t.Fatal("ctrl+z should return a command")
	}
	h.run(cmd)
	if got := h.cam.calls[len(h.cam.calls)-1]; got != "stop" {
		t.Errorf("last camera call = %q, want stop", got)
	}
}

func TestPreviewFailureShowsModal(t *testing.T) {
	h := newHarness(t)
	h.cam.err = &model.DeviceError{Op: "preview", Err: errors.New("no camera")}
	h.press("p")
	if !h.m.State().Modal() || h.m.State().Preview.Running {
		t.Errorf("modal=%v running=%v", h.m.State().Modal(), h.m.State().Preview.Running)
	}
}

func TestSaveResetLoadScenario(t *testing.T) {
	h := newHarness(t)
	h.send(eventMsg{panel.SliderMoved{Param: model.Brightness, Value: 60}})
	h.send(eventMsg{panel.SpinboxChanged{Param: model.ISO, Value: 200}})
	h.send(eventMsg{panel.SaveRequested{Name: "outdoor"}})

	if !h.store.Exists("outdoor") {
		t.Fatal("outdoor profile not written")
	}
	if got := h.m.State().Profiles; !reflect.DeepEqual(got, []string{"outdoor"}) {
		t.Errorf("profiles = %v", got)
	}

	h.press("r")
	if h.m.State().Controls[model.Brightness].Value() != 50 {
		t.Fatal("reset did not restore brightness")
	}

	// Load through the selector
	h.press("o", "o", "u", "t", "enter")
	st := h.m.State()
	if st.Controls[model.Brightness].Value() != 60 || st.Controls[model.ISO].Value() != 200 {
		t.Errorf("after load: %+v", st.Params())
	}
	if h.cam.attrs[model.ISO] != 200 {
		t.Errorf("camera iso = %d after load", h.cam.attrs[model.ISO])
	}
}

func TestLoadCorruptProfileShowsParseError(t *testing.T) {
	h := newHarness(t)
	if err := h.store.Save("night", model.NewProfile(model.DefaultParameters())); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(h.store.Dir(), "night.json"), []byte("{broken"), 0644); err != nil {
		t.Fatal(err)
	}
	h.send(eventMsg{panel.LoadRequested{Name: "night"}})
	if !model.IsParse(h.m.State().Err) {
		t.Errorf("Err = %v, want ParseError", h.m.State().Err)
	}
	if !strings.Contains(h.m.View(), "Corrupt profile") {
		t.Error("modal should show the parse error")
	}
}

func TestDeleteAsksAndCanBeDeclined(t *testing.T) {
	h := newHarness(t)
	if err := h.store.Save("outdoor", model.NewProfile(model.DefaultParameters())); err != nil {
		t.Fatal(err)
	}
	h.run(h.m.Init())

	h.press("D", "enter")
	if h.m.prompt == nil || h.m.prompt.kind != formDelete {
		t.Fatal("delete should open a confirmation prompt")
	}
	h.press("esc")
	if h.m.prompt != nil || h.m.State().PendingDelete != "" {
		t.Error("esc should close the prompt and clear the pending delete")
	}
	if !h.store.Exists("outdoor") {
		t.Fatal("declined delete removed the file")
	}

	h.press("D", "enter")
	h.send(eventMsg{panel.DeleteConfirmed{Yes: true}})
	if h.store.Exists("outdoor") {
		t.Error("confirmed delete left the file")
	}
	if len(h.m.State().Profiles) != 0 {
		t.Errorf("profiles = %v after delete", h.m.State().Profiles)
	}
}

func TestDeleteSelectorHidesDefault(t *testing.T) {
	sel := NewProfileSelectorModel([]string{"default", "outdoor"}, SelectDelete, DefaultTheme(nil))
	if sel.ItemCount() != 1 {
		t.Errorf("ItemCount = %d, want 1", sel.ItemCount())
	}
	sel.Update("enter")
	if sel.Selected() != "outdoor" {
		t.Errorf("Selected = %q", sel.Selected())
	}
}

func TestCopyLastCapture(t *testing.T) {
	h := newHarness(t)
	var copied string
	h.m.copyClipboard = func(s string) error { copied = s; return nil }

	h.press("c")
	if h.m.State().Status != "nothing captured yet" {
		t.Errorf("status = %q", h.m.State().Status)
	}
	h.press("t", "c")
	if copied == "" || copied != h.m.State().LastCapture {
		t.Errorf("copied %q, last capture %q", copied, h.m.State().LastCapture)
	}
}

func TestHelpOverlayAnyKeyCloses(t *testing.T) {
	h := newHarness(t)
	h.press("?")
	if !h.m.help.IsVisible() {
		t.Fatal("help not shown")
	}
	h.press("right")
	if h.m.help.IsVisible() {
		t.Error("help should close on any key")
	}
	if h.m.State().Controls[model.Brightness].Value() != 50 {
		t.Error("key that closed help should not reach the controls")
	}
}

func TestProfilesChangedRefreshes(t *testing.T) {
	h := newHarness(t)
	if err := h.store.Save("garden", model.NewProfile(model.DefaultParameters())); err != nil {
		t.Fatal(err)
	}
	h.send(ProfilesChangedMsg{})
	if got := h.m.State().Profiles; !reflect.DeepEqual(got, []string{"garden"}) {
		t.Errorf("profiles = %v", got)
	}
}

func TestSaveFormTypedName(t *testing.T) {
	h := newHarness(t)
	h.press("right", "S")
	if h.m.prompt == nil || h.m.prompt.kind != formSave {
		t.Fatal("S should open the save prompt")
	}
	h.press("outdoor", "enter")

	if h.m.prompt != nil {
		t.Error("prompt should close after enter")
	}
	if !h.store.Exists("outdoor") {
		t.Fatal("outdoor profile not written")
	}
	p, err := h.store.Load("outdoor")
	if err != nil {
		t.Fatal(err)
	}
	if p.Brightness != 51 {
		t.Errorf("saved brightness = %d, want 51", p.Brightness)
	}
	if st := h.m.State(); st.CurrentProfile != "outdoor" || st.Modal() {
		t.Errorf("current=%q modal=%v", st.CurrentProfile, st.Modal())
	}
}

func TestSaveFormBadNameShowsModal(t *testing.T) {
	tests := []struct {
		name  string
		keys  []string
		files int
	}{
		{"reserved", []string{"default", "enter"}, 0},
		{"reserved any case", []string{"DEFAULT", "enter"}, 0},
		{"empty", []string{"enter"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.press("S")
			h.press(tt.keys...)

			if h.m.prompt != nil {
				t.Error("prompt should close so the modal can show")
			}
			st := h.m.State()
			if !st.Modal() || !model.IsValidation(st.Err) {
				t.Fatalf("Err = %v, want a validation error in the modal", st.Err)
			}
			if !strings.Contains(h.m.View(), "Invalid profile") {
				t.Error("modal should name the error kind")
			}
			names, err := h.store.List()
			if err != nil {
				t.Fatal(err)
			}
			if len(names) != tt.files {
				t.Errorf("store holds %v", names)
			}
		})
	}
}

func TestDeleteProfileGoneFromDisk(t *testing.T) {
	h := newHarness(t)
	if err := h.store.Save("outdoor", model.NewProfile(model.DefaultParameters())); err != nil {
		t.Fatal(err)
	}
	h.run(h.m.Init())
	if err := os.Remove(filepath.Join(h.store.Dir(), "outdoor.json")); err != nil {
		t.Fatal(err)
	}

	h.press("D", "enter")
	if h.m.prompt != nil {
		t.Fatal("no confirmation should be asked for a profile that is gone")
	}
	st := h.m.State()
	if !model.IsNotFound(st.Err) {
		t.Errorf("Err = %v, want not found", st.Err)
	}
	if st.PendingDelete != "" {
		t.Errorf("PendingDelete = %q", st.PendingDelete)
	}
	if len(st.Profiles) != 0 {
		t.Errorf("profiles = %v, want the list re-read from disk", st.Profiles)
	}
}

func TestProfilesChangedNamesInStatus(t *testing.T) {
	h := newHarness(t)
	h.send(ProfilesChangedMsg{Names: []string{"night", "outdoor"}})
	if got := h.m.State().Status; got != "changed on disk: night, outdoor" {
		t.Errorf("status = %q", got)
	}
}

func TestPreviewLostWhenRestartFails(t *testing.T) {
	h := newHarness(t)
	h.press("p")
	h.cam.err = &model.DeviceError{Op: "set brightness", Err: fmt.Errorf("%w: no camera", model.ErrPreviewStopped)}
	h.press("right")

	st := h.m.State()
	if st.Preview.Running {
		t.Error("preview still marked running after its restart failed")
	}
	if strings.Contains(h.m.View(), "PREVIEW ON") {
		t.Error("view still shows the preview as live")
	}
}
