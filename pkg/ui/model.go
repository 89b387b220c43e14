// Package ui is the terminal control panel. It renders panel.State and
// runs the effects panel.State.Dispatch asks for as tea commands.
package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Dicklesworthstone/picam/pkg/capture"
	"github.com/Dicklesworthstone/picam/pkg/history"
	"github.com/Dicklesworthstone/picam/pkg/model"
	"github.com/Dicklesworthstone/picam/pkg/panel"
	"github.com/Dicklesworthstone/picam/pkg/profile"
	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"
)

// Camera is the part of the camera controller the panel drives
type Camera interface {
	SetAttribute(ctx context.Context, p model.Parameter, v int) error
	StartPreview(ctx context.Context, win model.Window) error
	MovePreview(ctx context.Context, win model.Window) error
	StopPreview(ctx context.Context) error
}

// Capturer starts background captures
type Capturer interface {
	Start(ctx context.Context, req model.CaptureRequest) (<-chan capture.Result, error)
}

// Profiles is the profile store
type Profiles interface {
	Save(name string, p model.Profile) error
	Load(name string) (model.Profile, error)
	Delete(name string, confirm profile.Confirmer) error
	Exists(name string) bool
	List() ([]string, error)
}

// Journal is the capture history; it may be nil
type Journal interface {
	Recent(limit int) ([]model.Capture, error)
	Summary() (history.Summary, error)
}

// Deps are the services the panel talks to
type Deps struct {
	Ctx      context.Context
	Camera   Camera
	Worker   Capturer
	Profiles Profiles
	Journal  Journal
}

// ProfilesChangedMsg is sent by the profile watcher with the names it saw
type ProfilesChangedMsg struct{ Names []string }

type eventMsg struct{ ev panel.Event }

type historyMsg struct {
	captures []model.Capture
	summary  history.Summary
}

type statusMsg string

// deviceDoneMsg reports that the camera finished one queued effect
type deviceDoneMsg struct {
	op  string
	err error
}

// captureStartedMsg reports that the worker accepted (or refused) a capture
type captureStartedMsg struct {
	req     model.CaptureRequest
	results <-chan capture.Result
	err     error
}

// deviceQueue holds camera effects so they reach the controller in the
// order the panel produced them, one at a time. Every copy of the Model
// shares it; only Update touches it.
type deviceQueue struct {
	pending []panel.Effect
	busy    bool
}

const (
	historyLimit = 20
	offsetStep   = 10
)

var offsetKeys = map[string][2]int{
	"w": {0, -offsetStep},
	"a": {-offsetStep, 0},
	"s": {0, offsetStep},
	"d": {offsetStep, 0},
}

// Model is the bubbletea model for the control panel
type Model struct {
	deps  Deps
	state *panel.State
	log   *logrus.Entry

	focus   int    // index into model.Parameters
	editing string // spinbox digits typed so far

	help     HelpOverlayModel
	errModal ErrorModalModel
	history  HistoryPanelModel
	selector *ProfileSelectorModel
	prompt   *promptForm
	spinner  spinner.Model
	devices  *deviceQueue

	showHistory bool
	width       int
	height      int
	theme       Theme

	// For testing
	now           func() time.Time
	copyClipboard func(string) error
	observe       func(panel.Event)
}

// NewModel creates the panel model around an initial state
func NewModel(state *panel.State, deps Deps) Model {
	if deps.Ctx == nil {
		deps.Ctx = context.Background()
	}
	theme := DefaultTheme(nil)
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.Renderer.NewStyle().Foreground(theme.Warning)

	return Model{
		deps:          deps,
		state:         state,
		log:           logrus.WithField("component", "ui"),
		help:          NewHelpOverlayModel(theme),
		errModal:      NewErrorModalModel(theme),
		history:       NewHistoryPanelModel(theme),
		spinner:       sp,
		devices:       &deviceQueue{},
		showHistory:   deps.Journal != nil,
		theme:         theme,
		width:         100,
		height:        30,
		now:           time.Now,
		copyClipboard: clipboard.WriteAll,
	}
}

// State exposes the underlying panel state
func (m Model) State() *panel.State {
	return m.state
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.effectCmd(panel.RefreshProfiles{}), m.historyCmd())
}

// dispatch applies ev and returns the commands for its effects. Camera
// effects join the device queue; profile effects run right away.
func (m Model) dispatch(ev panel.Event) tea.Cmd {
	if m.observe != nil {
		m.observe(ev)
	}
	var cmds []tea.Cmd
	for _, e := range m.state.Dispatch(ev) {
		switch e.(type) {
		case panel.StartCapture:
			m.devices.pending = append(m.devices.pending, e)
			cmds = append(cmds, m.spinner.Tick)
		case panel.SetAttribute, panel.StartPreview, panel.MovePreview, panel.StopPreview:
			m.devices.pending = append(m.devices.pending, e)
		default:
			cmds = append(cmds, m.effectCmd(e))
		}
	}
	cmds = append(cmds, m.nextDevice())
	return tea.Batch(cmds...)
}

// nextDevice starts the oldest queued camera effect unless one is
// already running. Its completion message starts the next.
func (m Model) nextDevice() tea.Cmd {
	q := m.devices
	if q.busy || len(q.pending) == 0 {
		return nil
	}
	e := q.pending[0]
	q.pending = q.pending[1:]
	q.busy = true
	return m.deviceCmd(e)
}

func (m Model) deviceCmd(e panel.Effect) tea.Cmd {
	ctx := m.deps.Ctx
	cam := m.deps.Camera
	switch e := e.(type) {
	case panel.SetAttribute:
		return func() tea.Msg {
			return deviceDoneMsg{panel.OpSetAttribute, cam.SetAttribute(ctx, e.Param, e.Value)}
		}
	case panel.StartPreview:
		return func() tea.Msg {
			return deviceDoneMsg{panel.OpStartPreview, cam.StartPreview(ctx, e.Window)}
		}
	case panel.MovePreview:
		return func() tea.Msg {
			return deviceDoneMsg{panel.OpMovePreview, cam.MovePreview(ctx, e.Window)}
		}
	case panel.StopPreview:
		return func() tea.Msg {
			return deviceDoneMsg{panel.OpStopPreview, cam.StopPreview(ctx)}
		}
	case panel.StartCapture:
		worker := m.deps.Worker
		return func() tea.Msg {
			ch, err := worker.Start(ctx, e.Request)
			return captureStartedMsg{req: e.Request, results: ch, err: err}
		}
	}
	return func() tea.Msg { return deviceDoneMsg{} }
}

func waitForCapture(results <-chan capture.Result) tea.Cmd {
	return func() tea.Msg {
		res := <-results
		return eventMsg{panel.CaptureFinished{Path: res.Request.Path, Err: res.Err}}
	}
}

func failed(op string, err error) tea.Msg {
	return eventMsg{panel.OperationFailed{Op: op, Err: err}}
}

// effectCmd runs a profile store effect
func (m Model) effectCmd(e panel.Effect) tea.Cmd {
	switch e := e.(type) {
	case panel.SaveProfile:
		return func() tea.Msg {
			if err := m.deps.Profiles.Save(e.Name, e.Profile); err != nil {
				return failed(panel.OpSave, err)
			}
			return eventMsg{panel.ProfileSaved{Name: e.Name}}
		}
	case panel.LoadProfile:
		return func() tea.Msg {
			p, err := m.deps.Profiles.Load(e.Name)
			if err != nil {
				return failed(panel.OpLoad, err)
			}
			return eventMsg{panel.ProfileLoaded{Name: e.Name, Profile: p}}
		}
	case panel.DeleteProfile:
		return func() tea.Msg {
			// The panel already asked; the store still insists on an answer.
			if err := m.deps.Profiles.Delete(e.Name, profile.Confirmed(true)); err != nil {
				return failed(panel.OpDelete, err)
			}
			return eventMsg{panel.ProfileDeleted{Name: e.Name}}
		}
	case panel.RefreshProfiles:
		return func() tea.Msg {
			names, err := m.deps.Profiles.List()
			if err != nil {
				return failed(panel.OpList, err)
			}
			return eventMsg{panel.ProfilesListed{Names: names}}
		}
	}
	return nil
}

func (m Model) historyCmd() tea.Cmd {
	if m.deps.Journal == nil {
		return nil
	}
	j := m.deps.Journal
	return func() tea.Msg {
		captures, err := j.Recent(historyLimit)
		if err != nil {
			logrus.WithError(err).Warn("could not read capture history")
			return nil
		}
		summary, err := j.Summary()
		if err != nil {
			logrus.WithError(err).Warn("could not summarize capture history")
		}
		return historyMsg{captures: captures, summary: summary}
	}
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.SetSize(msg.Width, msg.Height)
		m.errModal.SetSize(msg.Width, msg.Height)
		m.history.SetSize(m.historyWidth(), msg.Height-8)
		if m.selector != nil {
			m.selector.SetSize(msg.Width, msg.Height)
		}
		return m, nil

	case tea.BlurMsg:
		return m, m.dispatch(panel.FocusLost{})
	case tea.FocusMsg, tea.ResumeMsg:
		return m, nil

	case eventMsg:
		cmd := m.dispatch(msg.ev)
		if m.prompt != nil && m.prompt.kind == formDelete && m.state.PendingDelete == "" {
			m.prompt = nil
		}
		if done, ok := msg.ev.(panel.CaptureFinished); ok {
			if done.Err == nil {
				m.log.WithField("path", done.Path).Info("picture saved")
			}
			cmd = tea.Batch(cmd, m.historyCmd())
		}
		return m, cmd

	case deviceDoneMsg:
		m.devices.busy = false
		if msg.err != nil {
			return m, m.dispatch(panel.OperationFailed{Op: msg.op, Err: msg.err})
		}
		return m, m.nextDevice()

	case captureStartedMsg:
		m.devices.busy = false
		if msg.err != nil {
			return m, m.dispatch(panel.CaptureFinished{Path: msg.req.Path, Err: msg.err})
		}
		return m, tea.Batch(waitForCapture(msg.results), m.nextDevice())

	case ProfilesChangedMsg:
		return m, m.dispatch(panel.ProfilesChanged{Names: msg.Names})

	case historyMsg:
		m.history.SetData(msg.captures, msg.summary)
		return m, nil

	case statusMsg:
		m.state.Status = string(msg)
		return m, nil

	case spinner.TickMsg:
		if !m.state.Capturing {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.prompt != nil {
		return m.updatePrompt(msg)
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		if m.showHistory {
			var cmd tea.Cmd
			m.history, cmd = m.history.Update(msg)
			return m, cmd
		}
		return m, nil
	}
	return m.handleKey(key)
}

func (m Model) updatePrompt(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && (key.String() == "esc" || key.String() == "ctrl+c") {
		kind := m.prompt.kind
		m.prompt = nil
		if kind == formDelete {
			return m, m.dispatch(panel.DeleteConfirmed{Yes: false})
		}
		return m, nil
	}

	updated, cmd := m.prompt.form.Update(msg)
	if f, ok := updated.(*huh.Form); ok {
		m.prompt.form = f
	}
	if !m.prompt.done() {
		return m, cmd
	}

	p := m.prompt
	m.prompt = nil
	switch p.kind {
	case formSave:
		if p.completed() {
			return m, m.dispatch(panel.SaveRequested{Name: *p.name})
		}
	case formDelete:
		return m, m.dispatch(panel.DeleteConfirmed{Yes: p.completed() && *p.yes})
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return m, tea.Quit
	}

	// The error modal swallows the first key.
	if m.state.Modal() {
		return m, m.dispatch(panel.ErrorDismissed{})
	}

	if m.help.IsVisible() {
		var cmd tea.Cmd
		m.help, cmd = m.help.Update(msg)
		return m, cmd
	}

	if m.selector != nil {
		return m.handleSelectorKey(key)
	}

	if m.editing != "" || isSpinboxKey(key, m.editing) {
		if next, cmd, handled := m.handleSpinboxKey(key); handled {
			return next, cmd
		}
	}

	param := model.Parameters[m.focus]
	value := m.state.Controls[param].Value()

	switch key {
	case "q":
		return m, tea.Quit
	case "ctrl+z":
		return m, tea.Sequence(m.dispatch(panel.Minimized{}), tea.Suspend)
	case "?":
		m.help.Toggle()
		return m, nil
	case "up", "k":
		if m.focus > 0 {
			m.focus--
		}
		return m, nil
	case "down", "j":
		if m.focus < model.NumParameters-1 {
			m.focus++
		}
		return m, nil
	case "left", "h":
		return m, m.dispatch(panel.SliderMoved{Param: param, Value: value - 1})
	case "right", "l":
		return m, m.dispatch(panel.SliderMoved{Param: param, Value: value + 1})
	case "H", "shift+left":
		return m, m.dispatch(panel.SliderMoved{Param: param, Value: value - 10})
	case "L", "shift+right":
		return m, m.dispatch(panel.SliderMoved{Param: param, Value: value + 10})
	case "r":
		return m, m.dispatch(panel.ResetRequested{})
	case "p":
		return m, m.dispatch(panel.PreviewToggled{})
	case "w", "a", "s", "d":
		d := offsetKeys[key]
		pv := m.state.Preview
		return m, m.dispatch(panel.OffsetChanged{X: pv.OffsetX + d[0], Y: pv.OffsetY + d[1]})
	case "t", " ":
		return m, m.dispatch(panel.TakePictureRequested{At: m.now()})
	case "c":
		return m, m.copyLastCapture()
	case "o":
		return m.openSelector(SelectLoad)
	case "D":
		return m.openSelector(SelectDelete)
	case "S":
		m.prompt = newSaveForm(m.state.CurrentProfile)
		return m, m.prompt.form.Init()
	case "v":
		m.showHistory = !m.showHistory
		return m, nil
	}
	return m, nil
}

func (m Model) handleSpinboxKey(key string) (Model, tea.Cmd, bool) {
	param := model.Parameters[m.focus]
	switch {
	case isSpinboxKey(key, m.editing):
		if len(m.editing) < 6 {
			m.editing += key
		}
		return m, nil, true
	case key == "backspace":
		if m.editing != "" {
			m.editing = m.editing[:len(m.editing)-1]
		}
		return m, nil, true
	case key == "esc":
		m.editing = ""
		return m, nil, true
	case key == "enter":
		v, ok := parseSpinbox(param, m.editing)
		m.editing = ""
		if !ok {
			return m, nil, true
		}
		return m, m.dispatch(panel.SpinboxChanged{Param: param, Value: v}), true
	}
	return m, nil, false
}

func (m Model) openSelector(purpose string) (tea.Model, tea.Cmd) {
	sel := NewProfileSelectorModel(m.state.Profiles, purpose, m.theme)
	sel.SetSize(m.width, m.height)
	m.selector = &sel
	return m, nil
}

func (m Model) handleSelectorKey(key string) (tea.Model, tea.Cmd) {
	m.selector.Update(key)
	switch {
	case m.selector.IsCancelled():
		m.selector = nil
	case m.selector.IsConfirmed():
		name, purpose := m.selector.Selected(), m.selector.Purpose()
		m.selector = nil
		if purpose == SelectDelete {
			// Removed on disk since the list was read: report it instead of asking.
			if !m.deps.Profiles.Exists(name) {
				cmd := m.dispatch(panel.OperationFailed{Op: panel.OpDelete, Err: &model.NotFoundError{Name: name}})
				return m, tea.Batch(cmd, m.effectCmd(panel.RefreshProfiles{}))
			}
			cmd := m.dispatch(panel.DeleteRequested{Name: name})
			if m.state.PendingDelete != "" {
				m.prompt = newDeleteForm(m.state.PendingDelete)
				cmd = tea.Batch(cmd, m.prompt.form.Init())
			}
			return m, cmd
		}
		return m, m.dispatch(panel.LoadRequested{Name: name})
	}
	return m, nil
}

func (m Model) copyLastCapture() tea.Cmd {
	path := m.state.LastCapture
	if path == "" {
		return func() tea.Msg { return statusMsg("nothing captured yet") }
	}
	copyFn := m.copyClipboard
	return func() tea.Msg {
		if err := copyFn(path); err != nil {
			return statusMsg("clipboard unavailable: " + err.Error())
		}
		return statusMsg("copied " + path)
	}
}

func (m Model) historyWidth() int {
	if m.width >= BreakpointMedium {
		return m.width/2 - 6
	}
	return m.width - 6
}

// View implements tea.Model
func (m Model) View() string {
	if m.state.Modal() {
		return m.errModal.View(m.state.Err)
	}
	if m.help.IsVisible() {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.help.View())
	}
	if m.selector != nil {
		return m.selector.View(m.state.CurrentProfile)
	}
	if m.prompt != nil {
		box := FocusedPanelStyle.Padding(1, 2).Render(m.prompt.form.View())
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
	}

	controls := m.renderControls()
	body := controls
	if m.showHistory && m.width >= BreakpointNarrow {
		hist := PanelStyle.Padding(0, 1).Render(m.history.View())
		if m.width >= BreakpointMedium {
			body = lipgloss.JoinHorizontal(lipgloss.Top, controls, " ", hist)
		} else {
			body = lipgloss.JoinVertical(lipgloss.Left, controls, hist)
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), body, m.renderFooter())
}

func (m Model) renderHeader() string {
	t := m.theme
	title := t.Renderer.NewStyle().Foreground(t.Primary).Bold(true).Render("picam")
	prof := m.state.CurrentProfile
	if prof == "" {
		prof = "unsaved"
	}
	active := t.Renderer.NewStyle().Foreground(t.Subtext).Render("profile: " + prof)
	out := m.state.Output
	target := t.Renderer.NewStyle().Foreground(t.Subtext).Render(
		fmt.Sprintf("→ %s/%s_*.%s", out.Directory, out.Filename, out.Format))
	return strings.Join([]string{title, RenderPreviewBadge(m.state.Preview.Running), active, target}, "  ")
}

func (m Model) renderControls() string {
	t := m.theme
	width := sliderWidth(m.width)
	labelStyle := t.Renderer.NewStyle().Width(LabelWidth).Foreground(t.Subtext)
	focusLabel := labelStyle.Foreground(t.Primary).Bold(true)

	var lines []string
	for i, p := range model.Parameters {
		c := m.state.Controls[p]
		r := p.Range()
		focused := i == m.focus
		ls := labelStyle
		editing := ""
		if focused {
			ls = focusLabel
			editing = m.editing
		}
		lines = append(lines, fmt.Sprintf("%s %s %s",
			ls.Render(p.Label()),
			RenderSlider(c.Slider, r.Min, r.Max, width, focused, t),
			RenderSpinbox(c.Spin, editing, focused, t)))
	}

	pv := m.state.Preview
	lines = append(lines, "", t.Renderer.NewStyle().Foreground(t.Subtext).Render(
		fmt.Sprintf("preview %s  offset %+d,%+d", pv.Region(), pv.OffsetX, pv.OffsetY)))
	lines = append(lines, "", RenderCaptureBadge(m.state.TakePictureEnabled, m.spinner.View()))

	return PanelStyle.Padding(0, 1).Render(strings.Join(lines, "\n"))
}

func (m Model) renderFooter() string {
	t := m.theme
	status := t.Renderer.NewStyle().Foreground(t.Success).Render(m.state.Status)
	if m.state.LastCapture != "" && m.state.Status == "" {
		status = t.Renderer.NewStyle().Foreground(t.Subtext).Render("last: " + m.state.LastCapture)
	}
	hints := t.Renderer.NewStyle().Faint(true).Render(
		"↑↓ select • ←→ adjust • p preview • t take • o load • S save • D delete • ? help • q quit")
	return status + "\n" + hints
}
