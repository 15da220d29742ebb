package app

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeevanteja1304/VitalValue/internal/auth"
	"github.com/jeevanteja1304/VitalValue/internal/client"
	"github.com/jeevanteja1304/VitalValue/internal/logger"
	"github.com/jeevanteja1304/VitalValue/internal/report"
	"github.com/jeevanteja1304/VitalValue/internal/session"
	"github.com/jeevanteja1304/VitalValue/internal/theme"
	"github.com/jeevanteja1304/VitalValue/internal/views/authform"
	"github.com/jeevanteja1304/VitalValue/internal/views/debug"
	"github.com/jeevanteja1304/VitalValue/internal/views/monitor"
	"github.com/jeevanteja1304/VitalValue/internal/views/reportview"
	"github.com/jeevanteja1304/VitalValue/internal/views/results"
	"github.com/jeevanteja1304/VitalValue/internal/views/status"
)

// Overlay identifies which modal is active.
type Overlay int

const (
	OverlayNone Overlay = iota
	OverlayDebug
	OverlayReport
)

// Placeholder is shown in the results panel before the first measurement.
const Placeholder = "Your results will appear here."

// Notices for rejected start requests.
const (
	NoticeNotReady = "Position your face in the camera first."
	NoticeBusy     = "A measurement is already in progress."
	NoticeNoReport = "No report yet. Complete a measurement first."
)

// Session is the monitoring controller the UI drives.
type Session interface {
	Updates() <-chan session.View
	View() session.View
	StartMonitoring() error
}

// Forms submits the auth forms.
type Forms interface {
	SubmitSignup(ctx context.Context, r client.SignupRequest) auth.Outcome
	SubmitLogin(ctx context.Context, r client.LoginRequest) auth.Outcome
}

// Options wires the model to the rest of the program.
type Options struct {
	Forms   Forms
	Session Session
	// Prepare opens the camera and loads the detector. It runs once, the
	// first time the monitor page is shown.
	Prepare   func(ctx context.Context) error
	StartPage auth.Page
	ReportDir string
	Camera    string
	Backend   string
	Now       func() time.Time
}

type viewMsg session.View

type authDoneMsg struct {
	form auth.Page
	out  auth.Outcome
}

type preparedMsg struct{ err error }

type reportSavedMsg struct {
	path string
	err  error
}

// Model is the root Bubble Tea model.
type Model struct {
	opts   Options
	ctx    context.Context
	cancel context.CancelFunc
	now    func() time.Time

	keys   KeyMap
	help   help.Model
	width  int
	height int

	page    auth.Page
	overlay Overlay

	signup    authform.Model
	login     authform.Model
	monitor   monitor.Model
	results   results.Model
	report    reportview.Model
	debug     debug.Model
	statusBar status.Model

	view      session.View
	prepared  bool
	listening bool
	measured  int
	notice    string
}

// New creates the root model.
func New(opts Options) Model {
	ctx, cancel := context.WithCancel(context.Background())
	if opts.StartPage == "" {
		opts.StartPage = auth.PageLogin
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	m := Model{
		opts:      opts,
		ctx:       ctx,
		cancel:    cancel,
		now:       now,
		keys:      DefaultKeyMap(),
		help:      help.New(),
		page:      opts.StartPage,
		signup:    authform.NewSignup(),
		login:     authform.NewLogin(),
		monitor:   monitor.New(),
		results:   results.New(),
		report:    reportview.New(),
		debug:     debug.New(),
		statusBar: status.New(),
	}
	m.statusBar.Page = string(m.page)
	m.statusBar.Camera = opts.Camera
	m.statusBar.Backend = opts.Backend
	if opts.Session != nil {
		m.view = opts.Session.View()
		if m.page == auth.PageMonitor {
			// Init issues the listener and prepare commands for these.
			m.listening = true
			m.prepared = opts.Prepare != nil
		}
	}
	return m
}

// Page is the current page.
func (m Model) Page() auth.Page { return m.page }

// Init starts the page's widgets.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.monitor.Init()}
	switch m.page {
	case auth.PageSignup:
		cmds = append(cmds, m.signup.Init())
	case auth.PageLogin:
		cmds = append(cmds, m.login.Init())
	case auth.PageMonitor:
		if m.listening {
			cmds = append(cmds, m.waitForView())
		}
		if m.prepared {
			cmds = append(cmds, m.prepareCmd())
		}
	}
	return tea.Batch(cmds...)
}

func (m Model) prepareCmd() tea.Cmd {
	prepare, ctx := m.opts.Prepare, m.ctx
	return func() tea.Msg {
		return preparedMsg{err: prepare(ctx)}
	}
}

func (m Model) waitForView() tea.Cmd {
	ch := m.opts.Session.Updates()
	ctx := m.ctx
	return func() tea.Msg {
		select {
		case v := <-ch:
			return viewMsg(v)
		case <-ctx.Done():
			return nil
		}
	}
}

func (m Model) enterMonitor() (Model, tea.Cmd) {
	m.page = auth.PageMonitor
	m.statusBar.Page = string(m.page)
	m.debug.Add(debug.KindNav, "monitor")
	if m.opts.Session == nil {
		return m, nil
	}
	m.view = m.opts.Session.View()

	var cmds []tea.Cmd
	if !m.listening {
		m.listening = true
		cmds = append(cmds, m.waitForView())
	}
	if !m.prepared && m.opts.Prepare != nil {
		m.prepared = true
		cmds = append(cmds, m.prepareCmd())
	}
	return m, tea.Batch(cmds...)
}

func (m Model) goTo(page auth.Page) (Model, tea.Cmd) {
	if page == auth.PageMonitor {
		return m.enterMonitor()
	}
	m.page = page
	m.statusBar.Page = string(page)
	m.debug.Add(debug.KindNav, string(page))
	return m, nil
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.statusBar.Width = msg.Width
		m.monitor.Width = msg.Width
		m.help.Width = msg.Width
		m.report.Resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case viewMsg:
		return m.applyView(session.View(msg))

	case authform.SubmitMsg:
		return m, m.submit(msg.Form)

	case authDoneMsg:
		return m.finishAuth(msg)

	case preparedMsg:
		if msg.err != nil {
			m.debug.Add(debug.KindError, msg.err.Error())
			m.statusBar.CameraOK = false
		} else {
			m.debug.Add(debug.KindCamera, "camera and detector ready")
			m.statusBar.CameraOK = true
		}
		return m, nil

	case reportSavedMsg:
		m.report.Saved, m.report.Err = msg.path, msg.err
		if msg.err != nil {
			m.notice = "Save failed: " + msg.err.Error()
			m.debug.Add(debug.KindError, m.notice)
		} else {
			m.notice = "Report saved to " + msg.path
			m.debug.Add(debug.KindSession, m.notice)
		}
		return m, nil

	case results.FrameMsg:
		var cmd tea.Cmd
		m.results, cmd = m.results.Update(msg)
		return m, cmd

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.monitor, cmd = m.monitor.Update(msg)
		return m, cmd
	}

	return m.updateForm(msg)
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.page {
	case auth.PageSignup:
		m.signup, cmd = m.signup.Update(msg)
	case auth.PageLogin:
		m.login, cmd = m.login.Update(msg)
	}
	return m, cmd
}

func (m Model) applyView(v session.View) (tea.Model, tea.Cmd) {
	prev := m.view
	m.view = v
	m.statusBar.State = v.State.String()

	if v.Status != prev.Status {
		m.debug.Add(debug.KindSession, v.Status)
	}
	if v.Err != nil && v.Err != prev.Err {
		m.debug.Add(debug.KindError, v.Err.Error())
	}
	if v.State == session.Recording && prev.State != session.Recording {
		m.notice = ""
	}

	cmds := []tea.Cmd{m.waitForView()}
	if !v.MeasuredAt.Equal(prev.MeasuredAt) || len(v.Fragments) != len(prev.Fragments) {
		if len(v.Fragments) > 0 && !v.MeasuredAt.Equal(prev.MeasuredAt) {
			m.measured++
			m.statusBar.Sessions = m.measured
		}
		var cmd tea.Cmd
		m.results, cmd = m.results.Set(v.Fragments, uint64(v.MeasuredAt.UnixNano()), m.now())
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m Model) submit(form auth.Page) tea.Cmd {
	forms, ctx := m.opts.Forms, m.ctx
	switch form {
	case auth.PageSignup:
		req := m.signup.SignupRequest()
		return func() tea.Msg {
			return authDoneMsg{form: form, out: forms.SubmitSignup(ctx, req)}
		}
	case auth.PageLogin:
		req := m.login.LoginRequest()
		return func() tea.Msg {
			return authDoneMsg{form: form, out: forms.SubmitLogin(ctx, req)}
		}
	}
	return nil
}

func (m Model) finishAuth(msg authDoneMsg) (tea.Model, tea.Cmd) {
	switch msg.form {
	case auth.PageSignup:
		m.signup.Finish(msg.out)
	case auth.PageLogin:
		m.login.Finish(msg.out)
	}
	if !msg.out.OK {
		m.debug.Addf(debug.KindAuth, "%s rejected: %s", msg.form, msg.out.Message)
		return m, nil
	}

	m.debug.Addf(debug.KindAuth, "%s successful", msg.form)
	if msg.form == auth.PageSignup {
		m.login.SetValue("email", m.signup.SignupRequest().Email)
	}
	return m.goTo(msg.out.Next)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m.quit()
	}

	if m.overlay != OverlayNone {
		return m.handleOverlayKey(msg)
	}

	switch m.page {
	case auth.PageSignup, auth.PageLogin:
		switch {
		case key.Matches(msg, m.keys.Signup):
			return m.goTo(auth.PageSignup)
		case key.Matches(msg, m.keys.Login):
			return m.goTo(auth.PageLogin)
		}
		return m.updateForm(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()

	case key.Matches(msg, m.keys.Start):
		m.notice = ""
		switch err := m.opts.Session.StartMonitoring(); {
		case errors.Is(err, session.ErrNotReady):
			m.notice = NoticeNotReady
		case errors.Is(err, session.ErrBusy):
			m.notice = NoticeBusy
		case err != nil:
			m.notice = err.Error()
		}
		return m, nil

	case key.Matches(msg, m.keys.Report):
		if !m.reportReady() {
			m.notice = NoticeNoReport
			return m, nil
		}
		m.report.Saved, m.report.Err = "", nil
		m.report.SetReport(report.Markdown(*m.view.Vitals, m.view.MeasuredAt), m.width, m.height)
		m.overlay = OverlayReport
		return m, nil

	case key.Matches(msg, m.keys.Save):
		if !m.reportReady() {
			m.notice = NoticeNoReport
			return m, nil
		}
		return m, m.saveReport()

	case key.Matches(msg, m.keys.Debug):
		m.overlay = OverlayDebug
		return m, nil

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}
	return m, nil
}

func (m Model) handleOverlayKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Escape) {
		m.overlay = OverlayNone
		return m, nil
	}

	switch m.overlay {
	case OverlayDebug:
		switch {
		case key.Matches(msg, m.keys.Up):
			m.debug.ScrollUp(1)
		case key.Matches(msg, m.keys.Down):
			m.debug.ScrollDown(1)
		}
	case OverlayReport:
		if key.Matches(msg, m.keys.Save) {
			return m, m.saveReport()
		}
		var cmd tea.Cmd
		m.report, cmd = m.report.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) reportReady() bool {
	return m.view.ReportVisible && m.view.Vitals != nil
}

func (m Model) saveReport() tea.Cmd {
	dir := m.opts.ReportDir
	v := *m.view.Vitals
	at := m.view.MeasuredAt
	return func() tea.Msg {
		path, err := report.Save(dir, v, at)
		if err != nil {
			logger.Error("app", "save report: %v", err)
		} else {
			logger.Info("app", "report saved to %s", path)
		}
		return reportSavedMsg{path: path, err: err}
	}
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.cancel()
	return m, tea.Quit
}

// View renders the full TUI.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	var body string
	switch {
	case m.overlay == OverlayDebug:
		body = m.debug.View(m.width, m.height-4)
	case m.overlay == OverlayReport:
		body = m.report.View()
	case m.page == auth.PageSignup:
		body = lipgloss.Place(m.width, m.height-4, lipgloss.Center, lipgloss.Center, m.signup.View())
	case m.page == auth.PageLogin:
		body = lipgloss.Place(m.width, m.height-4, lipgloss.Center, lipgloss.Center, m.login.View())
	default:
		body = m.renderMonitor()
	}

	sections := []string{m.statusBar.View(), body}
	if m.page == auth.PageMonitor && m.overlay == OverlayNone {
		if m.notice != "" {
			sections = append(sections, lipgloss.NewStyle().Foreground(theme.ColorWarning).Render("  "+m.notice))
		}
		sections = append(sections, "  "+m.help.View(m.keys))
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderMonitor() string {
	left := m.monitor.View(m.view)

	var right string
	switch {
	case m.view.ReportVisible || len(m.view.Fragments) > 0:
		lines := []string{theme.StyleHeader.Render("Results"), "", m.results.View()}
		if m.view.ReportVisible {
			lines = append(lines, "", theme.StyleDimmed.Render("r: view report  w: download report"))
		}
		right = lipgloss.JoinVertical(lipgloss.Left, lines...)
	case m.view.LoaderVisible:
		right = theme.StyleHeader.Render("Results") + "\n\n" + m.monitor.Spinner.View() + " Processing..."
	case m.view.PlaceholderVisible:
		right = theme.StyleHeader.Render("Results") + "\n\n" + theme.StyleDimmed.Render(Placeholder)
	}

	return lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Padding(1, 2).Render(left),
		lipgloss.NewStyle().Padding(1, 2).Render(right),
	)
}
