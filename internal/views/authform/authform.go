// Package authform renders the signup and login forms with text inputs.
// Submitting emits a SubmitMsg; the app performs the request and hands
// the outcome back through Finish.
package authform

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeevanteja1304/VitalValue/internal/auth"
	"github.com/jeevanteja1304/VitalValue/internal/client"
	"github.com/jeevanteja1304/VitalValue/internal/theme"
)

// MsgRequired is shown when a field is left empty.
const MsgRequired = "Please fill in all fields."

// SubmitMsg asks the app to send the form.
type SubmitMsg struct {
	Form auth.Page
}

type field struct {
	name  string
	label string
	input textinput.Model
}

type keyMap struct {
	Next   key.Binding
	Prev   key.Binding
	Submit key.Binding
}

var keys = keyMap{
	Next:   key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field")),
	Prev:   key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "prev field")),
	Submit: key.NewBinding(key.WithKeys("enter", "ctrl+s"), key.WithHelp("enter", "submit")),
}

// Model is one form.
type Model struct {
	Kind   auth.Page
	Title  string
	fields []field
	focus  int

	// Err is shown under the form. It is cleared when a submission starts.
	Err  string
	Busy bool
}

func newField(name, label, placeholder string, password bool) field {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 128
	ti.Width = 32
	ti.Prompt = ""
	if password {
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '•'
	}
	return field{name: name, label: label, input: ti}
}

// NewSignup builds the signup form.
func NewSignup() Model {
	m := Model{
		Kind:  auth.PageSignup,
		Title: "Create an account",
		fields: []field{
			newField("name", "Name", "Jane Doe", false),
			newField("phone", "Phone", "+1 555 0100", false),
			newField("email", "Email", "jane@example.com", false),
			newField("gender", "Gender", "female / male / other", false),
			newField("password", "Password", "", true),
		},
	}
	m.fields[0].input.Focus()
	return m
}

// NewLogin builds the login form.
func NewLogin() Model {
	m := Model{
		Kind:  auth.PageLogin,
		Title: "Sign in",
		fields: []field{
			newField("email", "Email", "jane@example.com", false),
			newField("password", "Password", "", true),
		},
	}
	m.fields[0].input.Focus()
	return m
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Value returns the current text of a named field.
func (m Model) Value(name string) string {
	for _, f := range m.fields {
		if f.name == name {
			return f.input.Value()
		}
	}
	return ""
}

// SetValue sets a named field. Used to prefill the login email after signup.
func (m *Model) SetValue(name, value string) {
	for i := range m.fields {
		if m.fields[i].name == name {
			m.fields[i].input.SetValue(value)
		}
	}
}

func (m Model) SignupRequest() client.SignupRequest {
	return client.SignupRequest{
		Name:     strings.TrimSpace(m.Value("name")),
		Phone:    strings.TrimSpace(m.Value("phone")),
		Email:    strings.TrimSpace(m.Value("email")),
		Gender:   strings.TrimSpace(m.Value("gender")),
		Password: m.Value("password"),
	}
}

func (m Model) LoginRequest() client.LoginRequest {
	return client.LoginRequest{
		Email:    strings.TrimSpace(m.Value("email")),
		Password: m.Value("password"),
	}
}

// Focused is the index of the active field.
func (m Model) Focused() int { return m.focus }

func (m Model) setFocus(i int) Model {
	n := len(m.fields)
	i = ((i % n) + n) % n
	fields := make([]field, n)
	copy(fields, m.fields)
	for j := range fields {
		if j == i {
			fields[j].input.Focus()
		} else {
			fields[j].input.Blur()
		}
	}
	m.fields = fields
	m.focus = i
	return m
}

func (m Model) missing() bool {
	for _, f := range m.fields {
		if strings.TrimSpace(f.input.Value()) == "" {
			return true
		}
	}
	return false
}

// Update handles navigation and typing. Enter on the last field, or
// ctrl+s anywhere, submits.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(km, keys.Submit):
			if km.String() == "enter" && m.focus < len(m.fields)-1 {
				return m.setFocus(m.focus + 1), nil
			}
			return m.submit()
		case key.Matches(km, keys.Next):
			return m.setFocus(m.focus + 1), nil
		case key.Matches(km, keys.Prev):
			return m.setFocus(m.focus - 1), nil
		}
	}

	fields := make([]field, len(m.fields))
	copy(fields, m.fields)
	var cmd tea.Cmd
	fields[m.focus].input, cmd = fields[m.focus].input.Update(msg)
	m.fields = fields
	return m, cmd
}

func (m Model) submit() (Model, tea.Cmd) {
	if m.Busy {
		return m, nil
	}
	m.Err = ""
	if m.missing() {
		m.Err = MsgRequired
		return m, nil
	}
	m.Busy = true
	kind := m.Kind
	return m, func() tea.Msg { return SubmitMsg{Form: kind} }
}

// Finish applies the outcome of a submission.
func (m *Model) Finish(out auth.Outcome) {
	m.Busy = false
	if out.OK {
		m.Err = ""
		m.SetValue("password", "")
		return
	}
	m.Err = out.Message
}

// View renders the form.
func (m Model) View() string {
	labelStyle := lipgloss.NewStyle().Width(10).Foreground(theme.ColorDimmed)
	focusedLabel := labelStyle.Foreground(theme.ColorAccent).Bold(true)

	lines := []string{theme.StyleHeader.Render(m.Title), ""}
	for i, f := range m.fields {
		ls := labelStyle
		if i == m.focus {
			ls = focusedLabel
		}
		lines = append(lines, ls.Render(f.label)+" "+f.input.View())
	}
	lines = append(lines, "")

	switch {
	case m.Busy:
		lines = append(lines, theme.StyleDimmed.Render("Submitting..."))
	case m.Err != "":
		lines = append(lines, theme.StyleError.Render(m.Err))
	}

	var hint string
	if m.Kind == auth.PageSignup {
		hint = "enter: next/submit  tab: next field  ctrl+l: sign in instead"
	} else {
		hint = "enter: next/submit  tab: next field  ctrl+n: create account"
	}
	lines = append(lines, theme.StyleDimmed.Render(hint))

	return theme.StyleBorder.Padding(1, 2).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
