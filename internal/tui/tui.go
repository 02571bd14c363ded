package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/playit-manager/playit-manager/internal/credentials"
	"github.com/playit-manager/playit-manager/internal/logging"
	"github.com/playit-manager/playit-manager/internal/nav"
	"github.com/playit-manager/playit-manager/internal/playit"
	"github.com/playit-manager/playit-manager/internal/session"
	"github.com/playit-manager/playit-manager/pkg/models"
)

type viewMode int

const (
	loginView viewMode = iota
	browseView
	editView
)

const (
	emailFocus = iota
	passwordFocus
)

// Options wires the model to its collaborators.
type Options struct {
	Session      *session.Session
	Credentials  *credentials.Store
	ClientConfig playit.ClientConfig

	// Clipboard defaults to the system clipboard.
	Clipboard func(string) error
	// Animate enables the spinner and cursor blinking.
	Animate bool
}

type model struct {
	ctx       context.Context
	sess      *session.Session
	creds     *credentials.Store
	clientCfg playit.ClientConfig
	copyText  func(string) error
	animate   bool

	menu     *nav.State
	mode     viewMode
	snapshot *models.Snapshot

	busy    bool
	ticking bool
	loader  *LoadingIndicator

	emailInput    textinput.Model
	passwordInput textinput.Model
	loginFocus    int

	editInput    textinput.Model
	editField    nav.Field
	editTunnelID string

	banner      string
	bannerError bool

	keys     KeyMap
	help     help.Model
	quitting bool
	width    int
}

func newTextInput(animate bool) textinput.Model {
	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 40
	if !animate {
		ti.Cursor.SetMode(cursor.CursorStatic)
	}
	return ti
}

func initialModel(opts Options) model {
	email := newTextInput(opts.Animate)
	email.Prompt = "Email: "

	password := newTextInput(opts.Animate)
	password.Prompt = "Password: "
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	copyText := opts.Clipboard
	if copyText == nil {
		copyText = clipboard.WriteAll
	}

	m := model{
		ctx:           context.Background(),
		sess:          opts.Session,
		creds:         opts.Credentials,
		clientCfg:     opts.ClientConfig,
		copyText:      copyText,
		animate:       opts.Animate,
		menu:          nav.New(),
		loader:        NewLoadingIndicator("Loading tunnels..."),
		emailInput:    email,
		passwordInput: password,
		editInput:     newTextInput(opts.Animate),
		keys:          DefaultKeyMap(),
		help:          help.New(),
	}

	if m.sess.Client == nil {
		m.mode = loginView
		m.emailInput.Focus()
	} else {
		m.mode = browseView
		m.busy = true
		m.ticking = opts.Animate
	}
	return m
}

func (m model) Init() tea.Cmd {
	if m.mode == loginView {
		if m.animate {
			return textinput.Blink
		}
		return nil
	}
	if m.animate {
		return tea.Batch(readCmd(m.ctx, m.sess.Cache, false), tickCmd())
	}
	return readCmd(m.ctx, m.sess.Cache, false)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case TickMsg:
		if !m.busy {
			m.ticking = false
			return m, nil
		}
		m.loader.Tick()
		return m, tickCmd()

	case snapshotLoadedMsg:
		m.busy = false
		return m.handleSnapshot(msg)

	case mutationDoneMsg:
		m.busy = false
		m.mode = browseView
		m.editInput.Blur()
		field := "name"
		if msg.Field == nav.FieldPort {
			field = "port"
		}
		if msg.OK {
			m.setBanner(fmt.Sprintf("Tunnel %s updated.", field), false)
		} else {
			m.setBanner(fmt.Sprintf("Failed to change %s!", field), true)
		}
		return m, m.syncView()

	case loginDoneMsg:
		m.busy = false
		return m.handleLogin(msg)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
		if m.busy {
			return m, nil
		}
		switch m.mode {
		case loginView:
			return m.updateLogin(msg)
		case editView:
			return m.updateEdit(msg)
		default:
			return m.updateBrowse(msg)
		}
	}

	// Cursor blink and other component messages
	var cmd tea.Cmd
	switch m.mode {
	case loginView:
		if m.loginFocus == emailFocus {
			m.emailInput, cmd = m.emailInput.Update(msg)
		} else {
			m.passwordInput, cmd = m.passwordInput.Update(msg)
		}
	case editView:
		m.editInput, cmd = m.editInput.Update(msg)
	}
	return m, cmd
}

func (m model) handleSnapshot(msg snapshotLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		if errors.Is(msg.Err, playit.ErrNotAuthenticated) {
			logging.Info("tui", "session not authenticated, prompting for login")
			return m.enterLogin("Session expired, please log in again.")
		}
		m.setBanner(fmt.Sprintf("Error: %v (press any key to retry)", msg.Err), true)
		return m, nil
	}
	m.snapshot = msg.Snapshot
	m.menu.SetBounds(len(m.snapshot.Tunnels))
	return m, nil
}

func (m model) handleLogin(msg loginDoneMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		logging.Warn("tui", "interactive login failed: %v", msg.Err)
		m.passwordInput.Reset()
		m.setBanner("Login failed, check your email and password.", true)
		return m, nil
	}

	m.sess.Attach(msg.Client)
	if m.creds != nil {
		err := m.creds.Save(credentials.Credentials{Email: msg.Email, Password: msg.Password})
		if err != nil {
			logging.Error("tui", err, "failed to store credentials")
		}
	}
	m.emailInput.Blur()
	m.passwordInput.Blur()
	m.passwordInput.Reset()
	m.mode = browseView
	m.menu = nav.New()
	m.snapshot = nil
	m.setBanner("", false)
	return m, m.syncView()
}

func (m model) enterLogin(banner string) (tea.Model, tea.Cmd) {
	m.mode = loginView
	m.loginFocus = emailFocus
	m.passwordInput.Blur()
	cmd := m.emailInput.Focus()
	m.setBanner(banner, banner != "")
	if !m.animate {
		cmd = nil
	}
	return m, cmd
}

func (m model) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "shift+tab", "up", "down":
		return m.toggleLoginFocus()

	case "enter":
		if m.loginFocus == emailFocus {
			return m.toggleLoginFocus()
		}
		email := strings.TrimSpace(m.emailInput.Value())
		password := m.passwordInput.Value()
		if email == "" || password == "" {
			m.setBanner("Email and password are required.", true)
			return m, nil
		}
		m.loader.SetMessage("Logging in...")
		m.busy = true
		return m, tea.Batch(loginCmd(m.ctx, m.clientCfg, email, password), m.startTicking())
	}

	var cmd tea.Cmd
	if m.loginFocus == emailFocus {
		m.emailInput, cmd = m.emailInput.Update(msg)
	} else {
		m.passwordInput, cmd = m.passwordInput.Update(msg)
	}
	return m, cmd
}

func (m model) toggleLoginFocus() (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.loginFocus == emailFocus {
		m.loginFocus = passwordFocus
		m.emailInput.Blur()
		cmd = m.passwordInput.Focus()
	} else {
		m.loginFocus = emailFocus
		m.passwordInput.Blur()
		cmd = m.emailInput.Focus()
	}
	if !m.animate {
		cmd = nil
	}
	return m, cmd
}

func (m model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// A failed fetch leaves the cache stale; any key retries it.
	if m.snapshot == nil || m.sess.Cache.Stale() {
		if key.Matches(msg, m.keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
		return m, m.syncView()
	}

	m.setBanner("", false)

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		m.menu.Up()

	case key.Matches(msg, m.keys.Down):
		m.menu.Down()

	case key.Matches(msg, m.keys.Back):
		m.menu.Back()

	case key.Matches(msg, m.keys.Refresh):
		m.sess.Cache.Invalidate()

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, m.keys.Copy):
		if t, ok := m.focusedTunnel(); ok {
			if err := m.copyText(t.AssignedDomain); err != nil {
				m.setBanner(fmt.Sprintf("Could not copy: %v", err), true)
			} else {
				m.setBanner(fmt.Sprintf("Copied %s", t.AssignedDomain), false)
			}
		}

	case key.Matches(msg, m.keys.Activate):
		switch m.menu.Activate() {
		case nav.ActionEditName:
			return m.enterEdit(nav.FieldName)
		case nav.ActionEditPort:
			return m.enterEdit(nav.FieldPort)
		}
	}

	return m, m.syncView()
}

func (m model) enterEdit(field nav.Field) (tea.Model, tea.Cmd) {
	t, ok := m.detailTunnel()
	if !ok {
		return m, m.syncView()
	}

	m.mode = editView
	m.editField = field
	m.editTunnelID = t.ID
	m.editInput.Reset()
	if field == nav.FieldName {
		m.editInput.Prompt = fmt.Sprintf("- Name (%s): ", t.Name)
	} else {
		m.editInput.Prompt = fmt.Sprintf("- Local port (%s): ", t.LocalPort)
	}
	cmd := m.editInput.Focus()
	if !m.animate {
		cmd = nil
	}
	return m, cmd
}

func (m model) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = browseView
		m.editInput.Blur()
		return m, m.syncView()

	case "enter":
		value := strings.TrimSpace(m.editInput.Value())
		if value == "" {
			m.mode = browseView
			m.editInput.Blur()
			return m, m.syncView()
		}
		m.loader.SetMessage("Saving...")
		m.busy = true
		return m, tea.Batch(
			mutateCmd(m.ctx, m.sess.Mutations, m.editField, m.editTunnelID, value),
			m.startTicking(),
		)
	}

	var cmd tea.Cmd
	m.editInput, cmd = m.editInput.Update(msg)
	return m, cmd
}

// syncView runs the per-render cache read: a stale cache starts a fetch,
// otherwise the cached snapshot is used and the menu bounds recomputed.
func (m *model) syncView() tea.Cmd {
	if m.sess.Cache.Stale() {
		m.loader.SetMessage("Loading tunnels...")
		m.busy = true
		return tea.Batch(readCmd(m.ctx, m.sess.Cache, false), m.startTicking())
	}
	m.snapshot = m.sess.Cache.Current()
	if m.snapshot != nil {
		m.menu.SetBounds(len(m.snapshot.Tunnels))
	}
	return nil
}

func (m *model) startTicking() tea.Cmd {
	if !m.animate || m.ticking {
		return nil
	}
	m.ticking = true
	return tickCmd()
}

func (m *model) setBanner(text string, isError bool) {
	m.banner = text
	m.bannerError = isError
}

// detailTunnel is the tunnel opened in Detail.
func (m model) detailTunnel() (models.TunnelSummary, bool) {
	idx, ok := m.menu.TunnelIndex()
	if !ok || m.snapshot == nil || idx >= len(m.snapshot.Tunnels) {
		return models.TunnelSummary{}, false
	}
	return m.snapshot.Tunnels[idx], true
}

// focusedTunnel is the tunnel under the cursor on Overview or open in Detail.
func (m model) focusedTunnel() (models.TunnelSummary, bool) {
	if m.menu.Screen == nav.Detail {
		return m.detailTunnel()
	}
	if m.snapshot == nil || m.menu.Selected >= len(m.snapshot.Tunnels) {
		return models.TunnelSummary{}, false
	}
	return m.snapshot.Tunnels[m.menu.Selected], true
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("63"))

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))
)

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(" playit-manager "))
	b.WriteString("\n\n")

	switch m.mode {
	case loginView:
		b.WriteString(m.renderLogin())
	default:
		if m.snapshot != nil {
			if m.menu.Screen == nav.Detail {
				b.WriteString(m.renderDetail())
			} else {
				b.WriteString(m.renderOverview())
			}
		}
	}

	b.WriteString("\n")
	if m.busy {
		b.WriteString(m.loader.View())
		b.WriteString("\n")
	}
	if m.banner != "" {
		if m.bannerError {
			b.WriteString(errorStyle.Render(m.banner))
		} else {
			b.WriteString(infoStyle.Render(m.banner))
		}
		b.WriteString("\n")
	}
	if m.mode == browseView {
		b.WriteString("\n")
		b.WriteString(m.help.View(m.keys))
	}
	return b.String()
}

func (m model) renderLogin() string {
	var b strings.Builder
	b.WriteString("Please log in. (NOTE: CREDENTIALS WILL BE STORED IN PLAINTEXT)\n\n")
	b.WriteString(m.emailInput.View() + "\n")
	b.WriteString(m.passwordInput.View() + "\n")
	b.WriteString("\n" + dimStyle.Render("tab: switch field • enter: submit • ctrl+c: quit") + "\n")
	return b.String()
}

func (m model) renderOverview() string {
	if len(m.snapshot.Tunnels) == 0 {
		return dimStyle.Render("No tunnels on this account.") + "\n"
	}

	nameWidth := 40
	if m.width > 20 {
		nameWidth = m.width - 12
	}

	var b strings.Builder
	for i, t := range m.snapshot.Tunnels {
		name := runewidth.Truncate(t.Name, nameWidth, "…")
		if i == m.menu.Selected {
			b.WriteString(selectedStyle.Render("> Tunnel " + name))
		} else {
			b.WriteString(normalStyle.Render("  Tunnel " + name))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m model) renderDetail() string {
	t, ok := m.detailTunnel()
	if !ok {
		return ""
	}

	rows := []string{
		"- Domain: " + t.AssignedDomain,
		"- Name: " + t.Name,
		"- Local port: " + t.LocalPort,
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Tunnel %s\n", t.ID))
	for i, row := range rows {
		switch {
		case m.mode == editView && nav.Field(i) == m.editField:
			b.WriteString(m.editInput.View())
		case i == m.menu.Selected:
			b.WriteString(selectedStyle.Render(row))
		default:
			b.WriteString(normalStyle.Render(row))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// ShowTUI runs the tunnel browser until the operator quits.
func ShowTUI(opts Options) error {
	opts.Animate = true
	p := tea.NewProgram(
		initialModel(opts),
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return err
}
