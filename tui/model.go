package tui

import (
	"fmt"
	"strings"
	"time"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
)

// state represents the current phase of the sign-in and sync flow.
type state int

const (
	stateInit       state = iota
	stateLoggingIn        // waiting for the login call
	stateRefreshing       // a 401 triggered a token refresh
	stateLoading          // fetching profile, appointments, vitals
	stateSuccess          // all done
	stateError            // fatal error
)

// statusKind distinguishes line types in the status log.
type statusKind int

const (
	statusOK   statusKind = iota
	statusWarn            // warning / non-fatal
	statusInfo            // neutral info
)

// statusLine is one row in the scrolling status log.
type statusLine struct {
	kind statusKind
	text string
}

// Model is the BubbleTea model for the CareSync TUI.
type Model struct {
	state   state
	spinner spinner.Model
	width   int
	height  int

	// Success display
	userName     string
	userEmail    string
	sessionLeft  time.Duration
	appointments []string
	vitals       []string

	errMsg string

	// Scrolling status log shown below the main panel
	statusLines []statusLine
}

// Lipgloss styles, defined once at package level.
var (
	styleTitleBox = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("36")).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("36")).
			Padding(0, 2)

	styleOK   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	styleWarn = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	styleErr  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	styleDim  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	styleBold = lipgloss.NewStyle().Bold(true)
)

// NewModel creates the initial TUI model.
func NewModel() Model {
	s := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("36"))),
	)
	return Model{
		state:   stateInit,
		spinner: s,
	}
}

// Init starts the spinner animation.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles all incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyPressMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m, nil

	// ── Flow messages ────────────────────────────────────────────────────────

	case MsgBanner:
		return m, nil

	case MsgCredentialsFound:
		m.addStatus(statusOK, "Found saved credentials")
		return m, nil

	case MsgCredentialsNotFound:
		m.addStatus(statusInfo, "No saved credentials")
		return m, nil

	case MsgTokenValid:
		m.addStatus(statusOK, fmt.Sprintf(
			"Access token valid for %s", msg.ExpiresIn.Round(time.Second),
		))
		return m, nil

	case MsgTokenExpired:
		m.addStatus(statusWarn, "Access token expired")
		return m, nil

	case MsgLoggingIn:
		m.state = stateLoggingIn
		m.userEmail = msg.Email
		m.addStatus(statusInfo, "Signing in as "+msg.Email+"...")
		return m, nil

	case MsgLoginOK:
		m.addStatus(statusOK, "Signed in successfully")
		return m, nil

	case MsgCredentialsSaved:
		m.addStatus(statusOK, "Credentials saved to "+msg.Path)
		return m, nil

	case MsgCredentialsSaveFailed:
		m.addStatus(statusWarn, fmt.Sprintf("Warning: failed to save credentials: %v", msg.Err))
		return m, nil

	case MsgAccessTokenRejected:
		m.state = stateRefreshing
		m.addStatus(statusWarn, "Access token rejected (401), refreshing...")
		return m, nil

	case MsgTokenRefreshed:
		m.state = stateLoading
		m.addStatus(statusOK, "Token refreshed, retrying request...")
		return m, nil

	case MsgRefreshFailed:
		m.addStatus(statusWarn, fmt.Sprintf("Token refresh failed: %v", msg.Err))
		return m, nil

	case MsgReAuthRequired:
		m.addStatus(statusWarn, "Session expired, please sign in again")
		return m, nil

	case MsgLoadingProfile:
		m.state = stateLoading
		m.addStatus(statusInfo, "Loading profile...")
		return m, nil

	case MsgProfileLoaded:
		m.userName = msg.Name
		m.userEmail = msg.Email
		m.addStatus(statusOK, "Profile loaded")
		return m, nil

	case MsgAppointmentsLoaded:
		m.appointments = msg.Lines
		m.addStatus(statusOK, fmt.Sprintf("%d upcoming appointment(s)", len(msg.Lines)))
		return m, nil

	case MsgAppointmentsFailed:
		m.addStatus(statusWarn, fmt.Sprintf("Failed to load appointments: %v", msg.Err))
		return m, nil

	case MsgVitalsLoaded:
		m.vitals = msg.Lines
		m.addStatus(statusOK, "Vitals loaded")
		return m, nil

	case MsgVitalsFailed:
		m.addStatus(statusWarn, fmt.Sprintf("Failed to load vitals: %v", msg.Err))
		return m, nil

	case MsgDone:
		m.userName = msg.Name
		m.sessionLeft = msg.ExpiresIn
		m.state = stateSuccess
		return m, nil

	case MsgFatal:
		m.errMsg = msg.Err.Error()
		m.state = stateError
		return m, nil
	}

	return m, nil
}

// View renders the TUI.
func (m Model) View() tea.View {
	switch m.state {
	case stateSuccess:
		return tea.NewView(m.viewSuccess())
	case stateError:
		return tea.NewView(m.viewError())
	default:
		return tea.NewView(m.viewMain())
	}
}

// viewMain is shown during init, sign-in, refresh, and data loading.
func (m Model) viewMain() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(styleTitleBox.Render("  CareSync  "))
	b.WriteString("\n\n")

	switch m.state {
	case stateLoggingIn:
		b.WriteString(m.spinner.View())
		b.WriteString(" Signing in as " + m.userEmail + "...\n")

	case stateRefreshing:
		b.WriteString(m.spinner.View())
		b.WriteString(" Refreshing access token...\n")

	case stateLoading:
		b.WriteString(m.spinner.View())
		b.WriteString(" Syncing your health data...\n")

	default:
		b.WriteString(m.spinner.View())
		b.WriteString(" Initializing...\n")
	}

	b.WriteString(m.viewStatusLog())
	return b.String()
}

// viewSuccess is shown after the sync completes.
func (m Model) viewSuccess() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(styleOK.Render("  ✓ You're all set, " + m.userName))
	b.WriteString("\n\n")

	b.WriteString(styleBold.Render("Account:       "))
	b.WriteString(m.userEmail + "\n")

	b.WriteString(styleBold.Render("Session valid: "))
	b.WriteString(formatDuration(m.sessionLeft) + "\n")

	b.WriteString("\n")
	b.WriteString(styleBold.Render("Upcoming appointments"))
	b.WriteString("\n")
	if len(m.appointments) == 0 {
		b.WriteString(styleDim.Render("  (none)"))
		b.WriteString("\n")
	}
	for _, line := range m.appointments {
		b.WriteString("  " + line + "\n")
	}

	b.WriteString("\n")
	b.WriteString(styleBold.Render("Latest vitals"))
	b.WriteString("\n")
	if len(m.vitals) == 0 {
		b.WriteString(styleDim.Render("  (none)"))
		b.WriteString("\n")
	}
	for _, line := range m.vitals {
		b.WriteString("  " + line + "\n")
	}

	b.WriteString(m.viewStatusLog())
	return b.String()
}

// viewError is shown when a fatal error occurs.
func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(styleErr.Render("  ✗ Something went wrong"))
	b.WriteString("\n\n")
	b.WriteString(styleDim.Render("  " + m.errMsg))
	b.WriteString("\n")

	b.WriteString(m.viewStatusLog())
	return b.String()
}

// viewStatusLog renders the scrolling status log.
func (m Model) viewStatusLog() string {
	if len(m.statusLines) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n")

	for _, line := range m.statusLines {
		switch line.kind {
		case statusOK:
			b.WriteString(styleOK.Render("  ✓ " + line.text))
		case statusWarn:
			b.WriteString(styleWarn.Render("  ⚠ " + line.text))
		default:
			b.WriteString(styleDim.Render("  · " + line.text))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// addStatus appends a line to the status log.
func (m *Model) addStatus(kind statusKind, text string) {
	m.statusLines = append(m.statusLines, statusLine{kind: kind, text: text})
}

// formatDuration formats a duration as "Xm Ys" or "Xs".
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	if d <= 0 {
		return "0s"
	}
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	if m > 0 {
		return fmt.Sprintf("%dm %ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
