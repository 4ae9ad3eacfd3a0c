package tui

import (
	"fmt"
	"io"
	"time"

	tea "charm.land/bubbletea/v2"
)

// Displayer abstracts all output from the sign-in and sync flow.
type Displayer interface {
	Banner()
	CredentialsFound()
	CredentialsNotFound()
	TokenValid(expiresIn time.Duration)
	TokenExpired()
	LoggingIn(email string)
	LoginOK()
	CredentialsSaved(path string)
	CredentialsSaveFailed(err error)
	AccessTokenRejected()
	TokenRefreshed()
	RefreshFailed(err error)
	ReAuthRequired()
	LoadingProfile()
	ProfileLoaded(name, email string)
	AppointmentsLoaded(lines []string)
	AppointmentsFailed(err error)
	VitalsLoaded(lines []string)
	VitalsFailed(err error)
	Done(name string, expiresIn time.Duration)
	Fatal(err error)
}

// PlainDisplayer writes plain text output to w. Used when stderr is not a
// TTY (pipes, CI, SSH without pty).
type PlainDisplayer struct {
	w io.Writer
}

// NewPlainDisplayer creates a PlainDisplayer that writes to w.
func NewPlainDisplayer(w io.Writer) *PlainDisplayer {
	return &PlainDisplayer{w: w}
}

func (p *PlainDisplayer) Banner() {
	fmt.Fprintln(p.w, "=== CareSync ===")
	fmt.Fprintln(p.w)
}

func (p *PlainDisplayer) CredentialsFound() {
	fmt.Fprintln(p.w, "Found saved credentials")
}

func (p *PlainDisplayer) CredentialsNotFound() {
	fmt.Fprintln(p.w, "No saved credentials, signing in...")
}

func (p *PlainDisplayer) TokenValid(expiresIn time.Duration) {
	fmt.Fprintf(p.w, "Access token valid for %s\n", expiresIn.Round(time.Second))
}

func (p *PlainDisplayer) TokenExpired() {
	fmt.Fprintln(p.w, "Access token expired, it will be refreshed on the next request")
}

func (p *PlainDisplayer) LoggingIn(email string) {
	fmt.Fprintf(p.w, "Signing in as %s...\n", email)
}

func (p *PlainDisplayer) LoginOK() {
	fmt.Fprintln(p.w, "Signed in successfully")
}

func (p *PlainDisplayer) CredentialsSaved(path string) {
	fmt.Fprintf(p.w, "Credentials saved to %s\n", path)
}

func (p *PlainDisplayer) CredentialsSaveFailed(err error) {
	fmt.Fprintf(p.w, "Warning: failed to save credentials: %v\n", err)
}

func (p *PlainDisplayer) AccessTokenRejected() {
	fmt.Fprintln(p.w, "Access token rejected (401), refreshing...")
}

func (p *PlainDisplayer) TokenRefreshed() {
	fmt.Fprintln(p.w, "Token refreshed, retrying request...")
}

func (p *PlainDisplayer) RefreshFailed(err error) {
	fmt.Fprintf(p.w, "Token refresh failed: %v\n", err)
}

func (p *PlainDisplayer) ReAuthRequired() {
	fmt.Fprintln(p.w, "Session expired, please sign in again")
}

func (p *PlainDisplayer) LoadingProfile() {
	fmt.Fprintln(p.w, "Loading profile...")
}

func (p *PlainDisplayer) ProfileLoaded(name, email string) {
	fmt.Fprintf(p.w, "Signed in as %s <%s>\n", name, email)
}

func (p *PlainDisplayer) AppointmentsLoaded(lines []string) {
	fmt.Fprintln(p.w, "\nUpcoming appointments:")
	if len(lines) == 0 {
		fmt.Fprintln(p.w, "  (none)")
		return
	}
	for _, line := range lines {
		fmt.Fprintf(p.w, "  %s\n", line)
	}
}

func (p *PlainDisplayer) AppointmentsFailed(err error) {
	fmt.Fprintf(p.w, "Failed to load appointments: %v\n", err)
}

func (p *PlainDisplayer) VitalsLoaded(lines []string) {
	fmt.Fprintln(p.w, "\nLatest vitals:")
	if len(lines) == 0 {
		fmt.Fprintln(p.w, "  (none)")
		return
	}
	for _, line := range lines {
		fmt.Fprintf(p.w, "  %s\n", line)
	}
}

func (p *PlainDisplayer) VitalsFailed(err error) {
	fmt.Fprintf(p.w, "Failed to load vitals: %v\n", err)
}

func (p *PlainDisplayer) Done(name string, expiresIn time.Duration) {
	fmt.Fprintln(p.w, "\n========================================")
	fmt.Fprintf(p.w, "All done, %s\n", name)
	fmt.Fprintf(p.w, "Session valid for: %s\n", expiresIn.Round(time.Second))
	fmt.Fprintln(p.w, "========================================")
}

func (p *PlainDisplayer) Fatal(err error) {
	fmt.Fprintf(p.w, "Error: %v\n", err)
}

// NoopDisplayer is a no-op implementation used in tests.
type NoopDisplayer struct{}

func (NoopDisplayer) Banner()                        {}
func (NoopDisplayer) CredentialsFound()              {}
func (NoopDisplayer) CredentialsNotFound()           {}
func (NoopDisplayer) TokenValid(_ time.Duration)     {}
func (NoopDisplayer) TokenExpired()                  {}
func (NoopDisplayer) LoggingIn(_ string)             {}
func (NoopDisplayer) LoginOK()                       {}
func (NoopDisplayer) CredentialsSaved(_ string)      {}
func (NoopDisplayer) CredentialsSaveFailed(_ error)  {}
func (NoopDisplayer) AccessTokenRejected()           {}
func (NoopDisplayer) TokenRefreshed()                {}
func (NoopDisplayer) RefreshFailed(_ error)          {}
func (NoopDisplayer) ReAuthRequired()                {}
func (NoopDisplayer) LoadingProfile()                {}
func (NoopDisplayer) ProfileLoaded(_, _ string)      {}
func (NoopDisplayer) AppointmentsLoaded(_ []string)  {}
func (NoopDisplayer) AppointmentsFailed(_ error)     {}
func (NoopDisplayer) VitalsLoaded(_ []string)        {}
func (NoopDisplayer) VitalsFailed(_ error)           {}
func (NoopDisplayer) Done(_ string, _ time.Duration) {}
func (NoopDisplayer) Fatal(_ error)                  {}

// ProgramDisplayer sends BubbleTea messages to a running tea.Program.
type ProgramDisplayer struct {
	p *tea.Program
}

// NewProgramDisplayer creates a ProgramDisplayer that sends messages to p.
func NewProgramDisplayer(p *tea.Program) *ProgramDisplayer {
	return &ProgramDisplayer{p: p}
}

func (t *ProgramDisplayer) Banner() {
	t.p.Send(MsgBanner{})
}

func (t *ProgramDisplayer) CredentialsFound() {
	t.p.Send(MsgCredentialsFound{})
}

func (t *ProgramDisplayer) CredentialsNotFound() {
	t.p.Send(MsgCredentialsNotFound{})
}

func (t *ProgramDisplayer) TokenValid(expiresIn time.Duration) {
	t.p.Send(MsgTokenValid{ExpiresIn: expiresIn})
}

func (t *ProgramDisplayer) TokenExpired() {
	t.p.Send(MsgTokenExpired{})
}

func (t *ProgramDisplayer) LoggingIn(email string) {
	t.p.Send(MsgLoggingIn{Email: email})
}

func (t *ProgramDisplayer) LoginOK() {
	t.p.Send(MsgLoginOK{})
}

func (t *ProgramDisplayer) CredentialsSaved(path string) {
	t.p.Send(MsgCredentialsSaved{Path: path})
}

func (t *ProgramDisplayer) CredentialsSaveFailed(err error) {
	t.p.Send(MsgCredentialsSaveFailed{Err: err})
}

func (t *ProgramDisplayer) AccessTokenRejected() {
	t.p.Send(MsgAccessTokenRejected{})
}

func (t *ProgramDisplayer) TokenRefreshed() {
	t.p.Send(MsgTokenRefreshed{})
}

func (t *ProgramDisplayer) RefreshFailed(err error) {
	t.p.Send(MsgRefreshFailed{Err: err})
}

func (t *ProgramDisplayer) ReAuthRequired() {
	t.p.Send(MsgReAuthRequired{})
}

func (t *ProgramDisplayer) LoadingProfile() {
	t.p.Send(MsgLoadingProfile{})
}

func (t *ProgramDisplayer) ProfileLoaded(name, email string) {
	t.p.Send(MsgProfileLoaded{Name: name, Email: email})
}

func (t *ProgramDisplayer) AppointmentsLoaded(lines []string) {
	t.p.Send(MsgAppointmentsLoaded{Lines: lines})
}

func (t *ProgramDisplayer) AppointmentsFailed(err error) {
	t.p.Send(MsgAppointmentsFailed{Err: err})
}

func (t *ProgramDisplayer) VitalsLoaded(lines []string) {
	t.p.Send(MsgVitalsLoaded{Lines: lines})
}

func (t *ProgramDisplayer) VitalsFailed(err error) {
	t.p.Send(MsgVitalsFailed{Err: err})
}

func (t *ProgramDisplayer) Done(name string, expiresIn time.Duration) {
	t.p.Send(MsgDone{Name: name, ExpiresIn: expiresIn})
}

func (t *ProgramDisplayer) Fatal(err error) {
	t.p.Send(MsgFatal{Err: err})
}
