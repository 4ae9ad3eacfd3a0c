package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"golang.org/x/term"

	tea "charm.land/bubbletea/v2"

	"github.com/caresync/caresync-cli/api"
	"github.com/caresync/caresync-cli/credstore"
	"github.com/caresync/caresync-cli/httpclient"
	"github.com/caresync/caresync-cli/tui"
)

var (
	serverURL         string
	email             string
	credentialsFile   string
	remember          bool
	debug             bool
	flagServerURL     *string
	flagEmail         *string
	flagCredsFile     *string
	flagNoRemember    *bool
	flagDebug         *bool
	configInitialized bool
)

func init() {
	// Load .env file if exists (ignore error if not found)
	_ = godotenv.Load()

	// Define flags (but don't parse yet to avoid conflicts with test flags)
	flagServerURL = flag.String(
		"server-url",
		"",
		"CareSync API URL (default: http://localhost:8080 or SERVER_URL env)",
	)
	flagEmail = flag.String("email", "", "Account email (or set EMAIL env)")
	flagCredsFile = flag.String(
		"credentials-file",
		"",
		"Credential storage file (default: .caresync-credentials.json or CREDENTIALS_FILE env)",
	)
	flagNoRemember = flag.Bool(
		"no-remember",
		false,
		"Do not persist credentials across runs",
	)
	flagDebug = flag.Bool("debug", false, "Log every HTTP dispatch to stderr")
}

// initConfig parses flags and initializes configuration
// Separated from init() to avoid conflicts with test flag parsing
func initConfig() {
	if configInitialized {
		return
	}
	configInitialized = true

	flag.Parse()

	// Priority: flag > env > default
	serverURL = getConfig(*flagServerURL, "SERVER_URL", "http://localhost:8080")
	email = getConfig(*flagEmail, "EMAIL", "")
	credentialsFile = getConfig(*flagCredsFile, "CREDENTIALS_FILE", ".caresync-credentials.json")
	remember = !*flagNoRemember
	debug = *flagDebug

	// Warn if using HTTP instead of HTTPS
	if strings.HasPrefix(strings.ToLower(serverURL), "http://") {
		fmt.Fprintln(
			os.Stderr,
			"⚠️  WARNING: Using HTTP instead of HTTPS. Tokens will be transmitted in plaintext!",
		)
		fmt.Fprintln(
			os.Stderr,
			"⚠️  This is only safe for local development. Use HTTPS in production.",
		)
		fmt.Fprintln(os.Stderr)
	}
}

// getConfig returns value with priority: flag > env > default
func getConfig(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return getEnv(envKey, defaultValue)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// isTTY reports whether stderr is a character device (interactive terminal).
// We check stderr because the TUI renders to stderr, allowing stdout to be piped.
func isTTY() bool {
	fi, err := os.Stderr.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

// loginInput carries interactively gathered sign-in credentials.
type loginInput struct {
	email    string
	password string
}

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// hasStoredCredentials peeks at the credentials file without building the
// real store, so login input can be gathered before the TUI takes over the
// terminal.
func hasStoredCredentials() bool {
	if !remember {
		return false
	}
	store := credstore.New(credstore.WithFile(credentialsFile))
	return store.Access() != "" || store.Refresh() != ""
}

// promptLogin gathers email and password. The email flag/env wins over the
// prompt; the password comes from the PASSWORD env or a no-echo prompt.
func promptLogin(reader *bufio.Reader, w io.Writer) (*loginInput, error) {
	in := &loginInput{email: email}

	if in.email == "" {
		fmt.Fprint(w, "Email: ")
		line, err := reader.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && len(line) > 0) {
			return nil, fmt.Errorf("failed to read email: %w", err)
		}
		in.email = strings.TrimSpace(line)
	}
	if in.email == "" {
		return nil, errors.New("email is required")
	}

	if pw := os.Getenv("PASSWORD"); pw != "" {
		in.password = pw
		return in, nil
	}

	fmt.Fprint(w, "Password: ")
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}
	if len(pw) == 0 {
		return nil, errors.New("password is required")
	}
	in.password = string(pw)
	return in, nil
}

func main() {
	initConfig()

	// Login input has to be gathered before the TUI owns the terminal.
	var login *loginInput
	if !hasStoredCredentials() {
		in, err := promptLogin(bufio.NewReader(os.Stdin), os.Stderr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		login = in
	}

	if isTTY() {
		// Run TUI program on stderr so stdout pipes are not corrupted
		m := tui.NewModel()
		// WithInput(nil): disable stdin/keyboard input so BubbleTea skips terminal
		// capability queries (?2026/?2027). Ctrl+C is handled by signal.NotifyContext.
		p := tea.NewProgram(m, tea.WithOutput(os.Stderr), tea.WithInput(nil))

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := p.Run(); err != nil {
				fmt.Fprintf(os.Stderr, "TUI error: %v\n", err)
			}
		}()

		d := tui.NewProgramDisplayer(p)
		d.Banner()
		runErr := run(d, login)
		p.Quit() // let BubbleTea drain terminal query responses before exiting
		wg.Wait()
		if runErr != nil {
			os.Exit(1)
		}
	} else {
		d := tui.NewPlainDisplayer(os.Stderr)
		d.Banner()
		if err := run(d, login); err != nil {
			os.Exit(1)
		}
	}
}

func run(d tui.Displayer, login *loginInput) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	storeOpts := []credstore.Option{
		credstore.WithSaveErrorHandler(func(err error) {
			d.CredentialsSaveFailed(err)
		}),
	}
	if remember {
		storeOpts = append(storeOpts, credstore.WithFile(credentialsFile))
	}
	store := credstore.New(storeOpts...)
	if remember {
		store.SetRememberMe(true)
	}

	clientOpts := []httpclient.Option{
		httpclient.WithRefreshHooks(httpclient.RefreshHooks{
			OnStart: d.AccessTokenRejected,
			OnDone: func(err error) {
				if err != nil {
					d.RefreshFailed(err)
					return
				}
				d.TokenRefreshed()
			},
		}),
	}
	if debug {
		logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
		clientOpts = append(clientOpts, httpclient.WithLogger(logger))
	}

	client, err := httpclient.New(serverURL, store, clientOpts...)
	if err != nil {
		d.Fatal(err)
		return err
	}
	services := api.New(client, store)

	if login != nil {
		d.CredentialsNotFound()
		d.LoggingIn(login.email)
		if _, err := services.Auth.Login(ctx, login.email, login.password); err != nil {
			d.Fatal(err)
			return err
		}
		d.LoginOK()
		if remember {
			d.CredentialsSaved(credentialsFile)
		}
	} else {
		d.CredentialsFound()
		if expiry, ok := credstore.TokenExpiry(store.Access()); ok {
			if time.Now().Before(expiry) {
				d.TokenValid(time.Until(expiry))
			} else {
				d.TokenExpired()
			}
		}
	}

	// The profile fetch exercises the automatic 401-refresh-replay path when
	// the stored access token has gone stale.
	d.LoadingProfile()
	user, err := services.Auth.Me(ctx)
	if err != nil {
		if errors.Is(err, httpclient.ErrUnauthorized) ||
			errors.Is(err, httpclient.ErrRefreshTokenExpired) {
			d.ReAuthRequired()
			store.Clear()
		} else {
			d.Fatal(err)
		}
		return err
	}
	d.ProfileLoaded(displayName(user), user.Email)

	now := time.Now()
	appointments, err := services.Appointments.List(ctx, now, now.AddDate(0, 1, 0))
	if err != nil {
		d.AppointmentsFailed(err)
	} else {
		d.AppointmentsLoaded(appointmentLines(appointments))
	}

	vitals, err := services.Vitals.List(ctx, "", now.AddDate(0, 0, -7), now)
	if err != nil {
		d.VitalsFailed(err)
	} else {
		d.VitalsLoaded(vitalLines(vitals))
	}

	sessionLeft := time.Duration(0)
	if expiry, ok := credstore.TokenExpiry(store.Access()); ok {
		sessionLeft = time.Until(expiry)
	}
	d.Done(displayName(user), sessionLeft)

	return nil
}

// displayName renders a user's full name, falling back to the email.
func displayName(user *api.User) string {
	name := strings.TrimSpace(user.FirstName + " " + user.LastName)
	if name == "" {
		return user.Email
	}
	return name
}

// appointmentLines formats appointments for the displayer.
func appointmentLines(appointments []api.Appointment) []string {
	lines := make([]string, 0, len(appointments))
	for _, a := range appointments {
		provider := a.Provider
		if provider == "" {
			provider = a.ProviderID
		}
		line := fmt.Sprintf("%s — %s", a.StartsAt.Local().Format("Mon Jan 2 15:04"), provider)
		if a.Reason != "" {
			line += " (" + a.Reason + ")"
		}
		lines = append(lines, line)
	}
	return lines
}

// vitalLines formats the most recent sample per vital type, newest first
// within the input order.
func vitalLines(samples []api.VitalSample) []string {
	latest := map[string]api.VitalSample{}
	order := []string{}
	for _, s := range samples {
		prev, seen := latest[s.Type]
		if !seen {
			order = append(order, s.Type)
			latest[s.Type] = s
			continue
		}
		if s.MeasuredAt.After(prev.MeasuredAt) {
			latest[s.Type] = s
		}
	}

	lines := make([]string, 0, len(order))
	for _, typ := range order {
		s := latest[typ]
		lines = append(lines, fmt.Sprintf("%s: %g %s (%s)",
			strings.ReplaceAll(s.Type, "_", " "),
			s.Value,
			s.Unit,
			s.MeasuredAt.Local().Format("Jan 2 15:04"),
		))
	}
	return lines
}
