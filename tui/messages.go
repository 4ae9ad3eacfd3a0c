package tui

import (
	"time"
)

// MsgBanner signals that the banner/title should be displayed.
type MsgBanner struct{}

// MsgCredentialsFound signals that saved credentials were restored.
type MsgCredentialsFound struct{}

// MsgCredentialsNotFound signals that no saved credentials exist.
type MsgCredentialsNotFound struct{}

// MsgTokenValid signals that the stored access token has not expired yet.
type MsgTokenValid struct{ ExpiresIn time.Duration }

// MsgTokenExpired signals that the stored access token has expired.
type MsgTokenExpired struct{}

// MsgLoggingIn signals that a sign-in attempt has started.
type MsgLoggingIn struct{ Email string }

// MsgLoginOK signals a successful sign-in.
type MsgLoginOK struct{}

// MsgCredentialsSaved signals that credentials were persisted to disk.
type MsgCredentialsSaved struct{ Path string }

// MsgCredentialsSaveFailed signals that persisting credentials failed.
type MsgCredentialsSaveFailed struct{ Err error }

// MsgAccessTokenRejected signals that a request got a 401 and a token
// refresh is starting.
type MsgAccessTokenRejected struct{}

// MsgTokenRefreshed signals that the access token was refreshed and the
// request is being replayed.
type MsgTokenRefreshed struct{}

// MsgRefreshFailed signals that the token refresh failed.
type MsgRefreshFailed struct{ Err error }

// MsgReAuthRequired signals that the refresh token is no longer accepted
// and a new sign-in is required.
type MsgReAuthRequired struct{}

// MsgLoadingProfile signals that the profile fetch has started.
type MsgLoadingProfile struct{}

// MsgProfileLoaded carries the signed-in user's profile summary.
type MsgProfileLoaded struct {
	Name  string
	Email string
}

// MsgAppointmentsLoaded carries formatted upcoming-appointment lines.
type MsgAppointmentsLoaded struct{ Lines []string }

// MsgAppointmentsFailed signals that listing appointments failed.
type MsgAppointmentsFailed struct{ Err error }

// MsgVitalsLoaded carries formatted latest-vitals lines.
type MsgVitalsLoaded struct{ Lines []string }

// MsgVitalsFailed signals that fetching vitals failed.
type MsgVitalsFailed struct{ Err error }

// MsgDone signals successful completion of the whole flow.
type MsgDone struct {
	Name      string
	ExpiresIn time.Duration
}

// MsgFatal signals a fatal error that should terminate the flow.
type MsgFatal struct{ Err error }
