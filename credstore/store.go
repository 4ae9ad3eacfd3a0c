// Package credstore holds the credentials of the signed-in user: the access
// and refresh token pair plus the user id. A single Store instance is shared
// by the HTTP client and every service that reads or writes credentials.
//
// Persistence is opt-in (remember me) and best effort: the in-memory record
// is always authoritative, and a failed write to disk never fails the
// caller.
package credstore

import "sync"

// Credentials is the credential record as persisted to disk. Tokens are
// opaque strings; an empty string means absent. Access and refresh tokens
// are independently optional.
type Credentials struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	UserID       string `json:"user_id"`
}

// Store is a process-wide credential record, safe for concurrent use.
// Last writer wins; no history is kept. Create one with New.
type Store struct {
	mu             sync.RWMutex
	creds          Credentials
	rememberMe     bool
	path           string
	purgeOnDisable bool
	onSaveError    func(error)
}

// Option configures a Store.
type Option func(*Store)

// WithFile enables persistence to path. Credentials previously persisted
// there are restored and remember-me is switched on.
func WithFile(path string) Option {
	return func(s *Store) { s.path = path }
}

// WithPurgeOnDisable controls what happens to already-persisted credentials
// when remember-me is switched off: true deletes the file, false (the
// default) keeps it so remember-me can be re-enabled without signing in
// again.
func WithPurgeOnDisable(purge bool) Option {
	return func(s *Store) { s.purgeOnDisable = purge }
}

// WithSaveErrorHandler installs fn to be notified when a persistence write
// fails. Persistence is best effort; without a handler failures are
// silently dropped.
func WithSaveErrorHandler(fn func(error)) Option {
	return func(s *Store) { s.onSaveError = fn }
}

// New creates a Store. With WithFile, a previously persisted record is
// loaded; otherwise the store starts empty and lives only in memory.
func New(opts ...Option) *Store {
	s := &Store{}
	for _, opt := range opts {
		opt(s)
	}
	if s.path != "" {
		if creds, err := loadCredentials(s.path); err == nil {
			s.creds = *creds
			s.rememberMe = true
		}
	}
	return s
}

// Access returns the current access token, or "" when unauthenticated.
func (s *Store) Access() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds.AccessToken
}

// Refresh returns the current refresh token, or "" when none is held.
func (s *Store) Refresh() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds.RefreshToken
}

// UserID returns the id of the signed-in user, or "".
func (s *Store) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds.UserID
}

// RememberMe reports whether credentials are persisted across restarts.
func (s *Store) RememberMe() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rememberMe
}

// SetAccess replaces the access token.
func (s *Store) SetAccess(token string) {
	s.mu.Lock()
	s.creds.AccessToken = token
	snapshot, save := s.creds, s.shouldPersist()
	s.mu.Unlock()
	if save {
		s.persist(snapshot)
	}
}

// SetRefresh replaces the refresh token.
func (s *Store) SetRefresh(token string) {
	s.mu.Lock()
	s.creds.RefreshToken = token
	snapshot, save := s.creds, s.shouldPersist()
	s.mu.Unlock()
	if save {
		s.persist(snapshot)
	}
}

// SetUserID replaces the user id.
func (s *Store) SetUserID(id string) {
	s.mu.Lock()
	s.creds.UserID = id
	snapshot, save := s.creds, s.shouldPersist()
	s.mu.Unlock()
	if save {
		s.persist(snapshot)
	}
}

// SetTokens replaces both tokens in one write, keeping the user id. Used by
// the refresh coordinator when the server rotates the refresh token.
func (s *Store) SetTokens(access, refresh string) {
	s.mu.Lock()
	s.creds.AccessToken = access
	s.creds.RefreshToken = refresh
	snapshot, save := s.creds, s.shouldPersist()
	s.mu.Unlock()
	if save {
		s.persist(snapshot)
	}
}

// SetCredentials replaces the whole record in one write. Used by login.
func (s *Store) SetCredentials(access, refresh, userID string) {
	s.mu.Lock()
	s.creds = Credentials{AccessToken: access, RefreshToken: refresh, UserID: userID}
	snapshot, save := s.creds, s.shouldPersist()
	s.mu.Unlock()
	if save {
		s.persist(snapshot)
	}
}

// Clear resets access token, refresh token and user id. The remember-me
// flag is untouched, but any persisted copy is removed so a restart cannot
// resurrect a logged-out session.
func (s *Store) Clear() {
	s.mu.Lock()
	s.creds = Credentials{}
	path := s.path
	s.mu.Unlock()
	if path != "" {
		if err := removeCredentials(path); err != nil {
			s.reportSaveError(err)
		}
	}
}

// SetRememberMe toggles persistence. Enabling it persists the current
// record immediately. Disabling it stops future writes; whether the
// already-persisted file is removed is governed by WithPurgeOnDisable.
func (s *Store) SetRememberMe(remember bool) {
	s.mu.Lock()
	s.rememberMe = remember
	snapshot := s.creds
	path, purge := s.path, s.purgeOnDisable
	s.mu.Unlock()

	if path == "" {
		return
	}
	if remember {
		s.persist(snapshot)
		return
	}
	if purge {
		if err := removeCredentials(path); err != nil {
			s.reportSaveError(err)
		}
	}
}

// shouldPersist must be called with the lock held.
func (s *Store) shouldPersist() bool {
	return s.rememberMe && s.path != ""
}

func (s *Store) persist(creds Credentials) {
	if err := saveCredentials(s.path, creds); err != nil {
		s.reportSaveError(err)
	}
}

func (s *Store) reportSaveError(err error) {
	if s.onSaveError != nil {
		s.onSaveError(err)
	}
}
