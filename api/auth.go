package api

import (
	"context"
	"errors"

	"github.com/caresync/caresync-cli/credstore"
	"github.com/caresync/caresync-cli/httpclient"
)

// User is the signed-in user's profile.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	BirthDate string `json:"birthDate,omitempty"`
}

// Session is the token set returned by login and register.
type Session struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
	UserID  string `json:"userId"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the payload for creating an account.
type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// AuthService manages the account session. It is the only service that
// writes to the credential store.
type AuthService struct {
	client *httpclient.Client
	store  *credstore.Store
}

// Login signs in with email and password and stores the resulting tokens.
// A missing user id in the response is backfilled from the access token's
// subject claim.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	var session Session
	err := s.client.Post(ctx, "/auth/login", loginRequest{Email: email, Password: password}, &session)
	if err != nil {
		return nil, err
	}
	if session.Access == "" {
		return nil, errors.New("login response has no access token")
	}
	if session.UserID == "" {
		session.UserID = credstore.TokenSubject(session.Access)
	}

	s.store.SetCredentials(session.Access, session.Refresh, session.UserID)
	return &session, nil
}

// Register creates an account and stores the returned session, signing the
// new user in.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*Session, error) {
	var session Session
	if err := s.client.Post(ctx, "/auth/register", req, &session); err != nil {
		return nil, err
	}
	if session.Access == "" {
		return nil, errors.New("register response has no access token")
	}
	if session.UserID == "" {
		session.UserID = credstore.TokenSubject(session.Access)
	}

	s.store.SetCredentials(session.Access, session.Refresh, session.UserID)
	return &session, nil
}

// Logout revokes the session server-side and clears the store. The store is
// cleared even when the revoke call fails: a terminal auth failure must not
// leave credentials behind.
func (s *AuthService) Logout(ctx context.Context) error {
	err := s.client.Post(ctx, "/auth/logout", nil, nil)
	s.store.Clear()
	return err
}

// Me fetches the signed-in user's profile.
func (s *AuthService) Me(ctx context.Context) (*User, error) {
	var user User
	if err := s.client.Get(ctx, "/users/me", &user); err != nil {
		return nil, err
	}
	return &user, nil
}
