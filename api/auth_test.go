package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/caresync/caresync-cli/httpclient"
)

// signedToken builds a real JWT so user-id backfill from the subject claim
// can be exercised.
func signedToken(t *testing.T, subject string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": subject,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}
	return signed
}

func TestAuthLogin_StoresSession(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Login used %s, want POST", r.Method)
		}
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("Failed to decode login payload: %v", err)
		}
		if req.Email != "pat@example.com" || req.Password != "hunter2" {
			t.Errorf("Login payload = %+v, want the supplied credentials", req)
		}
		json.NewEncoder(w).Encode(Session{
			Access:  "new-at",
			Refresh: "new-rt",
			UserID:  "user-42",
		})
	})

	api, store, _ := newTestAPI(t, mux)

	session, err := api.Auth.Login(context.Background(), "pat@example.com", "hunter2")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if session.UserID != "user-42" {
		t.Errorf("Session user id = %q, want user-42", session.UserID)
	}

	if store.Access() != "new-at" || store.Refresh() != "new-rt" || store.UserID() != "user-42" {
		t.Errorf("Store not updated: access=%q refresh=%q userID=%q",
			store.Access(), store.Refresh(), store.UserID())
	}
}

func TestAuthLogin_BackfillsUserIDFromToken(t *testing.T) {
	access := signedToken(t, "user-from-claim")
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Session{Access: access, Refresh: "new-rt"})
	})

	api, store, _ := newTestAPI(t, mux)

	session, err := api.Auth.Login(context.Background(), "pat@example.com", "hunter2")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if session.UserID != "user-from-claim" {
		t.Errorf("Session user id = %q, want the token's subject", session.UserID)
	}
	if store.UserID() != "user-from-claim" {
		t.Errorf("Store user id = %q, want the token's subject", store.UserID())
	}
}

func TestAuthLogin_FailureLeavesStoreUntouched(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"message": "invalid email or password"})
	})

	api, store, _ := newTestAPI(t, mux)
	// No refresh token, so the login 401 is not mistaken for an expired
	// access token.
	store.SetTokens("test-at", "")

	_, err := api.Auth.Login(context.Background(), "pat@example.com", "wrong")
	if err == nil {
		t.Fatal("Expected login to fail")
	}

	var httpErr *httpclient.HTTPError
	if !errors.As(err, &httpErr) || httpErr.Message != "invalid email or password" {
		t.Errorf("Expected the server's message, got %v", err)
	}
	if store.Access() != "test-at" {
		t.Errorf("Failed login must not touch the store, got access=%q", store.Access())
	}
}

func TestAuthRegister_SignsIn(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/register", func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("Failed to decode register payload: %v", err)
		}
		if req.Email == "" || req.FirstName == "" {
			t.Errorf("Register payload incomplete: %+v", req)
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(Session{Access: "new-at", Refresh: "new-rt", UserID: "user-7"})
	})

	api, store, _ := newTestAPI(t, mux)

	session, err := api.Auth.Register(context.Background(), RegisterRequest{
		Email:     "new@example.com",
		Password:  "hunter2",
		FirstName: "Pat",
		LastName:  "Doe",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if session.UserID != "user-7" || store.UserID() != "user-7" {
		t.Errorf("Register did not sign the new user in: session=%q store=%q",
			session.UserID, store.UserID())
	}
}

func TestAuthLogout_ClearsStoreEvenOnServerFailure(t *testing.T) {
	handler := &recordingHandler{status: http.StatusInternalServerError}
	api, store, _ := newTestAPI(t, handler)

	err := api.Auth.Logout(context.Background())
	if err == nil {
		t.Error("Expected the revoke failure to be reported")
	}

	if method, path := handler.lastCall(t); method != http.MethodPost || path != "/auth/logout" {
		t.Errorf("Logout called %s %s, want POST /auth/logout", method, path)
	}
	if store.Access() != "" || store.Refresh() != "" {
		t.Errorf("Store must be cleared regardless, got access=%q refresh=%q",
			store.Access(), store.Refresh())
	}
}

func TestAuthMe(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/users/me", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(User{ID: "user-42", Email: "pat@example.com", FirstName: "Pat"})
	})

	api, _, _ := newTestAPI(t, mux)

	user, err := api.Auth.Me(context.Background())
	if err != nil {
		t.Fatalf("Me failed: %v", err)
	}
	if user.ID != "user-42" || user.Email != "pat@example.com" {
		t.Errorf("Me returned %+v", user)
	}
}
