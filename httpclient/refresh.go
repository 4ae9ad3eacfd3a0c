package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/sync/singleflight"

	"github.com/caresync/caresync-cli/credstore"
)

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

type refreshResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// RefreshHooks lets a caller observe the refresh cycle; the CLI uses it to
// narrate "token rejected, refreshing". Hooks run at most once per shared
// exchange and must not block.
type RefreshHooks struct {
	OnStart func()
	OnDone  func(err error)
}

// Coordinator intercepts 401 responses, exchanges the refresh token for a
// new access token, updates the credential store and replays the original
// request exactly once. Requests that hit 401 while an exchange is already
// in flight wait for it instead of issuing their own.
type Coordinator struct {
	store     *credstore.Store
	endpoint  string
	transport Doer
	hooks     RefreshHooks
	group     singleflight.Group
}

func newCoordinator(store *credstore.Store, endpoint string, transport Doer, hooks RefreshHooks) *Coordinator {
	return &Coordinator{
		store:     store,
		endpoint:  endpoint,
		transport: transport,
		hooks:     hooks,
	}
}

// ctxKeyReplayed marks a request that has already been replayed after a
// refresh, so one logical request can never trigger a second exchange.
type ctxKeyReplayed struct{}

func replayed(ctx context.Context) bool {
	marked, _ := ctx.Value(ctxKeyReplayed{}).(bool)
	return marked
}

// Middleware returns the 401-refresh-replay middleware. Everything other
// than a first 401 passes through unmodified.
func (c *Coordinator) Middleware() Middleware {
	return func(next Doer) Doer {
		return DoerFunc(func(req *http.Request) (*http.Response, error) {
			resp, err := next.Do(req)
			if err != nil || resp.StatusCode != http.StatusUnauthorized {
				return resp, err
			}

			if replayed(req.Context()) {
				// Second 401 for this logical request is terminal.
				return resp, nil
			}
			if c.store.Refresh() == "" {
				// Nothing to refresh with; the original 401 stands.
				return resp, nil
			}

			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()

			token, err := c.refresh(req.Context())
			if err != nil {
				return nil, err
			}

			replay, err := cloneRequest(req)
			if err != nil {
				return nil, err
			}
			replay = replay.WithContext(
				context.WithValue(req.Context(), ctxKeyReplayed{}, true),
			)
			replay.Header.Set("Authorization", "Bearer "+token)
			return next.Do(replay)
		})
	}
}

// refresh obtains a fresh access token. Concurrent callers share a single
// exchange; every waiter receives the same token or the same error.
func (c *Coordinator) refresh(ctx context.Context) (string, error) {
	v, err, _ := c.group.Do("refresh", func() (any, error) {
		if c.hooks.OnStart != nil {
			c.hooks.OnStart()
		}
		// Detached from the triggering request so one caller's cancellation
		// does not fail every waiter sharing this exchange.
		exchangeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), refreshTimeout)
		defer cancel()
		token, exchangeErr := c.exchange(exchangeCtx)
		if c.hooks.OnDone != nil {
			c.hooks.OnDone(exchangeErr)
		}
		return token, exchangeErr
	})
	if err != nil {
		return "", &RefreshError{Err: err}
	}
	return v.(string), nil
}

// exchange performs the refresh call and updates the store on success. The
// store is the source of truth for the bearer header, so updating it here
// is what lets subsequent unrelated requests pick up the new token.
func (c *Coordinator) exchange(ctx context.Context) (string, error) {
	refreshToken := c.store.Refresh()
	if refreshToken == "" {
		return "", ErrRefreshTokenExpired
	}

	payload, err := json.Marshal(refreshRequest{Refresh: refreshToken})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.transport.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read refresh response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp ErrorResponse
		if jsonErr := json.Unmarshal(body, &errResp); jsonErr == nil {
			if errResp.Err == "invalid_grant" || errResp.Err == "invalid_token" {
				return "", ErrRefreshTokenExpired
			}
		}
		if resp.StatusCode == http.StatusUnauthorized {
			return "", ErrRefreshTokenExpired
		}
		return "", newHTTPError(resp, body)
	}

	var tokenResp refreshResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return "", fmt.Errorf("failed to parse refresh response: %w", err)
	}
	if tokenResp.Access == "" {
		return "", errors.New("refresh response has no access token")
	}

	// Rotation mode servers return a new refresh token; fixed mode servers
	// omit it, in which case the old one is kept.
	if tokenResp.Refresh != "" {
		c.store.SetTokens(tokenResp.Access, tokenResp.Refresh)
	} else {
		c.store.SetAccess(tokenResp.Access)
	}

	return tokenResp.Access, nil
}

// cloneRequest copies req for replay, rewinding the body via GetBody.
func cloneRequest(req *http.Request) (*http.Request, error) {
	clone := req.Clone(req.Context())
	if req.Body != nil {
		if req.GetBody == nil {
			return nil, errors.New("cannot replay request without a rewindable body")
		}
		body, err := req.GetBody()
		if err != nil {
			return nil, fmt.Errorf("failed to rewind request body: %w", err)
		}
		clone.Body = body
	}
	return clone, nil
}
