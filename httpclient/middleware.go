package httpclient

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/caresync/caresync-cli/credstore"
)

// Doer executes a single HTTP request.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// DoerFunc adapts a function to the Doer interface.
type DoerFunc func(*http.Request) (*http.Response, error)

func (f DoerFunc) Do(req *http.Request) (*http.Response, error) { return f(req) }

// Middleware wraps a Doer with additional request/response behavior. A
// middleware may short-circuit by not calling next.
type Middleware func(next Doer) Doer

// Chain applies middleware to base so that the first element is outermost.
func Chain(base Doer, middleware ...Middleware) Doer {
	d := base
	for i := len(middleware) - 1; i >= 0; i-- {
		d = middleware[i](d)
	}
	return d
}

// BearerAuth injects "Authorization: Bearer <token>" from the store's
// access token, read at dispatch time so each call sees the current value.
// The header is attached even when no token is held (the server rejects the
// empty bearer). An Authorization header already set on the request wins.
func BearerAuth(store *credstore.Store) Middleware {
	return func(next Doer) Doer {
		return DoerFunc(func(req *http.Request) (*http.Response, error) {
			if req.Header.Get("Authorization") == "" {
				req.Header.Set("Authorization", "Bearer "+store.Access())
			}
			return next.Do(req)
		})
	}
}

// RequestID sets an X-Request-ID header (UUID) when the caller did not
// provide one. It sits outside the refresh coordinator, so a request and
// its refresh-triggered replay share one id in server logs.
func RequestID() Middleware {
	return func(next Doer) Doer {
		return DoerFunc(func(req *http.Request) (*http.Response, error) {
			if req.Header.Get("X-Request-ID") == "" {
				req.Header.Set("X-Request-ID", uuid.NewString())
			}
			return next.Do(req)
		})
	}
}

// Logging emits a debug event per dispatch: method, URL, request id, status
// and elapsed time. The replay after a token refresh is logged as its own
// dispatch.
func Logging(logger zerolog.Logger) Middleware {
	return func(next Doer) Doer {
		return DoerFunc(func(req *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next.Do(req)

			evt := logger.Debug().
				Str("method", req.Method).
				Str("url", req.URL.String()).
				Str("request_id", req.Header.Get("X-Request-ID")).
				Dur("elapsed", time.Since(start))
			if err != nil {
				evt.Err(err).Msg("request failed")
				return nil, err
			}
			evt.Int("status", resp.StatusCode).Msg("request")
			return resp, nil
		})
	}
}
