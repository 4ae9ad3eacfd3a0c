package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/caresync/caresync-cli/credstore"
	"github.com/caresync/caresync-cli/httpclient"
)

// newTestAPI wires the service bundle to a test server over the plain
// default transport, with an authenticated store so requests pass a bearer
// check if the handler cares.
func newTestAPI(t *testing.T, handler http.Handler) (*API, *credstore.Store, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	store := credstore.New()
	store.SetTokens("test-at", "test-rt")

	client, err := httpclient.New(
		server.URL,
		store,
		httpclient.WithTransport(httpclient.DoerFunc(func(req *http.Request) (*http.Response, error) {
			return http.DefaultClient.Do(req)
		})),
	)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	return New(client, store), store, server
}

// recordingHandler captures each request's method and path and answers with
// the given status and JSON body.
type recordingHandler struct {
	status int
	body   string

	methods []string
	paths   []string
	queries []string
}

func (h *recordingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.methods = append(h.methods, r.Method)
	h.paths = append(h.paths, r.URL.Path)
	h.queries = append(h.queries, r.URL.RawQuery)

	w.Header().Set("Content-Type", "application/json")
	status := h.status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	body := h.body
	if body == "" {
		body = "{}"
	}
	w.Write([]byte(body))
}

func (h *recordingHandler) lastCall(t *testing.T) (method, path string) {
	t.Helper()
	if len(h.methods) == 0 {
		t.Fatal("No request reached the server")
	}
	return h.methods[len(h.methods)-1], h.paths[len(h.paths)-1]
}
