// Package providerfake is an in-process stand-in for the VK ID and VK API endpoints.
package providerfake

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/jrsteele09/vkid-relay/provider"
)

const (
	PathToken  = "/oauth2/auth"
	PathRevoke = "/oauth2/revoke"
	PathLogout = "/oauth2/logout"
)

// Responder produces a status code and a JSON body for a received form.
// A json.RawMessage body is written verbatim.
type Responder func(form url.Values) (int, any)

type FakeProvider struct {
	Server *httptest.Server

	lock       sync.Mutex
	responders map[string]Responder
	requests   map[string][]url.Values
}

func New(t testing.TB) *FakeProvider {
	t.Helper()

	f := &FakeProvider{
		responders: make(map[string]Responder),
		requests:   make(map[string][]url.Values),
	}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Server.Close)
	return f
}

func (f *FakeProvider) Endpoints() provider.Endpoints {
	return provider.EndpointsForHosts(f.Server.URL, f.Server.URL)
}

// Handle registers the responder for a path such as PathToken or "/method/wall.get".
func (f *FakeProvider) Handle(path string, r Responder) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.responders[path] = r
}

// Requests returns the forms received on path, oldest first.
func (f *FakeProvider) Requests(path string) []url.Values {
	f.lock.Lock()
	defer f.lock.Unlock()
	out := make([]url.Values, len(f.requests[path]))
	copy(out, f.requests[path])
	return out
}

func (f *FakeProvider) serve(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f.lock.Lock()
	f.requests[r.URL.Path] = append(f.requests[r.URL.Path], r.PostForm)
	responder, ok := f.responders[r.URL.Path]
	f.lock.Unlock()

	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found"})
		return
	}
	status, body := responder(r.PostForm)
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if raw, ok := body.(json.RawMessage); ok {
		_, _ = w.Write(raw)
		return
	}
	_ = json.NewEncoder(w).Encode(body)
}

// EchoTokens answers a token request with the given pair, echoing the sent state.
func EchoTokens(accessToken, refreshToken string) Responder {
	return func(form url.Values) (int, any) {
		return http.StatusOK, map[string]any{
			"access_token":  accessToken,
			"refresh_token": refreshToken,
			"token_type":    "Bearer",
			"expires_in":    3600,
			"user_id":       1234567,
			"state":         form.Get("state"),
		}
	}
}

// WrongState answers a token request with a valid pair but a state other than the one sent.
func WrongState(accessToken, refreshToken string) Responder {
	return func(form url.Values) (int, any) {
		return http.StatusOK, map[string]any{
			"access_token":  accessToken,
			"refresh_token": refreshToken,
			"state":         form.Get("state") + "-tampered",
		}
	}
}

// Ack answers a revoke or logout request with {"response": value}.
func Ack(value int) Responder {
	return func(url.Values) (int, any) {
		return http.StatusOK, map[string]int{"response": value}
	}
}

// Raw answers with a fixed status and body.
func Raw(status int, body string) Responder {
	return func(url.Values) (int, any) {
		return status, json.RawMessage(body)
	}
}
