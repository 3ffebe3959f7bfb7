package main

import (
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gorilla/securecookie"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/webforum/forumui/devapi"
	"github.com/webforum/forumui/forumapi"
)

// startBackend points the global api client at a fresh in-memory backend.
func startBackend(t *testing.T) *httptest.Server {
	backend := httptest.NewServer(devapi.NewServer(devapi.NewStore(bcrypt.MinCost)))
	t.Cleanup(backend.Close)
	api = forumapi.NewClient(backend.URL, backend.Client())
	return backend
}

// startUI sets up the globals a running server has and returns the front end
// talking to a fresh backend.
func startUI(t *testing.T) *httptest.Server {
	logger = NewServerLogger(32, 32, false)
	secureCookie = securecookie.New(securecookie.GenerateRandomKey(32), securecookie.GenerateRandomKey(32))
	config.AdminUser = ""
	startBackend(t)
	ui := httptest.NewServer(initHTTPHandlers())
	t.Cleanup(ui.Close)
	return ui
}

// browser keeps cookies and does not follow redirects, so tests can look at
// each hop.
type browser struct {
	t      *testing.T
	base   string
	client *http.Client
}

func newBrowser(t *testing.T, ui *httptest.Server) *browser {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &browser{
		t:    t,
		base: ui.URL,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (b *browser) do(req *http.Request) (*http.Response, string) {
	resp, err := b.client.Do(req)
	require.NoError(b.t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(b.t, err)
	return resp, string(body)
}

func (b *browser) get(path string) (*http.Response, string) {
	req, err := http.NewRequest(http.MethodGet, b.base+path, nil)
	require.NoError(b.t, err)
	return b.do(req)
}

func (b *browser) post(path string, form url.Values) (*http.Response, string) {
	req, err := http.NewRequest(http.MethodPost, b.base+path, strings.NewReader(form.Encode()))
	require.NoError(b.t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

// register signs up a new user through the login form.
func (b *browser) register(name string) {
	resp, _ := b.post("/login", url.Values{
		"mode":     {"register"},
		"username": {name},
		"password": {"secret"},
	})
	require.Equal(b.t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(b.t, "/", resp.Header.Get("Location"))
}

func requireRedirect(t *testing.T, resp *http.Response, code int, location string) {
	t.Helper()
	require.Equal(t, code, resp.StatusCode)
	require.Equal(t, location, resp.Header.Get("Location"))
}
