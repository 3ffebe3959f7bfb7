// Package forumapi is a client for the forum REST API.
package forumapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const (
	dialTimeout    = 10 * time.Second
	DefaultTimeout = 30 * time.Second

	// RequestIDHeader is set on every request sent to the backend.
	RequestIDHeader = "X-Request-Id"
)

// Topic is a discussion topic.
type Topic struct {
	ID     int    `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
}

// Post lives inside a topic.
type Post struct {
	ID      int    `json:"id"`
	TopicID int    `json:"topic_id,omitempty"`
	Title   string `json:"title"`
	Body    string `json:"body"`
	Author  string `json:"author"`
}

// Comment lives inside a post.
type Comment struct {
	ID     int    `json:"id"`
	PostID int    `json:"post_id,omitempty"`
	Body   string `json:"body"`
	Author string `json:"author"`
	Pinned bool   `json:"pinned"`
}

// Credentials are the backend session cookies captured at login. They are
// replayed on every credential-bearing call.
type Credentials []*http.Cookie

type requestIDTransport struct {
	underlyingTransport http.RoundTripper
}

// RoundTrip tags the request with a request id unless the caller already did.
func (t *requestIDTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get(RequestIDHeader) == "" {
		req = req.Clone(req.Context())
		req.Header.Set(RequestIDHeader, uuid.New().String())
	}
	return t.underlyingTransport.RoundTrip(req)
}

// NewHTTPClient returns the http.Client used when none is given to NewClient.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	dialer := &net.Dialer{Timeout: dialTimeout}
	return &http.Client{
		Transport: &requestIDTransport{
			underlyingTransport: &http.Transport{
				DialContext: dialer.DialContext,
				Proxy:       http.ProxyFromEnvironment,
			},
		},
		Timeout: timeout,
	}
}

// Client talks to one backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the backend at baseURL. A nil httpClient
// means NewHTTPClient(DefaultTimeout).
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = NewHTTPClient(DefaultTimeout)
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// BaseURL returns the backend base url without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) endpoint(path string, query url.Values) string {
	s := c.baseURL + path
	if len(query) > 0 {
		s += "?" + query.Encode()
	}
	return s
}

// do sends one request. body, if not nil, is sent as JSON. On a 2xx response
// the body is decoded into out (when out is not nil). Any other status is
// returned as *Error.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, creds Credentials, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "error marshalling request")
		}
		reqBody = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), reqBody)
	if err != nil {
		return errors.Wrap(err, "error creating request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, ck := range creds {
		req.AddCookie(&http.Cookie{Name: ck.Name, Value: ck.Value})
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "error sending %s %s", method, path)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		errBody, _ := io.ReadAll(resp.Body)
		return newError(resp, errBody)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "error decoding %s %s response", method, path)
	}
	return nil
}

// doWithCookies is like do but also returns the cookies the backend set.
func (c *Client) doWithCookies(ctx context.Context, method, path string, body interface{}) (Credentials, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, errors.Wrap(err, "error marshalling request")
	}
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, nil), bytes.NewReader(b))
	if err != nil {
		return nil, errors.Wrap(err, "error creating request")
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "error sending %s %s", method, path)
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newError(resp, respBody)
	}
	return Credentials(resp.Cookies()), nil
}

func idQuery(name string, id int) url.Values {
	return url.Values{name: {fmt.Sprintf("%d", id)}}
}
