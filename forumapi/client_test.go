package forumapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", nil)
}

func TestValidateSendsCredentials(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/validate", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get(RequestIDHeader))
		ck, err := r.Cookie("sess")
		if err != nil || ck.Value != "abc" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"username": "alice"})
	})

	user, err := c.Validate(context.Background(), Credentials{{Name: "sess", Value: "abc"}})
	require.NoError(t, err)
	assert.Equal(t, "alice", user)

	_, err = c.Validate(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
}

func TestValidateEmptyUsernameFails(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"username":""}`))
	})
	_, err := c.Validate(context.Background(), nil)
	assert.Error(t, err)
	assert.False(t, IsHTTPError(err))
}

func TestLoginCapturesCookies(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req authRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Password != "pw" {
			http.Error(w, "Invalid credentials", http.StatusUnauthorized)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "sess", Value: "tok", Path: "/"})
	})

	creds, err := c.Login(context.Background(), "alice", "pw")
	require.NoError(t, err)
	require.Len(t, creds, 1)
	assert.Equal(t, "tok", creds[0].Value)

	_, err = c.Login(context.Background(), "alice", "nope")
	apiErr, ok := AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "Invalid credentials", apiErr.Msg)
}

func TestTransportErrorIsNotHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(url, nil)
	_, err := c.Topics(context.Background())
	require.Error(t, err)
	assert.False(t, IsHTTPError(err))
}

func TestMutationRequests(t *testing.T) {
	type seen struct {
		method, path, query string
		body              map[string]interface{}
	}
	var got []seen
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		s := seen{method: r.Method, path: r.URL.Path, query: r.URL.RawQuery}
		if r.ContentLength > 0 {
			json.NewDecoder(r.Body).Decode(&s.body)
		}
		got = append(got, s)
	})
	ctx := context.Background()
	creds := Credentials{{Name: "sess", Value: "x"}}

	require.NoError(t, c.UpdateTopic(ctx, creds, 3, "t"))
	require.NoError(t, c.DeleteTopic(ctx, creds, 3))
	require.NoError(t, c.UpdatePost(ctx, creds, 4, "t", "b"))
	require.NoError(t, c.PinComment(ctx, creds, 5))

	require.Len(t, got, 4)
	assert.Equal(t, http.MethodPut, got[0].method)
	assert.Equal(t, "/topics/update", got[0].path)
	assert.Equal(t, float64(3), got[0].body["id"])
	assert.Equal(t, http.MethodDelete, got[1].method)
	assert.Equal(t, "id=3", got[1].query)
	assert.Equal(t, "b", got[2].body["body"])
	assert.Equal(t, "/comments/pin", got[3].path)
	assert.Equal(t, float64(5), got[3].body["comment_id"])
}

func TestNullListDecodesEmpty(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("null"))
	})
	posts, err := c.Posts(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestErrorMessage(t *testing.T) {
	err := error(&Error{Status: 403})
	assert.Equal(t, "backend returned 403", err.Error())
	assert.True(t, IsUnauthorized(err))
	assert.False(t, IsUnauthorized(errors.New("x")))
}
