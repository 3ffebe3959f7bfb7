package main

import (
	"context"
	"net/http"
	"strings"

	"github.com/webforum/forumui/forumapi"
)

type contextKey int

const identityKey contextKey = 0

const (
	loginPath  = "/login"
	logoutPath = "/logout"
)

func withIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// identityFrom returns the identity attached by the session gate, or an
// unresolved one for requests the gate did not see.
func identityFrom(r *http.Request) *Identity {
	if id, ok := r.Context().Value(identityKey).(*Identity); ok {
		return id
	}
	return NewIdentity()
}

// currentUser is the user name threaded down to the views for ownership
// checks
func currentUser(r *http.Request) string {
	return identityFrom(r).Username()
}

// paths reachable without a session
func isPublicPath(path string) bool {
	switch path {
	case loginPath, "/robots.txt", "/favicon.ico":
		return true
	}
	return strings.HasPrefix(path, "/s/")
}

// validateSession runs one validation round against the backend and returns
// the resulting identity.
func validateSession(ctx context.Context, creds forumapi.Credentials) (*Identity, error) {
	id := NewIdentity()
	if err := id.BeginValidation(ctx); err != nil {
		return id, err
	}
	username, err := api.Validate(ctx, creds)
	if err != nil {
		id.Fail(ctx)
		return id, err
	}
	id.Resolve(ctx, username)
	return id, nil
}

func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	code := http.StatusFound
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		code = http.StatusSeeOther
	}
	http.Redirect(w, r, loginPath, code)
}

// sessionGate validates the session on every navigation. Authenticated
// requests reach next with the identity in their context; all others,
// whatever the path, end up on the login page. Logout is the exception: it
// always reaches next, with whatever identity validation produced.
func sessionGate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isPublicPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}
		creds := credentialsFromCookie(r)
		id, err := validateSession(r.Context(), creds)
		if err != nil && len(creds) > 0 {
			logger.Noticef("session validation for %q failed: %s", r.URL.Path, err)
		}
		// logout goes through whatever the backend answered
		if r.URL.Path == logoutPath {
			next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), id)))
			return
		}
		if !id.IsResolved() {
			// only a 401/403 means the stored credentials are useless. On 5xx
			// and transport errors keep them for the next try.
			if len(creds) > 0 && forumapi.IsUnauthorized(err) {
				deleteSecureCookie(w)
			}
			redirectToLogin(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), id)))
	})
}
