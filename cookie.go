package main

import (
	"net/http"
	"sort"

	"github.com/gorilla/securecookie"
	"github.com/webforum/forumui/forumapi"
)

var (
	cookieName   = "forumui"
	secureCookie *securecookie.SecureCookie
	// set to true when served over https
	cookieSecure = false
)

// SecureCookieValue is what we keep in the browser, encrypted. Creds are
// the backend session cookies (name => value) captured at login. Flash is a
// one-shot message shown on the next page render.
type SecureCookieValue struct {
	Creds map[string]string
	Flash string
}

func setSecureCookie(w http.ResponseWriter, cookieVal *SecureCookieValue) {
	encoded, err := secureCookie.Encode(cookieName, cookieVal)
	if err != nil {
		logger.Errorf("setSecureCookie(): error encoding secure cookie %s", err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    encoded,
		Path:     "/",
		HttpOnly: true,
		Secure:   cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// to delete the cookie value (e.g. for logging out), we need to set an
// expired one
func deleteSecureCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		MaxAge:   -1,
		Path:     "/",
		HttpOnly: true,
		Secure:   cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// getSecureCookie never returns nil. A missing or undecodable cookie (most
// likely signed with old keys) is an empty value.
func getSecureCookie(r *http.Request) *SecureCookieValue {
	ret := &SecureCookieValue{}
	cookie, err := r.Cookie(cookieName)
	if err != nil || cookie.Value == "" {
		return ret
	}
	if err = secureCookie.Decode(cookieName, cookie.Value, ret); err != nil {
		return &SecureCookieValue{}
	}
	return ret
}

func credentialsFromCookie(r *http.Request) forumapi.Credentials {
	return getSecureCookie(r).Credentials()
}

// Credentials converts the stored cookies for the backend client, in a
// stable order.
func (v *SecureCookieValue) Credentials() forumapi.Credentials {
	if len(v.Creds) == 0 {
		return nil
	}
	names := make([]string, 0, len(v.Creds))
	for name := range v.Creds {
		names = append(names, name)
	}
	sort.Strings(names)
	res := make(forumapi.Credentials, 0, len(names))
	for _, name := range names {
		res = append(res, &http.Cookie{Name: name, Value: v.Creds[name]})
	}
	return res
}

// credentialsToCookieValue skips cookies the backend is deleting.
func credentialsToCookieValue(creds forumapi.Credentials) *SecureCookieValue {
	v := &SecureCookieValue{Creds: make(map[string]string)}
	for _, c := range creds {
		if c.MaxAge < 0 || c.Value == "" {
			continue
		}
		v.Creds[c.Name] = c.Value
	}
	return v
}

// setFlash stores a message to be shown once, keeping the credentials.
func setFlash(w http.ResponseWriter, r *http.Request, msg string) {
	v := getSecureCookie(r)
	v.Flash = msg
	setSecureCookie(w, v)
}

// popFlash returns the pending message, if any, and clears it. Must be
// called before anything is written to w.
func popFlash(w http.ResponseWriter, r *http.Request) string {
	v := getSecureCookie(r)
	if v.Flash == "" {
		return ""
	}
	msg := v.Flash
	v.Flash = ""
	setSecureCookie(w, v)
	return msg
}
