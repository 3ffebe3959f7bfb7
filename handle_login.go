package main

import (
	"net/http"

	"github.com/webforum/forumui/forumapi"
)

const (
	authFailedMsg   = "Authentication failed"
	networkErrorMsg = "Network error. Is the backend running?"
)

// ModelLogin is the sign in / sign up form
type ModelLogin struct {
	ModelBase
	IsRegistering bool
	ErrorMsg      string
	PrevUsername  string
}

// loginErrorMsg turns a failed login or register call into the text shown
// under the form: the backend's own message if it sent one.
func loginErrorMsg(err error) string {
	if apiErr, ok := forumapi.AsHTTPError(err); ok {
		if apiErr.Msg != "" {
			return apiErr.Msg
		}
		return authFailedMsg
	}
	return networkErrorMsg
}

// url: GET /login[?mode=register], POST /login
func handleLogin(w http.ResponseWriter, r *http.Request) {
	model := &ModelLogin{
		IsRegistering: r.FormValue("mode") == "register",
	}
	model.Title = "Sign In"
	if model.IsRegistering {
		model.Title = "Create Account"
	}

	if r.Method != http.MethodPost {
		ExecTemplate(w, tmplLogin, model)
		return
	}

	// sent as typed, the backend owns username rules
	username := r.FormValue("username")
	password := r.FormValue("password")
	model.PrevUsername = username

	var creds forumapi.Credentials
	var err error
	if model.IsRegistering {
		creds, err = api.Register(r.Context(), username, password)
	} else {
		creds, err = api.Login(r.Context(), username, password)
	}
	if err != nil {
		logger.Noticef("handleLogin(): login of %q failed with %s", username, err)
		model.ErrorMsg = loginErrorMsg(err)
		ExecTemplate(w, tmplLogin, model)
		return
	}

	setSecureCookie(w, credentialsToCookieValue(creds))
	reloadView(w, r, "/")
}
