package main

import (
	"net/http"
)

// url: GET or POST /logout
// The gate lets logout through even when validation failed. The backend call
// is fire-and-forget: whatever it answers, the user ends up logged out here.
func handleLogout(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r)
	if err := api.Logout(r.Context(), credentialsFromCookie(r)); err != nil {
		logger.Noticef("handleLogout(): api.Logout() for %q failed with %s", id.Username(), err)
	}
	if err := id.Clear(r.Context()); err != nil {
		logger.Errorf("handleLogout(): id.Clear() failed with %s", err)
	}
	deleteSecureCookie(w)
	reloadView(w, r, loginPath)
}
