package main

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// canModify is the ownership gate for edit and delete controls: only the
// author sees them.
func canModify(author, user string) bool {
	return user != "" && author == user
}

// canPin: pinning a comment belongs to the author of the post, whoever wrote
// the comment.
func canPin(postAuthor, user string) bool {
	return canModify(postAuthor, user)
}

// formInt returns 0 for missing or invalid values; ids start at 1.
func formInt(r *http.Request, name string) int {
	n, err := strconv.Atoi(strings.TrimSpace(r.FormValue(name)))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// reloadView is the invalidate-and-reload step after a mutation: the
// browser is sent back to the view, which fetches fresh data.
func reloadView(w http.ResponseWriter, r *http.Request, url string) {
	http.Redirect(w, r, url, http.StatusSeeOther)
}

func topicURL(id int) string {
	return fmt.Sprintf("/topic/%d", id)
}

func postURL(id int) string {
	return fmt.Sprintf("/post/%d", id)
}

func http404(w http.ResponseWriter, r *http.Request) {
	http.NotFound(w, r)
}

func httpErrorf(w http.ResponseWriter, format string, args ...interface{}) {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	http.Error(w, msg, http.StatusBadRequest)
}
