// This code is in Public Domain. Take all the code you want, I'll just write more.
package main

import (
	"net/http"
	"strings"
)

// TopicDisplay is a topic as shown in the list
type TopicDisplay struct {
	ID        int
	Title     string
	CreatedBy string
	URL       string
	CanModify bool
	Editing   bool
}

// url: GET /[?edit=${topicId}]
func handleHome(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	alert := popFlash(w, r)
	topics, err := api.Topics(r.Context())
	if err != nil {
		// stale/empty list is all we can show
		logger.Errorf("handleHome(): api.Topics() failed with %s", err)
	}
	editID := formInt(r, "edit")

	topicsDisplay := make([]*TopicDisplay, 0, len(topics))
	for _, t := range topics {
		d := &TopicDisplay{
			ID:        t.ID,
			Title:     t.Title,
			CreatedBy: t.Author,
			URL:       topicURL(t.ID),
			CanModify: canModify(t.Author, user),
		}
		if d.CreatedBy == "" {
			d.CreatedBy = "Unknown"
		}
		d.Editing = d.CanModify && editID == t.ID
		topicsDisplay = append(topicsDisplay, d)
	}

	model := struct {
		ModelBase
		Topics []*TopicDisplay
	}{
		ModelBase: newModelBase(r, "Forum Topics"),
		Topics:    topicsDisplay,
	}
	model.Alert = alert
	ExecTemplate(w, tmplHome, model)
}

// url: POST /topics/create
func handleTopicCreate(w http.ResponseWriter, r *http.Request) {
	title := strings.TrimSpace(r.FormValue("title"))
	if title != "" {
		if err := api.CreateTopic(r.Context(), credentialsFromCookie(r), title); err != nil {
			logger.Errorf("handleTopicCreate(): api.CreateTopic() failed with %s", err)
		}
	}
	reloadView(w, r, "/")
}

// url: POST /topics/update
func handleTopicUpdate(w http.ResponseWriter, r *http.Request) {
	id := formInt(r, "id")
	if id == 0 {
		httpErrorf(w, "Missing topic id")
		return
	}
	title := strings.TrimSpace(r.FormValue("title"))
	if err := api.UpdateTopic(r.Context(), credentialsFromCookie(r), id, title); err != nil {
		logger.Errorf("handleTopicUpdate(): api.UpdateTopic(%d) failed with %s", id, err)
	}
	reloadView(w, r, "/")
}

// url: POST /topics/delete
func handleTopicDelete(w http.ResponseWriter, r *http.Request) {
	id := formInt(r, "id")
	if id == 0 {
		httpErrorf(w, "Missing topic id")
		return
	}
	if err := api.DeleteTopic(r.Context(), credentialsFromCookie(r), id); err != nil {
		logger.Errorf("handleTopicDelete(): api.DeleteTopic(%d) failed with %s", id, err)
	}
	reloadView(w, r, "/")
}
