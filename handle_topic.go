// This code is in Public Domain. Take all the code you want, I'll just write more.
package main

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/webforum/forumui/forumapi"
	"golang.org/x/sync/errgroup"
)

const deletePostFailedMsg = "Failed to delete post. You might not be the owner."

// PostDisplay is a post as listed inside a topic
type PostDisplay struct {
	ID        int
	Title     string
	Author    string
	URL       string
	CanModify bool
}

// muxID returns the {id} route variable. The route regexp guarantees digits.
func muxID(r *http.Request) int {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	return id
}

// fetchTopic loads a topic and its posts concurrently. Each half fails on its
// own: the error is logged and that half stays empty.
func fetchTopic(r *http.Request, id int) (*forumapi.Topic, []forumapi.Post) {
	var topic *forumapi.Topic
	var posts []forumapi.Post
	var g errgroup.Group
	g.Go(func() error {
		var err error
		if topic, err = api.Topic(r.Context(), id); err != nil {
			logger.Errorf("fetchTopic(): api.Topic(%d) failed with %s", id, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if posts, err = api.Posts(r.Context(), id); err != nil {
			logger.Errorf("fetchTopic(): api.Posts(%d) failed with %s", id, err)
		}
		return nil
	})
	g.Wait()
	return topic, posts
}

// url: GET /topic/${topicId}
func handleTopic(w http.ResponseWriter, r *http.Request) {
	id := muxID(r)
	user := currentUser(r)
	alert := popFlash(w, r)
	topic, posts := fetchTopic(r, id)

	title := "Loading..."
	if topic != nil {
		title = topic.Title
	}
	postsDisplay := make([]*PostDisplay, 0, len(posts))
	for _, p := range posts {
		postsDisplay = append(postsDisplay, &PostDisplay{
			ID:        p.ID,
			Title:     p.Title,
			Author:    p.Author,
			URL:       postURL(p.ID),
			CanModify: canModify(p.Author, user),
		})
	}

	model := struct {
		ModelBase
		TopicID    int
		TopicTitle string
		Posts      []*PostDisplay
	}{
		ModelBase:  newModelBase(r, title),
		TopicID:    id,
		TopicTitle: title,
		Posts:      postsDisplay,
	}
	model.Alert = alert
	ExecTemplate(w, tmplTopic, model)
}

// url: POST /topic/${topicId}/posts/create
func handlePostCreate(w http.ResponseWriter, r *http.Request) {
	topicID := muxID(r)
	title := strings.TrimSpace(r.FormValue("title"))
	body := strings.TrimSpace(r.FormValue("body"))
	if title != "" && body != "" {
		if err := api.CreatePost(r.Context(), credentialsFromCookie(r), topicID, title, body); err != nil {
			logger.Errorf("handlePostCreate(): api.CreatePost(%d) failed with %s", topicID, err)
		}
	}
	reloadView(w, r, topicURL(topicID))
}

// url: POST /posts/delete
// The only mutation whose failure is shown to the user.
func handlePostDelete(w http.ResponseWriter, r *http.Request) {
	id := formInt(r, "id")
	if id == 0 {
		httpErrorf(w, "Missing post id")
		return
	}
	back := "/"
	if topicID := formInt(r, "topic_id"); topicID != 0 {
		back = topicURL(topicID)
	}
	if err := api.DeletePost(r.Context(), credentialsFromCookie(r), id); err != nil {
		logger.Errorf("handlePostDelete(): api.DeletePost(%d) failed with %s", id, err)
		setFlash(w, r, deletePostFailedMsg)
	}
	reloadView(w, r, back)
}
