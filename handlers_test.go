package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webforum/forumui/forumapi"
)

func createTopic(t *testing.T, b *browser, title string) int {
	resp, _ := b.post("/topics/create", url.Values{"title": {title}})
	requireRedirect(t, resp, http.StatusSeeOther, "/")
	topics, err := api.Topics(context.Background())
	require.NoError(t, err)
	for _, topic := range topics {
		if topic.Title == title {
			return topic.ID
		}
	}
	t.Fatalf("topic %q was not created", title)
	return 0
}

func createPost(t *testing.T, b *browser, topicID int, title string) int {
	resp, _ := b.post(fmt.Sprintf("/topic/%d/posts/create", topicID), url.Values{
		"title": {title},
		"body":  {"body of " + title},
	})
	requireRedirect(t, resp, http.StatusSeeOther, topicURL(topicID))
	posts, err := api.Posts(context.Background(), topicID)
	require.NoError(t, err)
	for _, p := range posts {
		if p.Title == title {
			return p.ID
		}
	}
	t.Fatalf("post %q was not created", title)
	return 0
}

func TestTopicListOwnership(t *testing.T) {
	ui := startUI(t)
	alice := newBrowser(t, ui)
	alice.register("alice")
	bob := newBrowser(t, ui)
	bob.register("bob")

	id := createTopic(t, alice, "Gophers")
	editLink := fmt.Sprintf(`href="/?edit=%d"`, id)

	_, body := alice.get("/")
	assert.Contains(t, body, "Gophers")
	assert.Contains(t, body, "Created by alice")
	assert.Contains(t, body, editLink)

	_, body = bob.get("/")
	assert.Contains(t, body, "Gophers")
	assert.NotContains(t, body, editLink)
	assert.NotContains(t, body, `action="/topics/delete"`)

	// edit mode only for the owner
	_, body = alice.get("/?edit=" + strconv.Itoa(id))
	assert.Contains(t, body, `action="/topics/update"`)
	_, body = bob.get("/?edit=" + strconv.Itoa(id))
	assert.NotContains(t, body, `action="/topics/update"`)
}

func TestTopicUpdateAndDelete(t *testing.T) {
	ui := startUI(t)
	alice := newBrowser(t, ui)
	alice.register("alice")
	bob := newBrowser(t, ui)
	bob.register("bob")
	id := createTopic(t, alice, "Old name")

	// bob's attempt fails at the backend and is only logged
	resp, _ := bob.post("/topics/update", url.Values{"id": {strconv.Itoa(id)}, "title": {"Hijacked"}})
	requireRedirect(t, resp, http.StatusSeeOther, "/")
	topic, err := api.Topic(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Old name", topic.Title)
	assert.NotEmpty(t, logger.GetErrors())

	resp, _ = alice.post("/topics/update", url.Values{"id": {strconv.Itoa(id)}, "title": {"New name"}})
	requireRedirect(t, resp, http.StatusSeeOther, "/")
	_, body := alice.get("/")
	assert.Contains(t, body, "New name")

	resp, _ = alice.post("/topics/delete", url.Values{"id": {strconv.Itoa(id)}})
	requireRedirect(t, resp, http.StatusSeeOther, "/")
	_, body = alice.get("/")
	assert.NotContains(t, body, "New name")

	resp, _ = alice.post("/topics/delete", url.Values{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestTopicView(t *testing.T) {
	ui := startUI(t)
	alice := newBrowser(t, ui)
	alice.register("alice")
	topicID := createTopic(t, alice, "Gophers")

	_, body := alice.get(topicURL(topicID))
	assert.Contains(t, body, "Gophers")
	assert.Contains(t, body, "No posts yet. Be the first!")

	postID := createPost(t, alice, topicID, "Hello")
	_, body = alice.get(topicURL(topicID))
	assert.NotContains(t, body, "No posts yet")
	assert.Contains(t, body, fmt.Sprintf(`href="/post/%d"`, postID))
	assert.Contains(t, body, "Posted by <strong>alice</strong>")
	assert.Contains(t, body, `action="/posts/delete"`)

	// posts without a title are not sent
	resp, _ := alice.post(fmt.Sprintf("/topic/%d/posts/create", topicID), url.Values{"body": {"x"}})
	requireRedirect(t, resp, http.StatusSeeOther, topicURL(topicID))
	posts, err := api.Posts(context.Background(), topicID)
	require.NoError(t, err)
	assert.Len(t, posts, 1)
}

func TestPostDeleteFailureIsShownOnce(t *testing.T) {
	ui := startUI(t)
	alice := newBrowser(t, ui)
	alice.register("alice")
	bob := newBrowser(t, ui)
	bob.register("bob")
	topicID := createTopic(t, alice, "Gophers")
	postID := createPost(t, alice, topicID, "Hello")

	_, body := bob.get(topicURL(topicID))
	assert.NotContains(t, body, `action="/posts/delete"`)

	resp, _ := bob.post("/posts/delete", url.Values{
		"id":       {strconv.Itoa(postID)},
		"topic_id": {strconv.Itoa(topicID)},
	})
	requireRedirect(t, resp, http.StatusSeeOther, topicURL(topicID))

	_, body = bob.get(topicURL(topicID))
	assert.Contains(t, body, `alert("`+deletePostFailedMsg+`")`)
	assert.Contains(t, body, `role="alert"`)
	_, body = bob.get(topicURL(topicID))
	assert.NotContains(t, body, deletePostFailedMsg)

	// the flash must not cost bob his session
	resp, _ = bob.get("/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = alice.post("/posts/delete", url.Values{
		"id":       {strconv.Itoa(postID)},
		"topic_id": {strconv.Itoa(topicID)},
	})
	requireRedirect(t, resp, http.StatusSeeOther, topicURL(topicID))
	_, body = alice.get(topicURL(topicID))
	assert.NotContains(t, body, deletePostFailedMsg)
	assert.Contains(t, body, "No posts yet. Be the first!")
}

func TestPostViewAndComments(t *testing.T) {
	ui := startUI(t)
	alice := newBrowser(t, ui)
	alice.register("alice")
	bob := newBrowser(t, ui)
	bob.register("bob")
	topicID := createTopic(t, alice, "Gophers")
	postID := createPost(t, alice, topicID, "Hello")
	path := postURL(postID)

	_, body := alice.get(path)
	assert.Contains(t, body, "body of Hello")
	assert.Contains(t, body, fmt.Sprintf(`href="%s"`, topicURL(topicID)))
	assert.Contains(t, body, "Comments (0)")
	assert.Contains(t, body, "Edit Post")
	_, body = bob.get(path)
	assert.NotContains(t, body, "Edit Post")

	resp, _ := bob.post(path+"/comments/create", url.Values{"body": {"first!"}})
	requireRedirect(t, resp, http.StatusSeeOther, path)
	comments, err := api.Comments(context.Background(), postID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	commentID := comments[0].ID
	commentEdit := fmt.Sprintf(`?comment=%d"`, commentID)

	// bob can edit his comment, alice can pin it
	_, body = bob.get(path)
	assert.Contains(t, body, "Comments (1)")
	assert.Contains(t, body, commentEdit)
	assert.NotContains(t, body, `action="/comments/pin"`)
	_, body = alice.get(path)
	assert.NotContains(t, body, commentEdit)
	assert.Contains(t, body, `action="/comments/pin"`)

	form := url.Values{"id": {strconv.Itoa(commentID)}, "post_id": {strconv.Itoa(postID)}}
	resp, _ = alice.post("/comments/pin", form)
	requireRedirect(t, resp, http.StatusSeeOther, path)
	_, body = alice.get(path)
	assert.Contains(t, body, "Unpin")

	resp, _ = bob.post("/comments/update", url.Values{
		"id":      {strconv.Itoa(commentID)},
		"post_id": {strconv.Itoa(postID)},
		"body":    {"edited"},
	})
	requireRedirect(t, resp, http.StatusSeeOther, path)
	_, body = bob.get(path)
	assert.Contains(t, body, "edited")

	resp, _ = bob.post("/comments/delete", form)
	requireRedirect(t, resp, http.StatusSeeOther, path)
	_, body = bob.get(path)
	assert.Contains(t, body, "Comments (0)")

	// post edit mode is owner only
	_, body = alice.get(path + "?edit=post")
	assert.Contains(t, body, fmt.Sprintf(`action="%s/update"`, path))
	_, body = bob.get(path + "?edit=post")
	assert.NotContains(t, body, fmt.Sprintf(`action="%s/update"`, path))

	resp, _ = alice.post(path+"/update", url.Values{"title": {"Hello again"}, "body": {"new body"}})
	requireRedirect(t, resp, http.StatusSeeOther, path)
	_, body = alice.get(path)
	assert.Contains(t, body, "Hello again")
	assert.Contains(t, body, "new body")
}

func TestMissingPostShowsLoading(t *testing.T) {
	ui := startUI(t)
	alice := newBrowser(t, ui)
	alice.register("alice")

	resp, body := alice.get("/post/999")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Loading...")
}

func TestLogin(t *testing.T) {
	ui := startUI(t)
	b := newBrowser(t, ui)
	b.register("alice")

	resp, _ := b.post("/logout", nil)
	requireRedirect(t, resp, http.StatusSeeOther, "/login")
	resp, _ = b.get("/")
	requireRedirect(t, resp, http.StatusFound, "/login")

	resp, body := b.post("/login", url.Values{"username": {"alice"}, "password": {"wrong"}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "invalid username or password")
	assert.Contains(t, body, `value="alice"`)

	resp, _ = b.post("/login", url.Values{"username": {"alice"}, "password": {"secret"}})
	requireRedirect(t, resp, http.StatusSeeOther, "/")
	resp, _ = b.get("/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestLoginNetworkError(t *testing.T) {
	ui := startUI(t)
	b := newBrowser(t, ui)
	api = forumapi.NewClient("http://127.0.0.1:1", nil)

	_, body := b.post("/login", url.Values{"username": {"alice"}, "password": {"secret"}})
	assert.Contains(t, body, networkErrorMsg)
}

func TestLogoutWhenBackendIsDown(t *testing.T) {
	ui := startUI(t)
	b := newBrowser(t, ui)
	b.register("alice")

	backendURL := api.BaseURL()
	api = forumapi.NewClient("http://127.0.0.1:1", nil)
	resp, _ := b.get("/logout")
	requireRedirect(t, resp, http.StatusSeeOther, "/login")

	api = forumapi.NewClient(backendURL, nil)
	resp, _ = b.get("/")
	requireRedirect(t, resp, http.StatusFound, "/login")
}

func TestLogsAdminOnly(t *testing.T) {
	ui := startUI(t)
	config.AdminUser = "alice"
	alice := newBrowser(t, ui)
	alice.register("alice")
	bob := newBrowser(t, ui)
	bob.register("bob")
	logger.Notice("a notice for the admin")

	_, body := alice.get("/logs")
	assert.Contains(t, body, "a notice for the admin")
	_, body = bob.get("/logs")
	assert.NotContains(t, body, "a notice for the admin")
}

func TestAtomFeeds(t *testing.T) {
	ui := startUI(t)
	alice := newBrowser(t, ui)
	alice.register("alice")
	topicID := createTopic(t, alice, "Gophers")
	createPost(t, alice, topicID, "Hello")

	resp, body := alice.get("/atom")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "atom")
	assert.Contains(t, body, "Gophers")

	_, body = alice.get(topicURL(topicID) + "/atom")
	assert.Contains(t, body, "Hello")

	resp, _ = alice.get("/topic/999/atom")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPostDeleteFailureWithoutTopicShowsOnHome(t *testing.T) {
	ui := startUI(t)
	alice := newBrowser(t, ui)
	alice.register("alice")
	bob := newBrowser(t, ui)
	bob.register("bob")
	topicID := createTopic(t, alice, "Gophers")
	postID := createPost(t, alice, topicID, "Hello")

	resp, _ := bob.post("/posts/delete", url.Values{"id": {strconv.Itoa(postID)}})
	requireRedirect(t, resp, http.StatusSeeOther, "/")

	_, body := bob.get("/")
	assert.Contains(t, body, deletePostFailedMsg)
	_, body = bob.get(topicURL(topicID))
	assert.NotContains(t, body, deletePostFailedMsg)
}

func TestLoginSendsUsernameAsTyped(t *testing.T) {
	startUI(t)
	var got string
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string `json:"username"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		got = req.Username
		http.SetCookie(w, &http.Cookie{Name: "sess", Value: "tok", Path: "/"})
	}))
	t.Cleanup(backend.Close)
	api = forumapi.NewClient(backend.URL, nil)

	ui := httptest.NewServer(initHTTPHandlers())
	t.Cleanup(ui.Close)
	b := newBrowser(t, ui)
	resp, _ := b.post("/login", url.Values{"username": {" alice "}, "password": {"secret"}})
	requireRedirect(t, resp, http.StatusSeeOther, "/")
	assert.Equal(t, " alice ", got)
}
