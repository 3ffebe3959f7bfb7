// This code is in Public Domain. Take all the code you want, I'll just write more.
package main

import (
	"net/http"
	"sort"
	"strings"

	"github.com/webforum/forumui/forumapi"
	"golang.org/x/sync/errgroup"
)

// CommentDisplay is a comment with the controls the viewer may use
type CommentDisplay struct {
	forumapi.Comment
	CanModify bool
	CanPin    bool
	Editing   bool
}

func fetchPost(r *http.Request, id int) (*forumapi.Post, []forumapi.Comment) {
	var post *forumapi.Post
	var comments []forumapi.Comment
	var g errgroup.Group
	g.Go(func() error {
		var err error
		if post, err = api.Post(r.Context(), id); err != nil {
			logger.Errorf("fetchPost(): api.Post(%d) failed with %s", id, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if comments, err = api.Comments(r.Context(), id); err != nil {
			logger.Errorf("fetchPost(): api.Comments(%d) failed with %s", id, err)
		}
		return nil
	})
	g.Wait()
	return post, comments
}

// buildCommentsDisplay orders pinned comments first, otherwise keeps the
// backend order.
func buildCommentsDisplay(comments []forumapi.Comment, postAuthor, user string, editingID int) []*CommentDisplay {
	res := make([]*CommentDisplay, 0, len(comments))
	for _, c := range comments {
		d := &CommentDisplay{
			Comment:   c,
			CanModify: canModify(c.Author, user),
			CanPin:    canPin(postAuthor, user),
		}
		d.Editing = d.CanModify && c.ID == editingID
		res = append(res, d)
	}
	sort.SliceStable(res, func(i, j int) bool {
		return res[i].Pinned && !res[j].Pinned
	})
	return res
}

// url: GET /post/${postId}[?edit=post][?comment=${commentId}]
func handlePost(w http.ResponseWriter, r *http.Request) {
	id := muxID(r)
	user := currentUser(r)
	post, comments := fetchPost(r, id)

	model := struct {
		ModelBase
		PostID    int
		Post      *forumapi.Post
		BackURL   string
		CanModify bool
		Editing   bool
		Comments  []*CommentDisplay
	}{
		ModelBase: newModelBase(r, "Loading..."),
		PostID:    id,
		Post:      post,
		BackURL:   "/",
	}
	postAuthor := ""
	if post != nil {
		postAuthor = post.Author
		model.Title = post.Title
		model.CanModify = canModify(post.Author, user)
		model.Editing = model.CanModify && r.FormValue("edit") == "post"
		if post.TopicID != 0 {
			model.BackURL = topicURL(post.TopicID)
		} else if ref := getReferer(r); ref != "" {
			model.BackURL = ref
		}
	}
	model.Comments = buildCommentsDisplay(comments, postAuthor, user, formInt(r, "comment"))
	ExecTemplate(w, tmplPost, model)
}

// url: POST /post/${postId}/update
func handlePostUpdate(w http.ResponseWriter, r *http.Request) {
	id := muxID(r)
	title := strings.TrimSpace(r.FormValue("title"))
	body := strings.TrimSpace(r.FormValue("body"))
	if err := api.UpdatePost(r.Context(), credentialsFromCookie(r), id, title, body); err != nil {
		logger.Errorf("handlePostUpdate(): api.UpdatePost(%d) failed with %s", id, err)
	}
	reloadView(w, r, postURL(id))
}

// url: POST /post/${postId}/comments/create
func handleCommentCreate(w http.ResponseWriter, r *http.Request) {
	postID := muxID(r)
	body := strings.TrimSpace(r.FormValue("body"))
	if body != "" {
		if err := api.CreateComment(r.Context(), credentialsFromCookie(r), postID, body); err != nil {
			logger.Errorf("handleCommentCreate(): api.CreateComment(%d) failed with %s", postID, err)
		}
	}
	reloadView(w, r, postURL(postID))
}

// getCommentAndPostID returns 0, 0 after writing an error
func getCommentAndPostID(w http.ResponseWriter, r *http.Request) (int, int) {
	id := formInt(r, "id")
	postID := formInt(r, "post_id")
	if id == 0 || postID == 0 {
		httpErrorf(w, "Missing comment or post id")
		return 0, 0
	}
	return id, postID
}

// url: POST /comments/update
func handleCommentUpdate(w http.ResponseWriter, r *http.Request) {
	id, postID := getCommentAndPostID(w, r)
	if id == 0 {
		return
	}
	body := strings.TrimSpace(r.FormValue("body"))
	if err := api.UpdateComment(r.Context(), credentialsFromCookie(r), id, body); err != nil {
		logger.Errorf("handleCommentUpdate(): api.UpdateComment(%d) failed with %s", id, err)
	}
	reloadView(w, r, postURL(postID))
}

// url: POST /comments/delete
func handleCommentDelete(w http.ResponseWriter, r *http.Request) {
	id, postID := getCommentAndPostID(w, r)
	if id == 0 {
		return
	}
	if err := api.DeleteComment(r.Context(), credentialsFromCookie(r), id); err != nil {
		logger.Errorf("handleCommentDelete(): api.DeleteComment(%d) failed with %s", id, err)
	}
	reloadView(w, r, postURL(postID))
}

// url: POST /comments/pin
func handleCommentPin(w http.ResponseWriter, r *http.Request) {
	id, postID := getCommentAndPostID(w, r)
	if id == 0 {
		return
	}
	if err := api.PinComment(r.Context(), credentialsFromCookie(r), id); err != nil {
		logger.Errorf("handleCommentPin(): api.PinComment(%d) failed with %s", id, err)
	}
	reloadView(w, r, postURL(postID))
}
