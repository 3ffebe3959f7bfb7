package forumapi

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pkg/errors"
)

type validateResponse struct {
	Username string `json:"username"`
}

// Validate asks the backend who owns creds. An empty username in an
// otherwise successful answer is treated as a failure.
func (c *Client) Validate(ctx context.Context, creds Credentials) (string, error) {
	var res validateResponse
	if err := c.do(ctx, http.MethodGet, "/validate", nil, creds, nil, &res); err != nil {
		return "", err
	}
	if res.Username == "" {
		return "", errors.New("validate returned an empty username")
	}
	return res.Username, nil
}

type authRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login returns the session cookies set by the backend.
func (c *Client) Login(ctx context.Context, username, password string) (Credentials, error) {
	return c.doWithCookies(ctx, http.MethodPost, "/login", authRequest{username, password})
}

// Register creates an account. The backend may also log the new user in, in
// which case the returned credentials are usable right away.
func (c *Client) Register(ctx context.Context, username, password string) (Credentials, error) {
	return c.doWithCookies(ctx, http.MethodPost, "/register", authRequest{username, password})
}

// Logout ends the backend session.
func (c *Client) Logout(ctx context.Context, creds Credentials) error {
	return c.do(ctx, http.MethodPost, "/logout", nil, creds, nil, nil)
}

// --- topics ---

// Topics lists all topics.
func (c *Client) Topics(ctx context.Context) ([]Topic, error) {
	var topics []Topic
	if err := c.do(ctx, http.MethodGet, "/topics", nil, nil, nil, &topics); err != nil {
		return nil, err
	}
	return topics, nil
}

func (c *Client) Topic(ctx context.Context, id int) (*Topic, error) {
	var topic Topic
	if err := c.do(ctx, http.MethodGet, "/topic", idQuery("id", id), nil, nil, &topic); err != nil {
		return nil, err
	}
	return &topic, nil
}

func (c *Client) CreateTopic(ctx context.Context, creds Credentials, title string) error {
	body := struct {
		Title string `json:"title"`
	}{title}
	return c.do(ctx, http.MethodPost, "/topics/create", nil, creds, body, nil)
}

func (c *Client) UpdateTopic(ctx context.Context, creds Credentials, id int, title string) error {
	body := struct {
		ID    int    `json:"id"`
		Title string `json:"title"`
	}{id, title}
	return c.do(ctx, http.MethodPut, "/topics/update", nil, creds, body, nil)
}

func (c *Client) DeleteTopic(ctx context.Context, creds Credentials, id int) error {
	return c.do(ctx, http.MethodDelete, "/topics/delete", idQuery("id", id), creds, nil, nil)
}

// --- posts ---

// Posts lists the posts of a topic.
func (c *Client) Posts(ctx context.Context, topicID int) ([]Post, error) {
	var posts []Post
	q := url.Values{"topic_id": {strconv.Itoa(topicID)}}
	if err := c.do(ctx, http.MethodGet, "/posts", q, nil, nil, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (c *Client) Post(ctx context.Context, id int) (*Post, error) {
	var post Post
	if err := c.do(ctx, http.MethodGet, "/post", idQuery("id", id), nil, nil, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

func (c *Client) CreatePost(ctx context.Context, creds Credentials, topicID int, title, body string) error {
	req := struct {
		TopicID int    `json:"topic_id"`
		Title   string `json:"title"`
		Body    string `json:"body"`
	}{topicID, title, body}
	return c.do(ctx, http.MethodPost, "/posts/create", nil, creds, req, nil)
}

func (c *Client) UpdatePost(ctx context.Context, creds Credentials, id int, title, body string) error {
	req := struct {
		ID    int    `json:"id"`
		Title string `json:"title"`
		Body  string `json:"body"`
	}{id, title, body}
	return c.do(ctx, http.MethodPut, "/posts/update", nil, creds, req, nil)
}

func (c *Client) DeletePost(ctx context.Context, creds Credentials, id int) error {
	return c.do(ctx, http.MethodDelete, "/posts/delete", idQuery("id", id), creds, nil, nil)
}

// --- comments ---

// Comments lists the comments of a post.
func (c *Client) Comments(ctx context.Context, postID int) ([]Comment, error) {
	var comments []Comment
	q := url.Values{"post_id": {strconv.Itoa(postID)}}
	if err := c.do(ctx, http.MethodGet, "/comments", q, nil, nil, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

func (c *Client) CreateComment(ctx context.Context, creds Credentials, postID int, body string) error {
	req := struct {
		PostID int    `json:"post_id"`
		Body   string `json:"body"`
	}{postID, body}
	return c.do(ctx, http.MethodPost, "/comments/create", nil, creds, req, nil)
}

func (c *Client) UpdateComment(ctx context.Context, creds Credentials, id int, body string) error {
	req := struct {
		ID   int    `json:"id"`
		Body string `json:"body"`
	}{id, body}
	return c.do(ctx, http.MethodPut, "/comments/update", nil, creds, req, nil)
}

func (c *Client) DeleteComment(ctx context.Context, creds Credentials, id int) error {
	return c.do(ctx, http.MethodDelete, "/comments/delete", idQuery("id", id), creds, nil, nil)
}

// PinComment flips the pinned flag of a comment. The backend decides the new
// value; there is no way to ask for a specific one.
func (c *Client) PinComment(ctx context.Context, creds Credentials, commentID int) error {
	req := struct {
		CommentID int `json:"comment_id"`
	}{commentID}
	return c.do(ctx, http.MethodPost, "/comments/pin", nil, creds, req, nil)
}
