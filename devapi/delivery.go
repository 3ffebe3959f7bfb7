package devapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/labstack/echo/v4"
)

const (
	SessionCookieName = "forum_session"
	sessionUserKey    = "username"
)

// Delivery serves the forum REST API on top of a Store.
type Delivery struct {
	store    *Store
	sessions *scs.SessionManager
}

func NewDelivery(store *Store) *Delivery {
	sessions := scs.New()
	sessions.Lifetime = 7 * 24 * time.Hour
	sessions.Cookie.Name = SessionCookieName
	sessions.Cookie.SameSite = http.SameSiteLaxMode
	sessions.Cookie.HttpOnly = true
	return &Delivery{store: store, sessions: sessions}
}

// NewServer returns an echo instance with every endpoint registered. It
// implements http.Handler.
func NewServer(store *Store) *echo.Echo {
	d := NewDelivery(store)
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echo.WrapMiddleware(d.sessions.LoadAndSave))

	e.GET("/validate", d.ValidateHandler)
	e.POST("/login", d.LoginHandler)
	e.POST("/register", d.RegisterHandler)
	e.POST("/logout", d.LogoutHandler)
	e.GET("/logout", d.LogoutHandler)

	e.GET("/topics", d.TopicsHandler)
	e.GET("/topic", d.TopicHandler)
	e.POST("/topics/create", d.TopicCreateHandler)
	e.PUT("/topics/update", d.TopicUpdateHandler)
	e.DELETE("/topics/delete", d.TopicDeleteHandler)

	e.GET("/posts", d.PostsHandler)
	e.GET("/post", d.PostHandler)
	e.POST("/posts/create", d.PostCreateHandler)
	e.PUT("/posts/update", d.PostUpdateHandler)
	e.DELETE("/posts/delete", d.PostDeleteHandler)

	e.GET("/comments", d.CommentsHandler)
	e.POST("/comments/create", d.CommentCreateHandler)
	e.PUT("/comments/update", d.CommentUpdateHandler)
	e.DELETE("/comments/delete", d.CommentDeleteHandler)
	e.POST("/comments/pin", d.CommentPinHandler)
	return e
}

func (d *Delivery) currentUser(context echo.Context) string {
	return d.sessions.GetString(context.Request().Context(), sessionUserKey)
}

// errorResponse maps store errors to status codes. Bodies are plain text, as
// the UI shows them verbatim.
func errorResponse(context echo.Context, err error) error {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ErrNotOwner):
		status = http.StatusForbidden
	case errors.Is(err, ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, ErrUserExists):
		status = http.StatusConflict
	case errors.Is(err, ErrEmptyField):
		status = http.StatusBadRequest
	}
	return context.String(status, err.Error())
}

func queryID(context echo.Context, name string) (int, bool) {
	id, err := strconv.Atoi(context.QueryParam(name))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// requireUser writes 401 and returns "" if the request has no session.
func (d *Delivery) requireUser(context echo.Context) string {
	user := d.currentUser(context)
	if user == "" {
		_ = context.String(http.StatusUnauthorized, "Unauthorized")
	}
	return user
}

// --- auth ---

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (d *Delivery) ValidateHandler(context echo.Context) error {
	user := d.currentUser(context)
	if user == "" {
		return context.String(http.StatusUnauthorized, "Not logged in")
	}
	return context.JSON(http.StatusOK, map[string]string{"username": user})
}

func (d *Delivery) startSession(context echo.Context, user string) error {
	ctx := context.Request().Context()
	if err := d.sessions.RenewToken(ctx); err != nil {
		return context.String(http.StatusInternalServerError, err.Error())
	}
	d.sessions.Put(ctx, sessionUserKey, user)
	return context.String(http.StatusOK, "OK")
}

func (d *Delivery) LoginHandler(context echo.Context) error {
	var req credentialsRequest
	if err := context.Bind(&req); err != nil {
		return context.String(http.StatusBadRequest, "Invalid request body")
	}
	if err := d.store.Authenticate(req.Username, req.Password); err != nil {
		return errorResponse(context, err)
	}
	return d.startSession(context, req.Username)
}

// RegisterHandler creates the user and logs them in.
func (d *Delivery) RegisterHandler(context echo.Context) error {
	var req credentialsRequest
	if err := context.Bind(&req); err != nil {
		return context.String(http.StatusBadRequest, "Invalid request body")
	}
	if err := d.store.Register(req.Username, req.Password); err != nil {
		return errorResponse(context, err)
	}
	return d.startSession(context, req.Username)
}

func (d *Delivery) LogoutHandler(context echo.Context) error {
	if err := d.sessions.Destroy(context.Request().Context()); err != nil {
		return context.String(http.StatusInternalServerError, err.Error())
	}
	return context.String(http.StatusOK, "Logged out")
}

// --- topics ---

func (d *Delivery) TopicsHandler(context echo.Context) error {
	return context.JSON(http.StatusOK, d.store.Topics())
}

func (d *Delivery) TopicHandler(context echo.Context) error {
	id, ok := queryID(context, "id")
	if !ok {
		return context.String(http.StatusBadRequest, "Invalid id")
	}
	topic, err := d.store.Topic(id)
	if err != nil {
		return errorResponse(context, err)
	}
	return context.JSON(http.StatusOK, topic)
}

func (d *Delivery) TopicCreateHandler(context echo.Context) error {
	user := d.requireUser(context)
	if user == "" {
		return nil
	}
	var req struct {
		Title string `json:"title"`
	}
	if err := context.Bind(&req); err != nil {
		return context.String(http.StatusBadRequest, "Invalid request body")
	}
	topic, err := d.store.CreateTopic(user, req.Title)
	if err != nil {
		return errorResponse(context, err)
	}
	return context.JSON(http.StatusCreated, topic)
}

func (d *Delivery) TopicUpdateHandler(context echo.Context) error {
	user := d.requireUser(context)
	if user == "" {
		return nil
	}
	var req struct {
		ID    int    `json:"id"`
		Title string `json:"title"`
	}
	if err := context.Bind(&req); err != nil {
		return context.String(http.StatusBadRequest, "Invalid request body")
	}
	if err := d.store.UpdateTopic(user, req.ID, req.Title); err != nil {
		return errorResponse(context, err)
	}
	return context.String(http.StatusOK, "Updated")
}

func (d *Delivery) TopicDeleteHandler(context echo.Context) error {
	user := d.requireUser(context)
	if user == "" {
		return nil
	}
	id, ok := queryID(context, "id")
	if !ok {
		return context.String(http.StatusBadRequest, "Invalid id")
	}
	if err := d.store.DeleteTopic(user, id); err != nil {
		return errorResponse(context, err)
	}
	return context.String(http.StatusOK, "Deleted")
}

// --- posts ---

func (d *Delivery) PostsHandler(context echo.Context) error {
	topicID, ok := queryID(context, "topic_id")
	if !ok {
		return context.String(http.StatusBadRequest, "Invalid topic_id")
	}
	return context.JSON(http.StatusOK, d.store.Posts(topicID))
}

func (d *Delivery) PostHandler(context echo.Context) error {
	id, ok := queryID(context, "id")
	if !ok {
		return context.String(http.StatusBadRequest, "Invalid id")
	}
	post, err := d.store.Post(id)
	if err != nil {
		return errorResponse(context, err)
	}
	return context.JSON(http.StatusOK, post)
}

func (d *Delivery) PostCreateHandler(context echo.Context) error {
	user := d.requireUser(context)
	if user == "" {
		return nil
	}
	var req struct {
		TopicID int    `json:"topic_id"`
		Title   string `json:"title"`
		Body    string `json:"body"`
	}
	if err := context.Bind(&req); err != nil {
		return context.String(http.StatusBadRequest, "Invalid request body")
	}
	post, err := d.store.CreatePost(user, req.TopicID, req.Title, req.Body)
	if err != nil {
		return errorResponse(context, err)
	}
	return context.JSON(http.StatusCreated, post)
}

func (d *Delivery) PostUpdateHandler(context echo.Context) error {
	user := d.requireUser(context)
	if user == "" {
		return nil
	}
	var req struct {
		ID    int    `json:"id"`
		Title string `json:"title"`
		Body  string `json:"body"`
	}
	if err := context.Bind(&req); err != nil {
		return context.String(http.StatusBadRequest, "Invalid request body")
	}
	if err := d.store.UpdatePost(user, req.ID, req.Title, req.Body); err != nil {
		return errorResponse(context, err)
	}
	return context.String(http.StatusOK, "Updated")
}

func (d *Delivery) PostDeleteHandler(context echo.Context) error {
	user := d.requireUser(context)
	if user == "" {
		return nil
	}
	id, ok := queryID(context, "id")
	if !ok {
		return context.String(http.StatusBadRequest, "Invalid id")
	}
	if err := d.store.DeletePost(user, id); err != nil {
		return errorResponse(context, err)
	}
	return context.String(http.StatusOK, "Deleted")
}

// --- comments ---

func (d *Delivery) CommentsHandler(context echo.Context) error {
	postID, ok := queryID(context, "post_id")
	if !ok {
		return context.String(http.StatusBadRequest, "Invalid post_id")
	}
	return context.JSON(http.StatusOK, d.store.Comments(postID))
}

func (d *Delivery) CommentCreateHandler(context echo.Context) error {
	user := d.requireUser(context)
	if user == "" {
		return nil
	}
	var req struct {
		PostID int    `json:"post_id"`
		Body   string `json:"body"`
	}
	if err := context.Bind(&req); err != nil {
		return context.String(http.StatusBadRequest, "Invalid request body")
	}
	comment, err := d.store.CreateComment(user, req.PostID, req.Body)
	if err != nil {
		return errorResponse(context, err)
	}
	return context.JSON(http.StatusCreated, comment)
}

func (d *Delivery) CommentUpdateHandler(context echo.Context) error {
	user := d.requireUser(context)
	if user == "" {
		return nil
	}
	var req struct {
		ID   int    `json:"id"`
		Body string `json:"body"`
	}
	if err := context.Bind(&req); err != nil {
		return context.String(http.StatusBadRequest, "Invalid request body")
	}
	if err := d.store.UpdateComment(user, req.ID, req.Body); err != nil {
		return errorResponse(context, err)
	}
	return context.String(http.StatusOK, "Updated")
}

func (d *Delivery) CommentDeleteHandler(context echo.Context) error {
	user := d.requireUser(context)
	if user == "" {
		return nil
	}
	id, ok := queryID(context, "id")
	if !ok {
		return context.String(http.StatusBadRequest, "Invalid id")
	}
	if err := d.store.DeleteComment(user, id); err != nil {
		return errorResponse(context, err)
	}
	return context.String(http.StatusOK, "Deleted")
}

func (d *Delivery) CommentPinHandler(context echo.Context) error {
	user := d.requireUser(context)
	if user == "" {
		return nil
	}
	var req struct {
		CommentID int `json:"comment_id"`
	}
	if err := context.Bind(&req); err != nil {
		return context.String(http.StatusBadRequest, "Invalid request body")
	}
	pinned, err := d.store.TogglePin(user, req.CommentID)
	if err != nil {
		return errorResponse(context, err)
	}
	return context.JSON(http.StatusOK, map[string]bool{"pinned": pinned})
}
