// Package devapi is an in-memory implementation of the forum REST API. It is
// meant for running the UI locally and for tests, not for production.
package devapi

import (
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/webforum/forumui/forumapi"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrNotFound           = errors.New("not found")
	ErrNotOwner           = errors.New("you are not the owner")
	ErrEmptyField         = errors.New("required field is empty")
)

type user struct {
	name string
	hash []byte
}

// Store keeps users, topics, posts and comments in memory.
type Store struct {
	mu         sync.RWMutex
	bcryptCost int
	users      map[string]*user
	topics     map[int]*forumapi.Topic
	posts      map[int]*forumapi.Post
	comments   map[int]*forumapi.Comment
	lastID     int
}

// NewStore creates an empty store. cost is the bcrypt cost; 0 means
// bcrypt.DefaultCost.
func NewStore(cost int) *Store {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Store{
		bcryptCost: cost,
		users:      make(map[string]*user),
		topics:     make(map[int]*forumapi.Topic),
		posts:      make(map[int]*forumapi.Post),
		comments:   make(map[int]*forumapi.Comment),
	}
}

// must be called with mu held for writing
func (s *Store) nextID() int {
	s.lastID++
	return s.lastID
}

func (s *Store) Register(name, password string) error {
	name = strings.TrimSpace(name)
	if name == "" || password == "" {
		return ErrEmptyField
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[name]; ok {
		return ErrUserExists
	}
	s.users[name] = &user{name: name, hash: hash}
	return nil
}

func (s *Store) Authenticate(name, password string) error {
	s.mu.RLock()
	u, ok := s.users[strings.TrimSpace(name)]
	s.mu.RUnlock()
	if !ok {
		return ErrInvalidCredentials
	}
	err := bcrypt.CompareHashAndPassword(u.hash, []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrInvalidCredentials
	}
	return err
}

// --- topics ---

func (s *Store) Topics() []forumapi.Topic {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]forumapi.Topic, 0, len(s.topics))
	for _, t := range s.topics {
		res = append(res, *t)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res
}

func (s *Store) Topic(id int) (forumapi.Topic, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.topics[id]
	if !ok {
		return forumapi.Topic{}, ErrNotFound
	}
	return *t, nil
}

func (s *Store) CreateTopic(author, title string) (forumapi.Topic, error) {
	if strings.TrimSpace(title) == "" {
		return forumapi.Topic{}, ErrEmptyField
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &forumapi.Topic{ID: s.nextID(), Title: title, Author: author}
	s.topics[t.ID] = t
	return *t, nil
}

func (s *Store) UpdateTopic(author string, id int, title string) error {
	if strings.TrimSpace(title) == "" {
		return ErrEmptyField
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.topics[id]
	if !ok {
		return ErrNotFound
	}
	if t.Author != author {
		return ErrNotOwner
	}
	t.Title = title
	return nil
}

// DeleteTopic also deletes every post of the topic and their comments.
func (s *Store) DeleteTopic(author string, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.topics[id]
	if !ok {
		return ErrNotFound
	}
	if t.Author != author {
		return ErrNotOwner
	}
	for pid, p := range s.posts {
		if p.TopicID == id {
			s.deletePostLocked(pid)
		}
	}
	delete(s.topics, id)
	return nil
}

// --- posts ---

func (s *Store) Posts(topicID int) []forumapi.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]forumapi.Post, 0)
	for _, p := range s.posts {
		if p.TopicID == topicID {
			res = append(res, *p)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res
}

func (s *Store) Post(id int) (forumapi.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.posts[id]
	if !ok {
		return forumapi.Post{}, ErrNotFound
	}
	return *p, nil
}

func (s *Store) CreatePost(author string, topicID int, title, body string) (forumapi.Post, error) {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(body) == "" {
		return forumapi.Post{}, ErrEmptyField
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.topics[topicID]; !ok {
		return forumapi.Post{}, ErrNotFound
	}
	p := &forumapi.Post{ID: s.nextID(), TopicID: topicID, Title: title, Body: body, Author: author}
	s.posts[p.ID] = p
	return *p, nil
}

func (s *Store) UpdatePost(author string, id int, title, body string) error {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(body) == "" {
		return ErrEmptyField
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok {
		return ErrNotFound
	}
	if p.Author != author {
		return ErrNotOwner
	}
	p.Title = title
	p.Body = body
	return nil
}

func (s *Store) DeletePost(author string, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok {
		return ErrNotFound
	}
	if p.Author != author {
		return ErrNotOwner
	}
	s.deletePostLocked(id)
	return nil
}

func (s *Store) deletePostLocked(id int) {
	for cid, c := range s.comments {
		if c.PostID == id {
			delete(s.comments, cid)
		}
	}
	delete(s.posts, id)
}

// --- comments ---

func (s *Store) Comments(postID int) []forumapi.Comment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]forumapi.Comment, 0)
	for _, c := range s.comments {
		if c.PostID == postID {
			res = append(res, *c)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res
}

func (s *Store) CreateComment(author string, postID int, body string) (forumapi.Comment, error) {
	if strings.TrimSpace(body) == "" {
		return forumapi.Comment{}, ErrEmptyField
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[postID]; !ok {
		return forumapi.Comment{}, ErrNotFound
	}
	c := &forumapi.Comment{ID: s.nextID(), PostID: postID, Body: body, Author: author}
	s.comments[c.ID] = c
	return *c, nil
}

func (s *Store) UpdateComment(author string, id int, body string) error {
	if strings.TrimSpace(body) == "" {
		return ErrEmptyField
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.comments[id]
	if !ok {
		return ErrNotFound
	}
	if c.Author != author {
		return ErrNotOwner
	}
	c.Body = body
	return nil
}

func (s *Store) DeleteComment(author string, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.comments[id]
	if !ok {
		return ErrNotFound
	}
	if c.Author != author {
		return ErrNotOwner
	}
	delete(s.comments, id)
	return nil
}

// TogglePin flips the pinned flag. Only the author of the post the comment
// belongs to may do it. Concurrent toggles are serialized; each one flips the
// value it sees.
func (s *Store) TogglePin(author string, commentID int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.comments[commentID]
	if !ok {
		return false, ErrNotFound
	}
	p, ok := s.posts[c.PostID]
	if !ok {
		return false, ErrNotFound
	}
	if p.Author != author {
		return false, ErrNotOwner
	}
	c.Pinned = !c.Pinned
	return c.Pinned, nil
}
