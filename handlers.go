package main

import (
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gorilla/mux"
	"github.com/kjk/u"
)

// ModelBase is what the header needs on every gated page. Alert, when set,
// is shown as a blocking alert.
type ModelBase struct {
	Title       string
	CurrentUser string
	IsAdmin     bool
	Alert       string
}

func newModelBase(r *http.Request, title string) ModelBase {
	user := currentUser(r)
	return ModelBase{
		Title:       title,
		CurrentUser: user,
		IsAdmin:     userIsAdmin(user),
	}
}

func getReferer(r *http.Request) string {
	return r.Header.Get("Referer")
}

func serveFileFromDir(w http.ResponseWriter, r *http.Request, dir, fileName string) {
	filePath := filepath.Join(findAssetDir(dir), fileName)
	if !u.PathExists(filePath) {
		logger.Noticef("serveFileFromDir() file %q doesn't exist, referer: %q", fileName, getReferer(r))
	}
	http.ServeFile(w, r, filePath)
}

// url: /s/*
func handleStatic(w http.ResponseWriter, r *http.Request) {
	file := r.URL.Path[len("/s/"):]
	serveFileFromDir(w, r, "static", file)
}

// url: /robots.txt
func handleRobotsTxt(w http.ResponseWriter, r *http.Request) {
	serveFileFromDir(w, r, "static", "robots.txt")
}

func makeTimingHandler(fn func(http.ResponseWriter, *http.Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		startTime := time.Now()
		fn(w, r)
		duration := time.Since(startTime)
		// log urls that take long time to generate i.e. over 1 sec in production
		// or over 0.1 sec in dev
		shouldLog := duration.Seconds() > 1.0
		if alwaysLogTime && duration.Seconds() > 0.1 {
			shouldLog = true
		}
		if shouldLog {
			url := r.URL.Path
			if len(r.URL.RawQuery) > 0 {
				url = fmt.Sprintf("%s?%s", url, r.URL.RawQuery)
			}
			logger.Noticef("%q took %f seconds to serve", url, duration.Seconds())
		}
	}
}

// initHTTPHandlers returns the route table behind the session gate
func initHTTPHandlers() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/login", makeTimingHandler(handleLogin)).Methods("GET", "POST")
	r.HandleFunc("/logout", makeTimingHandler(handleLogout)).Methods("GET", "POST")

	r.HandleFunc("/", makeTimingHandler(handleHome)).Methods("GET")
	r.HandleFunc("/atom", makeTimingHandler(handleTopicsAtom)).Methods("GET")
	r.HandleFunc("/topics/create", makeTimingHandler(handleTopicCreate)).Methods("POST")
	r.HandleFunc("/topics/update", makeTimingHandler(handleTopicUpdate)).Methods("POST")
	r.HandleFunc("/topics/delete", makeTimingHandler(handleTopicDelete)).Methods("POST")

	r.HandleFunc("/topic/{id:[0-9]+}", makeTimingHandler(handleTopic)).Methods("GET")
	r.HandleFunc("/topic/{id:[0-9]+}/atom", makeTimingHandler(handleTopicAtom)).Methods("GET")
	r.HandleFunc("/topic/{id:[0-9]+}/posts/create", makeTimingHandler(handlePostCreate)).Methods("POST")
	r.HandleFunc("/posts/delete", makeTimingHandler(handlePostDelete)).Methods("POST")

	r.HandleFunc("/post/{id:[0-9]+}", makeTimingHandler(handlePost)).Methods("GET")
	r.HandleFunc("/post/{id:[0-9]+}/update", makeTimingHandler(handlePostUpdate)).Methods("POST")
	r.HandleFunc("/post/{id:[0-9]+}/comments/create", makeTimingHandler(handleCommentCreate)).Methods("POST")
	r.HandleFunc("/comments/update", makeTimingHandler(handleCommentUpdate)).Methods("POST")
	r.HandleFunc("/comments/delete", makeTimingHandler(handleCommentDelete)).Methods("POST")
	r.HandleFunc("/comments/pin", makeTimingHandler(handleCommentPin)).Methods("POST")

	r.HandleFunc("/logs", handleLogs).Methods("GET")
	r.HandleFunc("/favicon.ico", http.NotFound)
	r.HandleFunc("/robots.txt", handleRobotsTxt)
	r.PathPrefix("/s/").HandlerFunc(makeTimingHandler(handleStatic))
	r.NotFoundHandler = http.HandlerFunc(http404)

	return sessionGate(r)
}
