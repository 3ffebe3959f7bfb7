// This code is in Public Domain. Take all the code you want, I'll just write more.
package main

import (
	"fmt"
	"html"
	"net/http"
	"time"

	atom "github.com/kjk/atomgenerator"
)

func buildAbsURL(r *http.Request, path string) string {
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s%s", scheme, r.Host, path)
}

// The API has no timestamps, so every feed and entry is dated now.
func writeFeed(w http.ResponseWriter, feed *atom.Feed) {
	s, err := feed.GenXml()
	if err != nil {
		logger.Errorf("writeFeed(): feed.GenXml() failed with %s", err)
		s = []byte("Failed to generate XML feed")
	} else {
		w.Header().Set("Content-Type", "application/atom+xml; charset=utf-8")
	}
	w.Write(s)
}

// url: /atom
func handleTopicsAtom(w http.ResponseWriter, r *http.Request) {
	topics, err := api.Topics(r.Context())
	if err != nil {
		logger.Errorf("handleTopicsAtom(): api.Topics() failed with %s", err)
	}
	now := time.Now()
	feed := &atom.Feed{
		Title:   "Forum Topics",
		Link:    buildAbsURL(r, "/"),
		PubDate: now,
	}
	for _, t := range topics {
		link := buildAbsURL(r, topicURL(t.ID))
		feed.AddEntry(&atom.Entry{
			Id:      link,
			Title:   t.Title,
			PubDate: now,
			Link:    link,
			Content: html.EscapeString(fmt.Sprintf("Created by %s", t.Author)),
		})
	}
	writeFeed(w, feed)
}

// url: /topic/${topicId}/atom
func handleTopicAtom(w http.ResponseWriter, r *http.Request) {
	id := muxID(r)
	topic, posts := fetchTopic(r, id)
	if topic == nil {
		http404(w, r)
		return
	}
	now := time.Now()
	feed := &atom.Feed{
		Title:   topic.Title,
		Link:    buildAbsURL(r, topicURL(id)),
		PubDate: now,
	}
	for _, p := range posts {
		link := buildAbsURL(r, postURL(p.ID))
		feed.AddEntry(&atom.Entry{
			Id:      link,
			Title:   p.Title,
			PubDate: now,
			Link:    link,
			Content: html.EscapeString(p.Body),
		})
	}
	writeFeed(w, feed)
}
