package main

import (
	"bytes"
	"html/template"
	"net/http"
	"os"
	"path/filepath"

	"github.com/kjk/u"
)

var (
	tmplLogin     = "login.html"
	tmplHome      = "home.html"
	tmplTopic     = "topic.html"
	tmplPost      = "post.html"
	tmplLogs      = "logs.html"
	templateNames = [...]string{tmplLogin, tmplHome, tmplTopic, tmplPost,
		tmplLogs, "header.html", "footer.html"}
	templates       *template.Template
	reloadTemplates = true
)

// findAssetDir looks for dir in the current directory and next to the
// executable.
func findAssetDir(dir string) string {
	if u.PathExists(dir) {
		return dir
	}
	if exe, err := os.Executable(); err == nil {
		p := filepath.Join(filepath.Dir(exe), dir)
		if u.PathExists(p) {
			return p
		}
	}
	return dir
}

// GetTemplates parses templates once in production and on every call in
// development, so that edits show up without a restart.
func GetTemplates() *template.Template {
	if reloadTemplates || (nil == templates) {
		tmplDir := findAssetDir("tmpl")
		var paths []string
		for _, name := range templateNames {
			paths = append(paths, filepath.Join(tmplDir, name))
		}
		templates = template.Must(template.ParseFiles(paths...))
	}
	return templates
}

// ExecTemplate renders into a buffer first so that a failing template
// results in a clean 500 instead of half a page.
func ExecTemplate(w http.ResponseWriter, templateName string, model interface{}) bool {
	var buf bytes.Buffer
	if err := GetTemplates().ExecuteTemplate(&buf, templateName, model); err != nil {
		logger.Errorf("Failed to execute template %q, error: %s", templateName, err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return false
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	// at this point we ignore error
	w.Write(buf.Bytes())
	return true
}
