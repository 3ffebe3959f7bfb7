// This code is in Public Domain. Take all the code you want, I'll just write more.
package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/kjk/u"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	errorPrefix  = color.New(color.FgRed, color.Bold).SprintFunc()
	noticePrefix = color.New(color.FgCyan).SprintFunc()
)

// TimestampedMsg is a messsage with a timestamp
type TimestampedMsg struct {
	Time time.Time
	Msg  string
}

// TimeStr formats a log timestamp
func (m *TimestampedMsg) TimeStr() string {
	return m.Time.Format("2006-01-02 15:04:05")
}

// TimeSinceStr returns formatted time since log timestamp
func (m *TimestampedMsg) TimeSinceStr() string {
	return u.TimeSinceNowAsString(m.Time)
}

// CircularMessagesBuf keeps the last len(msgs) messages. Not safe for
// concurrent use on its own; ServerLogger serializes access.
type CircularMessagesBuf struct {
	msgs []TimestampedMsg
	next int
	n    int
}

// NewCircularMessagesBuf creates a buffer holding up to size messages
func NewCircularMessagesBuf(size int) *CircularMessagesBuf {
	return &CircularMessagesBuf{msgs: make([]TimestampedMsg, size)}
}

func (b *CircularMessagesBuf) Add(s string) {
	b.msgs[b.next] = TimestampedMsg{time.Now(), s}
	b.next = (b.next + 1) % len(b.msgs)
	if b.n < len(b.msgs) {
		b.n++
	}
}

// GetOrdered returns copies of the messages, newest first
func (b *CircularMessagesBuf) GetOrdered() []*TimestampedMsg {
	res := make([]*TimestampedMsg, b.n)
	for i := 0; i < b.n; i++ {
		p := (b.next - 1 - i + len(b.msgs)) % len(b.msgs)
		m := b.msgs[p]
		res[i] = &m
	}
	return res
}

// ServerLogger remembers recent errors and notices for /logs and echoes
// them to stdout and, optionally, a rotated log file.
type ServerLogger struct {
	mu        sync.Mutex
	Errors    *CircularMessagesBuf
	Notices   *CircularMessagesBuf
	UseStdout bool
	file      io.WriteCloser
}

// NewServerLogger creates a logger
func NewServerLogger(errorsMax, noticesMax int, useStdout bool) *ServerLogger {
	return &ServerLogger{
		Errors:    NewCircularMessagesBuf(errorsMax),
		Notices:   NewCircularMessagesBuf(noticesMax),
		UseStdout: useStdout,
	}
}

// SetLogFile starts writing messages to path, rotated at 10 MB
func (l *ServerLogger) SetLogFile(path string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.file = &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10,
		MaxBackups: 5,
		MaxAge:     28,
	}
}

func (l *ServerLogger) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		l.file.Close()
		l.file = nil
	}
}

func (l *ServerLogger) log(buf *CircularMessagesBuf, level string, s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	buf.Add(s)
	if l.UseStdout {
		if level == "E" {
			fmt.Fprintf(os.Stdout, "%s %s\n", errorPrefix("Error:"), s)
		} else {
			fmt.Fprintf(os.Stdout, "%s %s\n", noticePrefix("Notice:"), s)
		}
	}
	if l.file != nil {
		fmt.Fprintf(l.file, "%s %s: %s\n", time.Now().Format("2006-01-02 15:04:05"), level, s)
	}
}

func (l *ServerLogger) Error(s string) {
	l.log(l.Errors, "E", s)
}

func (l *ServerLogger) Errorf(format string, v ...interface{}) {
	l.log(l.Errors, "E", fmt.Sprintf(format, v...))
}

func (l *ServerLogger) Notice(s string) {
	l.log(l.Notices, "N", s)
}

func (l *ServerLogger) Noticef(format string, v ...interface{}) {
	l.log(l.Notices, "N", fmt.Sprintf(format, v...))
}

// GetErrors returns error messages, newest first
func (l *ServerLogger) GetErrors() []*TimestampedMsg {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.Errors.GetOrdered()
}

// GetNotices returns notice messages, newest first
func (l *ServerLogger) GetNotices() []*TimestampedMsg {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.Notices.GetOrdered()
}

func userIsAdmin(user string) bool {
	return config.AdminUser != "" && user == config.AdminUser
}

// url: /logs
func handleLogs(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	model := struct {
		ModelBase
		UserIsAdmin bool
		Errors      []*TimestampedMsg
		Notices     []*TimestampedMsg
	}{
		ModelBase:   newModelBase(r, "Logs"),
		UserIsAdmin: userIsAdmin(user),
	}
	if model.UserIsAdmin {
		model.Errors = logger.GetErrors()
		model.Notices = logger.GetNotices()
	}
	ExecTemplate(w, tmplLogs, model)
}
