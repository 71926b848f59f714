// Package logx contains the apex/log handler used by the command line.
package logx

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/apex/log"
	"github.com/fatih/color"
	colorable "github.com/mattn/go-colorable"
)

// Colors maps each level to its color.
var Colors = [...]*color.Color{
	log.DebugLevel: color.New(color.FgWhite),
	log.InfoLevel:  color.New(color.FgBlue),
	log.WarnLevel:  color.New(color.FgYellow),
	log.ErrorLevel: color.New(color.FgRed),
	log.FatalLevel: color.New(color.FgRed),
}

// Handler implements log.Handler. Each line contains the seconds elapsed
// since the handler was created, the level, the message, and the fields
// sorted by name.
type Handler struct {
	// Writer is where we write.
	Writer io.Writer

	mu    sync.Mutex
	start time.Time
	since func(t time.Time) time.Duration
}

var _ log.Handler = &Handler{}

// NewHandler creates a new Handler. When w is an *os.File we wrap it
// so that colors also work on Windows consoles.
func NewHandler(w io.Writer) *Handler {
	if f, ok := w.(*os.File); ok {
		w = colorable.NewColorable(f)
	}
	return &Handler{
		Writer: w,
		start:  time.Now(),
		since:  time.Since,
	}
}

// HandleLog implements log.Handler.
func (h *Handler) HandleLog(e *log.Entry) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	c := Colors[e.Level]
	s := fmt.Sprintf("[%14.6f] <%s> %s", h.since(h.start).Seconds(), c.Sprint(e.Level.String()), e.Message)
	for _, name := range e.Fields.Names() {
		s += fmt.Sprintf(" %s=%v", c.Sprint(name), e.Fields.Get(name))
	}
	_, err := fmt.Fprintln(h.Writer, s)
	return err
}

// NewLogger returns a logger writing to w using Handler. The level is
// debug when verbose is true and info otherwise.
func NewLogger(w io.Writer, verbose bool) *log.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	return &log.Logger{
		Handler: NewHandler(w),
		Level:   level,
	}
}
