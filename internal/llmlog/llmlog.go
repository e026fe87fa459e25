// Package llmlog appends prompt/response records to a dated log file under
// the configured log directory (llm_calls_YYYYMMDD.log). Logging failures are
// swallowed: the call log must never fail the LLM call it describes.
package llmlog

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Logger appends LLM call records to one file per day.
type Logger struct {
	mu  sync.Mutex
	dir string
	// now is overridable for tests.
	now func() time.Time
}

// New creates a Logger writing under dir. An empty dir disables logging.
func New(dir string) *Logger {
	return &Logger{dir: dir, now: time.Now}
}

// Prompt records an outbound prompt.
func (l *Logger) Prompt(text string) {
	l.write("INFO", "PROMPT: "+text)
}

// Response records a model response received from the provider.
func (l *Logger) Response(text string) {
	l.write("INFO", "RESPONSE: "+text)
}

// CachedResponse records a response served from the cache.
func (l *Logger) CachedResponse(text string) {
	l.write("INFO", "RESPONSE (cached): "+text)
}

// Warningf records a warning-class event, such as a cache persistence failure.
func (l *Logger) Warningf(format string, args ...any) {
	l.write("WARNING", fmt.Sprintf(format, args...))
}

// Errorf records an error-class event.
func (l *Logger) Errorf(format string, args ...any) {
	l.write("ERROR", fmt.Sprintf(format, args...))
}

// Path returns the log file that records written now would land in, or ""
// when logging is disabled.
func (l *Logger) Path() string {
	if l.dir == "" {
		return ""
	}
	return filepath.Join(l.dir, fmt.Sprintf("llm_calls_%s.log", l.now().Format("20060102")))
}

func (l *Logger) write(level, msg string) {
	if l.dir == "" {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return
	}
	f, err := os.OpenFile(l.Path(), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer f.Close()
	fmt.Fprintf(f, "%s - %s - %s\n", l.now().Format("2006-01-02 15:04:05"), level, msg)
}
