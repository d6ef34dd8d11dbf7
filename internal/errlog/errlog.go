// Package errlog appends unexpected server errors to a log file.
package errlog

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileName is the log file created inside the configured directory.
const FileName = "error.log"

// Log appends entries to <dir>/error.log. The directory is created on the
// first write.
type Log struct {
	dir string
	now func() time.Time
	mu  sync.Mutex
}

func New(dir string) *Log {
	return &Log{dir: dir, now: time.Now}
}

// Path returns the log file path.
func (l *Log) Path() string {
	return filepath.Join(l.dir, FileName)
}

// Write appends one entry: timestamp, request line and the error chain.
func (l *Log) Write(request string, err error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return fmt.Errorf("errlog mkdir: %w", err)
	}
	f, ferr := os.OpenFile(l.Path(), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if ferr != nil {
		return fmt.Errorf("errlog open: %w", ferr)
	}
	defer f.Close()

	_, werr := fmt.Fprintf(f, "%s\t%s\t%v\n", l.now().UTC().Format(time.RFC3339), request, err)
	return werr
}
