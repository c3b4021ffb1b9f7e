// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package runlog writes the per-folder conversion log. Each processed folder
// gets its own log file in its destination directory; entries are mirrored
// to the console.
package runlog

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

// TimeLayout is the timestamp layout at the start of every log line.
const TimeLayout = "2006-01-02 15:04:05"

// Formatter renders "2006-01-02 15:04:05 - LEVEL - message key=value".
type Formatter struct{}

// Format implements logrus.Formatter.
func (Formatter) Format(e *logrus.Entry) ([]byte, error) {
	var b bytes.Buffer
	b.WriteString(e.Time.Format(TimeLayout))
	b.WriteString(" - ")
	b.WriteString(strings.ToUpper(e.Level.String()))
	b.WriteString(" - ")
	b.WriteString(e.Message)

	if len(e.Data) > 0 {
		keys := make([]string, 0, len(e.Data))
		for k := range e.Data {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, " %s=%v", k, e.Data[k])
		}
	}
	b.WriteByte('\n')
	return b.Bytes(), nil
}

// Log is an open per-folder log.
type Log struct {
	*logrus.Logger
	path string
	file *os.File
}

// Open creates or appends to dir/name and returns a logger writing to both the
// file and console. console may be nil to log only to the file.
func Open(dir, name string, console io.Writer) (*Log, error) {
	path := filepath.Join(dir, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening log file %s: %w", path, err)
	}

	var out io.Writer = f
	if console != nil {
		out = io.MultiWriter(f, console)
	}

	l := logrus.New()
	l.SetOutput(out)
	l.SetFormatter(Formatter{})
	l.SetLevel(logrus.InfoLevel)

	return &Log{Logger: l, path: path, file: f}, nil
}

// Path returns the log file location.
func (l *Log) Path() string { return l.path }

// Close flushes and closes the log file.
func (l *Log) Close() error {
	return l.file.Close()
}
