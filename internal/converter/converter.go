// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package converter locates and drives the Adobe DNG Converter command-line
// tool. The converter is an external binary; this package only builds its
// arguments, runs it, and interprets the exit status.
package converter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Flags understood by Adobe DNG Converter.
const (
	flagLossy    = "-lossy"
	flagFastLoad = "-fl"
	flagDestDir  = "-d"
	flagOutName  = "-o"
)

// Options selects the optional converter flags.
type Options struct {
	Lossy    bool
	FastLoad bool
}

// Result carries what the converter reported for a single invocation.
type Result struct {
	ExitCode int
	Stderr   string
}

// ExitError is returned by Convert when the converter ran but exited non-zero.
type ExitError struct {
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	if msg := CleanStderr(e.Stderr); msg != "" {
		return fmt.Sprintf("converter exited with status %d: %s", e.Code, msg)
	}
	return fmt.Sprintf("converter exited with status %d", e.Code)
}

// executor abstracts process execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	Stat(path string) (os.FileInfo, error)
	Run(ctx context.Context, name string, args []string, stderr io.Writer) (int, error)
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) Stat(path string) (os.FileInfo, error) {
	return os.Stat(path)
}

// Run starts the process and waits for it. A non-zero exit is reported through
// the returned code with a nil error; err is reserved for failures to start
// or a cancelled context.
func (o *osExecutor) Run(ctx context.Context, name string, args []string, stderr io.Writer) (int, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = io.Discard
	cmd.Stderr = stderr
	err := cmd.Run()
	if err == nil {
		return 0, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return -1, ctxErr
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return -1, err
}

var defaultExec executor = &osExecutor{}

// Adobe runs a located Adobe DNG Converter binary.
type Adobe struct {
	path string
	opts Options
	exec executor
}

// New returns a converter for the binary at path. Use Locate to find path.
func New(path string, opts Options) *Adobe {
	return newAdobe(path, opts, defaultExec)
}

func newAdobe(path string, opts Options, exec executor) *Adobe {
	return &Adobe{path: path, opts: opts, exec: exec}
}

// Path returns the binary being invoked.
func (a *Adobe) Path() string { return a.path }

// Args returns the argument list for converting input into destDir/outName.
func (a *Adobe) Args(destDir, outName, input string) []string {
	args := make([]string, 0, 7)
	if a.opts.Lossy {
		args = append(args, flagLossy)
	}
	if a.opts.FastLoad {
		args = append(args, flagFastLoad)
	}
	return append(args, flagDestDir, destDir, flagOutName, outName, input)
}

// CommandTemplate renders the command line used for every file in destDir,
// with placeholders for the per-file parts.
func (a *Adobe) CommandTemplate(destDir string) string {
	args := a.Args(fmt.Sprintf("%q", destDir), "[OUTPUT_NAME]", "[INPUT_FILE]")
	return filepath.Base(a.path) + " " + strings.Join(args, " ")
}

// Convert runs the converter for a single input. It returns an *ExitError
// when the converter exits non-zero. The Result is populated in both cases.
func (a *Adobe) Convert(ctx context.Context, input, destDir, outName string) (Result, error) {
	var stderr bytes.Buffer
	code, err := a.exec.Run(ctx, a.path, a.Args(destDir, outName, input), &stderr)
	res := Result{ExitCode: code, Stderr: stderr.String()}
	if err != nil {
		return res, fmt.Errorf("running %s: %w", filepath.Base(a.path), err)
	}
	if code != 0 {
		return res, &ExitError{Code: code, Stderr: res.Stderr}
	}
	return res, nil
}

// CleanStderr drops blank lines and the GPU notices the converter prints on
// every run, joining what remains with "; ".
func CleanStderr(stderr string) string {
	var kept []string
	for _, line := range strings.Split(stderr, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.Contains(line, "GPU") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "; ")
}
