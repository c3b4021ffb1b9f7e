// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package batch runs the RAW-to-DNG conversion over a list of folders.
// Every RAW file is handed to the external converter; when conversion fails
// the original is copied into the destination instead, so no file is ever
// left behind. Each folder keeps its own log.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/pdiddy/dng-batch/internal/converter"
	"github.com/pdiddy/dng-batch/internal/naming"
	"github.com/pdiddy/dng-batch/internal/runlog"
	"github.com/pdiddy/dng-batch/pkg/types"
)

// defaultLockDir holds the per-destination lock files when no WithLockDir
// option is given. Locks live outside the photo folders.
var defaultLockDir = filepath.Join(os.TempDir(), "dng-batch", "locks")

var (
	// ErrInvalidFolder marks a listed path that is missing or not a directory.
	ErrInvalidFolder = errors.New("invalid directory path")

	// ErrFolderLocked marks a destination another run is writing to.
	ErrFolderLocked = errors.New("destination is locked by another run")
)

// Converter turns one RAW file into destDir/outName. Implemented by
// *converter.Adobe.
type Converter interface {
	Convert(ctx context.Context, input, destDir, outName string) (converter.Result, error)
	CommandTemplate(destDir string) string
}

// Recorder persists file outcomes. Implemented by *history.Store.
type Recorder interface {
	Record(ctx context.Context, runID, folder string, o types.FileOutcome) error
}

// Processor converts the RAW files of one folder at a time. It is not safe
// for concurrent use.
type Processor struct {
	cfg      types.ConvertConfig
	conv     Converter
	console  io.Writer
	recorder Recorder
	runID    string
	lockDir  string

	// claimed maps destinations under an absolute output directory to the
	// source folder that owns them for this Processor's lifetime.
	claimed map[string]string
}

// Option configures a Processor.
type Option func(*Processor)

// WithConsole mirrors folder logs and progress messages to w.
func WithConsole(w io.Writer) Option {
	return func(p *Processor) { p.console = w }
}

// WithRecorder stores every file outcome in r under runID.
func WithRecorder(r Recorder, runID string) Option {
	return func(p *Processor) {
		p.recorder = r
		p.runID = runID
	}
}

// WithRunID tags log output with id without recording history.
func WithRunID(id string) Option {
	return func(p *Processor) { p.runID = id }
}

// WithLockDir stores destination lock files in dir.
func WithLockDir(dir string) Option {
	return func(p *Processor) { p.lockDir = dir }
}

// NewProcessor returns a Processor using conv for conversions.
func NewProcessor(cfg types.ConvertConfig, conv Converter, opts ...Option) *Processor {
	cfg.Normalize()
	p := &Processor{
		cfg:     cfg,
		conv:    conv,
		console: io.Discard,
		lockDir: defaultLockDir,
		claimed: make(map[string]string),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Result is the outcome of a whole batch.
type Result struct {
	Folders []types.FolderSummary
}

// Converted returns the number of files converted to DNG.
func (r Result) Converted() int {
	n := 0
	for _, f := range r.Folders {
		n += f.Converted
	}
	return n
}

// Copied returns the number of originals copied after a failed conversion.
func (r Result) Copied() int {
	n := 0
	for _, f := range r.Folders {
		n += f.Copied
	}
	return n
}

// Failed returns the number of files neither converted nor copied.
func (r Result) Failed() int {
	n := 0
	for _, f := range r.Folders {
		n += f.Failed
	}
	return n
}

// SkippedFolders returns the number of listed folders that were not processed.
func (r Result) SkippedFolders() int {
	n := 0
	for _, f := range r.Folders {
		if f.Status == types.FolderSkipped {
			n++
		}
	}
	return n
}

// HasFailures reports whether any file failed both conversion and copy.
func (r Result) HasFailures() bool {
	return r.Failed() > 0
}

// Run processes folders in order. Per-folder and per-file problems are
// logged and counted; only context cancellation stops the batch early, in
// which case the partial result is returned with ctx.Err().
func (p *Processor) Run(ctx context.Context, folders []string) (Result, error) {
	var res Result
	for i, folder := range folders {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		fmt.Fprintf(p.console, "\n>>> Processing Folder %d/%d: %s\n", i+1, len(folders), folder)

		summary, err := p.ProcessFolder(ctx, folder)
		res.Folders = append(res.Folders, summary)
		if err != nil {
			return res, err
		}
	}
	return res, nil
}

// ProcessFolder converts every RAW file in folder. A folder that cannot be
// processed at all comes back with status FolderSkipped and a reason; the
// returned error is non-nil only when ctx was cancelled.
func (p *Processor) ProcessFolder(ctx context.Context, folder string) (types.FolderSummary, error) {
	summary := types.FolderSummary{Folder: folder}

	src, err := filepath.Abs(folder)
	if err == nil {
		summary.Folder = src
		var info os.FileInfo
		info, err = os.Stat(src)
		if err == nil && !info.IsDir() {
			err = errors.New("not a directory")
		}
	}
	if err != nil {
		fmt.Fprintf(p.console, "SKIPPING: Invalid directory path: %s\n", summary.Folder)
		return p.skip(summary, fmt.Errorf("%w: %v", ErrInvalidFolder, err)), nil
	}

	dest := p.destination(src)
	summary.Destination = dest
	if err := os.MkdirAll(dest, 0o755); err != nil {
		fmt.Fprintf(p.console, "CRITICAL ERROR: Could not create output directory at %s. Error: %v\n", src, err)
		return p.skip(summary, fmt.Errorf("creating output directory: %w", err)), nil
	}

	if err := os.MkdirAll(p.lockDir, 0o755); err != nil {
		fmt.Fprintf(p.console, "SKIPPING: %s: %v\n", dest, err)
		return p.skip(summary, fmt.Errorf("creating lock directory: %w", err)), nil
	}
	lock := flock.New(p.lockPath(dest))
	locked, err := lock.TryLock()
	if err != nil || !locked {
		if err == nil {
			err = ErrFolderLocked
		}
		fmt.Fprintf(p.console, "SKIPPING: %s: %v\n", dest, err)
		return p.skip(summary, err), nil
	}
	defer lock.Unlock()

	log, err := runlog.Open(dest, p.cfg.LogFile, p.console)
	if err != nil {
		fmt.Fprintf(p.console, "CRITICAL ERROR: Could not create log file in %s: %v\n", dest, err)
		return p.skip(summary, err), nil
	}
	defer log.Close()

	if p.runID != "" {
		log.WithField("run", p.runID).Infof("Started processing. Log saved to: %s", log.Path())
	} else {
		log.Infof("Started processing. Log saved to: %s", log.Path())
	}
	log.Infof("Batch Conversion Command Template: %s", p.conv.CommandTemplate(dest))

	files, err := p.scan(src, dest)
	if err != nil {
		log.Errorf("Could not list directory: %v", err)
		return p.skip(summary, err), nil
	}
	if len(files) == 0 {
		log.Warn("No supported RAW files found in this directory.")
		summary.Status = types.FolderEmpty
		return summary, nil
	}
	log.Infof("Found %d RAW files to process.", len(files))

	summary.Status = types.FolderProcessed
	var ctxErr error
	for i, file := range files {
		if ctxErr = ctx.Err(); ctxErr != nil {
			log.Warnf("Cancelled: %d of %d files not processed.", len(files)-i, len(files))
			break
		}
		outcome := p.processFile(ctx, log, file, dest, i+1, len(files))
		summary.Add(outcome)
		p.record(ctx, log, src, outcome)
	}

	log.Info(strings.Repeat("-", 40))
	log.Infof("SUMMARY: %d Converted (DNG) | %d Copied (Originals) | %d Total Failures",
		summary.Converted, summary.Copied, summary.Failed)
	log.Info(strings.Repeat("=", 40))

	return summary, ctxErr
}

func (p *Processor) skip(s types.FolderSummary, reason error) types.FolderSummary {
	s.Status = types.FolderSkipped
	s.Reason = reason.Error()
	return s
}

// destination returns the output directory for a source folder. Under an
// absolute output directory each source gets its own subdirectory named after
// it; a second source with the same base name gets base_1, base_2, ...
func (p *Processor) destination(src string) string {
	dir := p.cfg.OutputDir
	if dir == "" || dir == "." {
		return src
	}
	if !filepath.IsAbs(dir) {
		return filepath.Join(src, dir)
	}

	base := filepath.Base(src)
	for n := 0; ; n++ {
		name := base
		if n > 0 {
			name = fmt.Sprintf("%s_%d", base, n)
		}
		dest := filepath.Join(dir, name)
		if owner, ok := p.claimed[dest]; !ok || owner == src {
			p.claimed[dest] = src
			return dest
		}
	}
}

// lockPath returns the lock file guarding dest.
func (p *Processor) lockPath(dest string) string {
	id := uuid.NewSHA1(uuid.NameSpaceURL, []byte("file://"+filepath.ToSlash(dest)))
	return filepath.Join(p.lockDir, id.String()+".lock")
}

// isFile reports whether e is a regular file or a symlink to one.
func isFile(path string, e fs.DirEntry) bool {
	if e.Type().IsRegular() {
		return true
	}
	if e.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// scan lists RAW files under src in lexical order. The destination tree is
// never descended into, so output from earlier runs is not reprocessed.
func (p *Processor) scan(src, dest string) ([]string, error) {
	if !p.cfg.Recursive {
		entries, err := os.ReadDir(src)
		if err != nil {
			return nil, err
		}
		var files []string
		for _, e := range entries {
			path := filepath.Join(src, e.Name())
			if naming.IsRaw(e.Name(), p.cfg.Extensions) && isFile(path, e) {
				files = append(files, path)
			}
		}
		return files, nil
	}

	var files []string
	err := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != src && (path == dest || (p.cfg.OutputDir != "" && d.Name() == p.cfg.OutputDir)) {
				return filepath.SkipDir
			}
			return nil
		}
		if naming.IsRaw(d.Name(), p.cfg.Extensions) && isFile(path, d) {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// processFile converts one RAW file, falling back to a plain copy.
func (p *Processor) processFile(ctx context.Context, log *runlog.Log, src, dest string, idx, total int) types.FileOutcome {
	start := time.Now()
	name := filepath.Base(src)
	stem := naming.Stem(src)
	outcome := types.FileOutcome{Source: src}
	finish := func() types.FileOutcome {
		outcome.Duration = time.Since(start)
		outcome.At = time.Now()
		return outcome
	}

	log.Infof("[%d/%d] Processing: %s", idx, total, name)

	dngName, dngPath, collision, err := naming.UniquePath(dest, stem, ".dng")
	if err != nil {
		log.Errorf("  -> Could not choose an output name for %s: %v", name, err)
		outcome.Action = types.ActionFailed
		outcome.Detail = err.Error()
		return finish()
	}
	if collision > 0 {
		log.Warnf("  -> Name collision detected. Saving as: %s", dngName)
	}

	res, convErr := p.conv.Convert(ctx, src, dest, dngName)
	if convErr == nil {
		if info, statErr := os.Stat(dngPath); statErr == nil && info.Mode().IsRegular() {
			outcome.Action = types.ActionConverted
			outcome.Output = dngPath
			outcome.Renamed = collision > 0
			outcome.Bytes = info.Size()
			log.Infof("  -> Converted: %s", dngName)
			return finish()
		}
		convErr = errors.New("converter reported success but produced no output")
		if details := converter.CleanStderr(res.Stderr); details != "" {
			convErr = fmt.Errorf("%w: %s", convErr, details)
		}
	}

	// A failed run may leave a truncated DNG under the name reserved above.
	os.Remove(dngPath)

	if ctx.Err() != nil {
		log.Warnf("  -> Cancelled while converting %s.", name)
		outcome.Action = types.ActionFailed
		outcome.Detail = ctx.Err().Error()
		return finish()
	}

	log.Warnf("  -> Conversion FAILED for %s.", name)
	outcome.Detail = convErr.Error()
	var exitErr *converter.ExitError
	if errors.As(convErr, &exitErr) {
		if details := converter.CleanStderr(exitErr.Stderr); details != "" {
			log.Warnf("     Adobe Error Details: %s", details)
			outcome.Detail = details
		}
	} else {
		log.Warnf("     Error: %v", convErr)
	}

	if filepath.Dir(src) == dest {
		info, err := os.Stat(src)
		if err != nil {
			log.Errorf("  -> CRITICAL: Failed to convert %s and the original is gone: %v", name, err)
			outcome.Action = types.ActionFailed
			outcome.Detail = fmt.Sprintf("%s; %v", outcome.Detail, err)
			return finish()
		}
		log.Info("  -> Output folder is the source folder; original kept in place.")
		outcome.Action = types.ActionCopied
		outcome.Output = src
		outcome.Bytes = info.Size()
		return finish()
	}

	log.Info("  -> Attempting to COPY original file to output folder...")
	copyName, copyPath, copyCollision, err := naming.UniquePath(dest, stem, filepath.Ext(src))
	var n int64
	if err == nil {
		n, err = copyFile(src, copyPath)
	}
	if err != nil {
		log.Errorf("  -> CRITICAL: Failed to convert AND failed to copy %s", name)
		log.Errorf("     Copy Error: %v", err)
		outcome.Action = types.ActionFailed
		outcome.Detail = fmt.Sprintf("%s; copy: %v", outcome.Detail, err)
		return finish()
	}

	if copyCollision > 0 {
		log.Infof("  -> Original file copied with rename: %s", copyName)
	} else {
		log.Info("  -> Original file copied successfully.")
	}
	outcome.Action = types.ActionCopied
	outcome.Output = copyPath
	outcome.Renamed = copyCollision > 0
	outcome.Bytes = n
	return finish()
}

func (p *Processor) record(ctx context.Context, log *runlog.Log, folder string, o types.FileOutcome) {
	if p.recorder == nil {
		return
	}
	// Record after cancellation too; the ledger should match the log.
	if err := p.recorder.Record(context.WithoutCancel(ctx), p.runID, folder, o); err != nil {
		log.Warnf("  -> Could not record history: %v", err)
	}
}
