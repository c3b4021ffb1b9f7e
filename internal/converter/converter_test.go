// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package converter

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"strings"
	"testing"
	"time"
)

// mockExecutor records calls and returns configured responses.
type mockExecutor struct {
	files    map[string]bool // path -> isDir
	onPath   map[string]bool // binary name -> LookPath succeeds
	runFunc  func(name string, args []string, stderr io.Writer) (int, error)
	lastName string
	lastArgs []string
}

func (m *mockExecutor) LookPath(file string) (string, error) {
	if m.onPath[file] {
		return "/usr/local/bin/" + file, nil
	}
	return "", errors.New("not found: " + file)
}

func (m *mockExecutor) Stat(path string) (os.FileInfo, error) {
	isDir, ok := m.files[path]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return fakeInfo{name: path, dir: isDir}, nil
}

func (m *mockExecutor) Run(_ context.Context, name string, args []string, stderr io.Writer) (int, error) {
	m.lastName = name
	m.lastArgs = args
	if m.runFunc != nil {
		return m.runFunc(name, args, stderr)
	}
	return 0, nil
}

type fakeInfo struct {
	name string
	dir  bool
}

func (f fakeInfo) Name() string       { return f.name }
func (f fakeInfo) Size() int64        { return 0 }
func (f fakeInfo) Mode() fs.FileMode  { return 0o755 }
func (f fakeInfo) ModTime() time.Time { return time.Time{} }
func (f fakeInfo) IsDir() bool        { return f.dir }
func (f fakeInfo) Sys() any           { return nil }

func TestArgs(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want string
	}{
		{
			name: "lossy and fast load",
			opts: Options{Lossy: true, FastLoad: true},
			want: "-lossy -fl -d /out -o a.dng /in/a.CR2",
		},
		{
			name: "lossless without fast load",
			opts: Options{},
			want: "-d /out -o a.dng /in/a.CR2",
		},
		{
			name: "fast load only",
			opts: Options{FastLoad: true},
			want: "-fl -d /out -o a.dng /in/a.CR2",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newAdobe("/opt/dng", tt.opts, &mockExecutor{})
			got := strings.Join(a.Args("/out", "a.dng", "/in/a.CR2"), " ")
			if got != tt.want {
				t.Errorf("args = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCommandTemplate(t *testing.T) {
	a := newAdobe("/Applications/Adobe DNG Converter.app/Contents/MacOS/Adobe DNG Converter",
		Options{Lossy: true, FastLoad: true}, &mockExecutor{})
	got := a.CommandTemplate("/photos/DNG")
	want := `Adobe DNG Converter -lossy -fl -d "/photos/DNG" -o [OUTPUT_NAME] [INPUT_FILE]`
	if got != want {
		t.Errorf("template = %q, want %q", got, want)
	}
}

func TestConvert(t *testing.T) {
	tests := []struct {
		name     string
		runFunc  func(string, []string, io.Writer) (int, error)
		wantCode int
		wantExit bool
		wantErr  bool
	}{
		{
			name:    "success",
			runFunc: func(string, []string, io.Writer) (int, error) { return 0, nil },
		},
		{
			name: "non-zero exit returns ExitError with stderr",
			runFunc: func(_ string, _ []string, stderr io.Writer) (int, error) {
				_, _ = io.WriteString(stderr, "GPU not supported\nUnsupported camera\n")
				return 2, nil
			},
			wantCode: 2,
			wantExit: true,
			wantErr:  true,
		},
		{
			name: "start failure is wrapped",
			runFunc: func(string, []string, io.Writer) (int, error) {
				return -1, errors.New("permission denied")
			},
			wantCode: -1,
			wantErr:  true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &mockExecutor{runFunc: tt.runFunc}
			a := newAdobe("/opt/dng", Options{Lossy: true, FastLoad: true}, m)

			res, err := a.Convert(context.Background(), "/in/a.CR2", "/out", "a.dng")
			if res.ExitCode != tt.wantCode {
				t.Errorf("exit code = %d, want %d", res.ExitCode, tt.wantCode)
			}
			if m.lastName != "/opt/dng" {
				t.Errorf("ran %q, want /opt/dng", m.lastName)
			}
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			var exitErr *ExitError
			if got := errors.As(err, &exitErr); got != tt.wantExit {
				t.Errorf("errors.As(ExitError) = %v, want %v", got, tt.wantExit)
			}
			if tt.wantExit && !strings.Contains(err.Error(), "Unsupported camera") {
				t.Errorf("error should carry cleaned stderr, got: %v", err)
			}
			if tt.wantExit && strings.Contains(err.Error(), "GPU") {
				t.Errorf("error should not carry GPU noise, got: %v", err)
			}
		})
	}
}

func TestCleanStderr(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"only GPU noise", "GPU acceleration disabled\n\n", ""},
		{"mixed", "GPU warn\nfile is corrupt\n  \nunsupported format\n", "file is corrupt; unsupported format"},
		{"windows line endings", "bad file\r\nGPU\r\n", "bad file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanStderr(tt.in); got != tt.want {
				t.Errorf("CleanStderr(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestLocate(t *testing.T) {
	tests := []struct {
		name     string
		exec     *mockExecutor
		explicit string
		env      string
		goos     string
		want     string
		wantErr  bool
	}{
		{
			name:     "explicit path wins",
			exec:     &mockExecutor{files: map[string]bool{"/opt/dng": false, darwinDefault: false}},
			explicit: "/opt/dng",
			goos:     "darwin",
			want:     "/opt/dng",
		},
		{
			name:     "missing explicit path is an error",
			exec:     &mockExecutor{files: map[string]bool{darwinDefault: false}},
			explicit: "/opt/missing",
			goos:     "darwin",
			wantErr:  true,
		},
		{
			name: "env var before OS default",
			exec: &mockExecutor{files: map[string]bool{"/env/dng": false, darwinDefault: false}},
			env:  "/env/dng",
			goos: "darwin",
			want: "/env/dng",
		},
		{
			name: "stale env var falls back to OS default",
			exec: &mockExecutor{files: map[string]bool{windowsDefault: false}},
			env:  "/env/missing",
			goos: "windows",
			want: windowsDefault,
		},
		{
			name:    "directory is not accepted",
			exec:    &mockExecutor{files: map[string]bool{"/env/dir": true}},
			env:     "/env/dir",
			goos:    "linux",
			wantErr: true,
		},
		{
			name: "PATH lookup on linux",
			exec: &mockExecutor{onPath: map[string]bool{"dngconverter": true}},
			goos: "linux",
			want: "/usr/local/bin/dngconverter",
		},
		{
			name:    "nothing found",
			exec:    &mockExecutor{},
			goos:    "darwin",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := locate(tt.exec, tt.explicit, tt.env, tt.goos)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got path %q", got)
				}
				if !errors.Is(err, ErrNotFound) {
					t.Errorf("error should wrap ErrNotFound, got: %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLocate_ErrorMentionsEnvVar(t *testing.T) {
	_, err := locate(&mockExecutor{}, "", "", "darwin")
	if err == nil || !strings.Contains(err.Error(), EnvPath) {
		t.Errorf("error should mention %s, got: %v", EnvPath, err)
	}
}
