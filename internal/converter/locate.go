// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package converter

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"
)

// EnvPath names the environment variable that overrides converter discovery.
const EnvPath = "ADOBE_DNG_PATH"

// ErrNotFound is returned when no candidate converter binary exists.
var ErrNotFound = errors.New("adobe DNG converter not found")

const (
	windowsDefault = `C:\Program Files\Adobe\Adobe DNG Converter\Adobe DNG Converter.exe`
	darwinDefault  = "/Applications/Adobe DNG Converter.app/Contents/MacOS/Adobe DNG Converter"
)

// pathNames are tried with a PATH lookup after the fixed locations.
var pathNames = []string{"Adobe DNG Converter", "dngconverter", "DNGConverter"}

// Locate resolves the converter binary. The order is: explicit path, the
// ADOBE_DNG_PATH environment variable, the default install location for the
// current OS, then a PATH lookup. An explicit path that does not exist is an
// error; it is never silently replaced by a discovered one.
func Locate(explicit string) (string, error) {
	return locate(defaultExec, explicit, os.Getenv(EnvPath), runtime.GOOS)
}

func locate(exec executor, explicit, env, goos string) (string, error) {
	if explicit != "" {
		if isFile(exec, explicit) {
			return explicit, nil
		}
		return "", fmt.Errorf("%w: configured path %s does not exist", ErrNotFound, explicit)
	}

	var tried []string
	if env != "" {
		if isFile(exec, env) {
			return env, nil
		}
		tried = append(tried, EnvPath+"="+env)
	}

	if def := defaultPath(goos); def != "" {
		if isFile(exec, def) {
			return def, nil
		}
		tried = append(tried, def)
	}

	for _, name := range pathNames {
		if p, err := exec.LookPath(name); err == nil {
			return p, nil
		}
		tried = append(tried, "PATH:"+name)
	}

	return "", fmt.Errorf("%w (tried %s); install it or set %s",
		ErrNotFound, strings.Join(tried, ", "), EnvPath)
}

// defaultPath returns the vendor install location for goos, or "" when the
// vendor ships no build for it.
func defaultPath(goos string) string {
	switch goos {
	case "windows":
		return windowsDefault
	case "darwin":
		return darwinDefault
	default:
		return ""
	}
}

func isFile(exec executor, path string) bool {
	info, err := exec.Stat(path)
	return err == nil && !info.IsDir()
}
