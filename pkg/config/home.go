package config

import (
	"os"
	"path/filepath"
	"sync"
)

const envHome = "BROWSER_STEPS_HOME"

var (
	homeOnce sync.Once
	homeDir  string
)

// GetHome returns the browser-steps home directory, where downloaded
// browser drivers are kept.
//
// Resolution order:
//  1. $BROWSER_STEPS_HOME
//  2. <home> when the binary lives in <home>/bin/
//  3. <user cache dir>/browser-steps
//  4. ./.browser-steps
func GetHome() string {
	homeOnce.Do(func() {
		homeDir = resolveHome()
	})
	return homeDir
}

// GetDriversDir returns <home>/drivers/<name>.
func GetDriversDir(name string) string {
	return filepath.Join(GetHome(), "drivers", name)
}

func resolveHome() string {
	if env := os.Getenv(envHome); env != "" {
		return env
	}

	if execPath, err := os.Executable(); err == nil {
		if resolved, err := filepath.EvalSymlinks(execPath); err == nil {
			execPath = resolved
		}
		if binDir := filepath.Dir(execPath); filepath.Base(binDir) == "bin" {
			return filepath.Dir(binDir)
		}
	}

	if cache, err := os.UserCacheDir(); err == nil {
		return filepath.Join(cache, "browser-steps")
	}
	return ".browser-steps"
}

// ResetHome resets the cached home directory (for testing).
func ResetHome() {
	homeOnce = sync.Once{}
	homeDir = ""
}
