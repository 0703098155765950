package magiccache

import (
	"os"
	"path/filepath"
	"runtime"
)

const appName = "chesscore"

// DefaultDir returns the platform-specific directory the magic-table
// cache should live in by default, creating it if necessary.
//
//   - macOS:   ~/Library/Application Support/chesscore/magiccache/
//   - Windows: %APPDATA%/chesscore/magiccache/
//   - other:   $XDG_DATA_HOME/chesscore/magiccache/ (or ~/.local/share/...)
func DefaultDir() (string, error) {
	var baseDir string

	switch runtime.GOOS {
	case "darwin":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		baseDir = filepath.Join(homeDir, "Library", "Application Support")

	case "windows":
		baseDir = os.Getenv("APPDATA")
		if baseDir == "" {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			baseDir = filepath.Join(homeDir, "AppData", "Roaming")
		}

	default:
		baseDir = os.Getenv("XDG_DATA_HOME")
		if baseDir == "" {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			baseDir = filepath.Join(homeDir, ".local", "share")
		}
	}

	dir := filepath.Join(baseDir, appName, "magiccache")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}
