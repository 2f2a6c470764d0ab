package logging

import (
	"os"
	"path/filepath"
)

// DefaultLogDir returns the default log directory (~/.prashna/logs/).
// Falls back to temp directory if home directory is unavailable.
func DefaultLogDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".prashna", "logs")
	}
	return filepath.Join(home, ".prashna", "logs")
}

// DefaultLogPath returns the default pipeline log path.
func DefaultLogPath() string {
	return filepath.Join(DefaultLogDir(), "prashna.log")
}
