package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/nvandessel/sweep/internal/constants"
)

// DataDir returns the sweep data directory for the given project root.
func DataDir(projectRoot string) string {
	return filepath.Join(projectRoot, constants.DataDirName)
}

// EnsureDataDir creates the data directory under projectRoot if it doesn't
// exist and returns its path.
func EnsureDataDir(projectRoot string) (string, error) {
	dir := DataDir(projectRoot)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create %s directory: %w", constants.DataDirName, err)
	}
	return dir, nil
}
