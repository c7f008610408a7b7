package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths contains the resolved, absolute application paths
type Paths struct {
	ExecutableDir string
	WorkingDir    string
	DataDir       string
	LogsDir       string
}

// GetPaths resolves the configured paths. Absolute paths are used as is.
// A relative path is taken from the working directory when it exists there,
// otherwise it is anchored at the executable directory.
func (c *Config) GetPaths() (*Paths, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable path: %w", err)
	}

	// Resolve symlinks to get the actual executable location
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve executable symlinks: %w", err)
	}

	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	exeDir := filepath.Dir(exe)
	return &Paths{
		ExecutableDir: exeDir,
		WorkingDir:    wd,
		DataDir:       resolveDir(c.Paths.DataDir, wd, exeDir),
		LogsDir:       resolveDir(c.Paths.LogsDir, wd, exeDir),
	}, nil
}

// GetDataDir returns the resolved data directory path
func (c *Config) GetDataDir() string {
	paths, err := c.GetPaths()
	if err != nil {
		return c.Paths.DataDir
	}
	return paths.DataDir
}

func resolveDir(dir, wd, exeDir string) string {
	if filepath.IsAbs(dir) {
		return filepath.Clean(dir)
	}
	fromWD := filepath.Join(wd, dir)
	if FileExists(fromWD) {
		return fromWD
	}
	return filepath.Join(exeDir, dir)
}

// FileExists reports whether path exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
