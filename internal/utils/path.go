package utils

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/charmbracelet/log"
)

// AppName names the config directory
const AppName = "wordfix"

// PathResolver locates config and data files relative to the executable,
// the working directory and the user config directory
type PathResolver struct {
	executableDir string
	homeDir       string
	configDir     string
}

// NewPathResolver determines the executable location and config directory
func NewPathResolver() (*PathResolver, error) {
	execPath, err := os.Executable()
	if err != nil {
		return nil, err
	}
	// Resolve any symlinks to get the actual binary location
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		return nil, err
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Warnf("Could not determine home directory: %v", err)
		homeDir = os.TempDir()
	}

	pr := &PathResolver{
		executableDir: filepath.Dir(execPath),
		homeDir:       homeDir,
		configDir:     configDirFor(homeDir),
	}
	log.Debugf("PathResolver initialized: execDir=%s, configDir=%s", pr.executableDir, pr.configDir)
	return pr, nil
}

func configDirFor(homeDir string) string {
	switch runtime.GOOS {
	case "linux":
		if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
			return filepath.Join(configHome, AppName)
		}
		return filepath.Join(homeDir, ".config", AppName)
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, AppName)
		}
		return filepath.Join(homeDir, "AppData", "Roaming", AppName)
	default:
		return filepath.Join(homeDir, ".config", AppName)
	}
}

// FindFile resolves a possibly relative path. Absolute paths are returned as
// is. Relative ones are tried against the working directory, the executable
// directory and the config directory, in that order. When none exists the
// working-directory candidate is returned for error reporting.
func (pr *PathResolver) FindFile(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	var candidates []string
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, path))
	}
	candidates = append(candidates,
		filepath.Join(pr.executableDir, path),
		filepath.Join(pr.configDir, path),
	)
	for _, c := range candidates {
		if FileExists(c) {
			log.Debugf("Resolved %s to %s", path, c)
			return c
		}
	}
	return candidates[0]
}

// GetConfigPath returns the full path for a config file. It falls back to
// other writable locations when the config directory cannot be used.
func (pr *PathResolver) GetConfigPath(filename string) string {
	candidates := []string{
		pr.configDir,
		filepath.Join(pr.homeDir, "."+AppName),
		filepath.Join(os.TempDir(), AppName),
		pr.executableDir,
	}
	for i, dir := range candidates {
		if status := CheckDirStatus(dir); status.Exists && status.Writable {
			path := filepath.Join(dir, filename)
			if i > 0 {
				log.Warnf("Using fallback config location: %s", path)
			}
			return path
		}
	}
	tempPath := filepath.Join(os.TempDir(), filename)
	log.Warnf("Using temporary config file: %s", tempPath)
	return tempPath
}
