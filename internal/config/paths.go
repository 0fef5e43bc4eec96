// Package config provides configuration management for inkwell.
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// Paths holds all the path configurations for inkwell.
type Paths struct {
	// ConfigDir is the directory for configuration files (~/.config/inkwell)
	ConfigDir string

	// DataDir is the directory for data files (~/.local/share/inkwell)
	DataDir string

	// RuntimeDir is the directory for runtime files like sockets and lock files
	RuntimeDir string
}

// DefaultPaths returns the default paths based on XDG Base Directory spec.
// On Windows, it uses %APPDATA% instead.
func DefaultPaths() *Paths {
	home := homeDir()

	if runtime.GOOS == "windows" {
		appData := os.Getenv("APPDATA")
		if appData == "" {
			appData = filepath.Join(home, "AppData", "Roaming")
		}
		localAppData := os.Getenv("LOCALAPPDATA")
		if localAppData == "" {
			localAppData = filepath.Join(home, "AppData", "Local")
		}

		return &Paths{
			ConfigDir:  filepath.Join(appData, "inkwell"),
			DataDir:    filepath.Join(localAppData, "inkwell"),
			RuntimeDir: filepath.Join(localAppData, "inkwell", "run"),
		}
	}

	// Unix-like systems follow XDG Base Directory spec
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		configHome = filepath.Join(home, ".config")
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		dataHome = filepath.Join(home, ".local", "share")
	}

	runtimeDir := os.Getenv("XDG_RUNTIME_DIR")
	if runtimeDir == "" {
		// Fallback to ~/.inkwell/run for runtime files
		runtimeDir = filepath.Join(home, ".inkwell", "run")
	} else {
		runtimeDir = filepath.Join(runtimeDir, "inkwell")
	}

	return &Paths{
		ConfigDir:  filepath.Join(configHome, "inkwell"),
		DataDir:    filepath.Join(dataHome, "inkwell"),
		RuntimeDir: runtimeDir,
	}
}

// ConfigFile returns the path to the main configuration file.
func (p *Paths) ConfigFile() string {
	return filepath.Join(p.ConfigDir, "config.yaml")
}

// DatabaseFile returns the path to the SQLite draft database.
func (p *Paths) DatabaseFile() string {
	return filepath.Join(p.DataDir, "drafts.db")
}

// SocketFile returns the path to the Unix domain notification socket.
func (p *Paths) SocketFile() string {
	return filepath.Join(p.RuntimeDir, "inkwell.sock")
}

// LockFile returns the path to the editor lock file.
func (p *Paths) LockFile() string {
	return filepath.Join(p.RuntimeDir, "inkwell.lock")
}

// LogDir returns the path to the log directory.
func (p *Paths) LogDir() string {
	return filepath.Join(p.DataDir, "logs")
}

// LogFile returns the path to the editor log file.
func (p *Paths) LogFile() string {
	return filepath.Join(p.LogDir(), "inkwell.log")
}

// EnsureDirectories creates all necessary directories.
func (p *Paths) EnsureDirectories() error {
	dirs := []string{
		p.ConfigDir,
		p.DataDir,
		p.RuntimeDir,
		p.LogDir(),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	return nil
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback
		if runtime.GOOS == "windows" {
			return os.Getenv("USERPROFILE")
		}
		return os.Getenv("HOME")
	}
	return home
}
