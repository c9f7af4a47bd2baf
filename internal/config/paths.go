// ABOUTME: Standard filesystem paths for asyncconsole configuration and data
// ABOUTME: Resolves ~/.asyncconsole/ for global and .asyncconsole/ for project-local paths

package config

import (
	"os"
	"path/filepath"
)

const (
	globalDirName  = ".asyncconsole"
	projectDirName = ".asyncconsole"
	configFileName = "config.yaml"
)

// GlobalDir returns the user-global config directory (~/.asyncconsole/).
func GlobalDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", globalDirName)
	}
	return filepath.Join(home, globalDirName)
}

// ProjectDir returns the project-local config directory (.asyncconsole/ in root).
func ProjectDir(projectRoot string) string {
	return filepath.Join(projectRoot, projectDirName)
}

// GlobalConfigFile returns the path to the global config file.
func GlobalConfigFile() string {
	return filepath.Join(GlobalDir(), configFileName)
}

// ProjectConfigFile returns the path to the project-local config file.
func ProjectConfigFile(projectRoot string) string {
	return filepath.Join(ProjectDir(projectRoot), configFileName)
}

// HistoryFile returns the default line history path.
func HistoryFile() string {
	return filepath.Join(GlobalDir(), "history")
}

// LogFile returns the default log file path.
func LogFile() string {
	return filepath.Join(GlobalDir(), "console.log")
}
