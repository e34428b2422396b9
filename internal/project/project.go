// Package project locates the project root for a working directory.
package project

import (
	"os"
	"path/filepath"
)

// ConfigDirName is the project-local directory holding codeloom artifacts.
const ConfigDirName = ".codeloom"

// Info contains project metadata.
type Info struct {
	Root string `json:"root"`
	VCS  string `json:"vcs,omitempty"`
}

// FindRoot walks up from directory looking for a project root: the first
// ancestor containing either a .codeloom directory or a .git directory.
// Returns false when no root exists; resolution then proceeds without
// project defaults.
//
// Discovery runs fresh on every call. Settings are re-resolved per
// activation and a cache here would hide moved or deleted roots.
func FindRoot(directory string) (Info, bool) {
	directory, err := filepath.Abs(directory)
	if err != nil {
		return Info{}, false
	}

	current := directory
	for {
		if isDir(filepath.Join(current, ConfigDirName)) {
			info := Info{Root: current}
			if isDir(filepath.Join(current, ".git")) {
				info.VCS = "git"
			}
			return info, true
		}
		if isDir(filepath.Join(current, ".git")) {
			return Info{Root: current, VCS: "git"}, true
		}

		parent := filepath.Dir(current)
		if parent == current {
			return Info{}, false
		}
		current = parent
	}
}

func isDir(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}
