// Package dotdir locates the per-user state directory of the CENACE client.
//
// The directory keeps config.toml next to session.json, which remembers who
// is signed in and which conversation was open, so a later "cenace chat"
// picks up the same conversation.
package dotdir

import (
	"fmt"
	"os"
	"path/filepath"
)

// dirName is used both in the working directory and in $HOME.
const dirName = ".cenace"

type Manager struct{}

func NewManager() *Manager {
	return &Manager{}
}

// Target resolves the state directory, creating it when missing, and
// returns its absolute path.
//
// An explicit overrideDir (the --config-dir flag) always wins. Without one, a
// .cenace directory in the working directory is used when present, which lets
// a project carry its own endpoint and retrieval defaults. Everything else
// lands in $HOME/.cenace.
func (m *Manager) Target(overrideDir string) (string, error) {
	dir := overrideDir
	if dir == "" {
		var err error
		if dir, err = m.defaultDir(); err != nil {
			return "", err
		}
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("preparing config directory %q: %w", dir, err)
	}
	return filepath.Abs(dir)
}

func (m *Manager) defaultDir() (string, error) {
	cwd, err := os.Getwd()
	if err == nil {
		local := filepath.Join(cwd, dirName)
		if info, statErr := os.Stat(local); statErr == nil && info.IsDir() {
			return local, nil
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("no config directory: cannot resolve $HOME: %w", err)
	}
	return filepath.Join(home, dirName), nil
}
