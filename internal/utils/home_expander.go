package utils

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	homeShortcutConstant              = "~"
	homeShortcutForwardSlashConstant  = "~/"
	homeShortcutPlatformSlashConstant = homeShortcutConstant + string(os.PathSeparator)
)

// HomeDirectoryProvider resolves the current user's home directory.
type HomeDirectoryProvider func() (string, error)

// HomeExpander rewrites a leading "~" in configured paths to the user's home directory.
type HomeExpander struct {
	homeDirectoryProvider HomeDirectoryProvider
	resolveOnce           sync.Once
	homeDirectory         string
}

// NewHomeExpander constructs a HomeExpander; a nil provider falls back to os.UserHomeDir.
func NewHomeExpander(provider HomeDirectoryProvider) *HomeExpander {
	if provider == nil {
		provider = os.UserHomeDir
	}
	return &HomeExpander{homeDirectoryProvider: provider}
}

// Expand returns candidatePath with a leading "~" or "~/" replaced. Other paths pass through unchanged,
// as does every path when the home directory cannot be determined.
func (expander *HomeExpander) Expand(candidatePath string) string {
	if !strings.HasPrefix(candidatePath, homeShortcutConstant) {
		return candidatePath
	}

	expander.resolveOnce.Do(func() {
		resolvedDirectory, resolveError := expander.homeDirectoryProvider()
		if resolveError == nil {
			expander.homeDirectory = resolvedDirectory
		}
	})
	if len(expander.homeDirectory) == 0 {
		return candidatePath
	}

	switch {
	case candidatePath == homeShortcutConstant:
		return expander.homeDirectory
	case strings.HasPrefix(candidatePath, homeShortcutForwardSlashConstant):
		return filepath.Join(expander.homeDirectory, strings.TrimPrefix(candidatePath, homeShortcutForwardSlashConstant))
	case strings.HasPrefix(candidatePath, homeShortcutPlatformSlashConstant):
		return filepath.Join(expander.homeDirectory, strings.TrimPrefix(candidatePath, homeShortcutPlatformSlashConstant))
	default:
		return candidatePath
	}
}
