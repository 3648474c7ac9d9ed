package config

import (
	"sync"
)

var (
	loadedPrompts     LoadedPrompts
	loadedPromptsOnce sync.Once
)

// LoadedPrompts holds the content of rewrite prompts loaded from files.
// Empty fields mean no file was configured; callers fall back to inline
// config values and then to the built-in defaults.
type LoadedPrompts struct {
	System string
	User   string
}

// GetLoadedRewritePrompts returns a copy of the rewrite prompts loaded from
// external files
func GetLoadedRewritePrompts() LoadedPrompts {
	return loadedPrompts
}
