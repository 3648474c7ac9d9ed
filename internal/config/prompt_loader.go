package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// loadPromptsFromFiles loads custom rewrite prompts from external files if
// file paths are specified. Operation-level file paths win over global ones;
// GetRewriteConfig has already merged the paths by the time this runs.
func (c *Config) loadPromptsFromFiles() error {
	// Initialize loaded prompts exactly once
	loadedPromptsOnce.Do(func() {
		loadedPrompts = LoadedPrompts{}
	})

	merged := c.GetRewriteConfig()

	if merged.CustomPrompts.SystemFile != "" {
		content, err := c.loadPromptFromFile(merged.CustomPrompts.SystemFile, "system")
		if err != nil {
			return fmt.Errorf("failed to load rewrite system prompt: %w", err)
		}
		loadedPrompts.System = content
	}

	if merged.CustomPrompts.UserFile != "" {
		content, err := c.loadPromptFromFile(merged.CustomPrompts.UserFile, "user")
		if err != nil {
			return fmt.Errorf("failed to load rewrite user prompt: %w", err)
		}
		loadedPrompts.User = content
	}

	c.logPromptLoadingSummary()
	return nil
}

// loadPromptFromFile loads a prompt from a file with proper error handling and logging
func (c *Config) loadPromptFromFile(filePath, promptType string) (string, error) {
	// Resolve relative paths
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path for %s prompt file '%s': %w", promptType, filePath, err)
	}

	// Check if file exists
	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		return "", fmt.Errorf("%s prompt file not found: %s", promptType, absPath)
	}

	// Read file content
	content, err := os.ReadFile(absPath)
	if err != nil {
		return "", fmt.Errorf("failed to read %s prompt file '%s': %w", promptType, absPath, err)
	}

	// Validate content is not empty
	trimmedContent := strings.TrimSpace(string(content))
	if trimmedContent == "" {
		return "", fmt.Errorf("%s prompt file '%s' is empty", promptType, absPath)
	}

	log.Printf("[CONFIG] Successfully loaded %s prompt from file: %s (%d characters)",
		promptType, absPath, len(trimmedContent))

	return trimmedContent, nil
}

// validatePromptFiles validates that prompt files exist and are readable before loading
func (c *Config) validatePromptFiles() error {
	var validationErrors []string

	validateFile := func(filePath, promptType string) {
		if filePath == "" {
			return // No file specified, skip validation
		}

		absPath, err := filepath.Abs(filePath)
		if err != nil {
			validationErrors = append(validationErrors, fmt.Sprintf("invalid path for %s prompt: %s", promptType, filePath))
			return
		}

		if _, err := os.Stat(absPath); os.IsNotExist(err) {
			validationErrors = append(validationErrors, fmt.Sprintf("%s prompt file not found: %s", promptType, absPath))
		}
	}

	validateFile(c.AI.CustomPrompts.SystemFile, "system")
	validateFile(c.AI.CustomPrompts.UserFile, "user")
	validateFile(c.AI.Rewrite.CustomPrompts.SystemFile, "rewrite system")
	validateFile(c.AI.Rewrite.CustomPrompts.UserFile, "rewrite user")

	if len(validationErrors) > 0 {
		return fmt.Errorf("prompt file validation failed:\n%s", strings.Join(validationErrors, "\n"))
	}

	return nil
}

// logPromptLoadingSummary logs a summary of loaded prompts
func (c *Config) logPromptLoadingSummary() {
	promptCount := 0
	if loadedPrompts.System != "" {
		log.Println("[CONFIG] Rewrite system prompt: loaded from file")
		promptCount++
	}
	if loadedPrompts.User != "" {
		log.Println("[CONFIG] Rewrite user prompt: loaded from file")
		promptCount++
	}

	if promptCount == 0 {
		log.Println("[CONFIG] No custom prompts loaded - using built-in defaults")
	} else {
		log.Printf("[CONFIG] Total custom prompts loaded: %d", promptCount)
	}
}
