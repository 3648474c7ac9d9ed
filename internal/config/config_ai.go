package config

// applyOperationDefaults applies global defaults to operation-specific configuration
func (c *Config) applyOperationDefaults(opCfg *OperationAIConfig) {
	if opCfg.Provider == "" {
		opCfg.Provider = c.AI.Provider
	}
	if opCfg.Model == "" {
		opCfg.Model = c.AI.Model
	}
	if opCfg.Timeout == nil {
		opCfg.Timeout = &c.AI.Timeout
	}
	if opCfg.APIKey == "" {
		opCfg.APIKey = c.AI.APIKey
	}
	if opCfg.MaxRetries == nil {
		opCfg.MaxRetries = &c.AI.MaxRetries
	}
	if opCfg.Temperature == nil {
		opCfg.Temperature = &c.AI.Temperature
	}
	// UseSystemPrompts: apply global default only if not explicitly set
	if opCfg.UseSystemPrompts == nil {
		opCfg.UseSystemPrompts = &c.AI.UseSystemPrompts
	}
}

// GetRewriteConfig returns the AI configuration for the rewrite operation with
// fallback to the global AI config
func (c *Config) GetRewriteConfig() OperationAIConfig {
	config := c.AI.Rewrite

	// Apply common defaults
	c.applyOperationDefaults(&config)

	// Apply prompt fallbacks, inline values and file paths alike
	if config.CustomPrompts.System == "" {
		config.CustomPrompts.System = c.AI.CustomPrompts.System
	}
	if config.CustomPrompts.User == "" {
		config.CustomPrompts.User = c.AI.CustomPrompts.User
	}
	if config.CustomPrompts.SystemFile == "" {
		config.CustomPrompts.SystemFile = c.AI.CustomPrompts.SystemFile
	}
	if config.CustomPrompts.UserFile == "" {
		config.CustomPrompts.UserFile = c.AI.CustomPrompts.UserFile
	}

	return config
}
