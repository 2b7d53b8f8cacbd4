package config

import "strings"

func (c *Config) normalize() {
	c.normalizeTeddyCloud()
	c.normalizeVolumes()
	c.normalizeApp()
	c.normalizeAdvanced()
}

func (c *Config) normalizeTeddyCloud() {
	c.TeddyCloud.URL = strings.TrimRight(strings.TrimSpace(c.TeddyCloud.URL), "/")
	if strings.TrimSpace(c.TeddyCloud.APIBase) == "" {
		c.TeddyCloud.APIBase = defaultAPIBase
	}
	if c.TeddyCloud.Timeout <= 0 {
		c.TeddyCloud.Timeout = defaultTimeoutSeconds
	}
}

func (c *Config) normalizeVolumes() {
	if strings.TrimSpace(c.Volumes.ConfigPath) == "" {
		c.Volumes.ConfigPath = defaultConfigPath
	}
	if strings.TrimSpace(c.Volumes.LibraryPath) == "" {
		c.Volumes.LibraryPath = defaultLibraryPath
	}
}

func (c *Config) normalizeApp() {
	c.App.DefaultLanguage = strings.ToLower(strings.TrimSpace(c.App.DefaultLanguage))
	if c.App.DefaultLanguage == "" {
		c.App.DefaultLanguage = defaultLanguage
	}
	if c.App.MaxImageSizeMB <= 0 {
		c.App.MaxImageSizeMB = defaultMaxImageSizeMB
	}
	if len(c.App.AllowedImageFormats) == 0 {
		c.App.AllowedImageFormats = defaultImageFormats()
	}
	c.App.SelectedBox = strings.TrimSpace(c.App.SelectedBox)
}

func (c *Config) normalizeAdvanced() {
	c.Advanced.LogLevel = strings.ToUpper(strings.TrimSpace(c.Advanced.LogLevel))
	if c.Advanced.LogLevel == "" {
		c.Advanced.LogLevel = defaultLogLevel
	}
	if c.Advanced.CacheTTLSeconds <= 0 {
		c.Advanced.CacheTTLSeconds = defaultCacheTTLSeconds
	}
}
