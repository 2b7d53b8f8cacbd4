package config

import (
	"errors"
	"fmt"
	"net/url"
)

var validLogLevels = map[string]struct{}{
	"DEBUG":   {},
	"INFO":    {},
	"WARNING": {},
	"ERROR":   {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTeddyCloud(); err != nil {
		return err
	}
	if err := c.validateAdvanced(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateTeddyCloud() error {
	if c.TeddyCloud.URL == "" {
		return errors.New("teddycloud.url must be set")
	}
	parsed, err := url.Parse(c.TeddyCloud.URL)
	if err != nil {
		return fmt.Errorf("teddycloud.url is not a valid URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("teddycloud.url must use http or https, got %q", c.TeddyCloud.URL)
	}
	return nil
}

func (c *Config) validateAdvanced() error {
	if _, ok := validLogLevels[c.Advanced.LogLevel]; !ok {
		return fmt.Errorf("advanced.log_level: unsupported value %q", c.Advanced.LogLevel)
	}
	return nil
}
