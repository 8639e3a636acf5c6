package config

import "strings"

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLogging()
	c.normalizeServices()
	return nil
}

func (c *Config) normalizePaths() error {
	fields := []*string{
		&c.Paths.DataDir,
		&c.Paths.OutputDir,
		&c.Paths.LogDir,
		&c.Paths.AccountsDir,
		&c.Paths.TrendsDir,
	}
	for _, field := range fields {
		expanded, err := expandPath(strings.TrimSpace(*field))
		if err != nil {
			return err
		}
		*field = expanded
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func (c *Config) normalizeServices() {
	c.TextGen.APIKey = strings.TrimSpace(c.TextGen.APIKey)
	c.TextGen.BaseURL = strings.TrimSpace(c.TextGen.BaseURL)
	c.TextGen.Model = strings.TrimSpace(c.TextGen.Model)
	c.ImageGen.SecretID = strings.TrimSpace(c.ImageGen.SecretID)
	c.ImageGen.SecretKey = strings.TrimSpace(c.ImageGen.SecretKey)
	c.ImageGen.BaseURL = strings.TrimSpace(c.ImageGen.BaseURL)
	c.Publisher.AppID = strings.TrimSpace(c.Publisher.AppID)
	c.Publisher.Secret = strings.TrimSpace(c.Publisher.Secret)
	c.Publisher.BaseURL = strings.TrimSpace(c.Publisher.BaseURL)
	c.Notify.WebhookURL = strings.TrimSpace(c.Notify.WebhookURL)
	c.Notify.Target = strings.TrimSpace(c.Notify.Target)
}
