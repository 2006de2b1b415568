package helpers

import "github.com/doeshing/gpa/internal/domain"

const redacted = "********"

// RedactConfig hides the inline credential before a config is printed.
func RedactConfig(cfg domain.Config) domain.Config {
	if cfg.Gemini.APIKey != "" {
		cfg.Gemini.APIKey = redacted
	}
	return cfg
}

