package app

import "errors"

// Config holds all the configuration a run needs.
type Config struct {
	// GrammarPath is the directory tree of grammar fragment files.
	GrammarPath string
	// OutputPath is where the compiled definition lands. Empty means
	// "<syntax name>.sublime-syntax" in the working directory, derived
	// after the grammar is loaded.
	OutputPath string

	LogFormat string
	LogLevel  string
}

// NewConfig validates and returns the configuration.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.GrammarPath == "" {
		return nil, errors.New("GrammarPath is a required configuration field and cannot be empty")
	}
	return &cfg, nil
}
