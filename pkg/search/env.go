package search

import "github.com/beeper/search-bot/pkg/shared/stringutil"

// ConfigFromEnv builds a search config using environment variables.
func ConfigFromEnv() *Config {
	return ApplyEnvDefaults(&Config{})
}

// ApplyEnvDefaults fills config fields left unset in the file from environment variables.
func ApplyEnvDefaults(cfg *Config) *Config {
	if cfg == nil {
		cfg = &Config{}
	}
	cfg.ClientID = stringutil.OrEnv(cfg.ClientID, "SEARCH_CLIENT_ID")
	cfg.UserAgent = stringutil.OrEnv(cfg.UserAgent, "SEARCH_USER_AGENT")
	cfg.Instant.BaseURL = stringutil.OrEnv(cfg.Instant.BaseURL, "SEARCH_INSTANT_URL")
	cfg.Scrape.BaseURL = stringutil.OrEnv(cfg.Scrape.BaseURL, "SEARCH_HTML_URL")
	return cfg.WithDefaults()
}
