package search

import "strings"

const (
	DefaultClientID      = "sbot_matrixbot"
	DefaultUserAgent     = "Mozilla/5.0 (X11; Linux x86_64; rv:128.0) Gecko/20100101 Firefox/128.0"
	DefaultInstantURL    = "https://api.duckduckgo.com/"
	DefaultHTMLURL       = "https://html.duckduckgo.com/html/"
	DefaultImageBaseURL  = "https://duckduckgo.com"
	DefaultTimeoutSecs   = 10
	DefaultMaxPageBytes  = 2 * 1024 * 1024
	DefaultScrapeRate    = 1.0
	DefaultScrapeBurst   = 2
	DefaultMaxTopicCount = 10
)

// Config controls the instant-answer and scrape endpoints and the identifiers sent to them.
type Config struct {
	// ClientID identifies the bot to the instant-answer API (the "t" parameter).
	ClientID string `yaml:"client_id"`
	// UserAgent is sent on every request. The HTML endpoint rejects empty or generic agents.
	UserAgent    string `yaml:"user_agent"`
	ImageBaseURL string `yaml:"image_base_url"`

	Instant InstantConfig `yaml:"instant"`
	Scrape  ScrapeConfig  `yaml:"scrape"`
}

type InstantConfig struct {
	BaseURL     string `yaml:"base_url"`
	TimeoutSecs int    `yaml:"timeout_seconds"`
}

type ScrapeConfig struct {
	Enabled      *bool   `yaml:"enabled"`
	BaseURL      string  `yaml:"base_url"`
	TimeoutSecs  int     `yaml:"timeout_seconds"`
	MaxPageBytes int64   `yaml:"max_page_bytes"`
	RateLimit    float64 `yaml:"rate_limit"` // requests per second
	Burst        int     `yaml:"burst"`
}

func (c *Config) WithDefaults() *Config {
	if c == nil {
		c = &Config{}
	}
	if strings.TrimSpace(c.ClientID) == "" {
		c.ClientID = DefaultClientID
	}
	if strings.TrimSpace(c.UserAgent) == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.ImageBaseURL == "" {
		c.ImageBaseURL = DefaultImageBaseURL
	}
	c.Instant = c.Instant.withDefaults()
	c.Scrape = c.Scrape.withDefaults()
	return c
}

func (c InstantConfig) withDefaults() InstantConfig {
	if c.BaseURL == "" {
		c.BaseURL = DefaultInstantURL
	}
	if c.TimeoutSecs <= 0 {
		c.TimeoutSecs = DefaultTimeoutSecs
	}
	return c
}

func (c ScrapeConfig) withDefaults() ScrapeConfig {
	if c.BaseURL == "" {
		c.BaseURL = DefaultHTMLURL
	}
	if c.TimeoutSecs <= 0 {
		c.TimeoutSecs = DefaultTimeoutSecs
	}
	if c.MaxPageBytes <= 0 {
		c.MaxPageBytes = DefaultMaxPageBytes
	}
	if c.RateLimit <= 0 {
		c.RateLimit = DefaultScrapeRate
	}
	if c.Burst <= 0 {
		c.Burst = DefaultScrapeBurst
	}
	return c
}

func isEnabled(flag *bool, fallback bool) bool {
	if flag == nil {
		return fallback
	}
	return *flag
}
