package searchbot

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"go.mau.fi/zeroconfig"
	"gopkg.in/yaml.v3"
	"maunium.net/go/mautrix/id"

	"github.com/beeper/search-bot/pkg/search"
	"github.com/beeper/search-bot/pkg/shared/stringutil"
)

const DefaultCommandPrefix = "!"

// Config is the bot's YAML configuration file.
type Config struct {
	Homeserver    string      `yaml:"homeserver"`
	UserID        id.UserID   `yaml:"user_id"`
	AccessToken   string      `yaml:"access_token"`
	DeviceID      id.DeviceID `yaml:"device_id"`
	CommandPrefix string      `yaml:"command_prefix"`
	AutoJoin      *bool       `yaml:"auto_join"`

	Search  search.Config     `yaml:"search"`
	Logging zeroconfig.Config `yaml:"logging"`
	Tracing TracingConfig     `yaml:"tracing"`
}

// Load reads the config file at path, overlays environment variables and fills defaults.
// A missing file is not an error so that the bot can be configured from the environment alone.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		} else if err == nil {
			if err = yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}
	applyEnv(cfg)
	return cfg.WithDefaults(), nil
}

func applyEnv(cfg *Config) {
	cfg.Homeserver = stringutil.OrEnv(cfg.Homeserver, "MATRIX_HOMESERVER")
	cfg.UserID = id.UserID(stringutil.OrEnv(string(cfg.UserID), "MATRIX_USER_ID"))
	cfg.AccessToken = stringutil.OrEnv(cfg.AccessToken, "MATRIX_ACCESS_TOKEN")
	cfg.DeviceID = id.DeviceID(stringutil.OrEnv(string(cfg.DeviceID), "MATRIX_DEVICE_ID"))
	search.ApplyEnvDefaults(&cfg.Search)
}

func (c *Config) WithDefaults() *Config {
	if c == nil {
		c = &Config{}
	}
	if strings.TrimSpace(c.CommandPrefix) == "" {
		c.CommandPrefix = DefaultCommandPrefix
	}
	c.Search.WithDefaults()
	if len(c.Logging.Writers) == 0 {
		c.Logging.Writers = []zeroconfig.WriterConfig{{
			Type:   zeroconfig.WriterTypeStdout,
			Format: zeroconfig.LogFormatPrettyColored,
		}}
	}
	if c.Logging.MinLevel == nil {
		level := zerolog.InfoLevel
		c.Logging.MinLevel = &level
	}
	return c
}

// Validate checks the fields needed to connect to Matrix.
func (c *Config) Validate() error {
	switch {
	case c.Homeserver == "":
		return errors.New("homeserver is not set (config homeserver or MATRIX_HOMESERVER)")
	case c.UserID == "":
		return errors.New("user ID is not set (config user_id or MATRIX_USER_ID)")
	case c.AccessToken == "":
		return errors.New("access token is not set (config access_token or MATRIX_ACCESS_TOKEN)")
	}
	if _, _, err := c.UserID.Parse(); err != nil {
		return fmt.Errorf("invalid user ID %q: %w", c.UserID, err)
	}
	return nil
}

func (c *Config) autoJoin() bool {
	if c.AutoJoin == nil {
		return true
	}
	return *c.AutoJoin
}
