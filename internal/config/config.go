package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Case is one tracked application, identified by its receipt number.
type Case struct {
	ReceiptNumber string `mapstructure:"receipt_number" yaml:"receipt_number"`
	Description   string `mapstructure:"description" yaml:"description"`
}

// HomeAssistant holds the notification endpoint settings. An empty
// URL or token disables notifications without being an error.
type HomeAssistant struct {
	URL           string `mapstructure:"url" yaml:"url"`
	Token         string `mapstructure:"token" yaml:"token"`
	NotifyService string `mapstructure:"notify_service" yaml:"notify_service"`
}

// Config is the full runtime configuration, loaded from config.yaml
// via viper. It is immutable for the lifetime of a run.
type Config struct {
	Cases              []Case        `mapstructure:"cases" yaml:"cases"`
	CheckIntervalHours int           `mapstructure:"check_interval_hours" yaml:"check_interval_hours"`
	APIBase            string        `mapstructure:"uscis_api_base" yaml:"uscis_api_base"`
	CookieFile         string        `mapstructure:"browser_cookies_file" yaml:"browser_cookies_file"`
	HomeAssistant      HomeAssistant `mapstructure:"home_assistant" yaml:"home_assistant"`
	StateFile          string        `mapstructure:"state_file" yaml:"state_file"`
	LogLevel           string        `mapstructure:"log_level" yaml:"log_level"`
}

// Load builds the typed configuration from viper's current state and
// validates it. Missing or malformed configuration is a startup
// error; there is no retry.
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the fields a cycle cannot run without.
func (c *Config) Validate() error {
	if len(c.Cases) == 0 {
		return fmt.Errorf("no cases configured (run 'casewatch init' to create a sample config)")
	}
	for i, cs := range c.Cases {
		if cs.ReceiptNumber == "" {
			return fmt.Errorf("case %d has no receipt_number", i)
		}
	}
	if c.APIBase == "" {
		return fmt.Errorf("uscis_api_base is not set")
	}
	if c.StateFile == "" {
		return fmt.Errorf("state_file is not set")
	}
	if c.CheckIntervalHours <= 0 {
		return fmt.Errorf("check_interval_hours must be positive, got %d", c.CheckIntervalHours)
	}
	return nil
}

// Interval returns the poll interval as a duration.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.CheckIntervalHours) * time.Hour
}

// Sample returns the configuration written by 'casewatch init',
// filled with placeholder values the user is expected to edit.
func Sample() *Config {
	return &Config{
		Cases: []Case{
			{
				ReceiptNumber: "IOE0929584536",
				Description:   "I-485 Application - John Doe",
			},
		},
		CheckIntervalHours: 6,
		APIBase:            "https://my.uscis.gov/account/case-service/api/cases/",
		CookieFile:         "uscis_cookies.txt",
		HomeAssistant: HomeAssistant{
			URL:           "http://homeassistant.local:8123",
			Token:         "your_long_lived_access_token_here",
			NotifyService: "notify.mobile_app_your_device",
		},
		StateFile: "uscis_state.json",
		LogLevel:  "INFO",
	}
}
