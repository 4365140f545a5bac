// Package config loads meetsched configuration from the environment. A .env
// file in the working directory is honored for local development; real
// environment variables take precedence.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// IMAPConfig holds the connection settings for the email collaborator.
type IMAPConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	UseSSL      bool
	UseStartTLS bool
	VerifySSL   bool
	DraftFolder string
	From        string
}

// Addr returns the host:port dial address.
func (c IMAPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Validate checks that the settings required to connect are present.
func (c IMAPConfig) Validate() error {
	if c.Host == "" || c.User == "" || c.Password == "" {
		return fmt.Errorf("IMAP configuration incomplete: IMAP_HOST, IMAP_USER and IMAP_PASSWORD are required")
	}
	return nil
}

// CalendarConfig holds the scheduling settings.
type CalendarConfig struct {
	// Path is the calendar YAML file location.
	Path string

	// MinNotice is the minimum lead time before a slot may be offered.
	MinNotice time.Duration

	// MaxResults caps the slots returned per free-slots query.
	MaxResults int

	// HorizonDays bounds the default search window.
	HorizonDays int
}

// Config is the full application configuration.
type Config struct {
	IMAP     IMAPConfig
	Calendar CalendarConfig
}

// Load reads configuration from the environment, after loading a .env file
// if one exists. Missing optional values fall back to defaults; IMAP
// credentials are validated lazily, when a mail connection is first needed.
func Load() (*Config, error) {
	// Ignore a missing .env; production deployments configure the
	// environment directly.
	_ = godotenv.Load()

	cfg := &Config{
		IMAP: IMAPConfig{
			Host:        os.Getenv("IMAP_HOST"),
			Port:        993,
			User:        os.Getenv("IMAP_USER"),
			Password:    os.Getenv("IMAP_PASSWORD"),
			UseSSL:      envBool("IMAP_USE_SSL", true),
			UseStartTLS: envBool("IMAP_USE_STARTTLS", false),
			VerifySSL:   envBool("IMAP_VERIFY_SSL", true),
			DraftFolder: envOrDefault("IMAP_DRAFT_FOLDER", "INBOX.Drafts"),
			From:        os.Getenv("IMAP_FROM"),
		},
		Calendar: CalendarConfig{
			Path:        envOrDefault("MEETSCHED_CALENDAR_FILE", "calendar.yaml"),
			MinNotice:   2 * time.Hour,
			MaxResults:  50,
			HorizonDays: 30,
		},
	}

	if portStr := os.Getenv("IMAP_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil || port <= 0 || port > 65535 {
			return nil, fmt.Errorf("invalid IMAP_PORT %q", portStr)
		}
		cfg.IMAP.Port = port
	}
	if cfg.IMAP.From == "" {
		cfg.IMAP.From = cfg.IMAP.User
	}

	if noticeStr := os.Getenv("MEETSCHED_MIN_NOTICE"); noticeStr != "" {
		notice, err := time.ParseDuration(noticeStr)
		if err != nil || notice < 0 {
			return nil, fmt.Errorf("invalid MEETSCHED_MIN_NOTICE %q (want a duration like 2h)", noticeStr)
		}
		cfg.Calendar.MinNotice = notice
	}
	if maxStr := os.Getenv("MEETSCHED_MAX_RESULTS"); maxStr != "" {
		max, err := strconv.Atoi(maxStr)
		if err != nil || max <= 0 {
			return nil, fmt.Errorf("invalid MEETSCHED_MAX_RESULTS %q", maxStr)
		}
		cfg.Calendar.MaxResults = max
	}
	if horizonStr := os.Getenv("MEETSCHED_HORIZON_DAYS"); horizonStr != "" {
		horizon, err := strconv.Atoi(horizonStr)
		if err != nil || horizon <= 0 {
			return nil, fmt.Errorf("invalid MEETSCHED_HORIZON_DAYS %q", horizonStr)
		}
		cfg.Calendar.HorizonDays = horizon
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}
