// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Defaults used when neither the config file nor the environment say
// otherwise.
const (
	DefaultAPIURL         = "https://api.clubpulse.example"
	DefaultAPITimeout     = 30 * time.Second
	DefaultPollInterval   = 30 * time.Second
	DefaultSessionBackend = "file"
)

// Settings is the typed view of the runtime configuration. Values come from
// the YAML file first and are then overlaid with CLUBPULSE_* environment
// variables.
type Settings struct {
	APIURL     string        `env:"CLUBPULSE_API_URL"`
	APIToken   string        `env:"CLUBPULSE_API_TOKEN"`
	APITimeout time.Duration `env:"CLUBPULSE_API_TIMEOUT"`

	// CacheStale is how long a successful read is considered fresh.
	CacheStale time.Duration `env:"CLUBPULSE_CACHE_STALE"`
	// CacheClean is the age, in hours, after which on-disk state files are
	// purged. 0 disables purging.
	CacheClean int `env:"CLUBPULSE_CACHE_CLEAN"`

	PollInterval time.Duration `env:"CLUBPULSE_POLL_INTERVAL"`

	SessionBackend string `env:"CLUBPULSE_SESSION_BACKEND"`
	RedisAddr      string `env:"CLUBPULSE_REDIS_ADDR"`
	RedisPassword  string `env:"CLUBPULSE_REDIS_PASSWORD"`
	RedisDB        int    `env:"CLUBPULSE_REDIS_DB"`

	// AWS settings used when a report export goes to an s3:// URL. Empty
	// values fall back to the AWS SDK's own environment chain.
	AWSProfile string `env:"CLUBPULSE_AWS_PROFILE"`
	AWSRegion  string `env:"CLUBPULSE_AWS_REGION"`
	S3Endpoint string `env:"CLUBPULSE_S3_ENDPOINT"`
}

// LoadSettings builds Settings from the loaded Config and the environment.
func LoadSettings() (Settings, error) {
	var s Settings
	var err error

	if s.APIURL, err = GetString("api.url", DefaultAPIURL); err != nil {
		return s, err
	}
	if s.APIToken, err = GetString("api.token", ""); err != nil {
		return s, err
	}
	if s.APITimeout, err = GetDuration("api.timeout", DefaultAPITimeout); err != nil {
		return s, err
	}
	if s.CacheStale, err = GetDuration("cache.stale", 0); err != nil {
		return s, err
	}
	if s.CacheClean, err = GetInt("cache.clean", 0); err != nil {
		return s, err
	}
	if s.PollInterval, err = GetDuration("poll.interval", DefaultPollInterval); err != nil {
		return s, err
	}
	if s.SessionBackend, err = GetString("session.backend", DefaultSessionBackend); err != nil {
		return s, err
	}
	if s.RedisAddr, err = GetString("session.redis.addr", "localhost:6379"); err != nil {
		return s, err
	}
	if s.RedisPassword, err = GetString("session.redis.password", ""); err != nil {
		return s, err
	}
	if s.RedisDB, err = GetInt("session.redis.db", 0); err != nil {
		return s, err
	}

	if s.AWSProfile, err = GetString("aws.profile", ""); err != nil {
		return s, err
	}
	if s.AWSRegion, err = GetString("aws.region", ""); err != nil {
		return s, err
	}
	if s.S3Endpoint, err = GetString("aws.endpoint", ""); err != nil {
		return s, err
	}

	if err := env.Parse(&s); err != nil {
		return s, fmt.Errorf("parse env: %w", err)
	}

	return s, nil
}
