// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"

	"codeberg.org/pixivfe/biliapi/core/credential"
)

// Possible values for Request.UserAgent besides a literal User-Agent string.
const (
	// RandomUserAgent picks a browser User-Agent per request.
	RandomUserAgent = "random"
)

// ClientConfig holds the client configuration.
type ClientConfig struct {
	Build buildInfo `yaml:"-"`

	Basic struct {
		// Cookie is a raw Cookie header copied from a logged-in browser.
		// Individual fields below take precedence over values found here.
		Cookie          string `env:"BILIAPI_COOKIE" yaml:"cookie"`
		SESSDATA        string `env:"BILIAPI_SESSDATA" yaml:"sessdata"`
		BiliJct         string `env:"BILIAPI_BILI_JCT" yaml:"biliJct"`
		DedeUserID      string `env:"BILIAPI_DEDEUSERID" yaml:"dedeUserID"`
		DedeUserIDCkMd5 string `env:"BILIAPI_DEDEUSERID_CKMD5" yaml:"dedeUserIDCkMd5"`
		Buvid3          string `env:"BILIAPI_BUVID3" yaml:"buvid3"`
		Buvid4          string `env:"BILIAPI_BUVID4" yaml:"buvid4"`
	} `yaml:"basic"`

	Request struct {
		UserAgent      string        `env:"BILIAPI_USER_AGENT,overwrite" yaml:"userAgent"`
		AcceptLanguage string        `env:"BILIAPI_ACCEPT_LANGUAGE,overwrite" yaml:"acceptLanguage"`
		Referer        string        `env:"BILIAPI_REFERER,overwrite" yaml:"referer"`
		Origin         string        `env:"BILIAPI_ORIGIN,overwrite" yaml:"origin"`
		Timeout        time.Duration `env:"BILIAPI_TIMEOUT,overwrite" yaml:"timeout"`
		// RateLimit is the sustained number of requests per second; 0 disables limiting.
		RateLimit int `env:"BILIAPI_RATE_LIMIT,overwrite" yaml:"rateLimit"`
		RateBurst int `env:"BILIAPI_RATE_BURST,overwrite" yaml:"rateBurst"`
	} `yaml:"request"`

	Signing struct {
		// WBIKeyCacheTTL caches wbi keys between calls; 0 fetches them for every call.
		WBIKeyCacheTTL      time.Duration `env:"BILIAPI_WBI_KEY_CACHE_TTL,overwrite" yaml:"wbiKeyCacheTTL"`
		Ticket              bool          `env:"BILIAPI_TICKET,overwrite" yaml:"ticket"`
		TicketRefreshMargin time.Duration `env:"BILIAPI_TICKET_REFRESH_MARGIN,overwrite" yaml:"ticketRefreshMargin"`
	} `yaml:"signing"`

	Log struct {
		Level   string   `env:"BILIAPI_LOG_LEVEL,overwrite" yaml:"logLevel"`
		Outputs []string `env:"BILIAPI_LOG_OUTPUTS,overwrite" yaml:"logOutputs"`
		Format  string   `env:"BILIAPI_LOG_FORMAT,overwrite" yaml:"logFormat"`
	} `yaml:"log"`

	Development struct {
		InDevelopment        bool   `env:"BILIAPI_DEV" yaml:"inDevelopment"`
		SaveResponses        bool   `env:"BILIAPI_SAVE_RESPONSES,overwrite" yaml:"saveResponses"`
		ResponseSaveLocation string `env:"BILIAPI_RESPONSE_SAVE_LOCATION,overwrite" yaml:"responseSaveLocation"`
	} `yaml:"development"`
}

// LoadConfig loads the configuration from various sources.
//
// Precedence, lowest first: defaults, the YAML file, a .env file, then the
// process environment. An empty configFilePath falls back to
// BILIAPI_CONFIGFILE and then to ./config.yaml or ./config.yml.
func (cfg *ClientConfig) LoadConfig(configFilePath string) error {
	if configFilePath == "" {
		configFilePath = defaultConfigFilePath()
	}

	cfg.SetDefaults()

	cfg.Build.load()

	if err := cfg.readYAML(configFilePath); err != nil {
		return fmt.Errorf("error loading YAML config: %w", err)
	}

	if err := useDotEnv(); err != nil {
		return fmt.Errorf("error using .env file: %w", err)
	}

	if err := readEnv(cfg); err != nil {
		return fmt.Errorf("error loading environment variables: %w", err)
	}

	if err := cfg.validateAndSet(); err != nil {
		return fmt.Errorf("configuration invalid: %w", err)
	}

	if err := cfg.setupAudit(); err != nil {
		return err
	}

	cfg.print()

	return nil
}

// Credential merges the cookie string with the individual credential fields.
func (cfg *ClientConfig) Credential() credential.Credential {
	cred := credential.ParseCookieString(cfg.Basic.Cookie)

	override := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}

	override(&cred.SESSDATA, cfg.Basic.SESSDATA)
	override(&cred.BiliJct, cfg.Basic.BiliJct)
	override(&cred.DedeUserID, cfg.Basic.DedeUserID)
	override(&cred.DedeUserIDCkMd5, cfg.Basic.DedeUserIDCkMd5)
	override(&cred.Buvid3, cfg.Basic.Buvid3)
	override(&cred.Buvid4, cfg.Basic.Buvid4)

	return cred
}

// UserAgentFunc returns the User-Agent picker implied by Request.UserAgent,
// or nil when it is empty.
func (cfg *ClientConfig) UserAgentFunc() func() string {
	switch cfg.Request.UserAgent {
	case "":
		return nil
	case RandomUserAgent:
		return GetRandomUserAgent
	}

	ua := cfg.Request.UserAgent

	return func() string { return ua }
}

func defaultConfigFilePath() string {
	if envVar := os.Getenv("BILIAPI_CONFIGFILE"); envVar != "" {
		return envVar
	}

	configFilePath := "./config.yaml"
	if _, err := os.Stat(configFilePath); os.IsNotExist(err) {
		ymlPath := "./config.yml"
		if _, statErr := os.Stat(ymlPath); statErr == nil {
			configFilePath = ymlPath
		}
	}

	return configFilePath
}

// GetDurationEncoderOption returns a YAML encoder option that marshals
// time.Duration into a human-readable string format (e.g., "30m", "1h").
func GetDurationEncoderOption() yaml.EncodeOption {
	return yaml.CustomMarshaler[time.Duration](
		func(d time.Duration) ([]byte, error) {
			return yaml.Marshal(d.String())
		},
	)
}
