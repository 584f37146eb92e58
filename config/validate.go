// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"errors"
	"fmt"
	"net/url"
	"slices"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"

	"codeberg.org/pixivfe/biliapi/core/wbi"
)

// validation errors.
var (
	errInvalidAcceptLanguage = errors.New("invalid Request.AcceptLanguage")
	errInvalidURL            = errors.New("URL must be absolute with an http or https scheme")
	errInvalidTimeout        = errors.New("Request.Timeout must be positive")
	errInvalidRateLimit      = errors.New("Request.RateLimit and Request.RateBurst cannot be negative")
	errInvalidCacheTTL       = errors.New("Signing.WBIKeyCacheTTL cannot be negative")
	errInvalidRefreshMargin  = errors.New("Signing.TicketRefreshMargin cannot be negative")
	errInvalidLogLevel       = errors.New("invalid Log.Level")
	errInvalidLogFormat      = errors.New("invalid Log.Format")
	errEmptyResponseLocation = errors.New("Development.ResponseSaveLocation cannot be empty when saving responses")
)

var (
	validLogLevels  = []string{"debug", "info", "warn", "error"}
	validLogFormats = []string{"console", "json"}
)

// Validate reports the first invalid setting without modifying cfg.
func (cfg *ClientConfig) Validate() error {
	c := *cfg

	return c.validateAndSet()
}

// validateAndSet validates the client configuration and normalizes some fields.
func (cfg *ClientConfig) validateAndSet() error {
	if cfg.Request.UserAgent == "" {
		cfg.Request.UserAgent = RandomUserAgent
	}

	tags, _, err := language.ParseAcceptLanguage(cfg.Request.AcceptLanguage)
	if err != nil || len(tags) == 0 {
		return fmt.Errorf("%w %q", errInvalidAcceptLanguage, cfg.Request.AcceptLanguage)
	}

	if err := validateURL(cfg.Request.Referer, "Request.Referer"); err != nil {
		return err
	}

	if err := validateURL(cfg.Request.Origin, "Request.Origin"); err != nil {
		return err
	}

	if cfg.Request.Timeout <= 0 {
		return errInvalidTimeout
	}

	if cfg.Request.RateLimit < 0 || cfg.Request.RateBurst < 0 {
		return errInvalidRateLimit
	}

	if cfg.Request.RateLimit > 0 && cfg.Request.RateBurst == 0 {
		cfg.Request.RateBurst = 1
	}

	switch {
	case cfg.Signing.WBIKeyCacheTTL < 0:
		return errInvalidCacheTTL
	case cfg.Signing.WBIKeyCacheTTL > wbi.MaxCacheTTL:
		log.Warn().
			Dur("ttl", cfg.Signing.WBIKeyCacheTTL).
			Dur("max", wbi.MaxCacheTTL).
			Msg("wbi key cache TTL exceeds the key rotation window, capping")

		cfg.Signing.WBIKeyCacheTTL = wbi.MaxCacheTTL
	}

	if cfg.Signing.TicketRefreshMargin < 0 {
		return errInvalidRefreshMargin
	}

	if !slices.Contains(validLogLevels, cfg.Log.Level) {
		return fmt.Errorf("%w %q", errInvalidLogLevel, cfg.Log.Level)
	}

	if !slices.Contains(validLogFormats, cfg.Log.Format) {
		return fmt.Errorf("%w %q", errInvalidLogFormat, cfg.Log.Format)
	}

	if cfg.Development.SaveResponses && cfg.Development.ResponseSaveLocation == "" {
		return errEmptyResponseLocation
	}

	if cred := cfg.Credential(); cred.BiliJct != "" && !cred.HasSession() {
		log.Warn().Msg("bili_jct is set without SESSDATA; write calls will be rejected by the server")
	}

	return nil
}

func validateURL(raw, name string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", name, err)
	}

	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid %s %q: %w", name, raw, errInvalidURL)
	}

	return nil
}
