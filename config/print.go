// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/rs/zerolog/log"
)

const redactedValue = "[redacted]"

// Redacted returns a copy of cfg with credential values masked.
func (cfg *ClientConfig) Redacted() ClientConfig {
	printableConfig := *cfg

	for _, field := range []*string{
		&printableConfig.Basic.Cookie,
		&printableConfig.Basic.SESSDATA,
		&printableConfig.Basic.BiliJct,
		&printableConfig.Basic.DedeUserIDCkMd5,
	} {
		if *field != "" {
			*field = redactedValue
		}
	}

	return printableConfig
}

// YAML renders cfg, with credentials redacted, the way it would be written to a file.
func (cfg *ClientConfig) YAML() ([]byte, error) {
	return yaml.MarshalWithOptions(cfg.Redacted(), GetDurationEncoderOption(), yaml.Indent(2))
}

func (cfg *ClientConfig) print() {
	log.Info().
		Str("version", BuildVersion).
		Str("revision", cfg.Build.Revision()).
		Bool("logged_in", cfg.Credential().HasSession()).
		Msg("Starting biliapi")

	if !log.Debug().Enabled() {
		return
	}

	configYAML, err := cfg.YAML()
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal config to YAML for printing")

		return
	}

	log.Debug().
		Msg("Client configuration:")
	fmt.Fprintln(os.Stderr, string(configYAML))
}
