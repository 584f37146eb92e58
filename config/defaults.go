// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"time"

	"codeberg.org/pixivfe/biliapi/core/requests"
	"codeberg.org/pixivfe/biliapi/core/ticket"
)

// SetDefaults populates the configuration with default values.
func (cfg *ClientConfig) SetDefaults() {
	cfg.Request.UserAgent = requests.DefaultUserAgent
	cfg.Request.AcceptLanguage = requests.DefaultAcceptLanguage
	cfg.Request.Referer = requests.DefaultReferer
	cfg.Request.Origin = requests.DefaultOrigin
	cfg.Request.Timeout = requests.DefaultTimeout
	cfg.Request.RateLimit = 0
	cfg.Request.RateBurst = 1

	cfg.Signing.WBIKeyCacheTTL = time.Hour
	cfg.Signing.Ticket = true
	cfg.Signing.TicketRefreshMargin = ticket.DefaultRefreshMargin

	cfg.Log.Level = "info"
	cfg.Log.Outputs = []string{"/dev/stderr"}
	cfg.Log.Format = "console"

	cfg.Development.SaveResponses = false
	cfg.Development.ResponseSaveLocation = "/tmp/biliapi/responses"
}
