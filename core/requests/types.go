// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package requests

import (
	"net/http"

	"codeberg.org/pixivfe/biliapi/core/query"
)

// RequestOptions describe a single API request.
//
// At most one of Form and JSON may be set. Query is appended to any query
// already present in URL, in order.
type RequestOptions struct {
	Method string
	URL    string
	Query  query.Params

	// Form is sent as application/x-www-form-urlencoded.
	Form query.Params

	// JSON is marshalled with encoding/json and sent as application/json.
	JSON any

	// Headers are added after the client defaults and override them.
	Headers http.Header

	// NoCookies omits credential and ticket cookies.
	NoCookies bool
}
