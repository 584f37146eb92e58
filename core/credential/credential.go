// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package credential holds the account session used by authenticated calls.

A Store belongs to exactly one client. It is written rarely, by explicit
Set/Clear calls from the caller, and read by every request; reads take an
immutable snapshot so no request ever observes fields from two sessions.
*/
package credential

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"codeberg.org/pixivfe/biliapi/core/cookie"
)

// Credential is the cookie set identifying one logged-in session.
//
// Every field is optional. BiliJct is required only by mutating calls.
type Credential struct {
	SESSDATA        string `json:"sessdata"           yaml:"sessdata"`
	BiliJct         string `json:"bili_jct"           yaml:"bili_jct"`
	DedeUserID      string `json:"dedeuserid"         yaml:"dedeuserid"`
	DedeUserIDCkMd5 string `json:"dedeuserid_ckmd5"   yaml:"dedeuserid_ckmd5"`
	Buvid3          string `json:"buvid3"             yaml:"buvid3"`
	Buvid4          string `json:"buvid4"             yaml:"buvid4"`
}

// HasSession reports whether the credential carries a session id.
func (c Credential) HasSession() bool {
	return c.SESSDATA != ""
}

// IsZero reports whether no field is set.
func (c Credential) IsZero() bool {
	return c == Credential{}
}

// Cookies returns one cookie per non-empty field.
func (c Credential) Cookies() []*http.Cookie {
	cookies := make([]*http.Cookie, 0, len(cookie.CredentialCookieNames))

	for _, name := range cookie.CredentialCookieNames {
		if value := c.get(name); value != "" {
			cookies = append(cookies, &http.Cookie{Name: name.String(), Value: value})
		}
	}

	return cookies
}

// MarshalZerologObject logs which fields are present without their values.
func (c Credential) MarshalZerologObject(e *zerolog.Event) {
	for _, name := range cookie.CredentialCookieNames {
		e.Bool(name.String(), c.get(name) != "")
	}
}

func (c Credential) get(name cookie.CookieName) string {
	switch name {
	case cookie.SessData:
		return c.SESSDATA
	case cookie.BiliJct:
		return c.BiliJct
	case cookie.DedeUserID:
		return c.DedeUserID
	case cookie.DedeUserIDCkMd5:
		return c.DedeUserIDCkMd5
	case cookie.Buvid3:
		return c.Buvid3
	case cookie.Buvid4:
		return c.Buvid4
	default:
		return ""
	}
}

// set assigns a recognised cookie and reports whether name was recognised.
func (c *Credential) set(name, value string) bool {
	switch cookie.CookieName(name) {
	case cookie.SessData:
		c.SESSDATA = value
	case cookie.BiliJct:
		c.BiliJct = value
	case cookie.DedeUserID:
		c.DedeUserID = value
	case cookie.DedeUserIDCkMd5:
		c.DedeUserIDCkMd5 = value
	case cookie.Buvid3:
		c.Buvid3 = value
	case cookie.Buvid4:
		c.Buvid4 = value
	default:
		return false
	}

	return true
}

// ParseCookieString extracts a Credential from a "k=v; k=v" string such as
// a browser's document.cookie or a Cookie request header.
//
// Unrecognised keys and malformed segments are ignored; parsing never fails.
// Values are kept verbatim apart from surrounding double quotes.
func ParseCookieString(raw string) Credential {
	var c Credential

	for segment := range strings.SplitSeq(raw, ";") {
		name, value, ok := strings.Cut(strings.TrimSpace(segment), "=")
		if !ok {
			continue
		}

		name = strings.TrimSpace(name)
		value = strings.TrimSpace(value)

		if len(value) >= 2 && value[0] == '"' && value[len(value)-1] == '"' {
			value = value[1 : len(value)-1]
		}

		c.set(name, value)
	}

	return c
}
