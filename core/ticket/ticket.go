// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package ticket issues the bili_ticket web ticket.

A ticket is not an authentication credential: it lowers the risk-control
score of web requests and carries the current wbi key hints. Issuing a new
ticket is always safe, so callers that are rejected because of an expired or
skewed ticket may refresh and retry once.

ref: https://socialsisteryi.github.io/bilibili-API-collect/docs/misc/sign/bili_ticket.html
*/
package ticket

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"codeberg.org/pixivfe/biliapi/core/apierror"
	"codeberg.org/pixivfe/biliapi/core/cookie"
	"codeberg.org/pixivfe/biliapi/core/query"
	"codeberg.org/pixivfe/biliapi/core/requests"
	"codeberg.org/pixivfe/biliapi/core/wbi"
)

// GenWebTicketURL issues tickets.
const GenWebTicketURL = "https://api.bilibili.com/bapis/bilibili.api.ticket.v1.Ticket/GenWebTicket"

const (
	// KeyID identifies the static HMAC key to the server.
	KeyID = "ec02"

	// #nosec:G101 - public constant shipped in the web client.
	hmacKey = "XgwSnGZ1p"

	issueLabel = "gen web ticket"
)

// Ticket is an issued bili_ticket.
type Ticket struct {
	Value     string
	CreatedAt time.Time
	TTL       time.Duration

	// Keys are the wbi key hints returned with the ticket.
	Keys wbi.Keys
}

type issueResponse struct {
	Ticket    string `json:"ticket"`
	CreatedAt int64  `json:"created_at"`
	TTL       int64  `json:"ttl"`
	Nav       struct {
		Img string `json:"img"`
		Sub string `json:"sub"`
	} `json:"nav"`
}

// HexSign returns hex(HMAC-SHA256(key, "ts"+ts)).
func HexSign(key string, ts int64) string {
	mac := hmac.New(sha256.New, []byte(key))
	_, _ = mac.Write([]byte("ts" + strconv.FormatInt(ts, 10)))

	return hex.EncodeToString(mac.Sum(nil))
}

// Issue requests a new ticket signed at now.
// csrf may be empty for anonymous sessions.
func Issue(ctx context.Context, client *requests.Client, csrf string, now time.Time) (Ticket, error) {
	ts := now.Unix()

	params := query.New(
		"key_id", KeyID,
		"hexsign", HexSign(hmacKey, ts),
		"context[ts]", strconv.FormatInt(ts, 10),
		"csrf", csrf,
	)

	resp, err := requests.Call[issueResponse](ctx, client, issueLabel, requests.RequestOptions{
		Method: http.MethodPost,
		URL:    GenWebTicketURL,
		Query:  params,
	})
	if err != nil {
		return Ticket{}, err
	}

	if resp.Ticket == "" {
		return Ticket{}, apierror.NewParse(issueLabel, apierror.ErrMissingData)
	}

	return Ticket{
		Value:     resp.Ticket,
		CreatedAt: time.Unix(resp.CreatedAt, 0),
		TTL:       time.Duration(resp.TTL) * time.Second,
		Keys: wbi.Keys{
			ImgKey: wbi.KeyFromURL(resp.Nav.Img),
			SubKey: wbi.KeyFromURL(resp.Nav.Sub),
		},
	}, nil
}

// ExpiresAt is CreatedAt+TTL, or the token's own exp claim if that is earlier.
// The claim is read without verifying the token.
func (t Ticket) ExpiresAt() time.Time {
	expires := t.CreatedAt.Add(t.TTL)

	if exp, ok := claimedExpiry(t.Value); ok && (t.TTL <= 0 || exp.Before(expires)) {
		return exp
	}

	return expires
}

// Cookies returns bili_ticket and bili_ticket_expires.
func (t Ticket) Cookies() []*http.Cookie {
	return []*http.Cookie{
		{Name: cookie.BiliTicket.String(), Value: t.Value},
		{Name: cookie.BiliTicketExpires.String(), Value: strconv.FormatInt(t.ExpiresAt().Unix(), 10)},
	}
}

func claimedExpiry(value string) (time.Time, bool) {
	claims := jwt.MapClaims{}

	if _, _, err := jwt.NewParser().ParseUnverified(value, claims); err != nil {
		return time.Time{}, false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}

	return exp.Time, true
}
