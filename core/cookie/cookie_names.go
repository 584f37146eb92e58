// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
This package defines the cookie names understood by the upstream API.
*/
package cookie

type CookieName string

// Cookie names defined as constants.
const (
	// Session and identity cookies.
	SessData        CookieName = "SESSDATA"
	BiliJct         CookieName = "bili_jct" // doubles as the CSRF token
	DedeUserID      CookieName = "DedeUserID"
	DedeUserIDCkMd5 CookieName = "DedeUserID__ckMd5"

	// Device identity cookies.
	Buvid3 CookieName = "buvid3"
	Buvid4 CookieName = "buvid4"

	// Issued by GenWebTicket, lowers the risk-control score of web requests.
	BiliTicket        CookieName = "bili_ticket"
	BiliTicketExpires CookieName = "bili_ticket_expires"
)

// CredentialCookieNames lists the cookies that make up a credential,
// in the order they are sent.
var CredentialCookieNames = []CookieName{
	SessData,
	BiliJct,
	DedeUserID,
	DedeUserIDCkMd5,
	Buvid3,
	Buvid4,
}

func (n CookieName) String() string {
	return string(n)
}
