// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package core

import (
	"codeberg.org/pixivfe/biliapi/core/ticket"
	"codeberg.org/pixivfe/biliapi/core/wbi"
)

// GET endpoints. Paths containing /wbi/ require signed parameters.
const (
	NavURL           = wbi.NavURL
	FingerSPIURL     = "https://api.bilibili.com/x/frontend/finger/spi"
	UserCardURL      = "https://api.bilibili.com/x/web-interface/card"
	UserSpaceInfoURL = "https://api.bilibili.com/x/space/wbi/acc/info"
	SearchByTypeURL  = "https://api.bilibili.com/x/web-interface/wbi/search/type"
	VideoViewURL     = "https://api.bilibili.com/x/web-interface/view"
)

// POST endpoints
const (
	LikeVideoURL       = "https://api.bilibili.com/x/web-interface/archive/like"
	ModifyRelationURL  = "https://api.bilibili.com/x/relation/modify"
	UpdateSignatureURL = "https://api.bilibili.com/x/member/web/sign/update"
	GenWebTicketURL    = ticket.GenWebTicketURL
)
