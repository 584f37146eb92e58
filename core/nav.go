// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package core

import (
	"context"

	"codeberg.org/pixivfe/biliapi/core/apierror"
)

// NavInfo describes the session owner as shown in the site header.
type NavInfo struct {
	IsLogin        bool    `json:"isLogin"`
	EmailVerified  int     `json:"email_verified"`
	MobileVerified int     `json:"mobile_verified"`
	Face           string  `json:"face"`
	Mid            int64   `json:"mid"`
	Uname          string  `json:"uname"`
	Money          float64 `json:"money"`
	VipStatus      int     `json:"vipStatus"`
	VipType        int     `json:"vipType"`
	LevelInfo      struct {
		CurrentLevel int   `json:"current_level"`
		CurrentExp   int64 `json:"current_exp"`
	} `json:"level_info"`
	Wallet struct {
		BcoinBalance float64 `json:"bcoin_balance"`
	} `json:"wallet"`
	WbiImg struct {
		ImgURL string `json:"img_url"`
		SubURL string `json:"sub_url"`
	} `json:"wbi_img"`
}

// FingerSPI holds the device identifiers the server assigns to a new browser.
type FingerSPI struct {
	Buvid3 string `json:"b_3"`
	Buvid4 string `json:"b_4"`
}

// GetNavInfo returns the logged-in user's summary.
//
// Anonymous sessions fail with code -101 in CategoryAuth.
func (c *Client) GetNavInfo(ctx context.Context) (NavInfo, error) {
	return get[NavInfo](ctx, c, "nav", NavURL, nil)
}

// GetFingerSPI asks the server for fresh buvid3 and buvid4 values.
// The credential store is not updated.
func (c *Client) GetFingerSPI(ctx context.Context) (FingerSPI, error) {
	spi, err := get[FingerSPI](ctx, c, "finger spi", FingerSPIURL, nil)
	if err != nil {
		return FingerSPI{}, err
	}

	if spi.Buvid3 == "" {
		return FingerSPI{}, apierror.NewParse("finger spi", apierror.ErrMissingData)
	}

	return spi, nil
}
