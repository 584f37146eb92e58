// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package core

import (
	"context"
	"strconv"
	"strings"

	"codeberg.org/pixivfe/biliapi/core/apierror"
	"codeberg.org/pixivfe/biliapi/core/query"
	"codeberg.org/pixivfe/biliapi/core/requests"
)

// VideoID names a video by bvid or by aid. The bvid wins when both are set.
type VideoID struct {
	Aid  int64
	Bvid string
}

// AID returns the VideoID of an av number.
func AID(aid int64) VideoID {
	return VideoID{Aid: aid}
}

// BVID returns the VideoID of a BV identifier.
func BVID(bvid string) VideoID {
	return VideoID{Bvid: bvid}
}

// ParseVideoID accepts "BV1xx411c7mD", "av170001" or a bare aid.
func ParseVideoID(s string) (VideoID, error) {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "BV") {
		return BVID(s), nil
	}

	aid, err := strconv.ParseInt(strings.TrimPrefix(strings.ToLower(s), "av"), 10, 64)
	if err != nil || aid <= 0 {
		return VideoID{}, apierror.NewInvalidParameter("bvid", "not a video id: "+s)
	}

	return AID(aid), nil
}

// String returns the id in the form shown in video URLs.
func (v VideoID) String() string {
	if v.Bvid != "" {
		return v.Bvid
	}

	return "av" + strconv.FormatInt(v.Aid, 10)
}

func (v VideoID) params() (query.Params, error) {
	switch {
	case v.Bvid != "":
		if !strings.HasPrefix(v.Bvid, "BV") {
			return nil, apierror.NewInvalidParameter("bvid", "must start with BV")
		}

		return query.New("bvid", v.Bvid), nil
	case v.Aid > 0:
		return query.New().AddInt("aid", v.Aid), nil
	default:
		return nil, apierror.NewInvalidParameter("bvid", "either bvid or a positive aid is required")
	}
}

// GetVideoView returns the full view payload of a video. The payload is large
// and unstable, so it is returned undecoded.
func (c *Client) GetVideoView(ctx context.Context, id VideoID) (requests.Opaque, error) {
	params, err := id.params()
	if err != nil {
		return nil, err
	}

	return get[requests.Opaque](ctx, c, "video view", VideoViewURL, params)
}

// LikeVideo likes the video, or withdraws the like when like is false.
func (c *Client) LikeVideo(ctx context.Context, id VideoID, like bool) error {
	form, err := id.params()
	if err != nil {
		return err
	}

	action := "1"
	if !like {
		action = "2"
	}

	return post(ctx, c, "like video", LikeVideoURL, form.Add("like", action))
}
