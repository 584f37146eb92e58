// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package core

import (
	"context"
	"slices"
	"strings"

	"codeberg.org/pixivfe/biliapi/core/apierror"
	"codeberg.org/pixivfe/biliapi/core/query"
	"codeberg.org/pixivfe/biliapi/core/requests"
)

// SearchType selects what SearchByType looks for.
type SearchType string

// Search types.
const (
	SearchVideo    SearchType = "video"
	SearchBangumi  SearchType = "media_bangumi"
	SearchMovie    SearchType = "media_ft"
	SearchLive     SearchType = "live"
	SearchLiveRoom SearchType = "live_room"
	SearchLiveUser SearchType = "live_user"
	SearchArticle  SearchType = "article"
	SearchTopic    SearchType = "topic"
	SearchUser     SearchType = "bili_user"
	SearchPhoto    SearchType = "photo"
)

var searchTypes = []SearchType{
	SearchVideo, SearchBangumi, SearchMovie, SearchLive, SearchLiveRoom,
	SearchLiveUser, SearchArticle, SearchTopic, SearchUser, SearchPhoto,
}

const (
	maxSearchDuration  = 4
	maxSearchUserType  = 3
	maxSearchOrderSort = 1
)

// SearchOptions are the parameters of SearchByType. Zero values are omitted.
type SearchOptions struct {
	Type    SearchType
	Keyword string
	Page    int

	// Order is e.g. "totalrank", "click", "pubdate", "dm" or "stow" for
	// videos and "fans" or "level" for users.
	Order string

	// Duration filters videos: 1 under 10 minutes, 2 10-30, 3 30-60, 4 longer.
	Duration int
	// TID restricts videos to one partition.
	TID int64

	// OrderSort is 0 for descending and 1 for ascending user results.
	OrderSort int
	// UserType filters users: 1 uploaders, 2 regular users, 3 verified.
	UserType int

	// CategoryID filters articles and photos.
	CategoryID int64
}

// SearchResult is one page of results. Result items differ per type and are
// left undecoded.
type SearchResult struct {
	Seid       string          `json:"seid"`
	Page       int             `json:"page"`
	PageSize   int             `json:"pagesize"`
	NumResults int             `json:"numResults"`
	NumPages   int             `json:"numPages"`
	Result     requests.Opaque `json:"result"`
}

// Params validates o and returns its query parameters in wire order.
func (o SearchOptions) Params() (query.Params, error) {
	if !slices.Contains(searchTypes, o.Type) {
		return nil, apierror.NewInvalidParameter("search_type", "unknown search type "+string(o.Type))
	}

	keyword := strings.TrimSpace(o.Keyword)
	if keyword == "" {
		return nil, apierror.NewInvalidParameter("keyword", "cannot be empty")
	}

	switch {
	case o.Page < 0:
		return nil, apierror.NewInvalidParameter("page", "cannot be negative")
	case o.Duration < 0 || o.Duration > maxSearchDuration:
		return nil, apierror.NewInvalidParameter("duration", "must be between 0 and 4")
	case o.OrderSort < 0 || o.OrderSort > maxSearchOrderSort:
		return nil, apierror.NewInvalidParameter("order_sort", "must be 0 or 1")
	case o.UserType < 0 || o.UserType > maxSearchUserType:
		return nil, apierror.NewInvalidParameter("user_type", "must be between 0 and 3")
	}

	return query.New("search_type", string(o.Type), "keyword", keyword).
		AddOptionalInt("page", int64(o.Page)).
		AddOptional("order", o.Order).
		AddOptionalInt("duration", int64(o.Duration)).
		AddOptionalInt("tids", o.TID).
		AddOptionalInt("order_sort", int64(o.OrderSort)).
		AddOptionalInt("user_type", int64(o.UserType)).
		AddOptionalInt("category_id", o.CategoryID), nil
}

// SearchByType searches one kind of content. The request is wbi-signed.
func (c *Client) SearchByType(ctx context.Context, opts SearchOptions) (SearchResult, error) {
	params, err := opts.Params()
	if err != nil {
		return SearchResult{}, err
	}

	return getSigned[SearchResult](ctx, c, "search by type", SearchByTypeURL, params)
}
