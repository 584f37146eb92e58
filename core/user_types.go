// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package core

import "codeberg.org/pixivfe/biliapi/core/requests"

// UserCard is the hover card of a user.
type UserCard struct {
	Card struct {
		Mid       string `json:"mid"`
		Name      string `json:"name"`
		Sex       string `json:"sex"`
		Face      string `json:"face"`
		Sign      string `json:"sign"`
		Fans      int64  `json:"fans"`
		Attention int64  `json:"attention"`
		LevelInfo struct {
			CurrentLevel int `json:"current_level"`
		} `json:"level_info"`
		Official struct {
			Role  int    `json:"role"`
			Title string `json:"title"`
		} `json:"Official"`
	} `json:"card"`
	Following    bool  `json:"following"`
	ArchiveCount int64 `json:"archive_count"`
	ArticleCount int64 `json:"article_count"`
	Follower     int64 `json:"follower"`
	LikeNum      int64 `json:"like_num"`
}

// UserSpaceInfo is the profile header of a user's space.
type UserSpaceInfo struct {
	Mid        int64  `json:"mid"`
	Name       string `json:"name"`
	Sex        string `json:"sex"`
	Face       string `json:"face"`
	Sign       string `json:"sign"`
	Level      int    `json:"level"`
	Birthday   string `json:"birthday"`
	TopPhoto   string `json:"top_photo"`
	IsFollowed bool   `json:"is_followed"`
	Official   struct {
		Role  int    `json:"role"`
		Title string `json:"title"`
		Desc  string `json:"desc"`
	} `json:"official"`
	Vip struct {
		Type   int `json:"type"`
		Status int `json:"status"`
	} `json:"vip"`

	// LiveRoom changes shape often; read it with gjson paths.
	LiveRoom requests.Opaque `json:"live_room"`
}

// RelationAction is the act parameter of ModifyRelation.
type RelationAction int

// Relation actions.
const (
	Follow    RelationAction = 1
	Unfollow  RelationAction = 2
	Block     RelationAction = 5
	Unblock   RelationAction = 6
	RemoveFan RelationAction = 7
)

// MaxSignatureLength is the longest signature, in characters, the server accepts.
const MaxSignatureLength = 70

func (a RelationAction) valid() bool {
	switch a {
	case Follow, Unfollow, Block, Unblock, RemoveFan:
		return true
	default:
		return false
	}
}
