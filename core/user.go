// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package core

import (
	"context"
	"fmt"
	"unicode/utf8"

	"codeberg.org/pixivfe/biliapi/core/apierror"
	"codeberg.org/pixivfe/biliapi/core/query"
)

// relationSource is the re_src value the web client sends from a user's space.
const relationSource = "11"

// GetUserCard returns the hover card of user mid.
func (c *Client) GetUserCard(ctx context.Context, mid int64) (UserCard, error) {
	if err := requirePositive("mid", mid); err != nil {
		return UserCard{}, err
	}

	params := query.New().
		AddInt("mid", mid).
		AddBool("photo", true)

	return get[UserCard](ctx, c, "user card", UserCardURL, params)
}

// GetUserSpaceInfo returns the space header of user mid. The request is wbi-signed.
func (c *Client) GetUserSpaceInfo(ctx context.Context, mid int64) (UserSpaceInfo, error) {
	if err := requirePositive("mid", mid); err != nil {
		return UserSpaceInfo{}, err
	}

	return getSigned[UserSpaceInfo](ctx, c, "user space info", UserSpaceInfoURL, query.New().AddInt("mid", mid))
}

// ModifyRelation follows, unfollows, blocks or unblocks user mid, or removes
// them from the session owner's fans.
func (c *Client) ModifyRelation(ctx context.Context, mid int64, act RelationAction) error {
	if err := requirePositive("fid", mid); err != nil {
		return err
	}

	if !act.valid() {
		return apierror.NewInvalidParameter("act", fmt.Sprintf("unknown relation action %d", act))
	}

	form := query.New().
		AddInt("fid", mid).
		AddInt("act", int64(act)).
		Add("re_src", relationSource)

	return post(ctx, c, "modify relation", ModifyRelationURL, form)
}

// UpdateSignature replaces the session owner's profile signature.
// Signatures longer than MaxSignatureLength characters are rejected locally.
func (c *Client) UpdateSignature(ctx context.Context, sign string) error {
	if n := utf8.RuneCountInString(sign); n > MaxSignatureLength {
		return apierror.NewInvalidParameter("user_sign",
			fmt.Sprintf("%d characters exceeds the limit of %d", n, MaxSignatureLength))
	}

	return post(ctx, c, "update signature", UpdateSignatureURL, query.New("user_sign", sign))
}
