// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package wbi implements the mixed-key parameter signature required by
"wbi" web endpoints.

Two 32-character keys published by the nav endpoint (and rotated daily) are
permuted into a 32-character salt. The sorted query string plus the salt is
hashed with MD5 and sent as w_rid, alongside the signing time wts.

ref: https://socialsisteryi.github.io/bilibili-API-collect/docs/misc/sign/wbi.html
*/
package wbi

import (
	"cmp"
	"crypto/md5" // #nosec:G501 - mandated by the upstream protocol, not used for security.
	"encoding/hex"
	"errors"
	"fmt"
	"path"
	"slices"
	"strconv"
	"strings"
	"time"

	"codeberg.org/pixivfe/biliapi/core/apierror"
	"codeberg.org/pixivfe/biliapi/core/query"
)

// KeyLength is the length of each key and of the derived mixin key.
const KeyLength = 32

// Names of the parameters added by Sign.
const (
	ParamTimestamp = "wts"
	ParamSignature = "w_rid"
)

// mixinKeyEncTab is the published permutation applied to img_key+sub_key.
var mixinKeyEncTab = [2 * KeyLength]int{
	46, 47, 18, 2, 53, 8, 23, 32, 15, 50, 10, 31, 58, 3, 45, 35, 27, 43, 5, 49,
	33, 9, 42, 19, 29, 28, 14, 39, 12, 38, 41, 13, 37, 48, 7, 16, 24, 55, 40,
	61, 26, 17, 0, 1, 60, 51, 30, 4, 22, 25, 54, 21, 56, 59, 6, 63, 57, 62, 11,
	36, 20, 34, 44, 52,
}

// strippedChars are removed from parameter values before signing.
const strippedChars = "!'()*"

var errKeyLength = errors.New("wbi key must be 32 characters")

// Keys are the two signing keys published by the nav endpoint.
type Keys struct {
	ImgKey string `json:"img_key"`
	SubKey string `json:"sub_key"`
}

// Validate fails with a KindParse error unless both keys have KeyLength bytes.
func (k Keys) Validate() error {
	if len(k.ImgKey) != KeyLength {
		return apierror.NewParse("wbi", fmt.Errorf("%w: img_key has %d", errKeyLength, len(k.ImgKey)))
	}

	if len(k.SubKey) != KeyLength {
		return apierror.NewParse("wbi", fmt.Errorf("%w: sub_key has %d", errKeyLength, len(k.SubKey)))
	}

	return nil
}

// MixinKey derives the signing salt from an img_key and a sub_key.
func MixinKey(imgKey, subKey string) (string, error) {
	return Keys{ImgKey: imgKey, SubKey: subKey}.MixinKey()
}

// MixinKey derives the signing salt from the keys.
func (k Keys) MixinKey() (string, error) {
	if err := k.Validate(); err != nil {
		return "", err
	}

	raw := k.ImgKey + k.SubKey

	var b strings.Builder
	b.Grow(KeyLength)

	for _, idx := range mixinKeyEncTab[:KeyLength] {
		b.WriteByte(raw[idx])
	}

	return b.String(), nil
}

// KeyFromURL returns the key embedded in a wbi_img URL: the file name
// without its extension.
func KeyFromURL(rawURL string) string {
	base := path.Base(rawURL)

	return strings.TrimSuffix(base, path.Ext(base))
}

// Sign returns a signed copy of params.
//
// Parameter values lose the characters !'()*; any previous wts/w_rid are
// dropped; wts is set to now; parameters are stably sorted by key (duplicate
// keys keep their relative order) and w_rid is appended last.
// params itself is not modified.
func Sign(params query.Params, keys Keys, now time.Time) (query.Params, error) {
	mixin, err := keys.MixinKey()
	if err != nil {
		return nil, err
	}

	signed := make(query.Params, 0, len(params)+2)

	for _, kv := range params {
		if kv.Key == ParamTimestamp || kv.Key == ParamSignature {
			continue
		}

		signed = append(signed, query.Param{Key: kv.Key, Value: stripValue(kv.Value)})
	}

	signed = append(signed, query.Param{Key: ParamTimestamp, Value: strconv.FormatInt(now.Unix(), 10)})

	slices.SortStableFunc(signed, func(a, b query.Param) int {
		return cmp.Compare(a.Key, b.Key)
	})

	sum := md5.Sum([]byte(signed.Encode() + mixin)) // #nosec:G401

	return append(signed, query.Param{Key: ParamSignature, Value: hex.EncodeToString(sum[:])}), nil
}

func stripValue(v string) string {
	if !strings.ContainsAny(v, strippedChars) {
		return v
	}

	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(strippedChars, r) {
			return -1
		}

		return r
	}, v)
}
