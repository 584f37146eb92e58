// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package requests

import (
	"encoding/json"

	"github.com/tidwall/gjson"
)

// Opaque is a JSON value kept undecoded, for payloads whose shape is large,
// unstable or only partly needed. Fields are read with gjson paths.
type Opaque []byte

// UnmarshalJSON stores a copy of data.
func (o *Opaque) UnmarshalJSON(data []byte) error {
	*o = append((*o)[:0], data...)

	return nil
}

// MarshalJSON returns the raw value, or null when empty.
func (o Opaque) MarshalJSON() ([]byte, error) {
	if len(o) == 0 {
		return []byte("null"), nil
	}

	return o, nil
}

// Get queries a gjson path, e.g. "owner.name" or "pages.#.cid".
func (o Opaque) Get(path string) gjson.Result {
	return gjson.GetBytes(o, path)
}

// Result parses the whole value.
func (o Opaque) Result() gjson.Result {
	return gjson.ParseBytes(o)
}

// Decode unmarshals the value into v.
func (o Opaque) Decode(v any) error {
	return json.Unmarshal(o, v)
}

func (o Opaque) String() string {
	return string(o)
}
