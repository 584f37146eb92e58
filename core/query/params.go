// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package query provides an ordered list of query or form parameters.

Unlike url.Values, Params keeps insertion order and duplicate keys, which
matters for signed requests where the server recomputes a digest over the
exact parameter sequence.
*/
package query

import (
	"net/url"
	"strconv"
	"strings"
)

// Param is a single key/value pair.
type Param struct {
	Key   string
	Value string
}

// Params is an ordered parameter list. The zero value is empty and ready to use.
type Params []Param

// New returns Params built from alternating key/value strings.
// A trailing key without a value is ignored.
func New(pairs ...string) Params {
	p := make(Params, 0, len(pairs)/2)

	for i := 0; i+1 < len(pairs); i += 2 {
		p = append(p, Param{Key: pairs[i], Value: pairs[i+1]})
	}

	return p
}

// Add returns p with key=value appended, keeping any existing entries for key.
// The result never shares its backing array with p, so several lists can be
// derived from one base.
func (p Params) Add(key, value string) Params {
	out := make(Params, len(p), len(p)+1)
	copy(out, p)

	return append(out, Param{Key: key, Value: value})
}

// AddInt appends an integer value.
func (p Params) AddInt(key string, value int64) Params {
	return p.Add(key, strconv.FormatInt(value, 10))
}

// AddBool appends "1" or "0".
func (p Params) AddBool(key string, value bool) Params {
	if value {
		return p.Add(key, "1")
	}

	return p.Add(key, "0")
}

// AddOptional appends key=value only when value is non-empty.
func (p Params) AddOptional(key, value string) Params {
	if value == "" {
		return p
	}

	return p.Add(key, value)
}

// AddOptionalInt appends an integer value only when it is non-zero.
func (p Params) AddOptionalInt(key string, value int64) Params {
	if value == 0 {
		return p
	}

	return p.AddInt(key, value)
}

// Set replaces every entry for key with a single key=value at the position
// of the first existing entry, or appends it.
func (p Params) Set(key, value string) Params {
	out := make(Params, 0, len(p)+1)
	replaced := false

	for _, kv := range p {
		if kv.Key != key {
			out = append(out, kv)

			continue
		}

		if !replaced {
			out = append(out, Param{Key: key, Value: value})
			replaced = true
		}
	}

	if !replaced {
		out = append(out, Param{Key: key, Value: value})
	}

	return out
}

// Get returns the first value for key.
func (p Params) Get(key string) (string, bool) {
	for _, kv := range p {
		if kv.Key == key {
			return kv.Value, true
		}
	}

	return "", false
}

// Clone returns an independent copy.
func (p Params) Clone() Params {
	if p == nil {
		return nil
	}

	out := make(Params, len(p))
	copy(out, p)

	return out
}

// Encode returns "k=v&k=v" in list order, escaping with [Escape].
func (p Params) Encode() string {
	var b strings.Builder

	for i, kv := range p {
		if i > 0 {
			b.WriteByte('&')
		}

		b.WriteString(Escape(kv.Key))
		b.WriteByte('=')
		b.WriteString(Escape(kv.Value))
	}

	return b.String()
}

// Escape percent-encodes s the way the API's JavaScript client does
// (encodeURIComponent): space becomes %20 rather than '+'.
func Escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
