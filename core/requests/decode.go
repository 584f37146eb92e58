// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package requests

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
)

// acceptEncoding is advertised on every request. Setting it ourselves turns
// off net/http's transparent gzip handling, so decodeBody must cover each entry.
const acceptEncoding = "gzip, deflate, br, zstd"

var errUnsupportedEncoding = errors.New("unsupported Content-Encoding")

// decodeBody wraps body according to a Content-Encoding header value.
func decodeBody(contentEncoding string, body io.Reader) (io.ReadCloser, error) {
	switch strings.ToLower(strings.TrimSpace(contentEncoding)) {
	case "", "identity":
		return io.NopCloser(body), nil

	case "gzip", "x-gzip":
		zr, err := gzip.NewReader(body)
		if err != nil {
			return nil, err
		}

		return zr, nil

	case "deflate":
		return newDeflateReader(body)

	case "br":
		return io.NopCloser(brotli.NewReader(body)), nil

	case "zstd":
		dec, err := zstd.NewReader(body, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, err
		}

		return dec.IOReadCloser(), nil

	default:
		return nil, fmt.Errorf("%w: %q", errUnsupportedEncoding, contentEncoding)
	}
}

// newDeflateReader accepts both zlib-wrapped (RFC 1950, what the header
// name means) and raw (RFC 1951, what some servers send) deflate streams.
func newDeflateReader(body io.Reader) (io.ReadCloser, error) {
	br := bufio.NewReader(body)

	header, err := br.Peek(2)
	if err == nil && isZlibHeader(header[0], header[1]) {
		return zlib.NewReader(br)
	}

	return flate.NewReader(br), nil
}

func isZlibHeader(cmf, flg byte) bool {
	return cmf&0x0f == 8 && (uint16(cmf)<<8|uint16(flg))%31 == 0
}
