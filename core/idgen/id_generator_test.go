// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package idgen

import (
	"strings"
	"testing"
	"time"

	"codeberg.org/pixivfe/biliapi/core/audit"
)

func TestGenerate(t *testing.T) {
	t.Parallel()

	now := time.Now()

	if strings.ReplaceAll(now.Format("15:04:05"), ":", "") != maketime(now) {
		t.Error("time part incorrect")
	}

	id := makeAt(now)
	if len(id) != 10 || !strings.HasPrefix(id, maketime(now)) {
		t.Errorf("unexpected id %q", id)
	}
}

func TestForRequest(t *testing.T) {
	t.Parallel()

	if id := ForRequest(t.Context()); len(id) != 10 {
		t.Errorf("expected id without parent, got %q", id)
	}

	ctx := audit.WithRequestID(t.Context(), "warmup")
	if id := ForRequest(ctx); !strings.HasPrefix(id, "warmup-") {
		t.Errorf("expected id prefixed with parent, got %q", id)
	}
}
