// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package core

import (
	"context"
	"time"

	"codeberg.org/pixivfe/biliapi/core/ticket"
)

// GenWebTicket issues a new bili_ticket. With tickets enabled the result also
// replaces the ticket attached to later requests and seeds the wbi keys.
func (c *Client) GenWebTicket(ctx context.Context) (ticket.Ticket, error) {
	if c.tickets != nil {
		return c.tickets.Refresh(ctx)
	}

	// anonymous sessions sign without a token
	csrf, _ := c.credentials.CSRF()

	return ticket.Issue(ctx, c.requests, csrf, time.Now())
}
