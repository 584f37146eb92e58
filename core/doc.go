// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package core makes requests to Bilibili web APIs and parses information into structured data.

You may use this package independently as follows:

	package main

	import (
		"context"
		"fmt"

		"codeberg.org/pixivfe/biliapi/config"
		"codeberg.org/pixivfe/biliapi/core"
	)

	func main() {
		cfg := &config.ClientConfig{}
		cfg.SetDefaults()
		cfg.Basic.Cookie = "SESSDATA=...; bili_jct=..."

		client, err := core.NewClient(cfg)
		if err != nil {
			panic(err)
		}

		card, err := client.GetUserCard(context.Background(), 2)
		if err != nil {
			panic(err)
		}
		fmt.Println(card.Card.Name)
	}

Every binding makes a single request, apart from the signing key or ticket
fetch it may need first, and returns either decoded data or an
*apierror.Error. Nothing is retried implicitly; see package retry.

This package's API is ever changing, so please pin a specific version of this package if you want to use it in your program.
*/
package core
