// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package apierror defines the single error shape surfaced by every API call,
and the static table that classifies numeric business codes returned by the
upstream API.

Consumers branch on [Error.Kind] first and, for [KindAPI], on [Error.Category]
or [Error.Code]:

	var apiErr *apierror.Error
	if errors.As(err, &apiErr) && apiErr.Category.NeedsReauth() {
		// ask the user for a fresh cookie
	}
*/
package apierror
