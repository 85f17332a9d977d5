// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import "github.com/devac-dev/codegraph/internal/output"

// jsonPrint writes data to stdout as indented JSON, matching every
// subcommand's --json convention.
func jsonPrint(data any) error {
	return output.JSON(data)
}
