// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package contract provides size-limit validation for the federated query
// surface (C8).
//
// # Query Size Limits
//
// The query engine enforces a soft limit on incoming querySQL to reject
// pathological inputs before a connection and table load are spent on them:
//
//	result := contract.ValidateQuerySQL(querySQL)
//	if !result.OK {
//	    log.Printf("rejected: %s", result.Message)
//	}
//
// # Configuration via Environment
//
// The soft limit can be adjusted via the DEVAC_QUERY_SOFT_LIMIT_BYTES
// environment variable:
//
//	export DEVAC_QUERY_SOFT_LIMIT_BYTES=2097152  # 2 MiB
//
// If unset or invalid, DefaultQuerySoftLimitBytes (1 MiB) is used.
//
// # Constants
//
//   - DefaultQuerySoftLimitBytes: baseline soft limit (1 MiB)
//   - RequestIDMaxBytes: maximum length for a query's request id (128 bytes)
package contract
