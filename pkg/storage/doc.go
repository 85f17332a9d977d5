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

// Package storage previously held EmbeddedBackend, a CozoDB-backed query
// and mutation surface (Query/Execute/EnsureSchema/CreateHNSWIndex over a
// single embedded Datalog store).
//
// That surface has no slot in this module: the columnar seed store (C2)
// writes per-package-per-branch parquet files with atomic generation
// swap, and the federated query engine (C8) materializes those files into
// an in-process modernc.org/sqlite connection per query rather than
// keeping one long-lived embedded database. Both are a poor fit for a
// single CozoDB instance addressed by project id.
//
// Two shapes from this package carried forward rather than being
// reinvented:
//   - EnsureSchema's idempotent-via-ignoring-"already exists" pattern,
//     now internal/hub.Hub.initSchema's schema_version row check.
//   - QueryResult{Headers, Rows}, now internal/query.Result (renamed
//     Headers to Columns, with RowCount/ElapsedMs/Readiness added).
//
// The package is kept as a documentation-only stub; nothing in this
// module imports it.
package storage
