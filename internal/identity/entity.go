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

// Package identity provides the stable four-part entity identity and the
// canonical devac:// URI scheme used to address symbols across repositories.
package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path"
	"strings"
)

// Separator joins the four components of an EntityID string form.
const Separator = ":"

// Kind enumerates the declared-symbol kinds a Node may carry.
type Kind string

const (
	KindModule     Kind = "module"
	KindFile       Kind = "file"
	KindNamespace  Kind = "namespace"
	KindClass      Kind = "class"
	KindInterface  Kind = "interface"
	KindStruct     Kind = "struct"
	KindEnum       Kind = "enum"
	KindFunction   Kind = "function"
	KindMethod     Kind = "method"
	KindField      Kind = "field"
	KindVariable   Kind = "variable"
	KindTypeAlias  Kind = "type_alias"
	KindConstant   Kind = "constant"
)

// Unresolved is the sentinel target_entity_id used by C4 structural parsers
// for edges whose destination has not yet been resolved by C5.
const Unresolved = "unresolved"

// EntityID is the four-part stable identity (repo, package, kind, hash).
// Node identity never includes source position: the hash is computed over
// canonicalPath alone, so re-parsing the same declaration at a different
// line yields the same id.
type EntityID struct {
	Repo    string
	Package string
	Kind    Kind
	Hash    string
}

// New computes the stable id for (repo, package, kind, canonicalPath).
// canonicalPath is the dotted/slash-joined qualified name relative to the
// package root, e.g. "handlers/user.go#UserHandler.Serve".
func New(repo, pkg string, kind Kind, canonicalPath string) EntityID {
	return EntityID{
		Repo:    repo,
		Package: pkg,
		Kind:    kind,
		Hash:    hashCanonicalPath(canonicalPath),
	}
}

func hashCanonicalPath(canonicalPath string) string {
	sum := sha256.Sum256([]byte(canonicalPath))
	return hex.EncodeToString(sum[:])
}

// String renders the entity id in its single-separator string form.
func (e EntityID) String() string {
	return strings.Join([]string{e.Repo, e.Package, string(e.Kind), e.Hash}, Separator)
}

// IsZero reports whether e is the unset EntityID.
func (e EntityID) IsZero() bool {
	return e == EntityID{}
}

// ParseEntityID parses the string form produced by String. Exactly four
// parts are required; anything else is an error.
func ParseEntityID(s string) (EntityID, error) {
	parts := strings.Split(s, Separator)
	if len(parts) != 4 {
		return EntityID{}, fmt.Errorf("identity: malformed entity id %q: expected 4 parts, got %d", s, len(parts))
	}
	return EntityID{
		Repo:    parts[0],
		Package: parts[1],
		Kind:    Kind(parts[2]),
		Hash:    parts[3],
	}, nil
}

// NormalizePath mirrors the teacher's ids.go normalizePath: strips a leading
// "./", cleans the path, forces forward slashes, and strips any leading "/".
func NormalizePath(p string) string {
	p = strings.TrimPrefix(p, "./")
	p = path.Clean(filepathToSlash(p))
	p = strings.TrimPrefix(p, "/")
	return p
}

func filepathToSlash(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}
