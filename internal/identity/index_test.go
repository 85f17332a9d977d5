// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexPutAndLookup(t *testing.T) {
	idx := NewIndex()
	id := New("repo", "pkg", KindFunction, "a.go#f")
	uri := URI{Repo: "repo", Package: "pkg", File: "a.go", SymbolPath: "f"}

	idx.Put(id, uri, "a.go", "f")

	gotID, ok := idx.LookupURI(uri)
	require.True(t, ok)
	assert.Equal(t, id, gotID)

	gotURI, ok := idx.LookupID(id)
	require.True(t, ok)
	assert.Equal(t, uri, gotURI)

	files := idx.EntitiesInFile("a.go")
	require.Len(t, files, 1)
	assert.Equal(t, id, files[0])
}

func TestIndexMatchNameWildcard(t *testing.T) {
	idx := NewIndex()
	idx.Put(New("r", "p", KindFunction, "a.go#handleClick"), URI{Repo: "r", File: "a.go"}, "a.go", "handleClick")
	idx.Put(New("r", "p", KindFunction, "b.go#handleSubmit"), URI{Repo: "r", File: "b.go"}, "b.go", "handleSubmit")
	idx.Put(New("r", "p", KindFunction, "c.go#other"), URI{Repo: "r", File: "c.go"}, "c.go", "other")

	matches := idx.MatchName("handle*")
	assert.Len(t, matches, 2)

	exact := idx.MatchName("other")
	assert.Len(t, exact, 1)

	none := idx.MatchName("missing*")
	assert.Empty(t, none)
}

func TestMatchWildcardMiddle(t *testing.T) {
	assert.True(t, matchWildcard("GetUserByID", "Get*ByID"))
	assert.False(t, matchWildcard("GetUserByName", "Get*ByID"))
}
