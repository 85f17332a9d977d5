// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDeterministic(t *testing.T) {
	id1 := New("repoA", "pkg/sub", KindFunction, "handlers/user.go#Serve")
	id2 := New("repoA", "pkg/sub", KindFunction, "handlers/user.go#Serve")
	assert.Equal(t, id1, id2)
	assert.Equal(t, id1.String(), id2.String())
}

func TestNewIndependentOfPosition(t *testing.T) {
	// Identity never includes source position: two calls with identical
	// (repo, package, kind, canonicalPath) must match regardless of any
	// surrounding line/column bookkeeping the caller tracks separately.
	id1 := New("repoA", "pkg", KindFunction, "a.go#f")
	id2 := New("repoA", "pkg", KindFunction, "a.go#f")
	assert.Equal(t, id1.Hash, id2.Hash)
}

func TestNewDifferentPaths(t *testing.T) {
	id1 := New("repoA", "pkg", KindFunction, "a.go#f")
	id2 := New("repoA", "pkg", KindFunction, "a.go#g")
	assert.NotEqual(t, id1.Hash, id2.Hash)
}

func TestEntityIDStringRoundTrip(t *testing.T) {
	id := New("repoA", "pkg/sub", KindStruct, "types.go#Widget")
	parsed, err := ParseEntityID(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)
}

func TestParseEntityIDMalformed(t *testing.T) {
	_, err := ParseEntityID("repo:pkg:kind")
	assert.Error(t, err)

	_, err = ParseEntityID("repo:pkg:kind:hash:extra")
	assert.Error(t, err)
}

func TestNormalizePath(t *testing.T) {
	cases := map[string]string{
		"./a/b/c.go":  "a/b/c.go",
		"/a/b/c.go":   "a/b/c.go",
		"a/b/c.go":    "a/b/c.go",
		"a\\b\\c.go":  "a/b/c.go",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizePath(in), "input %q", in)
	}
}
