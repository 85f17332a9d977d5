// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURIRoundTrip(t *testing.T) {
	cases := []URI{
		{Repo: "myrepo", Package: "pkg/sub", File: "handlers/user.go", SymbolPath: "UserHandler.Serve", Branch: "main", Line: 42},
		{Repo: "myrepo"},
		{Repo: "myrepo", Package: "pkg"},
		{Repo: "myrepo", Package: "pkg", File: "a.go"},
	}
	for _, u := range cases {
		formatted := Format(u)
		parsed, err := Parse(formatted)
		require.NoError(t, err, "formatted: %s", formatted)
		assert.Equal(t, u, parsed, "round trip for %s", formatted)
	}
}

func TestURISchemeCaseInsensitive(t *testing.T) {
	lower, err := Parse("devac://myrepo/pkg/a.go#f")
	require.NoError(t, err)
	upper, err := Parse("DEVAC://myrepo/pkg/a.go#f")
	require.NoError(t, err)
	assert.True(t, Equal(lower, upper))
}

func TestURIUnsupportedScheme(t *testing.T) {
	_, err := Parse("http://example.com")
	assert.Error(t, err)
}

func TestResolveRelativeAndToRelative(t *testing.T) {
	ctx := URI{Repo: "myrepo", Package: "pkg", File: "handlers/user.go", Branch: "main"}

	resolved, err := ResolveRelative("#Serve", ctx)
	require.NoError(t, err)
	assert.Equal(t, "Serve", resolved.SymbolPath)
	assert.Equal(t, ctx.File, resolved.File)

	rel := ToRelative(resolved, ctx)
	assert.Equal(t, "#Serve", rel)

	reResolved, err := ResolveRelative(rel, ctx)
	require.NoError(t, err)
	assert.Equal(t, resolved, reResolved)
}

func TestResolveRelativeOtherFile(t *testing.T) {
	ctx := URI{Repo: "myrepo", Package: "pkg", File: "handlers/user.go"}
	resolved, err := ResolveRelative("./other.go#Handle", ctx)
	require.NoError(t, err)
	assert.Equal(t, "handlers/other.go", resolved.File)
	assert.Equal(t, "Handle", resolved.SymbolPath)
}
