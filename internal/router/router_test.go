// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeParser struct {
	lang string
	exts []string
}

func (f fakeParser) Language() string   { return f.lang }
func (f fakeParser) Extensions() []string { return f.exts }

func TestRegisterAndGetForExt(t *testing.T) {
	r := New()
	calls := 0
	r.Register("go", []string{".go"}, func() (Parser, error) {
		calls++
		return fakeParser{lang: "go", exts: []string{".go"}}, nil
	})

	p, ok, err := r.GetForExt("GO")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "go", p.Language())
	assert.Equal(t, 1, calls, "factory must not run at registration time")

	// Second lookup reuses the cached instance.
	_, _, _ = r.GetForExt(".go")
	assert.Equal(t, 1, calls)
}

func TestGetForExtUnknown(t *testing.T) {
	r := New()
	_, ok, err := r.GetForExt(".rs")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRegisterIsPureNoIO(t *testing.T) {
	r := New()
	invoked := false
	r.Register("py", []string{".py"}, func() (Parser, error) {
		invoked = true
		return fakeParser{lang: "py", exts: []string{".py"}}, nil
	})
	assert.False(t, invoked, "registration alone must not invoke the factory")
}

func TestRegisterParserNonLazy(t *testing.T) {
	r := New()
	r.RegisterParser(fakeParser{lang: "ts", exts: []string{".ts", ".tsx"}})

	p, ok, err := r.GetForExt(".tsx")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "ts", p.Language())
}

func TestLanguagesReverseIndex(t *testing.T) {
	r := New()
	r.RegisterParser(fakeParser{lang: "go", exts: []string{".go"}})
	r.RegisterParser(fakeParser{lang: "py", exts: []string{".py"}})
	assert.ElementsMatch(t, []string{"go", "py"}, r.Languages())
}
