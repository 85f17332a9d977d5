// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package identity

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Scheme is the canonical URI scheme for addressing symbols.
const Scheme = "devac"

// URI is the parsed structured form of a canonical address:
//
//	devac://repo/package/file#SymbolPath?version=branch&line=N
//
// Components may be absent for less specific addresses (e.g. a
// package-level address has no File or SymbolPath).
type URI struct {
	Repo       string
	Package    string
	File       string
	SymbolPath string
	Branch     string
	Line       int // 0 means absent
}

// Format renders u as its canonical string form. Percent-encoding is
// applied to each path segment and to the symbol fragment independently.
// The package is escaped as one segment (its "/" becomes %2F), so Parse
// can tell where the package ends and the file path begins.
func Format(u URI) string {
	var sb strings.Builder
	sb.WriteString(Scheme)
	sb.WriteString("://")
	sb.WriteString(url.PathEscape(u.Repo))
	if u.Package != "" {
		sb.WriteString("/")
		sb.WriteString(url.PathEscape(u.Package))
	}
	if u.File != "" {
		sb.WriteString("/")
		sb.WriteString(escapeSlashed(u.File))
	}
	if u.SymbolPath != "" {
		sb.WriteString("#")
		sb.WriteString(escapeSlashed(u.SymbolPath))
	}
	var query []string
	if u.Branch != "" {
		query = append(query, "version="+url.QueryEscape(u.Branch))
	}
	if u.Line > 0 {
		query = append(query, "line="+strconv.Itoa(u.Line))
	}
	if len(query) > 0 {
		sb.WriteString("?")
		sb.WriteString(strings.Join(query, "&"))
	}
	return sb.String()
}

// escapeSlashed percent-escapes a path-or-fragment value while preserving
// internal "/" separators (so "handlers/user.go" round-trips as one piece).
func escapeSlashed(s string) string {
	segs := strings.Split(s, "/")
	for i, seg := range segs {
		segs[i] = url.PathEscape(seg)
	}
	return strings.Join(segs, "/")
}

func unescapeSlashed(s string) (string, error) {
	segs := strings.Split(s, "/")
	for i, seg := range segs {
		u, err := url.PathUnescape(seg)
		if err != nil {
			return "", err
		}
		segs[i] = u
	}
	return strings.Join(segs, "/"), nil
}

// Parse parses a canonical URI string into its structured record. The
// scheme is matched case-insensitively per the normalization invariant
// (§4.1): "DEVAC://x" and "devac://x" parse to the same URI.
func Parse(s string) (URI, error) {
	schemeIdx := strings.Index(s, "://")
	if schemeIdx < 0 {
		return URI{}, fmt.Errorf("identity: malformed uri %q: missing scheme", s)
	}
	scheme := strings.ToLower(s[:schemeIdx])
	if scheme != Scheme {
		return URI{}, fmt.Errorf("identity: unsupported scheme %q", scheme)
	}
	rest := s[schemeIdx+3:]

	var fragment, query string
	if qIdx := strings.Index(rest, "?"); qIdx >= 0 {
		query = rest[qIdx+1:]
		rest = rest[:qIdx]
	}
	if fIdx := strings.Index(rest, "#"); fIdx >= 0 {
		fragment = rest[fIdx+1:]
		rest = rest[:fIdx]
	}

	segs := strings.Split(rest, "/")
	var u URI
	if len(segs) > 0 {
		repo, err := url.PathUnescape(segs[0])
		if err != nil {
			return URI{}, fmt.Errorf("identity: bad repo segment: %w", err)
		}
		u.Repo = repo
	}
	if len(segs) > 1 {
		pkg, err := unescapeSlashed(segs[1])
		if err != nil {
			return URI{}, fmt.Errorf("identity: bad package segment: %w", err)
		}
		u.Package = pkg
	}
	if len(segs) > 2 {
		file, err := unescapeSlashed(strings.Join(segs[2:], "/"))
		if err != nil {
			return URI{}, fmt.Errorf("identity: bad file segment: %w", err)
		}
		u.File = file
	}

	if fragment != "" {
		sym, err := unescapeSlashed(fragment)
		if err != nil {
			return URI{}, fmt.Errorf("identity: bad symbol fragment: %w", err)
		}
		u.SymbolPath = sym
	}

	if query != "" {
		values, err := url.ParseQuery(query)
		if err != nil {
			return URI{}, fmt.Errorf("identity: bad query: %w", err)
		}
		u.Branch = values.Get("version")
		if lineStr := values.Get("line"); lineStr != "" {
			n, err := strconv.Atoi(lineStr)
			if err != nil {
				return URI{}, fmt.Errorf("identity: bad line %q: %w", lineStr, err)
			}
			u.Line = n
		}
	}

	return u, nil
}

// Equal compares two URIs component-by-component after normalization,
// independent of their original string forms' percent-encoding or scheme
// case.
func Equal(a, b URI) bool {
	return a == b
}

// ResolveRelative interprets a relative reference ("#Symbol" or
// "./file#Symbol") against an explicit context and returns the resulting
// canonical URI.
func ResolveRelative(ref string, ctx URI) (URI, error) {
	result := ctx
	result.SymbolPath = ""
	result.Line = 0

	rest := ref
	if fIdx := strings.Index(rest, "#"); fIdx >= 0 {
		filePart := rest[:fIdx]
		symbolPart := rest[fIdx+1:]
		if filePart != "" {
			result.File = normalizeRelativeFile(filePart, ctx.File)
		}
		result.SymbolPath = symbolPart
	} else if rest != "" {
		result.File = normalizeRelativeFile(rest, ctx.File)
	}

	return result, nil
}

func normalizeRelativeFile(ref, ctxFile string) string {
	ref = strings.TrimPrefix(ref, "./")
	if !strings.Contains(ref, "/") || !strings.HasPrefix(ref, "../") {
		// Replace just the base file name relative to the context's directory.
		if idx := strings.LastIndex(ctxFile, "/"); idx >= 0 && !strings.Contains(ref, "/") {
			return ctxFile[:idx+1] + ref
		}
	}
	return ref
}

// ToRelative returns a reference to canonical relative to ctx. When
// canonical shares ctx's repo/package/file it degrades to a bare
// "#Symbol"; when it shares only repo and package it is "./file#Symbol";
// otherwise it is the full canonical form.
func ToRelative(canonical, ctx URI) string {
	if canonical.Repo == ctx.Repo && canonical.Package == ctx.Package && canonical.File == ctx.File {
		if canonical.SymbolPath != "" {
			return "#" + canonical.SymbolPath
		}
		return ""
	}
	if canonical.Repo == ctx.Repo && canonical.Package == ctx.Package {
		ref := "./" + canonical.File
		if canonical.SymbolPath != "" {
			ref += "#" + canonical.SymbolPath
		}
		return ref
	}
	return Format(canonical)
}
