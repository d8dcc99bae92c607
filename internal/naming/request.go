// Package naming derives candidate names for modules and chunks from their
// identity. Nothing here decides uniqueness; see package ids for that.
package naming

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	leadingRelative = regexp.MustCompile(`^(\.\.?/)+`)
	unsafeRun       = regexp.MustCompile(`(^[.-]|[^a-zA-Z0-9_-])+`)
)

// AvoidNumber prefixes s with an underscore when s reads as a number, so a
// name can never be mistaken for a numeric id downstream.
func AvoidNumber(s string) string {
	if s == "" || len(s) > 21 {
		return s
	}
	if c := s[0]; c != '-' && (c < '0' || c > '9') {
		return s
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return s
	}
	if strconv.FormatFloat(f, 'f', -1, 64) != s {
		return s
	}
	return "_" + s
}

// RequestToID turns a request into a fragment matching ^[A-Za-z0-9_-]*$.
// Leading ./ and ../ segments are dropped and every run of other
// characters (or a leading . or -) collapses into one underscore.
func RequestToID(request string) string {
	request = leadingRelative.ReplaceAllString(request, "")
	return unsafeRun.ReplaceAllString(request, "_")
}

// Contextify rewrites the absolute paths inside a request (loader chains
// separated by '!', each with an optional '?query') relative to context.
// Relative results start with "./" or "../"; the context itself becomes
// "./." and its parent "../.". Input is NFC-normalized so
// different Unicode spellings of one path name identically.
func Contextify(context, request string) string {
	request = norm.NFC.String(filepath.ToSlash(request))
	if context == "" {
		return request
	}
	context = norm.NFC.String(filepath.ToSlash(context))
	parts := strings.Split(request, "!")
	for i, part := range parts {
		parts[i] = contextifyPart(context, part)
	}
	return strings.Join(parts, "!")
}

func contextifyPart(context, part string) string {
	p, query, hasQuery := strings.Cut(part, "?")
	if strings.HasPrefix(p, "/") {
		if rel, err := filepath.Rel(filepath.FromSlash(context), filepath.FromSlash(p)); err == nil {
			rel = filepath.ToSlash(rel)
			switch {
			case rel == "." || rel == "..":
				p = rel + "/."
			case strings.HasPrefix(rel, "../"):
				p = rel
			default:
				p = "./" + rel
			}
		}
	}
	if hasQuery {
		return p + "?" + query
	}
	return p
}
