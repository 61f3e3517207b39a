// Package pathglue implements Path/PathPattern construction and joining:
// whether a string is a glob, and how `lib://` remote shares route to a
// session-scoped registry, rather than the local filesystem.
//
// Grounded on vippsas/sqlcode's mapfs-backed virtual filesystem: a single
// ShareResolver interface plays the role mapfs.FS played for embedded
// assets, but resolves by share name instead of a fixed embed.FS.
package pathglue

import (
	"strings"

	"github.com/datacode-lang/datacode/value"
)

const libPrefix = "lib://"

// isGlob reports whether s contains a glob metacharacter (`*`, `?`, `[`).
func isGlob(s string) bool {
	return strings.ContainsAny(s, "*?[")
}

// New builds a Path or PathPattern from s: glob metacharacters anywhere
// in s make it a PathPattern.
func New(s string) value.Value {
	if isGlob(s) {
		return value.PathPattern{Raw: s}
	}
	return value.Path{Raw: s}
}

// IsRemote reports whether p addresses a `lib://<share>/...` remote share.
func IsRemote(raw string) (share, rest string, ok bool) {
	if !strings.HasPrefix(raw, libPrefix) {
		return "", "", false
	}
	trimmed := strings.TrimPrefix(raw, libPrefix)
	idx := strings.IndexByte(trimmed, '/')
	if idx < 0 {
		return trimmed, "", true
	}
	return trimmed[:idx], trimmed[idx+1:], true
}

// Join implements `Path / String`: a single `/` separator, regardless of
// host OS, so str(p / s) is stable across platforms — DataCode paths are
// a language-level concept, not necessarily local filesystem paths (a
// `lib://` share may resolve remotely).
func Join(base, elem string) string {
	base = strings.TrimRight(base, "/")
	elem = strings.TrimLeft(elem, "/")
	if base == "" {
		return elem
	}
	return base + "/" + elem
}

// ShareResolver resolves a `lib://<share>/...` path to a local or
// network-backed root. The session server's smb_connect registers shares
// at runtime; the core interpreter only depends on this interface, never
// on a concrete transport.
type ShareResolver interface {
	ResolveShare(share string) (root string, ok bool)
}
