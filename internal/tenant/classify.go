// internal/tenant/classify.go
//
// Hostname classification.
//
// Context
// -------
// Every request is served either by the public marketing surface of one
// tenant site or by the dedicated admin console host.  Which of the two is
// decided here, from exactly two inputs: the request hostname and the
// admin block of the static configuration.  The function is pure—no I/O,
// no package-level state—so it is called fresh on every request and unit
// tested without a server.
//
// Rules (first match wins for IsAdminDomain):
//
//  1. Admin hostname unconfigured        → admin domain (fail-open for
//     single-host dev and preview deployments).
//  2. localhost or a loopback literal    → admin domain.
//  3. Hostname ends with preview suffix  → admin domain.
//  4. Otherwise                          → admin domain iff hostname equals
//     the configured admin host.
//
// Hostnames are lowercased and port-stripped before comparison.  DNS is
// case-insensitive, so exact-case matching would be a foot-gun.
package tenant

import (
	"strings"

	"github.com/guncelgiris/platform/internal/config"
)

// Context carries the per-request tenancy flags derived from the hostname.
//
// IsAdminHost and public tenant hosts are mutually exclusive: a host is
// either *the* admin host or a public host, never both.
type Context struct {
	Hostname         string // normalised: lowercase, no port
	IsAdminHost      bool   // hostname equals the configured admin host
	IsLocalOrPreview bool   // loopback or preview-environment host
	IsAdminDomain    bool   // admin routes may be registered at all
}

// Classify derives the tenancy flags for one hostname.  Deterministic and
// side-effect free; safe to call on every request.
func Classify(hostname string, adm config.Admin) Context {
	host := Normalize(hostname)
	adminHost := strings.ToLower(adm.Hostname)

	c := Context{Hostname: host}
	c.IsAdminHost = adminHost != "" && host == adminHost
	c.IsLocalOrPreview = isLoopback(host) ||
		(adm.PreviewSuffix != "" && strings.HasSuffix(host, strings.ToLower(adm.PreviewSuffix)))

	switch {
	case adminHost == "":
		c.IsAdminDomain = true
	case c.IsLocalOrPreview:
		c.IsAdminDomain = true
	default:
		c.IsAdminDomain = host == adminHost
	}
	return c
}

// Normalize lowercases a Host header value and strips any :port suffix.
func Normalize(h string) string {
	if i := strings.IndexByte(h, ':'); i != -1 {
		// Keep IPv6 literals like [::1]:8080 intact up to the bracket.
		if j := strings.IndexByte(h, ']'); j != -1 {
			h = h[:j+1]
		} else {
			h = h[:i]
		}
	}
	return strings.ToLower(strings.TrimSpace(h))
}

func isLoopback(host string) bool {
	switch host {
	case "localhost", "127.0.0.1", "[::1]", "::1":
		return true
	}
	return false
}
