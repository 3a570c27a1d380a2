// internal/tenant/classify_test.go
//
// Unit-tests for hostname classification.
//
// Context
// -------
// Classification decides which route table a request gets and whether the
// admin gate may even consult the verifier, so the precedence rules are
// pinned down exhaustively here:
//
//   • Exact admin hostname            → admin host AND admin domain
//   • Loopback / preview suffix       → admin domain, never admin host
//   • Anything else, admin configured → plain public host
//   • Admin hostname unconfigured     → every host is an admin domain
//
// Normalisation (case, ports, IPv6 brackets) runs before every check, so
// "PANEL.Example.COM:443" and "panel.example.com" must classify the same.

package tenant

import (
	"testing"

	"github.com/guncelgiris/platform/internal/config"
)

var testAdmin = config.Admin{
	Hostname:      "panel.example.com",
	PreviewSuffix: ".preview.example.com",
}

func TestClassify_AdminHost(t *testing.T) {
	for _, host := range []string{
		"panel.example.com",
		"PANEL.EXAMPLE.COM",
		"panel.example.com:443",
		"Panel.Example.Com:8080",
	} {
		c := Classify(host, testAdmin)
		if !c.IsAdminHost {
			t.Errorf("Classify(%q): IsAdminHost = false, want true", host)
		}
		if !c.IsAdminDomain {
			t.Errorf("Classify(%q): IsAdminHost without IsAdminDomain", host)
		}
	}
}

func TestClassify_LocalAndPreview(t *testing.T) {
	for _, host := range []string{
		"localhost",
		"localhost:8080",
		"127.0.0.1",
		"127.0.0.1:3000",
		"[::1]:8080",
		"demo.preview.example.com",
		"other.PREVIEW.example.com:443",
	} {
		c := Classify(host, testAdmin)
		if c.IsAdminHost {
			t.Errorf("Classify(%q): IsAdminHost = true, want false", host)
		}
		if !c.IsLocalOrPreview {
			t.Errorf("Classify(%q): IsLocalOrPreview = false, want true", host)
		}
		if !c.IsAdminDomain {
			t.Errorf("Classify(%q): IsAdminDomain = false, want true", host)
		}
	}
}

func TestClassify_PublicTenantHost(t *testing.T) {
	for _, host := range []string{
		"denemebonusu.com",
		"www.guncelbonus.net:443",
		"preview.example.com.evil.io", // suffix must match as a suffix, not a substring trick
	} {
		c := Classify(host, testAdmin)
		if c.IsAdminHost || c.IsLocalOrPreview || c.IsAdminDomain {
			t.Errorf("Classify(%q) = %+v, want all flags false", host, c)
		}
	}
}

// An unconfigured admin hostname fails open: the split is not yet set up,
// so gating falls through to token verification everywhere.
func TestClassify_UnconfiguredAdminHostname(t *testing.T) {
	open := config.Admin{}
	for _, host := range []string{"denemebonusu.com", "localhost", "whatever.io:9000"} {
		c := Classify(host, open)
		if !c.IsAdminDomain {
			t.Errorf("Classify(%q) with no admin hostname: IsAdminDomain = false, want true", host)
		}
		if c.IsAdminHost {
			t.Errorf("Classify(%q) with no admin hostname: IsAdminHost = true, want false", host)
		}
	}
}

func TestNormalize(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Example.COM", "example.com"},
		{"example.com:8080", "example.com"},
		{"[::1]:443", "[::1]"},
		{"[2001:db8::1]", "[2001:db8::1]"},
		{"  spaced.example.com ", "spaced.example.com"},
	}
	for _, c := range cases {
		if got := Normalize(c.in); got != c.want {
			t.Errorf("Normalize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestClassify_KeepsNormalizedHostname(t *testing.T) {
	c := Classify("Panel.Example.Com:443", testAdmin)
	if c.Hostname != "panel.example.com" {
		t.Errorf("Hostname = %q, want normalised form", c.Hostname)
	}
}
