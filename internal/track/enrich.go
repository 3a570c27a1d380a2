// internal/track/enrich.go
//
// Request enrichment for tracking events: UA fingerprinting via uasurfer
// and country lookup via a local MaxMind database.  Both degrade to empty
// values rather than failing the request.
package track

import (
	"net"
	"strings"

	"github.com/avct/uasurfer"
	"github.com/oschwald/geoip2-golang"
	"go.uber.org/zap"
)

// Fingerprint is the slice of the parsed user agent that the analytics
// tables keep.
type Fingerprint struct {
	Browser string
	OS      string
	Device  string
	IsBot   bool
}

// fingerprint parses the UA string.  An empty UA is treated as a bot; a
// human browser always announces itself.
func fingerprint(ua, acceptLang string) Fingerprint {
	if strings.TrimSpace(ua) == "" {
		return Fingerprint{IsBot: true}
	}
	u := uasurfer.Parse(ua)
	return Fingerprint{
		Browser: strings.TrimPrefix(u.Browser.Name.String(), "Browser"),
		OS:      strings.TrimPrefix(u.OS.Name.String(), "OS"),
		Device:  strings.TrimPrefix(u.DeviceType.String(), "Device"),
		IsBot:   u.IsBot(),
	}
}

// geoLookup wraps an optional geoip2 reader.  A nil receiver or nil
// reader is valid and returns "" for every lookup.
type geoLookup struct {
	rdr *geoip2.Reader
}

func newGeoLookup(path string) (*geoLookup, error) {
	if path == "" {
		return &geoLookup{}, nil
	}
	rdr, err := geoip2.Open(path)
	if err != nil {
		// Enrichment is optional; log and carry on without it.
		zap.S().Warnw("geoip database unavailable", "path", path, "error", err)
		return &geoLookup{}, nil
	}
	return &geoLookup{rdr: rdr}, nil
}

func (g *geoLookup) country(ip net.IP) string {
	if g == nil || g.rdr == nil || ip == nil {
		return ""
	}
	rec, err := g.rdr.Country(ip)
	if err != nil || rec == nil {
		return ""
	}
	return rec.Country.IsoCode
}

func (g *geoLookup) close() error {
	if g == nil || g.rdr == nil {
		return nil
	}
	return g.rdr.Close()
}

// ClientIP extracts the remote address, honouring X-Forwarded-For when a
// proxy fronts the server.
func ClientIP(remoteAddr, xff string) net.IP {
	if xff != "" {
		first := strings.TrimSpace(strings.SplitN(xff, ",", 2)[0])
		if ip := net.ParseIP(first); ip != nil {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		host = remoteAddr
	}
	return net.ParseIP(host)
}
