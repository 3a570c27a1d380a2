// internal/config/model.go
//
// Typed configuration model for the platform.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `conf/.env`                 – dotenv values,
//   • `conf/global.yaml`                   – primary static file,
//   • `GG_`-prefixed environment overrides – highest precedence.
//
// Any value whose string begins with the prefix `vault:` is resolved
// through the Vault client *before* validation, so the model never stores
// Vault URIs—only plain strings.
//
// Validation happens immediately after unmarshal; the app fails fast if
// required fields are missing.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`—Koanf ignores `yaml` tags
//     unless configured otherwise.
//   • The `Paths` block is filled at runtime; YAML must not try to set it.
//   • Admin.Hostname may be empty.  An empty value means the deployment has
//     no dedicated admin host, and every host is then treated as an admin
//     domain (single-host dev and preview environments).

package config

import "time"

//
// HTTP section
//

// HTTP holds web-server tunables.
type HTTP struct {
	ListenAddr string `koanf:"listen_addr" validate:"required,hostname_port"`
	ForceHTTPS bool   `koanf:"force_https"`
}

//
// Database section
//

// Database holds the control-plane DSN and its secret.
//
// The *template* (`GlobalDSN`) is kept in YAML so operators can tweak
// host, port, or flags without touching Vault.  The *secret* portion
// (`GlobalPassword`) may be a `vault:` reference injected at runtime,
// keeping credentials out of flat files and git history.
type Database struct {
	GlobalDSN      string `koanf:"global_dsn"      validate:"required"`
	GlobalPassword string `koanf:"global_password"`
}

//
// Admin section
//

// Admin configures the dedicated management hostname and the session
// machinery behind it.
//
//   - Hostname        – the one host that serves the admin console.  Empty
//     means unconfigured, so every host is an admin domain.
//   - PreviewSuffix   – hostname suffix of preview deployments (for example
//     ".preview.guncelgiris.ai"); matching hosts are admin domains too.
//   - JWTSecret       – HS256 signing key for admin session tokens.
//   - TokenTTL        – lifetime of an issued session token.
//   - VerifyTimeout   – hard deadline on the per-request session
//     verification so a hung backend can never wedge the gate.
type Admin struct {
	Hostname      string        `koanf:"hostname"`
	PreviewSuffix string        `koanf:"preview_suffix"`
	JWTSecret     string        `koanf:"jwt_secret" validate:"required"`
	TokenTTL      time.Duration `koanf:"token_ttl"`
	VerifyTimeout time.Duration `koanf:"verify_timeout"`
}

//
// CORS section
//

// CORS lists the browser origins allowed to call the JSON API.
type CORS struct {
	Origins          []string `koanf:"origins"`
	AllowCredentials bool     `koanf:"allow_credentials"`
}

//
// Rate-limit section
//

// RateLimit configures the fixed-window per-IP limiter on /api routes.
type RateLimit struct {
	Requests int           `koanf:"requests"`
	Window   time.Duration `koanf:"window"`
}

//
// AI section
//

// AI points at the completion endpoint used by the auto-content engine.
// APIKey may be a `vault:` reference.  AutoInterval is how often the
// scheduler sweeps sites with auto-content flags.
type AI struct {
	BaseURL      string        `koanf:"base_url"`
	APIKey       string        `koanf:"api_key"`
	Model        string        `koanf:"model"`
	AutoInterval time.Duration `koanf:"auto_interval"`
}

//
// Sports section
//

// Sports points at the football scores API.  An empty APIKey switches the
// client to its static fallback fixtures.
type Sports struct {
	APIURL   string        `koanf:"api_url"`
	APIKey   string        `koanf:"api_key"`
	CacheTTL time.Duration `koanf:"cache_ttl"`
}

//
// GeoIP section
//

// GeoIP configures optional MaxMind enrichment of tracking events.  An
// empty DBPath disables geo lookup entirely.
type GeoIP struct {
	DBPath string `koanf:"db_path"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime—never set in YAML or env.  The loader
// discovers `Root` (repo root or GG_ROOT override) so later code can build
// absolute file paths.
type Paths struct {
	Root string // GG_ROOT or discovered parent
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads throughout the app lifetime.
type Config struct {
	HTTP      HTTP      `koanf:"http"`
	Database  Database  `koanf:"database"`
	Admin     Admin     `koanf:"admin"`
	CORS      CORS      `koanf:"cors"`
	RateLimit RateLimit `koanf:"rate_limit"`
	AI        AI        `koanf:"ai"`
	Sports    Sports    `koanf:"sports"`
	GeoIP     GeoIP     `koanf:"geoip"`
	Paths     Paths     `koanf:"-"` // not loaded from config files
}
