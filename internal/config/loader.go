// internal/config/loader.go
//
// Configuration loader.
//
/*
Context
--------
`Load()` builds one immutable `Config` struct from three layers (highest
precedence last):

  1. Optional `conf/.env` dotenv file.
  2. `conf/global.yaml`.
  3. Environment variables prefixed `GG_`, where `__` maps to “.”
     (e.g., `GG_HTTP__LISTEN_ADDR → http.listen_addr`).

After merging, the tree is unmarshalled into strongly-typed structs,
`vault:` references are resolved, defaults are applied, the result is
validated, enriched with the runtime root path, and cached in an
`atomic.Pointer` for lock-free reads.  `Reload()` simply calls `Load()`
again and swaps the pointer.

Instrumentation
---------------
  • DEBUG spans — root discovery, YAML read, env overlay.
  • ERROR spans — YAML parse, env overlay, unmarshal, validation failures.
  • INFO  span  — final “config loaded” with key highlights.
  • Logs use the global *sugared* logger (`zap.S()`) so early boot issues
    surface even before the file logger is installed (bootstrap console).

Notes
-----
  • `rootDir()` climbs the cwd tree until it finds `conf/global.yaml`; this
    lets `go run ./cmd/web` work from any sub-directory.
  • Vault resolution is best effort per key: a missing VAULT_ADDR with no
    `vault:` references configured costs nothing.
*/
package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"

	"github.com/guncelgiris/platform/internal/vault"
)

var current atomic.Pointer[Config]

// Defaults applied when YAML and env leave a knob unset.
const (
	defaultTokenTTL      = 24 * time.Hour
	defaultVerifyTimeout = 3 * time.Second
	defaultRateRequests  = 60
	defaultRateWindow    = time.Minute
	defaultSportsTTL     = 2 * time.Minute
	defaultAutoInterval  = 6 * time.Hour
)

/*──────────────────────────── root discovery ───────────────────────────────*/

// rootDir resolves GG_ROOT or climbs directories until conf/global.yaml is
// found.  Falls back to executable heuristic for production layout.
func rootDir() string {
	if r := os.Getenv("GG_ROOT"); r != "" {
		return r
	}

	wd, _ := os.Getwd()
	dir := wd
	for {
		if _, err := os.Stat(filepath.Join(dir, "conf", "global.yaml")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir { // reached filesystem root
			break
		}
		dir = parent
	}

	exe, _ := os.Executable()
	if filepath.Base(filepath.Dir(exe)) == "bin" {
		return filepath.Dir(filepath.Dir(exe))
	}
	return wd
}

/*─────────────────────────────── loader ───────────────────────────────────*/

// Load reads .env, YAML, env overrides, resolves secrets, validates, and
// caches Config.
func Load() (*Config, error) {
	root := rootDir()
	zap.S().Debugw("config root resolved", "root", root)

	// .env (optional, no error if missing)
	_ = godotenv.Load(filepath.Join(root, "conf", ".env"))

	k := koanf.New(".")

	yamlPath := filepath.Join(root, "conf", "global.yaml")
	if err := k.Load(file.Provider(yamlPath), yaml.Parser()); err != nil {
		zap.S().Errorw("config yaml load failed", "file", yamlPath, "err", err)
		return nil, err
	}
	zap.S().Debugw("config yaml loaded", "file", yamlPath)

	// Env overrides: GG_HTTP__LISTEN_ADDR → http.listen_addr
	if err := k.Load(env.Provider("GG_", ".", func(s string) string {
		return strings.ToLower(strings.ReplaceAll(s, "__", "."))
	}), nil); err != nil {
		zap.S().Errorw("config env overlay failed", "err", err)
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		zap.S().Errorw("config unmarshal failed", "err", err)
		return nil, err
	}

	if err := resolveSecrets(&cfg); err != nil {
		zap.S().Errorw("config secret resolution failed", "err", err)
		return nil, err
	}

	if err := composeDSN(&cfg); err != nil {
		zap.S().Errorw("config dsn composition failed", "err", err)
		return nil, err
	}

	applyDefaults(&cfg)

	cfg.Paths.Root = root
	if err := validateStruct(&cfg); err != nil {
		zap.S().Errorw("config validation failed", "err", err)
		return nil, err
	}

	// Admin hostnames compare lowercased everywhere; normalise once here.
	cfg.Admin.Hostname = strings.ToLower(cfg.Admin.Hostname)
	cfg.Admin.PreviewSuffix = strings.ToLower(cfg.Admin.PreviewSuffix)

	current.Store(&cfg)
	zap.S().Infow("config loaded",
		"listen_addr", cfg.HTTP.ListenAddr,
		"force_https", cfg.HTTP.ForceHTTPS,
		"admin_host", cfg.Admin.Hostname,
		"root", cfg.Paths.Root,
	)
	return &cfg, nil
}

/*──────────────────────────── secrets ─────────────────────────────────────*/

const vaultPrefix = "vault:"

// resolveSecrets replaces `vault:mount/path#key` values with the secret
// fetched from Vault.  The client is constructed lazily so deployments
// without any vault references never touch the network.
func resolveSecrets(cfg *Config) error {
	refs := []*string{
		&cfg.Database.GlobalPassword,
		&cfg.Admin.JWTSecret,
		&cfg.AI.APIKey,
		&cfg.Sports.APIKey,
	}

	var cli *vault.Client
	for _, ref := range refs {
		if !strings.HasPrefix(*ref, vaultPrefix) {
			continue
		}
		if cli == nil {
			var err error
			cli, err = vault.New(context.Background(), zap.S().Infof)
			if err != nil {
				return err
			}
		}
		secretPath, key := splitRef(strings.TrimPrefix(*ref, vaultPrefix))
		val, err := cli.GetKV(context.Background(), secretPath, key, time.Hour)
		if err != nil {
			return err
		}
		*ref = val
	}
	return nil
}

// composeDSN injects the resolved database password into the DSN template.
// An empty GlobalPassword leaves the DSN untouched, so inline-credential
// DSNs keep working.
func composeDSN(cfg *Config) error {
	if cfg.Database.GlobalPassword == "" {
		return nil
	}
	dc, err := mysql.ParseDSN(cfg.Database.GlobalDSN)
	if err != nil {
		return err
	}
	dc.Passwd = cfg.Database.GlobalPassword
	cfg.Database.GlobalDSN = dc.FormatDSN()
	return nil
}

// splitRef parses "mount/path#key" into its two halves.
func splitRef(ref string) (secretPath, key string) {
	if i := strings.LastIndexByte(ref, '#'); i != -1 {
		return ref[:i], ref[i+1:]
	}
	return ref, "value"
}

/*──────────────────────────── defaults ────────────────────────────────────*/

func applyDefaults(cfg *Config) {
	if cfg.Admin.TokenTTL <= 0 {
		cfg.Admin.TokenTTL = defaultTokenTTL
	}
	if cfg.Admin.VerifyTimeout <= 0 {
		cfg.Admin.VerifyTimeout = defaultVerifyTimeout
	}
	if cfg.RateLimit.Requests <= 0 {
		cfg.RateLimit.Requests = defaultRateRequests
	}
	if cfg.RateLimit.Window <= 0 {
		cfg.RateLimit.Window = defaultRateWindow
	}
	if cfg.Sports.CacheTTL <= 0 {
		cfg.Sports.CacheTTL = defaultSportsTTL
	}
	if cfg.AI.AutoInterval <= 0 {
		cfg.AI.AutoInterval = defaultAutoInterval
	}
}

/*──────────────────────────── helpers ─────────────────────────────────────*/

func Get() *Config  { return current.Load() }
func Reload() error { _, err := Load(); return err }
