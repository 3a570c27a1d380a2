// internal/tenant/cache_test.go
//
// Cache behaviour over sqlmock.
//
// Workflow
// --------
// Each test seeds the mock with the two loader queries (site row, config
// rows), then drives Cache.Get through the interesting paths: cold load,
// warm hit (no second query), host normalisation sharing one entry, the
// not-found fallback, and invalidation forcing a reload.

package tenant

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"github.com/guncelgiris/platform/internal/config"
)

var siteColumns = []string{
	"id", "host", "display_name", "focus", "logo_url", "favicon_url",
	"meta_title", "meta_description", "analytics_id",
	"auto_articles", "auto_news", "content_language",
	"suspended_at", "deleted_at", "created_at", "updated_at",
}

func newTestCache(t *testing.T) (*Cache, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	c := New(sqlx.NewDb(db, "mysql"), config.Admin{Hostname: "panel.example.com"},
		IdleTTL, MaxEntries)
	t.Cleanup(c.Close)
	return c, mock
}

func expectLoad(mock sqlmock.Sqlmock, host string) {
	now := time.Now()
	mock.ExpectQuery(`FROM\s+site`).
		WithArgs(host).
		WillReturnRows(sqlmock.NewRows(siteColumns).AddRow(
			"site-1", host, "Bonus Rehberi", "bonus", "", "",
			"", "", "", false, false, "tr",
			nil, nil, now, now))
	mock.ExpectQuery(`FROM\s+site_config`).
		WithArgs("site-1").
		WillReturnRows(sqlmock.NewRows([]string{"key", "value"}).
			AddRow("theme", "dark"))
}

func TestCache_ColdLoadThenWarmHit(t *testing.T) {
	c, mock := newTestCache(t)
	expectLoad(mock, "denemebonusu.com")

	ten, err := c.Get("denemebonusu.com")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ten.Site.ID != "site-1" || ten.Config["theme"] != "dark" {
		t.Errorf("loaded tenant = %+v", ten)
	}

	// Second call must be served from the map; no further expectations.
	if _, err := c.Get("denemebonusu.com"); err != nil {
		t.Fatalf("warm Get: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestCache_NormalisedHostsShareEntry(t *testing.T) {
	c, mock := newTestCache(t)
	expectLoad(mock, "denemebonusu.com")

	if _, err := c.Get("DenemeBonusu.COM:443"); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if _, err := c.Get("denemebonusu.com"); err != nil {
		t.Fatalf("Get (normalised twin): %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestCache_UnknownHost(t *testing.T) {
	c, mock := newTestCache(t)
	mock.ExpectQuery(`FROM\s+site`).
		WithArgs("nobody.example").
		WillReturnError(sql.ErrNoRows)

	_, err := c.Get("nobody.example")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestCache_InvalidateForcesReload(t *testing.T) {
	c, mock := newTestCache(t)
	expectLoad(mock, "denemebonusu.com")

	if _, err := c.Get("denemebonusu.com"); err != nil {
		t.Fatal(err)
	}

	c.Invalidate("DENEMEBONUSU.com")

	expectLoad(mock, "denemebonusu.com")
	if _, err := c.Get("denemebonusu.com"); err != nil {
		t.Fatalf("Get after invalidate: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestCache_TenantCarriesClassification(t *testing.T) {
	c, mock := newTestCache(t)
	expectLoad(mock, "denemebonusu.com")

	ten, err := c.Get("denemebonusu.com")
	if err != nil {
		t.Fatal(err)
	}
	if ten.Flags.IsAdminDomain || ten.Flags.IsAdminHost {
		t.Errorf("public tenant classified as admin: %+v", ten.Flags)
	}
	if ten.Host() != "denemebonusu.com" {
		t.Errorf("Host() = %q", ten.Host())
	}
}
