// internal/bonus/repository_test.go
//
// Ranking recompute over sqlmock.
//
// The UpdateRankings flow being pinned: rows past the impression threshold
// are rescored from tracked counters, rows below it fall back to the
// catalogue heuristic, ranks follow descending score, and only the top
// FeaturedCount rows end up featured.

package bonus

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
)

func newTestDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "mysql"), mock
}

var perfColumns = []string{
	"site_id", "bonus_site_id", "impressions", "cta_clicks",
	"affiliate_clicks", "avg_time_on_page", "avg_scroll_depth",
	"performance_score", "is_featured", "rank", "updated_at",
}

var bonusColumns = []string{
	"id", "name", "logo_url", "bonus_type", "bonus_amount", "bonus_value",
	"affiliate_url", "rating", "features", "turnover", "is_active",
	"is_global", "created_at", "updated_at",
}

func TestUpdateRankings_MixedScoringAndFeaturedFlags(t *testing.T) {
	db, mock := newTestDB(t)
	now := time.Now()

	// Row "hot" has tracked data past the threshold; row "fresh" has not
	// and must be scored from its catalogue attributes.
	mock.ExpectQuery(`FROM\s+domain_performance`).
		WithArgs("site-1").
		WillReturnRows(sqlmock.NewRows(perfColumns).
			AddRow("site-1", "hot", 100, 50, 10, 120.0, 80.0, 0.0, false, 0, now).
			AddRow("site-1", "fresh", 2, 0, 0, 0.0, 0.0, 0.0, false, 0, now))

	// Heuristic fallback needs the catalogue row for "fresh".
	mock.ExpectQuery(`FROM\s+bonus_site`).
		WithArgs("fresh").
		WillReturnRows(sqlmock.NewRows(bonusColumns).AddRow(
			"fresh", "Yeni Site", "", "deneme", "100 TL", 100,
			"https://x", 3.0, nil, 25.0, true, true, now, now))

	// hot: ctaRate 50 → capped 30, time 120/10 = 12, scroll 80/4 = 20 → 62
	// fresh: 100/25 = 4 + 0 (turnover 25) + 12 = 16
	mock.ExpectExec(`UPDATE domain_performance`).
		WithArgs(62.0, 1, true, sqlmock.AnyArg(), "site-1", "hot").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE domain_performance`).
		WithArgs(16.0, 2, true, sqlmock.AnyArg(), "site-1", "fresh").
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := UpdateRankings(context.Background(), db, "site-1")
	if err != nil {
		t.Fatalf("UpdateRankings: %v", err)
	}
	if n != 2 {
		t.Errorf("ranked = %d, want 2", n)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestUpdateRankings_OnlyTopTwoFeatured(t *testing.T) {
	db, mock := newTestDB(t)
	now := time.Now()

	rows := sqlmock.NewRows(perfColumns)
	// Three rows, all past the threshold, with distinct CTA rates.
	rows.AddRow("s", "a", 100, 30, 0, 0.0, 0.0, 0.0, false, 0, now) // score 30
	rows.AddRow("s", "b", 100, 20, 0, 0.0, 0.0, 0.0, false, 0, now) // score 30 (capped)
	rows.AddRow("s", "c", 100, 1, 0, 0.0, 0.0, 0.0, false, 0, now)  // score 10

	mock.ExpectQuery(`FROM\s+domain_performance`).WithArgs("s").WillReturnRows(rows)

	mock.ExpectExec(`UPDATE domain_performance`).
		WithArgs(30.0, 1, true, sqlmock.AnyArg(), "s", "a").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE domain_performance`).
		WithArgs(30.0, 2, true, sqlmock.AnyArg(), "s", "b").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE domain_performance`).
		WithArgs(10.0, 3, false, sqlmock.AnyArg(), "s", "c").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if _, err := UpdateRankings(context.Background(), db, "s"); err != nil {
		t.Fatal(err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestReorder_AssignsSyntheticDescendingScores(t *testing.T) {
	db, mock := newTestDB(t)

	mock.ExpectExec(`UPDATE domain_performance`).
		WithArgs(30.0, 1, true, sqlmock.AnyArg(), "s", "x").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE domain_performance`).
		WithArgs(20.0, 2, true, sqlmock.AnyArg(), "s", "y").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE domain_performance`).
		WithArgs(10.0, 3, false, sqlmock.AnyArg(), "s", "z").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := Reorder(context.Background(), db, "s", []string{"x", "y", "z"}); err != nil {
		t.Fatal(err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestInsert_DerivesBonusValue(t *testing.T) {
	db, mock := newTestDB(t)

	mock.ExpectExec(`INSERT INTO bonus_site`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	rec := Record{Name: "BetKral", BonusType: "deneme", BonusAmount: "1.500 TL Deneme",
		AffiliateURL: "https://x", IsActive: true}
	if err := Insert(context.Background(), db, &rec); err != nil {
		t.Fatal(err)
	}
	if rec.BonusValue != 1500 {
		t.Errorf("BonusValue = %d, want 1500", rec.BonusValue)
	}
	if rec.ID == "" {
		t.Error("Insert did not assign an ID")
	}
	if rec.Rating == 0 {
		t.Error("Insert did not apply the default rating")
	}
}

func TestLinkAllToSite_SeedsHeuristicRows(t *testing.T) {
	db, mock := newTestDB(t)
	now := time.Now()

	mock.ExpectQuery(`FROM\s+bonus_site`).
		WithArgs(200).
		WillReturnRows(sqlmock.NewRows(bonusColumns).
			AddRow("b1", "BetKral", "", "deneme", "1.000 TL", 1000,
				"https://x", 4.0, nil, 30.0, true, true, now, now).
			AddRow("b2", "GolVadisi", "", "hosgeldin", "250 TL", 250,
				"https://y", 5.0, nil, 10.0, true, true, now, now))

	// b1: 40 (value capped) + 0 (turnover 30) + 16 = 56
	// b2: 10 + 10 + 20 = 40
	mock.ExpectExec(`INSERT INTO domain_performance`).
		WithArgs("site-9", "b1", 56.0, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO domain_performance`).
		WithArgs("site-9", "b2", 40.0, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := LinkAllToSite(context.Background(), db, "site-9")
	if err != nil {
		t.Fatalf("LinkAllToSite: %v", err)
	}
	if n != 2 {
		t.Errorf("linked = %d, want 2", n)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}
