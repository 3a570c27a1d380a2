// internal/content/scheduler_test.go
//
// The sweep being pinned: a disabled generator makes the cycle a no-op,
// opted-in sites get one generation call per flag, a per-site provider
// failure does not stop the sweep, and duplicate-topic skips count as
// nothing stored.

package content

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"github.com/guncelgiris/platform/internal/article"
)

type fakeSource struct {
	enabled bool
	failFor string
	skipFor string
	calls   [][2]string // siteID, category
}

func (f *fakeSource) Enabled() bool { return f.enabled }

func (f *fakeSource) Generate(_ context.Context, siteID *string, _, category string) (*article.Record, error) {
	id := ""
	if siteID != nil {
		id = *siteID
	}
	f.calls = append(f.calls, [2]string{id, category})
	switch id {
	case f.failFor:
		return nil, errors.New("provider down")
	case f.skipFor:
		return nil, nil
	}
	return &article.Record{ID: "generated-" + id, Category: category}, nil
}

func newTestScheduler(t *testing.T, src *fakeSource) (*Scheduler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return NewScheduler(sqlx.NewDb(db, "mysql"), src, time.Hour), mock
}

var siteColumns = []string{
	"id", "host", "display_name", "focus", "logo_url", "favicon_url",
	"meta_title", "meta_description", "analytics_id",
	"auto_articles", "auto_news", "content_language",
	"suspended_at", "deleted_at", "created_at", "updated_at",
}

func siteRow(rows *sqlmock.Rows, id, host string, articles, news bool) *sqlmock.Rows {
	now := time.Now()
	return rows.AddRow(id, host, host, "bonus", "", "", "", "", "",
		articles, news, "tr", nil, nil, now, now)
}

func TestRunOnce_DisabledGeneratorIsNoOp(t *testing.T) {
	src := &fakeSource{enabled: false}
	sched, mock := newTestScheduler(t, src)

	n, err := sched.runOnce(context.Background())
	if err != nil || n != 0 {
		t.Fatalf("runOnce = (%d, %v), want (0, nil)", n, err)
	}
	if len(src.calls) != 0 {
		t.Errorf("generator called %d times, want 0", len(src.calls))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestRunOnce_SweepsFlaggedSites(t *testing.T) {
	src := &fakeSource{enabled: true, failFor: "s2", skipFor: "s3"}
	sched, mock := newTestScheduler(t, src)

	rows := sqlmock.NewRows(siteColumns)
	rows = siteRow(rows, "s1", "bonuskral.com", true, true)
	rows = siteRow(rows, "s2", "denemefirsat.com", true, false)
	rows = siteRow(rows, "s3", "superbonus.net", true, false)
	mock.ExpectQuery(`FROM\s+site`).WillReturnRows(rows)

	n, err := sched.runOnce(context.Background())
	if err != nil {
		t.Fatalf("runOnce: %v", err)
	}
	// Only s1's two generations store anything: s2 errors, s3 is a
	// duplicate-topic skip.
	if n != 2 {
		t.Errorf("stored = %d, want 2", n)
	}

	want := [][2]string{
		{"s1", "bonus"},
		{"s1", "spor-haberleri"},
		{"s2", "bonus"},
		{"s3", "bonus"},
	}
	if len(src.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", src.calls, want)
	}
	for i := range want {
		if src.calls[i] != want[i] {
			t.Errorf("call %d = %v, want %v", i, src.calls[i], want[i])
		}
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}
