// internal/track/track_test.go
//
// Recorder tests over sqlmock.  The interesting behaviours:
//
//   • Non-bot events write a raw row AND bump the aggregate.
//   • Bot traffic is logged but never aggregated.
//   • Unknown event types are rejected before any write.

package track

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
)

const (
	chromeUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36"
	googlebotUA = "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)"
)

func newTestRecorder(t *testing.T) (*Recorder, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	rec, err := NewRecorder(sqlx.NewDb(db, "mysql"), "")
	if err != nil {
		t.Fatal(err)
	}
	return rec, mock
}

func testEvent(typ string) Event {
	return Event{
		TenantID:    "tenant-1",
		BonusSiteID: "bonus-1",
		Type:        typ,
		UserSession: "sess",
		PageURL:     "/",
	}
}

func TestRecord_BrowserEventAggregates(t *testing.T) {
	rec, mock := newTestRecorder(t)

	mock.ExpectExec(`INSERT INTO track_event`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO domain_performance`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := rec.Record(context.Background(), testEvent(EventImpression), Meta{UserAgent: chromeUA})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestRecord_BotIsLoggedNotCounted(t *testing.T) {
	rec, mock := newTestRecorder(t)

	// Only the raw insert; no aggregate exec expected.
	mock.ExpectExec(`INSERT INTO track_event`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := rec.Record(context.Background(), testEvent(EventCTAClick), Meta{UserAgent: googlebotUA})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("bot event touched the aggregate: %v", err)
	}
}

func TestRecord_EmptyUserAgentTreatedAsBot(t *testing.T) {
	rec, mock := newTestRecorder(t)
	mock.ExpectExec(`INSERT INTO track_event`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := rec.Record(context.Background(), testEvent(EventImpression), Meta{}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestRecord_UnknownTypeRejected(t *testing.T) {
	rec, _ := newTestRecorder(t)

	err := rec.Record(context.Background(), testEvent("pageview"), Meta{UserAgent: chromeUA})
	if !errors.Is(err, ErrUnknownEvent) {
		t.Errorf("err = %v, want ErrUnknownEvent", err)
	}

	err = rec.Record(context.Background(), Event{}, Meta{UserAgent: chromeUA})
	if !errors.Is(err, ErrUnknownEvent) {
		t.Errorf("empty event: err = %v, want ErrUnknownEvent", err)
	}
}

func TestRecordBatch_StopsAtFirstFailure(t *testing.T) {
	rec, mock := newTestRecorder(t)

	// First event succeeds fully.
	mock.ExpectExec(`INSERT INTO track_event`).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO domain_performance`).WillReturnResult(sqlmock.NewResult(1, 1))
	// Second event fails on the raw insert.
	mock.ExpectExec(`INSERT INTO track_event`).WillReturnError(errors.New("disk full"))

	n, err := rec.RecordBatch(context.Background(),
		[]Event{testEvent(EventImpression), testEvent(EventCTAClick)},
		Meta{UserAgent: chromeUA})
	if err == nil {
		t.Fatal("RecordBatch: expected error")
	}
	if n != 1 {
		t.Errorf("recorded = %d, want 1", n)
	}
}

func TestFingerprint(t *testing.T) {
	fp := fingerprint(chromeUA, "tr-TR")
	if fp.IsBot {
		t.Error("Chrome UA classified as bot")
	}
	if fp.Browser == "" || fp.OS == "" {
		t.Errorf("fingerprint incomplete: %+v", fp)
	}

	if !fingerprint(googlebotUA, "").IsBot {
		t.Error("Googlebot UA not classified as bot")
	}
	if !fingerprint("", "").IsBot {
		t.Error("empty UA not classified as bot")
	}
}

func TestClientIP(t *testing.T) {
	if ip := ClientIP("203.0.113.7:4422", ""); ip == nil || ip.String() != "203.0.113.7" {
		t.Errorf("ClientIP from remote addr = %v", ip)
	}
	if ip := ClientIP("10.0.0.1:80", "198.51.100.9, 10.0.0.1"); ip == nil || ip.String() != "198.51.100.9" {
		t.Errorf("ClientIP from XFF = %v", ip)
	}
	if ip := ClientIP("garbage", "also-garbage"); ip != nil {
		t.Errorf("ClientIP from garbage = %v, want nil", ip)
	}
}

// nullValue mirrors the nullable() helper contract.
func TestNullable(t *testing.T) {
	if v := nullable(""); v != nil {
		t.Errorf("nullable(\"\") = %v, want nil", v)
	}
	if v := nullable("x"); v != "x" {
		t.Errorf("nullable(\"x\") = %v", v)
	}
}
