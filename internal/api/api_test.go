// internal/api/api_test.go
//
// Handler tests over httptest with sqlmock behind every dependency that
// touches the database.

package api

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"github.com/guncelgiris/platform/internal/auth"
	"github.com/guncelgiris/platform/internal/config"
	"github.com/guncelgiris/platform/internal/content"
	"github.com/guncelgiris/platform/internal/gate"
	"github.com/guncelgiris/platform/internal/sports"
	"github.com/guncelgiris/platform/internal/tenant"
	"github.com/guncelgiris/platform/internal/track"
)

func newTestHandler(t *testing.T) (*Handler, sqlmock.Sqlmock) {
	t.Helper()
	rawDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { rawDB.Close() })
	db := sqlx.NewDb(rawDB, "mysql")

	cfg := &config.Config{}
	cfg.Admin.Hostname = "panel.example.com"
	cfg.Admin.TokenTTL = time.Hour
	cfg.Admin.VerifyTimeout = time.Second
	cfg.RateLimit.Requests = 1000
	cfg.RateLimit.Window = time.Minute

	tenants := tenant.New(db, cfg.Admin, tenant.IdleTTL, tenant.MaxEntries)
	t.Cleanup(tenants.Close)

	authSvc := auth.NewService(db, "test-secret", time.Hour)
	recorder, err := track.NewRecorder(db, "")
	if err != nil {
		t.Fatal(err)
	}

	h := New(db, cfg, tenants, authSvc, gate.New(authSvc, time.Second), recorder,
		sports.NewFeed(config.Sports{}), content.NewGenerator(db, content.NewClient(config.AI{})))
	return h, mock
}

func serve(h *Handler, r *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, r)
	return rec
}

func TestHealthAndVersion(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("/health status = %d", rec.Code)
	}

	rec = serve(h, httptest.NewRequest(http.MethodGet, "/version", nil))
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body["version"] == "" {
		t.Errorf("/version body = %s", rec.Body.String())
	}
}

func TestSiteBootstrap_UnknownHostGetsDefaultShell(t *testing.T) {
	h, mock := newTestHandler(t)
	mock.ExpectQuery(`FROM\s+site`).
		WithArgs("yeni-domain.com").
		WillReturnError(sql.ErrNoRows)

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/site/yeni-domain.com", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 fallback", rec.Code)
	}

	var body struct {
		Host      string `json:"host"`
		IsDefault bool   `json:"is_default"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if !body.IsDefault || body.Host != "yeni-domain.com" {
		t.Errorf("fallback payload = %+v", body)
	}
}

func TestTrackEvent_UnknownTypeIs400(t *testing.T) {
	h, _ := newTestHandler(t)
	req := httptest.NewRequest(http.MethodPost, "/track/event",
		strings.NewReader(`{"site_id":"b1","event_type":"pageview"}`))
	if rec := serve(h, req); rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestTrackEvent_RecordsBrowserEvent(t *testing.T) {
	h, mock := newTestHandler(t)
	mock.ExpectExec(`INSERT INTO track_event`).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO domain_performance`).WillReturnResult(sqlmock.NewResult(1, 1))

	req := httptest.NewRequest(http.MethodPost, "/track/event",
		strings.NewReader(`{"domain_id":"t1","site_id":"b1","event_type":"impression"}`))
	req.Header.Set("User-Agent",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 "+
			"(KHTML, like Gecko) Chrome/126.0 Safari/537.36")

	if rec := serve(h, req); rec.Code != http.StatusAccepted {
		t.Errorf("status = %d, want 202", rec.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

// A batch that dies mid-way reports what landed and what did not instead
// of claiming full success.
func TestTrackBatch_PartialFailureReportsCounts(t *testing.T) {
	h, mock := newTestHandler(t)

	// First event (bot UA: no aggregate) writes its raw row; the second
	// carries an unknown type and is rejected before any write.
	mock.ExpectExec(`INSERT INTO track_event`).WillReturnResult(sqlmock.NewResult(1, 1))

	req := httptest.NewRequest(http.MethodPost, "/track/batch",
		strings.NewReader(`{"events":[
			{"site_id":"b1","event_type":"impression"},
			{"site_id":"b1","event_type":"pageview"}]}`))

	rec := serve(h, req)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", rec.Code)
	}
	var body map[string]int
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["recorded"] != 1 || body["dropped"] != 1 {
		t.Errorf("body = %v, want recorded=1 dropped=1", body)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

// Login off the admin domain answers 404; the endpoint should look
// nonexistent from an arbitrary tenant host.
func TestAuthLogin_OffDomainLooksNonexistent(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"username":"yonetici","password":"gizli"}`))
	req = req.WithContext(tenant.WithFlags(req.Context(), tenant.Context{IsAdminDomain: false}))

	if rec := serve(h, req); rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestAuthVerify_NoTokenIs401(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := serve(h, httptest.NewRequest(http.MethodGet, "/auth/verify", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestAdminRoutes_GatedOffDomain(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/sites/", nil)
	req = req.WithContext(tenant.WithFlags(req.Context(), tenant.Context{IsAdminDomain: false}))

	if rec := serve(h, req); rec.Code != http.StatusNotFound {
		t.Errorf("admin route off-domain: status = %d, want 404", rec.Code)
	}
}

func TestErrorEnvelopeCarriesRequestID(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/track/event", strings.NewReader("{bad json"))
	rec := serve(h, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if _, ok := body["request_id"]; !ok {
		t.Error("error envelope missing request_id field")
	}
	if body["error"] == "" {
		t.Error("error envelope missing error message")
	}
}
