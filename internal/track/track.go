// internal/track/track.go
//
// Performance-event ingestion.
//
// Context
// -------
// Public pages report impressions, CTA clicks, affiliate clicks, scroll
// depth, and time-on-page.  Counters aggregate per (tenant site, bonus
// site) into `domain_performance`, which drives ranking; every accepted
// event is also appended to `track_event` with UA and geo enrichment for
// offline analysis.
//
// Bot traffic (crawler UA signatures) is logged but never counted, so a
// Googlebot crawl cannot inflate a partner's CTA rate.
//
// Wire shape (unchanged from the public API contract):
//
//	{"domain_id", "site_id", "event_type", "value", "user_session", "page_url"}
//
// where domain_id is the tenant site and site_id the bonus site.
package track

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/guncelgiris/platform/internal/metrics"
)

// Event types accepted on the wire.
const (
	EventImpression     = "impression"
	EventCTAClick       = "cta_click"
	EventAffiliateClick = "affiliate_click"
	EventScroll         = "scroll"
	EventTimeOnPage     = "time_on_page"
)

// ErrUnknownEvent rejects event types outside the fixed taxonomy.
var ErrUnknownEvent = fmt.Errorf("unknown event type")

func validType(t string) bool {
	switch t {
	case EventImpression, EventCTAClick, EventAffiliateClick,
		EventScroll, EventTimeOnPage:
		return true
	}
	return false
}

// Event is one tracking datum as posted by the page.
type Event struct {
	TenantID    string  `json:"domain_id"`
	BonusSiteID string  `json:"site_id"`
	Type        string  `json:"event_type"`
	Value       float64 `json:"value"`
	UserSession string  `json:"user_session"`
	PageURL     string  `json:"page_url"`
}

// Meta is the request-derived enrichment attached server-side.
type Meta struct {
	UserAgent  string
	AcceptLang string
	IP         net.IP
}

// Recorder persists events.  Safe for concurrent use.
type Recorder struct {
	db  *sqlx.DB
	geo *geoLookup
}

// NewRecorder wires the recorder; geoDBPath may be empty to disable geo
// enrichment.
func NewRecorder(db *sqlx.DB, geoDBPath string) (*Recorder, error) {
	geo, err := newGeoLookup(geoDBPath)
	if err != nil {
		return nil, err
	}
	return &Recorder{db: db, geo: geo}, nil
}

// Record enriches, logs, and (for non-bot traffic) aggregates one event.
// Events outside the taxonomy are rejected before any row is written.
func (r *Recorder) Record(ctx context.Context, ev Event, meta Meta) error {
	if ev.BonusSiteID == "" || !validType(ev.Type) {
		return ErrUnknownEvent
	}
	fp := fingerprint(meta.UserAgent, meta.AcceptLang)
	country := r.geo.country(meta.IP)

	if err := r.appendRaw(ctx, ev, fp, country); err != nil {
		return err
	}
	if fp.IsBot {
		return nil
	}

	if err := r.aggregate(ctx, ev); err != nil {
		return err
	}
	metrics.TrackEventsTotal.WithLabelValues(ev.Type).Inc()
	return nil
}

// RecordBatch ingests several events sharing one request's enrichment.
// The first hard failure aborts; earlier rows stay written.
func (r *Recorder) RecordBatch(ctx context.Context, evs []Event, meta Meta) (int, error) {
	for i, ev := range evs {
		if err := r.Record(ctx, ev, meta); err != nil {
			return i, err
		}
	}
	return len(evs), nil
}

// appendRaw stores the enriched event row.
func (r *Recorder) appendRaw(ctx context.Context, ev Event, fp Fingerprint, country string) error {
	const q = `
        INSERT INTO track_event
               (id, site_id, bonus_site_id, event_type, value, user_session,
                page_url, browser, os, device, is_bot, country, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q,
		uuid.NewString(), nullable(ev.TenantID), ev.BonusSiteID, ev.Type,
		ev.Value, ev.UserSession, ev.PageURL,
		fp.Browser, fp.OS, fp.Device, fp.IsBot, country, time.Now().UTC())
	return err
}

// aggregate folds the event into the per-tenant counters.  Scroll depth
// and dwell time keep an exponential moving average (α = 0.1) so a single
// outlier session cannot swing the ranking.
func (r *Recorder) aggregate(ctx context.Context, ev Event) error {
	var set string
	switch ev.Type {
	case EventImpression:
		set = `impressions = impressions + 1`
	case EventCTAClick:
		set = `cta_clicks = cta_clicks + 1`
	case EventAffiliateClick:
		set = `affiliate_clicks = affiliate_clicks + 1`
	case EventScroll:
		set = `avg_scroll_depth = avg_scroll_depth * 0.9 + ? * 0.1`
	case EventTimeOnPage:
		set = `avg_time_on_page = avg_time_on_page * 0.9 + ? * 0.1`
	default:
		return ErrUnknownEvent
	}

	q := `
        INSERT INTO domain_performance (site_id, bonus_site_id, updated_at)
        VALUES (?, ?, ?)
        ON DUPLICATE KEY UPDATE ` + set + `, updated_at = VALUES(updated_at)`

	args := []any{ev.TenantID, ev.BonusSiteID, time.Now().UTC()}
	if ev.Type == EventScroll || ev.Type == EventTimeOnPage {
		args = append(args, ev.Value)
	}
	_, err := r.db.ExecContext(ctx, q, args...)
	return err
}

// Close releases the geo reader, if any.
func (r *Recorder) Close() error { return r.geo.close() }

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
