package bonus

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const columns = `id, name, logo_url, bonus_type, bonus_amount, bonus_value,
               affiliate_url, rating, features, turnover,
               is_active, is_global, created_at, updated_at`

// AllActive returns the global catalogue, newest first.
func AllActive(ctx context.Context, db *sqlx.DB, limit int) ([]Record, error) {
	const q = `
        SELECT ` + columns + `
        FROM   bonus_site
        WHERE  is_active = TRUE
        ORDER BY created_at DESC
        LIMIT  ?`
	var rows []Record
	if err := db.SelectContext(ctx, &rows, q, limit); err != nil {
		return nil, err
	}
	return rows, nil
}

// ByID fetches one catalogue row.
func ByID(ctx context.Context, db *sqlx.DB, id string) (*Record, error) {
	const q = `SELECT ` + columns + ` FROM bonus_site WHERE id = ? LIMIT 1`
	var rec Record
	if err := db.GetContext(ctx, &rec, q, id); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Insert creates a catalogue row.  BonusValue is derived from BonusAmount
// when unset.
func Insert(ctx context.Context, db *sqlx.DB, rec *Record) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.BonusValue == 0 {
		rec.BonusValue = ExtractValue(rec.BonusAmount)
	}
	if rec.Rating == 0 {
		rec.Rating = 4.5
	}
	now := time.Now().UTC()
	rec.CreatedAt, rec.UpdatedAt = now, now
	rec.IsActive = true

	const q = `
        INSERT INTO bonus_site
               (id, name, logo_url, bonus_type, bonus_amount, bonus_value,
                affiliate_url, rating, features, turnover,
                is_active, is_global, created_at, updated_at)
        VALUES (:id, :name, :logo_url, :bonus_type, :bonus_amount, :bonus_value,
                :affiliate_url, :rating, :features, :turnover,
                :is_active, :is_global, :created_at, :updated_at)`
	_, err := db.NamedExecContext(ctx, q, rec)
	return err
}

// Delete removes a catalogue row and its per-tenant ranking rows.
func Delete(ctx context.Context, db *sqlx.DB, id string) error {
	if _, err := db.ExecContext(ctx,
		`DELETE FROM domain_performance WHERE bonus_site_id = ?`, id); err != nil {
		return err
	}
	_, err := db.ExecContext(ctx, `DELETE FROM bonus_site WHERE id = ?`, id)
	return err
}

// LinkToSite seeds the ranking row binding one catalogue entry to one
// tenant site, scored heuristically until tracking data accumulates.
func LinkToSite(ctx context.Context, db *sqlx.DB, siteID string, rec *Record) error {
	const q = `
        INSERT INTO domain_performance
               (site_id, bonus_site_id, performance_score, updated_at)
        VALUES (?, ?, ?, ?)
        ON DUPLICATE KEY UPDATE performance_score = VALUES(performance_score)`
	_, err := db.ExecContext(ctx, q, siteID, rec.ID, HeuristicScore(rec), time.Now().UTC())
	return err
}

// LinkAllToSite binds every active catalogue entry to a freshly created
// tenant site, each scored heuristically.  Returns the number of rows
// linked.
func LinkAllToSite(ctx context.Context, db *sqlx.DB, siteID string) (int, error) {
	recs, err := AllActive(ctx, db, 200)
	if err != nil {
		return 0, err
	}
	for i := range recs {
		if err := LinkToSite(ctx, db, siteID, &recs[i]); err != nil {
			return i, err
		}
	}
	return len(recs), nil
}

// RankedBySite returns the active catalogue joined with one tenant's
// ranking columns, best score first.
func RankedBySite(ctx context.Context, db *sqlx.DB, siteID string, limit int) ([]Ranked, error) {
	const q = `
        SELECT b.id, b.name, b.logo_url, b.bonus_type, b.bonus_amount,
               b.bonus_value, b.affiliate_url, b.rating, b.features,
               b.turnover, b.is_active, b.is_global, b.created_at,
               b.updated_at,
               p.performance_score, p.is_featured, p.rank
        FROM   bonus_site b
        JOIN   domain_performance p
          ON   p.bonus_site_id = b.id AND p.site_id = ?
        WHERE  b.is_active = TRUE
        ORDER BY p.performance_score DESC
        LIMIT  ?`
	var rows []Ranked
	if err := db.SelectContext(ctx, &rows, q, siteID, limit); err != nil {
		return nil, err
	}
	return rows, nil
}

// PerformanceBySite returns the raw ranking rows for one tenant.
func PerformanceBySite(ctx context.Context, db *sqlx.DB, siteID string) ([]Performance, error) {
	const q = `
        SELECT site_id, bonus_site_id, impressions, cta_clicks,
               affiliate_clicks, avg_time_on_page, avg_scroll_depth,
               performance_score, is_featured, ` + "`rank`" + `, updated_at
        FROM   domain_performance
        WHERE  site_id = ?`
	var rows []Performance
	if err := db.SelectContext(ctx, &rows, q, siteID); err != nil {
		return nil, err
	}
	return rows, nil
}

// UpdateRankings recomputes one tenant's ranking: each row is rescored
// (performance once impressions pass MinImpressions, heuristic otherwise),
// then ranks are assigned by descending score and the top rows flagged
// featured.  Returns the number of rows ranked.
func UpdateRankings(ctx context.Context, db *sqlx.DB, siteID string) (int, error) {
	perfs, err := PerformanceBySite(ctx, db, siteID)
	if err != nil {
		return 0, err
	}

	for i := range perfs {
		p := &perfs[i]
		var score float64
		if p.Impressions > MinImpressions {
			score = PerformanceScore(p)
		} else {
			rec, err := ByID(ctx, db, p.BonusSiteID)
			if err != nil {
				continue // catalogue row gone; leave stale score
			}
			score = HeuristicScore(rec)
		}
		p.Score = score
	}

	sortByScore(perfs)

	now := time.Now().UTC()
	const q = `
        UPDATE domain_performance
        SET    performance_score = ?, ` + "`rank`" + ` = ?, is_featured = ?,
               updated_at = ?
        WHERE  site_id = ? AND bonus_site_id = ?`
	for i := range perfs {
		p := &perfs[i]
		if _, err := db.ExecContext(ctx, q,
			p.Score, i+1, i < FeaturedCount, now, siteID, p.BonusSiteID); err != nil {
			return i, err
		}
	}
	return len(perfs), nil
}

// Reorder pins an explicit ordering for one tenant by assigning descending
// synthetic scores, overriding tracked ranking until the next recompute.
func Reorder(ctx context.Context, db *sqlx.DB, siteID string, orderedIDs []string) error {
	now := time.Now().UTC()
	const q = `
        UPDATE domain_performance
        SET    performance_score = ?, ` + "`rank`" + ` = ?, is_featured = ?,
               updated_at = ?
        WHERE  site_id = ? AND bonus_site_id = ?`
	base := float64(len(orderedIDs) * 10)
	for i, id := range orderedIDs {
		if _, err := db.ExecContext(ctx, q,
			base-float64(i*10), i+1, i < FeaturedCount, now, siteID, id); err != nil {
			return err
		}
	}
	return nil
}

func sortByScore(perfs []Performance) {
	sort.SliceStable(perfs, func(i, j int) bool { return perfs[i].Score > perfs[j].Score })
}
