package site

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const columns = `id, host, display_name, focus, logo_url, favicon_url,
               meta_title, meta_description, analytics_id,
               auto_articles, auto_news, content_language,
               suspended_at, deleted_at, created_at, updated_at`

// AllActive returns every site that is neither suspended nor deleted.  Used
// by the admin console and batch operations, not by the HTTP bootstrap path.
func AllActive(ctx context.Context, db *sqlx.DB) ([]Record, error) {
	const q = `
        SELECT ` + columns + `
        FROM   site
        WHERE  suspended_at IS NULL
          AND  deleted_at   IS NULL
        ORDER BY host`
	var rows []Record
	if err := db.SelectContext(ctx, &rows, q); err != nil {
		return nil, err
	}
	return rows, nil
}

// AutoContentEnabled returns the active sites that opted into scheduled
// content generation (either auto flag set).
func AutoContentEnabled(ctx context.Context, db *sqlx.DB) ([]Record, error) {
	const q = `
        SELECT ` + columns + `
        FROM   site
        WHERE  suspended_at IS NULL
          AND  deleted_at   IS NULL
          AND  (auto_articles = TRUE OR auto_news = TRUE)
        ORDER BY host`
	var rows []Record
	if err := db.SelectContext(ctx, &rows, q); err != nil {
		return nil, err
	}
	return rows, nil
}

// ByHost fetches a single site row that is not suspended or deleted.  The
// lookup host must already be normalised (lowercase, no port).
func ByHost(ctx context.Context, db *sqlx.DB, host string) (*Record, error) {
	const q = `
        SELECT ` + columns + `
        FROM   site
        WHERE  host = ?
          AND  suspended_at IS NULL
          AND  deleted_at   IS NULL
        LIMIT  1`
	var rec Record
	if err := db.GetContext(ctx, &rec, q, host); err != nil {
		return nil, err
	}
	return &rec, nil
}

// ByID fetches one site row regardless of its operational state, for the
// admin console.
func ByID(ctx context.Context, db *sqlx.DB, id string) (*Record, error) {
	const q = `SELECT ` + columns + ` FROM site WHERE id = ? LIMIT 1`
	var rec Record
	if err := db.GetContext(ctx, &rec, q, id); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Insert creates a site row.  The host is normalised to lowercase; the ID
// is generated when absent.
func Insert(ctx context.Context, db *sqlx.DB, rec *Record) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	rec.Host = strings.ToLower(rec.Host)
	now := time.Now().UTC()
	rec.CreatedAt, rec.UpdatedAt = now, now
	if rec.ContentLanguage == "" {
		rec.ContentLanguage = "tr"
	}

	const q = `
        INSERT INTO site
               (id, host, display_name, focus, logo_url, favicon_url,
                meta_title, meta_description, analytics_id,
                auto_articles, auto_news, content_language,
                created_at, updated_at)
        VALUES (:id, :host, :display_name, :focus, :logo_url, :favicon_url,
                :meta_title, :meta_description, :analytics_id,
                :auto_articles, :auto_news, :content_language,
                :created_at, :updated_at)`
	_, err := db.NamedExecContext(ctx, q, rec)
	return err
}

// Update rewrites the mutable columns of one site row.
func Update(ctx context.Context, db *sqlx.DB, rec *Record) error {
	rec.UpdatedAt = time.Now().UTC()
	const q = `
        UPDATE site
        SET    display_name = :display_name, focus = :focus,
               logo_url = :logo_url, favicon_url = :favicon_url,
               meta_title = :meta_title, meta_description = :meta_description,
               analytics_id = :analytics_id,
               auto_articles = :auto_articles, auto_news = :auto_news,
               content_language = :content_language,
               updated_at = :updated_at
        WHERE  id = :id`
	_, err := db.NamedExecContext(ctx, q, rec)
	return err
}

// Delete soft-deletes a site row; the tenant cache drops it on next evict.
func Delete(ctx context.Context, db *sqlx.DB, id string) error {
	const q = `UPDATE site SET deleted_at = ? WHERE id = ?`
	_, err := db.ExecContext(ctx, q, time.Now().UTC(), id)
	return err
}
