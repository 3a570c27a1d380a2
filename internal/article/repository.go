package article

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const columns = `id, site_id, title, slug, excerpt, content, category, tags,
               image_url, author, is_published, is_ai_generated, is_auto,
               seo_title, seo_description, view_count, content_hash,
               created_at, updated_at`

// Published returns published articles, newest first.
func Published(ctx context.Context, db *sqlx.DB, limit int) ([]Record, error) {
	const q = `
        SELECT ` + columns + `
        FROM   article
        WHERE  is_published = TRUE
        ORDER BY created_at DESC
        LIMIT  ?`
	var rows []Record
	if err := db.SelectContext(ctx, &rows, q, limit); err != nil {
		return nil, err
	}
	return rows, nil
}

// PublishedBySite returns one tenant's articles plus the global pool,
// newest first.
func PublishedBySite(ctx context.Context, db *sqlx.DB, siteID string, limit int) ([]Record, error) {
	const q = `
        SELECT ` + columns + `
        FROM   article
        WHERE  (site_id = ? OR site_id IS NULL)
          AND  is_published = TRUE
        ORDER BY created_at DESC
        LIMIT  ?`
	var rows []Record
	if err := db.SelectContext(ctx, &rows, q, siteID, limit); err != nil {
		return nil, err
	}
	return rows, nil
}

// BySlug fetches one published article and bumps its view counter.  The
// bump is fire-and-forget; a failed increment never blocks the page.
func BySlug(ctx context.Context, db *sqlx.DB, slug string) (*Record, error) {
	const q = `
        SELECT ` + columns + `
        FROM   article
        WHERE  slug = ? AND is_published = TRUE
        LIMIT  1`
	var rec Record
	if err := db.GetContext(ctx, &rec, q, slug); err != nil {
		return nil, err
	}
	_, _ = db.ExecContext(ctx,
		`UPDATE article SET view_count = view_count + 1 WHERE id = ?`, rec.ID)
	return &rec, nil
}

// TitleExists reports whether a published article with a similar title
// already exists for the given site scope.  Used by the auto-content
// engine to skip duplicate topics.
func TitleExists(ctx context.Context, db *sqlx.DB, siteID *string, title string) (bool, error) {
	const q = `
        SELECT COUNT(*)
        FROM   article
        WHERE  LOWER(title) LIKE LOWER(?)
          AND  (site_id <=> ?)`
	var n int
	if err := db.GetContext(ctx, &n, q, "%"+title+"%", siteID); err != nil {
		return false, err
	}
	return n > 0, nil
}

// Insert creates an article.  Slug, hash, author, and timestamps are
// derived when absent.
func Insert(ctx context.Context, db *sqlx.DB, rec *Record) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Slug == "" {
		rec.Slug = Slugify(rec.Title)
	}
	if rec.Author == "" {
		rec.Author = "Admin"
	}
	rec.ContentHash = HashContent(rec.Content)
	now := time.Now().UTC()
	rec.CreatedAt, rec.UpdatedAt = now, now

	const q = `
        INSERT INTO article
               (id, site_id, title, slug, excerpt, content, category, tags,
                image_url, author, is_published, is_ai_generated, is_auto,
                seo_title, seo_description, view_count, content_hash,
                created_at, updated_at)
        VALUES (:id, :site_id, :title, :slug, :excerpt, :content, :category,
                :tags, :image_url, :author, :is_published, :is_ai_generated,
                :is_auto, :seo_title, :seo_description, :view_count,
                :content_hash, :created_at, :updated_at)`
	_, err := db.NamedExecContext(ctx, q, rec)
	return err
}

// Update rewrites the mutable columns of one article.
func Update(ctx context.Context, db *sqlx.DB, rec *Record) error {
	rec.ContentHash = HashContent(rec.Content)
	rec.UpdatedAt = time.Now().UTC()
	const q = `
        UPDATE article
        SET    title = :title, slug = :slug, excerpt = :excerpt,
               content = :content, category = :category, tags = :tags,
               image_url = :image_url, is_published = :is_published,
               seo_title = :seo_title, seo_description = :seo_description,
               content_hash = :content_hash, updated_at = :updated_at
        WHERE  id = :id`
	res, err := db.NamedExecContext(ctx, q, rec)
	if err != nil {
		return err
	}
	// updated_at always changes, so zero affected rows means no such id.
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes one article.
func Delete(ctx context.Context, db *sqlx.DB, id string) error {
	_, err := db.ExecContext(ctx, `DELETE FROM article WHERE id = ?`, id)
	return err
}

// CountBySite returns the article count for dashboard stats; a nil siteID
// counts everything.
func CountBySite(ctx context.Context, db *sqlx.DB, siteID *string, autoOnly bool) (int, error) {
	q := `SELECT COUNT(*) FROM article WHERE 1=1`
	args := []any{}
	if siteID != nil {
		q += ` AND site_id = ?`
		args = append(args, *siteID)
	}
	if autoOnly {
		q += ` AND is_auto = TRUE`
	}
	var n int
	if err := db.GetContext(ctx, &n, q, args...); err != nil {
		return 0, err
	}
	return n, nil
}
