// Package category stores the per-tenant navigation taxonomy.  Categories
// are ordered explicitly (`sort_order`) and reordered as a unit from the
// admin console.
package category

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/guncelgiris/platform/internal/article"
)

// Record mirrors one row of `category`.  SiteID is nullable: NULL rows are
// global defaults shared by every tenant.
type Record struct {
	ID          string    `db:"id" json:"id"`
	SiteID      *string   `db:"site_id" json:"site_id,omitempty"`
	Name        string    `db:"name" json:"name"`
	Slug        string    `db:"slug" json:"slug"`
	Description string    `db:"description" json:"description"`
	Type        string    `db:"type" json:"type"` // "bonus" or "news"
	SortOrder   int       `db:"sort_order" json:"order"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

const columns = `id, site_id, name, slug, description, type, sort_order, created_at`

// All returns every category in display order.
func All(ctx context.Context, db *sqlx.DB) ([]Record, error) {
	const q = `SELECT ` + columns + ` FROM category ORDER BY sort_order, name`
	var rows []Record
	if err := db.SelectContext(ctx, &rows, q); err != nil {
		return nil, err
	}
	return rows, nil
}

// Insert creates a category; the slug derives from the name when absent,
// and new rows sort last.
func Insert(ctx context.Context, db *sqlx.DB, rec *Record) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Slug == "" {
		rec.Slug = article.Slugify(rec.Name)
	}
	rec.CreatedAt = time.Now().UTC()
	if rec.SortOrder == 0 {
		var max int
		_ = db.GetContext(ctx, &max, `SELECT COALESCE(MAX(sort_order), 0) FROM category`)
		rec.SortOrder = max + 1
	}

	const q = `
        INSERT INTO category
               (id, site_id, name, slug, description, type, sort_order, created_at)
        VALUES (:id, :site_id, :name, :slug, :description, :type, :sort_order, :created_at)`
	_, err := db.NamedExecContext(ctx, q, rec)
	return err
}

// Update rewrites one category.  Ordering is owned by Reorder and left
// untouched here.
func Update(ctx context.Context, db *sqlx.DB, rec *Record) error {
	if rec.Slug == "" {
		rec.Slug = article.Slugify(rec.Name)
	}
	const q = `
        UPDATE category
        SET    name = :name, slug = :slug, description = :description,
               type = :type
        WHERE  id = :id`
	_, err := db.NamedExecContext(ctx, q, rec)
	return err
}

// Delete removes one category.
func Delete(ctx context.Context, db *sqlx.DB, id string) error {
	_, err := db.ExecContext(ctx, `DELETE FROM category WHERE id = ?`, id)
	return err
}

// Reorder assigns sort_order 1..n following the given ID sequence.
func Reorder(ctx context.Context, db *sqlx.DB, orderedIDs []string) error {
	const q = `UPDATE category SET sort_order = ? WHERE id = ?`
	for i, id := range orderedIDs {
		if _, err := db.ExecContext(ctx, q, i+1, id); err != nil {
			return err
		}
	}
	return nil
}
