package article

import (
	"crypto/md5"
	"encoding/hex"
	"time"

	"github.com/guncelgiris/platform/internal/bonus"
)

// Record mirrors one row of `article`.  SiteID is nullable: a NULL site
// means the article belongs to the global pool and surfaces on every
// tenant that has no own copy.
type Record struct {
	ID            string           `db:"id" json:"id"`
	SiteID        *string          `db:"site_id" json:"site_id,omitempty"`
	Title         string           `db:"title" json:"title"`
	Slug          string           `db:"slug" json:"slug"`
	Excerpt       string           `db:"excerpt" json:"excerpt"`
	Content       string           `db:"content" json:"content"`
	Category      string           `db:"category" json:"category"`
	Tags          bonus.StringList `db:"tags" json:"tags"`
	ImageURL      string           `db:"image_url" json:"image_url"`
	Author        string           `db:"author" json:"author"`
	IsPublished   bool             `db:"is_published" json:"is_published"`
	IsAIGenerated bool             `db:"is_ai_generated" json:"is_ai_generated"`
	IsAuto        bool             `db:"is_auto" json:"is_auto_generated"`
	SEOTitle      string           `db:"seo_title" json:"seo_title"`
	SEODesc       string           `db:"seo_description" json:"seo_description"`
	ViewCount     int              `db:"view_count" json:"view_count"`
	ContentHash   string           `db:"content_hash" json:"content_hash"`
	CreatedAt     time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time        `db:"updated_at" json:"updated_at"`
}

// HashContent fingerprints the body so the auto-content engine can detect
// unchanged regenerations cheaply.
func HashContent(content string) string {
	sum := md5.Sum([]byte(content))
	return hex.EncodeToString(sum[:])
}
