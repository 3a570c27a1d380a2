package site

import "time"

// Record mirrors one row in the persistent `site` table: one public tenant
// domain of the platform.  The operational state is captured by two
// nullable timestamps:
//
//   - SuspendedAt – site is temporarily disabled (e.g., domain parked).
//   - DeletedAt   – site is permanently removed.
//
// Either timestamp being non-NULL prevents the lazy-loader from serving
// the site.
type Record struct {
	ID              string     `db:"id" json:"id"`
	Host            string     `db:"host" json:"host"`
	DisplayName     string     `db:"display_name" json:"display_name"`
	Focus           string     `db:"focus" json:"focus"` // "bonus", "sports", …
	LogoURL         string     `db:"logo_url" json:"logo_url"`
	FaviconURL      string     `db:"favicon_url" json:"favicon_url"`
	MetaTitle       string     `db:"meta_title" json:"meta_title"`
	MetaDescription string     `db:"meta_description" json:"meta_description"`
	AnalyticsID     string     `db:"analytics_id" json:"analytics_id"`
	AutoArticles    bool       `db:"auto_articles" json:"auto_articles"`
	AutoNews        bool       `db:"auto_news" json:"auto_news"`
	ContentLanguage string     `db:"content_language" json:"content_language"`
	SuspendedAt     *time.Time `db:"suspended_at" json:"suspended_at,omitempty"`
	DeletedAt       *time.Time `db:"deleted_at" json:"deleted_at,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}
