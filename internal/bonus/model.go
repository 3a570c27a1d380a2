package bonus

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// StringList maps a JSON-encoded TEXT column to []string.
type StringList []string

func (l *StringList) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case []byte:
		if len(v) == 0 {
			*l = nil
			return nil
		}
		return json.Unmarshal(v, l)
	case string:
		if v == "" {
			*l = nil
			return nil
		}
		return json.Unmarshal([]byte(v), l)
	}
	return fmt.Errorf("bonus: cannot scan %T into StringList", src)
}

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	return string(b), err
}

// Record mirrors one row of `bonus_site`: one affiliate partner in the
// global catalogue.  BonusValue is the numeric part extracted from the
// display string ("750 TL" → 750) and feeds the heuristic score.
type Record struct {
	ID           string     `db:"id" json:"id"`
	Name         string     `db:"name" json:"name"`
	LogoURL      string     `db:"logo_url" json:"logo_url"`
	BonusType    string     `db:"bonus_type" json:"bonus_type"` // deneme, hosgeldin, kayip
	BonusAmount  string     `db:"bonus_amount" json:"bonus_amount"`
	BonusValue   int        `db:"bonus_value" json:"bonus_value"`
	AffiliateURL string     `db:"affiliate_url" json:"affiliate_url"`
	Rating       float64    `db:"rating" json:"rating"`
	Features     StringList `db:"features" json:"features"`
	Turnover     float64    `db:"turnover" json:"turnover_requirement"`
	IsActive     bool       `db:"is_active" json:"is_active"`
	IsGlobal     bool       `db:"is_global" json:"is_global"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// Performance mirrors one row of `domain_performance`: the tracked counters
// of one bonus site on one tenant site.
type Performance struct {
	SiteID        string    `db:"site_id" json:"site_id"`
	BonusSiteID   string    `db:"bonus_site_id" json:"bonus_site_id"`
	Impressions   int       `db:"impressions" json:"impressions"`
	CTAClicks     int       `db:"cta_clicks" json:"cta_clicks"`
	AffClicks     int       `db:"affiliate_clicks" json:"affiliate_clicks"`
	AvgTimeOnPage float64   `db:"avg_time_on_page" json:"avg_time_on_page"`
	AvgScroll     float64   `db:"avg_scroll_depth" json:"avg_scroll_depth"`
	Score         float64   `db:"performance_score" json:"performance_score"`
	IsFeatured    bool      `db:"is_featured" json:"is_featured"`
	Rank          int       `db:"rank" json:"rank"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// Ranked is the bootstrap shape: a catalogue row joined with its per-tenant
// ranking columns.
type Ranked struct {
	Record
	Score      float64 `db:"performance_score" json:"performance_score"`
	IsFeatured bool    `db:"is_featured" json:"is_featured"`
	Rank       int     `db:"rank" json:"rank"`
}
