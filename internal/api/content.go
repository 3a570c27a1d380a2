// internal/api/content.go
//
// Content-generation and reporting endpoints, plus the dashboard stats
// aggregate and the one-shot catalogue seeder.
package api

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/guncelgiris/platform/internal/article"
	"github.com/guncelgiris/platform/internal/bonus"
)

/*───────────────────────────────────────────────────────────────────────────
  AI content
───────────────────────────────────────────────────────────────────────────*/

func (h *Handler) generateArticle(w http.ResponseWriter, r *http.Request) {
	if !h.gen.Enabled() {
		fail(w, r, http.StatusServiceUnavailable, "content generation is not configured")
		return
	}
	var req struct {
		SiteID   *string `json:"site_id"`
		Topic    string  `json:"topic" validate:"omitempty,max=200"`
		Category string  `json:"category" validate:"omitempty,max=60"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	rec, err := h.gen.Generate(r.Context(), req.SiteID, req.Topic, req.Category)
	if err != nil {
		serverError(w, r, err)
		return
	}
	if rec == nil {
		respond(w, http.StatusOK, map[string]string{"status": "skipped", "reason": "duplicate title"})
		return
	}
	respond(w, http.StatusCreated, rec)
}

func (h *Handler) generateBulk(w http.ResponseWriter, r *http.Request) {
	if !h.gen.Enabled() {
		fail(w, r, http.StatusServiceUnavailable, "content generation is not configured")
		return
	}
	var req struct {
		SiteID *string `json:"site_id"`
		Count  int     `json:"count" validate:"omitempty,gte=1,lte=8"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	recs, err := h.gen.GenerateBulk(r.Context(), req.SiteID, req.Count)
	if err != nil {
		serverError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, map[string]any{
		"generated": len(recs),
		"articles":  recs,
	})
}

func (h *Handler) seoReport(w http.ResponseWriter, r *http.Request) {
	if !h.gen.Enabled() {
		fail(w, r, http.StatusServiceUnavailable, "content generation is not configured")
		return
	}
	var siteID *string
	if v := r.URL.Query().Get("site_id"); v != "" {
		siteID = &v
	}
	report, err := h.gen.SEOReport(r.Context(), siteID)
	if err != nil {
		serverError(w, r, err)
		return
	}
	respond(w, http.StatusOK, map[string]string{"report": report})
}

/*───────────────────────────────────────────────────────────────────────────
  Dashboard stats
───────────────────────────────────────────────────────────────────────────*/

type dashboardStats struct {
	Sites       int `json:"sites" db:"sites"`
	BonusSites  int `json:"bonus_sites" db:"bonus_sites"`
	Articles    int `json:"articles" db:"articles"`
	Impressions int `json:"impressions" db:"impressions"`
	CTAClicks   int `json:"cta_clicks" db:"cta_clicks"`
	AffClicks   int `json:"affiliate_clicks" db:"affiliate_clicks"`
}

func (h *Handler) dashboardStats(w http.ResponseWriter, r *http.Request) {
	const q = `
        SELECT
          (SELECT COUNT(*) FROM site WHERE deleted_at IS NULL)            AS sites,
          (SELECT COUNT(*) FROM bonus_site WHERE is_active = 1)           AS bonus_sites,
          (SELECT COUNT(*) FROM article WHERE is_published = 1)           AS articles,
          COALESCE((SELECT SUM(impressions)      FROM domain_performance), 0) AS impressions,
          COALESCE((SELECT SUM(cta_clicks)       FROM domain_performance), 0) AS cta_clicks,
          COALESCE((SELECT SUM(affiliate_clicks) FROM domain_performance), 0) AS affiliate_clicks`

	var stats dashboardStats
	if err := h.db.GetContext(r.Context(), &stats, q); err != nil {
		serverError(w, r, err)
		return
	}
	respond(w, http.StatusOK, stats)
}

/*───────────────────────────────────────────────────────────────────────────
  Seed
───────────────────────────────────────────────────────────────────────────*/

// seed loads a handful of starter bonus partners into an empty catalogue.
// A non-empty catalogue makes this a no-op, so re-running is harmless.
func (h *Handler) seed(w http.ResponseWriter, r *http.Request) {
	existing, err := bonus.AllActive(r.Context(), h.db, 1)
	if err != nil {
		serverError(w, r, err)
		return
	}
	if len(existing) > 0 {
		respond(w, http.StatusOK, map[string]string{"status": "skipped", "reason": "catalogue not empty"})
		return
	}

	n, err := seedCatalogue(r.Context(), h)
	if err != nil {
		serverError(w, r, err)
		return
	}
	zap.S().Infow("catalogue seeded", "bonus_sites", n)
	respond(w, http.StatusCreated, map[string]int{"seeded": n})
}

func seedCatalogue(ctx context.Context, h *Handler) (int, error) {
	starters := []bonus.Record{
		{
			Name: "BetKral", BonusType: "deneme", BonusAmount: "500 TL Deneme Bonusu",
			AffiliateURL: "https://example.com/go/betkral", Rating: 4.8,
			Features: []string{"Çevrimsiz", "Anında Çekim"}, IsActive: true, IsGlobal: true,
		},
		{
			Name: "GolVadisi", BonusType: "deneme", BonusAmount: "250 TL Deneme Bonusu",
			AffiliateURL: "https://example.com/go/golvadisi", Rating: 4.5,
			Features: []string{"Belge İstemez"}, IsActive: true, IsGlobal: true,
		},
		{
			Name: "ŞansArena", BonusType: "hosgeldin", BonusAmount: "%100 Hoşgeldin Bonusu 1000 TL",
			AffiliateURL: "https://example.com/go/sansarena", Rating: 4.6,
			Features: []string{"Free Spin", "Canlı Destek"}, Turnover: 10,
			IsActive: true, IsGlobal: true,
		},
		{
			Name: "KupaBet", BonusType: "kayip", BonusAmount: "%25 Kayıp Bonusu",
			AffiliateURL: "https://example.com/go/kupabet", Rating: 4.2,
			Turnover: 5, IsActive: true, IsGlobal: true,
		},
	}

	for i := range starters {
		if err := bonus.Insert(ctx, h.db, &starters[i]); err != nil {
			return i, err
		}
	}

	// A starter article keeps the home page from looking empty.
	rec := article.Record{
		Title: "Deneme Bonusu Nedir ve Nasıl Alınır?",
		Excerpt: "Deneme bonusu, bahis sitelerinin yeni üyelere yatırım " +
			"şartı aramadan tanımladığı başlangıç bakiyesidir.",
		Content: "<p>Deneme bonusu, bahis sitelerinin yeni üyelere yatırım " +
			"şartı aramadan tanımladığı başlangıç bakiyesidir.  Üyelik sonrasında " +
			"otomatik tanımlanır veya canlı destekten talep edilir.</p>" +
			"<p>Bonusu çekilebilir hale getirmek için sitelerin çevrim " +
			"şartlarını incelemek gerekir; çevrimsiz kampanyalar her zaman " +
			"önceliklidir.</p>",
		Category:    "bonus",
		Author:      "Editör",
		IsPublished: true,
	}
	if err := article.Insert(ctx, h.db, &rec); err != nil {
		return len(starters), err
	}
	return len(starters), nil
}
