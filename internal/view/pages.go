// internal/view/pages.go
//
// Handlers behind the tenant route table.  Each handler loads its data,
// fills the shared envelope, and renders one embedded template.
package view

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/guncelgiris/platform/internal/article"
	"github.com/guncelgiris/platform/internal/bonus"
	"github.com/guncelgiris/platform/internal/sports"
	"github.com/guncelgiris/platform/internal/tenant"
)

// Handlers builds the page set for the tenant router.
type Handlers struct {
	db   *sqlx.DB
	feed *sports.Feed
	rn   *Renderer
}

func NewHandlers(db *sqlx.DB, feed *sports.Feed) *Handlers {
	return &Handlers{db: db, feed: feed, rn: NewRenderer()}
}

// Pages returns the handler map consumed by tenant.Mount.
func (h *Handlers) Pages() tenant.Pages {
	return tenant.Pages{
		tenant.PageHome:        http.HandlerFunc(h.home),
		tenant.PageBonusGuide:  http.HandlerFunc(h.bonusGuide),
		tenant.PageSportsNews:  http.HandlerFunc(h.sportsNews),
		tenant.PageArticle:     http.HandlerFunc(h.articlePage),
		tenant.PageMatchDetail: http.HandlerFunc(h.matchDetail),
		tenant.PageAdminLogin:  http.HandlerFunc(h.adminLogin),
		tenant.PageAdmin:       http.HandlerFunc(h.adminPanel),
	}
}

// rankedOrCatalogue prefers the tenant's performance ranking and falls
// back to the raw catalogue for hosts without one.
func (h *Handlers) rankedOrCatalogue(r *http.Request, limit int) []bonus.Ranked {
	ctx := r.Context()
	if t := tenant.FromContext(ctx); t != nil {
		ranked, err := bonus.RankedBySite(ctx, h.db, t.Site.ID, limit)
		if err == nil && len(ranked) > 0 {
			return ranked
		}
		if err != nil {
			zap.S().Warnw("ranked bonus query failed", "site", t.Site.ID, "error", err)
		}
	}
	recs, err := bonus.AllActive(ctx, h.db, limit)
	if err != nil {
		zap.S().Errorw("bonus catalogue query failed", "error", err)
		return nil
	}
	out := make([]bonus.Ranked, len(recs))
	for i, rec := range recs {
		out[i] = bonus.Ranked{Record: rec, Rank: i + 1}
	}
	return out
}

func (h *Handlers) articles(r *http.Request, limit int) []article.Record {
	ctx := r.Context()
	var (
		recs []article.Record
		err  error
	)
	if t := tenant.FromContext(ctx); t != nil {
		recs, err = article.PublishedBySite(ctx, h.db, t.Site.ID, limit)
	} else {
		recs, err = article.Published(ctx, h.db, limit)
	}
	if err != nil {
		zap.S().Errorw("article query failed", "error", err)
	}
	return recs
}

func (h *Handlers) home(w http.ResponseWriter, r *http.Request) {
	d := baseData(r)
	d.Page = struct {
		Bonuses  []bonus.Ranked
		Articles []article.Record
	}{
		Bonuses:  h.rankedOrCatalogue(r, 12),
		Articles: h.articles(r, 6),
	}
	h.rn.Render(w, "home", d)
}

func (h *Handlers) bonusGuide(w http.ResponseWriter, r *http.Request) {
	bonusType := chi.URLParam(r, "type")
	switch r.URL.Path {
	case "/deneme-bonusu":
		bonusType = "deneme"
	case "/hosgeldin-bonusu":
		bonusType = "hosgeldin"
	}

	all := h.rankedOrCatalogue(r, 50)
	var filtered []bonus.Ranked
	for _, b := range all {
		if bonusType == "" || b.BonusType == bonusType {
			filtered = append(filtered, b)
		}
	}

	d := baseData(r)
	d.Page = struct {
		BonusType string
		Bonuses   []bonus.Ranked
	}{BonusType: bonusType, Bonuses: filtered}
	h.rn.Render(w, "bonus_guide", d)
}

func (h *Handlers) sportsNews(w http.ResponseWriter, r *http.Request) {
	d := baseData(r)
	d.Page = struct {
		Matches  []sports.Match
		Articles []article.Record
	}{
		Matches:  h.feed.Matches(r.Context()),
		Articles: h.articles(r, 10),
	}
	h.rn.Render(w, "sports_news", d)
}

func (h *Handlers) articlePage(w http.ResponseWriter, r *http.Request) {
	rec, err := article.BySlug(r.Context(), h.db, chi.URLParam(r, "slug"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.NotFound(w, r)
			return
		}
		zap.S().Errorw("article lookup failed", "error", err)
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	d := baseData(r)
	if rec.SEOTitle != "" {
		d.Title = rec.SEOTitle
	} else {
		d.Title = rec.Title
	}
	if rec.SEODesc != "" {
		d.Description = rec.SEODesc
	}
	d.Page = rec
	h.rn.Render(w, "article", d)
}

func (h *Handlers) matchDetail(w http.ResponseWriter, r *http.Request) {
	m, ok := h.feed.BySlug(r.Context(), chi.URLParam(r, "slug"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	d := baseData(r)
	d.Title = m.HomeTeam + " - " + m.AwayTeam + " | " + d.SiteName
	d.Page = m
	h.rn.Render(w, "match_detail", d)
}

func (h *Handlers) adminLogin(w http.ResponseWriter, r *http.Request) {
	d := baseData(r)
	d.Title = "Yönetici Girişi"
	h.rn.Render(w, "admin_login", d)
}

func (h *Handlers) adminPanel(w http.ResponseWriter, r *http.Request) {
	d := baseData(r)
	d.Title = "Yönetim Paneli"
	h.rn.Render(w, "admin_panel", d)
}
