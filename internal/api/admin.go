// internal/api/admin.go
//
// Session-gated management endpoints.  Every handler here runs behind
// gate.ProtectAPI, so the request already carries an authorized admin user.
package api

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/guncelgiris/platform/internal/article"
	"github.com/guncelgiris/platform/internal/bonus"
	"github.com/guncelgiris/platform/internal/category"
	"github.com/guncelgiris/platform/internal/site"
)

/*───────────────────────────────────────────────────────────────────────────
  Sites
───────────────────────────────────────────────────────────────────────────*/

func (h *Handler) listSites(w http.ResponseWriter, r *http.Request) {
	recs, err := site.AllActive(r.Context(), h.db)
	if err != nil {
		serverError(w, r, err)
		return
	}
	respond(w, http.StatusOK, recs)
}

type sitePayload struct {
	Host            string `json:"host" validate:"required,hostname_rfc1123"`
	DisplayName     string `json:"display_name" validate:"required,max=120"`
	Focus           string `json:"focus" validate:"omitempty,max=60"`
	LogoURL         string `json:"logo_url" validate:"omitempty,url"`
	FaviconURL      string `json:"favicon_url" validate:"omitempty,url"`
	MetaTitle       string `json:"meta_title" validate:"omitempty,max=160"`
	MetaDescription string `json:"meta_description" validate:"omitempty,max=300"`
	AnalyticsID     string `json:"analytics_id" validate:"omitempty,max=40"`
	AutoArticles    bool   `json:"auto_articles"`
	AutoNews        bool   `json:"auto_news"`
	ContentLanguage string `json:"content_language" validate:"omitempty,len=2"`
}

func (p sitePayload) apply(rec *site.Record) {
	rec.Host = p.Host
	rec.DisplayName = p.DisplayName
	rec.Focus = p.Focus
	rec.LogoURL = p.LogoURL
	rec.FaviconURL = p.FaviconURL
	rec.MetaTitle = p.MetaTitle
	rec.MetaDescription = p.MetaDescription
	rec.AnalyticsID = p.AnalyticsID
	rec.AutoArticles = p.AutoArticles
	rec.AutoNews = p.AutoNews
	rec.ContentLanguage = p.ContentLanguage
}

func (h *Handler) createSite(w http.ResponseWriter, r *http.Request) {
	var req sitePayload
	if !h.decode(w, r, &req) {
		return
	}
	var rec site.Record
	req.apply(&rec)
	if err := site.Insert(r.Context(), h.db, &rec); err != nil {
		serverError(w, r, err)
		return
	}
	// New domains start with the full active catalogue, heuristically
	// scored until tracking data accumulates.
	if n, err := bonus.LinkAllToSite(r.Context(), h.db, rec.ID); err != nil {
		zap.S().Warnw("catalogue link failed for new site",
			"site_id", rec.ID, "linked", n, "error", err)
	}
	respond(w, http.StatusCreated, rec)
}

func (h *Handler) updateSite(w http.ResponseWriter, r *http.Request) {
	rec, err := site.ByID(r.Context(), h.db, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			fail(w, r, http.StatusNotFound, "site not found")
			return
		}
		serverError(w, r, err)
		return
	}
	var req sitePayload
	if !h.decode(w, r, &req) {
		return
	}
	req.apply(rec)
	if err := site.Update(r.Context(), h.db, rec); err != nil {
		serverError(w, r, err)
		return
	}
	h.tenants.Invalidate(rec.Host)
	respond(w, http.StatusOK, rec)
}

func (h *Handler) deleteSite(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rec, err := site.ByID(r.Context(), h.db, id)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		serverError(w, r, err)
		return
	}
	if err := site.Delete(r.Context(), h.db, id); err != nil {
		serverError(w, r, err)
		return
	}
	if rec != nil {
		h.tenants.Invalidate(rec.Host)
	}
	respond(w, http.StatusOK, map[string]string{"status": "deleted"})
}

/*───────────────────────────────────────────────────────────────────────────
  Bonus sites
───────────────────────────────────────────────────────────────────────────*/

func (h *Handler) listBonusSites(w http.ResponseWriter, r *http.Request) {
	recs, err := bonus.AllActive(r.Context(), h.db, 200)
	if err != nil {
		serverError(w, r, err)
		return
	}
	respond(w, http.StatusOK, recs)
}

func (h *Handler) createBonusSite(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name         string   `json:"name" validate:"required,max=120"`
		LogoURL      string   `json:"logo_url" validate:"omitempty,url"`
		BonusType    string   `json:"bonus_type" validate:"required,oneof=deneme hosgeldin kayip"`
		BonusAmount  string   `json:"bonus_amount" validate:"required,max=60"`
		AffiliateURL string   `json:"affiliate_url" validate:"required,url"`
		Rating       float64  `json:"rating" validate:"omitempty,gte=0,lte=5"`
		Features     []string `json:"features" validate:"max=10"`
		Turnover     float64  `json:"turnover_requirement" validate:"gte=0"`
		IsGlobal     bool     `json:"is_global"`
		SiteID       string   `json:"site_id"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	rec := bonus.Record{
		Name:         req.Name,
		LogoURL:      req.LogoURL,
		BonusType:    req.BonusType,
		BonusAmount:  req.BonusAmount,
		AffiliateURL: req.AffiliateURL,
		Rating:       req.Rating,
		Features:     req.Features,
		Turnover:     req.Turnover,
		IsActive:     true,
		IsGlobal:     req.IsGlobal,
	}
	if err := bonus.Insert(r.Context(), h.db, &rec); err != nil {
		serverError(w, r, err)
		return
	}
	if req.SiteID != "" {
		if err := bonus.LinkToSite(r.Context(), h.db, req.SiteID, &rec); err != nil {
			serverError(w, r, err)
			return
		}
	}
	respond(w, http.StatusCreated, rec)
}

func (h *Handler) deleteBonusSite(w http.ResponseWriter, r *http.Request) {
	if err := bonus.Delete(r.Context(), h.db, chi.URLParam(r, "id")); err != nil {
		serverError(w, r, err)
		return
	}
	respond(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) linkBonusSite(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SiteID string `json:"site_id" validate:"required"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	rec, err := bonus.ByID(r.Context(), h.db, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			fail(w, r, http.StatusNotFound, "bonus site not found")
			return
		}
		serverError(w, r, err)
		return
	}
	if err := bonus.LinkToSite(r.Context(), h.db, req.SiteID, rec); err != nil {
		serverError(w, r, err)
		return
	}
	respond(w, http.StatusOK, map[string]string{"status": "linked"})
}

func (h *Handler) reorderBonusSites(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SiteID     string   `json:"site_id" validate:"required"`
		OrderedIDs []string `json:"ordered_ids" validate:"required,min=1"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	if err := bonus.Reorder(r.Context(), h.db, req.SiteID, req.OrderedIDs); err != nil {
		serverError(w, r, err)
		return
	}
	respond(w, http.StatusOK, map[string]string{"status": "reordered"})
}

func (h *Handler) updateRankings(w http.ResponseWriter, r *http.Request) {
	siteID := r.URL.Query().Get("site_id")
	if siteID == "" {
		fail(w, r, http.StatusBadRequest, "site_id query parameter required")
		return
	}
	n, err := bonus.UpdateRankings(r.Context(), h.db, siteID)
	if err != nil {
		serverError(w, r, err)
		return
	}
	respond(w, http.StatusOK, map[string]int{"ranked": n})
}

func (h *Handler) sitePerformance(w http.ResponseWriter, r *http.Request) {
	perfs, err := bonus.PerformanceBySite(r.Context(), h.db, chi.URLParam(r, "siteID"))
	if err != nil {
		serverError(w, r, err)
		return
	}
	respond(w, http.StatusOK, perfs)
}

/*───────────────────────────────────────────────────────────────────────────
  Articles and categories
───────────────────────────────────────────────────────────────────────────*/

func (h *Handler) listArticles(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	var (
		recs []article.Record
		err  error
	)
	if siteID := r.URL.Query().Get("site_id"); siteID != "" {
		recs, err = article.PublishedBySite(r.Context(), h.db, siteID, limit)
	} else {
		recs, err = article.Published(r.Context(), h.db, limit)
	}
	if err != nil {
		serverError(w, r, err)
		return
	}
	respond(w, http.StatusOK, recs)
}

type articlePayload struct {
	SiteID      *string  `json:"site_id"`
	Title       string   `json:"title" validate:"required,max=200"`
	Excerpt     string   `json:"excerpt" validate:"omitempty,max=500"`
	Content     string   `json:"content" validate:"required"`
	Category    string   `json:"category" validate:"omitempty,max=60"`
	Tags        []string `json:"tags" validate:"max=15"`
	ImageURL    string   `json:"image_url" validate:"omitempty,url"`
	Author      string   `json:"author" validate:"omitempty,max=80"`
	IsPublished bool     `json:"is_published"`
	SEOTitle    string   `json:"seo_title" validate:"omitempty,max=160"`
	SEODesc     string   `json:"seo_description" validate:"omitempty,max=300"`
}

func (p articlePayload) apply(rec *article.Record) {
	rec.SiteID = p.SiteID
	rec.Title = p.Title
	rec.Excerpt = p.Excerpt
	rec.Content = p.Content
	rec.Category = p.Category
	rec.Tags = p.Tags
	rec.ImageURL = p.ImageURL
	rec.Author = p.Author
	rec.IsPublished = p.IsPublished
	rec.SEOTitle = p.SEOTitle
	rec.SEODesc = p.SEODesc
}

func (h *Handler) createArticle(w http.ResponseWriter, r *http.Request) {
	var req articlePayload
	if !h.decode(w, r, &req) {
		return
	}
	var rec article.Record
	req.apply(&rec)
	if err := article.Insert(r.Context(), h.db, &rec); err != nil {
		serverError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, rec)
}

func (h *Handler) updateArticle(w http.ResponseWriter, r *http.Request) {
	var req articlePayload
	if !h.decode(w, r, &req) {
		return
	}
	rec := article.Record{ID: chi.URLParam(r, "id")}
	req.apply(&rec)
	rec.Slug = article.Slugify(rec.Title)
	if err := article.Update(r.Context(), h.db, &rec); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			fail(w, r, http.StatusNotFound, "article not found")
			return
		}
		serverError(w, r, err)
		return
	}
	respond(w, http.StatusOK, rec)
}

func (h *Handler) deleteArticle(w http.ResponseWriter, r *http.Request) {
	if err := article.Delete(r.Context(), h.db, chi.URLParam(r, "id")); err != nil {
		serverError(w, r, err)
		return
	}
	respond(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	recs, err := category.All(r.Context(), h.db)
	if err != nil {
		serverError(w, r, err)
		return
	}
	respond(w, http.StatusOK, recs)
}

type categoryPayload struct {
	SiteID      *string `json:"site_id"`
	Name        string  `json:"name" validate:"required,max=80"`
	Description string  `json:"description" validate:"omitempty,max=300"`
	Type        string  `json:"type" validate:"omitempty,max=40"`
}

func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryPayload
	if !h.decode(w, r, &req) {
		return
	}
	rec := category.Record{
		SiteID:      req.SiteID,
		Name:        req.Name,
		Description: req.Description,
		Type:        req.Type,
	}
	if err := category.Insert(r.Context(), h.db, &rec); err != nil {
		serverError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, rec)
}

func (h *Handler) updateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryPayload
	if !h.decode(w, r, &req) {
		return
	}
	rec := category.Record{
		ID:          chi.URLParam(r, "id"),
		SiteID:      req.SiteID,
		Name:        req.Name,
		Description: req.Description,
		Type:        req.Type,
	}
	if err := category.Update(r.Context(), h.db, &rec); err != nil {
		serverError(w, r, err)
		return
	}
	respond(w, http.StatusOK, rec)
}

func (h *Handler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := category.Delete(r.Context(), h.db, chi.URLParam(r, "id")); err != nil {
		serverError(w, r, err)
		return
	}
	respond(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) reorderCategories(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OrderedIDs []string `json:"ordered_ids" validate:"required,min=1"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	if err := category.Reorder(r.Context(), h.db, req.OrderedIDs); err != nil {
		serverError(w, r, err)
		return
	}
	respond(w, http.StatusOK, map[string]string{"status": "reordered"})
}
