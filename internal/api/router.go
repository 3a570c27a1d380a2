// internal/api/router.go
//
// Route layout for /api.  Admin management routes sit behind the session
// gate; tenancy still applies, so the gate's domain check runs with the
// flags the host resolver stored on the request.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/guncelgiris/platform/internal/middleware"
)

// Routes mounts the whole API onto a fresh chi router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	rl := middleware.NewRateLimiter(h.cfg.RateLimit.Requests, h.cfg.RateLimit.Window)
	r.Use(rl.Handler)

	// Public surface.
	r.Get("/health", h.health)
	r.Get("/version", h.version)
	r.Get("/db-check", h.dbCheck)
	r.Get("/site/{hostname}", h.siteBootstrap)
	r.Get("/sports/matches", h.sportsMatches)
	r.Post("/track/event", h.trackEvent)
	r.Post("/track/batch", h.trackBatch)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.authLogin)
		r.Get("/verify", h.authVerify)
		r.Post("/logout", h.authLogout)
	})

	// Admin surface.
	r.Group(func(r chi.Router) {
		r.Use(h.gate.ProtectAPI)

		r.Route("/sites", func(r chi.Router) {
			r.Get("/", h.listSites)
			r.Post("/", h.createSite)
			r.Put("/{id}", h.updateSite)
			r.Delete("/{id}", h.deleteSite)
		})

		r.Route("/bonus-sites", func(r chi.Router) {
			r.Get("/", h.listBonusSites)
			r.Post("/", h.createBonusSite)
			r.Delete("/{id}", h.deleteBonusSite)
			r.Post("/reorder", h.reorderBonusSites)
			r.Post("/{id}/link", h.linkBonusSite)
		})

		r.Route("/articles", func(r chi.Router) {
			r.Get("/", h.listArticles)
			r.Post("/", h.createArticle)
			r.Put("/{id}", h.updateArticle)
			r.Delete("/{id}", h.deleteArticle)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", h.listCategories)
			r.Post("/", h.createCategory)
			r.Put("/{id}", h.updateCategory)
			r.Delete("/{id}", h.deleteCategory)
			r.Post("/reorder", h.reorderCategories)
		})

		r.Route("/ai", func(r chi.Router) {
			r.Post("/generate-article", h.generateArticle)
			r.Post("/generate-bulk", h.generateBulk)
			r.Get("/seo-report", h.seoReport)
		})

		r.Post("/update-rankings", h.updateRankings)
		r.Get("/performance/{siteID}", h.sitePerformance)
		r.Get("/stats/dashboard", h.dashboardStats)
		r.Post("/seed", h.seed)
	})

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) version(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, map[string]string{"version": Version})
}

func (h *Handler) dbCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r, 2*time.Second)
	defer cancel()
	if err := h.db.PingContext(ctx); err != nil {
		fail(w, r, http.StatusServiceUnavailable, "database unreachable")
		return
	}
	respond(w, http.StatusOK, map[string]string{"database": "ok"})
}
