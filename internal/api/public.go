// internal/api/public.go
//
// Unauthenticated endpoints: tenant bootstrap, the sports feed, tracking
// ingestion, and the auth trio.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/guncelgiris/platform/internal/article"
	"github.com/guncelgiris/platform/internal/auth"
	"github.com/guncelgiris/platform/internal/bonus"
	"github.com/guncelgiris/platform/internal/tenant"
	"github.com/guncelgiris/platform/internal/track"
)

/*───────────────────────────────────────────────────────────────────────────
  Tenant bootstrap
───────────────────────────────────────────────────────────────────────────*/

// siteBootstrap resolves a hostname to its site record, config map, and
// the content the shell renders first: the ranked bonus catalogue and the
// published articles.  Unknown hosts answer with a neutral default payload
// backed by the global catalogue instead of 404 so a freshly pointed
// domain renders immediately.
func (h *Handler) siteBootstrap(w http.ResponseWriter, r *http.Request) {
	host := chi.URLParam(r, "hostname")
	t, err := h.tenants.Get(host)
	if err != nil {
		if errors.Is(err, tenant.ErrNotFound) {
			respond(w, http.StatusOK, map[string]any{
				"host":         tenant.Normalize(host),
				"display_name": "Güncel Bonus Rehberi",
				"is_default":   true,
				"config":       map[string]string{},
				"bonus_sites":  h.bootstrapBonuses(r, ""),
				"articles":     h.bootstrapArticles(r, ""),
			})
			return
		}
		serverError(w, r, err)
		return
	}
	respond(w, http.StatusOK, map[string]any{
		"site":        t.Site,
		"config":      t.Config,
		"is_default":  false,
		"bonus_sites": h.bootstrapBonuses(r, t.Site.ID),
		"articles":    h.bootstrapArticles(r, t.Site.ID),
	})
}

// bootstrapBonuses is best effort: the shell must render even when the
// catalogue query fails, so errors degrade to an empty list.
func (h *Handler) bootstrapBonuses(r *http.Request, siteID string) []bonus.Ranked {
	if siteID != "" {
		ranked, err := bonus.RankedBySite(r.Context(), h.db, siteID, 20)
		if err == nil && len(ranked) > 0 {
			return ranked
		}
		if err != nil {
			zap.S().Warnw("bootstrap ranked query failed", "site_id", siteID, "error", err)
		}
	}
	all, err := bonus.AllActive(r.Context(), h.db, 20)
	if err != nil {
		zap.S().Warnw("bootstrap catalogue query failed", "error", err)
		return []bonus.Ranked{}
	}
	ranked := make([]bonus.Ranked, len(all))
	for i, rec := range all {
		ranked[i] = bonus.Ranked{Record: rec, Rank: i + 1}
	}
	return ranked
}

func (h *Handler) bootstrapArticles(r *http.Request, siteID string) []article.Record {
	var (
		recs []article.Record
		err  error
	)
	if siteID != "" {
		recs, err = article.PublishedBySite(r.Context(), h.db, siteID, 10)
	} else {
		recs, err = article.Published(r.Context(), h.db, 10)
	}
	if err != nil {
		zap.S().Warnw("bootstrap article query failed", "error", err)
		return []article.Record{}
	}
	return recs
}

func (h *Handler) sportsMatches(w http.ResponseWriter, r *http.Request) {
	matches := h.feed.Matches(r.Context())
	if league := r.URL.Query().Get("league"); league != "" {
		kept := matches[:0:0]
		for _, m := range matches {
			if strings.EqualFold(m.League, league) {
				kept = append(kept, m)
			}
		}
		matches = kept
	}
	respond(w, http.StatusOK, map[string]any{
		"matches": matches,
		"static":  h.feed.FromStatic(),
	})
}

/*───────────────────────────────────────────────────────────────────────────
  Tracking
───────────────────────────────────────────────────────────────────────────*/

// requestMeta derives the enrichment for tracking calls.
func requestMeta(r *http.Request) track.Meta {
	return track.Meta{
		UserAgent:  r.UserAgent(),
		AcceptLang: r.Header.Get("Accept-Language"),
		IP:         track.ClientIP(r.RemoteAddr, r.Header.Get("X-Forwarded-For")),
	}
}

// tenantID attaches the resolved tenant to events that arrived without
// one; client scripts do not know their site row ID.
func (h *Handler) tenantID(r *http.Request) string {
	if t := tenant.FromContext(r.Context()); t != nil {
		return t.Site.ID
	}
	return ""
}

func (h *Handler) trackEvent(w http.ResponseWriter, r *http.Request) {
	var ev track.Event
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&ev); err != nil {
		fail(w, r, http.StatusBadRequest, "malformed JSON body")
		return
	}
	if ev.TenantID == "" {
		ev.TenantID = h.tenantID(r)
	}
	if err := h.recorder.Record(r.Context(), ev, requestMeta(r)); err != nil {
		if errors.Is(err, track.ErrUnknownEvent) {
			fail(w, r, http.StatusBadRequest, "unknown event type")
			return
		}
		serverError(w, r, err)
		return
	}
	respond(w, http.StatusAccepted, map[string]string{"status": "recorded"})
}

func (h *Handler) trackBatch(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Events []track.Event `json:"events"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&payload); err != nil {
		fail(w, r, http.StatusBadRequest, "malformed JSON body")
		return
	}
	if len(payload.Events) == 0 {
		fail(w, r, http.StatusBadRequest, "empty batch")
		return
	}
	if len(payload.Events) > 100 {
		fail(w, r, http.StatusBadRequest, "batch too large")
		return
	}

	tid := h.tenantID(r)
	for i := range payload.Events {
		if payload.Events[i].TenantID == "" {
			payload.Events[i].TenantID = tid
		}
	}

	n, err := h.recorder.RecordBatch(r.Context(), payload.Events, requestMeta(r))
	if err != nil {
		if n == 0 {
			if errors.Is(err, track.ErrUnknownEvent) {
				fail(w, r, http.StatusBadRequest, "unknown event type")
				return
			}
			serverError(w, r, err)
			return
		}
		// Partial ingest: earlier rows are written, the rest were not.
		respond(w, http.StatusAccepted, map[string]int{
			"recorded": n,
			"dropped":  len(payload.Events) - n,
		})
		return
	}
	respond(w, http.StatusAccepted, map[string]int{"recorded": n})
}

/*───────────────────────────────────────────────────────────────────────────
  Auth
───────────────────────────────────────────────────────────────────────────*/

// authLogin checks credentials and issues the session.  Hosts outside
// the admin domain never reach verification; login is refused outright
// so public tenant domains stay inert.
func (h *Handler) authLogin(w http.ResponseWriter, r *http.Request) {
	if flags, ok := tenant.FlagsFromContext(r.Context()); ok && !flags.IsAdminDomain {
		fail(w, r, http.StatusNotFound, "not found")
		return
	}

	var req struct {
		Username string `json:"username" validate:"required,min=2,max=64"`
		Password string `json:"password" validate:"required,min=4,max=128"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	token, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			fail(w, r, http.StatusUnauthorized, "invalid credentials")
			return
		}
		serverError(w, r, err)
		return
	}

	auth.SetSession(w, r, token, req.Username, h.cfg.Admin.TokenTTL)
	respond(w, http.StatusOK, map[string]string{
		"token":    token,
		"username": req.Username,
	})
}

// authVerify revalidates the presented token; the gate's fail-closed
// semantics apply here too.
func (h *Handler) authVerify(w http.ResponseWriter, r *http.Request) {
	token, ok := auth.TokenFromRequest(r)
	if !ok {
		fail(w, r, http.StatusUnauthorized, "no session")
		return
	}
	ctx, cancel := contextWithTimeout(r, h.cfg.Admin.VerifyTimeout)
	defer cancel()

	username, err := h.auth.Verify(ctx, token)
	if err != nil {
		auth.ClearSession(w)
		fail(w, r, http.StatusUnauthorized, "session invalid")
		return
	}
	respond(w, http.StatusOK, map[string]any{
		"valid":    true,
		"username": username,
	})
}

func (h *Handler) authLogout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSession(w)
	respond(w, http.StatusOK, map[string]string{"status": "logged out"})
}
