// internal/api/api.go
//
// JSON API surface.
//
// Context
// -------
// One handler set serves both the public endpoints (site bootstrap,
// tracking, sports feed, auth) and the session-gated admin endpoints
// (site/bonus/article/category management, rankings, content generation,
// dashboard stats).  Everything speaks JSON; errors carry the request ID
// so an operator can line a client report up with the access log.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/guncelgiris/platform/internal/auth"
	"github.com/guncelgiris/platform/internal/config"
	"github.com/guncelgiris/platform/internal/content"
	"github.com/guncelgiris/platform/internal/gate"
	"github.com/guncelgiris/platform/internal/middleware"
	"github.com/guncelgiris/platform/internal/sports"
	"github.com/guncelgiris/platform/internal/tenant"
	"github.com/guncelgiris/platform/internal/track"
)

// Version is stamped by the build; the default marks dev builds.
var Version = "dev"

// Handler bundles the API's dependencies.
type Handler struct {
	db       *sqlx.DB
	cfg      *config.Config
	tenants  *tenant.Cache
	auth     *auth.Service
	gate     *gate.Gate
	recorder *track.Recorder
	feed     *sports.Feed
	gen      *content.Generator
	validate *validator.Validate
}

// New wires the handler set.
func New(db *sqlx.DB, cfg *config.Config, tenants *tenant.Cache,
	authSvc *auth.Service, g *gate.Gate, rec *track.Recorder,
	feed *sports.Feed, gen *content.Generator) *Handler {
	return &Handler{
		db:       db,
		cfg:      cfg,
		tenants:  tenants,
		auth:     authSvc,
		gate:     g,
		recorder: rec,
		feed:     feed,
		gen:      gen,
		validate: validator.New(),
	}
}

/*───────────────────────────────────────────────────────────────────────────
  JSON plumbing
───────────────────────────────────────────────────────────────────────────*/

const maxBodyBytes = 1 << 20

// respond writes v as JSON with the given status.
func respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.S().Errorw("response encode failed", "error", err)
	}
}

// fail writes the standard error envelope.
func fail(w http.ResponseWriter, r *http.Request, status int, msg string) {
	respond(w, status, map[string]string{
		"error":      msg,
		"request_id": middleware.RequestIDFrom(r.Context()),
	})
}

// serverError logs the cause and answers with a generic 500.
func serverError(w http.ResponseWriter, r *http.Request, err error) {
	zap.S().Errorw("api error",
		"request_id", middleware.RequestIDFrom(r.Context()),
		"path", r.URL.Path,
		"error", err)
	fail(w, r, http.StatusInternalServerError, "internal server error")
}

func contextWithTimeout(r *http.Request, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), d)
}

// decode reads, parses, and validates the request body into dst.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer io.Copy(io.Discard, body)

	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		fail(w, r, http.StatusBadRequest, "malformed JSON body")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fail(w, r, http.StatusUnprocessableEntity,
				"invalid field: "+verrs[0].Field())
			return false
		}
		fail(w, r, http.StatusUnprocessableEntity, "invalid request body")
		return false
	}
	return true
}
