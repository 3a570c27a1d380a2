// cmd/web/main.go
//
// Entrypoint for the multi-tenant web server.
//
// Boot order: configuration (with .env and vault references resolved),
// logging, the global control-plane database, the tenant cache, and
// finally the hardened HTTP server.  Page routing is tenancy-aware: the
// host resolver classifies every request and picks one of three
// pre-built route tables (admin host, admin-domain public host, plain
// public host).
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/guncelgiris/platform/internal/api"
	"github.com/guncelgiris/platform/internal/auth"
	"github.com/guncelgiris/platform/internal/config"
	"github.com/guncelgiris/platform/internal/content"
	"github.com/guncelgiris/platform/internal/database"
	"github.com/guncelgiris/platform/internal/gate"
	"github.com/guncelgiris/platform/internal/logger"
	"github.com/guncelgiris/platform/internal/middleware"
	"github.com/guncelgiris/platform/internal/server"
	"github.com/guncelgiris/platform/internal/sports"
	"github.com/guncelgiris/platform/internal/tenant"
	"github.com/guncelgiris/platform/internal/track"
	"github.com/guncelgiris/platform/internal/view"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Logger is not up yet.
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log, err := logger.New(cfg.Paths.Root, true)
	if err != nil {
		os.Stderr.WriteString("logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatalw("fatal", "error", err)
	}
}

func run(cfg *config.Config, log *zap.SugaredLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg.Database.GlobalDSN)
	if err != nil {
		return err
	}
	defer db.Close()

	tenants := tenant.New(db, cfg.Admin, tenant.IdleTTL, tenant.MaxEntries)
	defer tenants.Close()

	authSvc := auth.NewService(db, cfg.Admin.JWTSecret, cfg.Admin.TokenTTL)
	g := gate.New(authSvc, cfg.Admin.VerifyTimeout)

	recorder, err := track.NewRecorder(db, cfg.GeoIP.DBPath)
	if err != nil {
		return err
	}
	defer recorder.Close()

	feed := sports.NewFeed(cfg.Sports)
	gen := content.NewGenerator(db, content.NewClient(cfg.AI))
	go content.NewScheduler(db, gen, cfg.AI.AutoInterval).Run(ctx)

	apiHandler := api.New(db, cfg, tenants, authSvc, g, recorder, feed, gen)
	pages := view.NewHandlers(db, feed).Pages()

	srv := server.New(cfg.HTTP.ListenAddr, buildRouter(cfg, tenants, apiHandler, pages, g))

	errc := make(chan error, 1)
	go func() {
		log.Infow("listening", "addr", cfg.HTTP.ListenAddr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		log.Infow("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
	}
	return nil
}

// buildRouter assembles the process-wide handler chain.
func buildRouter(cfg *config.Config, tenants *tenant.Cache, apiHandler *api.Handler,
	pages tenant.Pages, g *gate.Gate) http.Handler {

	// The route table depends only on the tenancy flags, so three
	// routers cover every host.
	adminHost := pageRouter(tenant.Context{IsAdminHost: true, IsAdminDomain: true}, pages, g)
	adminDomain := pageRouter(tenant.Context{IsAdminDomain: true}, pages, g)
	publicOnly := pageRouter(tenant.Context{}, pages, g)

	pageSwitch := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flags, _ := tenant.FlagsFromContext(r.Context())
		switch {
		case flags.IsAdminHost:
			adminHost.ServeHTTP(w, r)
		case flags.IsAdminDomain:
			adminDomain.ServeHTTP(w, r)
		default:
			publicOnly.ServeHTTP(w, r)
		}
	})

	corsMW := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORS.Origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: cfg.CORS.AllowCredentials,
	})

	root := chi.NewRouter()
	root.Use(middleware.RequestID)
	root.Use(middleware.AccessLog)
	root.Use(middleware.Secure)
	root.Use(middleware.ForceHTTPS(cfg.HTTP.ForceHTTPS))
	root.Use(resolveTenant(tenants, cfg.Admin))

	root.Handle("/metrics", promhttp.Handler())
	root.Handle("/static/*", view.Static())
	root.Mount("/api", corsMW.Handler(apiHandler.Routes()))
	root.Mount("/", pageSwitch)

	return root
}

func pageRouter(c tenant.Context, pages tenant.Pages, g *gate.Gate) chi.Router {
	r := chi.NewRouter()
	tenant.Mount(r, c, pages, g.Protect)
	return r
}

// resolveTenant classifies the request host and attaches the tenant (when
// one exists) plus the tenancy flags to the context.  Unknown hosts are
// not an error: they serve the default shell with default flags.
func resolveTenant(tenants *tenant.Cache, adm config.Admin) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			flags := tenant.Classify(r.Host, adm)

			t, err := tenants.Get(r.Host)
			switch {
			case err == nil:
				ctx = tenant.WithTenant(ctx, t)
				flags = t.Flags
			case errors.Is(err, tenant.ErrNotFound):
				// Default shell.
			default:
				zap.S().Warnw("tenant resolution failed", "host", r.Host, "error", err)
			}

			ctx = tenant.WithFlags(ctx, flags)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
