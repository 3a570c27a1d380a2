// internal/tenant/routes.go
//
// Route table construction.
//
// Context
// -------
// The navigable routes of a request depend only on the tenancy flags.  The
// table is rebuilt (not cached) for every router construction so it is
// always correct for the host being served, and the pure `BuildRoutes`
// form keeps the gating rules testable without HTTP:
//
//   • Admin host         – ONLY /admin-login, /admin (gated), and a
//     catch-all redirect to /admin-login.  No public route is reachable on
//     the admin host, even by direct URL.
//   • Public admin-domain host (localhost, preview, or unconfigured split)
//     – the public set plus the admin pair.
//   • Public non-admin-domain host – the public set, and every /admin*
//     path redirects to the home route.  The redirect deliberately mimics
//     “page does not exist” rather than “please log in”, so arbitrary
//     tenant domains never advertise that an admin surface exists.
//
// Mount translates the table onto a chi router; the caller supplies the
// page handlers and the auth guard, keeping this package free of session
// concerns.
package tenant

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Page identifies what a route renders.  Redirect pages carry their target
// in the mounting logic, not in handlers.
type Page string

const (
	PageHome          Page = "home"
	PageBonusGuide    Page = "bonus-guide"
	PageSportsNews    Page = "sports-news"
	PageArticle       Page = "article"
	PageMatchDetail   Page = "match-detail"
	PageAdminLogin    Page = "admin-login"
	PageAdmin         Page = "admin"
	PageRedirectLogin Page = "redirect-login" // → /admin-login
	PageRedirectHome  Page = "redirect-home"  // → /
)

// Route is one entry of the ordered route table.
type Route struct {
	Pattern      string
	Page         Page
	RequiresAuth bool
}

// publicRoutes is the marketing surface every tenant serves.
var publicRoutes = []Route{
	{Pattern: "/", Page: PageHome},
	{Pattern: "/deneme-bonusu", Page: PageBonusGuide},
	{Pattern: "/hosgeldin-bonusu", Page: PageBonusGuide},
	{Pattern: "/bonus/{type}", Page: PageBonusGuide},
	{Pattern: "/spor-haberleri", Page: PageSportsNews},
	{Pattern: "/makale/{slug}", Page: PageArticle},
	{Pattern: "/mac/{slug}", Page: PageMatchDetail},
}

// BuildRoutes returns the ordered route table for one tenancy context.
// When the flags conflict (cannot happen through Classify), the admin-host
// branch wins.
func BuildRoutes(c Context) []Route {
	if c.IsAdminHost {
		return []Route{
			{Pattern: "/admin-login", Page: PageAdminLogin},
			{Pattern: "/admin", Page: PageAdmin, RequiresAuth: true},
			{Pattern: "/*", Page: PageRedirectLogin},
		}
	}

	routes := make([]Route, 0, len(publicRoutes)+2)
	routes = append(routes, publicRoutes...)

	if c.IsAdminDomain {
		routes = append(routes,
			Route{Pattern: "/admin-login", Page: PageAdminLogin},
			Route{Pattern: "/admin", Page: PageAdmin, RequiresAuth: true},
		)
	} else {
		routes = append(routes,
			Route{Pattern: "/admin", Page: PageRedirectHome},
			Route{Pattern: "/admin/*", Page: PageRedirectHome},
			Route{Pattern: "/admin-login", Page: PageRedirectHome},
		)
	}
	return routes
}

// Pages maps renderable page identifiers to their handlers.  Redirect
// pages are resolved internally by Mount and need no entry.
type Pages map[Page]http.Handler

// Mount walks the route table and registers handlers on r.  guard wraps
// every RequiresAuth route; it must implement the admin session gate.
func Mount(r chi.Router, c Context, pages Pages, guard func(http.Handler) http.Handler) {
	for _, rt := range BuildRoutes(c) {
		var h http.Handler
		switch rt.Page {
		case PageRedirectLogin:
			h = redirect("/admin-login")
		case PageRedirectHome:
			h = redirect("/")
		default:
			h = pages[rt.Page]
			if h == nil {
				h = http.NotFoundHandler()
			}
		}
		if rt.RequiresAuth && guard != nil {
			h = guard(h)
		}
		if rt.Pattern == "/*" {
			// chi treats the catch-all as NotFound territory; register it
			// as such so explicit patterns keep precedence.
			r.NotFound(h.ServeHTTP)
			continue
		}
		r.Handle(rt.Pattern, h)
	}
}

func redirect(target string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, target, http.StatusTemporaryRedirect)
	})
}
