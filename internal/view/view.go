// internal/view/view.go
//
// Server-rendered page shells.
//
// Context
// -------
// Every public page shares one layout that injects the tenant's SEO meta
// (title, description, favicon, analytics snippet) before the page body.
// Templates are embedded so the binary ships self-contained.
package view

import (
	"embed"
	"html/template"
	"net/http"

	"go.uber.org/zap"

	"github.com/guncelgiris/platform/internal/tenant"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Renderer executes embedded templates against per-request data.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses the embedded template set.  Parse errors are
// programmer errors and panic at startup, not at request time.
func NewRenderer() *Renderer {
	funcs := template.FuncMap{
		// Article bodies are produced by the content pipeline, not by
		// visitors, so rendering them unescaped is acceptable.
		"safeHTML": func(s string) template.HTML { return template.HTML(s) },
	}
	return &Renderer{
		tmpl: template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.tmpl")),
	}
}

// Data is the envelope handed to every page template.
type Data struct {
	// SEO head, resolved from the tenant (with neutral fallbacks).
	Title       string
	Description string
	LogoURL     string
	FaviconURL  string
	AnalyticsID string
	SiteName    string

	// Page body payload; each template asserts its own shape.
	Page any
}

// Render executes the named page inside the layout.
func (rn *Renderer) Render(w http.ResponseWriter, name string, d Data) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := rn.tmpl.ExecuteTemplate(w, name, d); err != nil {
		zap.S().Errorw("template render failed", "template", name, "error", err)
	}
}

// baseData seeds the envelope from the request's tenant.  Unknown hosts
// get a neutral shell rather than an error page.
func baseData(r *http.Request) Data {
	d := Data{
		Title:       "Güncel Bonus Rehberi",
		Description: "Güncel deneme bonusu ve hoşgeldin bonusu kampanyaları.",
		SiteName:    "Bonus Rehberi",
	}
	t := tenant.FromContext(r.Context())
	if t == nil {
		return d
	}
	if t.Site.MetaTitle != "" {
		d.Title = t.Site.MetaTitle
	}
	if t.Site.MetaDescription != "" {
		d.Description = t.Site.MetaDescription
	}
	if t.Site.DisplayName != "" {
		d.SiteName = t.Site.DisplayName
	}
	d.LogoURL = t.Site.LogoURL
	d.FaviconURL = t.Site.FaviconURL
	d.AnalyticsID = t.Site.AnalyticsID
	return d
}
