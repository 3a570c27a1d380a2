// internal/view/view_test.go
//
// Template-set sanity: the embedded set must parse, and every page the
// route table can reach must render without error against realistic data.

package view

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/guncelgiris/platform/internal/article"
	"github.com/guncelgiris/platform/internal/bonus"
	"github.com/guncelgiris/platform/internal/sports"
)

func TestRenderer_AllPagesRender(t *testing.T) {
	rn := NewRenderer()

	pages := map[string]any{
		"home": struct {
			Bonuses  []bonus.Ranked
			Articles []article.Record
		}{
			Bonuses: []bonus.Ranked{{
				Record: bonus.Record{ID: "b1", Name: "BetKral", BonusAmount: "500 TL",
					Rating: 4.8, Features: []string{"Çevrimsiz"}, AffiliateURL: "https://x"},
				IsFeatured: true, Rank: 1,
			}},
			Articles: []article.Record{{Title: "Başlık", Slug: "baslik", Excerpt: "özet"}},
		},
		"bonus_guide": struct {
			BonusType string
			Bonuses   []bonus.Ranked
		}{BonusType: "deneme"},
		"sports_news": struct {
			Matches  []sports.Match
			Articles []article.Record
		}{
			Matches: []sports.Match{{HomeTeam: "A", AwayTeam: "B", Status: "NS",
				Slug: "a-b", KickOff: time.Now()}},
		},
		"article": &article.Record{Title: "Başlık", Author: "Editör",
			Content: "<p>gövde</p>", CreatedAt: time.Now()},
		"match_detail": &sports.Match{HomeTeam: "A", AwayTeam: "B", Status: "2H",
			HomeGoal: 1, AwayGoal: 0, Live: true, League: "Süper Lig"},
		"admin_login": nil,
		"admin_panel": nil,
	}

	for name, payload := range pages {
		rec := httptest.NewRecorder()
		rn.Render(rec, name, Data{Title: "t", Description: "d", SiteName: "s", Page: payload})
		body := rec.Body.String()
		if !strings.Contains(body, "</html>") {
			t.Errorf("page %q did not render to completion:\n%s", name, body)
		}
	}
}

func TestRender_ArticleBodyIsUnescaped(t *testing.T) {
	rn := NewRenderer()
	rec := httptest.NewRecorder()
	rn.Render(rec, "article", Data{
		Page: &article.Record{Title: "t", Content: "<p>paragraf</p>", CreatedAt: time.Now()},
	})
	if !strings.Contains(rec.Body.String(), "<p>paragraf</p>") {
		t.Error("article body was escaped")
	}
}

func TestRender_AnalyticsSnippetOnlyWhenConfigured(t *testing.T) {
	rn := NewRenderer()

	rec := httptest.NewRecorder()
	rn.Render(rec, "admin_login", Data{AnalyticsID: "G-TEST123"})
	if !strings.Contains(rec.Body.String(), "G-TEST123") {
		t.Error("analytics snippet missing when ID configured")
	}

	rec = httptest.NewRecorder()
	rn.Render(rec, "admin_login", Data{})
	if strings.Contains(rec.Body.String(), "googletagmanager") {
		t.Error("analytics snippet present without an ID")
	}
}

func TestStatic_ServesAssets(t *testing.T) {
	h := Static()
	for _, path := range []string{"/static/site.css", "/static/track.js", "/static/admin.js"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s: status %d", path, rec.Code)
		}
	}
}
