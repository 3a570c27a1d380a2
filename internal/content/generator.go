// internal/content/generator.go
//
// Auto-content engine: picks a topic, asks the completion client for a
// Turkish SEO article, and files the result into the article pool.
//
// Notes
// -----
// Duplicate protection runs on the title before the (expensive) model
// call and on the content hash after it, so a flaky scheduler cannot
// fill a tenant with near-identical copies.
package content

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/guncelgiris/platform/internal/article"
)

// Default rotation of article topics when the caller supplies none.
var defaultTopics = []string{
	"Deneme bonusu veren siteler nasıl seçilir",
	"Çevrimsiz bonus nedir, nasıl kullanılır",
	"Hoşgeldin bonusu karşılaştırması",
	"Bahis sitelerinde güvenlik kontrol listesi",
	"Canlı bahis stratejileri ve bankroll yönetimi",
	"Free spin kampanyaları rehberi",
	"Yatırım şartsız bonus fırsatları",
	"Mobil bahis uygulamaları incelemesi",
}

const systemPrompt = `Sen Türkçe yazan deneyimli bir SEO içerik editörüsün.
Bahis ve bonus konularında bilgilendirici, özgün makaleler yazarsın.
Çıktıyı şu JSON şemasıyla ver:
{"title": "...", "excerpt": "...", "content": "...", "seo_title": "...", "seo_description": "...", "tags": ["..."]}
content alanı HTML paragraflarından oluşmalı ve en az 600 kelime olmalı.`

// Generator produces and stores articles.
type Generator struct {
	db     *sqlx.DB
	client *Client
	rnd    *rand.Rand
}

func NewGenerator(db *sqlx.DB, client *Client) *Generator {
	return &Generator{
		db:     db,
		client: client,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Enabled mirrors the client.
func (g *Generator) Enabled() bool { return g.client.Enabled() }

type generated struct {
	Title    string   `json:"title"`
	Excerpt  string   `json:"excerpt"`
	Content  string   `json:"content"`
	SEOTitle string   `json:"seo_title"`
	SEODesc  string   `json:"seo_description"`
	Tags     []string `json:"tags"`
}

// Generate writes one article for the given tenant (nil for the global
// pool).  Topic may be empty, in which case one is chosen from the
// rotation.  Returns the stored record, or nil when the topic was skipped
// as a duplicate.
func (g *Generator) Generate(ctx context.Context, siteID *string, topic, category string) (*article.Record, error) {
	if topic == "" {
		topic = defaultTopics[g.rnd.Intn(len(defaultTopics))]
	}
	if category == "" {
		category = "bonus"
	}

	exists, err := article.TitleExists(ctx, g.db, siteID, topic)
	if err != nil {
		return nil, err
	}
	if exists {
		zap.S().Infow("auto-content topic skipped, title exists", "topic", topic)
		return nil, nil
	}

	user := fmt.Sprintf("Konu: %s\nKategori: %s\nYıl: %d", topic, category, time.Now().Year())
	raw, err := g.client.Complete(ctx, systemPrompt, user)
	if err != nil {
		return nil, err
	}

	var out generated
	if err := json.Unmarshal([]byte(stripFences(raw)), &out); err != nil {
		return nil, fmt.Errorf("content: model returned non-JSON payload: %w", err)
	}
	if out.Title == "" || out.Content == "" {
		return nil, fmt.Errorf("content: model payload missing title or body")
	}

	rec := &article.Record{
		SiteID:        siteID,
		Title:         out.Title,
		Excerpt:       out.Excerpt,
		Content:       out.Content,
		Category:      category,
		Tags:          out.Tags,
		Author:        "Editör",
		IsPublished:   true,
		IsAIGenerated: true,
		IsAuto:        true,
		SEOTitle:      out.SEOTitle,
		SEODesc:       out.SEODesc,
	}
	if err := article.Insert(ctx, g.db, rec); err != nil {
		return nil, err
	}
	zap.S().Infow("auto article stored", "slug", rec.Slug, "site", siteID)
	return rec, nil
}

// GenerateBulk produces up to n articles, skipping duplicate topics.
// Failures after the first stored article are logged, not returned, so a
// mid-run provider hiccup keeps what was already written.
func (g *Generator) GenerateBulk(ctx context.Context, siteID *string, n int) ([]article.Record, error) {
	if n <= 0 || n > len(defaultTopics) {
		n = len(defaultTopics)
	}
	topics := append([]string(nil), defaultTopics...)
	g.rnd.Shuffle(len(topics), func(i, j int) { topics[i], topics[j] = topics[j], topics[i] })

	var out []article.Record
	for _, topic := range topics[:n] {
		rec, err := g.Generate(ctx, siteID, topic, "")
		if err != nil {
			if len(out) == 0 {
				return nil, err
			}
			zap.S().Warnw("bulk generation stopped early", "stored", len(out), "error", err)
			break
		}
		if rec != nil {
			out = append(out, *rec)
		}
	}
	return out, nil
}

// SEOReport asks the model for a short weekly content plan based on the
// titles already published for the tenant.
func (g *Generator) SEOReport(ctx context.Context, siteID *string) (string, error) {
	var (
		recs []article.Record
		err  error
	)
	if siteID == nil {
		recs, err = article.Published(ctx, g.db, 25)
	} else {
		recs, err = article.PublishedBySite(ctx, g.db, *siteID, 25)
	}
	if err != nil {
		return "", err
	}
	var titles []string
	for _, r := range recs {
		titles = append(titles, "- "+r.Title)
	}
	user := "Mevcut makaleler:\n" + strings.Join(titles, "\n") +
		"\n\nBu listeye göre önümüzdeki hafta için 5 yeni içerik önerisi ve kısa bir SEO değerlendirmesi yaz."
	return g.client.Complete(ctx,
		"Sen bir SEO danışmanısın. Kısa ve maddeler halinde Türkçe raporlar yazarsın.", user)
}

// stripFences removes a markdown code fence the model sometimes wraps
// around JSON output.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if i := strings.LastIndex(s, "```"); i >= 0 {
			s = s[:i]
		}
	}
	return strings.TrimSpace(s)
}
