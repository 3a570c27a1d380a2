// internal/bonus/score.go
//
// Ranking scores.
//
// A bonus site's position on a tenant page is driven by one of two scores:
//
//   - Heuristic  – from catalogue attributes alone; used until the tenant
//     has collected enough impressions (> MinImpressions) to trust the
//     tracked numbers.
//   - Performance – from tracked counters (CTA rate, dwell time, scroll
//     depth).
//
// Both scales are bounded so one runaway attribute cannot dominate.  The
// top two ranked sites are flagged featured.
package bonus

import (
	"regexp"
	"strconv"
	"strings"
)

// MinImpressions is the threshold above which tracked data outweighs the
// heuristic.
const MinImpressions = 10

// FeaturedCount is how many top-ranked sites get the featured flag.
const FeaturedCount = 2

var digitRun = regexp.MustCompile(`\d+`)

// ExtractValue pulls the leading numeric value out of a display amount.
// Thousands separators are dropped first, so "1.000 TL" → 1000 and
// "%15 Kayıp" → 15.
func ExtractValue(amount string) int {
	cleaned := strings.NewReplacer(".", "", ",", "").Replace(amount)
	m := digitRun.FindString(cleaned)
	if m == "" {
		return 0
	}
	n, _ := strconv.Atoi(m)
	return n
}

// HeuristicScore ranks a site on catalogue attributes alone.
//
//	min(bonusValue/25, 40) + max(0, 20-turnover) + rating*4
func HeuristicScore(r *Record) float64 {
	score := minF(float64(r.BonusValue)/25, 40)
	if r.Turnover < 20 {
		score += 20 - r.Turnover
	}
	score += r.Rating * 4
	return score
}

// PerformanceScore ranks a site on tracked counters.
//
//	min(ctaRate*10, 30) + min(avgTime/10, 20) + min(avgScroll/4, 25)
//
// where ctaRate is CTA clicks per hundred impressions.  Zero impressions
// count as one so a fresh row scores 0 rather than dividing by zero.
func PerformanceScore(p *Performance) float64 {
	impressions := p.Impressions
	if impressions < 1 {
		impressions = 1
	}
	ctaRate := float64(p.CTAClicks) / float64(impressions) * 100

	score := minF(ctaRate*10, 30)
	score += minF(p.AvgTimeOnPage/10, 20)
	score += minF(p.AvgScroll/4, 25)
	return score
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
