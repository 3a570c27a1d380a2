// internal/article/slug.go
//
// Slug helper.
//
// • Slugify(title) ─ converts arbitrary text into a URL-safe slug restricted
//   to ASCII a-z, 0-9 and “-”.
//
// Rules
// -----
// 1. Lower-case everything.
// 2. Transliterate Turkish letters (ı→i, ş→s, ğ→g, ü→u, ö→o, ç→c) so
//    "Çevrim Şartı" becomes "cevrim-sarti", not "evrim-art".
// 3. Convert any remaining run of non-[a-z0-9] characters to one “-”.
// 4. Trim leading / trailing “-”.
// 5. If the result is empty, return "icerik".
//
// Notes
// -----
// • Slugs are max 100 bytes; callers may truncate earlier if they prefer.

package article

import "strings"

var turkish = strings.NewReplacer(
	"ı", "i", "İ", "i",
	"ş", "s", "Ş", "s",
	"ğ", "g", "Ğ", "g",
	"ü", "u", "Ü", "u",
	"ö", "o", "Ö", "o",
	"ç", "c", "Ç", "c",
)

// Slugify converts title → lower-kebab ASCII with Turkish transliteration.
func Slugify(title string) string {
	title = turkish.Replace(title)

	var b strings.Builder
	b.Grow(len(title))

	lastWasDash := false
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastWasDash = false
		default:
			// any non-ASCII or punctuation becomes a single dash
			if !lastWasDash {
				b.WriteRune('-')
				lastWasDash = true
			}
		}
	}

	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		return "icerik"
	}
	if len(slug) > 100 {
		slug = slug[:100]
		slug = strings.TrimRightFunc(slug, func(r rune) bool { return r == '-' })
	}
	return slug
}
