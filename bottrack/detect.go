// Package bottrack recognises crawlers from their User-Agent and reports
// their page views to the bot-tracking endpoint.
package bottrack

import "strings"

// Categories of crawler.
const (
	CategoryAI      = "ai"
	CategorySearch  = "search"
	CategorySocial  = "social"
	CategorySEO     = "seo"
	CategoryGeneric = "generic"
)

// MethodUserAgent is the only detection method: substring match on the
// User-Agent header.
const MethodUserAgent = "user-agent"

// Signature maps a lowercase User-Agent token to a named bot.
type Signature struct {
	Token      string
	Name       string
	Category   string
	Confidence float64
}

// Signatures are checked in order; the first match wins. AI crawlers come
// first because several of them also carry generic "bot" tokens.
var Signatures = []Signature{
	{"gptbot", "GPTBot", CategoryAI, 0.95},
	{"chatgpt-user", "ChatGPT-User", CategoryAI, 0.95},
	{"oai-searchbot", "OAI-SearchBot", CategoryAI, 0.95},
	{"claudebot", "ClaudeBot", CategoryAI, 0.95},
	{"claude-web", "Claude-Web", CategoryAI, 0.95},
	{"anthropic-ai", "Anthropic", CategoryAI, 0.95},
	{"perplexitybot", "PerplexityBot", CategoryAI, 0.95},
	{"perplexity-user", "Perplexity-User", CategoryAI, 0.95},
	{"google-extended", "Google-Extended", CategoryAI, 0.95},
	{"ccbot", "CCBot", CategoryAI, 0.9},
	{"bytespider", "Bytespider", CategoryAI, 0.9},
	{"amazonbot", "Amazonbot", CategoryAI, 0.9},
	{"applebot-extended", "Applebot-Extended", CategoryAI, 0.95},
	{"meta-externalagent", "Meta-ExternalAgent", CategoryAI, 0.9},
	{"cohere-ai", "Cohere", CategoryAI, 0.9},
	{"youbot", "YouBot", CategoryAI, 0.9},
	{"diffbot", "Diffbot", CategoryAI, 0.85},

	{"googlebot", "Googlebot", CategorySearch, 0.9},
	{"bingbot", "Bingbot", CategorySearch, 0.9},
	{"duckduckbot", "DuckDuckBot", CategorySearch, 0.9},
	{"yandex", "Yandex", CategorySearch, 0.85},
	{"baiduspider", "Baidu", CategorySearch, 0.85},
	{"applebot", "Applebot", CategorySearch, 0.9},
	{"slurp", "Yahoo Slurp", CategorySearch, 0.85},

	{"facebookexternalhit", "Facebook", CategorySocial, 0.9},
	{"twitterbot", "Twitterbot", CategorySocial, 0.9},
	{"linkedinbot", "LinkedIn", CategorySocial, 0.9},
	{"pinterestbot", "Pinterest", CategorySocial, 0.9},
	{"slackbot", "Slackbot", CategorySocial, 0.85},
	{"discordbot", "Discordbot", CategorySocial, 0.85},

	{"ahrefsbot", "Ahrefs", CategorySEO, 0.9},
	{"semrushbot", "SEMrush", CategorySEO, 0.9},
	{"mj12bot", "Majestic", CategorySEO, 0.9},
	{"dotbot", "Moz", CategorySEO, 0.85},

	{"crawler", "Generic Crawler", CategoryGeneric, 0.6},
	{"spider", "Generic Spider", CategoryGeneric, 0.6},
	{"scrape", "Generic Scraper", CategoryGeneric, 0.6},
	{"headlesschrome", "Headless Chrome", CategoryGeneric, 0.5},
	{"python-requests", "python-requests", CategoryGeneric, 0.5},
	{"curl/", "curl", CategoryGeneric, 0.4},
	{"bot", "Other Bot", CategoryGeneric, 0.5},
}

// Detection describes a recognised crawler.
type Detection struct {
	BotType    string
	Category   string
	Confidence float64
	Method     string
}

// Detect reports whether userAgent belongs to a known crawler.
func Detect(userAgent string) (Detection, bool) {
	ua := strings.ToLower(userAgent)
	if ua == "" {
		return Detection{}, false
	}
	for _, sig := range Signatures {
		if strings.Contains(ua, sig.Token) {
			return Detection{
				BotType:    sig.Name,
				Category:   sig.Category,
				Confidence: sig.Confidence,
				Method:     MethodUserAgent,
			}, true
		}
	}
	return Detection{}, false
}

// IsBot reports whether userAgent matches any signature.
func IsBot(userAgent string) bool {
	_, ok := Detect(userAgent)
	return ok
}
