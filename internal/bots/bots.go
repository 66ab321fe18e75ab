// Package bots holds the catalogue of AI crawler identities checked against
// robots.txt and the subset used for live TTFB probing.
package bots

// Bot is one crawler identity as it appears in robots.txt user-agent groups.
type Bot struct {
	UserAgent string `json:"userAgent" yaml:"user_agent"`
	Company   string `json:"company" yaml:"company"`
	Product   string `json:"product" yaml:"product"`
	Category  string `json:"category" yaml:"category"`
}

// Profile is a user-agent the prober impersonates.
type Profile struct {
	Key       string `json:"botKey" yaml:"key"`
	Company   string `json:"company" yaml:"company"`
	Label     string `json:"label" yaml:"label"`
	UserAgent string `json:"userAgent" yaml:"user_agent"`
}

var defaultBots = []Bot{
	{"GPTBot", "OpenAI", "ChatGPT training crawler", "Training"},
	{"ChatGPT-User", "OpenAI", "ChatGPT user-initiated browsing", "Browsing"},
	{"OAI-SearchBot", "OpenAI", "SearchGPT crawler", "Search"},
	{"PerplexityBot", "Perplexity", "Perplexity AI search crawler", "Search"},
	{"Perplexity-User", "Perplexity", "Perplexity user browsing", "Browsing"},
	{"ClaudeBot", "Anthropic", "Claude training crawler", "Training"},
	{"Claude-SearchBot", "Anthropic", "Claude search functionality", "Search"},
	{"Claude-User", "Anthropic", "Claude user-initiated browsing", "Browsing"},
	{"Google-Extended", "Google", "Gemini AI training", "Training"},
	{"CloudVertexBot", "Google", "Google Cloud Vertex AI", "Training"},
	{"Gemini-Deep-Research", "Google", "Gemini deep research feature", "Research"},
	{"Google-NotebookLM", "Google", "NotebookLM AI assistant", "Research"},
	{"GoogleAgent-Mariner", "Google", "Google AI agent browsing", "Browsing"},
	{"Googlebot", "Google", "Googlebot Desktop", "Crawling"},
	{"Googlebot-Mobile", "Google", "Googlebot Smartphone", "Crawling"},
	{"Googlebot-Image", "Google", "Google Image crawler", "Crawling"},
	{"Googlebot-Video", "Google", "Google Video crawler", "Crawling"},
	{"Googlebot-News", "Google", "Google News crawler", "Crawling"},
	{"Storebot-Google", "Google", "Google StoreBot Desktop", "Crawling"},
	{"Storebot-Google-Mobile", "Google", "Google StoreBot Mobile", "Crawling"},
	{"GoogleOther", "Google", "GoogleOther Desktop", "Crawling"},
	{"GoogleOther-Mobile", "Google", "GoogleOther Mobile", "Crawling"},
	{"GoogleOther-Image", "Google", "GoogleOther Image crawler", "Crawling"},
	{"GoogleOther-Video", "Google", "GoogleOther Video crawler", "Crawling"},
	{"MistralAI-User", "Mistral", "Mistral AI user browsing", "Browsing"},
	{"Amazonbot", "Amazon", "Alexa AI training", "Training"},
	{"Applebot-Extended", "Apple", "Apple Intelligence training", "Training"},
	{"FacebookBot", "Meta", "Facebook AI crawler", "Training"},
	{"facebookexternalhit", "Meta", "Meta external content fetcher", "Browsing"},
	{"Meta-ExternalAgent", "Meta", "Meta AI external agent", "Browsing"},
	{"meta-externalfetcher", "Meta", "Meta content fetcher", "Browsing"},
	{"DuckAssistBot", "DuckDuckGo", "DuckDuckGo AI search", "Search"},
	{"CCBot", "Common Crawl", "Open web crawl data (used by AI models)", "Training"},
}

var defaultProfiles = []Profile{
	{"openai_gptbot", "OpenAI", "GPTBot", "GPTBot"},
	{"openai_chatgpt_user", "OpenAI", "ChatGPT-User", "ChatGPT-User"},
	{"openai_searchbot", "OpenAI", "OAI-SearchBot", "OAI-SearchBot"},
	{"anthropic_claudebot", "Anthropic", "ClaudeBot", "ClaudeBot"},
	{"anthropic_claude_searchbot", "Anthropic", "Claude-SearchBot", "Claude-SearchBot"},
	{"anthropic_claude_user", "Anthropic", "Claude-User", "Claude-User"},
	{"perplexity_bot", "Perplexity", "PerplexityBot", "PerplexityBot"},
	{"perplexity_user", "Perplexity", "Perplexity-User", "Perplexity-User"},
}

// Default returns a fresh copy of the built-in crawler catalogue.
func Default() []Bot {
	out := make([]Bot, len(defaultBots))
	copy(out, defaultBots)
	return out
}

// DefaultProfiles returns a fresh copy of the built-in probe profiles.
func DefaultProfiles() []Profile {
	out := make([]Profile, len(defaultProfiles))
	copy(out, defaultProfiles)
	return out
}

// Catalog bundles the bots and probe profiles a caller works with.
type Catalog struct {
	Bots     []Bot     `yaml:"bots"`
	Profiles []Profile `yaml:"probe_profiles"`
}

// NewCatalog returns the built-in catalogue.
func NewCatalog() Catalog {
	return Catalog{Bots: Default(), Profiles: DefaultProfiles()}
}

// Select returns the profiles named by keys, in the order given.
// Unknown keys are dropped. An empty key list selects every profile.
func (c Catalog) Select(keys []string) []Profile {
	if len(keys) == 0 {
		out := make([]Profile, len(c.Profiles))
		copy(out, c.Profiles)
		return out
	}
	byKey := make(map[string]Profile, len(c.Profiles))
	for _, p := range c.Profiles {
		byKey[p.Key] = p
	}
	var out []Profile
	for _, k := range keys {
		if p, ok := byKey[k]; ok {
			out = append(out, p)
		}
	}
	return out
}
