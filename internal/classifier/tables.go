package classifier

const (
	colorGood    = "#25995c"
	colorWarn    = "#FFC107"
	colorOrange  = "#FF9800"
	colorFailing = "#F44336"
)

// TTFB bands in milliseconds.
var ttfbCategories = []Category{
	{
		Name:          "Ideal",
		Grade:         "A+",
		Upper:         At(200),
		Color:         colorGood,
		Description:   "Guaranteed Inclusion",
		Impact:        "Gold standard for AI access. Wins race conditions against competitors.",
		PrimaryImpact: "In GEO (Generative Engine Optimization), speed is binary. Slow sites are often treated as non-existent when bots timeout.",
	},
	{
		Name:          "Competitive",
		Grade:         "A",
		Lower:         At(200),
		Upper:         At(350),
		Color:         colorGood,
		Description:   "High Visibility",
		Impact:        "Average TTFB for top-ranking AI search sites. Reliably indexed.",
		PrimaryImpact: "RAG systems (Perplexity, ChatGPT) race between sources. First responders win, even if slower sites technically succeed.",
	},
	{
		Name:          "Target",
		Grade:         "B",
		Lower:         At(350),
		Upper:         At(600),
		Color:         colorGood,
		Description:   "Optimal Access",
		Impact:        "Recommended threshold for full AI crawler access.",
		PrimaryImpact: "Edge caching with stale-while-revalidate can serve cached content instantly (<50ms) while updating in background.",
	},
	{
		Name:          "Needs Improvement",
		Grade:         "C",
		Lower:         At(600),
		Upper:         At(1000),
		Color:         colorWarn,
		Description:   "Competitive Disadvantage",
		Impact:        "At risk of losing race logic. Slower responses get discarded.",
		PrimaryImpact: "RAG systems query multiple sources but only process the fastest. A site at 800ms loses to one at 100ms.",
	},
	{
		Name:          "At Risk",
		Grade:         "D",
		Lower:         At(1000),
		Upper:         At(2000),
		Color:         colorOrange,
		Description:   `The "Timeout Wall"`,
		Impact:        "Many RAG systems timeout between 1-2 seconds. High risk of connection resets.",
		PrimaryImpact: "Speed is binary in AI search. Unlike SEO where slow sites rank lower, slow AI sites are treated as unavailable.",
	},
	{
		Name:          "Poor (Invisible)",
		Grade:         "F",
		Lower:         At(2000),
		Color:         colorFailing,
		Description:   "Guaranteed Exclusion",
		Impact:        "Effectively invisible. AI platforms timeout and abandon the request.",
		PrimaryImpact: "Timeout constraints (1-5 seconds) mean slow sites are treated as non-existent, not just lower-ranked.",
	},
}

// CLS bands, unitless.
var clsCategories = []Category{
	{
		Name:          "Good",
		Grade:         "A",
		Upper:         At(0.1),
		Color:         colorGood,
		Description:   "High Vector Integrity",
		Impact:        "Stable DOM allows RAG systems to chunk text properly for vector databases.",
		PrimaryImpact: "For AI, CLS is about semantic continuity. High CLS means dynamic elements inject tags that break paragraphs, confusing RAG parsers and splitting answers into disconnected pieces.",
	},
	{
		Name:          "Needs Improvement",
		Grade:         "C",
		Lower:         At(0.1),
		Upper:         At(0.25),
		Color:         colorWarn,
		Description:   "Parsing Risk",
		Impact:        "Dynamic content may interrupt text stream and risk retrieval failure.",
		PrimaryImpact: "AI bots dislike layout shifts because they break code structure. RAG systems chunk content based on HTML tags like <p> and <div>.",
	},
	{
		Name:          "Poor",
		Grade:         "F",
		Lower:         At(0.25),
		Color:         colorFailing,
		Description:   "RAG Chunking Failure",
		Impact:        "Broken semantic continuity. Content may be split into nonsensical halves.",
		PrimaryImpact: "Late-loading ads that inject mid-paragraph cause RAG parsers to split text. AI fails to retrieve answers when neither half contains complete context.",
	},
}

// INP bands in milliseconds.
var inpCategories = []Category{
	{
		Name:          "Good",
		Grade:         "A",
		Upper:         At(200),
		Color:         colorGood,
		Description:   "Agentic Success",
		Impact:        "Required for autonomous agents. Fast response confirms actions succeeded.",
		PrimaryImpact: "Irrelevant for read-only bots (GPTBot, Perplexity). Critical for Agentic AI (OpenAI Operator) that performs tasks like booking flights.",
	},
	{
		Name:          "Poor",
		Grade:         "F",
		Lower:         At(200),
		Color:         colorFailing,
		Description:   "Agentic Friction",
		Impact:        "Blocked threads cause agents to interpret delays as failed interactions.",
		PrimaryImpact: `INP is for "Agents," not "Search." Agentic AI timeouts on slow buttons and abandons tasks, unlike humans who wait.`,
	},
}
