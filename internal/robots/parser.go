// Package robots parses robots.txt exclusion files and decides, per crawler
// identity, whether the crawler is kept off the whole site.
package robots

import "strings"

// DirectiveKind distinguishes Allow from Disallow lines.
type DirectiveKind int

const (
	Disallow DirectiveKind = iota
	Allow
)

func (k DirectiveKind) String() string {
	if k == Allow {
		return "Allow"
	}
	return "Disallow"
}

// MarshalText implements encoding.TextMarshaler.
func (k DirectiveKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Directive is one Allow or Disallow line scoped to the user-agent group it
// appeared under.
type Directive struct {
	UserAgent string        `json:"userAgent"`
	Kind      DirectiveKind `json:"directive"`
	Path      string        `json:"path"`
}

const (
	userAgentKey = "user-agent:"
	disallowKey  = "disallow:"
	allowKey     = "allow:"
)

// Parse splits robots.txt content into directives in order of appearance.
// It never fails: unknown keys, comments and rules outside any user-agent
// group are skipped.
func Parse(content string) []Directive {
	var out []Directive
	current := ""

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lower := strings.ToLower(line)

		switch {
		case strings.HasPrefix(lower, userAgentKey):
			current = strings.TrimSpace(line[len(userAgentKey):])
		case strings.HasPrefix(lower, disallowKey) && current != "":
			out = append(out, Directive{
				UserAgent: current,
				Kind:      Disallow,
				Path:      strings.TrimSpace(line[len(disallowKey):]),
			})
		case strings.HasPrefix(lower, allowKey) && current != "":
			out = append(out, Directive{
				UserAgent: current,
				Kind:      Allow,
				Path:      strings.TrimSpace(line[len(allowKey):]),
			})
		}
	}
	return out
}
