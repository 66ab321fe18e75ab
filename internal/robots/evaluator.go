package robots

import (
	"fmt"
	"strings"

	"ai-visibility-validator/internal/bots"
)

// Reason records which rule decided an evaluation.
type Reason int

const (
	NoRulesFound Reason = iota
	EmptyDisallowAllowsAll
	FullDisallowBlocked
	AllowOverride
	ExplicitFullAllow
	NoMatchingFullDisallow
)

var reasonTokens = [...]string{
	NoRulesFound:           "no_rules_found",
	EmptyDisallowAllowsAll: "empty_disallow_allows_all",
	FullDisallowBlocked:    "full_disallow_blocked",
	AllowOverride:          "allow_override",
	ExplicitFullAllow:      "explicit_full_allow",
	NoMatchingFullDisallow: "no_matching_full_disallow",
}

var reasonText = [...]string{
	NoRulesFound:           "No rules apply to this bot",
	EmptyDisallowAllowsAll: "Empty Disallow allows everything",
	FullDisallowBlocked:    "Blocked by robots.txt",
	AllowOverride:          "Allow rule overrides Disallow: /",
	ExplicitFullAllow:      "Explicitly allowed",
	NoMatchingFullDisallow: "Allowed (only path-specific rules)",
}

// String returns the stable token for r.
func (r Reason) String() string {
	if r < 0 || int(r) >= len(reasonTokens) {
		return fmt.Sprintf("reason(%d)", int(r))
	}
	return reasonTokens[r]
}

// Describe returns a sentence suitable for a report.
func (r Reason) Describe() string {
	if r < 0 || int(r) >= len(reasonText) {
		return r.String()
	}
	return reasonText[r]
}

// MarshalText implements encoding.TextMarshaler.
func (r Reason) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Reason) UnmarshalText(b []byte) error {
	for i, tok := range reasonTokens {
		if tok == string(b) {
			*r = Reason(i)
			return nil
		}
	}
	return fmt.Errorf("unknown reason %q", string(b))
}

// Result is the verdict for one crawler.
type Result struct {
	Blocked bool   `json:"blocked"`
	Reason  Reason `json:"reason"`
}

// IsBlocked decides whether the crawler identified by token is kept off the
// whole site. Directives for "*" and for the token (case-insensitive) apply
// together; there is no most-specific-group selection.
//
// Only "Disallow: /" can block, and any non-empty Allow for the same crawler
// lifts it regardless of path. Path-specific Disallow rules are parsed but
// never produce a block.
func IsBlocked(token string, directives []Directive) Result {
	var (
		matched       bool
		emptyDisallow bool
		fullDisallow  bool
		anyAllow      bool
		fullAllow     bool
	)
	for _, d := range directives {
		if d.UserAgent != "*" && !strings.EqualFold(d.UserAgent, token) {
			continue
		}
		matched = true
		switch d.Kind {
		case Disallow:
			switch d.Path {
			case "":
				emptyDisallow = true
			case "/":
				fullDisallow = true
			}
		case Allow:
			if d.Path != "" {
				anyAllow = true
			}
			if d.Path == "/" {
				fullAllow = true
			}
		}
	}

	switch {
	case !matched:
		return Result{Reason: NoRulesFound}
	case emptyDisallow:
		return Result{Reason: EmptyDisallowAllowsAll}
	case fullDisallow && anyAllow:
		return Result{Reason: AllowOverride}
	case fullDisallow:
		return Result{Blocked: true, Reason: FullDisallowBlocked}
	case fullAllow:
		return Result{Reason: ExplicitFullAllow}
	default:
		return Result{Reason: NoMatchingFullDisallow}
	}
}

// Verdict is a Result attached to the crawler it was computed for.
type Verdict struct {
	bots.Bot
	Allowed bool   `json:"allowed"`
	Reason  Reason `json:"reason"`
	Detail  string `json:"detail"`
}

// Summary counts verdicts. Allowed+Blocked always equals Total.
type Summary struct {
	Total   int `json:"total"`
	Allowed int `json:"allowed"`
	Blocked int `json:"blocked"`
}

// Batch is the outcome of evaluating a list of crawlers.
type Batch struct {
	Verdicts []Verdict `json:"bots"`
	Summary  Summary   `json:"summary"`
}

// ByUserAgent indexes the verdicts by crawler token. When the input list
// repeats a token the last verdict wins.
func (b Batch) ByUserAgent() map[string]Verdict {
	out := make(map[string]Verdict, len(b.Verdicts))
	for _, v := range b.Verdicts {
		out[v.UserAgent] = v
	}
	return out
}

// BatchEvaluate runs IsBlocked for every crawler in list order.
func BatchEvaluate(list []bots.Bot, directives []Directive) Batch {
	out := Batch{Verdicts: make([]Verdict, 0, len(list))}
	for _, b := range list {
		res := IsBlocked(b.UserAgent, directives)
		v := Verdict{Bot: b, Allowed: !res.Blocked, Reason: res.Reason, Detail: res.Reason.Describe()}
		out.Verdicts = append(out.Verdicts, v)
		out.Summary.Total++
		if v.Allowed {
			out.Summary.Allowed++
		} else {
			out.Summary.Blocked++
		}
	}
	return out
}

// DefaultAllow is the batch reported when the exclusion file could not be
// fetched: every crawler is allowed.
func DefaultAllow(list []bots.Bot) Batch {
	out := BatchEvaluate(list, nil)
	for i := range out.Verdicts {
		out.Verdicts[i].Detail = "No robots.txt found (default allow)"
	}
	return out
}
