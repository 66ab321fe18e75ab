// Package visibility compares what a page shows with and without JavaScript.
package visibility

import (
	"math"
	"sort"

	"ai-visibility-validator/internal/models"
)

// MaxListItems caps the lost and gained lists.
const MaxListItems = 20

// Diff lists visible elements present in only one rendering.
type Diff struct {
	Lost   []models.ContentElement `json:"lostContent"`
	Gained []models.ContentElement `json:"gainedContent"`
}

// Summary compares visible word counts.
type Summary struct {
	EnabledWords  int     `json:"enabledWords"`
	DisabledWords int     `json:"disabledWords"`
	Difference    int     `json:"difference"`
	HiddenPercent float64 `json:"hiddenPercent"`
}

// Analysis is the full comparison.
type Analysis struct {
	JSEnabled  models.Snapshot `json:"jsEnabled"`
	JSDisabled models.Snapshot `json:"jsDisabled"`
	Diff       Diff            `json:"diff"`
	Summary    Summary         `json:"summary"`
}

func key(el models.ContentElement) string {
	text := []rune(el.Text)
	if len(text) > 100 {
		text = text[:100]
	}
	return string(text) + "_" + el.TagName + "_" + el.ClassName
}

// Compare diffs the JS-enabled rendering against the JS-disabled one.
// Lost content is visible only with JavaScript, gained content only without.
func Compare(enabled, disabled models.Snapshot) Analysis {
	enabledKeys := make(map[string]bool, len(enabled.Elements))
	for _, el := range enabled.Elements {
		enabledKeys[key(el)] = true
	}
	disabledKeys := make(map[string]bool, len(disabled.Elements))
	for _, el := range disabled.Elements {
		disabledKeys[key(el)] = true
	}

	return Analysis{
		JSEnabled:  enabled,
		JSDisabled: disabled,
		Diff: Diff{
			Lost:   onlyIn(enabled.Elements, disabledKeys),
			Gained: onlyIn(disabled.Elements, enabledKeys),
		},
		Summary: summarize(enabled.TotalWords, disabled.TotalWords),
	}
}

// onlyIn returns elements whose key is absent from other, largest first.
// Duplicate keys collapse to the last element, which must be visible; the
// key keeps the position of its first occurrence.
func onlyIn(elements []models.ContentElement, other map[string]bool) []models.ContentElement {
	var order []string
	last := map[string]models.ContentElement{}
	for _, el := range elements {
		k := key(el)
		if _, ok := last[k]; !ok {
			order = append(order, k)
		}
		last[k] = el
	}
	out := []models.ContentElement{}
	for _, k := range order {
		if el := last[k]; !other[k] && el.Visible {
			out = append(out, el)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].WordCount > out[j].WordCount })
	if len(out) > MaxListItems {
		out = out[:MaxListItems]
	}
	return out
}

func summarize(enabledWords, disabledWords int) Summary {
	s := Summary{
		EnabledWords:  enabledWords,
		DisabledWords: disabledWords,
		Difference:    disabledWords - enabledWords,
	}
	if enabledWords > 0 {
		pct := float64(enabledWords-disabledWords) / float64(enabledWords) * 100
		s.HiddenPercent = math.Round(math.Max(0, pct)*10) / 10
	}
	return s
}
