package visibility

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-visibility-validator/internal/models"
)

func el(text, tag string, words int, visible bool) models.ContentElement {
	return models.ContentElement{Text: text, TagName: tag, WordCount: words, Visible: visible}
}

func TestCompare(t *testing.T) {
	enabled := models.Snapshot{
		Elements: []models.ContentElement{
			el("Welcome", "h1", 1, true),
			el("Product list loaded by script", "div", 5, true),
			el("Reviews from the API endpoint today", "p", 6, true),
			el("Invisible tooltip", "span", 2, false),
		},
		TotalWords: 12,
	}
	disabled := models.Snapshot{
		Elements: []models.ContentElement{
			el("Welcome", "h1", 1, true),
			el("Please enable JavaScript", "p", 3, true),
		},
		TotalWords: 4,
	}

	got := Compare(enabled, disabled)

	require.Len(t, got.Diff.Lost, 2)
	assert.Equal(t, "Reviews from the API endpoint today", got.Diff.Lost[0].Text, "largest first")
	assert.Equal(t, "Product list loaded by script", got.Diff.Lost[1].Text)
	require.Len(t, got.Diff.Gained, 1)
	assert.Equal(t, "Please enable JavaScript", got.Diff.Gained[0].Text)

	assert.Equal(t, Summary{EnabledWords: 12, DisabledWords: 4, Difference: -8, HiddenPercent: 66.7}, got.Summary)
}

func TestCompareKeyIncludesTagAndClass(t *testing.T) {
	a := models.ContentElement{Text: "Same", TagName: "p", ClassName: "x", WordCount: 1, Visible: true}
	b := a
	b.ClassName = "y"

	got := Compare(models.Snapshot{Elements: []models.ContentElement{a}}, models.Snapshot{Elements: []models.ContentElement{b}})
	assert.Len(t, got.Diff.Lost, 1)
	assert.Len(t, got.Diff.Gained, 1)
}

func TestCompareCapsLists(t *testing.T) {
	var enabled models.Snapshot
	for i := 0; i < 50; i++ {
		enabled.Elements = append(enabled.Elements, el(fmt.Sprintf("item %d", i), "li", i, true))
	}
	got := Compare(enabled, models.Snapshot{})
	require.Len(t, got.Diff.Lost, MaxListItems)
	assert.Equal(t, 49, got.Diff.Lost[0].WordCount)
	assert.Empty(t, got.Diff.Gained)
}

func TestSummaryNoHiddenContent(t *testing.T) {
	assert.Equal(t, 0.0, summarize(0, 10).HiddenPercent)
	assert.Equal(t, 0.0, summarize(10, 20).HiddenPercent)
	assert.Equal(t, 10, summarize(10, 20).Difference)
	assert.Equal(t, 100.0, summarize(10, 0).HiddenPercent)
}

func TestCompareDuplicateKeysUseLastElement(t *testing.T) {
	enabled := models.Snapshot{Elements: []models.ContentElement{
		el("Shown then hidden", "p", 3, true),
		el("Hidden then shown", "p", 3, false),
		el("Shown then hidden", "p", 3, false),
		el("Hidden then shown", "p", 4, true),
	}}

	got := Compare(enabled, models.Snapshot{})
	require.Len(t, got.Diff.Lost, 1)
	assert.Equal(t, "Hidden then shown", got.Diff.Lost[0].Text)
	assert.Equal(t, 4, got.Diff.Lost[0].WordCount)
}
