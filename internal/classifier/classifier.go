// Package classifier grades performance samples against fixed, ordered
// threshold tables for TTFB, CLS and INP.
package classifier

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	ErrInvalidMetricValue = errors.New("invalid metric value")
	ErrUnknownKind        = errors.New("unknown metric kind")
)

// Kind identifies which table a sample is graded against.
type Kind int

const (
	TTFB Kind = iota
	CLS
	INP
)

// Kinds lists every metric kind in report order.
var Kinds = []Kind{TTFB, CLS, INP}

func (k Kind) String() string {
	switch k {
	case TTFB:
		return "ttfb"
	case CLS:
		return "cls"
	case INP:
		return "inp"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Unit is the display unit of the kind's samples.
func (k Kind) Unit() string {
	if k == CLS {
		return ""
	}
	return "ms"
}

// Title is the long metric name.
func (k Kind) Title() string {
	switch k {
	case TTFB:
		return "Time To First Byte"
	case CLS:
		return "Cumulative Layout Shift"
	case INP:
		return "Interaction to Next Paint"
	}
	return k.String()
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// ParseKind accepts ttfb, cls or inp in any case.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ttfb":
		return TTFB, nil
	case "cls":
		return CLS, nil
	case "inp":
		return INP, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Category is one band of a threshold table. Lower is inclusive, Upper is
// exclusive.
type Category struct {
	Name          string `json:"name"`
	Grade         string `json:"grade,omitempty"`
	Lower         Bound  `json:"min"`
	Upper         Bound  `json:"max"`
	Color         string `json:"color"`
	Description   string `json:"description"`
	Impact        string `json:"impact"`
	PrimaryImpact string `json:"primaryImpact"`
}

// Contains applies the half-open membership rule.
func (c Category) Contains(v float64) bool {
	lo, hasLo := c.Lower.Value()
	hi, hasHi := c.Upper.Value()
	switch {
	case !hasHi:
		return v >= lo
	case !hasLo:
		return v < hi
	default:
		return v >= lo && v < hi
	}
}

// Table returns the ordered categories for kind.
func Table(kind Kind) ([]Category, error) {
	switch kind {
	case TTFB:
		return ttfbCategories, nil
	case CLS:
		return clsCategories, nil
	case INP:
		return inpCategories, nil
	}
	return nil, fmt.Errorf("%w: %d", ErrUnknownKind, int(kind))
}

// Classify returns the first category of kind's table containing value.
// Negative and non-finite values are rejected with ErrInvalidMetricValue.
func Classify(kind Kind, value float64) (Category, error) {
	table, err := Table(kind)
	if err != nil {
		return Category{}, err
	}
	if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return Category{}, fmt.Errorf("%w: %s %v", ErrInvalidMetricValue, kind, value)
	}
	return classify(table, value), nil
}

func classify(table []Category, value float64) Category {
	for _, c := range table {
		if c.Contains(value) {
			return c
		}
	}
	// unreachable for tables that pass ValidateTable
	return table[len(table)-1]
}

// ValidateTable checks that table covers [0, +Inf) without gaps or overlaps
// when read in order.
func ValidateTable(table []Category) error {
	if len(table) == 0 {
		return errors.New("empty table")
	}
	if lo, ok := table[0].Lower.Value(); ok && lo > 0 {
		return fmt.Errorf("%s: first category starts at %v, not 0", table[0].Name, lo)
	}
	openUpper := 0
	for i, c := range table {
		if c.Lower.IsOpen() && c.Upper.IsOpen() {
			return fmt.Errorf("%s: both bounds open", c.Name)
		}
		if c.Upper.IsOpen() {
			openUpper++
			if i != len(table)-1 {
				return fmt.Errorf("%s: open upper bound before the last category", c.Name)
			}
		}
		if i == 0 {
			continue
		}
		prev, _ := table[i-1].Upper.Value()
		lo, ok := c.Lower.Value()
		if !ok {
			return fmt.Errorf("%s: open lower bound after the first category", c.Name)
		}
		if lo != prev {
			return fmt.Errorf("%s: starts at %v but previous ends at %v", c.Name, lo, prev)
		}
		if hi, ok := c.Upper.Value(); ok && hi <= lo {
			return fmt.Errorf("%s: empty interval [%v, %v)", c.Name, lo, hi)
		}
	}
	if openUpper != 1 {
		return fmt.Errorf("want exactly one open upper bound, found %d", openUpper)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
