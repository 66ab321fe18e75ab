package classifier

// Bound is one end of a category interval. The zero value is an open bound.
type Bound struct {
	value float64
	set   bool
}

// Open returns an unbounded side.
func Open() Bound { return Bound{} }

// At returns a bound at v.
func At(v float64) Bound { return Bound{value: v, set: true} }

// IsOpen reports whether b places no limit.
func (b Bound) IsOpen() bool { return !b.set }

// Value returns the bound and whether it is set.
func (b Bound) Value() (float64, bool) { return b.value, b.set }

// MarshalJSON renders an open bound as null.
func (b Bound) MarshalJSON() ([]byte, error) {
	if !b.set {
		return []byte("null"), nil
	}
	return []byte(formatFloat(b.value)), nil
}

func (b Bound) String() string {
	if !b.set {
		return "-"
	}
	return formatFloat(b.value)
}
