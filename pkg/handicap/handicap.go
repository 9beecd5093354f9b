// Package handicap models the handicap band attached to a round. The column
// started life as a fixed string enum ("All Levels", "0-10", ...) and later
// migrated to explicit numeric min/max columns; both forms coexist in stored
// data, so reads resolve through a three-tier cascade.
package handicap

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
)

const (
	Min = 0
	Max = 36
)

// Range is an ordered, clamped handicap band.
type Range struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

var legacyBands = map[string]Range{
	"All Levels": {Min, Max},
	"0-10":       {0, 10},
	"10-20":      {10, 20},
	"20-30":      {20, 30},
	"30+":        {30, Max},
}

var (
	plusPattern  = regexp.MustCompile(`^(\d{1,2})\+$`)
	rangePattern = regexp.MustCompile(`^(\d{1,2})\s*-\s*(\d{1,2})$`)
)

// Clamp rounds value to the nearest integer and clamps it into [Min, Max].
func Clamp(value float64) int {
	v := int(math.Round(value))
	if v < Min {
		return Min
	}
	if v > Max {
		return Max
	}
	return v
}

// Normalize clamps both ends and swaps them if needed so the result is ordered.
func Normalize(min, max int) Range {
	lo := Clamp(float64(min))
	hi := Clamp(float64(max))
	if lo <= hi {
		return Range{lo, hi}
	}
	return Range{hi, lo}
}

// IsAllLevels reports whether the normalized pair covers the full band.
func IsAllLevels(min, max int) bool {
	r := Normalize(min, max)
	return r.Min == Min && r.Max == Max
}

// ToLegacyLabel maps a pair to one of the fixed legacy bands when it matches
// exactly, else to "min-max".
func ToLegacyLabel(min, max int) string {
	r := Normalize(min, max)
	if IsAllLevels(r.Min, r.Max) {
		return "All Levels"
	}
	switch r {
	case Range{0, 10}:
		return "0-10"
	case Range{10, 20}:
		return "10-20"
	case Range{20, 30}:
		return "20-30"
	case Range{30, Max}:
		return "30+"
	}
	return fmt.Sprintf("%d-%d", r.Min, r.Max)
}

// ParseLegacyLabel inverts ToLegacyLabel. Besides the canonical bands it
// accepts "N+" and "N-M"; anything else yields ok == false.
func ParseLegacyLabel(value string) (Range, bool) {
	if value == "" {
		return Range{}, false
	}
	if r, ok := legacyBands[value]; ok {
		return r, true
	}
	if m := plusPattern.FindStringSubmatch(value); m != nil {
		lo, _ := strconv.Atoi(m[1])
		return Normalize(lo, Max), true
	}
	if m := rangePattern.FindStringSubmatch(value); m != nil {
		lo, _ := strconv.Atoi(m[1])
		hi, _ := strconv.Atoi(m[2])
		return Normalize(lo, hi), true
	}
	return Range{}, false
}

// ResolveFromRow prefers the numeric columns when both are present, then the
// legacy string column, then the full band. The order is load-bearing: rows
// written across the schema migration carry either form.
func ResolveFromRow(minCol, maxCol *int, legacy string) Range {
	if minCol != nil && maxCol != nil {
		return Normalize(*minCol, *maxCol)
	}
	if r, ok := ParseLegacyLabel(legacy); ok {
		return r
	}
	return Range{Min, Max}
}

// InRange is an inclusive bounds check after normalization.
func InRange(handicap, min, max int) bool {
	r := Normalize(min, max)
	return handicap >= r.Min && handicap <= r.Max
}
