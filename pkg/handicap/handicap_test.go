package handicap

import "testing"

func TestClampBounds(t *testing.T) {
	cases := []struct {
		in   float64
		want int
	}{
		{-5, 0},
		{0, 0},
		{17.4, 17},
		{17.5, 18},
		{36, 36},
		{54, 36},
	}
	for _, c := range cases {
		if got := Clamp(c.in); got != c.want {
			t.Fatalf("Clamp(%v) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestNormalizeOrdersAndClamps(t *testing.T) {
	for _, c := range [][2]int{{5, 20}, {20, 5}, {-10, 50}, {36, 0}} {
		r := Normalize(c[0], c[1])
		if r.Min > r.Max {
			t.Fatalf("Normalize(%d,%d) unordered: %+v", c[0], c[1], r)
		}
		if r.Min < Min || r.Max > Max {
			t.Fatalf("Normalize(%d,%d) out of bounds: %+v", c[0], c[1], r)
		}
		if again := Normalize(r.Min, r.Max); again != r {
			t.Fatalf("Normalize not idempotent: %+v vs %+v", r, again)
		}
	}
}

func TestIsAllLevels(t *testing.T) {
	if !IsAllLevels(0, 36) {
		t.Fatalf("expected (0,36) to be all levels")
	}
	if !IsAllLevels(36, 0) {
		t.Fatalf("expected swapped full band to be all levels")
	}
	if IsAllLevels(1, 36) {
		t.Fatalf("(1,36) must not be all levels")
	}
}

func TestLegacyBandRoundTrip(t *testing.T) {
	bands := []string{"All Levels", "0-10", "10-20", "20-30", "30+"}
	for _, label := range bands {
		r, ok := ParseLegacyLabel(label)
		if !ok {
			t.Fatalf("parse %q failed", label)
		}
		if got := ToLegacyLabel(r.Min, r.Max); got != label {
			t.Fatalf("round trip %q -> %+v -> %q", label, r, got)
		}
	}
}

func TestToLegacyLabelFallback(t *testing.T) {
	if got := ToLegacyLabel(5, 15); got != "5-15" {
		t.Fatalf("fallback label = %q, want 5-15", got)
	}
}

func TestParseLegacyLabelPatterns(t *testing.T) {
	r, ok := ParseLegacyLabel("12+")
	if !ok || r != (Range{12, 36}) {
		t.Fatalf("12+ parsed to %+v ok=%v", r, ok)
	}
	r, ok = ParseLegacyLabel("8 - 14")
	if !ok || r != (Range{8, 14}) {
		t.Fatalf("8 - 14 parsed to %+v ok=%v", r, ok)
	}
	for _, bad := range []string{"", "abc", "1-2-3", "+10"} {
		if _, ok := ParseLegacyLabel(bad); ok {
			t.Fatalf("expected %q to be unparseable", bad)
		}
	}
}

func TestResolveFromRowCascade(t *testing.T) {
	five, twelve := 5, 12
	if r := ResolveFromRow(&five, &twelve, "20-30"); r != (Range{5, 12}) {
		t.Fatalf("numeric columns should win, got %+v", r)
	}
	if r := ResolveFromRow(&five, nil, "20-30"); r != (Range{20, 30}) {
		t.Fatalf("legacy string should win over partial columns, got %+v", r)
	}
	if r := ResolveFromRow(nil, nil, "garbage"); r != (Range{0, 36}) {
		t.Fatalf("default tier should be full band, got %+v", r)
	}
}

func TestInRange(t *testing.T) {
	if !InRange(10, 0, 10) || !InRange(0, 0, 10) {
		t.Fatalf("bounds must be inclusive")
	}
	if InRange(11, 0, 10) {
		t.Fatalf("11 outside 0-10")
	}
	if !InRange(7, 10, 5) {
		t.Fatalf("swapped bounds must normalize before the check")
	}
}
