package score

import (
	"testing"
)

func TestParseRoundTrip(t *testing.T) {
	cases := []string{
		"0",
		"100",
		"2.5",
		"-3",
		"1e10",
		"9.99e308",
		"e1",
		"e1.5e40",
		"eee2e11",
		"7e-4",
	}
	for _, in := range cases {
		sc, err := Parse(in)
		if err != nil {
			t.Fatalf("Parse(%q) err: %v", in, err)
		}
		out := sc.String()
		back, err := Parse(out)
		if err != nil {
			t.Fatalf("Parse(String(%q)=%q) err: %v", in, out, err)
		}
		if back != sc {
			t.Errorf("round trip %q: got %+v, want %+v", in, back, sc)
		}
	}
}

func TestParseFields(t *testing.T) {
	cases := []struct {
		in    string
		tiers int
		coeff float64
		exp   int
	}{
		{"100", 0, 100, 0},
		{"1.5e40", 0, 1.5, 40},
		{"e2", 1, 2, 0},
		{"ee3e7", 2, 3, 7},
		{"5e-2", 0, 5, -2},
	}
	for _, c := range cases {
		sc, err := Parse(c.in)
		if err != nil {
			t.Fatalf("Parse(%q) err: %v", c.in, err)
		}
		if sc.Tiers != c.tiers || sc.Coeff != c.coeff || sc.Exp != c.exp {
			t.Errorf("Parse(%q) = %+v, want (%d, %v, %d)", c.in, sc, c.tiers, c.coeff, c.exp)
		}
	}
}

func TestParseErrors(t *testing.T) {
	for _, in := range []string{"", "e", "abc", "1ex", "eee"} {
		if _, err := Parse(in); err == nil {
			t.Errorf("Parse(%q): expected error", in)
		}
	}
}

func TestCmpTotalOrder(t *testing.T) {
	// Ascending under (tiers, exponent, coefficient).
	asc := []Score{
		{0, -5, 0},
		{0, 0, 0},
		{0, 100, 0},
		{0, 1, 2},
		{0, 9, 2},
		{0, 1, 40},
		{1, 0.5, 0},
		{1, 2, 11},
		{2, 1, 0},
	}
	for i := range asc {
		for j := range asc {
			got := asc[i].Cmp(asc[j])
			want := cmpInt(i, j)
			if got != want {
				t.Errorf("Cmp(%v, %v) = %d, want %d", asc[i], asc[j], got, want)
			}
		}
	}
}

func TestAddZeroIdentity(t *testing.T) {
	vals := []Score{
		{0, 100, 0},
		{0, 2.5, 40},
		{3, 7, -2},
	}
	for _, v := range vals {
		if got := v.Add(Zero()); got != v {
			t.Errorf("%v.Add(zero) = %v, want unchanged", v, got)
		}
		if got := Zero().Add(v); got != v {
			t.Errorf("zero.Add(%v) = %v, want unchanged", v, got)
		}
	}
}

func TestAdd(t *testing.T) {
	cases := []struct {
		a, b, want Score
	}{
		{Score{0, 100, 0}, Score{0, 50, 0}, Score{0, 150, 0}},
		{Score{0, 2, 10}, Score{0, 3, 10}, Score{0, 5, 10}},
		{Score{0, 9, 10}, Score{0, 20, 10}, Score{0, 2.9, 11}},
		{Score{0, 1, 10}, Score{0, 5, 8}, Score{0, 1.05, 10}},
		// Higher tier absorbs lower.
		{Score{1, 1, 0}, Score{0, 1e100, 0}, Score{1, 1, 0}},
		// Exponent gap beyond precision absorbs.
		{Score{0, 1, 400}, Score{0, 5, 0}, Score{0, 1, 400}},
	}
	for _, c := range cases {
		if got := c.a.Add(c.b); got != c.want {
			t.Errorf("%v.Add(%v) = %v, want %v", c.a, c.b, got, c.want)
		}
		if got := c.b.Add(c.a); got != c.want {
			t.Errorf("%v.Add(%v) = %v, want %v", c.b, c.a, got, c.want)
		}
	}
}

func TestAddPreservesOrder(t *testing.T) {
	x := Score{0, 100, 0}
	y := Score{0, 200, 0}
	z := Score{0, 50, 0}
	if !x.Add(z).Less(y.Add(z)) {
		t.Errorf("ordering broken: %v >= %v", x.Add(z), y.Add(z))
	}
}

func TestDiv(t *testing.T) {
	one := Score{0, 1, 0}
	vals := []Score{
		{0, 100, 0},
		{0, 2.5, 40},
		{2, 8, 3},
	}
	for _, v := range vals {
		got, err := v.Div(one)
		if err != nil {
			t.Fatalf("Div err: %v", err)
		}
		if got != v {
			t.Errorf("%v.Div(one) = %v, want unchanged", v, got)
		}
	}

	half, err := Score{0, 100, 0}.Div(Score{0, 2, 0})
	if err != nil {
		t.Fatalf("Div err: %v", err)
	}
	if half != (Score{0, 50, 0}) {
		t.Errorf("100/2 = %v, want 50", half)
	}

	if _, err := (Score{0, 1, 0}).Div(Zero()); err == nil {
		t.Error("expected divide-by-zero error")
	}

	collapsed, err := Score{0, 5, 0}.Div(Score{1, 1, 0})
	if err != nil {
		t.Fatalf("Div err: %v", err)
	}
	if !collapsed.IsZero() {
		t.Errorf("dividing by a higher tier should collapse to zero, got %v", collapsed)
	}
}
