// Package score implements the extended-precision score values exchanged
// with clients. A value is a triple (tiers, coefficient, exponent) whose
// textual form is zero or more leading "e" tier markers, a coefficient,
// and an optional "e"-separated exponent, e.g. "300", "1.5e40", "ee2e11".
// Each tier marker signals one escalation of repeated exponentiation
// beyond ordinary exponent notation.
package score

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var ErrDivideByZero = errors.New("score: divide by zero coefficient")

// Exponent gaps beyond this are outside float64 precision, so the larger
// operand absorbs the smaller outright.
const maxAlignGap = 300

// Score is an arbitrary-tier exponential number. The zero value is zero.
type Score struct {
	Tiers int
	Coeff float64
	Exp   int
}

// Zero returns the additive identity.
func Zero() Score { return Score{} }

// FromFloat wraps a plain number as a tier-0, exponent-0 score.
func FromFloat(v float64) Score { return Score{Coeff: v} }

// Parse reads the textual form. Leading "e" runes count as tier markers;
// the remainder is coefficient, optionally followed by "e" and an integer
// exponent.
func Parse(s string) (Score, error) {
	var sc Score
	rest := s
	for strings.HasPrefix(rest, "e") {
		sc.Tiers++
		rest = rest[1:]
	}
	if rest == "" {
		return Score{}, fmt.Errorf("score: empty coefficient in %q", s)
	}

	coeffPart, expPart, hasExp := strings.Cut(rest, "e")
	coeff, err := strconv.ParseFloat(coeffPart, 64)
	if err != nil {
		return Score{}, fmt.Errorf("score: bad coefficient in %q: %w", s, err)
	}
	sc.Coeff = coeff
	if hasExp {
		exp, err := strconv.Atoi(expPart)
		if err != nil {
			return Score{}, fmt.Errorf("score: bad exponent in %q: %w", s, err)
		}
		sc.Exp = exp
	}
	return sc, nil
}

// MustParse is Parse for trusted literals; it panics on error.
func MustParse(s string) Score {
	sc, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return sc
}

func (s Score) String() string {
	var b strings.Builder
	for i := 0; i < s.Tiers; i++ {
		b.WriteByte('e')
	}
	b.WriteString(strconv.FormatFloat(s.Coeff, 'f', -1, 64))
	if s.Exp != 0 {
		b.WriteByte('e')
		b.WriteString(strconv.Itoa(s.Exp))
	}
	return b.String()
}

// Cmp orders scores lexicographically over (tiers, exponent, coefficient),
// most significant field first. It returns -1, 0 or +1.
func (s Score) Cmp(o Score) int {
	switch {
	case s.Tiers != o.Tiers:
		return cmpInt(s.Tiers, o.Tiers)
	case s.Exp != o.Exp:
		return cmpInt(s.Exp, o.Exp)
	case s.Coeff < o.Coeff:
		return -1
	case s.Coeff > o.Coeff:
		return 1
	}
	return 0
}

func cmpInt(a, b int) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}

func (s Score) Less(o Score) bool    { return s.Cmp(o) < 0 }
func (s Score) Greater(o Score) bool { return s.Cmp(o) > 0 }

// Negative reports whether the value is below zero. Callers treat a
// would-be-negative result as a reset-to-zero signal rather than storing it.
func (s Score) Negative() bool { return s.Coeff < 0 }

// IsZero reports whether the value is the additive identity.
func (s Score) IsZero() bool { return s.Tiers == 0 && s.Coeff == 0 }

// Add sums two scores after normalizing them onto a common basis.
//
// Adding the additive identity returns the other operand unchanged. A
// higher tier count dominates outright: tiers denote repeated
// exponentiation, so the lower operand is beneath representable precision.
// With equal tiers the smaller exponent is aligned up to the larger and
// its coefficient scaled down by the gap; coefficients of exponent-form
// values carry back into the exponent once they reach 10, while plain
// (exponent-0) values accumulate in the coefficient alone so that small
// numbers keep their natural textual form.
func (s Score) Add(o Score) Score {
	if o.IsZero() {
		return s
	}
	if s.IsZero() {
		return o
	}
	if s.Tiers != o.Tiers {
		if s.Tiers > o.Tiers {
			return s
		}
		return o
	}

	hi, lo := s, o
	if hi.Exp < lo.Exp {
		hi, lo = lo, hi
	}
	gap := hi.Exp - lo.Exp
	if gap > maxAlignGap {
		return hi
	}

	sum := Score{
		Tiers: hi.Tiers,
		Coeff: hi.Coeff + lo.Coeff*math.Pow(10, -float64(gap)),
		Exp:   hi.Exp,
	}
	if sum.Exp != 0 {
		for math.Abs(sum.Coeff) >= 10 {
			sum.Coeff /= 10
			sum.Exp++
		}
	}
	return sum
}

// Div scales the value down by o: coefficients divide, exponents and tier
// counts subtract. Dividing by a value of a higher tier collapses to zero.
func (s Score) Div(o Score) (Score, error) {
	if o.Coeff == 0 {
		return Score{}, ErrDivideByZero
	}
	tiers := s.Tiers - o.Tiers
	if tiers < 0 {
		return Score{}, nil
	}
	return Score{
		Tiers: tiers,
		Coeff: s.Coeff / o.Coeff,
		Exp:   s.Exp - o.Exp,
	}, nil
}
