/*
 * Copyright (c) 2026 by the Swaralipi Authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package rational provides exact fraction arithmetic for musical durations
// and pitch alterations. Durations are denominated in whole-note units; a
// quarter note is 1/4. All arithmetic stays in big.Rat so beat totals,
// tuplet ratios and quarter-tone alterations never pick up floating-point
// drift.
package rational

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// Rational is an immutable reduced fraction. The zero value is 0/1 and is
// ready to use.
type Rational struct {
	r big.Rat
}

// New returns the reduced fraction num/den. den must be non-zero.
func New(num, den int64) Rational {
	if den == 0 {
		panic("rational: zero denominator")
	}
	var out Rational
	out.r.SetFrac64(num, den)
	return out
}

// FromInt returns n/1.
func FromInt(n int64) Rational {
	var out Rational
	out.r.SetInt64(n)
	return out
}

// Zero returns 0/1.
func Zero() Rational { return Rational{} }

func (a Rational) Add(b Rational) Rational {
	var out Rational
	out.r.Add(&a.r, &b.r)
	return out
}

func (a Rational) Sub(b Rational) Rational {
	var out Rational
	out.r.Sub(&a.r, &b.r)
	return out
}

func (a Rational) Mul(b Rational) Rational {
	var out Rational
	out.r.Mul(&a.r, &b.r)
	return out
}

// Div divides a by b. b must be non-zero.
func (a Rational) Div(b Rational) Rational {
	if b.r.Sign() == 0 {
		panic("rational: division by zero")
	}
	var out Rational
	var inv big.Rat
	inv.Inv(&b.r)
	out.r.Mul(&a.r, &inv)
	return out
}

// Cmp returns -1, 0 or +1 like big.Rat.Cmp.
func (a Rational) Cmp(b Rational) int { return a.r.Cmp(&b.r) }

func (a Rational) Equal(b Rational) bool { return a.r.Cmp(&b.r) == 0 }

func (a Rational) Sign() int { return a.r.Sign() }

func (a Rational) IsZero() bool { return a.r.Sign() == 0 }

func (a Rational) IsPositive() bool { return a.r.Sign() > 0 }

// Num returns the numerator of the reduced fraction.
func (a Rational) Num() int64 { return a.r.Num().Int64() }

// Den returns the denominator of the reduced fraction; always positive.
func (a Rational) Den() int64 { return a.r.Denom().Int64() }

// Float64 is for display and MIDI key rounding only; never feed the result
// back into duration arithmetic.
func (a Rational) Float64() float64 {
	f, _ := a.r.Float64()
	return f
}

// String renders "n/d", or just "n" for integers.
func (a Rational) String() string {
	if a.r.IsInt() {
		return a.r.Num().String()
	}
	return a.r.RatString()
}

// Parse reads the String form back ("3/4", "2", "-1/2").
func Parse(s string) (Rational, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Rational{}, fmt.Errorf("rational: empty string")
	}
	if i := strings.IndexByte(s, '/'); i >= 0 {
		num, err := strconv.ParseInt(s[:i], 10, 64)
		if err != nil {
			return Rational{}, fmt.Errorf("rational: bad numerator %q: %w", s[:i], err)
		}
		den, err := strconv.ParseInt(s[i+1:], 10, 64)
		if err != nil {
			return Rational{}, fmt.Errorf("rational: bad denominator %q: %w", s[i+1:], err)
		}
		if den == 0 {
			return Rational{}, fmt.Errorf("rational: zero denominator in %q", s)
		}
		return New(num, den), nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return Rational{}, fmt.Errorf("rational: bad integer %q: %w", s, err)
	}
	return FromInt(n), nil
}

// MarshalJSON encodes the fraction as its String form, quoted.
func (a Rational) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(a.String())), nil
}

func (a *Rational) UnmarshalJSON(data []byte) error {
	s, err := strconv.Unquote(string(data))
	if err != nil {
		return fmt.Errorf("rational: expected quoted fraction, got %s", data)
	}
	v, err := Parse(s)
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// LCD returns the least common denominator of the given fractions, or 1 for
// an empty slice. The MusicXML exporter uses this to pick a <divisions>
// value that makes every duration an exact integer tick count.
func LCD(vals []Rational) int64 {
	lcd := big.NewInt(1)
	var gcd, tmp big.Int
	for _, v := range vals {
		den := v.r.Denom()
		gcd.GCD(nil, nil, lcd, den)
		tmp.Div(lcd, &gcd)
		lcd.Mul(&tmp, den)
	}
	return lcd.Int64()
}

// Ticks converts a whole-note duration into MIDI ticks at the given
// ticks-per-quarter resolution, rounding half to even. A quarter note
// (1/4 whole) at tpq=480 yields exactly 480.
func (a Rational) Ticks(tpq uint16) int64 {
	// ticks = a * tpq * 4, rounded half-to-even.
	var scaled big.Rat
	scaled.Mul(&a.r, new(big.Rat).SetInt64(int64(tpq)*4))
	num := scaled.Num()
	den := scaled.Denom()
	var quo, rem big.Int
	quo.QuoRem(num, den, &rem)
	rem.Abs(&rem)
	twice := new(big.Int).Lsh(&rem, 1)
	switch twice.Cmp(den) {
	case 1: // remainder > 1/2: away from zero
		if scaled.Sign() < 0 {
			quo.Sub(&quo, big.NewInt(1))
		} else {
			quo.Add(&quo, big.NewInt(1))
		}
	case 0: // exactly 1/2: to even
		if quo.Bit(0) == 1 {
			if scaled.Sign() < 0 {
				quo.Sub(&quo, big.NewInt(1))
			} else {
				quo.Add(&quo, big.NewInt(1))
			}
		}
	}
	return quo.Int64()
}
