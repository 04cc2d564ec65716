// SPDX-License-Identifier: MIT
// Package: matrix
//
// Purpose:
//   - JSON forms of cells and statistics that keep NaN and ±Inf apart from
//     missing values. encoding/json refuses non-finite floats, so they travel
//     as the strings "NaN", "Infinity" and "-Infinity"; a missing value stays
//     null and a finite value stays a plain number.
//
// Exposed API:
//   - Grid: nullable cell block with the above encoding.
//   - MarshalJSON / UnmarshalJSON on ItemStat, ItemSetStat, PairwiseComparison.
//
// AI-Hints:
//   - Any *float64 that leaves the package through JSON must go through
//     jsonFloat; a bare NaN aborts the whole encoding.

package matrix

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Non-finite markers of the JSON form.
const (
	JSONNaN    = "NaN"
	JSONPosInf = "Infinity"
	JSONNegInf = "-Infinity"
)

// jsonFloat is a float64 whose JSON form admits non-finite values.
type jsonFloat float64

// MarshalJSON writes finite values as numbers and non-finite ones as markers.
func (f jsonFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	switch {
	case math.IsNaN(v):
		return []byte(`"` + JSONNaN + `"`), nil
	case math.IsInf(v, 1):
		return []byte(`"` + JSONPosInf + `"`), nil
	case math.IsInf(v, -1):
		return []byte(`"` + JSONNegInf + `"`), nil
	}

	return json.Marshal(v)
}

// UnmarshalJSON accepts a number or a quoted non-finite marker. A quoted
// finite number is rejected so the two forms stay unambiguous.
func (f *jsonFloat) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || data[0] != '"' {
		var v float64
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*f = jsonFloat(v)

		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || !(math.IsNaN(v) || math.IsInf(v, 0)) {
		return fmt.Errorf("matrix: %q is not a number or a non-finite marker", s)
	}
	*f = jsonFloat(v)

	return nil
}

func toJSONFloats(xs []*float64) []*jsonFloat {
	if xs == nil {
		return nil
	}
	out := make([]*jsonFloat, len(xs))
	for i, p := range xs {
		out[i] = (*jsonFloat)(p)
	}

	return out
}

func fromJSONFloats(xs []*jsonFloat) []*float64 {
	if xs == nil {
		return nil
	}
	out := make([]*float64, len(xs))
	for i, p := range xs {
		out[i] = (*float64)(p)
	}

	return out
}

// Grid is a row-major block of nullable cells. In JSON a nil cell is null
// and NaN/±Inf are quoted markers, so a round trip preserves all three.
type Grid [][]*float64

// MarshalJSON implements json.Marshaler.
func (g Grid) MarshalJSON() ([]byte, error) {
	if g == nil {
		return []byte("null"), nil
	}
	rows := make([][]*jsonFloat, len(g))
	for i, row := range g {
		rows[i] = toJSONFloats(row)
	}

	return json.Marshal(rows)
}

// UnmarshalJSON implements json.Unmarshaler.
func (g *Grid) UnmarshalJSON(data []byte) error {
	var rows [][]*jsonFloat
	if err := json.Unmarshal(data, &rows); err != nil {
		return err
	}
	if rows == nil {
		*g = nil
		return nil
	}
	out := make(Grid, len(rows))
	for i, row := range rows {
		out[i] = fromJSONFloats(row)
	}
	*g = out

	return nil
}

// MarshalJSON implements json.Marshaler.
func (s ItemStat) MarshalJSON() ([]byte, error) {
	type plain ItemStat
	return json.Marshal(struct {
		plain
		Avg *jsonFloat `json:"avg"`
		Min *jsonFloat `json:"min"`
		Max *jsonFloat `json:"max"`
		Std *jsonFloat `json:"std"`
	}{plain(s), (*jsonFloat)(s.Avg), (*jsonFloat)(s.Min), (*jsonFloat)(s.Max), (*jsonFloat)(s.Std)})
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *ItemStat) UnmarshalJSON(data []byte) error {
	type plain ItemStat
	var aux struct {
		plain
		Avg *jsonFloat `json:"avg"`
		Min *jsonFloat `json:"min"`
		Max *jsonFloat `json:"max"`
		Std *jsonFloat `json:"std"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*s = ItemStat(aux.plain)
	s.Avg, s.Min, s.Max, s.Std = (*float64)(aux.Avg), (*float64)(aux.Min), (*float64)(aux.Max), (*float64)(aux.Std)

	return nil
}

// MarshalJSON implements json.Marshaler.
func (s ItemSetStat) MarshalJSON() ([]byte, error) {
	type plain ItemSetStat
	return json.Marshal(struct {
		plain
		Avgs []*jsonFloat `json:"avgs,omitempty"`
		Mins []*jsonFloat `json:"mins,omitempty"`
		Maxs []*jsonFloat `json:"maxs,omitempty"`
		Stds []*jsonFloat `json:"stds,omitempty"`
	}{plain(s), toJSONFloats(s.Avgs), toJSONFloats(s.Mins), toJSONFloats(s.Maxs), toJSONFloats(s.Stds)})
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *ItemSetStat) UnmarshalJSON(data []byte) error {
	type plain ItemSetStat
	var aux struct {
		plain
		Avgs []*jsonFloat `json:"avgs,omitempty"`
		Mins []*jsonFloat `json:"mins,omitempty"`
		Maxs []*jsonFloat `json:"maxs,omitempty"`
		Stds []*jsonFloat `json:"stds,omitempty"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*s = ItemSetStat(aux.plain)
	s.Avgs, s.Mins, s.Maxs, s.Stds = fromJSONFloats(aux.Avgs), fromJSONFloats(aux.Mins), fromJSONFloats(aux.Maxs), fromJSONFloats(aux.Stds)

	return nil
}

// MarshalJSON implements json.Marshaler.
func (p PairwiseComparison) MarshalJSON() ([]byte, error) {
	type plain PairwiseComparison
	return json.Marshal(struct {
		plain
		ComparisonValues Grid `json:"comparison_values"`
	}{plain(p), Grid(p.ComparisonValues)})
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *PairwiseComparison) UnmarshalJSON(data []byte) error {
	type plain PairwiseComparison
	var aux struct {
		plain
		ComparisonValues Grid `json:"comparison_values"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*p = PairwiseComparison(aux.plain)
	p.ComparisonValues = aux.ComparisonValues

	return nil
}
