package model

import (
	"fmt"
	"math"
)

// SpendVector holds average monthly spend per category.
type SpendVector [NumCategories]float64

// Total returns the sum over all categories.
func (s SpendVector) Total() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v
	}
	return sum
}

// NewSpendVector builds a spend vector from named amounts and the declared
// monthly total. Whatever the named amounts leave of the total is added to
// Other; a total below the named sum leaves Other unchanged.
func NewSpendVector(named map[Category]float64, total float64) (SpendVector, error) {
	var s SpendVector
	for c, v := range named {
		if !c.Valid() {
			return s, fmt.Errorf("unknown category %d", int(c))
		}
		if !finite(v) {
			return s, fmt.Errorf("spend for %s is not a finite number", c)
		}
		if v < 0 {
			return s, fmt.Errorf("negative spend for %s: %.2f", c, v)
		}
		s[c] = v
	}
	if !finite(total) {
		return s, fmt.Errorf("total spend is not a finite number")
	}
	if total < 0 {
		return s, fmt.Errorf("negative total spend: %.2f", total)
	}
	if !finite(s.Total()) {
		return s, fmt.Errorf("spend amounts are too large")
	}
	if left := total - s.Total(); left > 0 {
		s[Other] += left
	}
	return s, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
