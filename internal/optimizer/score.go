package optimizer

import (
	"CardOptimizer/internal/model"
)

// OverlapDivisor scales down the overlap card's bonus: it pays out only a
// quarter of what it earns beyond the other selected cards.
const OverlapDivisor = 4.0

// Score returns the net monthly cash back of subset: rewards under the
// best-rate rule (with the overlap correction when the overlap card is
// present), minus annual fees and missing memberships per month. Fees are
// charged once per physical card.
func Score(entries []model.CatalogEntry, subset []int, spend model.SpendVector, members model.MemberAttributes) float64 {
	if len(subset) == 0 {
		return 0
	}

	overlap := -1
	var best model.Rates
	others := 0
	for _, i := range subset {
		e := &entries[i]
		if e.Overlap && overlap < 0 {
			overlap = i
			continue
		}
		others++
		for c, r := range e.Rates {
			if r > best[c] {
				best[c] = r
			}
		}
	}

	var total float64
	switch {
	case overlap < 0:
		total = earn(best, spend)
	case others == 0:
		total = earn(entries[overlap].Rates, spend) / OverlapDivisor
	default:
		ov := entries[overlap].Rates
		full := earn(ov, spend)
		var same float64
		for c, r := range ov {
			if r != 0 {
				same += best[c] * spend[c]
			}
		}
		total = (full-same)/OverlapDivisor + earn(best, spend)
	}

	return total - fees(entries, subset, members)
}

// earn is the spend-weighted sum of rates.
func earn(rates model.Rates, spend model.SpendVector) float64 {
	var sum float64
	for c, r := range rates {
		sum += r * spend[c]
	}
	return sum
}

func fees(entries []model.CatalogEntry, subset []int, members model.MemberAttributes) float64 {
	var cost float64
	for n, i := range subset {
		if seenOwner(entries, subset[:n], entries[i].Owner) {
			continue
		}
		cost += entries[i].MonthlyCost(members)
	}
	return cost
}

func seenOwner(entries []model.CatalogEntry, subset []int, owner string) bool {
	for _, i := range subset {
		if entries[i].Owner == owner {
			return true
		}
	}
	return false
}
