package recorder

import "sort"

// CardCount is how often a card was recommended.
type CardCount struct {
	Card  string
	Count int
}

// Digest aggregates a set of runs.
type Digest struct {
	Runs       int
	AvgAnnual  float64
	BestAnnual float64

	// TopCards is ordered by count, then name.
	TopCards []CardCount
}

// Summarize aggregates runs. A card appearing twice in one run counts once.
func Summarize(runs []Run, top int) Digest {
	d := Digest{Runs: len(runs)}
	if len(runs) == 0 {
		return d
	}
	counts := make(map[string]int)
	var sum float64
	for i, run := range runs {
		sum += run.Annual
		if i == 0 || run.Annual > d.BestAnnual {
			d.BestAnnual = run.Annual
		}
		seen := make(map[string]bool, len(run.Cards))
		for _, c := range run.Cards {
			if !seen[c] {
				seen[c] = true
				counts[c]++
			}
		}
	}
	d.AvgAnnual = sum / float64(len(runs))

	for c, n := range counts {
		d.TopCards = append(d.TopCards, CardCount{Card: c, Count: n})
	}
	sort.Slice(d.TopCards, func(i, j int) bool {
		a, b := d.TopCards[i], d.TopCards[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Card < b.Card
	})
	if top > 0 && len(d.TopCards) > top {
		d.TopCards = d.TopCards[:top]
	}
	return d
}
