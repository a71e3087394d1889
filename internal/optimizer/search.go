package optimizer

import (
	"context"
	"math"
	"sort"

	"CardOptimizer/internal/catalog"
	"CardOptimizer/internal/model"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat/combin"
)

// Options tunes the search.
type Options struct {
	// ExhaustiveLimit caps how many cards are chosen by full enumeration;
	// cards beyond it are added greedily.
	ExhaustiveLimit int
	// Workers splits the exhaustive phase into contiguous chunks of owner
	// combinations scored concurrently.
	Workers int
}

func DefaultOptions() Options {
	return Options{ExhaustiveLimit: 3, Workers: 1}
}

// Result is the outcome of one optimization.
type Result struct {
	Score  float64
	Subset []int
	// Memberships the user lacks for cards in Subset, in subset order.
	Memberships []model.Membership
	// SelectedCategories holds the activated categories per choice card.
	SelectedCategories map[string][]model.Category
	// Core is the number of cards chosen exhaustively.
	Core int
	// Evaluated counts scored subsets across both phases.
	Evaluated int
}

// candidate is the best subset found so far in one chunk of the search.
type candidate struct {
	score     float64
	subset    []int
	evaluated int
}

// Optimize selects up to cardCount cards from cat maximizing Score.
//
// The first min(cardCount, ExhaustiveLimit) cards are chosen by enumerating
// every combination of distinct owners, in lexicographic order of sorted
// owner names, and every pairing of their entries. Ties keep the first
// subset found. Each further card is the single entry, from an owner not yet
// selected, that raises the score most; a round without strict improvement
// ends the search, so fewer than cardCount cards may be returned.
func Optimize(ctx context.Context, cat *catalog.Catalog, cardCount int, spend model.SpendVector, members model.MemberAttributes, opts Options) (Result, error) {
	res := Result{SelectedCategories: map[string][]model.Category{}}
	if cat == nil || cardCount < 1 || len(cat.Owners) == 0 {
		return res, nil
	}
	if opts.ExhaustiveLimit < 1 {
		opts.ExhaustiveLimit = DefaultOptions().ExhaustiveLimit
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}

	core := min(cardCount, opts.ExhaustiveLimit, len(cat.Owners))
	best, err := exhaustive(ctx, cat, core, spend, members, opts.Workers)
	if err != nil {
		return res, err
	}
	res.Core = core
	res.Evaluated = best.evaluated

	subset, score := best.subset, best.score
	for round := core; round < cardCount; round++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		next, nextScore, n := extend(cat, subset, score, spend, members)
		res.Evaluated += n
		if next < 0 {
			// An unchanged subset cannot improve in a later round either.
			break
		}
		subset = append(subset, next)
		score = nextScore
	}

	res.Score = score
	res.Subset = subset
	res.Memberships = Recommendations(cat.Entries, subset, members)
	res.SelectedCategories = SelectedCategories(cat.Entries, subset)
	return res, nil
}

// exhaustive scores every owner combination of size core. Combinations are
// split into contiguous chunks; each chunk keeps its first maximum and the
// chunks are reduced in order, so the result matches a sequential scan.
func exhaustive(ctx context.Context, cat *catalog.Catalog, core int, spend model.SpendVector, members model.MemberAttributes, workers int) (candidate, error) {
	combos := combin.Combinations(len(cat.Owners), core)
	workers = max(1, min(workers, len(combos)))
	size := max(1, (len(combos)+workers-1)/workers)
	chunks := (len(combos) + size - 1) / size

	results := make([]candidate, chunks)
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < chunks; w++ {
		lo := w * size
		hi := min(lo+size, len(combos))
		g.Go(func() error {
			c, err := scanCombos(gctx, cat, combos[lo:hi], spend, members)
			results[w] = c
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return candidate{}, err
	}

	best := candidate{score: math.Inf(-1)}
	total := 0
	for _, c := range results {
		total += c.evaluated
		if c.subset != nil && c.score > best.score {
			best = c
		}
	}
	best.evaluated = total
	if best.subset == nil {
		best.score = 0
	}
	return best, nil
}

func scanCombos(ctx context.Context, cat *catalog.Catalog, combos [][]int, spend model.SpendVector, members model.MemberAttributes) (candidate, error) {
	best := candidate{score: math.Inf(-1)}
	alts := make([][]int, 0, 4)
	lens := make([]int, 0, 4)
	subset := make([]int, 0, 4)
	for _, combo := range combos {
		if err := ctx.Err(); err != nil {
			return best, err
		}
		alts, lens = alts[:0], lens[:0]
		for _, o := range combo {
			idx := cat.Index[cat.Owners[o]]
			alts = append(alts, idx)
			lens = append(lens, len(idx))
		}
		for _, pick := range combin.Cartesian(lens) {
			subset = subset[:0]
			for i, p := range pick {
				subset = append(subset, alts[i][p])
			}
			s := Score(cat.Entries, subset, spend, members)
			best.evaluated++
			if s > best.score {
				best.score = s
				best.subset = append([]int(nil), subset...)
			}
		}
	}
	return best, nil
}

// extend finds the entry whose addition raises score the most. It returns
// -1 when no entry strictly improves on score.
func extend(cat *catalog.Catalog, subset []int, score float64, spend model.SpendVector, members model.MemberAttributes) (int, float64, int) {
	used := make(map[string]bool, len(subset))
	for _, i := range subset {
		used[cat.Entries[i].Owner] = true
	}

	trial := make([]int, len(subset)+1)
	copy(trial, subset)
	pick, pickScore := -1, math.Inf(-1)
	evaluated := 0
	for i, e := range cat.Entries {
		if used[e.Owner] {
			continue
		}
		trial[len(subset)] = i
		s := Score(cat.Entries, trial, spend, members)
		evaluated++
		if s > pickScore {
			pick, pickScore = i, s
		}
	}
	if pick < 0 || pickScore <= score {
		return -1, score, evaluated
	}
	return pick, pickScore, evaluated
}

// Recommendations lists, once each, the memberships required by cards in
// subset that the user does not hold.
func Recommendations(entries []model.CatalogEntry, subset []int, members model.MemberAttributes) []model.Membership {
	var out []model.Membership
	for _, i := range subset {
		m := entries[i].Membership
		if m == model.MembershipNone || members.Has(m) {
			continue
		}
		dup := false
		for _, have := range out {
			dup = dup || have == m
		}
		if !dup {
			out = append(out, m)
		}
	}
	return out
}

// SelectedCategories collects, per choice card in subset, the categories its
// chosen entries activate.
func SelectedCategories(entries []model.CatalogEntry, subset []int) map[string][]model.Category {
	out := make(map[string][]model.Category)
	for _, i := range subset {
		e := entries[i]
		if !e.Choice {
			continue
		}
		for _, c := range e.Rates.NonZero() {
			if !containsCategory(out[e.Owner], c) {
				out[e.Owner] = append(out[e.Owner], c)
			}
		}
	}
	for _, cats := range out {
		sort.Slice(cats, func(a, b int) bool { return cats[a] < cats[b] })
	}
	return out
}

func containsCategory(cs []model.Category, c model.Category) bool {
	for _, have := range cs {
		if have == c {
			return true
		}
	}
	return false
}

// SearchSpace returns how many subsets the exhaustive phase scores for core
// cards: the sum over owner combinations of the product of their entry counts.
func SearchSpace(cat *catalog.Catalog, core int) int {
	if cat == nil || core < 1 || core > len(cat.Owners) {
		return 0
	}
	total := 0
	for _, combo := range combin.Combinations(len(cat.Owners), core) {
		n := 1
		for _, o := range combo {
			n *= len(cat.Index[cat.Owners[o]])
		}
		total += n
	}
	return total
}
