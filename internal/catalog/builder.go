package catalog

import (
	"fmt"
	"sort"

	"CardOptimizer/internal/model"

	"gonum.org/v1/gonum/stat/combin"
)

// Catalog is the expanded search universe: every selectable entry plus the
// index from card name to the entries it owns.
type Catalog struct {
	Entries []model.CatalogEntry
	// Index maps each card name to its entry indices. Choice cards with fewer
	// eligible categories than their limit map to an empty list.
	Index map[string][]int
	// Owners lists the card names that own at least one entry, sorted.
	Owners []string
	// Templates is the source row set, in catalog order.
	Templates  []model.CardTemplate
	Multiplier float64
	Version    uint64
}

// Build expands templates into a Catalog. Plain and overlap cards map to one
// entry each, in catalog order; choice cards follow, in catalog order, each
// expanded into one entry per sub-selection of its eligible categories.
// Entries of boosted choice cards are scaled by multiplier.
func Build(templates []model.CardTemplate, multiplier float64) (*Catalog, error) {
	if len(templates) == 0 {
		return nil, dataErrorf(0, "", "catalog has no cards")
	}
	if multiplier <= 0 {
		return nil, fmt.Errorf("reward multiplier must be positive, got %v", multiplier)
	}

	cat := &Catalog{
		Index:      make(map[string][]int, len(templates)),
		Templates:  append([]model.CardTemplate(nil), templates...),
		Multiplier: multiplier,
	}
	for _, t := range templates {
		if _, dup := cat.Index[t.Name]; dup {
			return nil, dataErrorf(0, "", "duplicate card %q", t.Name)
		}
		cat.Index[t.Name] = nil
		if t.Role == model.RoleChoice {
			continue
		}
		cat.Index[t.Name] = []int{len(cat.Entries)}
		cat.Entries = append(cat.Entries, model.CatalogEntry{
			Owner:          t.Name,
			Rates:          t.Rates,
			Overlap:        t.Role == model.RoleOverlap,
			AnnualFee:      t.AnnualFee,
			Membership:     t.Membership,
			MembershipCost: t.MembershipCost,
		})
	}

	for _, t := range templates {
		if t.Role != model.RoleChoice {
			continue
		}
		idx := []int{}
		for _, rates := range expandChoices(t, multiplier) {
			idx = append(idx, len(cat.Entries))
			cat.Entries = append(cat.Entries, model.CatalogEntry{
				Owner:          t.Name,
				Rates:          rates,
				Choice:         true,
				AnnualFee:      t.AnnualFee,
				Membership:     t.Membership,
				MembershipCost: t.MembershipCost,
			})
		}
		cat.Index[t.Name] = idx
	}

	for name, idx := range cat.Index {
		if len(idx) > 0 {
			cat.Owners = append(cat.Owners, name)
		}
	}
	sort.Strings(cat.Owners)
	return cat, nil
}

// EligibleCategories returns the categories a choice card may activate: every
// non-zero category except foreign transactions.
func EligibleCategories(t model.CardTemplate) []model.Category {
	var out []model.Category
	for _, c := range t.Rates.NonZero() {
		if c != model.ForeignTransactions {
			out = append(out, c)
		}
	}
	return out
}

// expandChoices returns one reward vector per k-combination of the eligible
// categories, in lexicographic order of category index.
func expandChoices(t model.CardTemplate, multiplier float64) []model.Rates {
	eligible := EligibleCategories(t)
	k := t.Choices
	if k < 1 || len(eligible) < k {
		return nil
	}
	combos := combin.Combinations(len(eligible), k)
	out := make([]model.Rates, 0, len(combos))
	for _, combo := range combos {
		var r model.Rates
		for _, i := range combo {
			c := eligible[i]
			r[c] = t.Rates[c]
		}
		if t.Boosted {
			r = r.Scale(multiplier)
		}
		out = append(out, r)
	}
	return out
}

// Names maps entry indices to card names.
func (c *Catalog) Names(subset []int) []string {
	out := make([]string, len(subset))
	for i, e := range subset {
		out[i] = c.Entries[e].Owner
	}
	return out
}
