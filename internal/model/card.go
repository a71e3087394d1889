package model

// Role describes how the optimizer treats a catalog card.
type Role string

const (
	// RolePlain cards are selectable as-is.
	RolePlain Role = "plain"
	// RoleOverlap marks the card that earns on all of its categories at once,
	// net of what the other selected cards already capture there.
	RoleOverlap Role = "overlap"
	// RoleChoice cards let the holder activate a bounded number of categories.
	RoleChoice Role = "choice"
)

func (r Role) Valid() bool {
	switch r {
	case RolePlain, RoleOverlap, RoleChoice:
		return true
	}
	return false
}

// Rates is a reward vector: the fraction of spend returned per category.
type Rates [NumCategories]float64

// NonZero returns the categories with a positive rate, in index order.
func (r Rates) NonZero() []Category {
	var out []Category
	for i, v := range r {
		if v != 0 {
			out = append(out, Category(i))
		}
	}
	return out
}

// Scale returns a copy of r multiplied by f.
func (r Rates) Scale(f float64) Rates {
	for i := range r {
		r[i] *= f
	}
	return r
}

// CardTemplate is a raw catalog row plus the static rules attached to it.
// Templates are reference data: copy, never mutate in place.
type CardTemplate struct {
	Name  string
	ID    string
	Rates Rates

	Role Role
	// Choices is the number of categories a RoleChoice card may activate.
	Choices int
	// Boosted choice cards have their derived entries scaled by the reward multiplier.
	Boosted bool

	AnnualFee      float64
	Membership     Membership
	MembershipCost float64
}

// CatalogEntry is one enumerable alternative of a physical card. A plain card
// owns exactly one entry; a choice card owns one per category sub-selection.
type CatalogEntry struct {
	Owner   string
	Rates   Rates
	Choice  bool
	Overlap bool

	AnnualFee      float64
	Membership     Membership
	MembershipCost float64
}

// MonthlyCost returns the fee and membership drag of the entry, per month.
func (e CatalogEntry) MonthlyCost(members MemberAttributes) float64 {
	cost := e.AnnualFee / 12
	if e.Membership != MembershipNone && !members.Has(e.Membership) {
		cost += e.MembershipCost / 12
	}
	return cost
}
