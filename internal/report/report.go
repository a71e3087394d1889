package report

import (
	"sort"

	"CardOptimizer/internal/catalog"
	"CardOptimizer/internal/model"
	"CardOptimizer/internal/optimizer"

	"github.com/shopspring/decimal"
)

const monthsPerYear = 12

var (
	twelve  = decimal.NewFromInt(monthsPerYear)
	hundred = decimal.NewFromInt(100)
)

// Report is the user-facing summary of an optimization.
type Report struct {
	// Cards lists the selected card names in selection order. A name may
	// repeat when several entries of one choice card were selected.
	Cards []string `json:"cards"`
	// SelectedCategories maps each choice card to the category names to activate.
	SelectedCategories map[string][]string `json:"selected_categories"`
	// Memberships are the short labels of memberships the user should join.
	Memberships []string `json:"memberships"`

	MonthlyCashBack decimal.Decimal `json:"monthly_cash_back"`
	AnnualCashBack  decimal.Decimal `json:"annual_cash_back"`
	// AverageRate is net cash back as a percentage of spend.
	AverageRate  decimal.Decimal `json:"average_rate_pct"`
	MonthlySpend decimal.Decimal `json:"monthly_spend"`
	AnnualSpend  decimal.Decimal `json:"annual_spend"`

	Requested      int     `json:"requested_cards"`
	Core           int     `json:"exhaustive_cards"`
	Evaluated      int     `json:"evaluated_subsets"`
	Multiplier     float64 `json:"reward_multiplier"`
	Tier           string  `json:"tier,omitempty"`
	CatalogVersion uint64  `json:"catalog_version"`
}

// Summary holds the money figures derived from a score and a spend total.
type Summary struct {
	Monthly decimal.Decimal
	Annual  decimal.Decimal
	// AverageRate is in percent; zero when nothing is spent.
	AverageRate  decimal.Decimal
	MonthlySpend decimal.Decimal
	AnnualSpend  decimal.Decimal
}

// Stats converts a monthly score into rounded money figures.
func Stats(score float64, spend model.SpendVector) Summary {
	monthly := decimal.NewFromFloat(score)
	total := decimal.NewFromFloat(spend.Total())

	avg := decimal.Zero
	if total.IsPositive() {
		avg = monthly.Div(total).Mul(hundred)
	}
	return Summary{
		Monthly:      monthly.Round(2),
		Annual:       monthly.Mul(twelve).Round(2),
		AverageRate:  avg.Round(2),
		MonthlySpend: total.Round(2),
		AnnualSpend:  total.Mul(twelve).Round(2),
	}
}

// Summarize turns an optimizer result into a Report.
func Summarize(cat *catalog.Catalog, res optimizer.Result, spend model.SpendVector, requested int) *Report {
	s := Stats(res.Score, spend)
	r := &Report{
		Cards:              []string{},
		SelectedCategories: make(map[string][]string, len(res.SelectedCategories)),
		Memberships:        make([]string, 0, len(res.Memberships)),
		MonthlyCashBack:    s.Monthly,
		AnnualCashBack:     s.Annual,
		AverageRate:        s.AverageRate,
		MonthlySpend:       s.MonthlySpend,
		AnnualSpend:        s.AnnualSpend,
		Requested:          requested,
		Core:               res.Core,
		Evaluated:          res.Evaluated,
	}
	if cat != nil {
		r.Cards = cat.Names(res.Subset)
		r.Multiplier = cat.Multiplier
		r.CatalogVersion = cat.Version
	}
	for owner, cats := range res.SelectedCategories {
		names := make([]string, len(cats))
		for i, c := range cats {
			names[i] = c.String()
		}
		r.SelectedCategories[owner] = names
	}
	for _, m := range res.Memberships {
		r.Memberships = append(r.Memberships, m.Label())
	}
	return r
}

// ChoiceCards returns the keys of SelectedCategories in sorted order.
func (r *Report) ChoiceCards() []string {
	out := make([]string, 0, len(r.SelectedCategories))
	for name := range r.SelectedCategories {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
