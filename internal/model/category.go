package model

import "strings"

// Category indexes a spend category. The order is fixed and shared by every
// reward vector and spend vector in the system.
type Category int

const (
	Groceries Category = iota
	Gas
	Dining
	Entertainment
	Travel
	Utilities
	CellPhone
	Gym
	OnlineShopping
	Amazon
	HomeImprovement
	Streaming
	SportingGoods
	Apple
	ForeignTransactions
	Rideshare
	Other
)

// NumCategories is the length of every reward and spend vector.
const NumCategories = int(Other) + 1

var categoryNames = [NumCategories]string{
	"Groceries",
	"Gas",
	"Dining",
	"Entertainment",
	"Travel",
	"Utilities",
	"Cell Phone",
	"Gym/Fitness",
	"Online Shopping",
	"Amazon.com",
	"Home Improvement",
	"Internet/Cable/Streaming",
	"Sporting Goods",
	"Apple Store",
	"Foreign Transactions",
	"Rideshare",
	"Other",
}

var categoryKeys = [NumCategories]string{
	"groceries",
	"gas",
	"dining",
	"entertainment",
	"travel",
	"utilities",
	"cell_phone",
	"gym",
	"online_shopping",
	"amazon",
	"home_improvement",
	"streaming",
	"sporting_goods",
	"apple",
	"foreign_transactions",
	"rideshare",
	"other",
}

// aliases accepted by ParseCategory besides the canonical keys.
var categoryAliases = map[string]Category{
	"eating_out":               Dining,
	"restaurants":              Dining,
	"cell_phone_carrier":       CellPhone,
	"phone":                    CellPhone,
	"gym_fitness":              Gym,
	"fitness":                  Gym,
	"online":                   OnlineShopping,
	"amazon.com":               Amazon,
	"amazon_com":               Amazon,
	"internet_cable_streaming": Streaming,
	"internet":                 Streaming,
	"sporting_good_stores":     SportingGoods,
	"apple_store":              Apple,
	"foreign":                  ForeignTransactions,
	"uber":                     Rideshare,
}

// String returns the display name of the category.
func (c Category) String() string {
	if !c.Valid() {
		return "Unknown"
	}
	return categoryNames[c]
}

// Key returns the machine key used in commands, JSON feeds and rule files.
func (c Category) Key() string {
	if !c.Valid() {
		return ""
	}
	return categoryKeys[c]
}

func (c Category) Valid() bool {
	return c >= 0 && int(c) < NumCategories
}

// Categories returns every category in index order.
func Categories() []Category {
	out := make([]Category, NumCategories)
	for i := range out {
		out[i] = Category(i)
	}
	return out
}

// ParseCategory resolves a key, display name or CSV header to a Category.
// Matching ignores case and treats spaces, dashes and slashes as underscores.
func ParseCategory(s string) (Category, bool) {
	norm := normalizeKey(s)
	if norm == "" {
		return 0, false
	}
	for i, k := range categoryKeys {
		if k == norm || normalizeKey(categoryNames[i]) == norm {
			return Category(i), true
		}
	}
	c, ok := categoryAliases[norm]
	return c, ok
}

func normalizeKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "_", "-", "_", "/", "_").Replace(s)
}
