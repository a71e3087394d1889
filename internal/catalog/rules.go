package catalog

import (
	"fmt"
	"os"

	"CardOptimizer/internal/model"

	"gopkg.in/yaml.v3"
)

// CardRule is the static metadata attached to a catalog card by name.
type CardRule struct {
	Name           string           `yaml:"name"`
	Role           model.Role       `yaml:"role"`
	Choices        int              `yaml:"choices"`
	Boosted        bool             `yaml:"boosted"`
	AnnualFee      float64          `yaml:"annual_fee"`
	Membership     model.Membership `yaml:"membership"`
	MembershipCost float64          `yaml:"membership_cost"`
}

// Rules lists the cards whose treatment differs from a fee-free plain card.
type Rules struct {
	Cards []CardRule `yaml:"cards"`
}

// LoadRules reads card rules from a YAML file.
func LoadRules(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read card rules: %w", err)
	}
	return ParseRules(data)
}

// ParseRules decodes and validates card rules.
func ParseRules(data []byte) (*Rules, error) {
	var r Rules
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse card rules: %w", err)
	}
	if err := r.validate(); err != nil {
		return nil, err
	}
	return &r, nil
}

func (r *Rules) validate() error {
	seen := make(map[string]bool, len(r.Cards))
	overlaps := 0
	for i := range r.Cards {
		c := &r.Cards[i]
		if c.Name == "" {
			return dataErrorf(0, "rules", "rule %d has no card name", i+1)
		}
		if seen[c.Name] {
			return dataErrorf(0, "rules", "duplicate rule for %q", c.Name)
		}
		seen[c.Name] = true

		if c.Role == "" {
			c.Role = model.RolePlain
		}
		if !c.Role.Valid() {
			return dataErrorf(0, "rules", "%q: unknown role %q", c.Name, c.Role)
		}
		if c.Role == model.RoleChoice && c.Choices < 1 {
			return dataErrorf(0, "rules", "%q: choice card needs choices >= 1", c.Name)
		}
		if c.Role != model.RoleChoice && (c.Choices != 0 || c.Boosted) {
			return dataErrorf(0, "rules", "%q: choices and boosted only apply to choice cards", c.Name)
		}
		if c.Role == model.RoleOverlap {
			overlaps++
		}
		if !c.Membership.Valid() {
			return dataErrorf(0, "rules", "%q: unknown membership %q", c.Name, c.Membership)
		}
		if c.AnnualFee < 0 || c.MembershipCost < 0 {
			return dataErrorf(0, "rules", "%q: fees must not be negative", c.Name)
		}
	}
	if overlaps > 1 {
		return dataErrorf(0, "rules", "at most one overlap card is supported, got %d", overlaps)
	}
	return nil
}

// ApplyRules returns copies of templates with the rule metadata attached.
// Every rule must name a card present in templates; a missing card means the
// table lacks one of its structural rows.
func ApplyRules(templates []model.CardTemplate, rules *Rules) ([]model.CardTemplate, error) {
	if len(templates) == 0 {
		return nil, dataErrorf(0, "", "catalog has no cards")
	}
	out := make([]model.CardTemplate, len(templates))
	copy(out, templates)
	if rules == nil {
		return out, nil
	}

	byName := make(map[string]int, len(out))
	for i, t := range out {
		byName[t.Name] = i
	}
	for _, r := range rules.Cards {
		i, ok := byName[r.Name]
		if !ok {
			return nil, dataErrorf(0, "rules", "card %q is not in the catalog", r.Name)
		}
		t := &out[i]
		t.Role = r.Role
		t.Choices = r.Choices
		t.Boosted = r.Boosted
		t.AnnualFee = r.AnnualFee
		t.Membership = r.Membership
		t.MembershipCost = r.MembershipCost
	}
	return out, nil
}
