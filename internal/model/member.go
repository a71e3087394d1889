package model

// Membership identifies a paid club a card needs to realize its full value.
type Membership string

const (
	MembershipNone     Membership = ""
	MembershipCostco   Membership = "costco"
	MembershipSamsClub Membership = "sams_club"
	MembershipAmazon   Membership = "amazon"
)

func (m Membership) Valid() bool {
	switch m {
	case MembershipNone, MembershipCostco, MembershipSamsClub, MembershipAmazon:
		return true
	}
	return false
}

// Label is the short recommendation key shown to the user.
func (m Membership) Label() string {
	switch m {
	case MembershipCostco:
		return "COSTCO"
	case MembershipSamsClub:
		return "SC"
	case MembershipAmazon:
		return "AMZN"
	}
	return ""
}

func (m Membership) DisplayName() string {
	switch m {
	case MembershipCostco:
		return "Costco"
	case MembershipSamsClub:
		return "Sam's Club"
	case MembershipAmazon:
		return "Amazon Prime"
	}
	return ""
}

// MemberAttributes records which memberships the user already holds.
type MemberAttributes struct {
	Costco   bool `json:"costco"`
	SamsClub bool `json:"sams_club"`
	Amazon   bool `json:"amazon"`
}

// Has reports whether the user holds m. MembershipNone is always held.
func (a MemberAttributes) Has(m Membership) bool {
	switch m {
	case MembershipCostco:
		return a.Costco
	case MembershipSamsClub:
		return a.SamsClub
	case MembershipAmazon:
		return a.Amazon
	}
	return true
}
