package optimizer

// MultiplierTiers maps capital held with the boosting issuer to the reward
// multiplier applied to boosted choice cards. Checked top to bottom.
var MultiplierTiers = []struct {
	MinCapital float64
	Label      string
	Multiplier float64
}{
	{100000, "Platinum Honors", 1.75},
	{50000, "Platinum", 1.5},
	{20000, "Gold", 1.25},
}

// DefaultMultiplier applies below the lowest tier.
const DefaultMultiplier = 1.0

// MultiplierFor maps a capital amount to its reward multiplier.
func MultiplierFor(capital float64) float64 {
	for _, t := range MultiplierTiers {
		if capital >= t.MinCapital {
			return t.Multiplier
		}
	}
	return DefaultMultiplier
}

// TierLabel names the tier capital falls into, or "" below the lowest.
func TierLabel(capital float64) string {
	for _, t := range MultiplierTiers {
		if capital >= t.MinCapital {
			return t.Label
		}
	}
	return ""
}
