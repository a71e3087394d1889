package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"CardOptimizer/internal/model"
	"CardOptimizer/internal/optimizer"
	"CardOptimizer/internal/recorder"
	"CardOptimizer/internal/report"
)

// FormatReport formats an optimization result into a Telegram message.
func FormatReport(r *report.Report) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("💳 <b>Best %d-card wallet</b>\n\n", r.Requested))
	if len(r.Cards) == 0 {
		b.WriteString("No combination earns anything for this spend profile.\n")
		return b.String()
	}
	for i, name := range r.Cards {
		b.WriteString(fmt.Sprintf("%d. %s\n", i+1, html.EscapeString(name)))
	}
	if len(r.Cards) < r.Requested {
		b.WriteString(fmt.Sprintf("<i>More cards would not add cash back; stopped at %d.</i>\n", len(r.Cards)))
	}

	if choices := r.ChoiceCards(); len(choices) > 0 {
		b.WriteString("\n🎯 <b>Activate categories:</b>\n")
		for _, name := range choices {
			b.WriteString(fmt.Sprintf("  %s: %s\n", html.EscapeString(name),
				html.EscapeString(strings.Join(r.SelectedCategories[name], ", "))))
		}
	}

	if len(r.Memberships) > 0 {
		b.WriteString(fmt.Sprintf("\n🛒 <b>Memberships needed:</b> %s\n", strings.Join(r.Memberships, ", ")))
	}

	b.WriteString("\n💰 <b>Cash back</b>\n")
	b.WriteString(fmt.Sprintf("  Monthly: $%s\n", r.MonthlyCashBack.StringFixed(2)))
	b.WriteString(fmt.Sprintf("  Annual: $%s\n", r.AnnualCashBack.StringFixed(2)))
	b.WriteString(fmt.Sprintf("  Average: %s%% of $%s/month\n", r.AverageRate.StringFixed(2), r.MonthlySpend.StringFixed(2)))
	if r.Multiplier > 1 {
		b.WriteString(fmt.Sprintf("  Reward multiplier: %.2fx", r.Multiplier))
		if r.Tier != "" {
			b.WriteString(" (" + html.EscapeString(r.Tier) + ")")
		}
		b.WriteString("\n")
	}
	return b.String()
}

// CatalogInfo describes the catalog currently served.
type CatalogInfo struct {
	Templates   []model.CardTemplate
	Version     uint64
	Source      string
	LoadedAt    time.Time
	SearchSpace int
}

// FormatCatalog lists the catalog cards with their rules.
func FormatCatalog(info CatalogInfo) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📚 <b>Card catalog</b> v%d | %d cards\n", info.Version, len(info.Templates)))
	b.WriteString(fmt.Sprintf("Source: %s\n", html.EscapeString(info.Source)))
	if !info.LoadedAt.IsZero() {
		b.WriteString(fmt.Sprintf("Loaded: %s\n", info.LoadedAt.Format("2006-01-02 15:04")))
	}
	b.WriteString("\n")
	for _, t := range info.Templates {
		b.WriteString("• " + html.EscapeString(t.Name))
		var notes []string
		switch t.Role {
		case model.RoleChoice:
			notes = append(notes, fmt.Sprintf("pick %d", t.Choices))
			if t.Boosted {
				notes = append(notes, "boosted")
			}
		case model.RoleOverlap:
			notes = append(notes, "overlap")
		}
		if t.AnnualFee > 0 {
			notes = append(notes, fmt.Sprintf("$%.0f/yr", t.AnnualFee))
		}
		if t.Membership != model.MembershipNone {
			notes = append(notes, fmt.Sprintf("needs %s", t.Membership.DisplayName()))
		}
		if len(notes) > 0 {
			b.WriteString(" <i>(" + html.EscapeString(strings.Join(notes, ", ")) + ")</i>")
		}
		b.WriteString("\n")
	}
	if info.SearchSpace > 0 {
		b.WriteString(fmt.Sprintf("\nExhaustive search covers %d combinations.\n", info.SearchSpace))
	}
	return b.String()
}

// FormatTiers shows the capital tiers for the boosted card.
func FormatTiers() string {
	var b strings.Builder
	b.WriteString("🏦 <b>Reward multiplier tiers</b>\n\n")
	for _, t := range optimizer.MultiplierTiers {
		b.WriteString(fmt.Sprintf("  ≥ $%.0f (%s): %.2fx\n", t.MinCapital, t.Label, t.Multiplier))
	}
	b.WriteString(fmt.Sprintf("  below: %.2fx\n", optimizer.DefaultMultiplier))
	return b.String()
}

// FormatDigest summarizes recent runs.
func FormatDigest(d recorder.Digest, since time.Time) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📅 <b>Weekly digest</b> | since %s\n\n", since.Format("2006-01-02")))
	if d.Runs == 0 {
		b.WriteString("No optimizations ran this week.")
		return b.String()
	}
	b.WriteString(fmt.Sprintf("Runs: %d\n", d.Runs))
	b.WriteString(fmt.Sprintf("Average annual cash back: $%.2f\n", d.AvgAnnual))
	b.WriteString(fmt.Sprintf("Best annual cash back: $%.2f\n", d.BestAnnual))
	if len(d.TopCards) > 0 {
		b.WriteString("\n<b>Most recommended:</b>\n")
		for _, c := range d.TopCards {
			b.WriteString(fmt.Sprintf("  %s ×%d\n", html.EscapeString(c.Card), c.Count))
		}
	}
	return b.String()
}

// FormatHistory lists recent runs, newest first.
func FormatHistory(runs []recorder.Run) string {
	if len(runs) == 0 {
		return "No runs recorded yet."
	}
	var b strings.Builder
	b.WriteString("🕘 <b>Recent runs</b>\n\n")
	for _, r := range runs {
		b.WriteString(fmt.Sprintf("%s  %d cards  $%.2f/yr\n  %s\n",
			r.Timestamp.Format("01-02 15:04"), r.CardCount, r.Annual,
			html.EscapeString(strings.Join(r.Cards, ", "))))
	}
	return b.String()
}
