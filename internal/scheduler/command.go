package scheduler

import "strings"

const usage = `Available commands:
• /optimize cards=3 groceries=400 gas=150 dining=200 total=2500 capital=30000 costco amazon sams
• /catalog - list the card catalog
• /tiers - reward multiplier tiers
• /history - recent optimizations
• /digest - weekly digest now
• /refresh - reload the catalog`

// splitCommand separates "/name@bot args" into "/name" and "args".
func splitCommand(text string) (string, string) {
	text = strings.TrimSpace(text)
	name, args, _ := strings.Cut(text, " ")
	if at := strings.IndexByte(name, '@'); at > 0 {
		name = name[:at]
	}
	return strings.ToLower(name), strings.TrimSpace(args)
}
