package advisor

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"CardOptimizer/internal/model"
)

// DefaultCards is used when a request names no card count.
const DefaultCards = 3

// ParseRequest reads key=value spend amounts and bare membership flags, as
// in "cards=3 groceries=400 total=2500 capital=30000 costco". Recognized
// keys besides category names are cards, total and capital.
func ParseRequest(tokens []string) (Request, error) {
	req := Request{Cards: DefaultCards, Spend: map[model.Category]float64{}}
	for _, tok := range tokens {
		key, value, hasValue := strings.Cut(tok, "=")
		key = strings.ToLower(key)
		if !hasValue {
			switch key {
			case "costco":
				req.Members.Costco = true
			case "sams", "sams_club", "samsclub":
				req.Members.SamsClub = true
			case "amazon", "prime":
				req.Members.Amazon = true
			default:
				return req, fmt.Errorf("unknown flag %q", tok)
			}
			continue
		}

		value = strings.TrimPrefix(value, "$")
		if key == "cards" {
			n, err := strconv.Atoi(value)
			if err != nil {
				return req, fmt.Errorf("cards must be a whole number, got %q", value)
			}
			req.Cards = n
			continue
		}
		amount, err := strconv.ParseFloat(value, 64)
		if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) {
			return req, fmt.Errorf("%s must be a finite number, got %q", key, value)
		}
		switch key {
		case "total":
			req.Total = amount
		case "capital":
			req.Capital = amount
		default:
			c, ok := model.ParseCategory(key)
			if !ok {
				return req, fmt.Errorf("unknown category %q", key)
			}
			req.Spend[c] += amount
			if math.IsInf(req.Spend[c], 0) {
				return req, fmt.Errorf("%s total is too large", key)
			}
		}
	}
	return req, nil
}
