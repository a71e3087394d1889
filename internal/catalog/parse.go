package catalog

import (
	"encoding/csv"
	"errors"
	"io"
	"strconv"
	"strings"

	"CardOptimizer/internal/model"

	"github.com/tidwall/gjson"
)

// leading non-numeric columns of the catalog table: card name and an unused identifier.
const leadingColumns = 2

// ParseCSV reads a catalog table: one header row, then one row per card with
// the card name, an identifier, and one reward rate per category in index order.
func ParseCSV(r io.Reader) ([]model.CardTemplate, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, dataErrorf(0, "", "empty catalog table")
	}
	if err != nil {
		return nil, err
	}
	if err := checkHeader(header); err != nil {
		return nil, err
	}

	var out []model.CardTemplate
	seen := make(map[string]int)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := cr.FieldPos(0)
		if len(rec) != len(header) {
			return nil, dataErrorf(line, "", "expected %d columns, got %d", len(header), len(rec))
		}
		t := model.CardTemplate{
			Name: strings.TrimSpace(rec[0]),
			ID:   strings.TrimSpace(rec[1]),
			Role: model.RolePlain,
		}
		if t.Name == "" {
			return nil, dataErrorf(line, header[0], "card name is empty")
		}
		if prev, dup := seen[t.Name]; dup {
			return nil, dataErrorf(line, header[0], "duplicate card %q (first seen at row %d)", t.Name, prev)
		}
		seen[t.Name] = line

		for i, cell := range rec[leadingColumns:] {
			col := header[leadingColumns+i]
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				return nil, dataErrorf(line, col, "reward rate %q is not a number", cell)
			}
			if v < 0 {
				return nil, dataErrorf(line, col, "reward rate %v is negative", v)
			}
			t.Rates[i] = v
		}
		out = append(out, t)
	}
	if len(out) == 0 {
		return nil, dataErrorf(0, "", "catalog table has no card rows")
	}
	return out, nil
}

func checkHeader(header []string) error {
	if want := leadingColumns + model.NumCategories; len(header) != want {
		return dataErrorf(1, "", "expected %d columns (name, id and %d categories), got %d",
			want, model.NumCategories, len(header))
	}
	for i, col := range header[leadingColumns:] {
		c, ok := model.ParseCategory(col)
		if !ok {
			return dataErrorf(1, col, "unknown category column")
		}
		if int(c) != i {
			return dataErrorf(1, col, "category out of order: expected %s", model.Category(i))
		}
	}
	return nil
}

// ParseJSON reads a catalog feed of the form
//
//	{"cards": [{"name": "...", "id": "...", "rates": {"groceries": 0.03, ...}}]}
//
// Categories missing from "rates" earn nothing.
func ParseJSON(data []byte) ([]model.CardTemplate, error) {
	if !gjson.ValidBytes(data) {
		return nil, dataErrorf(0, "", "catalog feed is not valid JSON")
	}
	cards := gjson.GetBytes(data, "cards")
	if !cards.IsArray() {
		return nil, dataErrorf(0, "cards", "catalog feed has no cards array")
	}

	var (
		out  []model.CardTemplate
		perr error
	)
	seen := make(map[string]int)
	cards.ForEach(func(key, card gjson.Result) bool {
		row := int(key.Int()) + 1
		t := model.CardTemplate{
			Name: strings.TrimSpace(card.Get("name").String()),
			ID:   card.Get("id").String(),
			Role: model.RolePlain,
		}
		if t.Name == "" {
			perr = dataErrorf(row, "name", "card name is empty")
			return false
		}
		if prev, dup := seen[t.Name]; dup {
			perr = dataErrorf(row, "name", "duplicate card %q (first seen at row %d)", t.Name, prev)
			return false
		}
		seen[t.Name] = row

		card.Get("rates").ForEach(func(k, v gjson.Result) bool {
			c, ok := model.ParseCategory(k.String())
			if !ok {
				perr = dataErrorf(row, k.String(), "unknown category")
				return false
			}
			if v.Type != gjson.Number {
				perr = dataErrorf(row, k.String(), "reward rate %q is not a number", v.Raw)
				return false
			}
			if v.Float() < 0 {
				perr = dataErrorf(row, k.String(), "reward rate %v is negative", v.Float())
				return false
			}
			t.Rates[c] = v.Float()
			return true
		})
		if perr != nil {
			return false
		}
		out = append(out, t)
		return true
	})
	if perr != nil {
		return nil, perr
	}
	if len(out) == 0 {
		return nil, dataErrorf(0, "cards", "catalog feed has no cards")
	}
	return out, nil
}
