package catalog

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"CardOptimizer/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func csvHeader() string {
	cols := []string{"Card_Name", "Card_ID"}
	for _, c := range model.Categories() {
		cols = append(cols, c.Key())
	}
	return strings.Join(cols, ",")
}

func csvRow(name string, rates map[model.Category]float64) string {
	cols := []string{name, strings.ToLower(strings.ReplaceAll(name, " ", "-"))}
	for _, c := range model.Categories() {
		cols = append(cols, fmt.Sprintf("%g", rates[c]))
	}
	return strings.Join(cols, ",")
}

func rates(m map[model.Category]float64) model.Rates {
	var r model.Rates
	for c, v := range m {
		r[c] = v
	}
	return r
}

// testTemplates mirrors the shape of the production catalog: a two-choice card
// with five eligible categories (plus foreign transactions), a one-choice
// boosted card with four, an overlap card and a couple of plain cards.
func testTemplates() []model.CardTemplate {
	return []model.CardTemplate{
		{Name: "Cash Plus", Role: model.RoleChoice, Choices: 2, Rates: rates(map[model.Category]float64{
			model.Utilities: 0.05, model.CellPhone: 0.05, model.Gym: 0.05,
			model.Streaming: 0.05, model.SportingGoods: 0.05, model.ForeignTransactions: 0.01,
		})},
		{Name: "Double Cash", Role: model.RolePlain, Rates: rates(map[model.Category]float64{
			model.Groceries: 0.02, model.Gas: 0.02, model.Other: 0.02,
		})},
		{Name: "Rotating Five", Role: model.RoleOverlap, Rates: rates(map[model.Category]float64{
			model.Groceries: 0.05, model.Gas: 0.05, model.Other: 0.01,
		})},
		{Name: "Custom Cash", Role: model.RoleChoice, Choices: 1, Boosted: true, Rates: rates(map[model.Category]float64{
			model.Gas: 0.03, model.OnlineShopping: 0.03, model.Dining: 0.03, model.Travel: 0.03,
		})},
		{Name: "Warehouse Visa", Role: model.RolePlain, Membership: model.MembershipCostco, MembershipCost: 60,
			Rates: rates(map[model.Category]float64{model.Gas: 0.04, model.Other: 0.01})},
	}
}

func TestParseCSV(t *testing.T) {
	table := strings.Join([]string{
		csvHeader(),
		csvRow("Alpha", map[model.Category]float64{model.Groceries: 0.03, model.Other: 0.01}),
		csvRow("Beta", map[model.Category]float64{model.Travel: 0.02}),
	}, "\n")

	got, err := ParseCSV(strings.NewReader(table))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Alpha", got[0].Name)
	assert.Equal(t, "alpha", got[0].ID)
	assert.Equal(t, 0.03, got[0].Rates[model.Groceries])
	assert.Equal(t, 0.01, got[0].Rates[model.Other])
	assert.Equal(t, model.RolePlain, got[1].Role)
	assert.Equal(t, 0.02, got[1].Rates[model.Travel])
}

func TestParseCSV_Errors(t *testing.T) {
	good := csvRow("Alpha", nil)
	tests := []struct {
		name  string
		table string
	}{
		{"empty", ""},
		{"header only", csvHeader()},
		{"short header", "Card_Name,Card_ID,groceries"},
		{"unknown column", strings.Replace(csvHeader(), "gas", "fuel", 1)},
		{"reordered columns", strings.Replace(strings.Replace(csvHeader(), "groceries", "tmp", 1), ",gas,", ",groceries,", 1)},
		{"non numeric cell", csvHeader() + "\n" + strings.Replace(good, ",0,", ",abc,", 1)},
		{"negative cell", csvHeader() + "\n" + strings.Replace(good, ",0,", ",-0.01,", 1)},
		{"missing cells", csvHeader() + "\nAlpha,alpha,0.01"},
		{"duplicate card", csvHeader() + "\n" + good + "\n" + good},
		{"empty name", csvHeader() + "\n" + strings.Replace(good, "Alpha", " ", 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCSV(strings.NewReader(tt.table))
			require.Error(t, err)
			assert.True(t, IsDataError(err), "want DataError, got %v", err)
		})
	}
}

func TestParseJSON(t *testing.T) {
	feed := `{"cards": [
		{"name": "Alpha", "id": "a", "rates": {"groceries": 0.03, "Cell Phone": 0.05}},
		{"name": "Beta", "rates": {}}
	]}`
	got, err := ParseJSON([]byte(feed))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 0.03, got[0].Rates[model.Groceries])
	assert.Equal(t, 0.05, got[0].Rates[model.CellPhone])
	assert.Equal(t, model.Rates{}, got[1].Rates)
}

func TestParseJSON_Errors(t *testing.T) {
	for _, feed := range []string{
		`not json`,
		`{"cards": {}}`,
		`{"cards": []}`,
		`{"cards": [{"name": "", "rates": {}}]}`,
		`{"cards": [{"name": "A", "rates": {"casino": 0.1}}]}`,
		`{"cards": [{"name": "A", "rates": {"gas": "high"}}]}`,
		`{"cards": [{"name": "A", "rates": {"gas": -1}}]}`,
		`{"cards": [{"name": "A"}, {"name": "A"}]}`,
	} {
		_, err := ParseJSON([]byte(feed))
		require.Error(t, err, feed)
		assert.True(t, IsDataError(err), feed)
	}
}

func TestParseRules(t *testing.T) {
	doc := `
cards:
  - name: Cash Plus
    role: choice
    choices: 2
  - name: Warehouse Visa
    membership: costco
    membership_cost: 60
  - name: Travel Plus
    annual_fee: 95
`
	r, err := ParseRules([]byte(doc))
	require.NoError(t, err)
	require.Len(t, r.Cards, 3)
	assert.Equal(t, model.RoleChoice, r.Cards[0].Role)
	assert.Equal(t, model.RolePlain, r.Cards[1].Role, "role defaults to plain")
	assert.Equal(t, model.MembershipCostco, r.Cards[1].Membership)
	assert.Equal(t, 95.0, r.Cards[2].AnnualFee)
}

func TestParseRules_Errors(t *testing.T) {
	for _, doc := range []string{
		"cards:\n  - role: plain\n",
		"cards:\n  - name: A\n  - name: A\n",
		"cards:\n  - name: A\n    role: wild\n",
		"cards:\n  - name: A\n    role: choice\n",
		"cards:\n  - name: A\n    choices: 2\n",
		"cards:\n  - name: A\n    membership: gym\n",
		"cards:\n  - name: A\n    annual_fee: -5\n",
		"cards:\n  - name: A\n    role: overlap\n  - name: B\n    role: overlap\n",
	} {
		_, err := ParseRules([]byte(doc))
		assert.True(t, IsDataError(err), doc)
	}
}

func TestApplyRules(t *testing.T) {
	raw := []model.CardTemplate{{Name: "A", Role: model.RolePlain}, {Name: "B", Role: model.RolePlain}}
	rules := &Rules{Cards: []CardRule{{Name: "B", Role: model.RolePlain, AnnualFee: 95}}}

	got, err := ApplyRules(raw, rules)
	require.NoError(t, err)
	assert.Equal(t, 95.0, got[1].AnnualFee)
	assert.Equal(t, 0.0, raw[1].AnnualFee, "input rows must not be modified")

	_, err = ApplyRules(raw, &Rules{Cards: []CardRule{{Name: "Missing"}}})
	assert.True(t, IsDataError(err))

	_, err = ApplyRules(nil, rules)
	assert.True(t, IsDataError(err))
}

func TestBuild_ExpandsChoiceCards(t *testing.T) {
	cat, err := Build(testTemplates(), 1.5)
	require.NoError(t, err)

	// 3 single entries, C(5,2)=10 for Cash Plus, 4 for Custom Cash.
	require.Len(t, cat.Entries, 3+10+4)
	assert.Equal(t, []int{0}, cat.Index["Double Cash"])
	assert.Equal(t, []int{1}, cat.Index["Rotating Five"])
	assert.Equal(t, []int{2}, cat.Index["Warehouse Visa"])
	assert.Equal(t, []int{3, 4, 5, 6, 7, 8, 9, 10, 11, 12}, cat.Index["Cash Plus"])
	assert.Equal(t, []int{13, 14, 15, 16}, cat.Index["Custom Cash"])
	assert.Equal(t, []string{"Cash Plus", "Custom Cash", "Double Cash", "Rotating Five", "Warehouse Visa"}, cat.Owners)

	assert.True(t, cat.Entries[1].Overlap)
	assert.Equal(t, model.MembershipCostco, cat.Entries[2].Membership)

	// First Cash Plus entry activates the two lowest eligible categories.
	first := cat.Entries[3]
	assert.True(t, first.Choice)
	assert.Equal(t, []model.Category{model.Utilities, model.CellPhone}, first.Rates.NonZero())
	assert.Equal(t, 0.05, first.Rates[model.Utilities])
	for _, i := range cat.Index["Cash Plus"] {
		e := cat.Entries[i]
		assert.Len(t, e.Rates.NonZero(), 2)
		assert.Zero(t, e.Rates[model.ForeignTransactions], "foreign transactions are never eligible")
	}

	// Custom Cash is boosted by the multiplier.
	for n, i := range cat.Index["Custom Cash"] {
		nz := cat.Entries[i].Rates.NonZero()
		require.Len(t, nz, 1)
		assert.InDelta(t, 0.045, cat.Entries[i].Rates[nz[0]], 1e-12, "entry %d", n)
	}
	// Cash Plus is not boosted.
	assert.Equal(t, 0.05, cat.Entries[12].Rates[model.SportingGoods])
}

func TestBuild_Deterministic(t *testing.T) {
	a, err := Build(testTemplates(), 1.25)
	require.NoError(t, err)
	b, err := Build(testTemplates(), 1.25)
	require.NoError(t, err)
	assert.Equal(t, a.Entries, b.Entries)
	assert.Equal(t, a.Index, b.Index)
}

func TestBuild_DoesNotMutateTemplates(t *testing.T) {
	templates := testTemplates()
	before := templates[3].Rates
	_, err := Build(templates, 1.75)
	require.NoError(t, err)
	assert.Equal(t, before, templates[3].Rates)
}

func TestBuild_DegenerateChoiceCard(t *testing.T) {
	templates := []model.CardTemplate{
		{Name: "Narrow", Role: model.RoleChoice, Choices: 2, Rates: rates(map[model.Category]float64{
			model.Gas: 0.05, model.ForeignTransactions: 0.03,
		})},
		{Name: "Plain", Role: model.RolePlain, Rates: rates(map[model.Category]float64{model.Other: 0.01})},
	}
	cat, err := Build(templates, 1)
	require.NoError(t, err)
	idx, ok := cat.Index["Narrow"]
	assert.True(t, ok)
	assert.Empty(t, idx)
	assert.Equal(t, []string{"Plain"}, cat.Owners)
	assert.Len(t, cat.Entries, 1)
}

func TestBuild_Errors(t *testing.T) {
	_, err := Build(nil, 1)
	assert.True(t, IsDataError(err))

	_, err = Build(testTemplates(), 0)
	assert.Error(t, err)

	dup := append(testTemplates(), model.CardTemplate{Name: "Double Cash"})
	_, err = Build(dup, 1)
	assert.True(t, IsDataError(err))
}

func TestCatalogNames(t *testing.T) {
	cat, err := Build(testTemplates(), 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"Double Cash", "Cash Plus"}, cat.Names([]int{0, 5}))

	require.Len(t, cat.Templates, 5)
	assert.Equal(t, "Custom Cash", cat.Templates[3].Name, "templates keep catalog order")
	assert.True(t, cat.Templates[3].Boosted)
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "cards.csv")
	table := csvHeader() + "\n" + csvRow("Alpha", map[model.Category]float64{model.Gas: 0.03}) + "\n"
	require.NoError(t, os.WriteFile(csvPath, []byte(table), 0o644))

	got, err := (&FileSource{Path: csvPath}).Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0.03, got[0].Rates[model.Gas])

	jsonPath := filepath.Join(dir, "cards.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"cards":[{"name":"Beta","rates":{"travel":0.02}}]}`), 0o644))
	got, err = (&FileSource{Path: jsonPath}).Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Beta", got[0].Name)

	_, err = (&FileSource{Path: filepath.Join(dir, "missing.csv")}).Fetch(context.Background())
	assert.Error(t, err)
}

func TestHTTPSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch r.URL.Path {
		case "/cards.json":
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"cards":[{"name":"Beta","rates":{"dining":0.04}}]}`)
		default:
			w.Header().Set("Content-Type", "text/csv")
			fmt.Fprint(w, csvHeader()+"\n"+csvRow("Alpha", map[model.Category]float64{model.Gas: 0.03}))
		}
	}))
	defer srv.Close()

	got, err := NewHTTPSource(srv.URL+"/cards.csv", "secret", "").Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Alpha", got[0].Name)

	got, err = NewHTTPSource(srv.URL+"/cards.json", "secret", "").Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0.04, got[0].Rates[model.Dining])

	_, err = NewHTTPSource(srv.URL+"/cards.csv", "wrong", "").Fetch(context.Background())
	assert.ErrorContains(t, err, "status 401")
}

// flakySource fails when broken is set.
type flakySource struct {
	templates []model.CardTemplate
	broken    bool
}

func (f *flakySource) Name() string { return "flaky" }

func (f *flakySource) Fetch(_ context.Context) ([]model.CardTemplate, error) {
	if f.broken {
		return nil, fmt.Errorf("upstream unavailable")
	}
	return f.templates, nil
}

func TestManager_RefreshAndCatalog(t *testing.T) {
	cache, err := NewCache(8)
	require.NoError(t, err)
	defer cache.Close()

	src := &flakySource{templates: testTemplates()}
	m := NewManager(src, nil, cache, nil)

	_, err = m.Catalog(1)
	assert.ErrorIs(t, err, ErrNotLoaded)

	v, err := m.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(1), v)
	assert.False(t, m.LoadedAt().IsZero())

	cat, err := m.Catalog(1.5)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), cat.Version)
	assert.Equal(t, 1.5, cat.Multiplier)

	again, err := m.Catalog(1.5)
	require.NoError(t, err)
	assert.Equal(t, cat.Entries, again.Entries)

	src.broken = true
	v, err = m.Refresh(context.Background())
	assert.Error(t, err)
	assert.Equal(t, uint64(1), v, "failed refresh keeps the previous version")

	templates, version := m.Templates()
	assert.Len(t, templates, len(testTemplates()))
	assert.Equal(t, uint64(1), version)
}

func TestManager_RefreshRejectsBadRules(t *testing.T) {
	src := &StaticSource{Templates: testTemplates()}
	rules := &Rules{Cards: []CardRule{{Name: "Unknown Card"}}}
	m := NewManager(src, rules, nil, nil)

	_, err := m.Refresh(context.Background())
	assert.True(t, IsDataError(err))
	assert.Equal(t, uint64(0), m.Version())
}

func TestCache(t *testing.T) {
	cache, err := NewCache(4)
	require.NoError(t, err)
	defer cache.Close()

	cat, err := Build(testTemplates(), 1.25)
	require.NoError(t, err)
	cat.Version = 7
	cache.Set(cat)

	_, ok := cache.Get(7, 1.5)
	assert.False(t, ok)
	_, ok = cache.Get(8, 1.25)
	assert.False(t, ok)

	cache.Clear()
	_, ok = cache.Get(7, 1.25)
	assert.False(t, ok)
}
