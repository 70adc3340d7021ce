// Package ingest reads a territory score workbook into records. Workbooks
// come from different producers, so each record field is resolved against an
// alias list matched case-insensitively on the header row.
package ingest

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/diag360/territory-cli/internal/model"
)

// columnAliases maps a record attribute to the header names that may carry
// it, in priority order.
var columnAliases = map[string][]string{
	"code_siren":            {"code_siren", "siren", "codesiren", "code_epci"},
	"name":                  {"nom", "name", "libelle", "libepci"},
	"type":                  {"type", "nature", "nature_epci"},
	"population":            {"population", "pop_total", "habitants"},
	"department":            {"department", "departement", "dep"},
	"region":                {"region", "reg"},
	"score":                 {"score_global", "score", "note"},
	"score_water":           {"score_water", "bv1", "eau"},
	"score_food":            {"score_food", "bv2", "alimentation"},
	"score_housing":         {"score_housing", "bv3", "logement"},
	"score_healthcare":      {"score_healthcare", "bv4", "sante"},
	"score_security":        {"score_security", "bv5", "securite"},
	"score_education":       {"score_education", "be1", "education"},
	"score_social_cohesion": {"score_social_cohesion", "be2", "cohesion"},
	"score_nature":          {"score_nature", "be3", "nature"},
	"score_local_economy":   {"score_local_economy", "bi1", "economie_locale"},
	"score_energy":          {"score_energy", "bi2", "energie"},
	"score_mobility":        {"score_mobility", "bi3", "mobilite"},
	"data_year":             {"annee", "data_year", "year"},
}

// scoreColumn maps a resolved score attribute to its function key.
var scoreColumn = map[string]model.FunctionKey{
	"score_water":           model.FunctionWater,
	"score_food":            model.FunctionFood,
	"score_housing":         model.FunctionHousing,
	"score_healthcare":      model.FunctionHealthcare,
	"score_security":        model.FunctionSecurity,
	"score_education":       model.FunctionEducation,
	"score_social_cohesion": model.FunctionSocialCohesion,
	"score_nature":          model.FunctionNature,
	"score_local_economy":   model.FunctionLocalEconomy,
	"score_energy":          model.FunctionEnergy,
	"score_mobility":        model.FunctionMobility,
}

// Options selects the worksheet to read.
type Options struct {
	SheetIndex int
	SheetName  string
}

// ReadWorkbook parses the workbook at path into territory records. Rows
// without a code are skipped. The header row must resolve the code_siren
// and name attributes or the workbook is rejected.
func ReadWorkbook(path string, opts Options) ([]model.TerritoryRecord, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "ingest: open workbook")
	}

	sheet, err := getSheet(f, opts)
	if err != nil {
		return nil, err
	}
	if len(sheet.Rows) == 0 {
		return nil, eris.New("ingest: worksheet is empty")
	}

	resolved := resolveColumns(rowToStrings(sheet.Rows[0]))
	for _, required := range []string{"code_siren", "name"} {
		if _, ok := resolved[required]; !ok {
			return nil, eris.Errorf("ingest: required column %q not found in header", required)
		}
	}

	var records []model.TerritoryRecord
	skipped := 0
	for _, row := range sheet.Rows[1:] {
		cells := rowToStrings(row)
		rec, ok := rowToRecord(cells, resolved)
		if !ok {
			skipped++
			continue
		}
		records = append(records, rec)
	}

	zap.L().Info("ingest: workbook parsed",
		zap.String("path", path),
		zap.Int("records", len(records)),
		zap.Int("skipped", skipped),
	)
	return records, nil
}

// resolveColumns maps each known attribute to the column index carrying it.
func resolveColumns(header []string) map[string]int {
	lowered := make(map[string]int, len(header))
	for i, col := range header {
		lowered[strings.ToLower(strings.TrimSpace(col))] = i
	}

	resolved := make(map[string]int)
	for attr, aliases := range columnAliases {
		for _, alias := range aliases {
			if idx, ok := lowered[alias]; ok {
				resolved[attr] = idx
				break
			}
		}
	}
	return resolved
}

func rowToRecord(cells []string, resolved map[string]int) (model.TerritoryRecord, bool) {
	code := strings.TrimSpace(cell(cells, resolved, "code_siren"))
	if code == "" {
		return model.TerritoryRecord{}, false
	}

	rec := model.TerritoryRecord{
		CodeSiren: code,
		Name:      strings.TrimSpace(cell(cells, resolved, "name")),
	}

	if v := strings.TrimSpace(cell(cells, resolved, "type")); v != "" {
		rec.Type = model.Ptr(v)
	}
	if v := strings.TrimSpace(cell(cells, resolved, "department")); v != "" {
		rec.Department = model.Ptr(v)
	}
	if v := strings.TrimSpace(cell(cells, resolved, "region")); v != "" {
		rec.Region = model.Ptr(v)
	}
	if n, ok := toInt(cell(cells, resolved, "population")); ok {
		rec.Population = model.Ptr(n)
	}
	if n, ok := toInt(cell(cells, resolved, "data_year")); ok {
		rec.DataYear = model.Ptr(int(n))
	}
	if f, ok := toFloat(cell(cells, resolved, "score")); ok {
		rec.GlobalScore = f
	}
	for attr, key := range scoreColumn {
		if f, ok := toFloat(cell(cells, resolved, attr)); ok {
			rec.SetFunctionScore(key, model.Ptr(f))
		}
	}
	return rec, true
}

func cell(cells []string, resolved map[string]int, attr string) string {
	idx, ok := resolved[attr]
	if !ok || idx >= len(cells) {
		return ""
	}
	return cells[idx]
}

func toFloat(s string) (float64, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func toInt(s string) (int64, bool) {
	f, ok := toFloat(s)
	if !ok {
		return 0, false
	}
	return int64(f), true
}

func getSheet(f *xlsx.File, opts Options) (*xlsx.Sheet, error) {
	if opts.SheetName != "" {
		sheet, ok := f.Sheet[opts.SheetName]
		if !ok {
			return nil, eris.Errorf("ingest: sheet %q not found", opts.SheetName)
		}
		return sheet, nil
	}
	if opts.SheetIndex >= len(f.Sheets) {
		return nil, eris.Errorf("ingest: sheet index %d out of range (workbook has %d sheets)",
			opts.SheetIndex, len(f.Sheets))
	}
	return f.Sheets[opts.SheetIndex], nil
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, c := range row.Cells {
		cells[j] = c.String()
	}
	return cells
}
