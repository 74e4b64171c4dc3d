package loader

import (
	"math"
	"sort"
	"strconv"

	"MiningPulse/internal/model"

	"github.com/guregu/null/v5"
	"github.com/shopspring/decimal"
)

var (
	yearColumn     = []string{"Tahun", "Year"}
	amountColumn   = []string{"Jumlah Dividen", "Dividend", "Amount"}
	yieldColumn    = []string{"Yield Percentage", "Yield"}
	avgCloseColumn = []string{"Rata-rata Close", "Average Close"}
)

// LoadDividends reads a yearly dividend table, ascending by year.
func LoadDividends(path string) ([]model.DividendRecord, Report, error) {
	rows, err := readRecords(path)
	if err != nil {
		return nil, Report{}, err
	}
	return parseDividends(rows)
}

func parseDividends(rows [][]string) ([]model.DividendRecord, Report, error) {
	var rep Report
	head, idx, err := findHeader(rows, yearColumn, amountColumn, yieldColumn, avgCloseColumn)
	if err != nil {
		return nil, rep, err
	}

	byYear := make(map[int]model.DividendRecord)
	for _, row := range rows[head+1:] {
		if cell(row, idx[0]) == "" {
			continue
		}
		rep.Rows++
		rec, ok := parseDividendRow(row, idx)
		if !ok {
			rep.Skipped++
			continue
		}
		if _, dup := byYear[rec.Year]; dup {
			rep.Duplicates++
		}
		byYear[rec.Year] = rec
	}

	out := make([]model.DividendRecord, 0, len(byYear))
	for _, r := range byYear {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out, rep, nil
}

func parseDividendRow(row []string, idx []int) (model.DividendRecord, bool) {
	yearF, err := strconv.ParseFloat(cell(row, idx[0]), 64)
	if err != nil || yearF < 1900 || yearF != math.Trunc(yearF) {
		return model.DividendRecord{}, false
	}
	amount, err := decimal.NewFromString(normalizeNumber(cell(row, idx[1])))
	if err != nil || amount.IsNegative() {
		return model.DividendRecord{}, false
	}
	yield, err := parseFloat(cell(row, idx[2]))
	if err != nil {
		return model.DividendRecord{}, false
	}
	rec := model.DividendRecord{
		Year:            int(yearF),
		Amount:          amount,
		YieldPercentage: yield,
	}
	if avgClose, err := parseFloat(cell(row, idx[3])); err == nil {
		rec.AverageClose = null.FloatFrom(avgClose)
	}
	return rec, true
}
