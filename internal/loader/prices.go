package loader

import (
	"fmt"
	"math"
	"sort"

	"MiningPulse/internal/model"
)

var (
	dateColumn   = []string{"Date", "Tanggal", "Datetime"}
	openColumn   = []string{"Open", "Pembukaan"}
	highColumn   = []string{"High", "Tertinggi"}
	lowColumn    = []string{"Low", "Terendah"}
	closeColumn  = []string{"Close", "Penutupan", "Terakhir"}
	volumeColumn = []string{"Volume", "Vol"}
)

// LoadPrices reads a daily price table. Rows with an unreadable date or a
// non-positive price are skipped; when a date repeats the later row wins.
// The returned bars are ascending by date.
func LoadPrices(path string) ([]model.PriceBar, Report, error) {
	rows, err := readRecords(path)
	if err != nil {
		return nil, Report{}, err
	}
	return parsePrices(rows)
}

func parsePrices(rows [][]string) ([]model.PriceBar, Report, error) {
	var rep Report
	head, idx, err := findHeader(rows, dateColumn, openColumn, highColumn, lowColumn, closeColumn, volumeColumn)
	if err != nil {
		return nil, rep, err
	}

	byDate := make(map[int64]model.PriceBar)
	for _, row := range rows[head+1:] {
		if len(row) == 0 || cell(row, idx[0]) == "" {
			continue
		}
		rep.Rows++
		bar, err := parsePriceRow(row, idx)
		if err != nil {
			rep.Skipped++
			continue
		}
		key := bar.Date.Unix()
		if _, dup := byDate[key]; dup {
			rep.Duplicates++
		}
		byDate[key] = bar
	}

	bars := make([]model.PriceBar, 0, len(byDate))
	for _, b := range byDate {
		bars = append(bars, b)
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	return bars, rep, nil
}

func parsePriceRow(row []string, idx []int) (model.PriceBar, error) {
	date, err := parseDate(cell(row, idx[0]))
	if err != nil {
		return model.PriceBar{}, err
	}
	var ohlc [4]float64
	for k := range ohlc {
		v, err := parseFloat(cell(row, idx[k+1]))
		if err != nil {
			return model.PriceBar{}, fmt.Errorf("column %d: %w", idx[k+1], err)
		}
		if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return model.PriceBar{}, fmt.Errorf("column %d: non-positive price %v", idx[k+1], v)
		}
		ohlc[k] = v
	}
	vol, err := parseFloat(cell(row, idx[5]))
	if err != nil || vol < 0 {
		vol = 0
	}
	return model.PriceBar{
		Date:   date,
		Open:   ohlc[0],
		High:   ohlc[1],
		Low:    ohlc[2],
		Close:  ohlc[3],
		Volume: int64(math.Round(vol)),
	}, nil
}
