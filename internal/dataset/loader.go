package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"daybias/pkg/model"
)

// Pair is the comparator input for one symbol: the two most recent daily
// bars from its history.
type Pair struct {
	Symbol string
	Date   time.Time // date of the D-1 bar
	D2     model.PriceBar
	D1     model.PriceBar
}

// row is one parsed CSV line before grouping.
type row struct {
	symbol string
	date   time.Time
	bar    model.PriceBar
}

// LoadCSV reads a daily-bar CSV (symbol,date,open,high,low,close) and
// returns one Pair per symbol with at least two bars, built from each
// symbol's two most recent dates. Pairs are sorted by symbol so scan
// output is stable.
func LoadCSV(path string) ([]Pair, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dataset: %w", err)
	}
	defer f.Close()

	pairs, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return pairs, nil
}

// Read parses CSV bar data from r. A header line is detected and skipped.
func Read(r io.Reader) ([]Pair, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	bySymbol := make(map[string][]row)
	line := 0
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line+1, err)
		}
		line++

		if len(record) != 6 {
			return nil, fmt.Errorf("row %d: expected 6 columns, got %d", line, len(record))
		}
		// Skip the header row
		if line == 1 && strings.EqualFold(record[0], "symbol") {
			continue
		}

		rw, err := parseRow(record)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		bySymbol[rw.symbol] = append(bySymbol[rw.symbol], rw)
	}

	pairs := make([]Pair, 0, len(bySymbol))
	for symbol, rows := range bySymbol {
		if len(rows) < 2 {
			continue // need two consecutive bars to compare
		}
		sort.Slice(rows, func(i, j int) bool {
			return rows[i].date.Before(rows[j].date)
		})
		d2 := rows[len(rows)-2]
		d1 := rows[len(rows)-1]
		pairs = append(pairs, Pair{
			Symbol: symbol,
			Date:   d1.date,
			D2:     d2.bar,
			D1:     d1.bar,
		})
	}

	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].Symbol < pairs[j].Symbol
	})
	return pairs, nil
}

func parseRow(record []string) (row, error) {
	symbol := strings.ToUpper(strings.TrimSpace(record[0]))
	if symbol == "" {
		return row{}, fmt.Errorf("empty symbol")
	}

	date, err := time.Parse("2006-01-02", strings.TrimSpace(record[1]))
	if err != nil {
		return row{}, fmt.Errorf("bad date %q: %w", record[1], err)
	}

	prices := make([]float64, 4)
	names := []string{"open", "high", "low", "close"}
	for i, field := range record[2:] {
		v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return row{}, fmt.Errorf("bad %s %q: %w", names[i], field, err)
		}
		prices[i] = v
	}

	return row{
		symbol: symbol,
		date:   date,
		bar: model.PriceBar{
			Open:  prices[0],
			High:  prices[1],
			Low:   prices[2],
			Close: prices[3],
		},
	}, nil
}
