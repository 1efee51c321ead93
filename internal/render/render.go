package render

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/olekukonko/tablewriter"

	"daybias/internal/journal"
	"daybias/pkg/model"
)

// Forecast prints one forecast in the human-readable layout: the
// verdict line, the reasoning trail, setups and the recommendation.
func Forecast(w io.Writer, res *model.ForecastResult) error {
	fmt.Fprintf(w, "[%s] %s (%s, strength %d)\n", res.Symbol, res.Bias, res.Direction, res.Strength)
	if res.Headline != "" {
		fmt.Fprintf(w, "  %s\n", res.Headline)
	}

	fmt.Fprintln(w, "\n--- Candle Analysis ---")
	table := tablewriter.NewTable(w,
		tablewriter.WithHeader([]string{"Bar", "Shape", "Body %", "Rejections"}),
	)
	table.Append(candleRow("D-2", res.CandleAnalysis.DBPD))
	table.Append(candleRow("D-1", res.CandleAnalysis.PD))
	table.Render()

	fmt.Fprintln(w, "\n--- Reasoning ---")
	for i, r := range res.Reasoning {
		fmt.Fprintf(w, "  %d. %s\n", i+1, r)
	}
	fmt.Fprintf(w, "  Confluence score: %+d\n", res.Confluence)

	if res.BullishSetup != nil {
		writeSetup(w, "Bullish Setup", res.BullishSetup)
	}
	if res.BearishSetup != nil {
		writeSetup(w, "Bearish Setup", res.BearishSetup)
	}

	fmt.Fprintf(w, "\n>> %s\n", res.Recommendation)
	return nil
}

func candleRow(label string, p model.CandleProfile) []string {
	rejections := "-"
	switch {
	case p.HasUpperWickRejection && p.HasLowerWickRejection:
		rejections = "upper, lower"
	case p.HasUpperWickRejection:
		rejections = "upper"
	case p.HasLowerWickRejection:
		rejections = "lower"
	}
	return []string{
		label,
		string(p.Shape),
		fmt.Sprintf("%.1f%%", p.BodyPercent),
		rejections,
	}
}

func writeSetup(w io.Writer, title string, s *model.TradeSetup) {
	fmt.Fprintf(w, "\n--- %s ---\n", title)
	fmt.Fprintf(w, "  Sweep level:  %s\n", model.FormatPrice(s.SweepLevel))
	fmt.Fprintf(w, "  Entry zone:   %s\n", s.EntryZone)
	fmt.Fprintf(w, "  Invalidation: %s\n", model.FormatPrice(s.Invalidation))
	for _, t := range s.Targets {
		fmt.Fprintf(w, "  Target:       %s (%s)\n", model.FormatPrice(t.Level), t.Label)
	}
}

// ScanTable prints a batch scan summary, strongest forecasts first.
func ScanTable(w io.Writer, result *model.ScanResult) error {
	if len(result.Forecasts) == 0 {
		fmt.Fprintln(w, "No forecasts produced.")
		fmt.Fprintf(w, "Scanned %d pairs in %s (%d failed)\n",
			result.TotalScanned, result.ScanTime.Round(time.Millisecond), result.Failed)
		return nil
	}

	fmt.Fprintf(w, "Classified %d symbols:\n\n", len(result.Forecasts))

	table := tablewriter.NewTable(w,
		tablewriter.WithHeader([]string{"Symbol", "Bias", "Dir", "Strength", "Conf", "Headline"}),
	)

	for _, f := range result.Forecasts {
		headline := f.Headline
		if len(headline) > 45 {
			headline = headline[:45] + "..."
		}

		table.Append([]string{
			f.Symbol,
			f.Bias,
			f.Direction,
			fmt.Sprintf("%d", f.Strength),
			fmt.Sprintf("%+d", f.Confluence),
			headline,
		})
	}

	table.Render()

	fmt.Fprintf(w, "\nScanned %d pairs in %s (%d failed)\n",
		result.TotalScanned, result.ScanTime.Round(time.Millisecond), result.Failed)
	return nil
}

// JournalTable prints recorded forecast entries, newest first.
func JournalTable(w io.Writer, entries []journal.Entry) error {
	if len(entries) == 0 {
		fmt.Fprintln(w, "Journal is empty.")
		return nil
	}

	table := tablewriter.NewTable(w,
		tablewriter.WithHeader([]string{"ID", "Recorded", "Symbol", "Bias", "Dir", "Strength"}),
	)

	for _, e := range entries {
		table.Append([]string{
			e.ID,
			e.CreatedAt.Format("2006-01-02 15:04"),
			e.Symbol,
			e.Bias,
			e.Direction,
			fmt.Sprintf("%d", e.Strength),
		})
	}

	table.Render()
	return nil
}

// JSON writes any result as indented JSON.
func JSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
