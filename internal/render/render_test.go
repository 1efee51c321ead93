package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"daybias/internal/engine"
	"daybias/pkg/model"
)

func trapForecast(t *testing.T) *model.ForecastResult {
	t.Helper()
	d2 := model.PriceBar{Open: 1.100, High: 1.112, Low: 1.090, Close: 1.110}
	d1 := model.PriceBar{Open: 1.110, High: 1.118, Low: 1.095, Close: 1.097}
	res, err := engine.ClassifyBias(d2, d1, "EURUSD")
	if err != nil {
		t.Fatalf("ClassifyBias returned error: %v", err)
	}
	return res
}

func TestForecast_ContainsVerdictAndSetup(t *testing.T) {
	var buf bytes.Buffer
	if err := Forecast(&buf, trapForecast(t)); err != nil {
		t.Fatalf("Forecast returned error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"EURUSD",
		"BEARISH REVERSAL",
		"SHORT",
		"Bearish Setup",
		"1.11800", // swept high
		"Confluence score",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Output missing %q:\n%s", want, out)
		}
	}
}

func TestScanTable_Empty(t *testing.T) {
	var buf bytes.Buffer
	result := &model.ScanResult{TotalScanned: 3, Failed: 3, ScanTime: time.Second}
	if err := ScanTable(&buf, result); err != nil {
		t.Fatalf("ScanTable returned error: %v", err)
	}
	if !strings.Contains(buf.String(), "No forecasts produced") {
		t.Errorf("Expected empty-scan message, got:\n%s", buf.String())
	}
}

func TestScanTable_ListsSymbols(t *testing.T) {
	var buf bytes.Buffer
	result := &model.ScanResult{
		TotalScanned: 1,
		Forecasts:    []model.ForecastResult{*trapForecast(t)},
	}
	if err := ScanTable(&buf, result); err != nil {
		t.Fatalf("ScanTable returned error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "EURUSD") || !strings.Contains(out, "85") {
		t.Errorf("Scan table missing symbol or strength:\n%s", out)
	}
}

func TestJSON_RoundTrips(t *testing.T) {
	var buf bytes.Buffer
	original := trapForecast(t)
	if err := JSON(&buf, original); err != nil {
		t.Fatalf("JSON returned error: %v", err)
	}

	var decoded model.ForecastResult
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}
	if decoded.Bias != original.Bias || decoded.Strength != original.Strength {
		t.Errorf("Decoded forecast differs: %s/%d", decoded.Bias, decoded.Strength)
	}
}
