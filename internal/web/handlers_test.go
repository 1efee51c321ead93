package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"daybias/internal/config"
	"daybias/internal/journal"
	"daybias/internal/ratelimit"
	"daybias/pkg/model"
)

const trapRequest = `{
	"symbol": "eurusd",
	"d2": {"open": 1.100, "high": 1.112, "low": 1.090, "close": 1.110},
	"d1": {"open": 1.110, "high": 1.118, "low": 1.095, "close": 1.097}
}`

func testServer(t *testing.T, secret string, withJournal bool) *Server {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Server.AuthSecret = secret
	cfg.Server.TokenTTL = time.Hour
	cfg.Server.RateLimit = 600

	var j *journal.Journal
	if withJournal {
		var err error
		j, err = journal.Open(filepath.Join(t.TempDir(), "journal.db"))
		if err != nil {
			t.Fatalf("Open journal: %v", err)
		}
		t.Cleanup(func() { j.Close() })
	}

	return NewServer(cfg, j)
}

func TestHandleForecast_Valid(t *testing.T) {
	s := testServer(t, "", false)

	req := httptest.NewRequest(http.MethodPost, "/api/forecast", strings.NewReader(trapRequest))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp ForecastResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Invalid response JSON: %v", err)
	}
	if resp.Forecast.Symbol != "EURUSD" {
		t.Errorf("Expected symbol normalized to EURUSD, got %s", resp.Forecast.Symbol)
	}
	if resp.Forecast.Bias != model.BiasBearishReversal || resp.Forecast.Strength != 85 {
		t.Errorf("Unexpected verdict: %s/%d", resp.Forecast.Bias, resp.Forecast.Strength)
	}
	if resp.ID != "" {
		t.Error("No journal configured, so no ID should be assigned")
	}
}

func TestHandleForecast_InvalidBars(t *testing.T) {
	s := testServer(t, "", false)

	body := `{
		"symbol": "EURUSD",
		"d2": {"open": 1.0, "high": 0.9, "low": 1.1, "close": 1.0},
		"d1": {"open": 1.0, "high": 1.1, "low": 0.9, "close": 1.0}
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/forecast", strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for invalid bars, got %d", rec.Code)
	}
}

func TestHandleForecast_MissingSymbol(t *testing.T) {
	s := testServer(t, "", false)

	req := httptest.NewRequest(http.MethodPost, "/api/forecast",
		strings.NewReader(`{"d2": {"open":1,"high":2,"low":0.5,"close":1.5}, "d1": {"open":1.5,"high":2.5,"low":1,"close":2}}`))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for missing symbol, got %d", rec.Code)
	}
}

func TestHandleForecast_RecordsToJournal(t *testing.T) {
	s := testServer(t, "", true)

	req := httptest.NewRequest(http.MethodPost, "/api/forecast", strings.NewReader(trapRequest))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	var resp ForecastResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Invalid response JSON: %v", err)
	}
	if resp.ID == "" {
		t.Fatal("Expected journal ID in response")
	}

	// The recorded forecast must be retrievable by its ID
	getReq := httptest.NewRequest(http.MethodGet, "/api/forecasts/"+resp.ID, nil)
	getRec := httptest.NewRecorder()
	s.Handler().ServeHTTP(getRec, getReq)

	if getRec.Code != http.StatusOK {
		t.Fatalf("Expected 200 fetching recorded forecast, got %d", getRec.Code)
	}
	var loaded model.ForecastResult
	if err := json.Unmarshal(getRec.Body.Bytes(), &loaded); err != nil {
		t.Fatalf("Invalid forecast JSON: %v", err)
	}
	if loaded.Bias != model.BiasBearishReversal {
		t.Errorf("Loaded forecast has wrong bias: %s", loaded.Bias)
	}
}

func TestAuth_RejectsMissingToken(t *testing.T) {
	s := testServer(t, "test-secret", false)

	req := httptest.NewRequest(http.MethodPost, "/api/forecast", strings.NewReader(trapRequest))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without token, got %d", rec.Code)
	}
}

func TestAuth_AcceptsIssuedToken(t *testing.T) {
	s := testServer(t, "test-secret", false)

	token, err := s.tokens.Issue("test-client")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/forecast", strings.NewReader(trapRequest))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200 with valid token, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAuth_RejectsTokenFromOtherSecret(t *testing.T) {
	s := testServer(t, "test-secret", false)

	other := NewTokenManager("different-secret", time.Hour)
	token, err := other.Issue("intruder")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/forecast", strings.NewReader(trapRequest))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 for foreign token, got %d", rec.Code)
	}
}

func TestHandleHealth_NoAuthRequired(t *testing.T) {
	s := testServer(t, "test-secret", false)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200 from health check, got %d", rec.Code)
	}
}

func TestRateLimit_Returns429(t *testing.T) {
	s := testServer(t, "", false)
	s.limiter = ratelimit.NewClientLimiter(1) // burst of 1

	var last int
	for i := 0; i < 10; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/forecast", strings.NewReader(trapRequest))
		req.RemoteAddr = "192.0.2.1:1234"
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, req)
		last = rec.Code
		if last == http.StatusTooManyRequests {
			break
		}
	}
	if last != http.StatusTooManyRequests {
		t.Errorf("Expected a 429 after burst exhaustion, got %d", last)
	}
}
