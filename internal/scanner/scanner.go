package scanner

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"daybias/internal/dataset"
	"daybias/internal/engine"
	"daybias/pkg/model"
)

// ProgressCallback is called with progress updates
type ProgressCallback func(scanned, total int)

// Scanner classifies bar pairs in parallel. The engine is pure, so the
// workers share nothing but the job channel.
type Scanner struct {
	workers      int
	timeout      time.Duration
	progressFunc ProgressCallback
}

// NewScanner creates a new scanner
func NewScanner(workers int, timeout time.Duration) *Scanner {
	return &Scanner{
		workers: workers,
		timeout: timeout,
	}
}

// SetProgressCallback sets the progress callback function
func (s *Scanner) SetProgressCallback(fn ProgressCallback) {
	s.progressFunc = fn
}

// Scan classifies every pair and returns the forecasts sorted by
// strength (strongest first). Pairs with invalid bars are counted as
// failed rather than aborting the batch.
func (s *Scanner) Scan(ctx context.Context, pairs []dataset.Pair) (*model.ScanResult, error) {
	startTime := time.Now()

	if len(pairs) == 0 {
		return &model.ScanResult{
			TotalScanned: 0,
			Forecasts:    []model.ForecastResult{},
			ScanTime:     time.Since(startTime),
		}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	jobChan := make(chan dataset.Pair, len(pairs))
	resultChan := make(chan *model.ForecastResult, len(pairs))

	for _, pair := range pairs {
		jobChan <- pair
	}
	close(jobChan)

	var scannedCount int64
	var failedCount int64

	var wg sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for pair := range jobChan {
				select {
				case <-ctx.Done():
					return
				default:
					result, err := engine.ClassifyBias(pair.D2, pair.D1, pair.Symbol)
					if err != nil {
						atomic.AddInt64(&failedCount, 1)
					} else {
						resultChan <- result
					}

					count := atomic.AddInt64(&scannedCount, 1)
					if s.progressFunc != nil {
						s.progressFunc(int(count), len(pairs))
					}
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	var forecasts []model.ForecastResult
	for result := range resultChan {
		forecasts = append(forecasts, *result)
	}

	sort.Slice(forecasts, func(i, j int) bool {
		if forecasts[i].Strength != forecasts[j].Strength {
			return forecasts[i].Strength > forecasts[j].Strength
		}
		return forecasts[i].Symbol < forecasts[j].Symbol
	})

	return &model.ScanResult{
		TotalScanned: len(pairs),
		Forecasts:    forecasts,
		Failed:       int(failedCount),
		ScanTime:     time.Since(startTime),
	}, nil
}
