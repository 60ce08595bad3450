package collector

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/allenshen-svg/fund-assistant/internal/calculator"
	"github.com/allenshen-svg/fund-assistant/internal/model"

	"go.uber.org/zap"
)

// MarketData is the joined result of one collection run. Holdings whose
// history could not be fetched are absent from History and listed in Failed.
type MarketData struct {
	History   map[string][]model.PricePoint
	Estimates map[string]*model.Estimate
	Flows     []model.SectorFlow
	Failed    []string
	FetchedAt time.Time
}

// DefaultHistoryDays covers the longest trend horizon (250 trading days)
// plus its base point, with a small margin for suspended days.
const DefaultHistoryDays = 260

// Collector fetches per-holding market data concurrently.
type Collector struct {
	Fetcher     Fetcher
	HistoryDays int
	Concurrency int
	Logger      *zap.Logger
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, historyDays, concurrency int, logger *zap.Logger) *Collector {
	if historyDays <= 0 {
		historyDays = DefaultHistoryDays
	}
	if concurrency <= 0 {
		concurrency = 4
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collector{Fetcher: fetcher, HistoryDays: historyDays, Concurrency: concurrency, Logger: logger}
}

// Collect fetches NAV history and estimates for every code plus the sector flows.
// Individual failures are logged and skipped; the batch always completes
// unless ctx is cancelled.
func (c *Collector) Collect(ctx context.Context, codes []string) (*MarketData, error) {
	data := &MarketData{
		History:   make(map[string][]model.PricePoint, len(codes)),
		Estimates: make(map[string]*model.Estimate, len(codes)),
		FetchedAt: time.Now(),
	}

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, c.Concurrency)
	)
	for _, code := range uniqueCodes(codes) {
		wg.Add(1)
		go func(code string) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return
			}
			defer func() { <-sem }()

			hist, err := c.Fetcher.FetchNAVHistory(ctx, code, c.HistoryDays)
			if err != nil {
				c.Logger.Warn("nav history fetch failed", zap.String("code", code), zap.String("fetcher", c.Fetcher.Name()), zap.Error(err))
			}
			est, estErr := c.Fetcher.FetchEstimate(ctx, code)
			if estErr != nil {
				c.Logger.Debug("estimate fetch failed", zap.String("code", code), zap.Error(estErr))
			}

			mu.Lock()
			defer mu.Unlock()
			if err != nil || len(hist) == 0 {
				data.Failed = append(data.Failed, code)
			} else {
				data.History[code] = calculator.NormalizeHistory(hist)
			}
			if est != nil {
				data.Estimates[code] = est
			}
		}(code)
	}

	flows, err := c.Fetcher.FetchSectorFlows(ctx)
	if err != nil {
		c.Logger.Warn("sector flow fetch failed", zap.Error(err))
	}
	data.Flows = flows

	wg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sort.Strings(data.Failed)
	c.Logger.Info("market data collected",
		zap.Int("funds", len(data.History)),
		zap.Int("failed", len(data.Failed)),
		zap.Int("estimates", len(data.Estimates)),
		zap.Int("flows", len(data.Flows)))
	return data, nil
}

// Realized returns the percentage change of code on date: the NAV change
// versus the previous point in history, else the intraday estimate when it
// is dated on that day.
func (d *MarketData) Realized(code, date string) (float64, bool) {
	hist := d.History[code]
	for i := 1; i < len(hist); i++ {
		if hist[i].Date.Format(model.DateLayout) != date {
			continue
		}
		prev := hist[i-1].NAV
		if prev <= 0 {
			break
		}
		return (hist[i].NAV - prev) / prev * 100, true
	}
	if est := d.Estimates[code]; est != nil && !est.Time.IsZero() && est.Time.Format(model.DateLayout) == date {
		return est.Pct, true
	}
	return 0, false
}

func uniqueCodes(codes []string) []string {
	seen := make(map[string]struct{}, len(codes))
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		if _, ok := seen[c]; ok || c == "" {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}
