package heat

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/allenshen-svg/fund-assistant/internal/model"

	"github.com/kaptinlin/jsonrepair"
	"go.uber.org/zap"
)

// trendDelta is the temperature move that counts as heating up or cooling down.
const trendDelta = 5

// Source loads the sector heatmap document from a file path or an HTTP URL.
// Any failure falls back to the last good document, then to the built-in heatmap.
type Source struct {
	location string
	client   *http.Client
	logger   *zap.Logger

	mu   sync.Mutex
	last *model.HotEvents
}

// NewSource creates a Source. An empty location always serves the fallback.
func NewSource(location string, client *http.Client, logger *zap.Logger) *Source {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Source{location: location, client: client, logger: logger}
}

// Load returns the current heatmap document. fallback is true when the
// document did not come from the configured location.
func (s *Source) Load(ctx context.Context) (doc model.HotEvents, fallback bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.location == "" {
		return s.fallbackLocked(), true
	}
	data, err := s.read(ctx)
	if err == nil {
		doc, err = Parse(data)
	}
	if err != nil {
		s.logger.Warn("heatmap load failed, using fallback", zap.String("location", s.location), zap.Error(err))
		return s.fallbackLocked(), true
	}
	if len(doc.Heatmap) == 0 {
		s.logger.Warn("heatmap empty, using fallback", zap.String("location", s.location))
		return s.fallbackLocked(), true
	}

	doc.Heatmap = DeriveTrends(doc.Heatmap, s.last)
	s.last = &doc
	s.logger.Info("heatmap loaded", zap.Int("tags", len(doc.Heatmap)), zap.Int("events", len(doc.Events)))
	return doc, false
}

func (s *Source) fallbackLocked() model.HotEvents {
	if s.last != nil {
		return *s.last
	}
	return Fallback()
}

func (s *Source) read(ctx context.Context) ([]byte, error) {
	if !strings.HasPrefix(s.location, "http://") && !strings.HasPrefix(s.location, "https://") {
		return os.ReadFile(s.location)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.location, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("heatmap http status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

type rawDoc struct {
	UpdatedAt string            `json:"updated_at"`
	Heatmap   []model.HeatEntry `json:"heatmap"`
	Events    []model.HotEvent  `json:"events"`
}

// Parse decodes a heatmap document, repairing malformed JSON when needed.
// Temperatures are clamped to 0..100 and entries are ordered hottest first.
func Parse(data []byte) (model.HotEvents, error) {
	var raw rawDoc
	if err := json.Unmarshal(data, &raw); err != nil {
		repaired, rerr := jsonrepair.JSONRepair(string(data))
		if rerr != nil {
			return model.HotEvents{}, fmt.Errorf("repair heatmap json: %w", rerr)
		}
		raw = rawDoc{}
		if err := json.Unmarshal([]byte(repaired), &raw); err != nil {
			return model.HotEvents{}, fmt.Errorf("decode heatmap: %w", err)
		}
	}

	doc := model.HotEvents{Events: raw.Events}
	if raw.UpdatedAt != "" {
		if t, err := time.Parse(time.RFC3339Nano, raw.UpdatedAt); err == nil {
			doc.UpdatedAt = t
		}
	}
	for _, e := range raw.Heatmap {
		e.Tag = strings.TrimSpace(e.Tag)
		if e.Tag == "" {
			continue
		}
		e.Temperature = clamp(e.Temperature, 0, 100)
		switch e.Trend {
		case model.HeatUp, model.HeatDown, model.HeatStable, model.HeatNew:
		default:
			e.Trend = ""
		}
		doc.Heatmap = append(doc.Heatmap, e)
	}
	sort.SliceStable(doc.Heatmap, func(i, j int) bool {
		return doc.Heatmap[i].Temperature > doc.Heatmap[j].Temperature
	})
	return doc, nil
}

// DeriveTrends fills entries without a trend by comparing against prev:
// more than 5 degrees hotter is up, colder is down, absent tags are new.
// Without a previous document every missing trend is stable.
func DeriveTrends(current []model.HeatEntry, prev *model.HotEvents) []model.HeatEntry {
	prevTemp := map[string]float64{}
	if prev != nil {
		for _, e := range prev.Heatmap {
			prevTemp[e.Tag] = e.Temperature
		}
	}
	out := make([]model.HeatEntry, len(current))
	for i, e := range current {
		if e.Trend == "" {
			e.Trend = trendFor(e, prev != nil, prevTemp)
		}
		out[i] = e
	}
	return out
}

func trendFor(e model.HeatEntry, havePrev bool, prevTemp map[string]float64) model.HeatTrend {
	if !havePrev {
		return model.HeatStable
	}
	p, ok := prevTemp[e.Tag]
	if !ok {
		return model.HeatNew
	}
	switch diff := e.Temperature - p; {
	case diff > trendDelta:
		return model.HeatUp
	case diff < -trendDelta:
		return model.HeatDown
	default:
		return model.HeatStable
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Fallback returns the built-in heatmap used when no document can be loaded.
func Fallback() model.HotEvents {
	return model.HotEvents{
		Heatmap: []model.HeatEntry{
			{Tag: "AI算力", Temperature: 88, Sentiment: 0.85, Trend: model.HeatUp},
			{Tag: "人工智能", Temperature: 85, Sentiment: 0.8, Trend: model.HeatStable},
			{Tag: "半导体", Temperature: 82, Sentiment: 0.75, Trend: model.HeatUp},
			{Tag: "黄金", Temperature: 80, Sentiment: 0.7, Trend: model.HeatStable},
			{Tag: "军工", Temperature: 78, Sentiment: 0.75, Trend: model.HeatUp},
			{Tag: "新能源", Temperature: 70, Sentiment: 0.65, Trend: model.HeatStable},
			{Tag: "有色金属", Temperature: 70, Sentiment: 0.6, Trend: model.HeatUp},
			{Tag: "医药", Temperature: 62, Sentiment: 0.5, Trend: model.HeatUp},
			{Tag: "消费", Temperature: 58, Sentiment: 0.45, Trend: model.HeatUp},
			{Tag: "债券", Temperature: 50, Sentiment: 0.3, Trend: model.HeatUp},
			{Tag: "宽基", Temperature: 45, Sentiment: 0.2, Trend: model.HeatStable},
		},
		Events: []model.HotEvent{{
			ID:         "fallback_evt_1",
			Title:      "本地回退：宏观地缘事件加载中",
			Confidence: 0.5,
			Reason:     "远程数据不可用时使用本地样本",
		}},
	}
}
