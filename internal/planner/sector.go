package planner

import (
	"math"
	"strings"

	"github.com/allenshen-svg/fund-assistant/internal/model"
)

// DefaultTag is the tag reported when no heatmap entry matches a holding type.
const DefaultTag = "通用"

// TagMap maps a holding type to the heatmap tags it follows.
type TagMap map[string][]string

// DefaultTagMap returns the built-in type to tag mapping.
func DefaultTagMap() TagMap {
	return TagMap{
		"黄金":      {"黄金", "贵金属"},
		"有色金属":    {"有色金属"},
		"AI/科技":   {"AI算力", "人工智能", "半导体", "机器人"},
		"半导体/科技":  {"半导体", "AI算力", "人工智能"},
		"半导体":     {"半导体"},
		"军工":      {"军工"},
		"新能源":     {"新能源", "光伏", "新能源车", "锂电"},
		"医药":      {"医药"},
		"消费":      {"消费"},
		"白酒/消费":   {"消费", "白酒"},
		"债券":      {"债券"},
		"宽基":      {"宽基", "沪深300", "A500"},
		"红利":      {"红利"},
		"港股科技":    {"港股科技"},
		"原油":      {"原油"},
		"蓝筹":      {"蓝筹", "消费", "医药"},
		"QDII":    {"港股", "美股"},
		"蓝筹/QDII": {"蓝筹", "消费", "港股"},
	}
}

// Tags returns the tags for a holding type, falling back to the type itself.
func (m TagMap) Tags(holdingType string) []string {
	if tags, ok := m[holdingType]; ok && len(tags) > 0 {
		return tags
	}
	return []string{holdingType}
}

// matches reports whether name contains any tag or any tag contains name.
func matches(tags []string, name string) bool {
	if name == "" {
		return false
	}
	for _, tag := range tags {
		if tag == "" {
			continue
		}
		if strings.Contains(name, tag) || strings.Contains(tag, name) {
			return true
		}
	}
	return false
}

// NeutralHeat is the heat used when nothing in the heatmap matches.
func NeutralHeat() model.HeatInfo {
	return model.HeatInfo{Temperature: 50, Trend: model.HeatStable, Sentiment: 0, Tag: DefaultTag}
}

// PickHeat averages every heatmap entry whose tag overlaps the holding type's tags.
// The trend is the majority of up versus down entries.
func PickHeat(holdingType string, heatmap []model.HeatEntry, tagMap TagMap) model.HeatInfo {
	tags := tagMap.Tags(holdingType)
	var matched []model.HeatEntry
	for _, e := range heatmap {
		if matches(tags, e.Tag) {
			matched = append(matched, e)
		}
	}
	if len(matched) == 0 {
		return NeutralHeat()
	}

	var temp, sentiment float64
	up, down := 0, 0
	for _, e := range matched {
		temp += e.Temperature
		sentiment += e.Sentiment
		switch e.Trend {
		case model.HeatUp:
			up++
		case model.HeatDown:
			down++
		}
	}
	n := float64(len(matched))

	trend := model.HeatStable
	switch {
	case up > down:
		trend = model.HeatUp
	case down > up:
		trend = model.HeatDown
	}
	return model.HeatInfo{
		Temperature: int(math.Round(temp / n)),
		Trend:       trend,
		Sentiment:   sentiment / n,
		Tag:         matched[0].Tag,
	}
}

// MatchSectorFlow returns the first flow whose name overlaps the holding type's tags.
func MatchSectorFlow(holdingType string, flows []model.SectorFlow, tagMap TagMap) *model.SectorFlow {
	tags := tagMap.Tags(holdingType)
	for i := range flows {
		if matches(tags, flows[i].Name) {
			f := flows[i]
			return &f
		}
	}
	return nil
}
