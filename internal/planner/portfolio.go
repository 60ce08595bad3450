package planner

import "github.com/allenshen-svg/fund-assistant/internal/model"

// ModelHolding is one line of the reference allocation, weight in percent.
type ModelHolding struct {
	model.Holding
	Weight int `json:"weight"`
}

// Portfolio is a core/satellite reference allocation.
type Portfolio struct {
	Core      []ModelHolding `json:"core"`
	Satellite []ModelHolding `json:"satellite"`
}

// ModelPortfolio returns the built-in reference allocation.
func ModelPortfolio() Portfolio {
	mh := func(code, name, typ string, w int) ModelHolding {
		return ModelHolding{Holding: model.Holding{Code: code, Name: name, Type: typ}, Weight: w}
	}
	return Portfolio{
		Core: []ModelHolding{
			mh("022430", "华夏中证A500ETF联接A", "宽基", 20),
			mh("007339", "易方达沪深300联接C", "宽基", 15),
			mh("000216", "华安黄金ETF联接A", "黄金", 15),
			mh("021418", "泰康红利低波联接C", "红利", 10),
		},
		Satellite: []ModelHolding{
			mh("016708", "华夏有色金属联接C", "有色金属", 10),
			mh("008586", "华夏人工智能联接C", "AI/科技", 8),
			mh("008887", "华夏半导体芯片联接A", "半导体", 8),
			mh("005693", "广发军工联接C", "军工", 7),
			mh("007993", "华夏证券公司联接C", "券商", 7),
		},
	}
}

// Holdings flattens the portfolio, core first.
func (p Portfolio) Holdings() []model.Holding {
	out := make([]model.Holding, 0, len(p.Core)+len(p.Satellite))
	for _, m := range p.Core {
		out = append(out, m.Holding)
	}
	for _, m := range p.Satellite {
		out = append(out, m.Holding)
	}
	return out
}

// TotalWeight sums the weights of all lines.
func (p Portfolio) TotalWeight() int {
	total := 0
	for _, m := range p.Core {
		total += m.Weight
	}
	for _, m := range p.Satellite {
		total += m.Weight
	}
	return total
}
