package model

// Holding is a fund the user owns.
type Holding struct {
	Code string `json:"code" yaml:"code"`
	Name string `json:"name" yaml:"name"`
	Type string `json:"type" yaml:"type"`
}

// SectorTypes is the enumerated set of holding types used for tag matching.
var SectorTypes = []string{
	"宽基", "红利", "黄金", "有色金属", "AI/科技", "半导体/科技", "半导体",
	"军工", "新能源", "医药", "消费", "白酒/消费", "债券", "港股科技",
	"原油", "蓝筹", "QDII", "蓝筹/QDII", "券商", "其他",
}

// DefaultSectorType is used when a holding has no usable type.
const DefaultSectorType = "其他"

// IsSectorType reports whether t is one of SectorTypes.
func IsSectorType(t string) bool {
	for _, s := range SectorTypes {
		if s == t {
			return true
		}
	}
	return false
}
