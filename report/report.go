// Package report 彙整一張投注單的統計（各類型筆數、金額合計與分佈），供 CLI 與 /v1/summary 使用。
package report

import (
	"math"
	"sort"

	"github.com/zintix-labs/slipdesk/slip"
	"gonum.org/v1/gonum/stat"
)

// Summary 單張投注單的統計
type Summary struct {
	Mode       slip.Mode      `json:"Mode" yaml:"Mode"`
	Entries    int            `json:"Entries" yaml:"Entries"`
	TotalStake int            `json:"TotalStake" yaml:"TotalStake"`
	Invalid    int            `json:"Invalid" yaml:"Invalid"`
	Ambiguous  int            `json:"Ambiguous" yaml:"Ambiguous"`
	Blocked    bool           `json:"Blocked" yaml:"Blocked"`
	// Overflow 表示 TotalStake 或某類型的 Stake 超出 int 範圍，已停在 math.MaxInt。
	Overflow   bool           `json:"Overflow,omitempty" yaml:"Overflow,omitempty"`
	Categories []CategoryStat `json:"Categories" yaml:"Categories"`
}

// CategoryStat 單一類型的統計；Std 為樣本標準差，筆數 < 2 時為 0。
type CategoryStat struct {
	Category string   `json:"Category" yaml:"Category"`
	TypeID   int      `json:"TypeID" yaml:"TypeID"`
	Count    int      `json:"Count" yaml:"Count"`
	Stake    int      `json:"Stake" yaml:"Stake"`
	Mean     float64  `json:"Mean" yaml:"Mean"`
	Std      float64  `json:"Std" yaml:"Std"`
	Median   float64  `json:"Median" yaml:"Median"`
	Max      int      `json:"Max" yaml:"Max"`
	Numbers  []string `json:"Numbers" yaml:"Numbers"`
}

// Summarize 依 entry 的類型名稱分組。已知類型依 slip.Categories 排序，其餘依名稱排序。
func Summarize(r slip.Result, mode slip.Mode) *Summary {
	s := &Summary{
		Mode:       mode,
		Invalid:    len(r.Invalid),
		Ambiguous:  len(r.Ambiguous),
		Blocked:    r.Blocked(),
		Categories: []CategoryStat{},
	}

	type bucket struct {
		typeID  int
		amounts []float64
		numbers []string
		stake   int
		max     int
	}
	buckets := map[string]*bucket{}
	for _, e := range r.Groups.All() {
		b, ok := buckets[e.Type]
		if !ok {
			b = &bucket{typeID: e.TypeID}
			buckets[e.Type] = b
		}
		b.amounts = append(b.amounts, float64(e.Amount))
		b.numbers = append(b.numbers, e.Number)
		b.stake = s.add(b.stake, e.Amount)
		b.max = max(b.max, e.Amount)
		s.Entries++
		s.TotalStake = s.add(s.TotalStake, e.Amount)
	}

	names := make([]string, 0, len(buckets))
	for name := range buckets {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		ri, rj := rank(names[i]), rank(names[j])
		if ri != rj {
			return ri < rj
		}
		return names[i] < names[j]
	})

	for _, name := range names {
		b := buckets[name]
		sorted := append([]float64(nil), b.amounts...)
		sort.Float64s(sorted)

		cs := CategoryStat{
			Category: name,
			TypeID:   b.typeID,
			Count:    len(sorted),
			Stake:    b.stake,
			Mean:     stat.Mean(sorted, nil),
			Median:   stat.Quantile(0.5, stat.Empirical, sorted, nil),
			Max:      b.max,
			Numbers:  b.numbers,
		}
		if len(sorted) > 1 {
			cs.Std = stat.StdDev(sorted, nil)
		}
		s.Categories = append(s.Categories, cs)
	}
	return s
}

// add 以 slip.AddStake 相加，溢位時停在 math.MaxInt 並標記 Overflow。
func (s *Summary) add(a, b int) int {
	sum, ok := slip.AddStake(a, b)
	if !ok {
		s.Overflow = true
		return math.MaxInt
	}
	return sum
}

func rank(name string) int {
	for i, c := range slip.Categories {
		if string(c) == name {
			return i
		}
	}
	return len(slip.Categories)
}
