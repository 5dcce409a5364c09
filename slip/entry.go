// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package slip

import (
	"math"
	"strconv"
	"strings"

	"github.com/zintix-labs/slipdesk/errs"
)

// NumberEntry 是一筆被接受的投注。
//
// Number 保留前導零（"007" 與 "7" 不同）；TypeID 為 0 代表尚未對應到類型。
type NumberEntry struct {
	Number string `json:"number"`
	Type   string `json:"type"`
	TypeID int    `json:"typeid,omitempty"`
	Amount int    `json:"amount"`
}

// Line 是一筆分類紀錄（invalid 或 ambiguous），Line 為 0-based 行號，Raw 為原始行文字。
type Line struct {
	Line   int    `json:"line"`
	Raw    string `json:"raw"`
	Reason string `json:"reason"`
}

// Grouped 依號碼位數（1/2/3）分組，bucket k 內每筆 Number 長度皆為 k。
type Grouped map[int][]NumberEntry

// Lengths 是 Grouped 固定的 bucket 順序。
var Lengths = [...]int{1, 2, 3}

func NewGrouped() Grouped {
	return Grouped{1: []NumberEntry{}, 2: []NumberEntry{}, 3: []NumberEntry{}}
}

func (g Grouped) add(e NumberEntry) {
	g[len(e.Number)] = append(g[len(e.Number)], e)
}

// All 依 bucket 1,2,3 的順序攤平。
func (g Grouped) All() []NumberEntry {
	out := make([]NumberEntry, 0, g.Len())
	for _, k := range Lengths {
		out = append(out, g[k]...)
	}
	return out
}

func (g Grouped) Len() int {
	n := 0
	for _, k := range Lengths {
		n += len(g[k])
	}
	return n
}

// SetAmount 就地修改某一筆的金額（結果側的手動編輯）。
func (g Grouped) SetAmount(length, index, amount int) error {
	bucket, ok := g[length]
	if !ok || index < 0 || index >= len(bucket) {
		return errs.Warnf("no entry at length=%d index=%d", length, index)
	}
	bucket[index].Amount = amount
	return nil
}

// Result 是一次解析的完整輸出；每次重新解析都整份替換。
type Result struct {
	Groups    Grouped `json:"groups"`
	Invalid   []Line  `json:"invalid"`
	Ambiguous []Line  `json:"ambiguous"`
}

func newResult() Result {
	return Result{Groups: NewGrouped(), Invalid: []Line{}, Ambiguous: []Line{}}
}

// Blocked 對應畫面上的送出按鈕停用條件：有 invalid 行，或沒有任何可送出的號碼。
func (r Result) Blocked() bool {
	return len(r.Invalid) > 0 || r.Groups.Len() == 0
}

// ErrStakeOverflow 金額合計超出 int 範圍（單筆金額最大可到 math.MaxInt）。
var ErrStakeOverflow = errs.NewWarn("total stake is too large")

// AddStake 回傳 a+b；溢位時 ok=false。
func AddStake(a, b int) (sum int, ok bool) {
	if (b > 0 && a > math.MaxInt-b) || (b < 0 && a < math.MinInt-b) {
		return 0, false
	}
	return a + b, true
}

// TotalStake 加總 entries 的金額，溢位時回傳 ErrStakeOverflow。
func TotalStake(entries []NumberEntry) (int, error) {
	total := 0
	for _, e := range entries {
		var ok bool
		if total, ok = AddStake(total, e.Amount); !ok {
			return 0, ErrStakeOverflow
		}
	}
	return total, nil
}

// ParseAmount 解析使用者手動輸入的金額，接受 "1,000" 這類千分位寫法。
func ParseAmount(s string) (int, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, errs.Warnf("invalid amount %q", s)
	}
	if v <= 0 {
		return 0, errs.Warnf("amount must be > 0, got %d", v)
	}
	return v, nil
}

// leadingInt 依 JavaScript parseInt 的語意取開頭的數字串；沒有數字或溢位時 ok=false。
func leadingInt(s string) (int, bool) {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	v, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return v, true
}
