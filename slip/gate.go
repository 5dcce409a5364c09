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

import "github.com/zintix-labs/slipdesk/errs"

var (
	ErrNoSelection = errs.NewWarn("Please select a game and group.")
	ErrUnresolved  = errs.NewWarn("Cannot submit: unresolved parse errors in input.")
	ErrEmpty       = errs.NewWarn("Nothing to submit.")
	ErrUnfilled    = errs.NewWarn("Please fill all amount fields.")
)

// Gate 是送出前需要檢查的狀態。
type Gate struct {
	GameSelected  bool
	GroupSelected bool
	Invalid       []Line
	Groups        Grouped
}

// CheckSubmission 依序檢查，第一個不通過的條件即回傳對應錯誤（errs.Warn）。
// ambiguous 行不擋送出；空的 Groups 在這裡視為通過，是否允許空單由呼叫端（見 ErrEmpty）決定。
func CheckSubmission(g Gate) error {
	if !g.GameSelected || !g.GroupSelected {
		return ErrNoSelection
	}
	if len(g.Invalid) > 0 {
		return ErrUnresolved.With(g.Invalid[0].Raw)
	}
	for _, e := range g.Groups.All() {
		if e.Amount <= 0 || e.TypeID == 0 {
			return ErrUnfilled.With(e.Number)
		}
	}
	return nil
}
