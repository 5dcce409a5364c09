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

// Package session 描述一次編輯投注單的上下文：操作者、選定的遊戲與群組、場次日期與開/收盤。
package session

import (
	"strings"
	"time"

	"github.com/zintix-labs/slipdesk/errs"
	"github.com/zintix-labs/slipdesk/ledger"
	"github.com/zintix-labs/slipdesk/slip"
)

// WindowDays 可選的場次日期為今天往前 30 天（含）。
const WindowDays = 30

var ErrDateOutOfRange = errs.NewWarn("Game date must be within the last 30 days.")

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Session 取代畫面上的全域狀態，所有需要選擇資訊的操作都顯式帶入。
type Session struct {
	UserID int          `json:"uid"`
	Role   Role         `json:"role,omitempty"`
	Game   ledger.Game  `json:"game"`
	Group  ledger.Group `json:"group"`
	Date   string       `json:"gamedate"` // YYYY-MM-DD，空字串視為今天
	Mode   slip.Mode    `json:"mode"`
}

// Normalize 補上預設值：Mode 預設 Open、Date 預設今天。
func (s Session) Normalize(now time.Time) (Session, error) {
	m, err := slip.ParseMode(string(s.Mode))
	if err != nil {
		return s, err
	}
	s.Mode = m
	s.Date = strings.TrimSpace(s.Date)
	if s.Date == "" {
		s.Date = now.Format(ledger.DateLayout)
	}
	if s.Role == "" {
		s.Role = RoleUser
	}
	return s, nil
}

// Gate 把解析結果與目前選擇組成送出前檢查的輸入。
func (s Session) Gate(r slip.Result) slip.Gate {
	return slip.Gate{
		GameSelected:  s.Game.ID != 0,
		GroupSelected: s.Group.ID != 0,
		Invalid:       r.Invalid,
		Groups:        r.Groups,
	}
}

func (s Session) Selection() ledger.Selection {
	return ledger.Selection{Game: s.Game, Group: s.Group, UserID: s.UserID, GameDate: s.Date}
}

// DateWindow 回傳 now 所在時區可選的最早與最晚日期。
func DateWindow(now time.Time) (earliest, latest time.Time) {
	y, m, d := now.Date()
	latest = time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	earliest = latest.AddDate(0, 0, -WindowDays)
	return earliest, latest
}

// CheckDate 驗證 date（YYYY-MM-DD）落在 DateWindow 內。
func CheckDate(date string, now time.Time) error {
	t, err := time.ParseInLocation(ledger.DateLayout, strings.TrimSpace(date), now.Location())
	if err != nil {
		return errs.Warnf("invalid game date %q: want YYYY-MM-DD", date)
	}
	earliest, latest := DateWindow(now)
	if t.Before(earliest) || t.After(latest) {
		return ErrDateOutOfRange.With(date)
	}
	return nil
}
