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

// Package errs 定義 slipdesk 全域共用的分級錯誤。
//
// 分級只表達「呼叫端該怎麼處理」：
//   - Fatal：系統或依賴出錯（backend 不通、DB 壞掉），邊界層回 5xx。
//   - Warn ：請求或輸入本身有問題（未選遊戲、金額未填），邊界層回 4xx，使用者可自行修正。
//
// 解析器本身不回傳錯誤：格式不對的行一律分類成 invalid / ambiguous，不會走到這裡。
package errs

import (
	"errors"
	"fmt"
)

// ErrLevel 錯誤分級
type ErrLevel uint8

const (
	None ErrLevel = iota
	Fatal
	Warn
)

var errLvMap = map[ErrLevel]string{
	None:  "",
	Fatal: "fatal",
	Warn:  "warn",
}

func (l ErrLevel) String() string {
	if str, ok := errLvMap[l]; ok {
		return str
	}
	return ""
}

// E 是統一的錯誤型別。
//
// Message 是給使用者看的主訊息（例如 "Please select a game and group."），
// Extra 是給維運看的補充上下文，Cause 串接下層錯誤。
type E struct {
	Message string
	Extra   string
	Cause   error
	ErrLv   ErrLevel
}

func (e *E) Error() string {
	base := fmt.Sprintf("errlv=%s %s", e.ErrLv, e.Message)
	if e.Extra != "" {
		base += " | extra: " + e.Extra
	}
	if e.Cause != nil {
		base += fmt.Sprintf(" (cause: %v)", e.Cause)
	}
	return base
}

// Unwrap 讓 errors.Is / errors.As 能夠向下展開。
func (e *E) Unwrap() error { return e.Cause }

// Is 以 Message + ErrLv 判斷是否為同一個 sentinel，
// 讓 errors.Is(Wrap(ErrX, ...), ErrX) 與 errors.Is(ErrX.With(...), ErrX) 都成立。
func (e *E) Is(target error) bool {
	t, ok := target.(*E)
	if !ok || t == nil {
		return false
	}
	return e.Message == t.Message && e.ErrLv == t.ErrLv
}

// With 複製一份 sentinel 並附上 Extra，不會改動原本的 sentinel。
func (e *E) With(extra string) *E {
	c := *e
	c.Extra = extra
	return &c
}

func New(errLv ErrLevel, msg string) *E {
	return &E{Message: msg, ErrLv: errLv}
}

func NewFatal(msg string) *E { return New(Fatal, msg) }
func NewWarn(msg string) *E  { return New(Warn, msg) }

func Warnf(format string, a ...any) *E { return NewWarn(fmt.Sprintf(format, a...)) }

// Wrap 包裝底層錯誤。
//
// ErrLevel 規則：
//   - cause 已經是 *E：沿用其 ErrLv。
//   - 其他錯誤（標準庫、driver、net/http）：一律視為 Fatal。
func Wrap(cause error, msg string) *E {
	r := New(Level(cause), msg)
	r.Cause = cause
	return r
}

// WrapWithExtra 同 Wrap，另外附上 Extra。
func WrapWithExtra(cause error, msg string, extra string) *E {
	r := Wrap(cause, msg)
	r.Extra = extra
	return r
}

// Level 回傳 err 的分級；非 *E 的錯誤視為 Fatal，nil 為 None。
func Level(err error) ErrLevel {
	if err == nil {
		return None
	}
	var e *E
	if errors.As(err, &e) {
		return e.ErrLv
	}
	return Fatal
}

// UserMessage 取出最外層 *E 的 Message；非 *E 時回傳 fallback。
func UserMessage(err error, fallback string) string {
	var e *E
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return fallback
}

func AsErr(err error) (*E, bool) {
	var e *E
	if errors.As(err, &e) {
		return e, true
	}
	return e, false
}
