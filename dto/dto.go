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

package dto

import (
	"github.com/zintix-labs/slipdesk/slip"
)

type TextResponse struct {
	Text string `json:"text"`
}

type Banner struct {
	State slip.BannerState `json:"state"` // ok | warn | error
	Text  string           `json:"text"`
}

func NewBanner(r slip.Result) Banner {
	st, txt := slip.Banner(r)
	return Banner{State: st, Text: txt}
}

// HighlightResponse 是覆蓋層所需的內容
type HighlightResponse struct {
	Markup string                    `json:"markup"`
	Issues map[string]slip.IssueKind `json:"issues"`
	Banner Banner                    `json:"banner"`
}

// EditResponse 是一次文字變動後畫面需要的全部狀態。
//
// Text 為正規化後的文字；SelStart/SelEnd 為映射後的選取範圍（UTF-16 code unit）。
// Blocked 為 true 時送出按鈕應停用（有 invalid 行，或沒有任何號碼）。
type EditResponse struct {
	Text     string      `json:"text"`
	Changed  bool        `json:"changed"`
	SelStart int         `json:"sel_start"`
	SelEnd   int         `json:"sel_end"`
	Result   slip.Result `json:"result"`
	Markup   string      `json:"markup"`
	Banner   Banner      `json:"banner"`
	Blocked  bool        `json:"blocked"`
}

// ErrorResponse 是所有錯誤回應的 JSON 本體
type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// DeleteRecordsResponse 回報實際送出的刪除筆數（重複的 id 只算一次）。
type DeleteRecordsResponse struct {
	Deleted int `json:"deleted"`
}
