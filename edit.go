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

package slipdesk

import (
	"github.com/zintix-labs/slipdesk/dto"
	"github.com/zintix-labs/slipdesk/report"
	"github.com/zintix-labs/slipdesk/slip"
)

// Normalize 去掉聊天前綴並補齊殘缺金額。
func (d *Desk) Normalize(text string) string {
	return slip.Normalize(text)
}

// Parse 以目前的目錄解析 text（不做正規化）。
func (d *Desk) Parse(text, mode string) (slip.Result, error) {
	m, err := slip.ParseMode(mode)
	if err != nil {
		return slip.Result{}, err
	}
	return d.parser.Parse(text, m), nil
}

// Edit 是文字框每次變動的完整處理：
// 正規化 → 映射選取範圍 → 解析 → 標示 → 提示列 → 送出按鈕狀態。
func (d *Desk) Edit(req *dto.EditRequest) (dto.EditResponse, error) {
	m, err := slip.ParseMode(req.Mode)
	if err != nil {
		return dto.EditResponse{}, err
	}

	norm := slip.Normalize(req.Text)
	resp := dto.EditResponse{
		Text:     norm,
		Changed:  norm != req.Text,
		SelStart: req.SelStart,
		SelEnd:   req.SelEnd,
	}
	if resp.Changed {
		resp.SelStart = slip.MapPosition(req.Text, norm, req.SelStart)
		resp.SelEnd = slip.MapPosition(req.Text, norm, req.SelEnd)
	}

	res := d.parser.Parse(norm, m)
	resp.Result = res
	resp.Markup = slip.RenderHTML(norm, slip.BuildIssues(res.Invalid, res.Ambiguous))
	resp.Banner = dto.NewBanner(res)
	resp.Blocked = res.Blocked()
	return resp, nil
}

// Highlight 標示 text 中有問題的行（不做正規化）。
func (d *Desk) Highlight(req *dto.TextRequest) (dto.HighlightResponse, error) {
	res, err := d.Parse(req.Text, req.Mode)
	if err != nil {
		return dto.HighlightResponse{}, err
	}
	issues := slip.BuildIssues(res.Invalid, res.Ambiguous)
	return dto.HighlightResponse{
		Markup: slip.RenderHTML(req.Text, issues),
		Issues: issues.Map(),
		Banner: dto.NewBanner(res),
	}, nil
}

// Summary 正規化後解析，再彙整各類型統計。
func (d *Desk) Summary(req *dto.TextRequest) (*report.Summary, error) {
	m, err := slip.ParseMode(req.Mode)
	if err != nil {
		return nil, err
	}
	res := d.parser.Parse(slip.Normalize(req.Text), m)
	return report.Summarize(res, m), nil
}
