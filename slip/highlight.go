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
	"regexp"
	"sort"
	"strings"
)

// IssueKind 標示方式
type IssueKind string

const (
	IssueInvalid IssueKind = "invalid"
	IssueAmbig   IssueKind = "ambig"
)

// Issues 是「trim 後的原始行文字 → 問題種類」的有序對照表，只用來驅動標示。
//
// invalid 先放入且先寫入者為準：同一段文字同時是 invalid 與 ambiguous 時以 invalid 顯示。
type Issues struct {
	keys  []string
	kinds map[string]IssueKind
}

func BuildIssues(invalid, ambiguous []Line) *Issues {
	is := &Issues{kinds: make(map[string]IssueKind, len(invalid)+len(ambiguous))}
	for _, l := range invalid {
		is.add(strings.TrimSpace(l.Raw), IssueInvalid)
	}
	for _, l := range ambiguous {
		is.add(strings.TrimSpace(l.Raw), IssueAmbig)
	}
	return is
}

func (is *Issues) add(key string, kind IssueKind) {
	if key == "" {
		return
	}
	if _, ok := is.kinds[key]; ok {
		return
	}
	is.keys = append(is.keys, key)
	is.kinds[key] = kind
}

func (is *Issues) Kind(raw string) (IssueKind, bool) {
	k, ok := is.kinds[raw]
	return k, ok
}

func (is *Issues) Len() int { return len(is.keys) }

// Keys 依插入順序。
func (is *Issues) Keys() []string { return append([]string(nil), is.keys...) }

// Map 供 JSON 輸出。
func (is *Issues) Map() map[string]IssueKind {
	out := make(map[string]IssueKind, len(is.kinds))
	for k, v := range is.kinds {
		out[k] = v
	}
	return out
}

// Marker 決定標示的輸出格式（HTML 覆蓋層、終端機 ANSI …）。
type Marker interface {
	Escape(s string) string
	Wrap(kind IssueKind, escaped string) string
	Frame(body string) string
	Empty() string
}

// HTMLMarker 產生覆蓋在 textarea 下方的標示層。
type HTMLMarker struct{}

// Escape 只處理 & < >，換行保持原樣。
func (HTMLMarker) Escape(s string) string {
	return htmlEscaper.Replace(s)
}

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func (HTMLMarker) Wrap(kind IssueKind, escaped string) string {
	cls := "issue-ambig"
	if kind == IssueInvalid {
		cls = "issue-invalid"
	}
	return `<span class="` + cls + `">` + escaped + `</span>`
}

func (HTMLMarker) Frame(body string) string {
	return `<div class="highlight-content">` + body + `</div>`
}

func (HTMLMarker) Empty() string { return "<div></div>" }

// Render 先跳脫整段文字，再把每個有問題的行文字（同樣跳脫）包起來。
//
// 所有 key 依長度由長到短組成單一 alternation，一次掃過全文替換：
// 同一位置優先吃最長的 key，已經被包住的文字不會再被較短的 key 命中，因此不會出現巢狀標示。
func Render(text string, issues *Issues, m Marker) string {
	if text == "" {
		return m.Empty()
	}
	body := m.Escape(text)
	if issues == nil || issues.Len() == 0 {
		return m.Frame(body)
	}

	keys := issues.Keys()
	sort.SliceStable(keys, func(i, j int) bool { return len(keys[i]) > len(keys[j]) })

	byEscaped := make(map[string]IssueKind, len(keys))
	alts := make([]string, 0, len(keys))
	for _, k := range keys {
		esc := m.Escape(k)
		if _, dup := byEscaped[esc]; dup {
			continue
		}
		byEscaped[esc] = issues.kinds[k]
		alts = append(alts, regexp.QuoteMeta(esc))
	}
	re := regexp.MustCompile(strings.Join(alts, "|"))
	body = re.ReplaceAllStringFunc(body, func(s string) string {
		return m.Wrap(byEscaped[s], s)
	})
	return m.Frame(body)
}

// RenderHTML 是 Render(text, issues, HTMLMarker{}) 的簡寫。
func RenderHTML(text string, issues *Issues) string {
	return Render(text, issues, HTMLMarker{})
}

// BannerState 是輸入框下方提示列的狀態。
type BannerState string

const (
	BannerOK    BannerState = "ok"
	BannerWarn  BannerState = "warn"
	BannerError BannerState = "error"
)

const (
	bannerIssuesText = "Possible errors detected, fix the underlined parts in the input."
	bannerOKText     = "No parse issues detected."
)

// Banner 有 invalid 為 error；只有 ambiguous 為 warn。
func Banner(r Result) (BannerState, string) {
	switch {
	case len(r.Invalid) > 0:
		return BannerError, bannerIssuesText
	case len(r.Ambiguous) > 0:
		return BannerWarn, bannerIssuesText
	default:
		return BannerOK, bannerOKText
	}
}
