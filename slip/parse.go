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
	"fmt"
	"regexp"
	"strings"
)

var (
	separatorRe  = regexp.MustCompile(`^[\s=+\-_*#]{2,}$`)
	digitsOnlyRe = regexp.MustCompile(`^\d+$`)
	tokenRe      = regexp.MustCompile(`\d+`)
	pairRe       = regexp.MustCompile(`^\s*(\d{1,3})\s*[.\-=:]\s*(\d[\d,.]*)\s*$`)
	groupRe      = regexp.MustCompile(`([\d*\s,.\-+:*]+?)\s*(?:\(\s*([0-9][\d,]*)\s*\)|/\s*([0-9][\d,]*)|=\s*([0-9][\d,]*))$`)
	groupSplitRe = regexp.MustCompile(`[,.\-+:*]+`)
	smallNumRe   = regexp.MustCompile(`\b(\d{1,3})\b`)
)

// 分類原因（對使用者顯示）
const (
	ReasonBadLastAmount    = "invalid amount (last token)"
	ReasonBadNumbers       = "one or more numbers invalid for selected type"
	ReasonBadPair          = "invalid number or amount"
	ReasonPairNoMapping    = "no mapping found for number length"
	ReasonBadGroupAmount   = "invalid trailing amount"
	ReasonBadGroupNumbers  = "one or more numbers invalid in group"
	ReasonSingleNoAmount   = "single number with no amount"
	ReasonMultipleNoAmount = "multiple numbers with no clear amount"
)

func reasonNoMapping(length int) string {
	return fmt.Sprintf("no mapping for length %d", length)
}

// LineKind 標示某一行被哪一個 matcher 處理。
type LineKind uint8

const (
	KindBlank LineKind = iota
	KindSeparator
	KindSectionHeader
	KindMultiToken
	KindPair
	KindGroup
	KindBareSingle
	KindBareMulti
	KindDropped
)

var kindNames = [...]string{
	KindBlank:         "blank",
	KindSeparator:     "separator",
	KindSectionHeader: "section-header",
	KindMultiToken:    "multi-token",
	KindPair:          "pair",
	KindGroup:         "group",
	KindBareSingle:    "bare-single",
	KindBareMulti:     "bare-multi",
	KindDropped:       "dropped",
}

func (k LineKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// lineState 是單行解析時的上下文。
type lineState struct {
	idx     int
	raw     string
	line    string // trimmed
	mode    Mode
	prevSep bool // 上一個非空白行是否為分隔線
	res     *Result
}

func (s *lineState) invalid(reason string) {
	s.res.Invalid = append(s.res.Invalid, Line{Line: s.idx, Raw: s.raw, Reason: reason})
}

func (s *lineState) ambiguous(reason string) {
	s.res.Ambiguous = append(s.res.Ambiguous, Line{Line: s.idx, Raw: s.raw, Reason: reason})
}

// matcher 回傳 true 代表此行已處理（無論結果是接受、invalid 或 ambiguous），後面的 matcher 不再嘗試。
type matcher struct {
	kind LineKind
	try  func(p *Parser, s *lineState) bool
}

// cascade 的順序即優先序，不可調換。
var cascade = [...]matcher{
	{KindSeparator, matchSeparator},
	{KindSectionHeader, matchSectionHeader},
	{KindMultiToken, matchMultiToken},
	{KindPair, matchPair},
	{KindGroup, matchGroup},
	{KindBareSingle, matchBareSingle},
	{KindBareMulti, matchBareMulti},
}

// Parser 以 Mapper 決定類型；零值不可用，請用 NewParser。
type Parser struct {
	mapper *Mapper
}

// NewParser res 可為 nil（只用 DefaultTypes）。
func NewParser(res TypeResolver) *Parser {
	return &Parser{mapper: NewMapper(res)}
}

var defaultParser = NewParser(nil)

// Parse 使用 DefaultTypes 解析。
func Parse(text string, mode Mode) Result {
	return defaultParser.Parse(text, mode)
}

// Parse 逐行分類 text（不做正規化，請先呼叫 Normalize）。
func (p *Parser) Parse(text string, mode Mode) Result {
	res, _ := p.Classify(text, mode)
	return res
}

// Classify 同 Parse，另外回傳每一行的 LineKind（長度等於行數）。
func (p *Parser) Classify(text string, mode Mode) (Result, []LineKind) {
	res := newResult()
	lines := splitLines(text)
	kinds := make([]LineKind, len(lines))

	prevSep := false
	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		s := &lineState{idx: i, raw: raw, line: line, mode: mode, prevSep: prevSep, res: &res}
		kinds[i] = KindDropped
		for _, m := range cascade {
			if m.try(p, s) {
				kinds[i] = m.kind
				break
			}
		}
		prevSep = kinds[i] == KindSeparator
	}
	return res, kinds
}

// ------------------------------------------------------------
// matchers
// ------------------------------------------------------------

func matchSeparator(_ *Parser, s *lineState) bool {
	return separatorRe.MatchString(s.line)
}

// 分隔線下面單獨一串數字視為日期或段落標題。
func matchSectionHeader(_ *Parser, s *lineState) bool {
	return s.prevSep && digitsOnlyRe.MatchString(s.line)
}

// "123 456 500"：最後一個數字是金額，其餘都是號碼。
func matchMultiToken(p *Parser, s *lineState) bool {
	toks := tokenRe.FindAllString(s.line, -1)
	if len(toks) < 2 {
		return false
	}
	amount, ok := leadingInt(strings.ReplaceAll(toks[len(toks)-1], ",", ""))
	if !ok || amount <= 0 {
		s.invalid(ReasonBadLastAmount)
		return true
	}
	if p.place(s, toks[:len(toks)-1], amount) {
		s.invalid(ReasonBadNumbers)
	}
	return true
}

// "12-50"、"7.100"、"5=1,000"
func matchPair(p *Parser, s *lineState) bool {
	m := pairRe.FindStringSubmatch(s.line)
	if m == nil {
		return false
	}
	num := m[1]
	amount, ok := leadingInt(strings.ReplaceAll(m[2], ",", ""))
	if !IsValid(num, s.mode) || !ok || amount <= 0 {
		s.invalid(ReasonBadPair)
		return true
	}
	t, ok := p.mapper.Lookup(len(num), s.mode)
	if !ok {
		s.ambiguous(ReasonPairNoMapping)
		return true
	}
	s.res.Groups.add(NumberEntry{Number: num, Type: t.Name, TypeID: t.ID, Amount: amount})
	return true
}

// "1,2,3 (100)"、"4.5.6/50"、"7 8 9 = 20"
func matchGroup(p *Parser, s *lineState) bool {
	m := groupRe.FindStringSubmatch(s.line)
	if m == nil {
		return false
	}
	amountStr := m[2]
	if amountStr == "" {
		amountStr = m[3]
	}
	if amountStr == "" {
		amountStr = m[4]
	}
	amount, ok := leadingInt(strings.ReplaceAll(amountStr, ",", ""))
	if !ok || amount <= 0 {
		s.invalid(ReasonBadGroupAmount)
		return true
	}

	fields := strings.Fields(groupSplitRe.ReplaceAllString(m[1], " "))
	nums := make([]string, len(fields))
	for i, f := range fields {
		nums[i] = tokenRe.FindString(f)
	}
	if p.place(s, nums, amount) {
		s.invalid(ReasonBadGroupNumbers)
	}
	return true
}

func matchBareSingle(_ *Parser, s *lineState) bool {
	if len(smallNumRe.FindAllString(s.line, 2)) != 1 {
		return false
	}
	s.ambiguous(ReasonSingleNoAmount)
	return true
}

func matchBareMulti(_ *Parser, s *lineState) bool {
	if len(smallNumRe.FindAllString(s.line, 2)) < 2 {
		return false
	}
	s.ambiguous(ReasonMultipleNoAmount)
	return true
}

// place 逐一驗證號碼並放入結果；無類型者記為 ambiguous。
// 回傳是否有任何號碼不合法：同一行其他合法號碼照樣收下，但整行另外記為 invalid。
func (p *Parser) place(s *lineState, nums []string, amount int) (anyInvalid bool) {
	for _, num := range nums {
		if !IsValid(num, s.mode) {
			anyInvalid = true
			continue
		}
		t, ok := p.mapper.Lookup(len(num), s.mode)
		if !ok {
			s.ambiguous(reasonNoMapping(len(num)))
			continue
		}
		s.res.Groups.add(NumberEntry{Number: num, Type: t.Name, TypeID: t.ID, Amount: amount})
	}
	return anyInvalid
}
