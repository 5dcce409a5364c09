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
	"strings"
)

var (
	lineSplitRe = regexp.MustCompile(`\r?\n`)

	// "[12/05 10:30 AM] Ravi: 5=100" 這類聊天軟體轉貼的前綴
	headerRe = regexp.MustCompile(`^\s*\[\s*\d{1,2}[/-]\d{1,2}(?:[/-]\d{2,4})?(?:\s+\d{1,2}:\d{2}(?:\s*[APMapm]{2})?)?\s*\][^:]*:\s*`)

	completeRe = regexp.MustCompile(`^[0-9A-Za-z]+=[0-9A-Za-z]+$`)
	fragmentRe = regexp.MustCompile(`^[0-9A-Za-z]+[=\-+:;,.]$`)
)

func splitLines(s string) []string {
	return lineSplitRe.Split(s, -1)
}

// Normalize = FillWithNextValue(StripHeaders(text))，即文字框每次變動時套用的整理。
func Normalize(text string) string {
	return FillWithNextValue(StripHeaders(text))
}

// StripHeaders 去掉每行開頭的聊天前綴。沒有任何一行被修改時原樣回傳。
func StripHeaders(text string) string {
	lines := splitLines(text)
	changed := false
	for i, ln := range lines {
		if loc := headerRe.FindStringIndex(ln); loc != nil {
			lines[i] = ln[loc[1]:]
			changed = true
		}
	}
	if !changed {
		return text
	}
	return strings.Join(lines, "\n")
}

// FillWithNextValue 把只寫了 key 與符號的行（"5-"、"12="）補上金額。
//
// 由最後一行往上掃：遇到完整的 "key=value" 記下 value，遇到殘缺行就接上目前記下的 value。
// 投注單通常是同金額的一串號碼只在最後寫一次金額，所以值是由下往上傳。
// 下方完全沒有完整行的殘缺行，改接最靠近的上方完整行（也就是全文最後一個完整行）的值；
// 整份都沒有完整行時才維持原樣。
//
// 規則：
//   - 空白行原樣保留（不 trim）。
//   - 只要有殘缺行，其餘非空白行一律 trim。
//   - 沒有任何殘缺行時回傳原字串（identity），因此 FillWithNextValue 是 idempotent。
func FillWithNextValue(input string) string {
	lines := splitLines(input)
	hasFragment := false
	for _, ln := range lines {
		if fragmentRe.MatchString(strings.TrimSpace(ln)) {
			hasFragment = true
			break
		}
	}
	if !hasFragment {
		return input
	}

	out := make([]string, len(lines))
	var (
		next       string
		seen       bool
		bottomMost string
		pending    []int
	)
	for i := len(lines) - 1; i >= 0; i-- {
		raw := lines[i]
		line := strings.TrimSpace(raw)
		switch {
		case line == "":
			out[i] = raw
		case completeRe.MatchString(line):
			next = line[strings.IndexByte(line, '=')+1:]
			if !seen {
				bottomMost = next
				seen = true
			}
			out[i] = line
		case fragmentRe.MatchString(line):
			out[i] = line
			if seen {
				out[i] += next
			} else {
				pending = append(pending, i)
			}
		default:
			out[i] = line
		}
	}
	if seen {
		for _, i := range pending {
			out[i] += bottomMost
		}
	}
	return strings.Join(out, "\n")
}
