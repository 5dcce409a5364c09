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
	"slices"
	"strings"
	"unicode"
	"unicode/utf16"
)

// MapPosition 把正規化前文字中的游標位置映射到正規化後的文字。
//
// offset 以 UTF-16 code unit 計，和瀏覽器 textarea 的 selectionStart / setSelectionRange 相同，
// 所以聊天前綴裡的 emoji 佔 2。
//
// 兩份文字逐行平行走訪，找到 offset 所在的行後，先對齊該行被保留下來的內容（lead 之前是被
// 去掉的前綴與前導空白，body 是原樣留下的部分，之後可能是被 trim 的尾端空白或補上的金額）：
//   - 落在 lead 以內：貼齊新行開頭。
//   - 落在 body 內：同步平移。
//   - 在原行行尾：跟到新行行尾（補值後游標仍在最後）。
//   - 落在被 trim 的尾端空白：停在 body 結尾。
//
// 游標剛好在行尾（換行字元之前）時屬於該行。結果會限制在 [0, len(normalized)]。
func MapPosition(original, normalized string, offset int) int {
	if offset <= 0 {
		return 0
	}
	oLines, oSep := lineUnits(original)
	nLines, nSep := lineUnits(normalized)

	total := 0
	for k := range nLines {
		total += len(nLines[k]) + nSep[k]
	}
	clamp := func(n int) int { return max(0, min(total, n)) }

	cur, npos := 0, 0
	for k, o := range oLines {
		var n []uint16
		if k < len(nLines) {
			n = nLines[k]
		}
		if offset <= cur+len(o) || offset < cur+len(o)+oSep[k] {
			return clamp(npos + mapInLine(o, n, offset-cur))
		}
		cur += len(o) + oSep[k]
		if k < len(nLines) {
			npos += len(n) + nSep[k]
		}
	}
	return clamp(npos)
}

func mapInLine(o, n []uint16, in int) int {
	in = min(in, len(o))
	if in == len(o) {
		return len(n)
	}
	lead, body := alignLine(o, n)
	switch {
	case in <= lead:
		return 0
	case in-lead > body:
		return body
	default:
		return in - lead
	}
}

// alignLine 找出最小的 lead，使 o[lead:] 去掉尾端空白後是 n 的前綴。
// lead = len(o) 時 body 為空，一定成立。
func alignLine(o, n []uint16) (lead, body int) {
	for lead = 0; lead < len(o); lead++ {
		b := trimRightUnits(o[lead:])
		if len(b) <= len(n) && slices.Equal(b, n[:len(b)]) {
			return lead, len(b)
		}
	}
	return len(o), 0
}

func trimRightUnits(u []uint16) []uint16 {
	for len(u) > 0 && !utf16.IsSurrogate(rune(u[len(u)-1])) && unicode.IsSpace(rune(u[len(u)-1])) {
		u = u[:len(u)-1]
	}
	return u
}

// lineUnits 把 s 依換行切開並轉成 UTF-16，同時回傳每行之後換行符號的長度
// （"\n"=1、"\r\n"=2、最後一行=0）。
func lineUnits(s string) (lines [][]uint16, seps []int) {
	parts := strings.Split(s, "\n")
	for i, p := range parts {
		sep := 0
		if i < len(parts)-1 {
			sep = 1
			if strings.HasSuffix(p, "\r") {
				p = p[:len(p)-1]
				sep = 2
			}
		}
		lines = append(lines, utf16.Encode([]rune(p)))
		seps = append(seps, sep)
	}
	return lines, seps
}
