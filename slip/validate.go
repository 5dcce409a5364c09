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

// priority 是 pana（三位數）的位數排序表：0 最大，其次 9 → 1。
var priority = [10]int{0: 10, 9: 9, 8: 8, 7: 7, 6: 6, 5: 5, 4: 4, 3: 3, 2: 2, 1: 1}

// IsValid 判斷號碼在指定場次下是否合法。
//   - 必須全為數字，長度 1~3。
//   - 兩位數（jodi）只存在於 Open。
//   - 三位數需通過 priority 檢查。
func IsValid(num string, mode Mode) bool {
	if len(num) == 0 || len(num) > 3 {
		return false
	}
	for i := 0; i < len(num); i++ {
		if num[i] < '0' || num[i] > '9' {
			return false
		}
	}
	switch len(num) {
	case 2:
		return mode.IsOpen()
	case 3:
		return validPana(num)
	}
	return true
}

// validPana 由左到右，每一位的 priority 不可小於前一位。
func validPana(num string) bool {
	for i := 1; i < len(num); i++ {
		if priority[num[i-1]-'0'] > priority[num[i]-'0'] {
			return false
		}
	}
	return true
}
