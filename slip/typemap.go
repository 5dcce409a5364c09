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

import "strings"

// Category 是投注類型名稱（小寫）。
type Category string

const (
	CatOpen      Category = "open"
	CatJodi      Category = "jodi"
	CatOpenPana  Category = "open pana"
	CatClose     Category = "close"
	CatClosePana Category = "close pana"
)

// Categories 固定順序，供目錄列舉與報表使用。
var Categories = [...]Category{CatOpen, CatJodi, CatOpenPana, CatClose, CatClosePana}

// Type 對應後端 types 目錄的一筆。
type Type struct {
	ID   int    `json:"typeid" yaml:"typeid"`
	Name string `json:"typename" yaml:"typename"`
}

// DefaultTypes 是目錄尚未載入（或載入失敗）時使用的後備表。
var DefaultTypes = map[Category]Type{
	CatOpen:      {ID: 1, Name: string(CatOpen)},
	CatJodi:      {ID: 2, Name: string(CatJodi)},
	CatOpenPana:  {ID: 3, Name: string(CatOpenPana)},
	CatClose:     {ID: 4, Name: string(CatClose)},
	CatClosePana: {ID: 5, Name: string(CatClosePana)},
}

// CategoryFor 依位數與場次決定類型；Close 沒有兩位數。
func CategoryFor(length int, mode Mode) (Category, bool) {
	if mode.IsOpen() {
		switch length {
		case 1:
			return CatOpen, true
		case 2:
			return CatJodi, true
		case 3:
			return CatOpenPana, true
		}
		return "", false
	}
	switch length {
	case 1:
		return CatClose, true
	case 3:
		return CatClosePana, true
	}
	return "", false
}

// TypeResolver 以類型名稱查詢目錄；名稱比對需大小寫不敏感。
type TypeResolver interface {
	Resolve(c Category) (Type, bool)
}

// Mapper 把 (位數, 場次) 轉成目錄中的類型，查不到時退回 DefaultTypes。
type Mapper struct {
	res TypeResolver
}

// NewMapper res 可為 nil，此時只用 DefaultTypes。
func NewMapper(res TypeResolver) *Mapper {
	return &Mapper{res: res}
}

// Lookup 回傳 false 代表該組合沒有類型（解析時會記為 ambiguous）。
func (m *Mapper) Lookup(length int, mode Mode) (Type, bool) {
	c, ok := CategoryFor(length, mode)
	if !ok {
		return Type{}, false
	}
	if m != nil && m.res != nil {
		if t, ok := m.res.Resolve(c); ok {
			t.Name = strings.ToLower(t.Name)
			return t, true
		}
	}
	t, ok := DefaultTypes[c]
	return t, ok
}
