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
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidSingleDigitAnyMode(t *testing.T) {
	for d := 0; d <= 9; d++ {
		num := fmt.Sprint(d)
		assert.True(t, IsValid(num, Open), num)
		assert.True(t, IsValid(num, Close), num)
	}
}

func TestIsValidTwoDigitOnlyOpen(t *testing.T) {
	for n := 0; n <= 99; n++ {
		num := fmt.Sprintf("%02d", n)
		assert.True(t, IsValid(num, Open), num)
		assert.False(t, IsValid(num, Close), num)
	}
}

func TestIsValidPanaPriority(t *testing.T) {
	cases := map[string]bool{
		"123": true,
		"210": false,
		"190": true,
		"900": true,
		"100": true,
		"001": false,
		"555": true,
		"321": false,
		"890": true,
		"809": false,
	}
	for num, want := range cases {
		assert.Equal(t, want, IsValid(num, Open), num)
		assert.Equal(t, want, IsValid(num, Close), num)
	}

	// 與獨立實作逐一比對
	prio := map[byte]int{'0': 10, '9': 9, '8': 8, '7': 7, '6': 6, '5': 5, '4': 4, '3': 3, '2': 2, '1': 1}
	for n := 0; n <= 999; n++ {
		num := fmt.Sprintf("%03d", n)
		want := prio[num[0]] <= prio[num[1]] && prio[num[1]] <= prio[num[2]]
		require.Equal(t, want, IsValid(num, Open), num)
	}
}

func TestIsValidRejectsShape(t *testing.T) {
	for _, num := range []string{"", "1234", "1a", "-1", " 1", "１"} {
		assert.False(t, IsValid(num, Open), num)
	}
}

type stubResolver map[Category]Type

func (s stubResolver) Resolve(c Category) (Type, bool) {
	t, ok := s[c]
	return t, ok
}

func TestMapperLookup(t *testing.T) {
	m := NewMapper(nil)
	cases := []struct {
		length int
		mode   Mode
		want   Type
		ok     bool
	}{
		{1, Open, Type{1, "open"}, true},
		{2, Open, Type{2, "jodi"}, true},
		{3, Open, Type{3, "open pana"}, true},
		{1, Close, Type{4, "close"}, true},
		{2, Close, Type{}, false},
		{3, Close, Type{5, "close pana"}, true},
		{4, Open, Type{}, false},
		{0, Close, Type{}, false},
	}
	for _, c := range cases {
		got, ok := m.Lookup(c.length, c.mode)
		assert.Equal(t, c.ok, ok, "%d/%s", c.length, c.mode)
		assert.Equal(t, c.want, got, "%d/%s", c.length, c.mode)
	}
}

func TestMapperPrefersCatalog(t *testing.T) {
	m := NewMapper(stubResolver{CatOpen: {ID: 11, Name: "OPEN"}})
	got, ok := m.Lookup(1, Open)
	require.True(t, ok)
	assert.Equal(t, Type{ID: 11, Name: "open"}, got)

	// 目錄缺少的類型退回預設表
	got, ok = m.Lookup(2, Open)
	require.True(t, ok)
	assert.Equal(t, DefaultTypes[CatJodi], got)
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("open")
	require.NoError(t, err)
	assert.Equal(t, Open, m)
	m, err = ParseMode(" CLOSE ")
	require.NoError(t, err)
	assert.Equal(t, Close, m)
	m, err = ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, Open, m)
	_, err = ParseMode("noon")
	assert.Error(t, err)
}

func TestParseAmount(t *testing.T) {
	v, err := ParseAmount(" 1,000 ")
	require.NoError(t, err)
	assert.Equal(t, 1000, v)
	_, err = ParseAmount("0")
	assert.Error(t, err)
	_, err = ParseAmount("ten")
	assert.Error(t, err)
}

func TestTotalStake(t *testing.T) {
	total, err := TotalStake([]NumberEntry{{Amount: 10}, {Amount: 0}, {Amount: 25}})
	require.NoError(t, err)
	assert.Equal(t, 35, total)

	_, err = TotalStake([]NumberEntry{{Amount: math.MaxInt}, {Amount: 1}})
	assert.ErrorIs(t, err, ErrStakeOverflow)

	sum, ok := AddStake(math.MaxInt-1, 1)
	assert.True(t, ok)
	assert.Equal(t, math.MaxInt, sum)
}

func TestGroupedSetAmount(t *testing.T) {
	g := NewGrouped()
	g.add(NumberEntry{Number: "5", Type: "open", TypeID: 1, Amount: 10})
	g.add(NumberEntry{Number: "123", Type: "open pana", TypeID: 3, Amount: 10})
	g.add(NumberEntry{Number: "12", Type: "jodi", TypeID: 2, Amount: 10})

	require.NoError(t, g.SetAmount(3, 0, 250))
	assert.Equal(t, 250, g[3][0].Amount)
	assert.Error(t, g.SetAmount(2, 1, 5))
	assert.Error(t, g.SetAmount(4, 0, 5))

	all := g.All()
	require.Len(t, all, 3)
	assert.Equal(t, []string{"5", "12", "123"}, []string{all[0].Number, all[1].Number, all[2].Number})
}
