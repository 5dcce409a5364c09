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

// Package demo 提供不需要真實後端就能跑起來的組裝：內嵌的類型目錄、記憶體後端與範例投注單。
package demo

import (
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/zintix-labs/slipdesk"
	"github.com/zintix-labs/slipdesk/catalog"
	"github.com/zintix-labs/slipdesk/demo/demo_configs"
	"github.com/zintix-labs/slipdesk/errs"
	"github.com/zintix-labs/slipdesk/ledger"
	"github.com/zintix-labs/slipdesk/server/logger"
	"github.com/zintix-labs/slipdesk/server/svrcfg"
)

var (
	Games = []ledger.Game{
		{ID: 1, Name: "Kalyan", Description: "Kalyan day market"},
		{ID: 2, Name: "Milan Day"},
		{ID: 3, Name: "Main Bazar"},
	}
	// Groups 以 uid 為 key
	Groups = map[int][]ledger.Group{
		1: {{ID: 10, Name: "North"}, {ID: 11, Name: "South"}},
		2: {{ID: 20, Name: "Counter"}},
	}
)

// Catalog 讀取內嵌的 types.yaml
func Catalog() (*catalog.Catalog, error) {
	c, err := catalog.New(demo_configs.FS)
	if err != nil {
		return nil, err
	}
	if err := c.LoadSeeds(); err != nil {
		return nil, err
	}
	return c, nil
}

// Backend 回傳以 demo 目錄、場次與群組初始化的記憶體後端
func Backend(c *catalog.Catalog) *ledger.MemoryBackend {
	return ledger.NewMemoryBackend(c.All(), Games, Groups)
}

// NewDesk 以 demo 目錄與記憶體後端建立 Desk；opts 會套在預設值之後。
func NewDesk(opts ...slipdesk.Option) (*slipdesk.Desk, error) {
	c, err := Catalog()
	if err != nil {
		return nil, errs.Wrap(err, "new demo desk failed")
	}
	base := []slipdesk.Option{slipdesk.WithCatalog(c), slipdesk.WithBackend(Backend(c))}
	return slipdesk.New(append(base, opts...)...)
}

func NewServerConfig() (*svrcfg.SvrCfg, error) {
	log := logger.NewDefaultAsyncLogger(logger.ModeDev)
	desk, err := NewDesk(slipdesk.WithLogger(log))
	if err != nil {
		return nil, err
	}
	return &svrcfg.SvrCfg{Log: log, Desk: desk, DevPanel: true}, nil
}

// Slips 回傳內嵌的範例投注單，key 為不含副檔名的檔名。
func Slips() map[string]string {
	out := map[string]string{}
	names, _ := fs.Glob(demo_configs.FS, "*.txt")
	for _, name := range names {
		raw, err := fs.ReadFile(demo_configs.FS, name)
		if err != nil {
			continue
		}
		out[strings.TrimSuffix(name, path.Ext(name))] = string(raw)
	}
	return out
}

// SlipNames 依字典序
func SlipNames() []string {
	s := Slips()
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

