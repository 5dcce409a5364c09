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

// Package slipdesk 是投注單工作台的「組裝入口（assembler）」。
//
// Desk 把下列元件組在一起，對外提供一次文字變動的完整處理（Edit）與送出（Submit）：
//  1. Catalog：投注類型目錄 {typeid, typename}，解析時用來決定每個號碼的類型。
//  2. Parser：slip 套件的逐行分類器，以 Catalog 作為 TypeResolver。
//  3. Backend：不透明的後端（批次 upsert 與目錄查詢），經由 ledger.Submitter 送出並防止重複送出。
//  4. Journal（可選）：本機 SQLite 日誌，記錄每一張成功送出的投注單原文。
//
// 設計重點：
//   - 解析本身是同步、純計算的；只有 Submit / RefreshTypes / History / Delete* 會碰到網路或磁碟，因此帶 context。
//   - 每次解析都整份替換結果，不保留上一輪的狀態。
//   - 送出時伺服器一律重新解析原文，不信任用戶端的解析結果。
//
// 典型使用情境：
//   - HTTP 服務：server/api 把每個請求轉成 Desk 的方法呼叫。
//   - 批次 CLI：cmd/slip 直接呼叫 Normalize / Parse / Summary。
package slipdesk

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zintix-labs/slipdesk/catalog"
	"github.com/zintix-labs/slipdesk/errs"
	"github.com/zintix-labs/slipdesk/history"
	"github.com/zintix-labs/slipdesk/ledger"
	"github.com/zintix-labs/slipdesk/slip"
)

// Desk 是 slipdesk 的執行入口，可被多個 goroutine 同時使用。
type Desk struct {
	cat     *catalog.Catalog
	parser  *slip.Parser
	sub     *ledger.Submitter
	journal *history.Store
	log     *slog.Logger
	now     func() time.Time

	// lifecycle
	done      chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool
	reason    atomic.Value // string
}

type Option func(*Desk)

// WithCatalog 未指定時使用只含 slip.DefaultTypes 的目錄。
func WithCatalog(c *catalog.Catalog) Option { return func(d *Desk) { d.cat = c } }

// WithBackend 未指定時使用 ledger.MemoryBackend（開發用）。
func WithBackend(b ledger.Backend) Option {
	return func(d *Desk) { d.sub = ledger.NewSubmitter(b) }
}

// WithJournal 未指定時不保存本機歷史，History 改向後端查詢。
func WithJournal(s *history.Store) Option { return func(d *Desk) { d.journal = s } }

func WithLogger(l *slog.Logger) Option { return func(d *Desk) { d.log = l } }

// WithClock 測試用
func WithClock(now func() time.Time) Option { return func(d *Desk) { d.now = now } }

func New(opts ...Option) (*Desk, error) {
	d := &Desk{
		log:  slog.New(slog.DiscardHandler),
		now:  time.Now,
		done: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.cat == nil {
		d.cat = catalog.Default()
	}
	if d.sub == nil {
		d.sub = ledger.NewSubmitter(ledger.NewMemoryBackend(d.cat.All(), nil, nil))
	}
	d.sub.SetClock(d.now)
	d.parser = slip.NewParser(d.cat)

	if missing := d.cat.Missing(); len(missing) > 0 {
		d.log.Warn("catalog missing types, defaults will be used", slog.Any("types", missing))
	}
	return d, nil
}

func (d *Desk) Catalog() *catalog.Catalog { return d.cat }

func (d *Desk) Backend() ledger.Backend { return d.sub.Backend() }

func (d *Desk) Logger() *slog.Logger { return d.log }

// Now 回傳 Desk 使用的時鐘時間
func (d *Desk) Now() time.Time { return d.now() }

// RefreshTypes 從後端取回類型目錄並整份替換；失敗時保留原目錄。
func (d *Desk) RefreshTypes(ctx context.Context) ([]slip.Type, error) {
	if err := d.alive(ctx); err != nil {
		return nil, err
	}
	types, err := d.sub.Backend().Types(ctx)
	if err != nil {
		d.log.Warn("types.refresh failed", slog.Any("err", err))
		return nil, err
	}
	if err := d.cat.Replace(types); err != nil {
		d.log.Warn("types.refresh rejected", slog.Any("err", err))
		return nil, err
	}
	d.log.Info("types.refresh", slog.Int("count", len(types)))
	return d.cat.All(), nil
}

func (d *Desk) Games(ctx context.Context) ([]ledger.Game, error) {
	if err := d.alive(ctx); err != nil {
		return nil, err
	}
	return d.sub.Backend().Games(ctx)
}

func (d *Desk) Groups(ctx context.Context, uid int) ([]ledger.Group, error) {
	if err := d.alive(ctx); err != nil {
		return nil, err
	}
	return d.sub.Backend().Groups(ctx, uid)
}

func (d *Desk) alive(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-d.done:
		return errs.NewFatal("desk closed: " + d.ClosedReason())
	default:
		return nil
	}
}

// Close 關閉 Desk 與 journal，可重複呼叫。
func (d *Desk) Close() error {
	return d.closeWithReason("closed")
}

func (d *Desk) closeWithReason(reason string) error {
	var err error
	d.closeOnce.Do(func() {
		d.reason.Store(reason)
		d.closed.Store(true)
		close(d.done)
		if d.journal != nil {
			err = d.journal.Close()
		}
	})
	return err
}

func (d *Desk) Closed() bool {
	return d.closed.Load()
}

func (d *Desk) ClosedReason() string {
	if v := d.reason.Load(); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
