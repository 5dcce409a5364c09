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

package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/zintix-labs/slipdesk/errs"
)

// enum LogMode
type LogMode uint8

const (
	ModeDev LogMode = iota
	ModeProd
	ModeSilence
)

var modeNames = [...]string{ModeDev: "dev", ModeProd: "prod", ModeSilence: "silence"}

func (m LogMode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return "unknown"
}

// ParseLogMode 接受 dev / prod / silence（大小寫不敏感），空字串視為 dev。
func ParseLogMode(s string) (LogMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ModeDev, nil
	}
	for i, n := range modeNames {
		if n == s {
			return LogMode(i), nil
		}
	}
	return ModeDev, errs.Warnf("invalid log mode %q: want dev, prod or silence", s)
}

// =========================================================
// 兩種注入方式：
//
// (A) 直接傳入 *slog.Logger：NewDefaultLogger(LogMode) 或 NewAsync(buf, LogMode)。
// (B) 傳入 slog.Handler：自行組裝 JSON/Text/ReplaceAttr/LevelVar 後用 NewLogger(h) 包起來。
//
// AsyncHandler 可以把任何 slog.Handler 變成非阻塞。
// =========================================================

func NewDefaultLogger(mode LogMode) *slog.Logger {
	return slog.New(buildHandler(mode))
}

func NewDefaultAsyncLogger(mode LogMode) *slog.Logger {
	return slog.New(NewAsyncHandler(buildHandler(mode), 8192))
}

// NewLogger h 為 nil 時使用 ModeDev。
func NewLogger(h slog.Handler) *slog.Logger {
	if h == nil {
		h = buildHandler(ModeDev)
	}
	return slog.New(h)
}

// AsyncHandler 是 slog.Handler wrapper：
//   - Handle 只做 enqueue，背景 goroutine 逐筆呼叫 next.Handle。
//   - channel 滿時丟棄並計數，不把延遲傳回請求路徑。
//
// slog.Logger 會忽略 Handle 回傳的 error，I/O 錯誤需在 next 內自行處理。
type AsyncHandler struct {
	next slog.Handler
	d    *asyncDispatcher
}

type asyncDispatcher struct {
	ch     chan asyncItem
	closed chan struct{}
	once   sync.Once
	wg     sync.WaitGroup

	dropCount atomic.Uint64
}

type asyncItem struct {
	ctx     context.Context
	rec     slog.Record
	handler slog.Handler
}

// NewAsyncHandler buf 控制隊列大小，<= 0 時為 1024。
func NewAsyncHandler(next slog.Handler, buf int) *AsyncHandler {
	if next == nil {
		next = buildHandler(ModeDev)
	}
	if buf <= 0 {
		buf = 1024
	}
	d := &asyncDispatcher{
		ch:     make(chan asyncItem, buf),
		closed: make(chan struct{}),
	}
	d.wg.Add(1)
	go d.worker()
	return &AsyncHandler{next: next, d: d}
}

func (h *AsyncHandler) Ready() bool {
	return h != nil && h.d != nil
}

// Dropped returns number of dropped log records due to a full buffer.
func (h *AsyncHandler) Dropped() uint64 {
	if h == nil || h.d == nil {
		return 0
	}
	return h.d.dropCount.Load()
}

// Close stops the dispatcher and drains buffered logs.
func (h *AsyncHandler) Close() {
	if h == nil || h.d == nil {
		return
	}
	h.d.once.Do(func() { close(h.d.closed) })
	h.d.wg.Wait()
}

func (d *asyncDispatcher) worker() {
	defer d.wg.Done()
	for {
		select {
		case it := <-d.ch:
			it.handle()
		case <-d.closed:
			// drain
			for {
				select {
				case it := <-d.ch:
					it.handle()
				default:
					return
				}
			}
		}
	}
}

func (it asyncItem) handle() {
	if it.handler != nil {
		_ = it.handler.Handle(it.ctx, it.rec)
	}
}

func (h *AsyncHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *AsyncHandler) Handle(ctx context.Context, r slog.Record) error {
	if h == nil || h.d == nil {
		return nil
	}
	select {
	case <-h.d.closed:
		h.d.dropCount.Add(1)
		return nil
	default:
	}

	// Clone 避免 Record 內部的可變引用跨 goroutine
	it := asyncItem{ctx: ctx, rec: r.Clone(), handler: h.next}
	select {
	case h.d.ch <- it:
	default:
		h.d.dropCount.Add(1)
	}
	return nil
}

func (h *AsyncHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &AsyncHandler{next: h.next.WithAttrs(attrs), d: h.d}
}

func (h *AsyncHandler) WithGroup(name string) slog.Handler {
	return &AsyncHandler{next: h.next.WithGroup(name), d: h.d}
}

// NewAsync builds a *slog.Logger using LogMode defaults, then wraps its handler with AsyncHandler.
func NewAsync(buf int, mode LogMode) (*slog.Logger, *AsyncHandler) {
	ah := NewAsyncHandler(buildHandler(mode), buf)
	return slog.New(ah), ah
}

func buildHandler(mode LogMode) slog.Handler {
	switch mode {
	case ModeProd:
		return BuildHandler(mode, os.Stdout)
	default:
		return BuildHandler(mode, os.Stderr)
	}
}

// BuildHandler 依 LogMode 建立寫到 w 的 handler。
//
//   - ModeDev：text、Debug 以上；w 是終端機時 level 會上色。
//   - ModeProd：JSON、Info 以上，給 Loki / Promtail。
//   - ModeSilence：全部丟掉。
func BuildHandler(mode LogMode, w io.Writer) slog.Handler {
	switch mode {
	case ModeProd:
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})
	case ModeSilence:
		return slog.DiscardHandler
	default:
		opts := &slog.HandlerOptions{Level: slog.LevelDebug}
		if isTerminal(w) {
			opts.ReplaceAttr = colorLevel
		}
		return slog.NewTextHandler(w, opts)
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

var levelColors = map[slog.Level]*color.Color{
	slog.LevelDebug: color.New(color.FgHiBlack),
	slog.LevelInfo:  color.New(color.FgCyan),
	slog.LevelWarn:  color.New(color.FgYellow),
	slog.LevelError: color.New(color.FgRed, color.Bold),
}

func colorLevel(groups []string, a slog.Attr) slog.Attr {
	if len(groups) != 0 || a.Key != slog.LevelKey {
		return a
	}
	lv, ok := a.Value.Any().(slog.Level)
	if !ok {
		return a
	}
	if c, ok := levelColors[lv]; ok {
		return slog.String(a.Key, c.Sprint(lv.String()))
	}
	return a
}
