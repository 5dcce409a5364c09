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

// Package app 提供應用程式生命週期管理（App），負責統一啟動與關閉多個 Component。
package app

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// App 啟動所有註冊的 Component，並在收到 OS 信號、ctx 結束或任一 Component 返回時協調優雅關閉。
type App struct {
	comps   []Component
	log     *slog.Logger
	timeout time.Duration
}

// New 建立一個新的 App 實例。
func New() *App {
	return &App{log: slog.New(slog.DiscardHandler), timeout: 5 * time.Second}
}

// NewWith 是 New 的語法糖，允許在建立時直接註冊多個 Component。
func NewWith(comps ...Component) *App {
	app := New()
	for _, c := range comps {
		app.Register(c)
	}
	return app
}

// SetLogger 設定關閉錯誤的輸出位置
func (a *App) SetLogger(l *slog.Logger) *App {
	if l != nil {
		a.log = l
	}
	return a
}

// Register 將一個 Component 註冊到 App 中。關閉順序與註冊順序相同。
func (a *App) Register(c Component) {
	a.comps = append(a.comps, c)
}

// Run 等同 RunContext(context.Background())。
func (a *App) Run() error {
	return a.RunContext(context.Background())
}

// RunContext 並行啟動所有 Component 並阻塞：
//   - 收到 SIGINT/SIGTERM 或 ctx 結束：優雅關閉並返回 nil。
//   - 任一 Component 的 Run 返回：優雅關閉並返回該值。
func (a *App) RunContext(ctx context.Context) error {
	errCh := make(chan error, len(a.comps))
	for _, c := range a.comps {
		go func(c Component) {
			errCh <- c.Run()
		}(c)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case sig := <-quit:
		a.log.Info("app: signal received", slog.String("signal", sig.String()))
		a.gracefulShutdown()
		return nil
	case <-ctx.Done():
		a.gracefulShutdown()
		return nil
	case err := <-errCh:
		a.gracefulShutdown()
		return err
	}
}

// gracefulShutdown 在 timeout 內依序呼叫所有 Component.Shutdown。
func (a *App) gracefulShutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()
	for _, c := range a.comps {
		if err := c.Shutdown(ctx); err != nil {
			a.log.Error("app: shutdown error", slog.Any("err", err))
		}
	}
}
