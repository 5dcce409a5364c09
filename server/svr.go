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

package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/zintix-labs/slipdesk/errs"
	"github.com/zintix-labs/slipdesk/server/api"
	"github.com/zintix-labs/slipdesk/server/app"
	"github.com/zintix-labs/slipdesk/server/netsvr"
	"github.com/zintix-labs/slipdesk/server/svrcfg"
)

// Run 是 server 套件的「組裝器（assembler）」與「啟動入口（runtime entry）」。
//
// 它負責：
//  1. 驗證輸入的 SvrCfg（包含 Desk 與 logger）。
//  2. 建立 HTTP server（netsvr），位址取 SvrCfg.Addr。
//  3. 註冊路由與 middleware（api.RegisterRoutes）。
//  4. 啟動 app 並在停止時關閉 Desk。
//
// Run 不讀任何檔案路徑或環境變數；所有依賴都透過 SvrCfg 明確注入（見 cmd/svr）。
func Run(ctx context.Context, sCfg *svrcfg.SvrCfg) error {
	if err := sCfg.Vaild(); err != nil {
		// 防止外層傳入的logger不可用
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	return RunWithSvr(ctx, sCfg, netsvr.NewChiServer(sCfg.Addr))
}

// RunWithSvr 與 Run 相同，但允許呼叫端注入自訂的 NetSvr
// （自己包裝的 adapter、額外的 listener 或 TLS 設定）。
//
// svr 必須非 nil；若是 ChiAdapter 會要求 Ready() 為 true。
// ctx 結束或收到 SIGINT/SIGTERM 時優雅關閉：先停 HTTP，再關 Desk（含 journal）。
func RunWithSvr(ctx context.Context, sCfg *svrcfg.SvrCfg, svr netsvr.NetSvr) error {
	if err := sCfg.Vaild(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	if svr == nil {
		err := errs.NewFatal("svr is required")
		sCfg.Log.Error(err.Error())
		return err
	}
	if s, ok := svr.(*netsvr.ChiAdapter); ok && !s.Ready() {
		err := errs.NewFatal("default server is not ready")
		sCfg.Log.Error(err.Error())
		return err
	}

	// 註冊 Api
	if err := api.RegisterRoutes(svr, sCfg); err != nil {
		sCfg.Log.Error("register routes failed", slog.Any("err", err))
		return err
	}

	// 運行
	desk := sCfg.Desk
	a := app.NewWith(svr, app.OnShutdown(func(context.Context) error {
		return desk.Close()
	})).SetLogger(sCfg.Log)

	sCfg.Log.Info("[slipdesk] listening on http://localhost" + svr.Address())
	if err := a.RunContext(ctx); err != nil {
		sCfg.Log.Error("app stopped:", slog.Any("err", err))
		return err
	}
	sCfg.Log.Info("[slipdesk] stopped", slog.String("reason", desk.ClosedReason()))
	return nil
}
