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

package api

import (
	"log/slog"
	"net/http"

	"github.com/zintix-labs/slipdesk/server/api/dev"
	v1 "github.com/zintix-labs/slipdesk/server/api/v1"
	"github.com/zintix-labs/slipdesk/server/netsvr"
	"github.com/zintix-labs/slipdesk/server/netsvr/middleware"
	"github.com/zintix-labs/slipdesk/server/svrcfg"
)

// RegisterRoutes 註冊
func RegisterRoutes(svr netsvr.NetSvr, sCfg *svrcfg.SvrCfg) error {
	registerMiddleware(svr, sCfg.Log) // 1. 註冊 middleware
	registerIndex(svr, sCfg.DevPanel) // 2. 註冊主頁
	if sCfg.DevPanel {
		dev.Register(svr, sCfg) // 3. 輸入面板
	}
	return registerV1API(svr, sCfg) // 4. 註冊 v1 api
}

// 註冊 middleware
func registerMiddleware(svr netsvr.NetSvr, log *slog.Logger) {
	svr.Use(middleware.RequestID)
	svr.Use(middleware.AccessLog(log))
	svr.Use(middleware.Recover)
	svr.Use(middleware.Compression)
}

// 註冊主頁：有面板時導向 /dev，否則只回健康檢查文字
func registerIndex(svr netsvr.NetSvr, devPanel bool) {
	svr.Get("/", func(w http.ResponseWriter, r *http.Request) {
		if devPanel {
			http.Redirect(w, r, "/dev", http.StatusFound)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("slipdesk ok\n"))
	})
}

// 註冊 v1 api
func registerV1API(svr netsvr.NetSvr, sCfg *svrcfg.SvrCfg) error {
	h, err := v1.NewHandler(sCfg)
	if err != nil {
		return err
	}
	svr.Group("/v1", func(vOne netsvr.NetRouter) {
		// 文字處理（無後端呼叫）
		vOne.Post("/normalize", h.Normalize)
		vOne.Get("/parse", h.Parse)
		vOne.Post("/parse", h.Parse)
		vOne.Post("/edit", h.Edit)
		vOne.Post("/highlight", h.Highlight)
		vOne.Post("/summary", h.Summary)

		// 目錄
		vOne.Get("/types", h.Types)
		vOne.Post("/types/refresh", h.RefreshTypes)
		vOne.Get("/games", h.Games)
		vOne.Get("/groups/{uid}", h.Groups)

		// 送出與歷史
		vOne.Post("/submit", h.Submit)
		vOne.Get("/history", h.History)
		vOne.Delete("/history/{id}", h.DeleteHistory)
		vOne.Delete("/records", h.DeleteRecords)
	})
	return nil
}
