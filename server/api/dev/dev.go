// Package dev 提供投注單輸入面板（Dev Panel）。
//
// 面板是一個內嵌的單頁：左邊 textarea 下方疊一層標示層，每次輸入都呼叫 /v1/edit，
// 用回傳的正規化文字、選取範圍、markup 與 banner 更新畫面；右邊顯示解析結果並可修改金額後送出。
//
// 這不是 production UI，樣式與行為偏向開發期驗證。
package dev

import (
	_ "embed"
	"encoding/json"
	"net/http"

	"github.com/zintix-labs/slipdesk/ledger"
	"github.com/zintix-labs/slipdesk/session"
	"github.com/zintix-labs/slipdesk/slip"
	"github.com/zintix-labs/slipdesk/server/netsvr"
	"github.com/zintix-labs/slipdesk/server/svrcfg"
)

//go:embed panel.html
var panelHTML []byte

// Register 註冊 Dev Panel 的 routes。
//
//   - GET /dev      ：面板 HTML。
//   - GET /dev/meta ：模式清單、可選日期範圍與目前的類型目錄。
func Register(svr netsvr.NetRouter, cfg *svrcfg.SvrCfg) {
	svr.Get("/dev", devPage)
	svr.Get("/dev/meta", devMeta(cfg))
}

func devPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(panelHTML)
}

type meta struct {
	Modes    []slip.Mode `json:"modes"`
	Earliest string      `json:"earliest"`
	Latest   string      `json:"latest"`
	Types    []slip.Type `json:"types"`
}

func devMeta(cfg *svrcfg.SvrCfg) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		earliest, latest := session.DateWindow(cfg.Desk.Now())
		writeJSON(w, meta{
			Modes:    []slip.Mode{slip.Open, slip.Close},
			Earliest: earliest.Format(ledger.DateLayout),
			Latest:   latest.Format(ledger.DateLayout),
			Types:    cfg.Desk.Catalog().All(),
		})
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
