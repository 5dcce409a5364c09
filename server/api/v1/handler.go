// Package v1 是 slipdesk 的 JSON API。
//
// 每個 handler 只做三件事：解碼請求（dto.Decode*）、呼叫 Desk、把結果或錯誤寫回。
// 會碰到後端或 journal 的呼叫一律套上 SvrCfg.Timeout。
package v1

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/zintix-labs/slipdesk"
	"github.com/zintix-labs/slipdesk/errs"
	"github.com/zintix-labs/slipdesk/server/httperr"
	"github.com/zintix-labs/slipdesk/server/svrcfg"
)

type Handler struct {
	desk    *slipdesk.Desk
	log     *slog.Logger
	timeout time.Duration
}

func NewHandler(sCfg *svrcfg.SvrCfg) (*Handler, error) {
	if sCfg == nil || sCfg.Desk == nil {
		return nil, errs.NewFatal("build v1 handler error: desk is required")
	}
	return &Handler{desk: sCfg.Desk, log: sCfg.Log, timeout: sCfg.Timeout}, nil
}

func (h *Handler) withTimeout(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), h.timeout)
}

func (h *Handler) fail(w http.ResponseWriter, msg string, err error) {
	httperr.Log(h.log, msg, err)
	httperr.Errs(w, err)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
