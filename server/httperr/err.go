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

package httperr

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/zintix-labs/slipdesk/dto"
	"github.com/zintix-labs/slipdesk/errs"
	"github.com/zintix-labs/slipdesk/history"
	"github.com/zintix-labs/slipdesk/ledger"
)

// StatusCode 將錯誤映射成 HTTP status code。
//
// 規則（邊界層最小映射、可預期）：
//   - ctx timeout/cancel → 504/408（請求生命週期問題）
//   - ledger.ErrInFlight → 409（同一組選擇已有送出在進行）
//   - history.ErrNotFound → 404
//   - errs.Warn         → 400（請求/參數問題）
//   - errs.Fatal        → 500（系統/不可恢復問題）
//
// 本函數屬於 HTTP 邊界層，因此放在 server/*（而不是 core errs）。
func StatusCode(err error) int {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout // 504
	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout // 408
	case errors.Is(err, ledger.ErrInFlight):
		return http.StatusConflict // 409
	case errors.Is(err, history.ErrNotFound):
		return http.StatusNotFound // 404
	}

	var e *errs.E
	if errors.As(err, &e) && e.ErrLv == errs.Warn {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// Body 組出回給前端的錯誤本體。
//
// 一律顯示最外層 *errs.E 的 Message；Extra 只在 4xx 時放到 detail，5xx 不外洩下層細節。
func Body(err error) dto.ErrorResponse {
	status := StatusCode(err)
	switch {
	case status == http.StatusGatewayTimeout || status == http.StatusRequestTimeout:
		return dto.ErrorResponse{Error: "Request timed out. Please try again."}
	case status >= 500:
		return dto.ErrorResponse{Error: errs.UserMessage(err, "internal server error")}
	}
	resp := dto.ErrorResponse{Error: errs.UserMessage(err, http.StatusText(status))}
	if e, ok := errs.AsErr(err); ok {
		resp.Detail = e.Extra
	}
	return resp
}

func Errs(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(StatusCode(err))
	_ = json.NewEncoder(w).Encode(Body(err))
}

// Log 只記錄值得關注的錯誤：408/409/429 為 Warn，5xx 為 Error，其餘 4xx 不記。
func Log(log *slog.Logger, msg string, err error) {
	if err == nil || log == nil {
		return
	}
	status := StatusCode(err)
	if (status == 408) || (status == 409) || (status == 429) {
		log.Warn(msg, slog.Any("err", err))
	} else if (status >= 500) && (status < 600) {
		log.Error(msg, slog.Any("err", err))
	}
}
