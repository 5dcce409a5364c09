package v1

import (
	"net/http"

	"github.com/zintix-labs/slipdesk/dto"
	"github.com/zintix-labs/slipdesk/errs"
	"github.com/zintix-labs/slipdesk/server/netsvr"
)

// Submit 送出整張單；同一組 uid/game/group 已有送出在進行時回 409。
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	req, err := dto.DecodeSubmitRequest(r)
	if err != nil {
		h.fail(w, "v1.submit", err)
		return
	}
	ctx, cancel := h.withTimeout(r)
	defer cancel()

	rc, err := h.desk.Submit(ctx, req)
	if err != nil {
		h.fail(w, "v1.submit", err)
		return
	}
	writeJSON(w, http.StatusOK, rc)
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	req, err := dto.DecodeHistoryRequest(r)
	if err != nil {
		h.fail(w, "v1.history", err)
		return
	}
	ctx, cancel := h.withTimeout(r)
	defer cancel()

	msgs, err := h.desk.History(ctx, req)
	if err != nil {
		h.fail(w, "v1.history", err)
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

// DeleteHistory DELETE /history/{id}
func (h *Handler) DeleteHistory(w http.ResponseWriter, r *http.Request) {
	id := netsvr.PathParam(r, "id")
	if id == "" {
		h.fail(w, "v1.history.delete", errs.NewWarn("id is required"))
		return
	}
	ctx, cancel := h.withTimeout(r)
	defer cancel()

	if err := h.desk.DeleteHistory(ctx, id); err != nil {
		h.fail(w, "v1.history.delete", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteRecords DELETE /records，body {"ids":[...]}，轉成後端的 flag "D" 批次。
func (h *Handler) DeleteRecords(w http.ResponseWriter, r *http.Request) {
	req, err := dto.DecodeDeleteRecordsRequest(r)
	if err != nil {
		h.fail(w, "v1.records.delete", err)
		return
	}
	ctx, cancel := h.withTimeout(r)
	defer cancel()

	n, err := h.desk.DeleteRecords(ctx, req)
	if err != nil {
		h.fail(w, "v1.records.delete", err)
		return
	}
	writeJSON(w, http.StatusOK, dto.DeleteRecordsResponse{Deleted: n})
}
