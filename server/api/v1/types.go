package v1

import (
	"net/http"
	"strconv"

	"github.com/zintix-labs/slipdesk/errs"
	"github.com/zintix-labs/slipdesk/server/netsvr"
)

func (h *Handler) Types(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.desk.Catalog().All())
}

// RefreshTypes 從後端重新抓取 /types；失敗時目錄保持不變。
func (h *Handler) RefreshTypes(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.withTimeout(r)
	defer cancel()
	types, err := h.desk.RefreshTypes(ctx)
	if err != nil {
		h.fail(w, "v1.types.refresh", err)
		return
	}
	writeJSON(w, http.StatusOK, types)
}

func (h *Handler) Games(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.withTimeout(r)
	defer cancel()
	games, err := h.desk.Games(ctx)
	if err != nil {
		h.fail(w, "v1.games", err)
		return
	}
	writeJSON(w, http.StatusOK, games)
}

// Groups GET /groups/{uid}
func (h *Handler) Groups(w http.ResponseWriter, r *http.Request) {
	uid, err := strconv.Atoi(netsvr.PathParam(r, "uid"))
	if err != nil || uid <= 0 {
		h.fail(w, "v1.groups", errs.NewWarn("invalid uid"))
		return
	}
	ctx, cancel := h.withTimeout(r)
	defer cancel()
	groups, err := h.desk.Groups(ctx, uid)
	if err != nil {
		h.fail(w, "v1.groups", err)
		return
	}
	writeJSON(w, http.StatusOK, groups)
}
