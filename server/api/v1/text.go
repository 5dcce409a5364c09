package v1

import (
	"net/http"

	"github.com/zintix-labs/slipdesk/dto"
)

// Normalize POST {text} → {text}
func (h *Handler) Normalize(w http.ResponseWriter, r *http.Request) {
	req, err := dto.DecodeTextRequest(r)
	if err != nil {
		h.fail(w, "v1.normalize", err)
		return
	}
	writeJSON(w, http.StatusOK, dto.TextResponse{Text: h.desk.Normalize(req.Text)})
}

// Parse GET|POST text, mode → slip.Result
func (h *Handler) Parse(w http.ResponseWriter, r *http.Request) {
	req, err := dto.DecodeTextRequest(r)
	if err != nil {
		h.fail(w, "v1.parse", err)
		return
	}
	res, err := h.desk.Parse(req.Text, req.Mode)
	if err != nil {
		h.fail(w, "v1.parse", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) Highlight(w http.ResponseWriter, r *http.Request) {
	req, err := dto.DecodeTextRequest(r)
	if err != nil {
		h.fail(w, "v1.highlight", err)
		return
	}
	resp, err := h.desk.Highlight(req)
	if err != nil {
		h.fail(w, "v1.highlight", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	req, err := dto.DecodeTextRequest(r)
	if err != nil {
		h.fail(w, "v1.summary", err)
		return
	}
	sum, err := h.desk.Summary(req)
	if err != nil {
		h.fail(w, "v1.summary", err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// Edit 是輸入框每次變動時呼叫的端點
func (h *Handler) Edit(w http.ResponseWriter, r *http.Request) {
	req, err := dto.DecodeEditRequest(r)
	if err != nil {
		h.fail(w, "v1.edit", err)
		return
	}
	resp, err := h.desk.Edit(req)
	if err != nil {
		h.fail(w, "v1.edit", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
