package httperr

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/zintix-labs/slipdesk/dto"
	"github.com/zintix-labs/slipdesk/errs"
	"github.com/zintix-labs/slipdesk/history"
	"github.com/zintix-labs/slipdesk/ledger"
	"github.com/zintix-labs/slipdesk/slip"
)

func TestStatusCode(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{errs.Wrap(context.Canceled, "x"), http.StatusRequestTimeout},
		{ledger.ErrInFlight, http.StatusConflict},
		{history.ErrNotFound.With("abc"), http.StatusNotFound},
		{slip.ErrUnfilled.With("5"), http.StatusBadRequest},
		{errs.NewFatal("boom"), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := StatusCode(c.err); got != c.want {
			t.Fatalf("StatusCode(%v) = %d, want %d", c.err, got, c.want)
		}
	}
}

func TestErrsWritesJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	Errs(rec, errs.NewWarn("Please select a game and group.").With("gameid=0"))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	var body dto.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Error != "Please select a game and group." || body.Detail != "gameid=0" {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestBodyHidesFatal(t *testing.T) {
	b := Body(errs.WrapWithExtra(errors.New("dial tcp: refused"), "Failed to submit data", "POST /createorupdatedata"))
	if b.Error != "Failed to submit data" || b.Detail != "" {
		t.Fatalf("unexpected body %+v", b)
	}
	if b := Body(errors.New("plain")); b.Error != "internal server error" {
		t.Fatalf("unexpected body %+v", b)
	}
}
