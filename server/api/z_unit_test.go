package api_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zintix-labs/slipdesk"
	"github.com/zintix-labs/slipdesk/dto"
	"github.com/zintix-labs/slipdesk/history"
	"github.com/zintix-labs/slipdesk/ledger"
	"github.com/zintix-labs/slipdesk/server/api"
	"github.com/zintix-labs/slipdesk/server/netsvr"
	"github.com/zintix-labs/slipdesk/server/svrcfg"
	"github.com/zintix-labs/slipdesk/slip"
)

var clock = time.Date(2026, 10, 18, 10, 0, 0, 0, time.UTC)

func newServer(t *testing.T, devPanel bool) (*netsvr.ChiAdapter, *ledger.MemoryBackend) {
	t.Helper()
	mem := ledger.NewMemoryBackend(
		[]slip.Type{{ID: 21, Name: "Open"}, {ID: 22, Name: "Jodi"}},
		[]ledger.Game{{ID: 3, Name: "Kalyan"}},
		map[int][]ledger.Group{42: {{ID: 9, Name: "North"}}},
	)
	journal, err := history.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	desk, err := slipdesk.New(
		slipdesk.WithBackend(mem),
		slipdesk.WithJournal(journal),
		slipdesk.WithClock(func() time.Time { return clock }),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = desk.Close() })

	cfg := &svrcfg.SvrCfg{Log: slog.New(slog.DiscardHandler), Desk: desk, DevPanel: devPanel}
	require.NoError(t, cfg.Vaild())
	svr := netsvr.NewChiServerDefault()
	require.NoError(t, api.RegisterRoutes(svr, cfg))
	return svr, mem
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v), rec.Body.String())
	return v
}

func TestNormalizeAndParse(t *testing.T) {
	svr, _ := newServer(t, false)

	rec := do(t, svr, http.MethodPost, "/v1/normalize", `{"text":"[10/18] Ravi: 12=50\n34="}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "12=50\n34=50", decode[dto.TextResponse](t, rec).Text)

	rec = do(t, svr, http.MethodGet, "/v1/parse?text=12-50&mode=Open", "")
	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[slip.Result](t, rec)
	require.Len(t, res.Groups[2], 1)
	assert.Equal(t, slip.NumberEntry{Number: "12", Type: "jodi", TypeID: 2, Amount: 50}, res.Groups[2][0])

	rec = do(t, svr, http.MethodGet, "/v1/parse?text=12-50&mode=noon", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEditMarkup(t *testing.T) {
	svr, _ := newServer(t, false)
	rec := do(t, svr, http.MethodPost, "/v1/edit", `{"text":"12 0\n7\n5 10","mode":"Open","sel_start":0,"sel_end":0}`)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[dto.EditResponse](t, rec)

	assert.False(t, resp.Changed)
	assert.True(t, resp.Blocked)
	assert.Equal(t, slip.BannerError, resp.Banner.State)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(resp.Markup))
	require.NoError(t, err)
	assert.Equal(t, "12 0", doc.Find("span.issue-invalid").Text())
	assert.Equal(t, "7", doc.Find("span.issue-ambig").Text())
	assert.Equal(t, 0, doc.Find("span span").Length())
}

func TestHighlightAndSummary(t *testing.T) {
	svr, _ := newServer(t, false)
	rec := do(t, svr, http.MethodPost, "/v1/highlight", `{"text":"7"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	hl := decode[dto.HighlightResponse](t, rec)
	assert.Equal(t, slip.BannerWarn, hl.Banner.State)

	rec = do(t, svr, http.MethodPost, "/v1/summary", `{"text":"5=10\n6-\n7=30"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var sum map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&sum))
	assert.Equal(t, 70.0, sum["TotalStake"])

	rec = do(t, svr, http.MethodPost, "/v1/summary", `{"text":"5","extra":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTypesGamesGroups(t *testing.T) {
	svr, _ := newServer(t, false)

	rec := do(t, svr, http.MethodGet, "/v1/types", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]slip.Type](t, rec), 5)

	rec = do(t, svr, http.MethodPost, "/v1/types/refresh", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []slip.Type{{ID: 21, Name: "open"}, {ID: 22, Name: "jodi"}}, decode[[]slip.Type](t, rec))

	rec = do(t, svr, http.MethodGet, "/v1/games", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []ledger.Game{{ID: 3, Name: "Kalyan"}}, decode[[]ledger.Game](t, rec))

	rec = do(t, svr, http.MethodGet, "/v1/groups/42", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []ledger.Group{{ID: 9, Name: "North"}}, decode[[]ledger.Group](t, rec))

	rec = do(t, svr, http.MethodGet, "/v1/groups/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

const submitBody = `{"text":"5 100\n12 50","mode":"Open","uid":42,"gameid":3,"game":"Kalyan",
"group":9,"grpname":"North","gamedate":"2026-10-18","amounts":[{"length":1,"index":0,"amount":"1,000"}]}`

func TestSubmitHistoryDelete(t *testing.T) {
	svr, mem := newServer(t, false)

	rec := do(t, svr, http.MethodPost, "/v1/submit", submitBody)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rc := decode[ledger.Receipt](t, rec)
	assert.Equal(t, 2, rc.Records)
	assert.Equal(t, 1050, rc.Stake)
	require.Len(t, mem.Batches(), 1)

	rec = do(t, svr, http.MethodGet, "/v1/history?gameid=3&uid=42", "")
	require.Equal(t, http.StatusOK, rec.Code)
	msgs := decode[[]history.Message](t, rec)
	require.Len(t, msgs, 1)
	assert.Equal(t, rc.BatchID, msgs[0].BatchID)

	rec = do(t, svr, http.MethodDelete, "/v1/history/"+msgs[0].ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, svr, http.MethodDelete, "/v1/history/"+msgs[0].ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteRecords(t *testing.T) {
	svr, mem := newServer(t, false)

	rec := do(t, svr, http.MethodDelete, "/v1/records", `{"ids":[7,7,8]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 2, decode[dto.DeleteRecordsResponse](t, rec).Deleted)
	require.Len(t, mem.Batches(), 1)
	assert.Equal(t, []ledger.Record{{Flag: ledger.FlagDelete, ID: 7}, {Flag: ledger.FlagDelete, ID: 8}}, mem.Batches()[0].Data)

	for _, body := range []string{`{"ids":[]}`, `{"ids":[0]}`, `{"id":1}`} {
		rec = do(t, svr, http.MethodDelete, "/v1/records", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
	assert.Len(t, mem.Batches(), 1)
}

func TestSubmitRejected(t *testing.T) {
	svr, mem := newServer(t, false)

	cases := map[string]string{
		"no game":   strings.Replace(submitBody, `"gameid":3`, `"gameid":0`, 1),
		"old date":  strings.Replace(submitBody, `2026-10-18`, `2026-08-01`, 1),
		"invalid":   strings.Replace(submitBody, `5 100\n12 50`, `5 100\n12 0`, 1),
		"unfilled":  strings.Replace(submitBody, `"amounts":[{"length":1,"index":0,"amount":"1,000"}]`, `"amounts":[{"length":1,"index":0,"amount":""}]`, 1),
		"empty":     strings.Replace(submitBody, `5 100\n12 50`, ``, 1),
		"bad field": strings.Replace(submitBody, `"mode"`, `"mod"`, 1),
		"overflow":  strings.Replace(submitBody, `5 100\n12 50`, `5 9223372036854775807\n6 9223372036854775807`, 1),
	}
	for name, body := range cases {
		rec := do(t, svr, http.MethodPost, "/v1/submit", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, name)
		e := decode[dto.ErrorResponse](t, rec)
		assert.NotEmpty(t, e.Error, name)
	}
	assert.Empty(t, mem.Batches())

	rec := do(t, svr, http.MethodPost, "/v1/submit", cases["no game"])
	assert.Equal(t, slip.ErrNoSelection.Message, decode[dto.ErrorResponse](t, rec).Error)
}

func TestIndexAndDevPanel(t *testing.T) {
	svr, _ := newServer(t, true)

	rec := do(t, svr, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/dev", rec.Header().Get("Location"))

	rec = do(t, svr, http.MethodGet, "/dev", "")
	require.Equal(t, http.StatusOK, rec.Code)
	doc, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 1, doc.Find("textarea#text").Length())
	assert.Equal(t, 1, doc.Find("#highlight").Length())
	assert.Equal(t, 1, doc.Find("button#submit[disabled]").Length())

	rec = do(t, svr, http.MethodGet, "/dev/meta", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var meta map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&meta))
	assert.Equal(t, "2026-09-18", meta["earliest"])
	assert.Equal(t, "2026-10-18", meta["latest"])

	plain, _ := newServer(t, false)
	rec = do(t, plain, http.MethodGet, "/dev", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = do(t, plain, http.MethodGet, "/", "")
	assert.Equal(t, "slipdesk ok\n", rec.Body.String())
}
