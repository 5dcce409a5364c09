package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zintix-labs/slipdesk/slip"
)

var testSel = Selection{
	Game:     Game{ID: 3, Name: "Kalyan"},
	Group:    Group{ID: 9, Name: "North"},
	UserID:   42,
	GameDate: "2026-10-18",
}

var testEntries = []slip.NumberEntry{
	{Number: "5", Type: "open", TypeID: 1, Amount: 100},
	{Number: "12", Type: "jodi", TypeID: 2, Amount: 50},
}

func TestBuildPayloadShape(t *testing.T) {
	now := time.Date(2026, 10, 18, 9, 5, 7, 0, time.Local)
	p := Build(testSel, testEntries, "5 100\n12 50", now)

	raw, err := json.Marshal(p)
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))

	data := got["data"].([]any)
	require.Len(t, data, 2)
	first := data[0].(map[string]any)
	assert.Equal(t, map[string]any{
		"flag": "I", "createdat": "2026-10-18 09:05:07", "number": "5",
		"gameid": 3.0, "game": "Kalyan", "typeid": 1.0, "type": "open", "amount": 100.0,
		"uid": 42.0, "group": 9.0, "grpname": "North", "gamedate": "2026-10-18",
	}, first)

	msg := got["messageData"].(map[string]any)
	assert.Equal(t, map[string]any{
		"createdat": "2026-10-18 09:05:07", "gameid": 3.0, "uid": 42.0, "group": 9.0,
		"gamedate": "2026-10-18", "message": "5 100\n12 50",
	}, msg)
}

func TestBuildDelete(t *testing.T) {
	p, err := BuildDelete(7, 3, 7)
	require.NoError(t, err)
	raw, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":[{"flag":"D","id":7},{"flag":"D","id":3}]}`, string(raw))

	_, err = BuildDelete()
	assert.ErrorIs(t, err, ErrNoRecordIDs)
	_, err = BuildDelete(4, 0)
	assert.Error(t, err)
}

func newServer(t *testing.T, h http.HandlerFunc) *HTTPBackend {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	b, err := NewHTTPBackend(srv.URL+"/", time.Second, WithToken("tok"))
	require.NoError(t, err)
	return b
}

func TestHTTPBackendCatalogs(t *testing.T) {
	b := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		switch r.URL.Path {
		case "/types":
			_, _ = io.WriteString(w, `[{"gameid":7,"gamename":"Open Pana"},{"gameid":8,"gamename":"JODI"}]`)
		case "/games":
			_, _ = io.WriteString(w, `[{"gameid":3,"gamename":"Kalyan","gamedescription":"day"}]`)
		case "/user/groups/42":
			_, _ = io.WriteString(w, `[{"id":9,"groupname":"North"}]`)
		default:
			http.NotFound(w, r)
		}
	})
	ctx := context.Background()

	types, err := b.Types(ctx)
	require.NoError(t, err)
	assert.Equal(t, []slip.Type{{ID: 7, Name: "open pana"}, {ID: 8, Name: "jodi"}}, types)

	games, err := b.Games(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Game{{ID: 3, Name: "Kalyan", Description: "day"}}, games)

	groups, err := b.Groups(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, []Group{{ID: 9, Name: "North"}}, groups)

	_, err = b.Groups(ctx, 1)
	assert.True(t, errors.Is(err, ErrBadRequest))
}

func TestHTTPBackendUpsert(t *testing.T) {
	var got Payload
	b := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/createorupdatedata", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	})
	p := Build(testSel, testEntries, "msg", time.Now())
	require.NoError(t, b.Upsert(context.Background(), p))
	assert.Equal(t, p, got)
}

func TestHTTPBackendServerError(t *testing.T) {
	b := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	p, err := BuildDelete(1)
	require.NoError(t, err)
	err = b.Upsert(context.Background(), p)
	assert.True(t, errors.Is(err, ErrBackend))
}

func TestHTTPBackendMessages(t *testing.T) {
	b := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/get/messages", r.URL.Path)
		var q map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&q))
		assert.Equal(t, map[string]any{"gameid": 3.0, "userid": 42.0, "date": "2026-10-18"}, q)
		_, _ = io.WriteString(w, `[{"id":5,"created_at":"2026-10-18 09:00:00","message":"5 100","gameid":3,"groupid":9,"userid":42,"gamedate":"2026-10-18"}]`)
	})
	msgs, err := b.Messages(context.Background(), MessageQuery{GameID: 3, UserID: 42, Date: "2026-10-18"})
	require.NoError(t, err)
	assert.Equal(t, []StoredMessage{{
		ID: 5, CreatedAt: "2026-10-18 09:00:00", Message: "5 100",
		GameID: 3, GroupID: 9, UserID: 42, GameDate: "2026-10-18",
	}}, msgs)
}

func TestMemoryBackendMessages(t *testing.T) {
	mem := NewMemoryBackend(nil, nil, nil)
	ctx := context.Background()
	now := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	require.NoError(t, mem.Upsert(ctx, Build(testSel, testEntries, "first", now)))
	del, err := BuildDelete(1)
	require.NoError(t, err)
	require.NoError(t, mem.Upsert(ctx, del))
	other := testSel
	other.Group.ID = 10
	require.NoError(t, mem.Upsert(ctx, Build(other, testEntries, "second", now)))

	all, err := mem.Messages(ctx, MessageQuery{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, 1, all[0].ID)
	assert.Equal(t, 3, all[1].ID)

	got, err := mem.Messages(ctx, MessageQuery{GroupID: 10})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "second", got[0].Message)
	assert.Equal(t, "2026-10-18 09:00:00", got[0].CreatedAt)
}

func TestHTTPBackendContext(t *testing.T) {
	release := make(chan struct{})
	b := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := b.Types(ctx)
	assert.True(t, errors.Is(err, context.DeadlineExceeded), "%v", err)
}

func TestNewHTTPBackendRequiresURL(t *testing.T) {
	_, err := NewHTTPBackend("  ", 0)
	assert.Error(t, err)
}

func TestGuard(t *testing.T) {
	var g Guard
	rel, err := g.Acquire(testSel)
	require.NoError(t, err)

	_, err = g.Acquire(testSel)
	assert.True(t, errors.Is(err, ErrInFlight))

	other := testSel
	other.Group.ID = 10
	rel2, err := g.Acquire(other)
	require.NoError(t, err)
	rel2()

	rel()
	rel() // 重複釋放無害
	rel, err = g.Acquire(testSel)
	require.NoError(t, err)
	rel()
}

type blockingBackend struct {
	*MemoryBackend
	entered chan struct{}
	release chan struct{}
}

func (b *blockingBackend) Upsert(ctx context.Context, p Payload) error {
	close(b.entered)
	<-b.release
	return b.MemoryBackend.Upsert(ctx, p)
}

func TestSubmitterInFlight(t *testing.T) {
	bb := &blockingBackend{
		MemoryBackend: NewMemoryBackend(nil, nil, nil),
		entered:       make(chan struct{}),
		release:       make(chan struct{}),
	}
	s := NewSubmitter(bb)

	done := make(chan error, 1)
	go func() {
		_, _, err := s.Submit(context.Background(), testSel, testEntries, "m")
		done <- err
	}()
	<-bb.entered

	_, _, err := s.Submit(context.Background(), testSel, testEntries, "m")
	assert.True(t, errors.Is(err, ErrInFlight))

	close(bb.release)
	require.NoError(t, <-done)
	assert.Len(t, bb.Batches(), 1)
}

func TestSubmitterReceipt(t *testing.T) {
	mem := NewMemoryBackend(nil, nil, nil)
	s := NewSubmitter(mem)
	at := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	s.SetClock(func() time.Time { return at })

	rc, p, err := s.Submit(context.Background(), testSel, testEntries, "m")
	require.NoError(t, err)
	assert.Equal(t, 2, rc.Records)
	assert.Equal(t, 150, rc.Stake)
	assert.Equal(t, at, rc.SubmittedAt)
	assert.Len(t, rc.BatchID, 36)
	assert.Equal(t, "2026-10-18 12:00:00", p.MessageData.CreatedAt)
	assert.Equal(t, []Payload{p}, mem.Batches())
}

func TestSubmitterRejectsStakeOverflow(t *testing.T) {
	mem := NewMemoryBackend(nil, nil, nil)
	s := NewSubmitter(mem)
	huge := []slip.NumberEntry{
		{Number: "5", Type: "open", TypeID: 1, Amount: math.MaxInt},
		{Number: "6", Type: "open", TypeID: 1, Amount: math.MaxInt},
	}
	_, _, err := s.Submit(context.Background(), testSel, huge, "m")
	assert.ErrorIs(t, err, slip.ErrStakeOverflow)
	assert.Empty(t, mem.Batches())
}

func TestSubmitterDelete(t *testing.T) {
	mem := NewMemoryBackend(nil, nil, nil)
	s := NewSubmitter(mem)

	n, err := s.Delete(context.Background(), []int{4, 5, 4})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, mem.Batches(), 1)
	assert.Equal(t, []Record{{Flag: FlagDelete, ID: 4}, {Flag: FlagDelete, ID: 5}}, mem.Batches()[0].Data)
	assert.Nil(t, mem.Batches()[0].MessageData)

	_, err = s.Delete(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoRecordIDs)
	assert.Len(t, mem.Batches(), 1)
}

type failingBackend struct{ *MemoryBackend }

func (failingBackend) Upsert(context.Context, Payload) error { return errors.New("down") }

func TestSubmitterWrapsFailure(t *testing.T) {
	s := NewSubmitter(failingBackend{NewMemoryBackend(nil, nil, nil)})
	_, _, err := s.Submit(context.Background(), testSel, testEntries, "m")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to submit data")

	// 失敗後鎖已釋放
	_, _, err = s.Submit(context.Background(), testSel, testEntries, "m")
	assert.NotErrorIs(t, err, ErrInFlight)

	_, err = s.Delete(context.Background(), []int{1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to delete records")
}
