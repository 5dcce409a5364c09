package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/zintix-labs/slipdesk/errs"
	"github.com/zintix-labs/slipdesk/slip"
)

// Backend 是不透明的後端：批次 upsert、三個目錄查詢與已送出訊息的查詢。
type Backend interface {
	Upsert(ctx context.Context, p Payload) error
	Messages(ctx context.Context, q MessageQuery) ([]StoredMessage, error)
	Types(ctx context.Context) ([]slip.Type, error)
	Games(ctx context.Context) ([]Game, error)
	Groups(ctx context.Context, uid int) ([]Group, error)
}

var (
	ErrBackend    = errs.NewFatal("backend request failed")
	ErrBadRequest = errs.NewWarn("backend rejected request")
)

const maxBody = 4 << 20

// HTTPBackend 以 JSON over HTTP 呼叫後端。
type HTTPBackend struct {
	base   string
	client *http.Client
	token  string
	log    *slog.Logger
}

type HTTPOption func(*HTTPBackend)

// WithToken 每個請求帶上 Authorization: Bearer <token>
func WithToken(token string) HTTPOption {
	return func(b *HTTPBackend) { b.token = token }
}

func WithLogger(l *slog.Logger) HTTPOption {
	return func(b *HTTPBackend) { b.log = l }
}

func NewHTTPBackend(baseURL string, timeout time.Duration, opts ...HTTPOption) (*HTTPBackend, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errs.NewFatal("backend url required")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	b := &HTTPBackend{
		base:   baseURL,
		client: &http.Client{Timeout: timeout},
		log:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

func (b *HTTPBackend) Upsert(ctx context.Context, p Payload) error {
	return b.do(ctx, http.MethodPost, "/createorupdatedata", p, nil)
}

func (b *HTTPBackend) Messages(ctx context.Context, q MessageQuery) ([]StoredMessage, error) {
	var msgs []StoredMessage
	if err := b.do(ctx, http.MethodPost, "/get/messages", q, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// typeRow 是後端 /types 的原始欄位（沿用 gameid/gamename 命名）
type typeRow struct {
	ID   int    `json:"gameid"`
	Name string `json:"gamename"`
}

// Types 取回目錄並把名稱轉為小寫。
func (b *HTTPBackend) Types(ctx context.Context) ([]slip.Type, error) {
	var rows []typeRow
	if err := b.do(ctx, http.MethodGet, "/types", nil, &rows); err != nil {
		return nil, err
	}
	out := make([]slip.Type, 0, len(rows))
	for _, r := range rows {
		out = append(out, slip.Type{ID: r.ID, Name: strings.ToLower(r.Name)})
	}
	return out, nil
}

func (b *HTTPBackend) Games(ctx context.Context) ([]Game, error) {
	var games []Game
	if err := b.do(ctx, http.MethodGet, "/games", nil, &games); err != nil {
		return nil, err
	}
	return games, nil
}

func (b *HTTPBackend) Groups(ctx context.Context, uid int) ([]Group, error) {
	var groups []Group
	if err := b.do(ctx, http.MethodGet, fmt.Sprintf("/user/groups/%d", uid), nil, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

func (b *HTTPBackend) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return errs.Wrap(err, "encode backend request")
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, b.base+path, body)
	if err != nil {
		return errs.Wrap(err, "build backend request")
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if b.token != "" {
		req.Header.Set("Authorization", "Bearer "+b.token)
	}

	start := time.Now()
	resp, err := b.client.Do(req)
	if err != nil {
		// ctx 錯誤原樣往上，讓邊界層判斷 504/408
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return errs.Wrap(err, ErrBackend.Message)
	}
	defer resp.Body.Close()

	b.log.LogAttrs(ctx, slog.LevelDebug, "backend",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("dur", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		extra := fmt.Sprintf("%s %s: %d %s", method, path, resp.StatusCode, strings.TrimSpace(string(msg)))
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return ErrBadRequest.With(extra)
		}
		return ErrBackend.With(extra)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBody))
		return nil
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(out); err != nil {
		return errs.Wrap(err, "decode backend response")
	}
	return nil
}

// MemoryBackend 是無外部後端時（開發、測試）使用的記憶體實作。
type MemoryBackend struct {
	mu      sync.Mutex
	types   []slip.Type
	games   []Game
	groups  map[int][]Group
	batches []Payload
}

func NewMemoryBackend(types []slip.Type, games []Game, groups map[int][]Group) *MemoryBackend {
	if groups == nil {
		groups = map[int][]Group{}
	}
	return &MemoryBackend{types: types, games: games, groups: groups}
}

func (m *MemoryBackend) Upsert(ctx context.Context, p Payload) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batches = append(m.batches, p)
	return nil
}

// Messages 以收到批次的順序編號（從 1 開始），只回傳帶有 messageData 的批次。
func (m *MemoryBackend) Messages(ctx context.Context, q MessageQuery) ([]StoredMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []StoredMessage
	for i, p := range m.batches {
		if p.MessageData == nil {
			continue
		}
		sm := StoredMessage{
			ID:        i + 1,
			CreatedAt: p.MessageData.CreatedAt,
			Message:   p.MessageData.Message,
			GameID:    p.MessageData.GameID,
			GroupID:   p.MessageData.Group,
			UserID:    p.MessageData.UID,
			GameDate:  p.MessageData.GameDate,
		}
		if q.match(sm) {
			out = append(out, sm)
		}
	}
	return out, nil
}

func (m *MemoryBackend) Types(ctx context.Context) ([]slip.Type, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]slip.Type(nil), m.types...), ctx.Err()
}

func (m *MemoryBackend) Games(ctx context.Context) ([]Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Game(nil), m.games...), ctx.Err()
}

func (m *MemoryBackend) Groups(ctx context.Context, uid int) ([]Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Group(nil), m.groups[uid]...), ctx.Err()
}

// Batches 回傳目前為止收到的批次（複本）。
func (m *MemoryBackend) Batches() []Payload {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Payload(nil), m.batches...)
}
