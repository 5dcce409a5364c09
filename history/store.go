// Package history 在本機 SQLite 保存已送出的投注單原文，供歷史查詢。
package history

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/zintix-labs/slipdesk/errs"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS messages (
	id         TEXT PRIMARY KEY,
	batch_id   TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL,
	gameid     INTEGER NOT NULL,
	groupid    INTEGER NOT NULL,
	userid     INTEGER NOT NULL,
	gamedate   TEXT NOT NULL,
	message    TEXT NOT NULL,
	records    INTEGER NOT NULL DEFAULT 0,
	stake      INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_messages_lookup ON messages (gameid, groupid, userid, gamedate, created_at);
`

var ErrNotFound = errs.NewWarn("message not found")

// Message 是一筆已送出的投注單
type Message struct {
	ID        string    `json:"id"`
	BatchID   string    `json:"batch_id"`
	CreatedAt time.Time `json:"created_at"`
	GameID    int       `json:"gameid"`
	GroupID   int       `json:"groupid"`
	UserID    int       `json:"userid"`
	GameDate  string    `json:"gamedate"`
	Message   string    `json:"message"`
	Records   int       `json:"records"`
	Stake     int       `json:"stake"`
}

// Query 零值欄位不做過濾
type Query struct {
	GameID   int
	GroupID  int
	UserID   int
	GameDate string
	Limit    uint64
}

// Store 是 SQLite 上的訊息日誌
type Store struct {
	db  *sql.DB
	log *slog.Logger
	now func() time.Time
}

type Option func(*Store)

func WithLogger(l *slog.Logger) Option { return func(s *Store) { s.log = l } }

// WithClock 測試用
func WithClock(now func() time.Time) Option { return func(s *Store) { s.now = now } }

// Open 開啟（必要時建立）資料庫。dsn 為檔案路徑或 ":memory:"。
func Open(ctx context.Context, dsn string, opts ...Option) (*Store, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, errs.NewFatal("history dsn required")
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errs.Wrap(err, "failed to open history database")
	}
	// SQLite 寫入本來就是序列化；單一連線也讓 :memory: 在整個 Store 生命週期內是同一個資料庫
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errs.Wrap(err, "failed to ping history database")
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, errs.Wrap(err, "failed to create history schema")
	}

	s := &Store{db: db, log: slog.New(slog.DiscardHandler), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Record 寫入一筆；ID 為空時產生 uuid，CreatedAt 為零值時使用目前時間。
func (s *Store) Record(ctx context.Context, m Message) (Message, error) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = s.now()
	}

	query, args, err := sq.Insert("messages").
		Columns("id", "batch_id", "created_at", "gameid", "groupid", "userid", "gamedate", "message", "records", "stake").
		Values(m.ID, m.BatchID, m.CreatedAt.UnixNano(), m.GameID, m.GroupID, m.UserID, m.GameDate, m.Message, m.Records, m.Stake).
		ToSql()
	if err != nil {
		return Message{}, errs.Wrap(err, "failed to build insert")
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return Message{}, errs.Wrap(err, "failed to insert message")
	}
	s.log.LogAttrs(ctx, slog.LevelDebug, "history.record", slog.String("id", m.ID), slog.Int("gameid", m.GameID))
	return m, nil
}

// List 依 created_at 由舊到新排序。
func (s *Store) List(ctx context.Context, q Query) ([]Message, error) {
	b := sq.Select("id", "batch_id", "created_at", "gameid", "groupid", "userid", "gamedate", "message", "records", "stake").
		From("messages").
		OrderBy("created_at ASC", "rowid ASC")

	where := sq.Eq{}
	if q.GameID != 0 {
		where["gameid"] = q.GameID
	}
	if q.GroupID != 0 {
		where["groupid"] = q.GroupID
	}
	if q.UserID != 0 {
		where["userid"] = q.UserID
	}
	if q.GameDate != "" {
		where["gamedate"] = q.GameDate
	}
	if len(where) > 0 {
		b = b.Where(where)
	}
	if q.Limit > 0 {
		b = b.Limit(q.Limit)
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, errs.Wrap(err, "failed to build select")
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errs.Wrap(err, "failed to query messages")
	}
	defer rows.Close()

	out := []Message{}
	for rows.Next() {
		var (
			m  Message
			ns int64
		)
		if err := rows.Scan(&m.ID, &m.BatchID, &ns, &m.GameID, &m.GroupID, &m.UserID, &m.GameDate, &m.Message, &m.Records, &m.Stake); err != nil {
			return nil, errs.Wrap(err, "failed to scan message")
		}
		m.CreatedAt = time.Unix(0, ns)
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(err, "failed to iterate messages")
	}
	return out, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	query, args, err := sq.Delete("messages").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return errs.Wrap(err, "failed to build delete")
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return errs.Wrap(err, "failed to delete message")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound.With(id)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
