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

package slipdesk

import (
	"context"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"github.com/zintix-labs/slipdesk/dto"
	"github.com/zintix-labs/slipdesk/errs"
	"github.com/zintix-labs/slipdesk/history"
	"github.com/zintix-labs/slipdesk/ledger"
	"github.com/zintix-labs/slipdesk/session"
	"github.com/zintix-labs/slipdesk/slip"
)

// ErrNoJournal 未設定 history.dsn 時刪除本機日誌。屬於設定選擇，回 4xx。
var ErrNoJournal = errs.NewWarn("history journal not configured")

// Submit 重新解析原文、套用手動修改的金額、通過送出檢查後送往後端，成功後寫入 journal。
//
// 任何檢查失敗都在網路呼叫之前回傳（errs.Warn）。
// journal 寫入失敗只記錄 log，不影響已被後端接受的送出。
func (d *Desk) Submit(ctx context.Context, req *dto.SubmitRequest) (ledger.Receipt, error) {
	if err := d.alive(ctx); err != nil {
		return ledger.Receipt{}, err
	}
	now := d.now()

	sess, err := session.Session{
		UserID: req.UserID,
		Game:   ledger.Game{ID: req.GameID, Name: req.GameName},
		Group:  ledger.Group{ID: req.GroupID, Name: req.GroupName},
		Date:   req.GameDate,
		Mode:   slip.Mode(req.Mode),
	}.Normalize(now)
	if err != nil {
		return ledger.Receipt{}, err
	}
	if err := session.CheckDate(sess.Date, now); err != nil {
		return ledger.Receipt{}, err
	}

	text := slip.Normalize(req.Text)
	res := d.parser.Parse(text, sess.Mode)
	for _, a := range req.Amounts {
		v, err := slip.ParseAmount(a.Amount)
		if err != nil {
			return ledger.Receipt{}, slip.ErrUnfilled.With(err.Error())
		}
		if err := res.Groups.SetAmount(a.Length, a.Index, v); err != nil {
			return ledger.Receipt{}, err
		}
	}

	if err := slip.CheckSubmission(sess.Gate(res)); err != nil {
		return ledger.Receipt{}, err
	}
	entries := res.Groups.All()
	if len(entries) == 0 {
		return ledger.Receipt{}, slip.ErrEmpty
	}

	rc, p, err := d.sub.Submit(ctx, sess.Selection(), entries, text)
	if err != nil {
		d.log.Warn("slip.submit failed",
			slog.Int("uid", sess.UserID),
			slog.Int("gameid", sess.Game.ID),
			slog.Int("group", sess.Group.ID),
			slog.Any("err", err),
		)
		return ledger.Receipt{}, err
	}
	d.log.Info("slip.submit",
		slog.String("batch", rc.BatchID),
		slog.Int("uid", sess.UserID),
		slog.Int("gameid", sess.Game.ID),
		slog.Int("group", sess.Group.ID),
		slog.Int("records", rc.Records),
		slog.Int("stake", rc.Stake),
		slog.Int("ambiguous", len(res.Ambiguous)),
	)

	if d.journal != nil {
		_, jerr := d.journal.Record(ctx, history.Message{
			BatchID:   rc.BatchID,
			CreatedAt: rc.SubmittedAt,
			GameID:    p.MessageData.GameID,
			GroupID:   p.MessageData.Group,
			UserID:    p.MessageData.UID,
			GameDate:  p.MessageData.GameDate,
			Message:   p.MessageData.Message,
			Records:   rc.Records,
			Stake:     rc.Stake,
		})
		if jerr != nil {
			d.log.Error("history.record failed", slog.String("batch", rc.BatchID), slog.Any("err", jerr))
		}
	}
	return rc, nil
}

// History 列出已送出的投注單，依送出時間由舊到新。
// 有 journal 時讀本機日誌，否則改向後端 /get/messages 查詢。
func (d *Desk) History(ctx context.Context, req *dto.HistoryRequest) ([]history.Message, error) {
	if err := d.alive(ctx); err != nil {
		return nil, err
	}
	if d.journal != nil {
		return d.journal.List(ctx, history.Query{
			GameID:   req.GameID,
			GroupID:  req.GroupID,
			UserID:   req.UserID,
			GameDate: req.Date,
			Limit:    uint64(req.Limit),
		})
	}

	stored, err := d.sub.Backend().Messages(ctx, ledger.MessageQuery{
		GameID:  req.GameID,
		UserID:  req.UserID,
		GroupID: req.GroupID,
		Date:    req.Date,
	})
	if err != nil {
		d.log.Warn("history.messages failed", slog.Any("err", err))
		return nil, err
	}
	loc := d.now().Location()
	out := make([]history.Message, 0, len(stored))
	for _, m := range stored {
		out = append(out, history.Message{
			ID:        strconv.Itoa(m.ID),
			CreatedAt: parseCreatedAt(m.CreatedAt, loc),
			GameID:    m.GameID,
			GroupID:   m.GroupID,
			UserID:    m.UserID,
			GameDate:  m.GameDate,
			Message:   m.Message,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if req.Limit > 0 && len(out) > req.Limit {
		out = out[:req.Limit]
	}
	return out, nil
}

// parseCreatedAt 接受後端的 "2006-01-02 15:04:05" 與 RFC 3339；都不符時回傳零值。
func parseCreatedAt(s string, loc *time.Location) time.Time {
	if t, err := time.ParseInLocation(ledger.TimeLayout, s, loc); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t
	}
	return time.Time{}
}

// DeleteRecords 以 flag "D" 批次刪除後端既有紀錄，回傳送出的筆數。
func (d *Desk) DeleteRecords(ctx context.Context, req *dto.DeleteRecordsRequest) (int, error) {
	if err := d.alive(ctx); err != nil {
		return 0, err
	}
	n, err := d.sub.Delete(ctx, req.IDs)
	if err != nil {
		d.log.Warn("records.delete failed", slog.Any("ids", req.IDs), slog.Any("err", err))
		return 0, err
	}
	d.log.Info("records.delete", slog.Int("records", n))
	return n, nil
}

// DeleteHistory 從 journal 移除一筆投注單（不影響已送到後端的紀錄）。
func (d *Desk) DeleteHistory(ctx context.Context, id string) error {
	if err := d.alive(ctx); err != nil {
		return err
	}
	if d.journal == nil {
		return ErrNoJournal
	}
	return d.journal.Delete(ctx, id)
}
