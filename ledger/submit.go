package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/zintix-labs/slipdesk/errs"
	"github.com/zintix-labs/slipdesk/slip"
)

// Submitter 組批次並送往後端，同一個選擇同時只允許一筆。
type Submitter struct {
	backend Backend
	guard   Guard
	now     func() time.Time
}

func NewSubmitter(b Backend) *Submitter {
	return &Submitter{backend: b, now: time.Now}
}

// SetClock 測試用
func (s *Submitter) SetClock(now func() time.Time) { s.now = now }

func (s *Submitter) Backend() Backend { return s.backend }

// Submit 送出 entries；呼叫端需先通過 slip.CheckSubmission。
// 失敗時不會有任何副作用，呼叫端的解析狀態應保持不變以便重試。
func (s *Submitter) Submit(ctx context.Context, sel Selection, entries []slip.NumberEntry, message string) (Receipt, Payload, error) {
	release, err := s.guard.Acquire(sel)
	if err != nil {
		return Receipt{}, Payload{}, err
	}
	defer release()

	stake, err := slip.TotalStake(entries)
	if err != nil {
		return Receipt{}, Payload{}, err
	}
	now := s.now()
	p := Build(sel, entries, message, now)
	if err := s.backend.Upsert(ctx, p); err != nil {
		if ctx.Err() != nil {
			return Receipt{}, Payload{}, err
		}
		return Receipt{}, Payload{}, errs.Wrap(err, "Failed to submit data")
	}

	return Receipt{
		BatchID:     uuid.NewString(),
		Records:     len(p.Data),
		Stake:       stake,
		SubmittedAt: now,
	}, p, nil
}

// Delete 送出 flag "D" 批次刪除後端既有紀錄，回傳實際送出的筆數。
func (s *Submitter) Delete(ctx context.Context, ids []int) (int, error) {
	p, err := BuildDelete(ids...)
	if err != nil {
		return 0, err
	}
	if err := s.backend.Upsert(ctx, p); err != nil {
		if ctx.Err() != nil {
			return 0, err
		}
		return 0, errs.Wrap(err, "Failed to delete records")
	}
	return len(p.Data), nil
}
