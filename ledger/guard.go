package ledger

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/zintix-labs/slipdesk/errs"
)

var ErrInFlight = errs.NewWarn("A submission is already in progress.")

// Guard 確保同一個 (user, game, group) 同時只有一筆送出中的請求。
type Guard struct {
	busy sync.Map // key -> *atomic.Bool
}

// Acquire 成功時回傳 release；已有送出中的請求時回傳 ErrInFlight。
func (g *Guard) Acquire(sel Selection) (release func(), err error) {
	key := fmt.Sprintf("%d/%d/%d", sel.UserID, sel.Game.ID, sel.Group.ID)
	v, _ := g.busy.LoadOrStore(key, new(atomic.Bool))
	flag := v.(*atomic.Bool)
	if !flag.CompareAndSwap(false, true) {
		return nil, ErrInFlight.With(key)
	}
	var once sync.Once
	return func() { once.Do(func() { flag.Store(false) }) }, nil
}
