package app

import (
	"context"
	"sync"
)

type Component interface {
	Run() error
	Shutdown(ctx context.Context) error
}

// OnShutdown 把一個關閉函數包成 Component：Run 阻塞到 Shutdown 被呼叫為止。
// 用來把 Desk、log handler 之類沒有自己 Run 迴圈的資源掛進 App。
func OnShutdown(fn func(ctx context.Context) error) Component {
	return &hook{fn: fn, done: make(chan struct{})}
}

type hook struct {
	fn   func(ctx context.Context) error
	done chan struct{}
	once sync.Once
}

func (h *hook) Run() error {
	<-h.done
	return nil
}

func (h *hook) Shutdown(ctx context.Context) error {
	var err error
	h.once.Do(func() {
		if h.fn != nil {
			err = h.fn(ctx)
		}
		close(h.done)
	})
	return err
}
