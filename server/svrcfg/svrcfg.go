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

package svrcfg

import (
	"log/slog"
	"time"

	"github.com/zintix-labs/slipdesk"
	"github.com/zintix-labs/slipdesk/errs"
	"github.com/zintix-labs/slipdesk/server/logger"
)

// SvrCfg 是 server 組裝所需的全部依賴。
//
// Desk 必填；Addr 空字串時使用 netsvr 預設位址；Timeout 為單一請求呼叫後端的上限（1s ~ 60s）。
// DevPanel 控制是否掛上 /dev 輸入面板。
type SvrCfg struct {
	Log      *slog.Logger
	Addr     string
	Timeout  time.Duration
	DevPanel bool
	Desk     *slipdesk.Desk
}

func (sc *SvrCfg) Vaild() error {
	if sc.Log != nil {
		if ah, ok := sc.Log.Handler().(*logger.AsyncHandler); ok && !ah.Ready() {
			return errs.NewFatal("nil default log handler: async handler is nil")
		}
	} else {
		// 保持安靜、合法
		sc.Log, _ = logger.NewAsync(1024, logger.ModeDev)
	}

	if sc.Timeout <= 0 {
		sc.Timeout = 5 * time.Second
	}
	sc.Timeout = max(time.Second, sc.Timeout)
	sc.Timeout = min(time.Minute, sc.Timeout)

	if sc.Desk == nil {
		return errs.NewFatal("desk is required")
	}
	if sc.Desk.Closed() {
		return errs.NewFatal("desk is closed")
	}
	return nil
}
