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

package slip

import (
	"strings"

	"github.com/zintix-labs/slipdesk/errs"
)

// Mode 是場次的開/收盤（Open / Close），決定哪些位數合法。
type Mode string

const (
	Open  Mode = "Open"
	Close Mode = "Close"
)

// ParseMode 大小寫不敏感；空字串視為 Open（與畫面預設一致）。
func ParseMode(s string) (Mode, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "", strings.EqualFold(s, string(Open)):
		return Open, nil
	case strings.EqualFold(s, string(Close)):
		return Close, nil
	default:
		return "", errs.Warnf("invalid mode %q: must be Open or Close", s)
	}
}

func (m Mode) IsOpen() bool { return m == Open }
