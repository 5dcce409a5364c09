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

package dto

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/zintix-labs/slipdesk/errs"
)

// 防止 body 過大（預設 1MiB）
const maxBody = 1 << 20

// TextRequest 是 normalize / parse / highlight / summary 共用的請求。
type TextRequest struct {
	Text string `json:"text"` // 投注單原文
	Mode string `json:"mode"` // Open | Close，空字串視為 Open
}

// EditRequest 對應文字框的一次變動：目前的文字與選取範圍（UTF-16 code unit，與 textarea.selectionStart 相同）。
type EditRequest struct {
	Text     string `json:"text"`
	Mode     string `json:"mode"`
	SelStart int    `json:"sel_start"`
	SelEnd   int    `json:"sel_end"`
}

// AmountEdit 是結果側對某一筆金額的手動修改。Amount 接受 "1,000" 寫法。
type AmountEdit struct {
	Length int    `json:"length"` // bucket：號碼位數 1/2/3
	Index  int    `json:"index"`  // bucket 內的位置
	Amount string `json:"amount"`
}

// SubmitRequest 送出一張投注單。伺服器會重新解析 Text，不信任用戶端的解析結果。
type SubmitRequest struct {
	Text      string       `json:"text"`
	Mode      string       `json:"mode"`
	UserID    int          `json:"uid"`
	GameID    int          `json:"gameid"`
	GameName  string       `json:"game"`
	GroupID   int          `json:"group"`
	GroupName string       `json:"grpname"`
	GameDate  string       `json:"gamedate"`
	Amounts   []AmountEdit `json:"amounts,omitempty"`
}

// DeleteRecordsRequest 刪除後端既有紀錄（flag "D"）。
type DeleteRecordsRequest struct {
	IDs []int `json:"ids"`
}

// HistoryRequest 只支援 GET query：gameid / groupid / uid / date / limit。
type HistoryRequest struct {
	GameID  int
	GroupID int
	UserID  int
	Date    string
	Limit   int
}

// DecodeTextRequest
//
// 支援：
//   - GET：從 query string 讀取 text / mode。
//   - POST：從 JSON body 反序列化。
//
// 注意：
//   - 這裡只負責解碼，mode 的合法性由 slip.ParseMode 決定。
//   - POST 會開啟 DisallowUnknownFields()，對未知欄位採用嚴格拒絕，以避免靜默丟資料。
func DecodeTextRequest(r *http.Request) (*TextRequest, error) {
	if r == nil {
		return nil, errs.NewWarn("nil request")
	}
	req := new(TextRequest)
	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		req.Text = q.Get("text")
		req.Mode = q.Get("mode")
		return req, nil
	case http.MethodPost:
		if err := decodeJSON(r, req); err != nil {
			return nil, err
		}
		return req, nil
	default:
		return nil, errMethod
	}
}

// DecodeEditRequest 只接受 POST。
func DecodeEditRequest(r *http.Request) (*EditRequest, error) {
	req := new(EditRequest)
	if err := decodePost(r, req); err != nil {
		return nil, err
	}
	if req.SelStart < 0 || req.SelEnd < 0 {
		return nil, errs.NewWarn("selection offsets must be >= 0")
	}
	return req, nil
}

// DecodeSubmitRequest 只接受 POST。
func DecodeSubmitRequest(r *http.Request) (*SubmitRequest, error) {
	req := new(SubmitRequest)
	if err := decodePost(r, req); err != nil {
		return nil, err
	}
	return req, nil
}

// DecodeDeleteRecordsRequest 只接受 DELETE，ids 放在 JSON body。
func DecodeDeleteRecordsRequest(r *http.Request) (*DeleteRecordsRequest, error) {
	if r == nil {
		return nil, errs.NewWarn("nil request")
	}
	if r.Method != http.MethodDelete {
		return nil, errMethod
	}
	req := new(DeleteRecordsRequest)
	if err := decodeJSON(r, req); err != nil {
		return nil, err
	}
	if len(req.IDs) == 0 {
		return nil, errs.NewWarn("ids is required")
	}
	return req, nil
}

func DecodeHistoryRequest(r *http.Request) (*HistoryRequest, error) {
	if r == nil {
		return nil, errs.NewWarn("nil request")
	}
	if r.Method != http.MethodGet {
		return nil, errMethod
	}
	q := r.URL.Query()
	req := &HistoryRequest{Date: q.Get("date")}
	var err error
	if req.GameID, err = queryInt(q, "gameid"); err != nil {
		return nil, err
	}
	if req.GroupID, err = queryInt(q, "groupid"); err != nil {
		return nil, err
	}
	if req.UserID, err = queryInt(q, "uid"); err != nil {
		return nil, err
	}
	if req.Limit, err = queryInt(q, "limit"); err != nil {
		return nil, err
	}
	if req.Limit < 0 {
		return nil, errs.NewWarn("invalid limit: must be >= 0")
	}
	return req, nil
}

var errMethod = errs.NewWarn("method not allowed")

func decodePost(r *http.Request, v any) error {
	if r == nil {
		return errs.NewWarn("nil request")
	}
	if r.Method != http.MethodPost {
		return errMethod
	}
	return decodeJSON(r, v)
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errs.Warnf("invalid json: %v", err)
	}
	return nil
}

func queryInt(q url.Values, key string) (int, error) {
	s := q.Get(key)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, errs.NewWarn(fmt.Sprintf("invalid %s: %v", key, err))
	}
	return v, nil
}
