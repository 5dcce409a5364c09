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

// Package ledger 把解析結果組成後端批次（flag "I" 紀錄 + 原始訊息），並負責與後端溝通。
package ledger

import (
	"time"

	"github.com/zintix-labs/slipdesk/errs"
	"github.com/zintix-labs/slipdesk/slip"
)

const (
	FlagInsert = "I"
	FlagDelete = "D"

	// TimeLayout 是後端 createdat 欄位的格式
	TimeLayout = "2006-01-02 15:04:05"
	// DateLayout 是 gamedate 的格式
	DateLayout = "2006-01-02"
)

// Game 對應後端 /games 的一筆
type Game struct {
	ID          int    `json:"gameid"`
	Name        string `json:"gamename"`
	Description string `json:"gamedescription,omitempty"`
}

// Group 對應後端 /user/groups/{uid} 的一筆
type Group struct {
	ID   int    `json:"id"`
	Name string `json:"groupname"`
}

// Selection 是送出時選定的場次上下文
type Selection struct {
	Game     Game
	Group    Group
	UserID   int
	GameDate string // YYYY-MM-DD
}

// Record 是批次中的一筆操作。flag "D" 只帶 ID。
type Record struct {
	Flag      string `json:"flag"`
	ID        int    `json:"id,omitempty"`
	CreatedAt string `json:"createdat,omitempty"`
	Number    string `json:"number,omitempty"`
	GameID    int    `json:"gameid,omitempty"`
	Game      string `json:"game,omitempty"`
	TypeID    int    `json:"typeid,omitempty"`
	Type      string `json:"type,omitempty"`
	Amount    int    `json:"amount,omitempty"`
	UID       int    `json:"uid,omitempty"`
	Group     int    `json:"group,omitempty"`
	GroupName string `json:"grpname,omitempty"`
	GameDate  string `json:"gamedate,omitempty"`
}

// Message 是與批次一起送出的原始投注單文字
type Message struct {
	CreatedAt string `json:"createdat"`
	GameID    int    `json:"gameid"`
	UID       int    `json:"uid"`
	Group     int    `json:"group"`
	GameDate  string `json:"gamedate"`
	Message   string `json:"message"`
}

// Payload 是 /createorupdatedata 的請求本體
type Payload struct {
	Data        []Record `json:"data"`
	MessageData *Message `json:"messageData,omitempty"`
}

// Build 依 bucket 1,2,3 的順序產生 flag "I" 紀錄，所有紀錄與訊息共用同一個 createdat。
func Build(sel Selection, entries []slip.NumberEntry, message string, now time.Time) Payload {
	created := now.Format(TimeLayout)
	data := make([]Record, 0, len(entries))
	for _, e := range entries {
		data = append(data, Record{
			Flag:      FlagInsert,
			CreatedAt: created,
			Number:    e.Number,
			GameID:    sel.Game.ID,
			Game:      sel.Game.Name,
			TypeID:    e.TypeID,
			Type:      e.Type,
			Amount:    e.Amount,
			UID:       sel.UserID,
			Group:     sel.Group.ID,
			GroupName: sel.Group.Name,
			GameDate:  sel.GameDate,
		})
	}
	return Payload{
		Data: data,
		MessageData: &Message{
			CreatedAt: created,
			GameID:    sel.Game.ID,
			UID:       sel.UserID,
			Group:     sel.Group.ID,
			GameDate:  sel.GameDate,
			Message:   message,
		},
	}
}

var ErrNoRecordIDs = errs.NewWarn("record ids required")

// BuildDelete 產生刪除既有紀錄的批次（歷史頁的刪除）。id 必須 > 0，重複的只送一次。
func BuildDelete(ids ...int) (Payload, error) {
	if len(ids) == 0 {
		return Payload{}, ErrNoRecordIDs
	}
	seen := make(map[int]struct{}, len(ids))
	data := make([]Record, 0, len(ids))
	for _, id := range ids {
		if id <= 0 {
			return Payload{}, errs.Warnf("invalid record id %d", id)
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		data = append(data, Record{Flag: FlagDelete, ID: id})
	}
	return Payload{Data: data}, nil
}

// MessageQuery 是 /get/messages 的請求本體，零值欄位不帶。
type MessageQuery struct {
	GameID  int    `json:"gameid,omitempty"`
	UserID  int    `json:"userid,omitempty"`
	GroupID int    `json:"groupid,omitempty"`
	Date    string `json:"date,omitempty"`
}

// StoredMessage 是後端保存的一筆投注單原文
type StoredMessage struct {
	ID        int    `json:"id"`
	CreatedAt string `json:"created_at"`
	Message   string `json:"message"`
	GameID    int    `json:"gameid"`
	GroupID   int    `json:"groupid"`
	UserID    int    `json:"userid"`
	GameDate  string `json:"gamedate"`
}

func (q MessageQuery) match(m StoredMessage) bool {
	return (q.GameID == 0 || q.GameID == m.GameID) &&
		(q.UserID == 0 || q.UserID == m.UserID) &&
		(q.GroupID == 0 || q.GroupID == m.GroupID) &&
		(q.Date == "" || q.Date == m.GameDate)
}

// Receipt 是一次成功送出的回條
type Receipt struct {
	BatchID     string    `json:"batch_id"`
	Records     int       `json:"records"`
	Stake       int       `json:"stake"`
	SubmittedAt time.Time `json:"submitted_at"`
}
