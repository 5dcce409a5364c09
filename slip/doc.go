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

// Package slip 是 slipdesk 的核心：把使用者貼上的手打投注單（bet slip）轉成可送出的帳目。
//
// 處理流程（每次文字變動都整段重跑，O(總字元數)）：
//  1. Normalize：去掉聊天軟體的 "[日期 時間] 名字:" 前綴，並把只寫了一半的 "5-" 補上金額。
//  2. Parser.Parse：逐行依固定優先序嘗試各個 matcher（第一個命中即停），
//     產生 accepted entries（依位數分組）、invalid 行、ambiguous 行。
//  3. IsValid / CategoryFor / Mapper：位數規則、pana 的 priority 檢查、位數+Open/Close 對應投注類型。
//  4. BuildIssues + Render：把有問題的行在原文中標示出來（最長字串優先、單次替換）。
//  5. MapPosition：重新格式化後把游標位置映射回新文字，避免游標亂跳。
//  6. CheckSubmission：送出前的最後檢查。
//
// 本包不做 I/O，也不回傳 error：不合法的輸入只會被分類成 invalid 或 ambiguous。
package slip
