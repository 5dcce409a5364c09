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
	"io"
	"sync"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/zintix-labs/slipdesk/errs"
	"github.com/zintix-labs/slipdesk/report"
	"github.com/zintix-labs/slipdesk/slip"
)

// Doc 是批次處理的一份投注單
type Doc struct {
	Name string
	Text string
}

// DocResult 是單份投注單正規化、解析與彙整的結果。
type DocResult struct {
	Name    string
	Text    string // 正規化後
	Result  slip.Result
	Summary *report.Summary
}

// Batch 以 workers 個 goroutine 平行處理 docs，回傳與輸入同順序的結果、合併後的總表與用時。
//
// showpb 為 false 時進度條寫到 io.Discard。
func (d *Desk) Batch(docs []Doc, mode string, workers int, showpb bool) ([]DocResult, *report.Summary, time.Duration, error) {
	if workers < 1 {
		return nil, nil, 0, errs.NewWarn("workers must > 0")
	}
	m, err := slip.ParseMode(mode)
	if err != nil {
		return nil, nil, 0, err
	}
	workers = min(workers, max(1, len(docs)))

	out := make([]DocResult, len(docs))
	jobs := make(chan int, len(docs))
	for i := range docs {
		jobs <- i
	}
	close(jobs)

	bar := pb.StartNew(len(docs))
	if !showpb {
		bar.SetWriter(io.Discard)
	}
	wg := new(sync.WaitGroup)
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range jobs {
				norm := slip.Normalize(docs[i].Text)
				res := d.parser.Parse(norm, m)
				out[i] = DocResult{
					Name:    docs[i].Name,
					Text:    norm,
					Result:  res,
					Summary: report.Summarize(res, m),
				}
				bar.Increment()
			}
		}()
	}
	wg.Wait()
	used := time.Since(bar.StartTime())
	bar.Finish()

	return out, report.Summarize(mergeResults(out), m), used, nil
}

// mergeResults 串接所有結果；Line 索引仍是各自文件內的行號。
func mergeResults(rs []DocResult) slip.Result {
	merged := slip.Result{Groups: slip.NewGrouped()}
	for _, r := range rs {
		for _, n := range slip.Lengths {
			merged.Groups[n] = append(merged.Groups[n], r.Result.Groups[n]...)
		}
		merged.Invalid = append(merged.Invalid, r.Result.Invalid...)
		merged.Ambiguous = append(merged.Ambiguous, r.Result.Ambiguous...)
	}
	return merged
}
