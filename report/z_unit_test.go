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

package report_test

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
	"github.com/zintix-labs/slipdesk/report"
	"github.com/zintix-labs/slipdesk/slip"
)

const sample = "5 10\n6 20\n7 30\n12 100\n123 50\n7"

func TestSummarize(t *testing.T) {
	s := report.Summarize(slip.Parse(sample, slip.Open), slip.Open)

	if s.Entries != 5 || s.TotalStake != 210 {
		t.Fatalf("entries=%d stake=%d", s.Entries, s.TotalStake)
	}
	if s.Ambiguous != 1 || s.Invalid != 0 || s.Blocked {
		t.Fatalf("unexpected flags: %+v", s)
	}
	if len(s.Categories) != 3 {
		t.Fatalf("expected 3 categories, got %d", len(s.Categories))
	}
	names := []string{s.Categories[0].Category, s.Categories[1].Category, s.Categories[2].Category}
	if strings.Join(names, ",") != "open,jodi,open pana" {
		t.Fatalf("order: %v", names)
	}

	open := s.Categories[0]
	if open.Count != 3 || open.Stake != 60 || open.Max != 30 || open.TypeID != 1 {
		t.Fatalf("open: %+v", open)
	}
	if math.Abs(open.Mean-20) > 1e-9 || math.Abs(open.Std-10) > 1e-9 || open.Median != 20 {
		t.Fatalf("open stats: mean=%v std=%v median=%v", open.Mean, open.Std, open.Median)
	}
	if s.Categories[1].Std != 0 {
		t.Fatalf("single entry std should be 0, got %v", s.Categories[1].Std)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := report.Summarize(slip.Parse("", slip.Close), slip.Close)
	if s.Entries != 0 || len(s.Categories) != 0 || !s.Blocked {
		t.Fatalf("unexpected: %+v", s)
	}
}

func TestSummarizeSaturatesStake(t *testing.T) {
	big := strconv.Itoa(math.MaxInt)
	s := report.Summarize(slip.Parse("5 "+big+"\n6 "+big+"\n12 10", slip.Open), slip.Open)
	if !s.Overflow || s.TotalStake != math.MaxInt {
		t.Fatalf("total stake should saturate: overflow=%v stake=%d", s.Overflow, s.TotalStake)
	}
	open := s.Categories[0]
	if open.Stake != math.MaxInt || open.Max != math.MaxInt || open.Count != 2 {
		t.Fatalf("open: %+v", open)
	}
	if jodi := s.Categories[1]; jodi.Stake != 10 || jodi.Max != 10 {
		t.Fatalf("jodi: %+v", jodi)
	}
	if !strings.Contains(s.Table(), "(overflow)") {
		t.Fatal("table should mark overflow")
	}
}

func TestRenderers(t *testing.T) {
	s := report.Summarize(slip.Parse(sample, slip.Open), slip.Open)

	var buf bytes.Buffer
	if err := report.RenderFor("json").Write(&buf, s); err != nil {
		t.Fatal(err)
	}
	var back report.Summary
	if err := json.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatal(err)
	}
	if back.TotalStake != 210 {
		t.Fatalf("json stake=%d", back.TotalStake)
	}

	buf.Reset()
	if err := report.RenderFor("yaml").Write(&buf, s); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "Numbers: [\"5\", \"6\", \"7\"]") {
		t.Fatalf("yaml numbers not in flow style:\n%s", buf.String())
	}
}

func TestTableAligned(t *testing.T) {
	s := report.Summarize(slip.Parse(sample, slip.Open), slip.Open)
	var buf bytes.Buffer
	if err := report.RenderFor("table").Write(&buf, s); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "Slip Summary") || !strings.Contains(out, "OPEN PANA") {
		t.Fatalf("missing titles:\n%s", out)
	}
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	// 同一張表每一行顯示寬度一致
	width := runewidth.StringWidth(lines[0])
	for _, ln := range lines {
		if strings.HasPrefix(ln, "+") && strings.Count(ln, "-") == len(ln)-2 {
			width = runewidth.StringWidth(ln)
			continue
		}
		if w := runewidth.StringWidth(ln); w != width {
			t.Fatalf("misaligned line %q (%d != %d)", ln, w, width)
		}
	}
}
