package report

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// 金額以印度慣用的分組顯示（1,00,000）
var lang = language.MustParse("en-IN")

// Printer 回傳報表共用的 en-IN printer。
func Printer() *message.Printer {
	return message.NewPrinter(lang)
}

// Table 輸出總表與各類型明細兩張表。
func (s *Summary) Table() string {
	p := Printer()
	keys := []string{"Mode", "Entries", "Total Stake", "Invalid Lines", "Ambiguous Lines", "Submit"}
	submit := "ready"
	if s.Blocked {
		submit = "blocked"
	}
	basic := map[string]string{
		"Mode":            string(s.Mode),
		"Entries":         p.Sprintf("%d", s.Entries),
		"Total Stake":     p.Sprintf("%d", s.TotalStake),
		"Invalid Lines":   p.Sprintf("%d", s.Invalid),
		"Ambiguous Lines": p.Sprintf("%d", s.Ambiguous),
		"Submit":          submit,
	}
	if s.Overflow {
		basic["Total Stake"] += " (overflow)"
	}
	out := fmtTable("Slip Summary", keys, basic)

	for _, c := range s.Categories {
		ck := []string{"Type ID", "Count", "Stake", "Mean", "Std", "Median", "Max"}
		cm := map[string]string{
			"Type ID": fmt.Sprintf("%d", c.TypeID),
			"Count":   p.Sprintf("%d", c.Count),
			"Stake":   p.Sprintf("%d", c.Stake),
			"Mean":    p.Sprintf("%.2f", c.Mean),
			"Std":     p.Sprintf("%.2f", c.Std),
			"Median":  p.Sprintf("%.0f", c.Median),
			"Max":     p.Sprintf("%d", c.Max),
		}
		out += fmtTable(strings.ToUpper(c.Category), ck, cm)
	}
	return out
}

func fmtTable(title string, keys []string, msg map[string]string) string {
	maxKeyLen := 0
	maxValLen := 0
	for k, m := range msg {
		if w := runewidth.StringWidth(k); w > maxKeyLen {
			maxKeyLen = w
		}
		if w := runewidth.StringWidth(m); w > maxValLen {
			maxValLen = w
		}
	}
	maxKeyLen += 2
	maxValLen += 2

	totalInner := maxKeyLen + maxValLen + 1
	titleW := runewidth.StringWidth(title)
	if titleW > totalInner {
		maxValLen += titleW - totalInner
		totalInner = titleW
	}

	divider := "+" + strings.Repeat("-", maxKeyLen) + "+" + strings.Repeat("-", maxValLen) + "+\n"
	top := "+" + strings.Repeat("-", totalInner) + "+\n"

	left := (totalInner - titleW) / 2
	right := totalInner - titleW - left

	var sb strings.Builder
	sb.WriteString(top)
	sb.WriteString("|" + blank(left) + title + blank(right) + "|\n")
	sb.WriteString(divider)
	for _, k := range keys {
		sb.WriteString("| " + k + blank(maxKeyLen-2-runewidth.StringWidth(k)) + " | " + msg[k] + blank(maxValLen-2-runewidth.StringWidth(msg[k])) + " |\n")
	}
	sb.WriteString(divider)
	return sb.String()
}

func blank(w int) string {
	if w < 1 {
		return ""
	}
	return strings.Repeat(" ", w)
}
