package session

import (
	"errors"
	"testing"
	"time"

	"github.com/zintix-labs/slipdesk/ledger"
	"github.com/zintix-labs/slipdesk/slip"
)

var now = time.Date(2026, 10, 18, 23, 59, 0, 0, time.UTC)

func TestCheckDate(t *testing.T) {
	cases := []struct {
		date string
		ok   bool
	}{
		{"2026-10-18", true},
		{"2026-09-18", true},
		{"2026-09-17", false},
		{"2026-10-19", false},
		{"18/10/2026", false},
	}
	for _, c := range cases {
		err := CheckDate(c.date, now)
		if (err == nil) != c.ok {
			t.Fatalf("CheckDate(%q) err=%v want ok=%v", c.date, err, c.ok)
		}
	}
	if err := CheckDate("2026-10-19", now); !errors.Is(err, ErrDateOutOfRange) {
		t.Fatalf("want ErrDateOutOfRange, got %v", err)
	}
}

func TestNormalizeDefaults(t *testing.T) {
	s, err := Session{UserID: 1}.Normalize(now)
	if err != nil {
		t.Fatal(err)
	}
	if s.Mode != slip.Open || s.Date != "2026-10-18" || s.Role != RoleUser {
		t.Fatalf("unexpected defaults: %+v", s)
	}
	if _, err := (Session{Mode: "noon"}).Normalize(now); err == nil {
		t.Fatal("expected invalid mode error")
	}
}

func TestGateAndSelection(t *testing.T) {
	s := Session{UserID: 7, Game: ledger.Game{ID: 3, Name: "Kalyan"}, Date: "2026-10-18"}
	g := s.Gate(slip.Parse("5 10", slip.Open))
	if !g.GameSelected || g.GroupSelected {
		t.Fatalf("unexpected gate: %+v", g)
	}
	if err := slip.CheckSubmission(g); !errors.Is(err, slip.ErrNoSelection) {
		t.Fatalf("want ErrNoSelection, got %v", err)
	}
	sel := s.Selection()
	if sel.UserID != 7 || sel.Game.Name != "Kalyan" || sel.GameDate != "2026-10-18" {
		t.Fatalf("unexpected selection: %+v", sel)
	}
}
