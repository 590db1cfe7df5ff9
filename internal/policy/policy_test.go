package policy

import (
	"os"
	"path/filepath"
	"testing"

	"signal-trading-bot/internal/types"
)

func chinaTable() *Table {
	return NewTable(map[string]Entry{
		"China":       {Ticker: "XYZ", Action: "BUY"},
		"Whole World": {Ticker: "TBD", Action: "TBD"},
	})
}

func TestDecideIncreased(t *testing.T) {
	d, reason := chinaTable().Decide(types.Signal{Subject: "China", Direction: types.DirectionIncreased})
	if d.Instrument != "XYZ" || d.Side != types.SideBuy {
		t.Errorf("expected (XYZ, BUY), got (%s, %s)", d.Instrument, d.Side)
	}
	if reason != "" {
		t.Errorf("expected no reason for actionable decision, got %q", reason)
	}
}

func TestDecideDecreasedInvertsSide(t *testing.T) {
	d, _ := chinaTable().Decide(types.Signal{Subject: "China", Direction: types.DirectionDecreased})
	if d.Instrument != "XYZ" || d.Side != types.SideSell {
		t.Errorf("expected (XYZ, SELL), got (%s, %s)", d.Instrument, d.Side)
	}
}

func TestDecideNonActionableDirections(t *testing.T) {
	for _, dir := range []types.Direction{types.DirectionUnchanged, types.DirectionUnclear} {
		d, reason := chinaTable().Decide(types.Signal{Subject: "China", Direction: dir})
		if d.Actionable() {
			t.Errorf("direction %s should not be actionable", dir)
		}
		if reason == "" {
			t.Errorf("direction %s should carry an explanation", dir)
		}
	}
}

func TestDecideUnknownSubject(t *testing.T) {
	d, reason := chinaTable().Decide(types.Signal{Subject: "Atlantis", Direction: types.DirectionIncreased})
	if d.Actionable() {
		t.Error("unknown subject should not be actionable")
	}
	if reason == "" {
		t.Error("unknown subject should carry an explanation")
	}
}

func TestDecidePlaceholderEntry(t *testing.T) {
	d, reason := chinaTable().Decide(types.Signal{Subject: "Whole World", Direction: types.DirectionIncreased})
	if d.Actionable() {
		t.Error("placeholder entry should not be actionable")
	}
	if reason == "" {
		t.Error("placeholder entry should carry an explanation")
	}
}

func TestDecideIsDeterministic(t *testing.T) {
	tbl := chinaTable()
	sig := types.Signal{Subject: "China", Direction: types.DirectionIncreased}

	first, _ := tbl.Decide(sig)
	for i := 0; i < 100; i++ {
		d, _ := tbl.Decide(sig)
		if d != first {
			t.Fatalf("decision changed across calls: %v vs %v", first, d)
		}
	}
}

func TestSubjectsSorted(t *testing.T) {
	subjects := chinaTable().Subjects()
	if len(subjects) != 2 || subjects[0] != "China" || subjects[1] != "Whole World" {
		t.Errorf("unexpected subjects: %v", subjects)
	}
}

func TestLoadTable(t *testing.T) {
	p := filepath.Join(t.TempDir(), "mapping.json")
	body := `{"China": {"ticker": "XYZ", "action": "BUY"}}`
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	tbl, err := LoadTable(p)
	if err != nil {
		t.Fatalf("LoadTable: %v", err)
	}
	d, _ := tbl.Decide(types.Signal{Subject: "China", Direction: types.DirectionIncreased})
	if d.Instrument != "XYZ" {
		t.Errorf("expected XYZ, got %s", d.Instrument)
	}
}

func TestLoadTableMissingFile(t *testing.T) {
	if _, err := LoadTable(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected error for missing mapping table")
	}
}
