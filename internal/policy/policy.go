package policy

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"signal-trading-bot/internal/types"
)

// Placeholder marks a mapping entry that is not yet configured; such
// entries are never actionable.
const Placeholder = "TBD"

// Entry maps a subject to its tradable instrument and base action.
type Entry struct {
	Ticker string `json:"ticker"`
	Action string `json:"action"`
}

// Table is the static subject -> instrument mapping. Loaded once at
// startup; Decide never mutates it.
type Table struct {
	entries map[string]Entry
}

// LoadTable reads the mapping file. Unlike the dedup store, a missing
// or invalid table is a configuration error: without it no decision can
// ever be actionable.
func LoadTable(path string) (*Table, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read mapping table: %w", err)
	}
	var entries map[string]Entry
	if err := json.Unmarshal(b, &entries); err != nil {
		return nil, fmt.Errorf("parse mapping table: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("mapping table %s has no entries", path)
	}
	return &Table{entries: entries}, nil
}

// NewTable builds a table from an in-memory map, for tests and tools.
func NewTable(entries map[string]Entry) *Table {
	return &Table{entries: entries}
}

// Subjects returns the whitelist of valid subjects, sorted, for the
// classifier prompt.
func (t *Table) Subjects() []string {
	subjects := make([]string, 0, len(t.entries))
	for s := range t.entries {
		subjects = append(subjects, s)
	}
	sort.Strings(subjects)
	return subjects
}

// complete reports whether the entry has both fields configured.
func (e Entry) complete() bool {
	return e.Ticker != "" && e.Ticker != Placeholder &&
		e.Action != "" && e.Action != Placeholder
}

// Decide maps a signal to a decision by pure table lookup. Actionable
// iff the direction is Increased or Decreased AND the subject has a
// complete entry. The second return value explains non-actionable
// outcomes for logging; it is not part of the decision itself.
//
// An Increased likelihood takes the mapped action as-is; a Decreased
// likelihood inverts it.
func (t *Table) Decide(sig types.Signal) (types.Decision, string) {
	none := types.Decision{Side: types.SideNone}

	switch sig.Direction {
	case types.DirectionIncreased, types.DirectionDecreased:
	default:
		return none, fmt.Sprintf("direction %q is not actionable", sig.Direction)
	}

	entry, ok := t.entries[sig.Subject]
	if !ok {
		return none, fmt.Sprintf("subject %q has no mapping entry", sig.Subject)
	}
	if !entry.complete() {
		return none, fmt.Sprintf("mapping entry for %q is not configured", sig.Subject)
	}

	side := types.Side(entry.Action)
	if side != types.SideBuy && side != types.SideSell {
		return none, fmt.Sprintf("mapping entry for %q has invalid action %q", sig.Subject, entry.Action)
	}
	if sig.Direction == types.DirectionDecreased {
		side = side.Opposite()
	}

	return types.Decision{Instrument: entry.Ticker, Side: side}, ""
}
