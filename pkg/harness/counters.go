package harness

import "sync/atomic"

// Counters accumulates the statistics of one run. Safe for concurrent use;
// create one per run and pass it to the harness.
type Counters struct {
	total         atomic.Int64
	found         atomic.Int64
	invalid       atomic.Int64
	legacyError   atomic.Int64
	legacyWarning atomic.Int64
}

// Totals is a point-in-time copy of Counters.
type Totals struct {
	Total         int64 `json:"total"`
	Found         int64 `json:"found"`
	Invalid       int64 `json:"invalid"`
	LegacyError   int64 `json:"legacy_error"`
	LegacyWarning int64 `json:"legacy_warning"`
}

// Legacy returns the number of legacy-flagged cases.
func (t Totals) Legacy() int64 { return t.LegacyError + t.LegacyWarning }

// Other returns the cases that were neither found nor invalid.
func (t Totals) Other() int64 { return t.Total - t.Found - t.Invalid }

// Snapshot returns the current totals.
func (c *Counters) Snapshot() Totals {
	return Totals{
		Total:         c.total.Load(),
		Found:         c.found.Load(),
		Invalid:       c.invalid.Load(),
		LegacyError:   c.legacyError.Load(),
		LegacyWarning: c.legacyWarning.Load(),
	}
}

func (c *Counters) legacy(l Legacy) {
	switch l {
	case LegacyError:
		c.legacyError.Add(1)
	case LegacyWarning:
		c.legacyWarning.Add(1)
	}
}
