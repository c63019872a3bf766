package models

import "time"

// HistoryFilter bounds a transaction history query.
//
// A single bound is exclusive (after Start, before End) while both bounds
// together form an inclusive range. Existing callers depend on this.
type HistoryFilter struct {
	Start *time.Time
	End   *time.Time
}

func (f HistoryFilter) Match(ts time.Time) bool {
	switch {
	case f.Start != nil && f.End != nil:
		return !ts.Before(*f.Start) && !ts.After(*f.End)
	case f.Start != nil:
		return ts.After(*f.Start)
	case f.End != nil:
		return ts.Before(*f.End)
	}
	return true
}
