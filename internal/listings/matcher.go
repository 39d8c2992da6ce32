package listings

import "strings"

// MatchReason identifies which strategy produced a match, for caller-side
// logging and explainability. The matcher itself never logs.
type MatchReason string

const (
	MatchPartial     MatchReason = "partial_street"
	MatchPrefix      MatchReason = "prefix"
	MatchContainment MatchReason = "containment"
	MatchStartsWith  MatchReason = "starts_with"
	MatchNone        MatchReason = "none"
)

// Match resolves a free-text address against the reference table. Strategies
// run in fixed priority order and the first hit wins:
//
//  1. house number matches and the first street words agree; identical
//     normalized strings land here too
//  2. house number matches and the listing's remainder is a prefix of the
//     input's remainder (covers sheet entries like "890 clark" against
//     "890 Clark Cir Bentonville AR 72713")
//  3. either normalized full string contains the other
//  4. input's normalized full string starts with the listing's
//
// Returns nil with MatchNone when nothing hits. Pure function: the same
// input and table always yield the same record.
func Match(address string, table *Table) (*ListingRecord, MatchReason) {
	if table == nil || table.Len() == 0 {
		return nil, MatchNone
	}
	in := Normalize(address)
	if in.Full == "" {
		return nil, MatchNone
	}

	type strategy struct {
		reason MatchReason
		hit    func(in, cand Normalized) bool
	}
	strategies := []strategy{
		{MatchPartial, func(in, cand Normalized) bool {
			return in.Number != "" && in.Number == cand.Number &&
				in.Street != "" && in.Street == cand.Street
		}},
		{MatchPrefix, func(in, cand Normalized) bool {
			if in.Number == "" || in.Number != cand.Number {
				return false
			}
			rem := cand.remainder()
			return rem != "" && strings.HasPrefix(in.remainder(), rem)
		}},
		{MatchContainment, func(in, cand Normalized) bool {
			return strings.Contains(in.Full, cand.Full) || strings.Contains(cand.Full, in.Full)
		}},
		{MatchStartsWith, func(in, cand Normalized) bool {
			return strings.HasPrefix(in.Full, cand.Full)
		}},
	}

	for _, s := range strategies {
		for i := range table.records {
			cand := Normalize(table.records[i].Address)
			if cand.Full == "" {
				continue
			}
			if s.hit(in, cand) {
				return &table.records[i], s.reason
			}
		}
	}
	return nil, MatchNone
}
