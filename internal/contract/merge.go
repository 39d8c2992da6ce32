package contract

import "strings"

// Merge folds one per-page partial object into the record, field by field.
// The precedence rule per field:
//
//   - a candidate fills a field whose current value is nil or empty-string
//   - a strictly longer array replaces a shorter one, so a page that reads
//     both buyer names beats a page that caught only one
//   - a strictly longer string replaces a shorter one
//   - numbers and booleans are set-once: never overwritten once present,
//     so a later, worse-quality page cannot clobber a correct earlier read
//
// The reduction is deterministic and associative: merging pages one at a
// time or in batches gives the same record as long as relative page order
// is preserved.
func Merge(rec Record, partial map[string]any) Record {
	if rec == nil {
		rec = Record{}
	}
	for field, cand := range partial {
		cur, seen := rec[field]
		if !seen {
			rec[field] = normalizeValue(cand)
			continue
		}
		if winner, replace := pick(cur, normalizeValue(cand)); replace {
			rec[field] = winner
		}
	}
	return rec
}

// Reduce merges an ordered sequence of per-page partials into one record.
func Reduce(partials []map[string]any) Record {
	rec := Record{}
	for _, p := range partials {
		rec = Merge(rec, p)
	}
	return rec
}

// pick decides whether the candidate replaces the current value.
func pick(cur, cand any) (any, bool) {
	if cand == nil {
		return cur, false
	}
	if isUnset(cur) {
		// Unset means nil or empty string; empty arrays are handled below so
		// the array-length rule owns that case.
		if _, isArr := cur.([]string); !isArr {
			return cand, true
		}
	}

	switch c := cand.(type) {
	case string:
		curStr, ok := cur.(string)
		if !ok {
			return cur, false
		}
		if len(strings.TrimSpace(c)) > 0 && len(c) > len(curStr) {
			return c, true
		}
	case []string:
		curArr, ok := cur.([]string)
		if !ok {
			return cur, false
		}
		if len(c) > len(curArr) {
			return c, true
		}
	}
	// Numbers and booleans only land on an unset slot, which the branch
	// above already handled; anything else keeps the current value.
	return cur, false
}

func isUnset(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

// normalizeValue collapses the shapes encoding/json hands us into the
// record's canonical kinds: []any of strings becomes []string, integral
// types widen to float64.
func normalizeValue(v any) any {
	switch t := v.(type) {
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, s)
			}
		}
		return out
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case float32:
		return float64(t)
	}
	return v
}
