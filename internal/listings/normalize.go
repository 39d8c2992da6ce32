package listings

import "strings"

// Normalized is the comparable form of a free-text address.
type Normalized struct {
	Number string // leading house number token
	Street string // first street token after the number
	Full   string // all surviving tokens joined with single spaces
}

// directionals and streetSuffixes are dropped during normalization so that
// "890 N Clark Cir" and "890 clark" compare equal.
var directionals = map[string]struct{}{
	"n": {}, "s": {}, "e": {}, "w": {},
	"ne": {}, "nw": {}, "se": {}, "sw": {},
	"north": {}, "south": {}, "east": {}, "west": {},
}

var streetSuffixes = map[string]struct{}{
	"dr": {}, "drive": {},
	"st": {}, "street": {},
	"ave": {}, "avenue": {},
	"rd": {}, "road": {},
	"ln": {}, "lane": {},
	"ct": {}, "court": {},
	"pl": {}, "place": {},
	"blvd": {}, "boulevard": {},
	"way": {},
	"cir": {}, "circle": {},
}

var unitMarkers = map[string]struct{}{
	"apt": {}, "apartment": {}, "unit": {}, "ste": {}, "suite": {}, "lot": {},
}

// Normalize lower-cases an address, strips punctuation, directional tokens,
// street-type suffixes, and unit markers (with their values), and collapses
// whitespace. The leading number and first street token are pulled out for
// component comparison.
func Normalize(address string) Normalized {
	lower := strings.ToLower(address)

	var b strings.Builder
	for _, r := range lower {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == ' ':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}

	tokens := strings.Fields(b.String())
	kept := make([]string, 0, len(tokens))
	skipNext := false
	for _, tok := range tokens {
		if skipNext {
			skipNext = false
			continue
		}
		if _, ok := unitMarkers[tok]; ok {
			skipNext = true // drop the unit designator too ("apt 4b")
			continue
		}
		if _, ok := directionals[tok]; ok {
			continue
		}
		if _, ok := streetSuffixes[tok]; ok {
			continue
		}
		kept = append(kept, tok)
	}

	n := Normalized{Full: strings.Join(kept, " ")}
	if len(kept) > 0 {
		n.Number = kept[0]
	}
	if len(kept) > 1 {
		n.Street = kept[1]
	}
	return n
}

// remainder is everything after the house number, used for prefix matching.
func (n Normalized) remainder() string {
	return strings.TrimSpace(strings.TrimPrefix(n.Full, n.Number))
}
