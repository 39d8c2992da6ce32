package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"strconv"
	"strings"
	"time"

	"github.com/arkclose/netsheet-tracker/constants"
)

var moneyFields = []string{
	"purchase_price", "cash_amount", "earnest_money_amount",
	"non_refundable_amount", "home_warranty_amount",
}

var yesNoFields = []string{"non_refundable", "home_warranty"}

// NormalizeAndSanitizePage massages one page's raw JSON so it can pass the
// strict schema:
//   - drops nulls and unknown keys (additionalProperties=false friendliness)
//   - coerces money strings like "$285,000" to numbers
//   - normalizes yes/no checkboxes and the para3 option label
//   - trims strings, keeping observed-but-empty values as empty strings
//
// Returns the cleaned JSON plus the list of dropped/renamed keys for logging.
func NormalizeAndSanitizePage(raw []byte, logger *slog.Logger) ([]byte, []string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}

	dropped := make([]string, 0, 8)

	// 1) rename synonyms the model drifts toward
	renamed := func(from, to string) {
		if v, ok := m[from]; ok {
			if _, exists := m[to]; !exists {
				m[to] = v
			}
			delete(m, from)
			dropped = append(dropped, from+"->"+to)
		}
	}
	renamed("address", "property_address")
	renamed("buyer_names", "buyers")
	renamed("price", "purchase_price")
	renamed("earnest_money", "earnest_money_amount")
	renamed("home_warranty_cost", "home_warranty_amount")

	// 2) coerce money fields to numbers; drop nulls and junk
	for _, k := range moneyFields {
		v, ok := m[k]
		if !ok {
			continue
		}
		switch t := v.(type) {
		case float64:
			// already numeric
		case string:
			s := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(t), "$"))
			s = strings.ReplaceAll(s, ",", "")
			if s == "" || strings.EqualFold(s, "null") {
				delete(m, k)
				dropped = append(dropped, k+"(empty)")
				continue
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil && f >= 0 {
				m[k] = f
			} else {
				delete(m, k)
				dropped = append(dropped, k+"(unparseable)")
			}
		case nil:
			delete(m, k)
			dropped = append(dropped, k+"(null)")
		default:
			delete(m, k)
			dropped = append(dropped, k+"(type)")
		}
	}

	// 3) yes/no checkboxes: accept booleans and loose spellings
	for _, k := range yesNoFields {
		v, ok := m[k]
		if !ok {
			continue
		}
		switch t := v.(type) {
		case bool:
			if t {
				m[k] = "yes"
			} else {
				m[k] = "no"
			}
		case string:
			s := strings.ToLower(strings.TrimSpace(t))
			switch s {
			case "yes", "y", "true", "checked":
				m[k] = "yes"
			case "no", "n", "false", "unchecked":
				m[k] = "no"
			default:
				delete(m, k)
				dropped = append(dropped, k+"(value)")
			}
		default:
			delete(m, k)
			dropped = append(dropped, k+"(type)")
		}
	}

	// 4) para3 option: accept "3a", "A", "Paragraph 3C"
	if v, ok := m["para3_option_checked"].(string); ok {
		s := strings.ToUpper(strings.TrimSpace(v))
		s = strings.TrimPrefix(s, "PARAGRAPH ")
		s = strings.TrimPrefix(s, "PARA ")
		if len(s) == 1 && s >= "A" && s <= "C" {
			s = "3" + s
		}
		switch s {
		case "3A", "3B", "3C":
			m["para3_option_checked"] = s
		default:
			delete(m, "para3_option_checked")
			dropped = append(dropped, "para3_option_checked(value)")
		}
	}

	// 5) dates: reformat loose spellings to ISO, drop what won't parse
	for _, k := range []string{"contract_date", "closing_date", "acceptance_date"} {
		v, ok := m[k].(string)
		if !ok {
			continue
		}
		s := strings.TrimSpace(v)
		if s == "" {
			continue
		}
		if iso, ok := toISODate(s); ok {
			m[k] = iso
		} else {
			delete(m, k)
			dropped = append(dropped, k+"(date)")
		}
	}

	// 6) remove nulls and unknown keys
	known := make(map[string]struct{}, len(constants.ExpectedFields))
	for _, f := range constants.ExpectedFields {
		known[f] = struct{}{}
	}
	for k, v := range maps.Clone(m) {
		if v == nil {
			delete(m, k)
			dropped = append(dropped, k+"(null)")
			continue
		}
		if _, ok := known[k]; !ok {
			delete(m, k)
			dropped = append(dropped, k+"(unknown)")
		}
	}

	// 7) trim strings; observed-but-empty stays present
	for k, v := range m {
		if s, ok := v.(string); ok {
			m[k] = strings.TrimSpace(s)
		}
	}

	out, err := json.Marshal(m)
	if err != nil {
		return nil, dropped, fmt.Errorf("sanitize: encode: %w", err)
	}
	if len(dropped) > 0 {
		logger.Warn("llm.extract.sanitize", "dropped", dropped)
	}
	return out, dropped, nil
}

var looseDateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"January 2 2006",
	"2 January 2006",
}

func toISODate(s string) (string, bool) {
	for _, layout := range looseDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02"), true
		}
	}
	return "", false
}
