package listings

import (
	"log/slog"
	"time"

	"github.com/patrickmn/go-cache"
)

// DefaultCommission is applied whenever the listing lookup misses:
// commission is contractually near-universal at 3%, so a fixed default is
// safe. Taxes are parcel-specific and never defaulted silently — a miss
// always raises TaxWarning for human follow-up.
const DefaultCommission = 0.03

// LookupResult carries the tax/commission figures used by the net-sheet
// calculator plus their provenance. Created per lookup, never persisted.
type LookupResult struct {
	AnnualTaxes       float64 `json:"annual_taxes"`
	CommissionPercent float64 `json:"commission_percent"`
	Source            string  `json:"source"` // "listing" or "default"
	TaxWarning        bool    `json:"tax_warning"`
	Reason            string  `json:"match_reason"`
}

// Service wraps the pure matcher with defaults and a small lookup cache.
// The table is immutable, so cached results never go stale within a run.
type Service struct {
	table  *Table
	cache  *cache.Cache
	logger *slog.Logger
}

func NewService(table *Table, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		table:  table,
		cache:  cache.New(30*time.Minute, 10*time.Minute),
		logger: logger,
	}
}

// PropertyData resolves tax and commission figures for an address. On a
// table miss it falls back to the caller-supplied default taxes, forces the
// commission to DefaultCommission regardless of what the listing sheet
// defaults to, and flags the taxes for manual verification.
func (s *Service) PropertyData(address string, defaultTaxes float64) LookupResult {
	key := Normalize(address).Full
	if v, ok := s.cache.Get(key); ok {
		if res, ok := v.(LookupResult); ok {
			return res
		}
	}

	rec, reason := Match(address, s.table)
	var res LookupResult
	if rec != nil {
		res = LookupResult{
			AnnualTaxes:       rec.AnnualTaxes,
			CommissionPercent: rec.CommissionPercent,
			Source:            "listing",
			TaxWarning:        false,
			Reason:            string(reason),
		}
		s.logger.Info("listings.lookup.hit",
			"address", address,
			"listing_address", rec.Address,
			"reason", string(reason),
		)
	} else {
		res = LookupResult{
			AnnualTaxes:       defaultTaxes,
			CommissionPercent: DefaultCommission,
			Source:            "default",
			TaxWarning:        true,
			Reason:            string(MatchNone),
		}
		s.logger.Warn("listings.lookup.miss",
			"address", address,
			"default_taxes", defaultTaxes,
		)
	}

	s.cache.Set(key, res, cache.DefaultExpiration)
	return res
}
