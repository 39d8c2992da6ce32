package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/arkclose/netsheet-tracker/constants"
	"github.com/arkclose/netsheet-tracker/internal/common"
	"github.com/arkclose/netsheet-tracker/internal/listings"
	"github.com/arkclose/netsheet-tracker/internal/llm"
)

type fakeRenderer struct {
	pages     []string
	cleanedUp atomic.Bool
	err       error
}

func (f *fakeRenderer) RenderPages(_ context.Context, _ string) ([]string, func(), error) {
	if f.err != nil {
		return nil, func() {}, f.err
	}
	return f.pages, func() { f.cleanedUp.Store(true) }, nil
}

// fakeExtractor serves canned fields per page and can fail selected pages.
type fakeExtractor struct {
	name      string
	perPage   map[int]map[string]any
	failPages map[int]bool
	calls     atomic.Int32
}

func (f *fakeExtractor) Name() string { return f.name }

func (f *fakeExtractor) ExtractPage(_ context.Context, req llm.PageRequest) (map[string]any, []byte, error) {
	f.calls.Add(1)
	if f.failPages[req.PageNumber] {
		return nil, nil, errors.New("model unavailable")
	}
	fields := f.perPage[req.PageNumber]
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil, nil
}

func testListings() *listings.Service {
	table := listings.NewTable([]listings.ListingRecord{
		{Address: "306 Oakdale", AnnualTaxes: 1825, CommissionPercent: 0.025},
	})
	return listings.NewService(table, nil)
}

func testProcessor(t *testing.T, renderer PageRenderer, extractors ...llm.PageExtractor) *Processor {
	t.Helper()
	return NewProcessor(nil, Config{DefaultAnnualTaxes: 2000}, renderer, extractors, testListings())
}

func contractPages() map[int]map[string]any {
	return map[int]map[string]any{
		1: {
			"buyers":           []any{"John Smith", "Jane Smith"},
			"property_address": "306 Oakdale Dr Bentonville AR 72712",
		},
		2: {
			"para3_option_checked": "3A",
			"purchase_price":       300000.0,
		},
		3: {
			"closing_date": "2025-06-30",
			"title_option": "C",
		},
	}
}

func TestProcessDocumentHappyPath(t *testing.T) {
	renderer := &fakeRenderer{pages: []string{"p1.png", "p2.png", "p3.png"}}
	ex := &fakeExtractor{name: "fake/primary", perPage: contractPages()}
	p := testProcessor(t, renderer, ex)

	res, err := p.ProcessDocument(context.Background(), "/tmp/306 Oakdale Dr contract.pdf")
	if err != nil {
		t.Fatalf("ProcessDocument: %v", err)
	}
	if res.PagesOK != 3 || res.PagesTotal != 3 {
		t.Fatalf("pages = %d/%d", res.PagesOK, res.PagesTotal)
	}
	if res.Report.Critical {
		t.Fatalf("unexpected critical report: %+v", res.Report)
	}
	if res.Lookup.Source != "listing" {
		t.Fatalf("lookup source = %s", res.Lookup.Source)
	}
	if res.NetSheet == nil {
		t.Fatalf("expected a net sheet")
	}
	// listing commission 2.5% of 300000
	if res.NetSheet.CommissionSeller != 7500 {
		t.Fatalf("commission = %v", res.NetSheet.CommissionSeller)
	}
	if !renderer.cleanedUp.Load() {
		t.Fatalf("render temp dir not cleaned up")
	}
}

func TestProcessDocumentSkipsFailedPages(t *testing.T) {
	renderer := &fakeRenderer{pages: []string{"p1.png", "p2.png", "p3.png"}}
	ex := &fakeExtractor{
		name:      "fake/primary",
		perPage:   contractPages(),
		failPages: map[int]bool{3: true},
	}
	p := testProcessor(t, renderer, ex)

	res, err := p.ProcessDocument(context.Background(), "/tmp/306 Oakdale Dr contract.pdf")
	if err != nil {
		t.Fatalf("ProcessDocument: %v", err)
	}
	if res.PagesOK != 2 {
		t.Fatalf("pages_ok = %d, want 2", res.PagesOK)
	}
	// page 3 carried the closing date; record still merges pages 1-2
	if got := res.Record.String("property_address"); got == "" {
		t.Fatalf("merged record lost page 1 fields")
	}
	if res.NetSheet == nil {
		t.Fatalf("partial extraction should still produce a net sheet")
	}
}

func TestProcessDocumentFallbackExtractor(t *testing.T) {
	renderer := &fakeRenderer{pages: []string{"p1.png", "p2.png", "p3.png"}}
	primary := &fakeExtractor{
		name:      "fake/primary",
		failPages: map[int]bool{1: true, 2: true, 3: true},
	}
	fallback := &fakeExtractor{name: "fake/fallback", perPage: contractPages()}
	p := testProcessor(t, renderer, primary, fallback)

	res, err := p.ProcessDocument(context.Background(), "/tmp/306 Oakdale Dr contract.pdf")
	if err != nil {
		t.Fatalf("ProcessDocument: %v", err)
	}
	if res.PagesOK != 3 {
		t.Fatalf("pages_ok = %d", res.PagesOK)
	}
	if primary.calls.Load() != 3 || fallback.calls.Load() != 3 {
		t.Fatalf("calls primary=%d fallback=%d", primary.calls.Load(), fallback.calls.Load())
	}
}

func TestProcessDocumentAllPagesFailed(t *testing.T) {
	renderer := &fakeRenderer{pages: []string{"p1.png"}}
	ex := &fakeExtractor{name: "fake/primary", failPages: map[int]bool{1: true}}
	p := testProcessor(t, renderer, ex)

	_, err := p.ProcessDocument(context.Background(), "/tmp/306 Oakdale Dr contract.pdf")
	if err == nil {
		t.Fatalf("expected error when every page fails")
	}
	if !errors.Is(err, common.ErrExtraction) {
		t.Fatalf("err = %v, want ErrExtraction", err)
	}
	if !renderer.cleanedUp.Load() {
		t.Fatalf("render temp dir must be cleaned up on failure too")
	}
}

func TestProcessDocumentRenderFailure(t *testing.T) {
	renderer := &fakeRenderer{err: fmt.Errorf("pdftoppm: not found")}
	p := testProcessor(t, renderer, &fakeExtractor{name: "fake"})
	if _, err := p.ProcessDocument(context.Background(), "/tmp/x.pdf"); err == nil {
		t.Fatalf("expected render error")
	}
}

func TestPageRole(t *testing.T) {
	if pageRole(1, 5) != constants.RoleGeneral {
		t.Fatalf("page 1 role")
	}
	if pageRole(2, 5) != constants.RoleFinancing {
		t.Fatalf("page 2 role")
	}
	if pageRole(3, 5) != constants.RoleCosts {
		t.Fatalf("middle page role")
	}
	if pageRole(5, 5) != constants.RoleSignatures {
		t.Fatalf("last page role")
	}
}
