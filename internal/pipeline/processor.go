package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/arkclose/netsheet-tracker/constants"
	"github.com/arkclose/netsheet-tracker/internal/common"
	"github.com/arkclose/netsheet-tracker/internal/contract"
	"github.com/arkclose/netsheet-tracker/internal/listings"
	"github.com/arkclose/netsheet-tracker/internal/llm"
	"github.com/arkclose/netsheet-tracker/internal/netsheet"
)

// Config holds orchestration thresholds.
type Config struct {
	PageTimeout        time.Duration // per-page extraction bound
	MaxConcurrentPages int
	DefaultAnnualTaxes float64
	Fees               netsheet.FeeSchedule
}

// PageRenderer is the seam between the pipeline and the external
// image-conversion tool; the real implementation shells out to pdftoppm.
type PageRenderer interface {
	RenderPages(ctx context.Context, pdfPath string) (images []string, cleanup func(), err error)
}

// Processor drives one document through render → per-page extraction →
// merge → validation → listing lookup → net-sheet computation.
type Processor struct {
	Logger     *slog.Logger
	Cfg        Config
	Renderer   PageRenderer
	Extractors []llm.PageExtractor // ordered: primary first, fallbacks after
	Listings   *listings.Service
}

// DocumentResult is everything one run produces. Validation findings ride
// alongside the net sheet; they never block it.
type DocumentResult struct {
	JobID      uuid.UUID                 `json:"job_id"`
	SourceFile string                    `json:"source_file"`
	Record     contract.Record           `json:"record"`
	Report     contract.ValidationReport `json:"report"`
	Lookup     listings.LookupResult     `json:"lookup"`
	NetSheet   *netsheet.Result          `json:"net_sheet,omitempty"`
	PagesTotal int                       `json:"pages_total"`
	PagesOK    int                       `json:"pages_ok"`
}

func NewProcessor(logger *slog.Logger, cfg Config, renderer PageRenderer, extractors []llm.PageExtractor, listingSvc *listings.Service) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.PageTimeout <= 0 {
		cfg.PageTimeout = 60 * time.Second
	}
	if cfg.MaxConcurrentPages <= 0 {
		cfg.MaxConcurrentPages = 3
	}
	if cfg.Fees == (netsheet.FeeSchedule{}) {
		cfg.Fees = netsheet.DefaultFeeSchedule()
	}
	return &Processor{
		Logger:     logger,
		Cfg:        cfg,
		Renderer:   renderer,
		Extractors: extractors,
		Listings:   listingSvc,
	}
}

// ProcessDocument runs the full pipeline for one contract PDF. Failed pages
// are logged and skipped; the merge operates on whatever pages succeeded.
// An error is returned only when nothing usable came out of the document.
func (p *Processor) ProcessDocument(ctx context.Context, pdfPath string) (*DocumentResult, error) {
	jobID := uuid.New()
	start := time.Now()

	images, cleanup, err := p.Renderer.RenderPages(ctx, pdfPath)
	if err != nil {
		return nil, fmt.Errorf("render pages: %w", err)
	}
	defer cleanup()

	p.Logger.Info("pipeline.render.ok",
		"job_id", jobID, "file", filepath.Base(pdfPath), "pages", len(images),
	)

	partials := p.extractPages(ctx, jobID, pdfPath, images)
	pagesOK := 0
	ordered := make([]map[string]any, 0, len(partials))
	for _, fields := range partials {
		if fields == nil {
			continue
		}
		pagesOK++
		ordered = append(ordered, fields)
	}
	if pagesOK == 0 {
		return nil, fmt.Errorf("%w: all %d pages unreadable", common.ErrExtraction, len(images))
	}

	rec := contract.Reduce(ordered)
	report := contract.Validate(rec, pdfPath)
	lookup := p.Listings.PropertyData(rec.String("property_address"), p.Cfg.DefaultAnnualTaxes)

	result := &DocumentResult{
		JobID:      jobID,
		SourceFile: filepath.Base(pdfPath),
		Record:     rec,
		Report:     report,
		Lookup:     lookup,
		PagesTotal: len(images),
		PagesOK:    pagesOK,
	}

	sheet, err := netsheet.Calculate(buildNetSheetInput(rec, lookup, p.Cfg.Fees))
	if err != nil {
		// The record is still worth surfacing for human correction; the
		// missing sales price is already a critical validation finding.
		p.Logger.Error("pipeline.netsheet.failed", "job_id", jobID, "error", err)
	} else {
		result.NetSheet = sheet
	}

	p.Logger.Info("pipeline.document.done",
		"job_id", jobID,
		"file", result.SourceFile,
		"pages_ok", pagesOK,
		"pages_total", len(images),
		"valid", report.Valid,
		"critical", report.Critical,
		"lookup_source", lookup.Source,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return result, nil
}

// extractPages fans the pages out with bounded concurrency and returns one
// slot per page, nil where every extractor failed. Slots keep page order so
// the merge stays deterministic regardless of completion order.
func (p *Processor) extractPages(ctx context.Context, jobID uuid.UUID, pdfPath string, images []string) []map[string]any {
	partials := make([]map[string]any, len(images))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.Cfg.MaxConcurrentPages)
	for i, img := range images {
		i, img := i, img
		g.Go(func() error {
			req := llm.PageRequest{
				ImagePath:    img,
				PageNumber:   i + 1,
				Role:         pageRole(i+1, len(images)),
				FilenameHint: filepath.Base(pdfPath),
			}
			attempts := p.tryExtractors(gctx, req)
			last := attempts[len(attempts)-1]
			if !last.OK() {
				p.Logger.Warn("pipeline.page.failed",
					"job_id", jobID, "page", req.PageNumber,
					"attempts", len(attempts), "error", last.Err,
				)
				return nil // a failed page never aborts the document
			}
			partials[i] = last.Fields
			return nil
		})
	}
	_ = g.Wait()
	return partials
}

// tryExtractors walks the ordered extractor list until one succeeds,
// recording a typed attempt per try. Each attempt gets its own timeout.
func (p *Processor) tryExtractors(ctx context.Context, req llm.PageRequest) []llm.Attempt {
	attempts := make([]llm.Attempt, 0, len(p.Extractors))
	for _, ex := range p.Extractors {
		actx, cancel := context.WithTimeout(ctx, p.Cfg.PageTimeout)
		fields, raw, err := ex.ExtractPage(actx, req)
		cancel()

		attempts = append(attempts, llm.Attempt{
			Extractor: ex.Name(),
			Fields:    fields,
			Raw:       raw,
			Err:       err,
		})
		if err == nil {
			break
		}
		p.Logger.Warn("pipeline.page.attempt_failed",
			"page", req.PageNumber, "extractor", ex.Name(), "error", err,
		)
	}
	if len(attempts) == 0 {
		attempts = append(attempts, llm.Attempt{Err: fmt.Errorf("no extractors configured")})
	}
	return attempts
}

// pageRole maps a page position to a prompt focus: the Arkansas form opens
// with identity, carries paragraph 3 on the second page, and closes with
// the signature block.
func pageRole(page, total int) constants.PageRole {
	switch {
	case page == 1:
		return constants.RoleGeneral
	case page == 2:
		return constants.RoleFinancing
	case page == total:
		return constants.RoleSignatures
	default:
		return constants.RoleCosts
	}
}

// buildNetSheetInput maps the merged record plus the listing lookup onto the
// calculator's input.
func buildNetSheetInput(rec contract.Record, lookup listings.LookupResult, fees netsheet.FeeSchedule) netsheet.Input {
	price, _ := rec.Number("purchase_price")
	cash, _ := rec.Number("cash_amount")
	warrantyCost, _ := rec.Number("home_warranty_amount")

	return netsheet.Input{
		PurchasePrice:     price,
		CashAmount:        cash,
		SellerConcessions: rec.String("seller_concessions"),
		ClosingDate:       rec.String("closing_date"),
		TitleOption:       rec.String("title_option"),
		BuyerAgencyFee:    rec.String("buyer_agency_fee"),
		HomeWarranty:      strings.EqualFold(rec.String("home_warranty"), "yes"),
		HomeWarrantyPaid:  rec.String("home_warranty_paid_by"),
		HomeWarrantyCost:  warrantyCost,
		SurveyRequired:    surveyRequired(rec.String("survey_option")),
		SurveyPaidBy:      rec.String("survey_paid_by"),
		AnnualTaxes:       lookup.AnnualTaxes,
		CommissionPercent: lookup.CommissionPercent,
		Fees:              fees,
	}
}

// surveyRequired reads the survey checkbox text: anything calling for a new
// survey counts, an existing survey or a waiver does not.
func surveyRequired(option string) bool {
	s := strings.ToLower(option)
	return strings.Contains(s, "new")
}
