package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// RenderConfig controls the external pdftoppm invocation.
type RenderConfig struct {
	Pdftoppm string // binary name or path, default "pdftoppm"
	DPI      int
	MaxPages int    // 0 = no cap
	WorkDir  string // parent for per-document temp dirs; "" = os.TempDir()
}

// Renderer turns a contract PDF into per-page PNGs through the external
// pdftoppm tool. pdfcpu vets the PDF and counts pages before any rendering
// happens so a corrupt upload fails fast.
type Renderer struct {
	cfg    RenderConfig
	runner Runner
}

func NewRenderer(cfg RenderConfig, runner Runner) *Renderer {
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 200
	}
	if runner == nil {
		runner = execRunner{}
	}
	return &Renderer{cfg: cfg, runner: runner}
}

// RenderPages renders every page of the PDF into a fresh temp dir and
// returns the image paths in page order plus a cleanup func. The cleanup
// func is safe to call on every exit path, including after errors — the
// temp dir is scoped to one document run and must never outlive it.
func (r *Renderer) RenderPages(ctx context.Context, pdfPath string) (images []string, cleanup func(), err error) {
	pageCount, err := api.PageCountFile(pdfPath)
	if err != nil {
		return nil, func() {}, fmt.Errorf("pdf page count: %w", err)
	}
	if pageCount == 0 {
		return nil, func() {}, fmt.Errorf("pdf has no pages")
	}

	tmpDir, err := os.MkdirTemp(r.cfg.WorkDir, "netsheet-render-*")
	if err != nil {
		return nil, func() {}, fmt.Errorf("create render dir: %w", err)
	}
	cleanup = func() { _ = os.RemoveAll(tmpDir) }

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r <dpi> -png <in.pdf> <tmp/page>
	_, errb, err := r.runner.Run(ctx, r.cfg.Pdftoppm, "-r", fmt.Sprintf("%d", r.cfg.DPI), "-png", pdfPath, prefix)
	if err != nil {
		cleanup()
		return nil, func() {}, fmt.Errorf("pdftoppm: %w: %s", err, truncate(string(errb), 512))
	}

	// collect generated pngs (prefix-1.png, prefix-2.png, ...)
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if len(matches) == 0 {
		cleanup()
		return nil, func() {}, fmt.Errorf("pdftoppm produced no images")
	}
	if r.cfg.MaxPages > 0 && len(matches) > r.cfg.MaxPages {
		matches = matches[:r.cfg.MaxPages]
	}
	return matches, cleanup, nil
}
