package llm

import (
	"context"

	"github.com/arkclose/netsheet-tracker/constants"
)

// PageRequest asks for one contract page image to be read into fields.
type PageRequest struct {
	ImagePath    string             // rendered page PNG on disk
	PageNumber   int                // 1-based
	Role         constants.PageRole // prompt focus hint
	FilenameHint string             // original PDF filename
}

// PageExtractor reads one page image and returns a flat JSON object of
// candidate field values. Implementations are non-deterministic and may
// return an empty object; callers must tolerate missing keys and errors
// per page.
type PageExtractor interface {
	ExtractPage(ctx context.Context, req PageRequest) (map[string]any, []byte /*rawJSON*/, error)
	Name() string
}

// Attempt is the typed outcome of trying one extractor on one page. The
// orchestrator walks an ordered extractor list and keeps the first success.
type Attempt struct {
	Extractor string
	Fields    map[string]any
	Raw       []byte
	Err       error
}

func (a Attempt) OK() bool {
	return a.Err == nil
}
