package server

import (
	"encoding/json"
	"fmt"

	"github.com/arkclose/netsheet-tracker/internal/contract"
	"github.com/arkclose/netsheet-tracker/internal/listings"
	"github.com/arkclose/netsheet-tracker/internal/netsheet"
	"github.com/arkclose/netsheet-tracker/internal/pipeline"
	"github.com/arkclose/netsheet-tracker/internal/repository"
)

// documentResultFromRow decodes the persisted JSON blobs back into the
// shape the exporter consumes. Fails when the job never produced a net
// sheet.
func documentResultFromRow(job *repository.JobRow) (*pipeline.DocumentResult, error) {
	if len(job.NetSheetJSON) == 0 {
		return nil, fmt.Errorf("job %s has no net sheet", job.ID)
	}

	res := &pipeline.DocumentResult{
		JobID:      job.ID,
		SourceFile: job.SourceFile,
		PagesTotal: job.PagesTotal,
		PagesOK:    job.PagesOK,
	}

	if len(job.RecordJSON) > 0 {
		rec, err := contract.RecordFromJSON(job.RecordJSON)
		if err != nil {
			return nil, fmt.Errorf("decode record: %w", err)
		}
		res.Record = rec
	}
	if len(job.ReportJSON) > 0 {
		if err := json.Unmarshal(job.ReportJSON, &res.Report); err != nil {
			return nil, fmt.Errorf("decode report: %w", err)
		}
	}
	if len(job.LookupJSON) > 0 {
		var lookup listings.LookupResult
		if err := json.Unmarshal(job.LookupJSON, &lookup); err != nil {
			return nil, fmt.Errorf("decode lookup: %w", err)
		}
		res.Lookup = lookup
	}

	var sheet netsheet.Result
	if err := json.Unmarshal(job.NetSheetJSON, &sheet); err != nil {
		return nil, fmt.Errorf("decode net sheet: %w", err)
	}
	res.NetSheet = &sheet
	return res, nil
}
