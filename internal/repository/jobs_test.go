package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/arkclose/netsheet-tracker/constants"
	"github.com/arkclose/netsheet-tracker/internal/common"
	"github.com/arkclose/netsheet-tracker/internal/contract"
	"github.com/arkclose/netsheet-tracker/internal/listings"
	"github.com/arkclose/netsheet-tracker/internal/netsheet"
	"github.com/arkclose/netsheet-tracker/internal/pipeline"
)

func openTestRepo(t *testing.T) JobRepository {
	t.Helper()
	ctx := context.Background()
	db, err := OpenDB(ctx, ":memory:", nil)
	if err != nil {
		t.Fatalf("OpenDB: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewJobRepository(db, nil)
}

func TestJobLifecycle(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()
	id := uuid.New()

	if err := repo.Create(ctx, id, "306 Oakdale Dr contract.pdf"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	job, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if job.Status != constants.JobStatusQueued {
		t.Fatalf("status = %s, want QUEUED", job.Status)
	}

	if err := repo.MarkRunning(ctx, id); err != nil {
		t.Fatalf("MarkRunning: %v", err)
	}
	job, err = repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID after running: %v", err)
	}
	if job.Status != constants.JobStatusRunning {
		t.Fatalf("status = %s, want RUNNING", job.Status)
	}

	sheet, err := netsheet.Calculate(netsheet.Input{
		PurchasePrice:     300000,
		ClosingDate:       "2025-06-30",
		TitleOption:       "A",
		AnnualTaxes:       1825,
		CommissionPercent: 0.03,
	})
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	res := &pipeline.DocumentResult{
		JobID:      id,
		SourceFile: "306 Oakdale Dr contract.pdf",
		Record:     contract.Record{"property_address": "306 Oakdale Dr Bentonville AR 72712"},
		Report:     contract.ValidationReport{Valid: true},
		Lookup:     listings.LookupResult{AnnualTaxes: 1825, CommissionPercent: 0.03, Source: "listing"},
		NetSheet:   sheet,
		PagesTotal: 9,
		PagesOK:    9,
	}
	if err := repo.SaveResult(ctx, id, res); err != nil {
		t.Fatalf("SaveResult: %v", err)
	}

	job, err = repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID after save: %v", err)
	}
	if job.Status != constants.JobStatusComplete {
		t.Fatalf("status = %s, want COMPLETE", job.Status)
	}
	if job.PagesTotal != 9 || job.PagesOK != 9 {
		t.Fatalf("pages = %d/%d, want 9/9", job.PagesOK, job.PagesTotal)
	}
	if len(job.NetSheetJSON) == 0 {
		t.Fatalf("net sheet JSON not persisted")
	}
	rec, err := contract.RecordFromJSON(job.RecordJSON)
	if err != nil {
		t.Fatalf("decode stored record: %v", err)
	}
	if rec.String("property_address") != "306 Oakdale Dr Bentonville AR 72712" {
		t.Fatalf("stored address = %q", rec.String("property_address"))
	}
}

func TestSaveResultWithoutNetSheet(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()
	id := uuid.New()

	if err := repo.Create(ctx, id, "cashless.pdf"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	res := &pipeline.DocumentResult{
		JobID:      id,
		SourceFile: "cashless.pdf",
		Record:     contract.Record{"buyers": []string{"A Buyer"}},
		Report:     contract.ValidationReport{Valid: false, Critical: true},
		PagesTotal: 3,
		PagesOK:    3,
	}
	if err := repo.SaveResult(ctx, id, res); err != nil {
		t.Fatalf("SaveResult: %v", err)
	}

	job, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if job.Status != constants.JobStatusExtracted {
		t.Fatalf("status = %s, want EXTRACTED when no net sheet", job.Status)
	}
	if len(job.NetSheetJSON) != 0 {
		t.Fatalf("expected empty net sheet JSON, got %q", job.NetSheetJSON)
	}
}

func TestMarkFailed(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()
	id := uuid.New()

	if err := repo.Create(ctx, id, "broken.pdf"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.MarkFailed(ctx, id, "extraction failed on all 3 pages"); err != nil {
		t.Fatalf("MarkFailed: %v", err)
	}

	job, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if job.Status != constants.JobStatusFailed {
		t.Fatalf("status = %s, want FAILED", job.Status)
	}
	if job.ErrorDetails == "" {
		t.Fatalf("error details not stored")
	}
}

func TestCreateDuplicateIDIsDatabaseError(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()
	id := uuid.New()

	if err := repo.Create(ctx, id, "contract.pdf"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	err := repo.Create(ctx, id, "contract.pdf")
	if !errors.Is(err, common.ErrDatabase) {
		t.Fatalf("err = %v, want ErrDatabase", err)
	}
}

func TestGetByIDNotFound(t *testing.T) {
	repo := openTestRepo(t)
	_, err := repo.GetByID(context.Background(), uuid.New())
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestListRecent(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := repo.Create(ctx, uuid.New(), "contract.pdf"); err != nil {
			t.Fatalf("Create %d: %v", i, err)
		}
	}
	jobs, err := repo.ListRecent(ctx, 10)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(jobs) != 3 {
		t.Fatalf("len = %d, want 3", len(jobs))
	}
}
