package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/arkclose/netsheet-tracker/constants"
	"github.com/arkclose/netsheet-tracker/internal/common"
	"github.com/arkclose/netsheet-tracker/internal/pipeline"
)

// JobRow mirrors one contract_jobs row with the JSON blobs decoded lazily
// by callers that need them.
type JobRow struct {
	ID           uuid.UUID
	SourceFile   string
	Status       constants.JobStatus
	ErrorDetails string
	PagesTotal   int
	PagesOK      int
	RecordJSON   []byte
	ReportJSON   []byte
	LookupJSON   []byte
	NetSheetJSON []byte
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// JobRepository persists contract processing jobs and their outcomes.
type JobRepository interface {
	Create(ctx context.Context, id uuid.UUID, sourceFile string) error
	MarkRunning(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, details string) error
	SaveResult(ctx context.Context, id uuid.UUID, res *pipeline.DocumentResult) error
	GetByID(ctx context.Context, id uuid.UUID) (*JobRow, error)
	ListRecent(ctx context.Context, limit int) ([]*JobRow, error)
}

type jobRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewJobRepository(db *sql.DB, logger *slog.Logger) JobRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &jobRepository{db: db, logger: logger}
}

func (r *jobRepository) Create(ctx context.Context, id uuid.UUID, sourceFile string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO contract_jobs (id, source_file, status) VALUES (?, ?, ?)`,
		id.String(), sourceFile, string(constants.JobStatusQueued),
	)
	if err != nil {
		return dbError("create job", err)
	}
	return nil
}

func (r *jobRepository) MarkRunning(ctx context.Context, id uuid.UUID) error {
	return r.setStatus(ctx, id, constants.JobStatusRunning, "")
}

func (r *jobRepository) MarkFailed(ctx context.Context, id uuid.UUID, details string) error {
	return r.setStatus(ctx, id, constants.JobStatusFailed, details)
}

func (r *jobRepository) setStatus(ctx context.Context, id uuid.UUID, status constants.JobStatus, details string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE contract_jobs SET status = ?, error_details = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		string(status), details, id.String(),
	)
	if err != nil {
		return dbError("update job status", err)
	}
	return nil
}

func (r *jobRepository) SaveResult(ctx context.Context, id uuid.UUID, res *pipeline.DocumentResult) error {
	recordJSON, err := res.Record.JSON()
	if err != nil {
		return common.WrapError(err, "encode record")
	}
	reportJSON, err := json.Marshal(res.Report)
	if err != nil {
		return common.WrapError(err, "encode report")
	}
	lookupJSON, err := json.Marshal(res.Lookup)
	if err != nil {
		return common.WrapError(err, "encode lookup")
	}
	var netsheetJSON []byte
	status := constants.JobStatusExtracted
	if res.NetSheet != nil {
		if netsheetJSON, err = json.Marshal(res.NetSheet); err != nil {
			return common.WrapError(err, "encode net sheet")
		}
		status = constants.JobStatusComplete
	}

	_, err = r.db.ExecContext(ctx,
		`UPDATE contract_jobs
		 SET status = ?, pages_total = ?, pages_ok = ?,
		     record_json = ?, report_json = ?, lookup_json = ?, netsheet_json = ?,
		     updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		string(status), res.PagesTotal, res.PagesOK,
		string(recordJSON), string(reportJSON), string(lookupJSON), nullableString(netsheetJSON),
		id.String(),
	)
	if err != nil {
		return dbError("save job result", err)
	}
	return nil
}

func (r *jobRepository) GetByID(ctx context.Context, id uuid.UUID) (*JobRow, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, source_file, status, COALESCE(error_details, ''),
		        pages_total, pages_ok,
		        COALESCE(record_json, ''), COALESCE(report_json, ''),
		        COALESCE(lookup_json, ''), COALESCE(netsheet_json, ''),
		        created_at, updated_at
		 FROM contract_jobs WHERE id = ?`, id.String())
	return scanJob(row)
}

func (r *jobRepository) ListRecent(ctx context.Context, limit int) ([]*JobRow, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, source_file, status, COALESCE(error_details, ''),
		        pages_total, pages_ok,
		        COALESCE(record_json, ''), COALESCE(report_json, ''),
		        COALESCE(lookup_json, ''), COALESCE(netsheet_json, ''),
		        created_at, updated_at
		 FROM contract_jobs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, dbError("list jobs", err)
	}
	defer rows.Close()

	var out []*JobRow
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, job)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*JobRow, error) {
	var (
		job                              JobRow
		idStr                            string
		record, report, lookup, netsheet string
	)
	err := row.Scan(&idStr, &job.SourceFile, &job.Status, &job.ErrorDetails,
		&job.PagesTotal, &job.PagesOK,
		&record, &report, &lookup, &netsheet,
		&job.CreatedAt, &job.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, dbError("scan job", err)
	}
	job.ID, err = uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("bad job id %q: %w", idStr, err)
	}
	job.RecordJSON = []byte(record)
	job.ReportJSON = []byte(report)
	job.LookupJSON = []byte(lookup)
	job.NetSheetJSON = []byte(netsheet)
	return &job, nil
}

// dbError marks storage failures so callers can distinguish them from
// not-found and encoding errors with errors.Is.
func dbError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, common.ErrDatabase, err)
}

func nullableString(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
