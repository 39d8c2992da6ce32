package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/arkclose/netsheet-tracker/internal/async"
	"github.com/arkclose/netsheet-tracker/internal/common"
	"github.com/arkclose/netsheet-tracker/internal/export"
	"github.com/arkclose/netsheet-tracker/internal/repository"
)

// Service exposes the contract pipeline over HTTP: upload a PDF, poll the
// job, download the rendered net sheet.
type Service struct {
	logger    *slog.Logger
	jobs      repository.JobRepository
	queue     async.Queue
	exporter  *export.Service
	uploadDir string
	maxUpload int64
	limiter   *rate.Limiter
}

func NewService(logger *slog.Logger, jobs repository.JobRepository, queue async.Queue, exporter *export.Service, uploadDir string, maxUpload int64) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if uploadDir == "" {
		uploadDir = os.TempDir()
	}
	if maxUpload <= 0 {
		maxUpload = 25 << 20
	}
	return &Service{
		logger:    logger,
		jobs:      jobs,
		queue:     queue,
		exporter:  exporter,
		uploadDir: uploadDir,
		maxUpload: maxUpload,
		limiter:   rate.NewLimiter(rate.Every(100*time.Millisecond), 20),
	}
}

func (s *Service) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.rateLimit)

	r.Get("/api/health", s.handleHealth)
	r.Post("/api/contracts", s.handleUpload)
	r.Get("/api/contracts", s.handleList)
	r.Get("/api/contracts/{jobID}", s.handleGet)
	r.Get("/api/contracts/{jobID}/netsheet.xlsx", s.handleNetSheetXLSX)
	return r
}

func (s *Service) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			s.logger.Warn("rate limit exceeded", "path", r.URL.Path)
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleUpload stores the PDF, records a queued job, and enqueues it.
// Processing is asynchronous; the client polls the job resource.
func (s *Service) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		s.writeError(w, http.StatusBadRequest, "upload too large or malformed")
		return
	}
	file, header, err := r.FormFile("contract")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "missing 'contract' file field")
		return
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".pdf") {
		s.writeError(w, http.StatusBadRequest, "only PDF uploads are accepted")
		return
	}

	jobID := uuid.New()
	dstPath := filepath.Join(s.uploadDir, fmt.Sprintf("%s-%s", jobID, filepath.Base(header.Filename)))
	dst, err := os.Create(dstPath)
	if err != nil {
		s.logger.Error("upload store failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "could not store upload")
		return
	}
	if _, err := io.Copy(dst, file); err != nil {
		_ = dst.Close()
		_ = os.Remove(dstPath)
		s.logger.Error("upload copy failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "could not store upload")
		return
	}
	_ = dst.Close()

	if err := s.jobs.Create(r.Context(), jobID, header.Filename); err != nil {
		_ = os.Remove(dstPath)
		s.logger.Error("job create failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "could not create job")
		return
	}
	_ = s.queue.Enqueue(r.Context(), async.Job{
		JobID:       jobID,
		PDFPath:     dstPath,
		SubmittedAt: time.Now().UTC(),
	})

	s.logger.Info("contract queued", "job_id", jobID, "file", header.Filename)
	s.writeJSON(w, http.StatusAccepted, map[string]string{"job_id": jobID.String()})
}

func (s *Service) handleList(w http.ResponseWriter, r *http.Request) {
	jobs, err := s.jobs.ListRecent(r.Context(), 50)
	if err != nil {
		s.logger.Error("list jobs failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "could not list jobs")
		return
	}
	out := make([]map[string]any, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, jobSummary(j))
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Service) handleGet(w http.ResponseWriter, r *http.Request) {
	job, ok := s.loadJob(w, r)
	if !ok {
		return
	}
	body := jobSummary(job)
	attachJSON(body, "record", job.RecordJSON)
	attachJSON(body, "report", job.ReportJSON)
	attachJSON(body, "lookup", job.LookupJSON)
	attachJSON(body, "net_sheet", job.NetSheetJSON)
	s.writeJSON(w, http.StatusOK, body)
}

func (s *Service) handleNetSheetXLSX(w http.ResponseWriter, r *http.Request) {
	job, ok := s.loadJob(w, r)
	if !ok {
		return
	}
	res, err := documentResultFromRow(job)
	if err != nil {
		s.writeError(w, http.StatusConflict, "net sheet not available for this job")
		return
	}
	b, err := s.exporter.NetSheetXLSX(res)
	if err != nil {
		s.logger.Error("xlsx export failed", "job_id", job.ID, "error", err)
		s.writeError(w, http.StatusInternalServerError, "export failed")
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "netsheet-"+job.ID.String()+".xlsx"))
	_, _ = w.Write(b)
}

func (s *Service) loadJob(w http.ResponseWriter, r *http.Request) (*repository.JobRow, bool) {
	jobID, err := uuid.Parse(chi.URLParam(r, "jobID"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid job id")
		return nil, false
	}
	job, err := s.jobs.GetByID(r.Context(), jobID)
	if errors.Is(err, common.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "job not found")
		return nil, false
	}
	if err != nil {
		s.logger.Error("job load failed", "job_id", jobID, "error", err)
		s.writeError(w, http.StatusInternalServerError, "could not load job")
		return nil, false
	}
	return job, true
}

func jobSummary(j *repository.JobRow) map[string]any {
	return map[string]any{
		"job_id":      j.ID.String(),
		"source_file": j.SourceFile,
		"status":      string(j.Status),
		"pages_total": j.PagesTotal,
		"pages_ok":    j.PagesOK,
		"error":       j.ErrorDetails,
		"created_at":  j.CreatedAt,
		"updated_at":  j.UpdatedAt,
	}
}

func attachJSON(body map[string]any, key string, raw []byte) {
	if len(raw) == 0 {
		return
	}
	var v any
	if err := json.Unmarshal(raw, &v); err == nil {
		body[key] = v
	}
}

func (s *Service) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("response encode failed", "error", err)
	}
}

func (s *Service) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
