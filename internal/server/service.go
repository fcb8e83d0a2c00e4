// Package server exposes the document-processing HTTP surface: one
// multipart /process endpoint that routes uploads to the rule-based
// engine, the NER adapter, or the LLM pipeline by file extension.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tradedocs/termsheet-extractor/constants"
	"github.com/tradedocs/termsheet-extractor/internal/common"
	"github.com/tradedocs/termsheet-extractor/internal/document"
	"github.com/tradedocs/termsheet-extractor/internal/export"
	"github.com/tradedocs/termsheet-extractor/internal/llm"
	"github.com/tradedocs/termsheet-extractor/internal/ner"
	"github.com/tradedocs/termsheet-extractor/internal/repository"
	"github.com/tradedocs/termsheet-extractor/internal/rules"
)

// Service wires the engines behind the /process endpoint. It holds no
// per-request state; every request owns its temp file and result.
type Service struct {
	loader         *document.Loader
	engine         *rules.Engine
	ner            ner.Extractor
	llm            llm.Pipeline
	jobs           repository.JobStore // nil disables persistence
	exporter       *export.Service     // nil when jobs is nil
	logger         *slog.Logger
	tmpDir         string
	maxUploadBytes int64
}

type Options struct {
	Jobs           repository.JobStore
	TmpDir         string
	MaxUploadBytes int64
}

func NewService(loader *document.Loader, engine *rules.Engine, nerx ner.Extractor, pipeline llm.Pipeline, opts Options, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.TmpDir == "" {
		opts.TmpDir = os.TempDir()
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 32 << 20
	}
	s := &Service{
		loader:         loader,
		engine:         engine,
		ner:            nerx,
		llm:            pipeline,
		jobs:           opts.Jobs,
		logger:         logger,
		tmpDir:         opts.TmpDir,
		maxUploadBytes: opts.MaxUploadBytes,
	}
	if s.jobs != nil {
		s.exporter = export.NewService(s.jobs, logger)
	}
	return s
}

// Routes builds the HTTP mux.
func (s *Service) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/process", s.handleProcess)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/jobs/export", s.handleJobsExport)
	return mux
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Service) handleProcess(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	rawOperation := r.FormValue("operation")
	if strings.TrimSpace(rawOperation) == "" {
		writeError(w, http.StatusBadRequest, "operation is required")
		return
	}
	operation := constants.NormalizeOperation(rawOperation)
	question := r.FormValue("question")
	apiKey := r.FormValue("llm_api_key")

	reqID := uuid.New().String()
	logger := s.logger.With("req_id", reqID, "filename", header.Filename)
	logger.Info("server.process.start", "operation", string(operation), "has_api_key", apiKey != "")

	// Spool the upload to a per-request temp file; every exit path below
	// runs the deferred removal.
	tmpPath, err := s.spool(file, header.Filename)
	if err != nil {
		logger.Error("server.process.spool_failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to store upload")
		return
	}
	defer func() {
		if err := os.Remove(tmpPath); err != nil {
			logger.Warn("server.process.tmp_cleanup_failed", "path", tmpPath, "error", err)
		}
	}()

	ctx := r.Context()
	ext := constants.NormalizeExt(filepath.Ext(header.Filename))
	jobID := s.startJob(ctx, header.Filename, ext, logger)

	payload, process, err := s.dispatch(ctx, tmpPath, ext, operation, question, apiKey, logger)
	if err != nil {
		s.finishJob(ctx, jobID, constants.JobStatusFailed, process, "", err.Error(), logger)
		logger.Error("server.process.failed", "process", process, "error", err)
		writeError(w, common.HTTPStatus(err), userMessage(err))
		return
	}

	resultJSON, _ := json.Marshal(payload)
	s.finishJob(ctx, jobID, constants.JobStatusSucceeded, process, string(resultJSON), "", logger)
	logger.Info("server.process.ok", "process", process)
	writeJSON(w, http.StatusOK, payload)
}

// dispatch routes the spooled file by extension and returns the response
// payload plus the process label recorded on the job row.
func (s *Service) dispatch(ctx context.Context, path, ext string, operation constants.Operation, question, apiKey string, logger *slog.Logger) (any, string, error) {
	if _, ok := constants.AllowedExtensions[ext]; !ok {
		return nil, "", fmt.Errorf("%w: .%s", common.ErrUnsupportedFormat, ext)
	}

	switch ext {
	case "docx", "doc":
		doc, err := s.loader.Load(path)
		if err != nil {
			// Document-level open failure degrades to an empty result;
			// the diagnostic stays in the log.
			logger.Error("server.process.document_open_failed", "error", err)
			doc = nil
		}
		result := s.engine.Extract(doc)
		payload := map[string]any{
			"docx file":           path,
			"Entities to extract": result,
			"process":             constants.ProcessRuleBased,
		}
		return payload, constants.ProcessRuleBased, nil

	case "txt":
		text, err := s.loader.LoadText(path)
		if err != nil {
			logger.Error("server.process.document_open_failed", "error", err)
			text = ""
		}
		entities, err := s.ner.Extract(ctx, text)
		if err != nil {
			// A broken NER model is a hard failure; there is no fallback.
			return nil, constants.ProcessNER, fmt.Errorf("%w: %v", common.ErrModelUnavailable, err)
		}
		return entities, constants.ProcessNER, nil

	case "pdf":
		text, err := s.loader.LoadText(path)
		if err != nil {
			logger.Error("server.process.document_open_failed", "error", err)
			text = ""
		}
		if apiKey == "" {
			payload := map[string]any{
				"rag_summary": llm.FallbackSummary(text),
				"process":     constants.ProcessRAGFallback,
			}
			return payload, constants.ProcessRAGFallback, nil
		}
		process := constants.RAGProcess(operation)
		res, err := s.llm.Run(ctx, llm.Request{
			Text:      text,
			Operation: operation,
			Question:  question,
			APIKey:    apiKey,
		})
		if err != nil {
			return nil, process, err
		}
		payload := map[string]any{
			"rag_result": res.Text,
			"process":    process,
		}
		return payload, process, nil
	}

	return nil, "", fmt.Errorf("%w: .%s", common.ErrUnsupportedFormat, ext)
}

// spool writes the upload next to nothing else, keeping the original
// extension so downstream dispatch sees it.
func (s *Service) spool(file multipart.File, filename string) (string, error) {
	tmp, err := os.CreateTemp(s.tmpDir, "upload-*"+filepath.Ext(filename))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}

func (s *Service) startJob(ctx context.Context, filename, ext string, logger *slog.Logger) uuid.UUID {
	if s.jobs == nil {
		return uuid.Nil
	}
	job := &repository.Job{
		Filename: filename,
		FileExt:  ext,
		Format:   constants.FormatForExt(ext),
	}
	if err := s.jobs.StartJob(ctx, job); err != nil {
		logger.Warn("server.job.start_failed", "error", err)
		return uuid.Nil
	}
	return job.ID
}

func (s *Service) finishJob(ctx context.Context, id uuid.UUID, status constants.JobStatus, process, resultJSON, errMsg string, logger *slog.Logger) {
	if s.jobs == nil || id == uuid.Nil {
		return
	}
	if err := s.jobs.FinishJob(ctx, id, status, process, resultJSON, errMsg); err != nil {
		logger.Warn("server.job.finish_failed", "job_id", id, "error", err)
	}
}

// handleJobsExport streams the recorded jobs as an XLSX workbook. Only
// available when a job store is configured.
func (s *Service) handleJobsExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.exporter == nil {
		writeError(w, http.StatusNotFound, "job history is not configured")
		return
	}
	since := time.Time{}
	if raw := r.URL.Query().Get("since"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid since date %q", raw))
			return
		}
		since = t
	}
	data, err := s.exporter.ExportJobsXLSX(r.Context(), since)
	if err != nil {
		s.logger.Error("server.jobs_export.failed", "error", err)
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="extraction-jobs.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// userMessage keeps internal detail out of client-facing errors.
func userMessage(err error) string {
	switch {
	case errors.Is(err, common.ErrUnsupportedFormat):
		return "unsupported file type"
	case errors.Is(err, common.ErrInvalidInput):
		return err.Error()
	case errors.Is(err, common.ErrModelUnavailable):
		return "upstream model failure"
	default:
		return "processing failed"
	}
}
