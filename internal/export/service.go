package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/tradedocs/termsheet-extractor/internal/repository"
	"github.com/tradedocs/termsheet-extractor/internal/rules"
)

// Service is a tiny façade over the job store that produces XLSX bytes.
type Service struct {
	jobs   repository.JobStore
	logger *slog.Logger
}

func NewService(jobs repository.JobStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{jobs: jobs, logger: logger}
}

// ExportJobsXLSX returns an XLSX workbook for all jobs started at or
// after "since" (zero time means everything).
func (s *Service) ExportJobsXLSX(ctx context.Context, since time.Time) ([]byte, error) {
	start := time.Now()
	jobs, err := s.jobs.ListJobs(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("query jobs: %w", err)
	}
	out, err := JobsXLSX(jobs)
	if err != nil {
		return nil, err
	}
	s.logger.Info("export.jobs.ok", "rows", len(jobs), "bytes", len(out), "elapsed_ms", time.Since(start).Milliseconds())
	return out, nil
}

// JobsXLSX renders job rows into a workbook, one row per job.
func JobsXLSX(jobs []repository.Job) ([]byte, error) {
	f := excelize.NewFile()
	const sheet = "Jobs"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{"Started At", "Filename", "Format", "Process", "Status", "Error", "Result JSON"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, j := range jobs {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
		write(1, j.StartedAt.UTC().Format(time.RFC3339))
		write(2, j.Filename)
		write(3, j.Format)
		write(4, j.Process)
		write(5, string(j.Status))
		write(6, j.ErrorMessage)
		write(7, j.ResultJSON)
		row++
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FileResult pairs a source file with its extracted fields; the batch
// CLI collects these for its report.
type FileResult struct {
	Path   string
	Fields rules.Result
}

// ResultsXLSX renders batch extraction results: one row per file, one
// column per canonical field.
func ResultsXLSX(results []FileResult) ([]byte, error) {
	f := excelize.NewFile()
	const sheet = "Extraction"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	cell, _ := excelize.CoordinatesToCellName(1, 1)
	_ = f.SetCellValue(sheet, cell, "File")
	for i, field := range rules.Fields {
		cell, _ := excelize.CoordinatesToCellName(i+2, 1)
		_ = f.SetCellValue(sheet, cell, string(field))
	}

	for r, res := range results {
		cell, _ := excelize.CoordinatesToCellName(1, r+2)
		_ = f.SetCellValue(sheet, cell, res.Path)
		for i, field := range rules.Fields {
			cell, _ := excelize.CoordinatesToCellName(i+2, r+2)
			_ = f.SetCellValue(sheet, cell, res.Fields[field])
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
