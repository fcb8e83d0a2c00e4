package main

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tradedocs/termsheet-extractor/constants"
	"github.com/tradedocs/termsheet-extractor/internal/document"
	"github.com/tradedocs/termsheet-extractor/internal/export"
	"github.com/tradedocs/termsheet-extractor/internal/rules"
)

var (
	outputDir   string
	reportPath  string
	concurrency int
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:   "termsheet-batch [directory]",
	Short: "Run rule-based field extraction over a directory of DOCX termsheets",
	Long: `termsheet-batch walks a directory, extracts the canonical contract
fields from every .docx/.doc file with the rule-based engine, and writes
one JSON result per input file. With --report it also writes an XLSX
summary, one row per file.`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.Flags().StringVarP(&outputDir, "out", "o", ".", "directory for per-file JSON results")
	rootCmd.Flags().StringVar(&reportPath, "report", "", "write an XLSX summary to this path")
	rootCmd.Flags().IntVarP(&concurrency, "concurrency", "c", 4, "number of files processed in parallel")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

func runBatch(cmd *cobra.Command, args []string) error {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	root := args[0]
	files, err := collectDocx(root)
	if err != nil {
		return fmt.Errorf("scanning %s: %w", root, err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no .docx/.doc files under %s", root)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}

	loader := document.NewLoader(logger)
	engine := rules.NewEngine(logger)

	var (
		mu      sync.Mutex
		results []export.FileResult
	)

	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(concurrency)
	for _, path := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			doc, err := loader.Load(path)
			if err != nil {
				// Per-file parse failures should not abort the batch.
				logger.Error("batch.file.skipped", "path", path, "error", err)
				doc = nil
			}
			fields := engine.Extract(doc)

			if err := writeResult(path, fields); err != nil {
				return err
			}
			mu.Lock()
			results = append(results, export.FileResult{Path: path, Fields: fields})
			mu.Unlock()
			logger.Debug("batch.file.ok", "path", path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Path < results[j].Path })
	logger.Info("batch.done", "files", len(results))

	if reportPath != "" {
		data, err := export.ResultsXLSX(results)
		if err != nil {
			return fmt.Errorf("building report: %w", err)
		}
		if err := os.WriteFile(reportPath, data, 0o644); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		logger.Info("batch.report.written", "path", reportPath)
	}
	return nil
}

func collectDocx(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		switch constants.NormalizeExt(filepath.Ext(path)) {
		case "docx", "doc":
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

func writeResult(srcPath string, fields rules.Result) error {
	payload := map[string]any{
		"docx file":           srcPath,
		"Entities to extract": fields,
		"process":             constants.ProcessRuleBased,
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}
	base := strings.TrimSuffix(filepath.Base(srcPath), filepath.Ext(srcPath))
	out := filepath.Join(outputDir, base+".json")
	return os.WriteFile(out, data, 0o644)
}
