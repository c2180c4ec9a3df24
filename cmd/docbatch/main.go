package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/wakaflorien/procureToPay/constants"
	"github.com/wakaflorien/procureToPay/internal/common"
	"github.com/wakaflorien/procureToPay/internal/export"
	"github.com/wakaflorien/procureToPay/internal/ingest"
	repo "github.com/wakaflorien/procureToPay/internal/repository"
	"github.com/wakaflorien/procureToPay/internal/textract"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		inmem      = flag.Bool("inmem", false, "use in-memory SQLite database")
		dir        = flag.String("dir", "", "directory to register documents from (required)")
		requestStr = flag.String("request", "", "purchase request UUID to attach documents to (optional, generated when empty)")
		docTypeStr = flag.String("type", string(constants.DocTypeProforma), "document type: PROFORMA or RECEIPT")
		out        = flag.String("out", "", "output XLSX file path (optional, defaults to parent directory)")
		workers    = flag.Int("workers", 4, "number of extraction workers")
	)
	flag.Parse()

	if *dir == "" {
		printError("Error: --dir is required\n")
		os.Exit(1)
	}
	if !slices.Contains(constants.DocTypes, *docTypeStr) {
		printError("Error: --type must be one of %v\n", constants.DocTypes)
		os.Exit(1)
	}
	docType := constants.DocType(*docTypeStr)

	requestID := uuid.New()
	if *requestStr != "" {
		parsed, err := uuid.Parse(*requestStr)
		if err != nil {
			printError("Error: invalid --request UUID: %v\n", err)
			os.Exit(1)
		}
		requestID = parsed
	}

	if *out == "" {
		parentDir := filepath.Dir(*dir)
		*out = filepath.Join(parentDir, "documents.xlsx")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	_ = godotenv.Load()

	ctx := context.Background()
	cfg := common.LoadConfig()

	dbResult, err := common.InitDatabase(ctx, cfg, *inmem, logger)
	if err != nil {
		logger.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer dbResult.Cleanup()

	entc := dbResult.Client

	docsRepo := repo.NewDocumentRepository(entc, logger)
	jobsRepo := repo.NewExtractJobRepository(entc, logger)

	extractor := textract.NewExtractor(textract.Config{
		Tesseract:     cfg.OCR.Tesseract,
		TesseractLang: cfg.OCR.TesseractLang,
		MaxImageDim:   cfg.OCR.MaxImageDim,
		MaxPages:      cfg.OCR.MaxPages,
	}, logger)

	processor := ingest.NewProcessor(docsRepo, jobsRepo, extractor, logger)
	queue := ingest.NewQueue(processor.Process, logger, ingest.WithWorkers(*workers))

	ingestor := ingest.NewFSIngestor(docsRepo, logger)

	logger.Info("starting ingestion", "dir", *dir, "request_id", requestID, "doc_type", docType)
	results, stats, err := ingestor.IngestDirectory(ctx, requestID, docType, *dir, true)
	if err != nil {
		logger.Error("failed to ingest directory", "error", err)
		os.Exit(1)
	}

	enqueued := 0
	for _, r := range results {
		if r.Err != "" {
			continue
		}
		docID, err := uuid.Parse(r.DocumentID)
		if err != nil {
			logger.Error("failed to parse document ID", "document_id", r.DocumentID, "error", err)
			continue
		}
		if err := queue.Enqueue(ctx, ingest.Job{DocumentID: docID, SubmittedAt: time.Now()}); err != nil {
			logger.Error("failed to enqueue document", "document_id", docID, "error", err)
			continue
		}
		enqueued++
	}
	logger.Info("ingestion complete",
		"documents_enqueued", enqueued,
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"succeeded", stats.Succeeded,
		"failed", stats.Failed,
		"deduplicated", stats.Deduplicated)

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Minute)
	queue.Shutdown(shutdownCtx)
	cancel()

	logger.Info("exporting to XLSX", "output", *out)
	exportService := export.NewService(docsRepo, jobsRepo, logger)

	xlsxBytes, err := exportService.ExportDocumentsXLSX(ctx, requestID)
	if err != nil {
		logger.Error("failed to export documents", "error", err)
		os.Exit(1)
	}

	if err := os.WriteFile(*out, xlsxBytes, 0644); err != nil {
		logger.Error("failed to write output file", "error", err)
		os.Exit(1)
	}

	logger.Info("batch processing complete",
		"documents_registered", stats.Succeeded,
		"documents_enqueued", enqueued,
		"output_file", *out)

	fmt.Printf("Batch processing complete!\n")
	fmt.Printf("- Documents registered: %d\n", stats.Succeeded)
	fmt.Printf("- Documents processed: %d\n", enqueued)
	fmt.Printf("- Output: %s\n", *out)
}
