package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/wakaflorien/procureToPay/internal/common"
	"github.com/wakaflorien/procureToPay/internal/entity"
	"github.com/wakaflorien/procureToPay/internal/fields"
	"github.com/wakaflorien/procureToPay/internal/recon"
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
		requestPath  = flag.String("request", "", "path to a purchase request JSON file (required)")
		proformaPath = flag.String("proforma", "", "path to the proforma invoice document (required)")
		tolerance    = flag.Float64("tolerance", 0, "amount tolerance, defaults to AMOUNT_TOLERANCE or 1.00")
	)
	flag.Parse()

	if *requestPath == "" || *proformaPath == "" {
		printError("Error: --request and --proforma are required\n")
		os.Exit(2)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if *tolerance <= 0 {
		*tolerance = cfg.Reconcile.AmountTolerance
	}

	raw, err := os.ReadFile(*requestPath)
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
	var req entity.PurchaseRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		printError("Error: invalid request JSON: %v\n", err)
		os.Exit(1)
	}

	extractor := textract.NewExtractor(textract.Config{
		Tesseract:     cfg.OCR.Tesseract,
		TesseractLang: cfg.OCR.TesseractLang,
		MaxImageDim:   cfg.OCR.MaxImageDim,
		MaxPages:      cfg.OCR.MaxPages,
	}, logger)

	buf, err := textract.NewBufferFromFile(*proformaPath)
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	res := extractor.ExtractText(ctx, buf, textract.Hints{Filename: *proformaPath})
	data := fields.Extract(res.Text)
	req.ProformaData = &data

	flagged := recon.HasDiscrepancies(&req, *tolerance)

	out := map[string]any{
		"proforma":          *proformaPath,
		"method":            res.Method,
		"tolerance":         *tolerance,
		"proforma_fields":   data,
		"has_discrepancies": flagged,
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
	if flagged {
		os.Exit(1)
	}
}
