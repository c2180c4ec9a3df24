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
	"github.com/wakaflorien/procureToPay/internal/po"
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
		poPath      = flag.String("po", "", "path to a purchase order JSON file (required)")
		receiptPath = flag.String("receipt", "", "path to the receipt document (required)")
	)
	flag.Parse()

	if *poPath == "" || *receiptPath == "" {
		printError("Error: --po and --receipt are required\n")
		os.Exit(2)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	slog.SetDefault(logger)

	raw, err := os.ReadFile(*poPath)
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
	if err := po.Validate(raw); err != nil {
		printError("Error: invalid purchase order: %v\n", err)
		os.Exit(1)
	}
	var order entity.PurchaseOrderData
	if err := json.Unmarshal(raw, &order); err != nil {
		printError("Error: invalid purchase order JSON: %v\n", err)
		os.Exit(1)
	}

	cfg := common.LoadConfig()
	extractor := textract.NewExtractor(textract.Config{
		Tesseract:     cfg.OCR.Tesseract,
		TesseractLang: cfg.OCR.TesseractLang,
		MaxImageDim:   cfg.OCR.MaxImageDim,
		MaxPages:      cfg.OCR.MaxPages,
	}, logger)

	buf, err := textract.NewBufferFromFile(*receiptPath)
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	res := extractor.ExtractText(ctx, buf, textract.Hints{Filename: *receiptPath})
	receipt := fields.ExtractReceipt(res.Text)
	result := recon.ValidateReceipt(receipt, &order)

	out := map[string]any{
		"po_number": order.PONumber,
		"receipt":   *receiptPath,
		"method":    res.Method,
		"result":    result,
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
	if !result.IsValid {
		os.Exit(1)
	}
}
