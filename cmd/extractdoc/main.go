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
	"github.com/wakaflorien/procureToPay/internal/fields"
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
		receipt  = flag.Bool("receipt", false, "treat the document as a receipt instead of a proforma invoice")
		withText = flag.Bool("text", false, "include the acquired text in the output")
	)
	flag.Parse()

	if flag.NArg() != 1 {
		printError("usage: extractdoc [-receipt] [-text] <file>\n")
		os.Exit(2)
	}
	path := flag.Arg(0)

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	extractor := textract.NewExtractor(textract.Config{
		Tesseract:     cfg.OCR.Tesseract,
		TesseractLang: cfg.OCR.TesseractLang,
		MaxImageDim:   cfg.OCR.MaxImageDim,
		MaxPages:      cfg.OCR.MaxPages,
	}, logger)

	buf, err := textract.NewBufferFromFile(path)
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	start := time.Now()
	res := extractor.ExtractText(ctx, buf, textract.Hints{Filename: path})

	var data any
	if *receipt {
		data = fields.ExtractReceipt(res.Text)
	} else {
		data = fields.Extract(res.Text)
	}

	out := map[string]any{
		"file":        path,
		"kind":        res.Kind,
		"method":      res.Method,
		"pages":       res.Pages,
		"duration_ms": time.Since(start).Milliseconds(),
		"fields":      data,
	}
	if len(res.Warnings) > 0 {
		out["warnings"] = res.Warnings
	}
	if *withText {
		out["text"] = res.Text
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
}
