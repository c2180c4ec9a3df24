package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/wakaflorien/procureToPay/constants"
	"github.com/wakaflorien/procureToPay/internal/fields"
	"github.com/wakaflorien/procureToPay/internal/repository"
	"github.com/wakaflorien/procureToPay/internal/textract"
)

// Processor runs text acquisition and field extraction for one stored
// document, recording the outcome as an extract job row.
type Processor struct {
	documents repository.DocumentRepository
	jobs      repository.ExtractJobRepository
	extractor *textract.Extractor
	logger    *slog.Logger
}

func NewProcessor(
	docs repository.DocumentRepository,
	jobs repository.ExtractJobRepository,
	extractor *textract.Extractor,
	logger *slog.Logger,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		documents: docs,
		jobs:      jobs,
		extractor: extractor,
		logger:    logger,
	}
}

// Process extracts text and structured fields for the document and persists
// the result. Extraction that yields no text is still a successful job: the
// fields carry the error string instead.
func (p *Processor) Process(ctx context.Context, documentID uuid.UUID) error {
	doc, err := p.documents.GetByID(ctx, documentID)
	if err != nil {
		return fmt.Errorf("load document %s: %w", documentID, err)
	}

	format := constants.MapExtToFormat(doc.FileExt)
	job, err := p.jobs.Start(ctx, doc.ID, format)
	if err != nil {
		return err
	}

	buf, err := textract.NewBufferFromFile(doc.SourcePath)
	if err != nil {
		p.failJob(ctx, job.ID, err)
		return fmt.Errorf("read %s: %w", doc.SourcePath, err)
	}

	res := p.extractor.ExtractText(ctx, buf, textract.Hints{Filename: doc.Filename})
	if res.Text == "" && len(res.Warnings) > 0 {
		p.logger.Warn("text acquisition produced nothing",
			"document_id", doc.ID, "warnings", res.Warnings)
	}

	var extracted any
	switch constants.DocType(doc.DocType) {
	case constants.DocTypeReceipt:
		extracted = fields.ExtractReceipt(res.Text)
	default:
		extracted = fields.Extract(res.Text)
	}

	if err := p.jobs.FinishSuccess(ctx, job.ID, res.Text, res.Method, res.Pages, extracted); err != nil {
		p.failJob(ctx, job.ID, err)
		return err
	}
	return nil
}

// failJob marks the job FAILED; the caller still returns the original error.
func (p *Processor) failJob(ctx context.Context, jobID uuid.UUID, cause error) {
	if ferr := p.jobs.FinishFailure(ctx, jobID, cause.Error()); ferr != nil {
		p.logger.Error("failed to mark job as failed", "job_id", jobID, "error", ferr)
	}
}
