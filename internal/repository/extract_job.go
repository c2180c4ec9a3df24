package repository

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/wakaflorien/procureToPay/constants"
	"github.com/wakaflorien/procureToPay/gen/ent"
	entjob "github.com/wakaflorien/procureToPay/gen/ent/extractjob"
)

type ExtractJobRepository interface {
	Start(ctx context.Context, documentID uuid.UUID, format string) (*ent.ExtractJob, error)
	FinishSuccess(ctx context.Context, jobID uuid.UUID, text, method string, pages int, extracted any) error
	FinishFailure(ctx context.Context, jobID uuid.UUID, message string) error
	LatestForDocument(ctx context.Context, documentID uuid.UUID) (*ent.ExtractJob, error)
}

type extractJobRepo struct {
	ent *ent.Client
	log *slog.Logger
}

func NewExtractJobRepository(entc *ent.Client, log *slog.Logger) ExtractJobRepository {
	return &extractJobRepo{ent: entc, log: log}
}

func (r *extractJobRepo) Start(ctx context.Context, documentID uuid.UUID, format string) (*ent.ExtractJob, error) {
	job, err := r.ent.ExtractJob.
		Create().
		SetDocumentID(documentID).
		SetFormat(format).
		SetStatus(string(constants.JobStatusRunning)).
		Save(ctx)
	if err != nil {
		r.log.Error("extract_job start failed", "document_id", documentID, "err", err)
		return nil, err
	}
	r.log.Info("extract_job started", "job_id", job.ID, "document_id", documentID, "format", format)
	return job, nil
}

// LatestForDocument returns the most recently started job for the document,
// or ent.NotFound when none has run yet.
func (r *extractJobRepo) LatestForDocument(ctx context.Context, documentID uuid.UUID) (*ent.ExtractJob, error) {
	return r.ent.ExtractJob.Query().
		Where(entjob.DocumentID(documentID)).
		Order(ent.Desc(entjob.FieldStartedAt)).
		First(ctx)
}

func (r *extractJobRepo) FinishSuccess(ctx context.Context, jobID uuid.UUID, text, method string, pages int, extracted any) error {
	var raw json.RawMessage
	if extracted != nil {
		if b, err := json.Marshal(extracted); err == nil {
			raw = b
		}
	}
	upd := r.ent.ExtractJob.
		UpdateOneID(jobID).
		SetExtractedText(text).
		SetMethod(method).
		SetFinishedAt(time.Now()).
		SetStatus(string(constants.JobStatusExtractOK))
	if pages > 0 {
		upd = upd.SetPages(pages)
	}
	if raw != nil {
		upd = upd.SetExtractedJSON(raw)
	}
	if _, err := upd.Save(ctx); err != nil {
		r.log.Error("extract_job finish(OK) failed", "job_id", jobID, "err", err)
		return err
	}
	r.log.Info("extract_job finished (EXTRACT_OK)", "job_id", jobID, "method", method)
	return nil
}

func (r *extractJobRepo) FinishFailure(ctx context.Context, jobID uuid.UUID, message string) error {
	_, err := r.ent.ExtractJob.
		UpdateOneID(jobID).
		SetFinishedAt(time.Now()).
		SetStatus(string(constants.JobStatusFailed)).
		SetErrorMessage(message).
		Save(ctx)
	if err != nil {
		r.log.Error("extract_job finish(FAILED) failed", "job_id", jobID, "err", err)
		return err
	}
	r.log.Warn("extract_job finished (FAILED)", "job_id", jobID, "error", message)
	return nil
}
