package repository

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/wakaflorien/procureToPay/gen/ent"
	entdoc "github.com/wakaflorien/procureToPay/gen/ent/document"
)

type DocumentRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*ent.Document, error)
	GetByRequestAndHash(ctx context.Context, requestID uuid.UUID, hash []byte) (*ent.Document, error)
	ListByRequest(ctx context.Context, requestID uuid.UUID) ([]*ent.Document, error)
	Create(ctx context.Context, requestID uuid.UUID, docType, sourcePath, filename, ext string, size int, hash []byte, uploadedAt time.Time) (*ent.Document, error)
	UpsertByHash(ctx context.Context, requestID uuid.UUID, docType, sourcePath, filename, ext string, size int, hash []byte, uploadedAt time.Time) (*ent.Document, bool, error)
}

type documentRepo struct {
	ent    *ent.Client
	logger *slog.Logger
}

func NewDocumentRepository(entc *ent.Client, logger *slog.Logger) DocumentRepository {
	return &documentRepo{
		ent:    entc,
		logger: logger,
	}
}

func (r *documentRepo) GetByID(ctx context.Context, id uuid.UUID) (*ent.Document, error) {
	return r.ent.Document.Get(ctx, id)
}

func (r *documentRepo) GetByRequestAndHash(ctx context.Context, requestID uuid.UUID, hash []byte) (*ent.Document, error) {
	row, err := r.ent.Document.Query().
		Where(
			entdoc.RequestID(requestID),
			entdoc.ContentHash(hash),
		).Only(ctx)
	if err != nil {
		r.logger.Error("failed to get document by request and hash", "request_id", requestID, "error", err)
		return nil, err
	}
	return row, nil
}

func (r *documentRepo) ListByRequest(ctx context.Context, requestID uuid.UUID) ([]*ent.Document, error) {
	rows, err := r.ent.Document.Query().
		Where(entdoc.RequestID(requestID)).
		Order(ent.Asc(entdoc.FieldUploadedAt)).
		All(ctx)
	if err != nil {
		r.logger.Error("failed to list documents", "request_id", requestID, "error", err)
		return nil, err
	}
	return rows, nil
}

func (r *documentRepo) Create(ctx context.Context, requestID uuid.UUID, docType, sourcePath, filename, ext string, size int, hash []byte, uploadedAt time.Time) (*ent.Document, error) {
	row, err := r.ent.Document.Create().
		SetRequestID(requestID).
		SetDocType(docType).
		SetSourcePath(sourcePath).
		SetFilename(filename).
		SetFileExt(ext).
		SetFileSize(size).
		SetContentHash(hash).
		SetUploadedAt(uploadedAt).
		Save(ctx)
	if err != nil {
		r.logger.Error("failed to create document", "request_id", requestID, "source_path", sourcePath, "filename", filename, "error", err)
		return nil, err
	}
	return row, nil
}

// UpsertByHash returns the existing row when the same bytes were already
// attached to the request; the bool reports whether it was a duplicate.
func (r *documentRepo) UpsertByHash(ctx context.Context, requestID uuid.UUID, docType, sourcePath, filename, ext string, size int, hash []byte, uploadedAt time.Time) (*ent.Document, bool, error) {
	if existing, err := r.GetByRequestAndHash(ctx, requestID, hash); err == nil {
		return existing, true, nil
	}
	row, err := r.Create(ctx, requestID, docType, sourcePath, filename, ext, size, hash, uploadedAt)
	if err != nil {
		r.logger.Error("failed to upsert document by hash", "request_id", requestID, "source_path", sourcePath, "filename", filename, "error", err)
		return nil, false, err
	}
	return row, false, nil
}
