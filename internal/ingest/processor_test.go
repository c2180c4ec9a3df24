package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/wakaflorien/procureToPay/constants"
	"github.com/wakaflorien/procureToPay/gen/ent"
	"github.com/wakaflorien/procureToPay/internal/entity"
	"github.com/wakaflorien/procureToPay/internal/textract"
)

type fakeJobRepo struct {
	successErr error

	started       []uuid.UUID
	succeeded     []uuid.UUID
	failed        map[uuid.UUID]string
	lastExtracted any
}

func (f *fakeJobRepo) Start(_ context.Context, documentID uuid.UUID, format string) (*ent.ExtractJob, error) {
	job := &ent.ExtractJob{ID: uuid.New(), DocumentID: documentID, Format: format}
	f.started = append(f.started, job.ID)
	return job, nil
}

func (f *fakeJobRepo) FinishSuccess(_ context.Context, jobID uuid.UUID, _ string, _ string, _ int, extracted any) error {
	if f.successErr != nil {
		return f.successErr
	}
	f.succeeded = append(f.succeeded, jobID)
	f.lastExtracted = extracted
	return nil
}

func (f *fakeJobRepo) FinishFailure(_ context.Context, jobID uuid.UUID, message string) error {
	if f.failed == nil {
		f.failed = make(map[uuid.UUID]string)
	}
	f.failed[jobID] = message
	return nil
}

func (f *fakeJobRepo) LatestForDocument(_ context.Context, _ uuid.UUID) (*ent.ExtractJob, error) {
	return nil, os.ErrNotExist
}

func seedDocument(t *testing.T, repo *fakeDocumentRepo, path, ext, docType string) uuid.UUID {
	t.Helper()
	row, err := repo.Create(context.Background(), uuid.New(), docType, path, filepath.Base(path), ext, 0, []byte{0x01}, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	return row.ID
}

func newTestProcessor(docs *fakeDocumentRepo, jobs *fakeJobRepo) *Processor {
	extractor := textract.NewExtractor(textract.Config{}, discardLogger())
	return NewProcessor(docs, jobs, extractor, discardLogger())
}

func TestProcessMissingFileMarksJobFailed(t *testing.T) {
	docs := &fakeDocumentRepo{}
	jobs := &fakeJobRepo{}
	docID := seedDocument(t, docs, filepath.Join(t.TempDir(), "gone.pdf"), "pdf", string(constants.DocTypeProforma))

	err := newTestProcessor(docs, jobs).Process(context.Background(), docID)
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if len(jobs.started) != 1 {
		t.Fatalf("started %d jobs, want 1", len(jobs.started))
	}
	if len(jobs.succeeded) != 0 {
		t.Fatalf("succeeded %d jobs, want 0", len(jobs.succeeded))
	}
	msg, ok := jobs.failed[jobs.started[0]]
	if !ok {
		t.Fatal("job was not marked as failed")
	}
	if msg == "" {
		t.Error("failure message is empty")
	}
}

func TestProcessFinishErrorMarksJobFailed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scan.png")
	if err := os.WriteFile(path, []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}

	docs := &fakeDocumentRepo{}
	jobs := &fakeJobRepo{successErr: errors.New("connection reset")}
	docID := seedDocument(t, docs, path, "png", string(constants.DocTypeProforma))

	err := newTestProcessor(docs, jobs).Process(context.Background(), docID)
	if !errors.Is(err, jobs.successErr) {
		t.Fatalf("err = %v, want the finish error", err)
	}
	if msg := jobs.failed[jobs.started[0]]; msg != "connection reset" {
		t.Errorf("failure message = %q, want the finish error text", msg)
	}
}

func TestProcessRecordsExtractedFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scan.png")
	if err := os.WriteFile(path, []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}

	docs := &fakeDocumentRepo{}
	jobs := &fakeJobRepo{}
	docID := seedDocument(t, docs, path, "png", string(constants.DocTypeProforma))

	if err := newTestProcessor(docs, jobs).Process(context.Background(), docID); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(jobs.succeeded) != 1 {
		t.Fatalf("succeeded %d jobs, want 1", len(jobs.succeeded))
	}
	if len(jobs.failed) != 0 {
		t.Fatalf("failed %d jobs, want 0", len(jobs.failed))
	}

	data, ok := jobs.lastExtracted.(entity.DocumentData)
	if !ok {
		t.Fatalf("extracted payload is %T, want entity.DocumentData", jobs.lastExtracted)
	}
	if data.Vendor != "Unknown Vendor" {
		t.Errorf("Vendor = %q, want the proforma default", data.Vendor)
	}
	if data.Error == "" {
		t.Error("expected the no-text error marker on an unreadable scan")
	}
}

func TestProcessRoutesReceiptsToReceiptRules(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "receipt.png")
	if err := os.WriteFile(path, []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}

	docs := &fakeDocumentRepo{}
	jobs := &fakeJobRepo{}
	docID := seedDocument(t, docs, path, "png", string(constants.DocTypeReceipt))

	if err := newTestProcessor(docs, jobs).Process(context.Background(), docID); err != nil {
		t.Fatalf("Process: %v", err)
	}

	data, ok := jobs.lastExtracted.(entity.DocumentData)
	if !ok {
		t.Fatalf("extracted payload is %T, want entity.DocumentData", jobs.lastExtracted)
	}
	if data.Vendor != "Unknown" {
		t.Errorf("Vendor = %q, want the receipt default", data.Vendor)
	}
}
