package ingest

import (
	"bytes"
	"context"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/wakaflorien/procureToPay/constants"
	"github.com/wakaflorien/procureToPay/gen/ent"
)

type fakeDocumentRepo struct {
	rows []*ent.Document
}

func (f *fakeDocumentRepo) GetByID(_ context.Context, id uuid.UUID) (*ent.Document, error) {
	for _, r := range f.rows {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, os.ErrNotExist
}

func (f *fakeDocumentRepo) GetByRequestAndHash(_ context.Context, requestID uuid.UUID, hash []byte) (*ent.Document, error) {
	for _, r := range f.rows {
		if r.RequestID == requestID && bytes.Equal(r.ContentHash, hash) {
			return r, nil
		}
	}
	return nil, os.ErrNotExist
}

func (f *fakeDocumentRepo) ListByRequest(_ context.Context, requestID uuid.UUID) ([]*ent.Document, error) {
	var out []*ent.Document
	for _, r := range f.rows {
		if r.RequestID == requestID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeDocumentRepo) Create(_ context.Context, requestID uuid.UUID, docType, sourcePath, filename, ext string, size int, hash []byte, uploadedAt time.Time) (*ent.Document, error) {
	row := &ent.Document{
		ID:          uuid.New(),
		RequestID:   requestID,
		DocType:     docType,
		SourcePath:  sourcePath,
		Filename:    filename,
		FileExt:     ext,
		FileSize:    size,
		ContentHash: hash,
		UploadedAt:  uploadedAt,
	}
	f.rows = append(f.rows, row)
	return row, nil
}

func (f *fakeDocumentRepo) UpsertByHash(ctx context.Context, requestID uuid.UUID, docType, sourcePath, filename, ext string, size int, hash []byte, uploadedAt time.Time) (*ent.Document, bool, error) {
	if existing, err := f.GetByRequestAndHash(ctx, requestID, hash); err == nil {
		return existing, true, nil
	}
	row, err := f.Create(ctx, requestID, docType, sourcePath, filename, ext, size, hash, uploadedAt)
	return row, false, err
}

func TestIngestPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "proforma.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4 fake"), 0o644); err != nil {
		t.Fatal(err)
	}

	repo := &fakeDocumentRepo{}
	ing := NewFSIngestor(repo, discardLogger())
	requestID := uuid.New()

	res, err := ing.IngestPath(context.Background(), requestID, constants.DocTypeProforma, path)
	if err != nil {
		t.Fatalf("IngestPath: %v", err)
	}
	if res.Deduplicated {
		t.Error("first ingest reported as deduplicated")
	}
	if res.FileExt != "pdf" {
		t.Errorf("FileExt = %q, want pdf", res.FileExt)
	}
	if _, err := hex.DecodeString(res.HashHex); err != nil || len(res.HashHex) != 64 {
		t.Errorf("HashHex = %q, want 64 hex chars", res.HashHex)
	}

	again, err := ing.IngestPath(context.Background(), requestID, constants.DocTypeProforma, path)
	if err != nil {
		t.Fatalf("second IngestPath: %v", err)
	}
	if !again.Deduplicated {
		t.Error("identical bytes not deduplicated")
	}
	if again.DocumentID != res.DocumentID {
		t.Errorf("dedup returned a different document: %s vs %s", again.DocumentID, res.DocumentID)
	}
	if len(repo.rows) != 1 {
		t.Fatalf("repo has %d rows, want 1", len(repo.rows))
	}
}

func TestIngestPathUnsupportedExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}

	ing := NewFSIngestor(&fakeDocumentRepo{}, discardLogger())
	if _, err := ing.IngestPath(context.Background(), uuid.New(), constants.DocTypeProforma, path); err == nil {
		t.Fatal("expected error for unsupported extension")
	}
}

func TestIngestDirectory(t *testing.T) {
	root := t.TempDir()
	write := func(rel, content string) {
		p := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("a.pdf", "%PDF-1.4 one")
	write("nested/b.jpg", "jpeg bytes")
	write("dup.pdf", "%PDF-1.4 one") // same bytes as a.pdf
	write("skip.txt", "not a document")
	write(".hidden/c.pdf", "%PDF-1.4 hidden")

	repo := &fakeDocumentRepo{}
	ing := NewFSIngestor(repo, discardLogger())

	results, stats, err := ing.IngestDirectory(context.Background(), uuid.New(), constants.DocTypeProforma, root, true)
	if err != nil {
		t.Fatalf("IngestDirectory: %v", err)
	}

	if stats.Matched != 3 {
		t.Errorf("Matched = %d, want 3", stats.Matched)
	}
	if stats.Succeeded != 3 {
		t.Errorf("Succeeded = %d, want 3", stats.Succeeded)
	}
	if stats.Deduplicated != 1 {
		t.Errorf("Deduplicated = %d, want 1", stats.Deduplicated)
	}
	if stats.Failed != 0 {
		t.Errorf("Failed = %d, want 0", stats.Failed)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	if len(repo.rows) != 2 {
		t.Errorf("repo has %d rows, want 2 distinct documents", len(repo.rows))
	}
}

func TestIngestDirectoryRequiresRoot(t *testing.T) {
	ing := NewFSIngestor(&fakeDocumentRepo{}, discardLogger())
	if _, _, err := ing.IngestDirectory(context.Background(), uuid.New(), constants.DocTypeProforma, "  ", true); err == nil {
		t.Fatal("expected error for empty root")
	}
}
