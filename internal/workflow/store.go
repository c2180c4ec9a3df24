package workflow

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/wakaflorien/procureToPay/internal/common"
	"github.com/wakaflorien/procureToPay/internal/entity"
)

// RequestStore is the persistence boundary for purchase requests. The
// in-memory implementation below backs the CLIs and tests; a durable
// implementation can be swapped in without touching the service.
type RequestStore interface {
	Get(ctx context.Context, id uuid.UUID) (*entity.PurchaseRequest, error)
	List(ctx context.Context) ([]*entity.PurchaseRequest, error)
	Save(ctx context.Context, req *entity.PurchaseRequest) error
	Delete(ctx context.Context, id uuid.UUID) error

	// WithLock runs fn with exclusive access to the request, re-reading it
	// under the lock. Mutations made by fn are persisted when fn returns
	// nil. This is the concurrency guard for approval races: two approvers
	// acting at once must serialize.
	WithLock(ctx context.Context, id uuid.UUID, fn func(req *entity.PurchaseRequest) error) (*entity.PurchaseRequest, error)
}

// MemoryStore is a mutex-guarded in-memory RequestStore.
type MemoryStore struct {
	mu       sync.Mutex
	requests map[uuid.UUID]*entity.PurchaseRequest
	locks    map[uuid.UUID]*sync.Mutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		requests: make(map[uuid.UUID]*entity.PurchaseRequest),
		locks:    make(map[uuid.UUID]*sync.Mutex),
	}
}

func (s *MemoryStore) Get(_ context.Context, id uuid.UUID) (*entity.PurchaseRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.requests[id]
	if !ok {
		return nil, common.NotFoundError("purchase request not found")
	}
	cp := cloneRequest(req)
	return &cp, nil
}

func (s *MemoryStore) List(_ context.Context) ([]*entity.PurchaseRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*entity.PurchaseRequest, 0, len(s.requests))
	for _, req := range s.requests {
		cp := cloneRequest(req)
		out = append(out, &cp)
	}
	// Newest first, matching how request lists are presented everywhere.
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) Save(_ context.Context, req *entity.PurchaseRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := cloneRequest(req)
	s.requests[req.ID] = &cp
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.requests[id]; !ok {
		return common.NotFoundError("purchase request not found")
	}
	delete(s.requests, id)
	return nil
}

func (s *MemoryStore) WithLock(ctx context.Context, id uuid.UUID, fn func(req *entity.PurchaseRequest) error) (*entity.PurchaseRequest, error) {
	lock := s.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	req, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(req); err != nil {
		return nil, err
	}
	if err := s.Save(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

func (s *MemoryStore) lockFor(id uuid.UUID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[id] = lock
	}
	return lock
}

// cloneRequest deep-copies the slices and pointers so callers can never
// mutate stored state without going through Save.
func cloneRequest(req *entity.PurchaseRequest) entity.PurchaseRequest {
	cp := *req
	cp.Items = append([]entity.RequestItem(nil), req.Items...)
	cp.Approvals = append([]entity.Approval(nil), req.Approvals...)
	if req.ProformaData != nil {
		d := *req.ProformaData
		d.Items = append([]entity.LineItem(nil), req.ProformaData.Items...)
		cp.ProformaData = &d
	}
	if req.PurchaseOrderData != nil {
		d := *req.PurchaseOrderData
		d.Items = append([]entity.POItem(nil), req.PurchaseOrderData.Items...)
		d.ApprovedBy = append([]entity.POApproval(nil), req.PurchaseOrderData.ApprovedBy...)
		cp.PurchaseOrderData = &d
	}
	if req.ReceiptData != nil {
		d := *req.ReceiptData
		d.Items = append([]entity.LineItem(nil), req.ReceiptData.Items...)
		cp.ReceiptData = &d
	}
	if req.ReceiptValidation != nil {
		v := *req.ReceiptValidation
		v.Errors = append([]string(nil), req.ReceiptValidation.Errors...)
		v.Warnings = append([]string(nil), req.ReceiptValidation.Warnings...)
		v.ReceiptData.Items = append([]entity.LineItem(nil), req.ReceiptValidation.ReceiptData.Items...)
		cp.ReceiptValidation = &v
	}
	return cp
}
