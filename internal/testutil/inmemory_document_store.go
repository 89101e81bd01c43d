package testutil

import (
	"context"
	"sort"
	"sync"

	"github.com/chainvoice/chainvoice/internal/domain/document"
	ierr "github.com/chainvoice/chainvoice/internal/errors"
	"github.com/chainvoice/chainvoice/internal/types"
)

// InMemoryDocumentStore is an in-memory implementation of document.Repository
type InMemoryDocumentStore struct {
	mu   sync.RWMutex
	docs map[string]*document.Document
}

func NewInMemoryDocumentStore() *InMemoryDocumentStore {
	return &InMemoryDocumentStore{
		docs: make(map[string]*document.Document),
	}
}

func docKey(companyID, id string) string {
	return companyID + "/" + id
}

func (s *InMemoryDocumentStore) Create(ctx context.Context, d *document.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := docKey(d.CompanyID, d.ID)
	if _, exists := s.docs[key]; exists {
		return ierr.NewError("document already exists").
			WithHintf("Document %s already exists", d.ID).
			Mark(ierr.ErrAlreadyExists)
	}

	cp := *d
	s.docs[key] = &cp
	return nil
}

func (s *InMemoryDocumentStore) Get(ctx context.Context, companyID, id string) (*document.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, exists := s.docs[docKey(companyID, id)]
	if !exists {
		return nil, ierr.NewError("document not found").
			WithHintf("Document %s does not exist", id).
			Mark(ierr.ErrNotFound)
	}
	cp := *d
	return &cp, nil
}

func (s *InMemoryDocumentStore) List(ctx context.Context, companyID string, filter *document.Filter) ([]*document.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*document.Document
	for _, d := range s.docs {
		if d.CompanyID != companyID {
			continue
		}
		if filter != nil && filter.DocType != nil && d.DocType != *filter.DocType {
			continue
		}
		if filter != nil && filter.DocStatus != nil && d.DocStatus != *filter.DocStatus {
			continue
		}
		cp := *d
		out = append(out, &cp)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if filter != nil && filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (s *InMemoryDocumentStore) MarkIssued(ctx context.Context, companyID, id string, issuance *document.Issuance) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, exists := s.docs[docKey(companyID, id)]
	if !exists {
		return ierr.NewError("document not found").
			WithHintf("Document %s does not exist", id).
			Mark(ierr.ErrNotFound)
	}

	d.DocStatus = types.DocumentStatusIssued
	d.SequentialNumber = issuance.SequentialNumber
	finalizedAt := issuance.FinalizedAt
	d.FinalizedAt = &finalizedAt
	d.FinalizedBy = issuance.FinalizedBy
	d.ImmutableSnapshotHash = issuance.ImmutableSnapshotHash
	d.UpdatedAt = issuance.FinalizedAt
	d.UpdatedBy = issuance.FinalizedBy
	return nil
}

func (s *InMemoryDocumentStore) MarkVoided(ctx context.Context, companyID, id string, v *document.Void) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, exists := s.docs[docKey(companyID, id)]
	if !exists {
		return ierr.NewError("document not found").
			WithHintf("Document %s does not exist", id).
			Mark(ierr.ErrNotFound)
	}

	d.DocStatus = types.DocumentStatusVoided
	voidedAt := v.VoidedAt
	d.VoidedAt = &voidedAt
	d.VoidedBy = v.VoidedBy
	d.VoidReason = v.Reason
	d.UpdatedAt = v.VoidedAt
	d.UpdatedBy = v.VoidedBy
	return nil
}

func (s *InMemoryDocumentStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = make(map[string]*document.Document)
}
