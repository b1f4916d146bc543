package leads

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for lead storage. Find returns leads
// sorted by created_at descending. Write operations enforce field-level
// validation and email uniqueness.
type Repository interface {
	Count(ctx context.Context, filter Filter) (int, error)
	Find(ctx context.Context, filter Filter, skip, limit int) ([]*Lead, error)
	GetByID(ctx context.Context, id string) (*Lead, error)
	Create(ctx context.Context, req *CreateLeadRequest) (*Lead, error)
	UpdateByID(ctx context.Context, id string, req *UpdateLeadRequest) (*Lead, error)
	DeleteByID(ctx context.Context, id string) error
}

// InMemoryRepository is a Repository backed by a map, used in tests and
// wherever no database is wired up.
type InMemoryRepository struct {
	mu    sync.RWMutex
	leads map[string]*Lead
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		leads: make(map[string]*Lead),
	}
}

// Count returns the number of leads matching the filter.
func (r *InMemoryRepository) Count(ctx context.Context, filter Filter) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, l := range r.leads {
		if filter.Matches(l) {
			n++
		}
	}
	return n, nil
}

// Find returns matching leads sorted by created_at descending.
func (r *InMemoryRepository) Find(ctx context.Context, filter Filter, skip, limit int) ([]*Lead, error) {
	r.mu.RLock()
	matched := make([]*Lead, 0)
	for _, l := range r.leads {
		if filter.Matches(l) {
			matched = append(matched, l)
		}
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	if skip >= len(matched) {
		return []*Lead{}, nil
	}
	matched = matched[skip:]
	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}

	out := make([]*Lead, len(matched))
	for i, l := range matched {
		cp := *l
		out[i] = &cp
	}
	return out, nil
}

// GetByID retrieves a lead by ID
func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.leads[id]
	if !ok {
		return nil, ErrLeadNotFound
	}
	cp := *l
	return &cp, nil
}

// Create validates the request and stores a new lead.
func (r *InMemoryRepository) Create(ctx context.Context, req *CreateLeadRequest) (*Lead, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.emailTaken(req.Email, "") {
		return nil, ErrEmailTaken
	}

	lead := req.newLead(uuid.NewString(), time.Now())
	r.leads[lead.ID] = lead

	cp := *lead
	return &cp, nil
}

// UpdateByID applies a partial update with create-equivalent validation
// and refreshes updated_at.
func (r *InMemoryRepository) UpdateByID(ctx context.Context, id string, req *UpdateLeadRequest) (*Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.leads[id]
	if !ok {
		return nil, ErrLeadNotFound
	}

	updated := *l
	if err := req.apply(&updated); err != nil {
		return nil, err
	}
	if r.emailTaken(updated.Email, id) {
		return nil, ErrEmailTaken
	}
	updated.UpdatedAt = time.Now()
	r.leads[id] = &updated

	cp := updated
	return &cp, nil
}

// DeleteByID permanently removes a lead.
func (r *InMemoryRepository) DeleteByID(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.leads[id]; !ok {
		return ErrLeadNotFound
	}
	delete(r.leads, id)
	return nil
}

// emailTaken must be called with the lock held.
func (r *InMemoryRepository) emailTaken(email, excludeID string) bool {
	email = strings.ToLower(email)
	for id, l := range r.leads {
		if id != excludeID && strings.ToLower(l.Email) == email {
			return true
		}
	}
	return false
}
