package enhancements

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Enhancement // enhancementId -> enhancement
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]Enhancement)}
}

func (r *MemoryRepo) Create(ctx context.Context, e Enhancement) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[e.ID] = e
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, enhancementID string) (Enhancement, error) {
	if err := ctx.Err(); err != nil {
		return Enhancement{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.data[enhancementID]
	if !ok {
		return Enhancement{}, ErrNotFound
	}
	return e, nil
}

func (r *MemoryRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Enhancement, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = 0
	}

	r.mu.RLock()
	var out []Enhancement
	for _, e := range r.data {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if offset >= len(out) {
		return []Enhancement{}, nil
	}
	end := len(out)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return out[offset:end], nil
}

func (r *MemoryRepo) ListByResume(ctx context.Context, userID, resumeID string) ([]Enhancement, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	var out []Enhancement
	for _, e := range r.data {
		if e.UserID == userID && e.ResumeID == resumeID {
			out = append(out, e)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryRepo) ListPending(ctx context.Context, limit int) ([]Enhancement, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 100
	}

	r.mu.RLock()
	var out []Enhancement
	for _, e := range r.data {
		if e.Status == StatusPending || (e.CoverLetter && e.CoverLetterSeenAt == nil) {
			out = append(out, e)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryRepo) MarkCompleted(ctx context.Context, enhancementID string, at time.Time) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.data[enhancementID]
	if !ok {
		return false, ErrNotFound
	}
	if e.Status != StatusPending {
		return false, nil
	}
	e.Status = StatusCompleted
	e.CompletedAt = &at
	e.UpdatedAt = at
	r.data[enhancementID] = e
	return true, nil
}

func (r *MemoryRepo) MarkCoverLetterSeen(ctx context.Context, enhancementID string, at time.Time) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.data[enhancementID]
	if !ok {
		return false, ErrNotFound
	}
	if e.CoverLetterSeenAt != nil {
		return false, nil
	}
	e.CoverLetterSeenAt = &at
	e.UpdatedAt = at
	r.data[enhancementID] = e
	return true, nil
}

func (r *MemoryRepo) SetRenderedKey(ctx context.Context, enhancementID, format, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.data[enhancementID]
	if !ok {
		return ErrNotFound
	}
	switch format {
	case FormatDocx:
		e.DocxKey = key
	case FormatPDF:
		e.PdfKey = key
	default:
		return fmt.Errorf("%w: unknown rendered format %q", ErrInvalidInput, format)
	}
	e.UpdatedAt = time.Now().UTC()
	r.data[enhancementID] = e
	return nil
}

func (r *MemoryRepo) Delete(ctx context.Context, enhancementID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.data, enhancementID)
	return nil
}

func (r *MemoryRepo) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	moved := 0
	for id, e := range r.data {
		if e.UserID == guestUserID {
			e.UserID = authedUserID
			r.data[id] = e
			moved++
		}
	}
	return moved, nil
}

var _ Repo = (*MemoryRepo)(nil)
