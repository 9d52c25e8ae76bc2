package jobs

import "context"

// Repo defines persistence operations for jobs. Lookups are by ID alone; the
// service compares owners.
type Repo interface {
	Create(ctx context.Context, j Job) error
	GetByID(ctx context.Context, jobID string) (Job, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Job, error)
	Delete(ctx context.Context, jobID string) error
	ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error)
}
