package resumes

import "context"

// Repo defines persistence operations for resumes. Lookups are by ID alone;
// the service compares owners so it can distinguish absent from foreign.
type Repo interface {
	Create(ctx context.Context, r Resume) error
	GetByID(ctx context.Context, resumeID string) (Resume, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Resume, error)
	SetStyle(ctx context.Context, resumeID, style string) error
	Delete(ctx context.Context, resumeID string) error
	ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error)
}
