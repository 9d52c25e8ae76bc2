package enhancements

import (
	"context"
	"time"
)

// Repo defines persistence operations for enhancements. Lookups are by ID
// alone; the service compares owners. The Mark* methods are guarded updates:
// the bool result reports whether this call performed the change, so
// concurrent completion checks race benignly.
type Repo interface {
	Create(ctx context.Context, e Enhancement) error
	GetByID(ctx context.Context, enhancementID string) (Enhancement, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Enhancement, error)
	ListByResume(ctx context.Context, userID, resumeID string) ([]Enhancement, error)
	ListPending(ctx context.Context, limit int) ([]Enhancement, error)
	MarkCompleted(ctx context.Context, enhancementID string, at time.Time) (bool, error)
	MarkCoverLetterSeen(ctx context.Context, enhancementID string, at time.Time) (bool, error)
	SetRenderedKey(ctx context.Context, enhancementID, format, key string) error
	Delete(ctx context.Context, enhancementID string) error
	ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error)
}
