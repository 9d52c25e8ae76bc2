package jobs

import "time"

// Job is a target job posting a user wants a resume tailored towards. The
// posting text is mirrored into the workspace under TextKey for the generator.
type Job struct {
	ID          string
	UserID      string
	Title       string
	Company     string
	Description string
	TextKey     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
