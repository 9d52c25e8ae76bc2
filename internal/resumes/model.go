package resumes

import "time"

// Resume represents an uploaded resume owned by a user. The raw upload lives
// in object storage under StorageKey; the extracted plain text lives in the
// workspace under TextKey.
type Resume struct {
	ID               string
	UserID           string
	OriginalFilename string
	MimeType         string
	SizeBytes        int64
	StorageKey       string
	TextKey          string
	Style            string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
