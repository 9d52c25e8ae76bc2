package enhancements

import "time"

const (
	KindJobTailoring   = "job_tailoring"
	KindIndustryRevamp = "industry_revamp"
)

const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
)

// Enhancement is one unit of work handed to the external generator. The row
// records what was asked for; the task directory under TaskDir carries the
// instruction file and, eventually, the generator's output.
type Enhancement struct {
	ID          string
	UserID      string
	ResumeID    string
	JobID       string
	Kind        string
	Style       string
	Industry    string
	CoverLetter bool
	Status      string
	TaskDir     string
	DocxKey     string
	PdfKey      string
	Analysis    *Analysis
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time
	// CoverLetterSeenAt is independent of Status: the generator may write the
	// cover letter before or after the main document.
	CoverLetterSeenAt *time.Time
}

// ResumeReady reports whether the enhanced document has been observed.
func (e Enhancement) ResumeReady() bool {
	return e.Status == StatusCompleted
}

// CoverLetterReady reports whether the requested cover letter has been observed.
func (e Enhancement) CoverLetterReady() bool {
	return e.CoverLetter && e.CoverLetterSeenAt != nil
}

// AllArtifactsSeen reports whether reads still need filesystem checks.
func (e Enhancement) AllArtifactsSeen() bool {
	if e.Status != StatusCompleted {
		return false
	}
	if e.CoverLetter && e.CoverLetterSeenAt == nil {
		return false
	}
	return true
}

// ValidKind reports whether kind is a supported enhancement kind.
func ValidKind(kind string) bool {
	return kind == KindJobTailoring || kind == KindIndustryRevamp
}
