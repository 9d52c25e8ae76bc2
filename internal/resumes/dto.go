package resumes

import "time"

// ResumeResponse is the outward-facing representation of a resume.
type ResumeResponse struct {
	ResumeID   string    `json:"resumeId"`
	FileName   string    `json:"fileName"`
	MimeType   string    `json:"mimeType"`
	SizeBytes  int64     `json:"sizeBytes"`
	Style      string    `json:"style,omitempty"`
	UploadedAt time.Time `json:"uploadedAt"`
}

func toResponse(r Resume) ResumeResponse {
	return ResumeResponse{
		ResumeID:   r.ID,
		FileName:   r.OriginalFilename,
		MimeType:   r.MimeType,
		SizeBytes:  r.SizeBytes,
		Style:      r.Style,
		UploadedAt: r.CreatedAt,
	}
}
