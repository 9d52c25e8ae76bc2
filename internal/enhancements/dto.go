package enhancements

import "time"

// EnhancementResponse is the API representation of an enhancement.
type EnhancementResponse struct {
	EnhancementID    string            `json:"enhancementId"`
	ResumeID         string            `json:"resumeId"`
	JobID            string            `json:"jobId,omitempty"`
	Kind             string            `json:"kind"`
	Style            string            `json:"style"`
	Industry         string            `json:"industry,omitempty"`
	CoverLetter      bool              `json:"coverLetter"`
	Status           string            `json:"status"`
	Analysis         *Analysis         `json:"analysis,omitempty"`
	ResumeReady      bool              `json:"resumeReady"`
	CoverLetterReady bool              `json:"coverLetterReady"`
	Files            map[string]string `json:"files,omitempty"`
	CreatedAt        time.Time         `json:"createdAt"`
	CompletedAt      *time.Time        `json:"completedAt,omitempty"`
}

func toResponse(e Enhancement) EnhancementResponse {
	resp := EnhancementResponse{
		EnhancementID:    e.ID,
		ResumeID:         e.ResumeID,
		JobID:            e.JobID,
		Kind:             e.Kind,
		Style:            e.Style,
		Industry:         e.Industry,
		CoverLetter:      e.CoverLetter,
		Status:           e.Status,
		Analysis:         e.Analysis,
		ResumeReady:      e.ResumeReady(),
		CoverLetterReady: e.CoverLetterReady(),
		CreatedAt:        e.CreatedAt,
		CompletedAt:      e.CompletedAt,
	}
	if e.DocxKey != "" || e.PdfKey != "" {
		resp.Files = map[string]string{}
		if e.DocxKey != "" {
			resp.Files[FormatDocx] = e.DocxKey
		}
		if e.PdfKey != "" {
			resp.Files[FormatPDF] = e.PdfKey
		}
	}
	return resp
}

func toResponses(list []Enhancement) []EnhancementResponse {
	out := make([]EnhancementResponse, 0, len(list))
	for _, e := range list {
		out = append(out, toResponse(e))
	}
	return out
}
