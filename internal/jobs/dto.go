package jobs

import "time"

// JobResponse is the outward-facing representation of a job posting.
type JobResponse struct {
	JobID     string    `json:"jobId"`
	Title     string    `json:"title"`
	Company   string    `json:"company"`
	CreatedAt time.Time `json:"createdAt"`
}

// JobDetailResponse includes the posting text for single-job reads.
type JobDetailResponse struct {
	JobResponse
	Description string `json:"description"`
}

func toResponse(j Job) JobResponse {
	return JobResponse{
		JobID:     j.ID,
		Title:     j.Title,
		Company:   j.Company,
		CreatedAt: j.CreatedAt,
	}
}

func toDetailResponse(j Job) JobDetailResponse {
	return JobDetailResponse{
		JobResponse: toResponse(j),
		Description: j.Description,
	}
}
