package dto

import "github.com/google/uuid"

type SaveApplicationRequest struct {
	ID             *uuid.UUID `json:"id"`
	JobDescription string     `json:"job_description"`
	CvContent      string     `json:"cv_content"`
	CoverLetter    string     `json:"cover_letter"`
	JobURL         string     `json:"job_url"`
	JobTitle       string     `json:"job_title"`
	Status         string     `json:"status"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type UpdateTitleRequest struct {
	JobTitle string `json:"job_title"`
}

type UpdateCoverLetterRequest struct {
	CoverLetter string `json:"cover_letter"`
}

type ApplicationStatsDTO struct {
	Total  int64 `json:"total"`
	Recent int64 `json:"recent"`
}
