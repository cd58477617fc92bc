package dto

import (
	"time"

	"github.com/fadilmartias/cover-letter-generator/internal/util"
	"github.com/google/uuid"
)

type LoadJobRequest struct {
	URL string `json:"url"`
}

type TemplateRequest struct {
	Template string `json:"template"`
}

type EditLetterRequest struct {
	CoverLetter string `json:"cover_letter"`
}

type RefineRequest struct {
	Instruction string `json:"instruction"`
}

type StatusDTO struct {
	Code    string    `json:"code"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

type WorkflowDTO struct {
	ID             uuid.UUID        `json:"id"`
	Stage          string           `json:"stage"`
	Busy           bool             `json:"busy"`
	Error          string           `json:"error,omitempty"`
	JobURL         string           `json:"job_url,omitempty"`
	JobTitle       string           `json:"job_title,omitempty"`
	JobText        string           `json:"job_text,omitempty"`
	KeyDetails     *util.KeyDetails `json:"key_details,omitempty"`
	ResumeFileName string           `json:"resume_file_name,omitempty"`
	ResumeText     string           `json:"resume_text,omitempty"`
	Template       string           `json:"template"`
	CanGenerate    bool             `json:"can_generate"`
	CoverLetter    string           `json:"cover_letter,omitempty"`
	EditedByUser   bool             `json:"edited_by_user"`
	ApplicationID  *uuid.UUID       `json:"application_id,omitempty"`
	Status         *StatusDTO       `json:"status,omitempty"`
	History        []StatusDTO      `json:"history"`
}

type JobTitleRequest struct {
	JobText string `json:"job_text"`
}
