package model

import "time"

const (
	MimePDF  = "application/pdf"
	MimeText = "text/plain"
)

type JobPosting struct {
	SourceURL      string `json:"source_url,omitempty"`
	RawHTML        string `json:"-"`
	CleanedText    string `json:"cleaned_text"`
	ExtractedTitle string `json:"extracted_title,omitempty"`
}

type ResumeDocument struct {
	FileName      string    `json:"file_name"`
	MimeType      string    `json:"mime_type"`
	RawBytes      []byte    `json:"-"`
	ExtractedText string    `json:"extracted_text"`
	SizeBytes     int64     `json:"size_bytes"`
	UploadedAt    time.Time `json:"uploaded_at"`
	StorageURL    string    `json:"storage_url,omitempty"`
}

type CoverLetter struct {
	BodyText     string    `json:"body_text"`
	GeneratedAt  time.Time `json:"generated_at"`
	EditedByUser bool      `json:"edited_by_user"`
}

// JobInfo is the structured summary pulled from a job posting.
type JobInfo struct {
	Title    string `json:"title"`
	Company  string `json:"company"`
	Deadline string `json:"deadline"`
	Summary  string `json:"summary"`
}
