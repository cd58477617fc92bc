package dto

type ChatMessageRequest struct {
	Message    string  `json:"message"`
	CvContent  *string `json:"cv_content"`
	JobContent *string `json:"job_content"`
}

type ChatReplyDTO struct {
	Reply      string  `json:"reply"`
	CvContent  *string `json:"cv_content,omitempty"`
	JobContent *string `json:"job_content,omitempty"`
}

type AnalyzeResumeRequest struct {
	ResumeText string `json:"resume_text"`
}
