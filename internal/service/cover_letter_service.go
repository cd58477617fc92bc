package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fadilmartias/cover-letter-generator/internal/common"
	"github.com/fadilmartias/cover-letter-generator/internal/config"
	"github.com/fadilmartias/cover-letter-generator/internal/logging"
	"github.com/fadilmartias/cover-letter-generator/internal/model"
	"github.com/fadilmartias/cover-letter-generator/internal/util"
	"github.com/tidwall/gjson"
)

const (
	placeholderCV  = "{cv}"
	placeholderJob = "{job}"
)

const coverLetterInstruction = `Generate a professional cover letter based on the CV and job description below. The cover letter should highlight relevant experience and skills from the CV that match the job requirements. Keep it concise and professional, under 300 words.

Resume Content:
%s

Job Description:
%s

Generate ONLY the cover letter body text, without any salutations, signatures, or formatting. Focus on making compelling connections between the candidate's experience and the job requirements.`

const editInstruction = `Edit this cover letter according to these instructions: "%s"

Current cover letter:
%s

Provide ONLY the edited cover letter text, without any additional text or formatting. Keep the professional tone and maintain relevance to the job requirements.`

const titleInstruction = `Extract ONLY the job title or role name from this job posting. Look specifically in the header or at the very beginning of the text for the main job title. Return ONLY the exact job title or role name, nothing else. Example job titles: "Senior Software Engineer", "Product Manager", "Marketing Director".

Text:
%s

Return ONLY the job title, no other text:`

const jobInfoInstruction = `Extract the following information from the job posting and return it in this exact JSON format:
{
  "title": "Job Title Here",
  "company": "Company Name Here",
  "deadline": "Application Deadline Here",
  "summary": "Summary of description"
}

Job posting:
%s`

const resumeAnalysisInstruction = `Provide a very brief analysis (max 50 words) of the key strengths in this resume: %s`

// CoverLetterService drafts, edits and labels cover letters through a
// TextGenerator. Inputs are truncated to the configured budget before any
// prompt is built.
type CoverLetterService struct {
	gen TextGenerator
	cfg *config.GenerationConfig
	log logging.Logger
}

func NewCoverLetterService(gen TextGenerator, cfg *config.GenerationConfig, log logging.Logger) *CoverLetterService {
	return &CoverLetterService{
		gen: gen,
		cfg: cfg,
		log: log.With("component", "cover_letter"),
	}
}

// BuildCoverLetterPrompt fills {cv} and {job} in template. An empty template
// falls back to the built-in instruction; a template without placeholders gets
// both texts appended.
func BuildCoverLetterPrompt(template, cv, job string) string {
	if strings.TrimSpace(template) == "" {
		return fmt.Sprintf(coverLetterInstruction, cv, job)
	}
	if !strings.Contains(template, placeholderCV) && !strings.Contains(template, placeholderJob) {
		template += "\n\nResume Content:\n" + placeholderCV + "\n\nJob Description:\n" + placeholderJob
	}
	return strings.NewReplacer(placeholderCV, cv, placeholderJob, job).Replace(template)
}

func (s *CoverLetterService) Generate(ctx context.Context, resumeText, jobText, template string) (string, error) {
	if strings.TrimSpace(resumeText) == "" || strings.TrimSpace(jobText) == "" {
		return "", fmt.Errorf("%w: both resume and job description are needed", common.ErrNotReady)
	}

	cv := util.Truncate(resumeText, s.cfg.TruncateChars)
	job := util.Truncate(jobText, s.cfg.TruncateChars)
	prompt := BuildCoverLetterPrompt(template, cv, job)

	raw, err := s.gen.Generate(ctx, NewGenerationRequest(s.cfg.CoverLetterModel, prompt, s.cfg.CoverLetter))
	if err != nil {
		return "", wrapGenerationErr(err)
	}
	letter := util.CleanCoverLetter(raw)
	if letter == "" {
		return "", fmt.Errorf("%w: empty cover letter", common.ErrGenerationFailed)
	}
	s.log.Info(ctx, "cover letter generated", "chars", len(letter))
	return letter, nil
}

func (s *CoverLetterService) EditWithInstruction(ctx context.Context, currentLetter, instruction string) (string, error) {
	if strings.TrimSpace(currentLetter) == "" || strings.TrimSpace(instruction) == "" {
		return "", fmt.Errorf("%w: letter and instruction are needed", common.ErrNotReady)
	}

	prompt := fmt.Sprintf(editInstruction,
		util.Truncate(strings.TrimSpace(instruction), s.cfg.TruncateChars),
		util.Truncate(currentLetter, s.cfg.TruncateChars))

	raw, err := s.gen.Generate(ctx, NewGenerationRequest(s.cfg.CoverLetterModel, prompt, s.cfg.Edit))
	if err != nil {
		return "", wrapGenerationErr(err)
	}
	letter := util.CleanCoverLetter(raw)
	if letter == "" {
		return "", fmt.Errorf("%w: empty edited letter", common.ErrGenerationFailed)
	}
	return letter, nil
}

// ExtractJobTitle never fails: any error or empty answer yields "Job Position".
func (s *CoverLetterService) ExtractJobTitle(ctx context.Context, jobText string) string {
	if strings.TrimSpace(jobText) == "" {
		return util.DefaultJobTitle
	}
	prompt := fmt.Sprintf(titleInstruction, util.Head(jobText, s.cfg.TitleChars))

	raw, err := s.gen.Generate(ctx, NewGenerationRequest(s.cfg.CoverLetterModel, prompt, s.cfg.Title))
	if err != nil {
		s.log.Warn(ctx, "job title extraction failed, using default", "error", err)
		return util.DefaultJobTitle
	}
	return util.CleanJobTitle(raw)
}

// ExtractJobInfo asks for a JSON summary of the posting and reads the first
// object in the answer.
func (s *CoverLetterService) ExtractJobInfo(ctx context.Context, jobText string) (*model.JobInfo, error) {
	if strings.TrimSpace(jobText) == "" {
		return nil, fmt.Errorf("%w: job text is empty", common.ErrNotReady)
	}
	prompt := fmt.Sprintf(jobInfoInstruction, util.Truncate(jobText, s.cfg.TruncateChars))

	params := s.cfg.CoverLetter
	params.Temperature = 0.2
	raw, err := s.gen.Generate(ctx, NewGenerationRequest(s.cfg.CoverLetterModel, prompt, params))
	if err != nil {
		return nil, wrapGenerationErr(err)
	}

	obj := util.FirstJSONObject(raw)
	if obj == "" || !gjson.Valid(obj) {
		return nil, fmt.Errorf("%w: no JSON found in response", common.ErrGenerationFailed)
	}
	info := &model.JobInfo{
		Title:    strings.TrimSpace(gjson.Get(obj, "title").String()),
		Company:  strings.TrimSpace(gjson.Get(obj, "company").String()),
		Deadline: strings.TrimSpace(gjson.Get(obj, "deadline").String()),
		Summary:  strings.TrimSpace(gjson.Get(obj, "summary").String()),
	}
	if info.Title == "" || info.Company == "" {
		return nil, fmt.Errorf("%w: invalid job info structure", common.ErrGenerationFailed)
	}
	return info, nil
}

// AnalyzeResume returns a short strengths summary in the chat register.
func (s *CoverLetterService) AnalyzeResume(ctx context.Context, resumeText string) (string, error) {
	if strings.TrimSpace(resumeText) == "" {
		return "", fmt.Errorf("%w: resume text is empty", common.ErrNotReady)
	}
	prompt := fmt.Sprintf(resumeAnalysisInstruction, util.Truncate(resumeText, s.cfg.TruncateChars))

	raw, err := s.gen.Generate(ctx, NewGenerationRequest(s.cfg.ChatModel, prompt, s.cfg.Chat))
	if err != nil {
		return "", wrapGenerationErr(err)
	}
	reply := util.CleanChatReply(raw)
	if reply == "" {
		return "", fmt.Errorf("%w: empty analysis", common.ErrGenerationFailed)
	}
	return reply, nil
}

func wrapGenerationErr(err error) error {
	if errors.Is(err, common.ErrGenerationFailed) {
		return err
	}
	return fmt.Errorf("%w: %w", common.ErrGenerationFailed, err)
}
