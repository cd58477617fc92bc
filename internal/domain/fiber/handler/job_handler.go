package handler

import (
	"time"

	"github.com/fadilmartias/cover-letter-generator/internal/dto"
	"github.com/fadilmartias/cover-letter-generator/internal/middleware"
	"github.com/fadilmartias/cover-letter-generator/internal/service"
	"github.com/fadilmartias/cover-letter-generator/internal/util"
	"github.com/gofiber/fiber/v2"
)

type JobHandler struct {
	fetcher service.JobFetcher
	letters *service.CoverLetterService
}

func NewJobHandler(fetcher service.JobFetcher, letters *service.CoverLetterService) *JobHandler {
	return &JobHandler{fetcher: fetcher, letters: letters}
}

func (h *JobHandler) RegisterRoutes(app *fiber.App) {
	jobs := app.Group("/jobs")
	jobs.Post("/title", h.Title)
	jobs.Post("/info", middleware.RateLimiter(1, 4*time.Second), h.Info)
}

// Title never fails on provider errors, it falls back to the default title.
func (h *JobHandler) Title(c *fiber.Ctx) error {
	var req dto.JobTitleRequest
	if err := parseBody(c, &req); err != nil {
		return util.HandleError(c, "invalid request body", err)
	}
	title := h.letters.ExtractJobTitle(c.UserContext(), req.JobText)
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success extract job title",
		Data:    fiber.Map{"job_title": title},
	})
}

func (h *JobHandler) Info(c *fiber.Ctx) error {
	var req dto.LoadJobRequest
	if err := parseBody(c, &req); err != nil {
		return util.HandleError(c, "invalid request body", err)
	}
	job, err := h.fetcher.FetchJobPosting(c.UserContext(), req.URL)
	if err != nil {
		return util.HandleError(c, "failed to fetch job posting", err)
	}
	info, err := h.letters.ExtractJobInfo(c.UserContext(), job.CleanedText)
	if err != nil {
		return util.HandleError(c, "failed to extract job info", err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success extract job info",
		Data:    info,
	})
}
