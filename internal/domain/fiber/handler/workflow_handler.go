package handler

import (
	"time"

	"github.com/fadilmartias/cover-letter-generator/internal/common"
	"github.com/fadilmartias/cover-letter-generator/internal/dto"
	"github.com/fadilmartias/cover-letter-generator/internal/middleware"
	"github.com/fadilmartias/cover-letter-generator/internal/usecase"
	"github.com/fadilmartias/cover-letter-generator/internal/util"
	"github.com/fadilmartias/cover-letter-generator/internal/workflow"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type WorkflowHandler struct {
	store *workflow.Store
	apps  *usecase.ApplicationUsecase
}

func NewWorkflowHandler(store *workflow.Store, apps *usecase.ApplicationUsecase) *WorkflowHandler {
	return &WorkflowHandler{store: store, apps: apps}
}

func (h *WorkflowHandler) RegisterRoutes(app *fiber.App) {
	wf := app.Group("/workflows")
	wf.Post("/", h.Create)
	wf.Get("/:id", h.Get)
	wf.Post("/:id/job", h.LoadJob)
	wf.Post("/:id/resume", h.AttachResume)
	wf.Put("/:id/template", h.SetTemplate)
	wf.Post("/:id/generate", middleware.RateLimiter(1, 4*time.Second), h.Generate)
	wf.Post("/:id/skip", h.Skip)
	wf.Put("/:id/letter", h.EditLetter)
	wf.Post("/:id/refine", middleware.RateLimiter(1, 4*time.Second), h.Refine)
	wf.Post("/:id/save", middleware.RequireSession(), h.Save)
}

func (h *WorkflowHandler) Create(c *fiber.Ctx) error {
	ctrl, err := h.store.Create()
	if err != nil {
		return util.HandleError(c, "failed to create workflow", err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusCreated,
		Message: "Success create workflow",
		Data:    workflowDTO(ctrl.Snapshot()),
	})
}

func (h *WorkflowHandler) Get(c *fiber.Ctx) error {
	ctrl, err := h.controller(c)
	if err != nil {
		return util.HandleError(c, "workflow not found", err)
	}
	return h.respond(c, ctrl, "Success get workflow")
}

func (h *WorkflowHandler) LoadJob(c *fiber.Ctx) error {
	ctrl, err := h.controller(c)
	if err != nil {
		return util.HandleError(c, "workflow not found", err)
	}
	var req dto.LoadJobRequest
	if err := parseBody(c, &req); err != nil {
		return util.HandleError(c, "invalid request body", err)
	}
	if err := ctrl.LoadJob(c.UserContext(), req.URL); err != nil {
		return util.HandleError(c, "failed to load job posting", err)
	}
	return h.respond(c, ctrl, "Success load job posting")
}

func (h *WorkflowHandler) AttachResume(c *fiber.Ctx) error {
	ctrl, err := h.controller(c)
	if err != nil {
		return util.HandleError(c, "workflow not found", err)
	}
	upload, err := resumeUpload(c)
	if err != nil {
		return util.HandleError(c, "resume file is required", err)
	}
	if err := ctrl.AttachResume(c.UserContext(), upload); err != nil {
		return util.HandleError(c, "failed to read resume", err)
	}
	return h.respond(c, ctrl, "Success upload resume")
}

func (h *WorkflowHandler) SetTemplate(c *fiber.Ctx) error {
	ctrl, err := h.controller(c)
	if err != nil {
		return util.HandleError(c, "workflow not found", err)
	}
	var req dto.TemplateRequest
	if err := parseBody(c, &req); err != nil {
		return util.HandleError(c, "invalid request body", err)
	}
	if err := ctrl.SetTemplate(req.Template); err != nil {
		return util.HandleError(c, "failed to set template", err)
	}
	return h.respond(c, ctrl, "Success set template")
}

func (h *WorkflowHandler) Generate(c *fiber.Ctx) error {
	ctrl, err := h.controller(c)
	if err != nil {
		return util.HandleError(c, "workflow not found", err)
	}
	if err := ctrl.Generate(c.UserContext()); err != nil {
		return util.HandleError(c, "failed to generate cover letter", err)
	}
	return h.respond(c, ctrl, "Success generate cover letter")
}

func (h *WorkflowHandler) Skip(c *fiber.Ctx) error {
	ctrl, err := h.controller(c)
	if err != nil {
		return util.HandleError(c, "workflow not found", err)
	}
	if err := ctrl.Skip(); err != nil {
		return util.HandleError(c, "cannot skip generation", err)
	}
	return h.respond(c, ctrl, "Success skip generation")
}

func (h *WorkflowHandler) EditLetter(c *fiber.Ctx) error {
	ctrl, err := h.controller(c)
	if err != nil {
		return util.HandleError(c, "workflow not found", err)
	}
	var req dto.EditLetterRequest
	if err := parseBody(c, &req); err != nil {
		return util.HandleError(c, "invalid request body", err)
	}
	if err := ctrl.EditLetter(req.CoverLetter); err != nil {
		return util.HandleError(c, "failed to edit cover letter", err)
	}
	return h.respond(c, ctrl, "Success edit cover letter")
}

func (h *WorkflowHandler) Refine(c *fiber.Ctx) error {
	ctrl, err := h.controller(c)
	if err != nil {
		return util.HandleError(c, "workflow not found", err)
	}
	var req dto.RefineRequest
	if err := parseBody(c, &req); err != nil {
		return util.HandleError(c, "invalid request body", err)
	}
	if err := ctrl.Refine(c.UserContext(), req.Instruction); err != nil {
		return util.HandleError(c, "failed to refine cover letter", err)
	}
	return h.respond(c, ctrl, "Success refine cover letter")
}

// Save stores the finished session as an application. Saving again updates
// the same record.
func (h *WorkflowHandler) Save(c *fiber.Ctx) error {
	ctrl, err := h.controller(c)
	if err != nil {
		return util.HandleError(c, "workflow not found", err)
	}
	app, err := ctrl.Application()
	if err != nil {
		return util.HandleError(c, "cover letter is not ready to save", err)
	}

	req := dto.SaveApplicationRequest{
		JobDescription: app.JobDescription,
		CvContent:      app.CvContent,
		CoverLetter:    app.CoverLetter,
		JobURL:         app.JobURL,
		JobTitle:       app.JobTitle,
		Status:         string(app.Status),
	}
	if app.ID != uuid.Nil {
		req.ID = &app.ID
	}
	saved, err := h.apps.Save(c.UserContext(), middleware.CurrentSession(c), req)
	if err != nil {
		return util.HandleError(c, "failed to save application", err)
	}
	ctrl.MarkSaved(saved.ID)
	return h.respond(c, ctrl, "Success save application")
}

func (h *WorkflowHandler) controller(c *fiber.Ctx) (*workflow.Controller, error) {
	id, err := paramID(c)
	if err != nil {
		return nil, err
	}
	return h.store.Get(id)
}

func (h *WorkflowHandler) respond(c *fiber.Ctx, ctrl *workflow.Controller, message string) error {
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: message,
		Data:    workflowDTO(ctrl.Snapshot()),
	})
}

func workflowDTO(s workflow.Snapshot) dto.WorkflowDTO {
	out := dto.WorkflowDTO{
		ID:            s.ID,
		Stage:         string(s.DisplayStage()),
		JobURL:        s.JobURL,
		KeyDetails:    s.KeyDetails,
		Template:      s.Template,
		CanGenerate:   s.CanGenerate(),
		Busy:          s.Busy,
		ApplicationID: s.ApplicationID,
		History:       make([]dto.StatusDTO, 0, len(s.History)),
	}
	if s.Err != nil {
		out.Error = errorMessage(s.Err)
	}
	if s.Job != nil {
		out.JobTitle = s.Job.ExtractedTitle
		out.JobText = s.Job.CleanedText
	}
	if s.Resume != nil {
		out.ResumeFileName = s.Resume.FileName
		out.ResumeText = s.Resume.ExtractedText
	}
	if s.Letter != nil {
		out.CoverLetter = s.Letter.BodyText
		out.EditedByUser = s.Letter.EditedByUser
	}
	for _, e := range s.History {
		out.History = append(out.History, dto.StatusDTO{
			Code:    e.Status.Code(),
			Message: e.Status.Message(),
			At:      e.At,
		})
	}
	if n := len(out.History); n > 0 {
		last := out.History[n-1]
		out.Status = &last
	}
	return out
}

// errorMessage prefers the bare taxonomy message over the wrapped detail.
func errorMessage(err error) string {
	if kind := common.Kind(err); kind != nil {
		return kind.Error()
	}
	return err.Error()
}
