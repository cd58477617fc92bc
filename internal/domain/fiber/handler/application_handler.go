package handler

import (
	"github.com/fadilmartias/cover-letter-generator/internal/dto"
	"github.com/fadilmartias/cover-letter-generator/internal/middleware"
	"github.com/fadilmartias/cover-letter-generator/internal/usecase"
	"github.com/fadilmartias/cover-letter-generator/internal/util"
	"github.com/gofiber/fiber/v2"
)

type ApplicationHandler struct {
	uc *usecase.ApplicationUsecase
}

func NewApplicationHandler(uc *usecase.ApplicationUsecase) *ApplicationHandler {
	return &ApplicationHandler{uc: uc}
}

func (h *ApplicationHandler) RegisterRoutes(app *fiber.App) {
	apps := app.Group("/applications", middleware.RequireSession())
	apps.Post("/", h.Save)
	apps.Get("/", h.List)
	apps.Get("/stats", h.Stats)
	apps.Get("/:id", h.Get)
	apps.Get("/:id/related", h.Related)
	apps.Patch("/:id/status", h.UpdateStatus)
	apps.Patch("/:id/title", h.UpdateTitle)
	apps.Patch("/:id/cover-letter", h.UpdateCoverLetter)
	apps.Delete("/:id", h.Delete)
}

func (h *ApplicationHandler) Save(c *fiber.Ctx) error {
	var req dto.SaveApplicationRequest
	if err := parseBody(c, &req); err != nil {
		return util.HandleError(c, "invalid request body", err)
	}
	app, err := h.uc.Save(c.UserContext(), middleware.CurrentSession(c), req)
	if err != nil {
		return util.HandleError(c, "failed to save application", err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success save application",
		Data:    app,
	})
}

func (h *ApplicationHandler) List(c *fiber.Ctx) error {
	apps, pagination, err := h.uc.List(c.UserContext(), middleware.CurrentSession(c),
		c.QueryInt("page", 1), c.QueryInt("page_size", 0))
	if err != nil {
		return util.HandleError(c, "failed to list applications", err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message:    "Success list applications",
		Data:       apps,
		Pagination: pagination,
	})
}

func (h *ApplicationHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.uc.Stats(c.UserContext(), middleware.CurrentSession(c))
	if err != nil {
		return util.HandleError(c, "failed to count applications", err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get application stats",
		Data:    stats,
	})
}

func (h *ApplicationHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return util.HandleError(c, "invalid id", err)
	}
	app, err := h.uc.Get(c.UserContext(), middleware.CurrentSession(c), id)
	if err != nil {
		return util.HandleError(c, "application not found", err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get application",
		Data:    app,
	})
}

func (h *ApplicationHandler) Related(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return util.HandleError(c, "invalid id", err)
	}
	apps, err := h.uc.Related(c.UserContext(), middleware.CurrentSession(c), id, c.QueryInt("limit", 0))
	if err != nil {
		return util.HandleError(c, "failed to find related applications", err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get related applications",
		Data:    apps,
	})
}

func (h *ApplicationHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return util.HandleError(c, "invalid id", err)
	}
	var req dto.UpdateStatusRequest
	if err := parseBody(c, &req); err != nil {
		return util.HandleError(c, "invalid request body", err)
	}
	if err := h.uc.UpdateStatus(c.UserContext(), middleware.CurrentSession(c), id, req.Status); err != nil {
		return util.HandleError(c, "failed to update status", err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success update status",
	})
}

func (h *ApplicationHandler) UpdateTitle(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return util.HandleError(c, "invalid id", err)
	}
	var req dto.UpdateTitleRequest
	if err := parseBody(c, &req); err != nil {
		return util.HandleError(c, "invalid request body", err)
	}
	if err := h.uc.UpdateTitle(c.UserContext(), middleware.CurrentSession(c), id, req.JobTitle); err != nil {
		return util.HandleError(c, "failed to update job title", err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success update job title",
	})
}

func (h *ApplicationHandler) UpdateCoverLetter(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return util.HandleError(c, "invalid id", err)
	}
	var req dto.UpdateCoverLetterRequest
	if err := parseBody(c, &req); err != nil {
		return util.HandleError(c, "invalid request body", err)
	}
	if err := h.uc.UpdateCoverLetter(c.UserContext(), middleware.CurrentSession(c), id, req.CoverLetter); err != nil {
		return util.HandleError(c, "failed to update cover letter", err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success update cover letter",
	})
}

func (h *ApplicationHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return util.HandleError(c, "invalid id", err)
	}
	if err := h.uc.Delete(c.UserContext(), middleware.CurrentSession(c), id); err != nil {
		return util.HandleError(c, "failed to delete application", err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success delete application",
	})
}
