package handler

import (
	"github.com/fadilmartias/cover-letter-generator/internal/middleware"
	"github.com/fadilmartias/cover-letter-generator/internal/usecase"
	"github.com/fadilmartias/cover-letter-generator/internal/util"
	"github.com/gofiber/fiber/v2"
)

type ProfileHandler struct {
	uc *usecase.ProfileUsecase
}

func NewProfileHandler(uc *usecase.ProfileUsecase) *ProfileHandler {
	return &ProfileHandler{uc: uc}
}

func (h *ProfileHandler) RegisterRoutes(app *fiber.App) {
	profile := app.Group("/profile", middleware.RequireSession())
	profile.Get("/resume", h.GetResume)
	profile.Put("/resume", h.UploadResume)
	profile.Delete("/resume", h.DeleteResume)
}

func (h *ProfileHandler) GetResume(c *fiber.Ctx) error {
	profile, err := h.uc.GetResume(c.UserContext(), middleware.CurrentSession(c))
	if err != nil {
		return util.HandleError(c, "no resume stored", err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get resume",
		Data:    profile,
	})
}

func (h *ProfileHandler) UploadResume(c *fiber.Ctx) error {
	upload, err := resumeUpload(c)
	if err != nil {
		return util.HandleError(c, "resume file is required", err)
	}
	profile, err := h.uc.UploadResume(c.UserContext(), middleware.CurrentSession(c), upload)
	if err != nil {
		return util.HandleError(c, "failed to upload resume", err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success upload resume",
		Data:    profile,
	})
}

func (h *ProfileHandler) DeleteResume(c *fiber.Ctx) error {
	if err := h.uc.DeleteResume(c.UserContext(), middleware.CurrentSession(c)); err != nil {
		return util.HandleError(c, "failed to delete resume", err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success delete resume",
	})
}
