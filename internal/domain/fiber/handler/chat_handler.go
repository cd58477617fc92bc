package handler

import (
	"time"

	"github.com/fadilmartias/cover-letter-generator/internal/dto"
	"github.com/fadilmartias/cover-letter-generator/internal/middleware"
	"github.com/fadilmartias/cover-letter-generator/internal/usecase"
	"github.com/fadilmartias/cover-letter-generator/internal/util"
	"github.com/gofiber/fiber/v2"
)

type ChatHandler struct {
	uc *usecase.ChatUsecase
}

func NewChatHandler(uc *usecase.ChatUsecase) *ChatHandler {
	return &ChatHandler{uc: uc}
}

func (h *ChatHandler) RegisterRoutes(app *fiber.App) {
	chat := app.Group("/chat")
	chat.Post("/messages", middleware.RateLimiter(10, 1*time.Minute), h.Send)
	chat.Get("/messages", h.History)
	chat.Post("/resume", middleware.RateLimiter(10, 1*time.Minute), h.AnalyzeResume)
}

func (h *ChatHandler) Send(c *fiber.Ctx) error {
	var req dto.ChatMessageRequest
	if err := parseBody(c, &req); err != nil {
		return util.HandleError(c, "invalid request body", err)
	}
	if req.Message == "" {
		return util.HandleError(c, "message is required", util.NewFormError("message is required", map[string]string{
			"message": "required",
		}))
	}
	reply, err := h.uc.ProcessMessage(c.UserContext(), middleware.CurrentSession(c), req)
	if err != nil {
		return util.HandleError(c, "failed to process message", err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success process message",
		Data:    reply,
	})
}

func (h *ChatHandler) History(c *fiber.Ctx) error {
	messages, err := h.uc.History(c.UserContext(), middleware.CurrentSession(c), c.QueryInt("limit", 0))
	if err != nil {
		return util.HandleError(c, "failed to load chat history", err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get chat history",
		Data:    messages,
	})
}

func (h *ChatHandler) AnalyzeResume(c *fiber.Ctx) error {
	var req dto.AnalyzeResumeRequest
	if err := parseBody(c, &req); err != nil {
		return util.HandleError(c, "invalid request body", err)
	}
	reply, err := h.uc.AnalyzeResume(c.UserContext(), middleware.CurrentSession(c), req.ResumeText)
	if err != nil {
		return util.HandleError(c, "failed to analyze resume", err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success analyze resume",
		Data:    reply,
	})
}
