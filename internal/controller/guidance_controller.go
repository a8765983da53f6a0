package controller

import (
	"ai-guidance-be/internal/dto"
	"ai-guidance-be/internal/pkg/serverutils"
	"ai-guidance-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IGuidanceController interface {
	RegisterRoutes(r fiber.Router)
	Synthesize(ctx *fiber.Ctx) error
	Continue(ctx *fiber.Ctx) error
	GetConversation(ctx *fiber.Ctx) error
	DeleteConversation(ctx *fiber.Ctx) error
}

type guidanceController struct {
	guidanceService service.IGuidanceService
}

func NewGuidanceController(guidanceService service.IGuidanceService) IGuidanceController {
	return &guidanceController{
		guidanceService: guidanceService,
	}
}

func (c *guidanceController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/guidance/v1")
	h.Post("synthesize", c.Synthesize)
	h.Post("continue", c.Continue)
	h.Get("conversation/:sessionId", c.GetConversation)
	h.Delete("conversation/:sessionId", c.DeleteConversation)
}

func (c *guidanceController) Synthesize(ctx *fiber.Ctx) error {
	var req dto.SynthesizeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.guidanceService.Synthesize(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success synthesize guidance", res))
}

func (c *guidanceController) Continue(ctx *fiber.Ctx) error {
	var req dto.ContinueRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.guidanceService.Continue(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success continue conversation", res))
}

func (c *guidanceController) GetConversation(ctx *fiber.Ctx) error {
	sessionID := ctx.Params("sessionId")
	limit := ctx.QueryInt("limit", 0)
	offset := ctx.QueryInt("offset", 0)

	res, err := c.guidanceService.GetConversation(ctx.Context(), sessionID, limit, offset)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get conversation", res))
}

func (c *guidanceController) DeleteConversation(ctx *fiber.Ctx) error {
	sessionID := ctx.Params("sessionId")

	if err := c.guidanceService.DeleteSession(ctx.Context(), sessionID); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete conversation", nil))
}
