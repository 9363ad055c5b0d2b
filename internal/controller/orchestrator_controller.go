package controller

import (
	"ai-orchestra-be/internal/dto"
	"ai-orchestra-be/internal/pkg/serverutils"
	"ai-orchestra-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IOrchestratorController interface {
	RegisterRoutes(r fiber.Router)
	Submit(ctx *fiber.Ctx) error
	GetConversations(ctx *fiber.Ctx) error
	ShowConversation(ctx *fiber.Ctx) error
	GetResponses(ctx *fiber.Ctx) error
	ContinueWorkflow(ctx *fiber.Ctx) error
	Verify(ctx *fiber.Ctx) error
	ShareCritique(ctx *fiber.Ctx) error
	Award(ctx *fiber.Ctx) error
	GetProviders(ctx *fiber.Ctx) error
}

type orchestratorController struct {
	service service.IOrchestratorService
}

func NewOrchestratorController(service service.IOrchestratorService) IOrchestratorController {
	return &orchestratorController{service: service}
}

func (c *orchestratorController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/orchestrator/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("/query", c.Submit)
	h.Get("/providers", c.GetProviders)
	h.Get("/conversations", c.GetConversations)
	h.Get("/conversations/:id", c.ShowConversation)
	h.Get("/conversations/:id/responses", c.GetResponses)
	h.Post("/conversations/:id/continue", c.ContinueWorkflow)
	h.Post("/responses/:id/verify", c.Verify)
	h.Post("/responses/:id/share-critique", c.ShareCritique)
	h.Post("/responses/:id/award", c.Award)
}

func (c *orchestratorController) Submit(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.SubmitQueryRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Submit(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success submit query", res))
}

func (c *orchestratorController) GetConversations(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	res, err := c.service.GetConversations(ctx.Context(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get all conversations", res))
}

func (c *orchestratorController) ShowConversation(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)
	idParam := ctx.Params("id")
	id, _ := uuid.Parse(idParam)

	res, err := c.service.GetConversation(ctx.Context(), userId, id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show conversation", res))
}

func (c *orchestratorController) GetResponses(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)
	idParam := ctx.Params("id")
	id, _ := uuid.Parse(idParam)

	res, err := c.service.GetResponses(ctx.Context(), userId, id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get responses", res))
}

func (c *orchestratorController) ContinueWorkflow(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)
	idParam := ctx.Params("id")
	id, _ := uuid.Parse(idParam)

	res, err := c.service.ContinueWorkflow(ctx.Context(), userId, id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success continue workflow", res))
}

func (c *orchestratorController) Verify(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)
	idParam := ctx.Params("id")
	id, _ := uuid.Parse(idParam)

	var req dto.VerifyResponseRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	req.ResponseId = id

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Verify(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success verify response", res))
}

func (c *orchestratorController) ShareCritique(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)
	idParam := ctx.Params("id")
	id, _ := uuid.Parse(idParam)

	res, err := c.service.ShareCritique(ctx.Context(), userId, id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success share critique", res))
}

func (c *orchestratorController) Award(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)
	idParam := ctx.Params("id")
	id, _ := uuid.Parse(idParam)

	var req dto.AwardResponseRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	req.ResponseId = id

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.AwardResponse(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success award response", res))
}

func (c *orchestratorController) GetProviders(ctx *fiber.Ctx) error {
	res, err := c.service.GetProviders(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get providers", res))
}
