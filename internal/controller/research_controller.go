package controller

import (
	"ai-research-be/internal/dto"
	"ai-research-be/internal/pkg/serverutils"
	"ai-research-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IResearchController interface {
	RegisterRoutes(r fiber.Router)
	Start(ctx *fiber.Ctx) error
	Step(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Feedback(ctx *fiber.Ctx) error
	History(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type researchController struct {
	service service.IResearchService
}

func NewResearchController(service service.IResearchService) IResearchController {
	return &researchController{service: service}
}

func (c *researchController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/research/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("/sessions", c.Start)
	h.Get("/sessions/history", c.History)
	h.Get("/sessions/:id", c.Show)
	h.Post("/sessions/:id/step", c.Step)
	h.Post("/sessions/:id/feedback", c.Feedback)
	h.Delete("/sessions/:id", c.Delete)
}

func (c *researchController) Start(ctx *fiber.Ctx) error {
	var req dto.StartResearchRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.StartSession(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success start research session", res))
}

func (c *researchController) Step(ctx *fiber.Ctx) error {
	res, err := c.service.Step(ctx.Context(), ctx.Params("id"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success advance research session", res))
}

func (c *researchController) Show(ctx *fiber.Ctx) error {
	res, err := c.service.GetSession(ctx.Context(), ctx.Params("id"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show research session", res))
}

func (c *researchController) Feedback(ctx *fiber.Ctx) error {
	var req dto.FeedbackRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Feedback(ctx.Context(), ctx.Params("id"), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success apply feedback", res))
}

func (c *researchController) History(ctx *fiber.Ctx) error {
	limit := ctx.QueryInt("limit", 20)
	offset := ctx.QueryInt("offset", 0)

	res, err := c.service.GetHistory(ctx.Context(), limit, offset)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get research history", res))
}

func (c *researchController) Delete(ctx *fiber.Ctx) error {
	if err := c.service.DeleteSession(ctx.Context(), ctx.Params("id")); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete research session", nil))
}
