package controller

import (
	"kisansetu-be/internal/dto"
	"kisansetu-be/internal/pkg/serverutils"
	"kisansetu-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAdvisoryController interface {
	RegisterRoutes(r fiber.Router)
	CreateSession(ctx *fiber.Ctx) error
	Ask(ctx *fiber.Ctx) error
	History(ctx *fiber.Ctx) error
	Soil(ctx *fiber.Ctx) error
	DeleteSession(ctx *fiber.Ctx) error
}

type advisoryController struct {
	service service.IAdvisoryService
}

func NewAdvisoryController(service service.IAdvisoryService) IAdvisoryController {
	return &advisoryController{service: service}
}

func (c *advisoryController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/advisory/v1")
	h.Post("/sessions", c.CreateSession)
	h.Post("/sessions/:id/ask", c.Ask)
	h.Get("/sessions/:id/history", c.History)
	h.Get("/sessions/:id/soil", c.Soil)
	h.Delete("/sessions/:id", c.DeleteSession)
}

func (c *advisoryController) CreateSession(ctx *fiber.Ctx) error {
	res, err := c.service.CreateSession(ctx.Context(), "")
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Session created", res))
}

func (c *advisoryController) Ask(ctx *fiber.Ctx) error {
	var req dto.AskRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Ask(ctx.UserContext(), ctx.Params("id"), &req)
	if err != nil {
		return err
	}
	return respond(ctx, "Question answered", res.ErrorCode, res)
}

func (c *advisoryController) History(ctx *fiber.Ctx) error {
	res, err := c.service.History(ctx.Context(), ctx.Params("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get history", res))
}

func (c *advisoryController) Soil(ctx *fiber.Ctx) error {
	res, err := c.service.Soil(ctx.Context(), ctx.Params("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get soil profile", res))
}

func (c *advisoryController) DeleteSession(ctx *fiber.Ctx) error {
	if err := c.service.DeleteSession(ctx.Context(), ctx.Params("id")); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Session deleted", nil))
}
