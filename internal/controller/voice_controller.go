package controller

import (
	"io"

	"kisansetu-be/internal/dto"
	"kisansetu-be/internal/pkg/serverutils"
	"kisansetu-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IVoiceController interface {
	RegisterRoutes(r fiber.Router)
	Start(ctx *fiber.Ctx) error
	Audio(ctx *fiber.Ctx) error
	Stop(ctx *fiber.Ctx) error
	Cancel(ctx *fiber.Ctx) error
	Interrupt(ctx *fiber.Ctx) error
	State(ctx *fiber.Ctx) error
}

type voiceController struct {
	service service.IVoiceService
}

func NewVoiceController(service service.IVoiceService) IVoiceController {
	return &voiceController{service: service}
}

func (c *voiceController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/voice/v1/sessions/:id")
	h.Post("/start", c.Start)
	h.Post("/audio", c.Audio)
	h.Post("/stop", c.Stop)
	h.Post("/cancel", c.Cancel)
	h.Post("/interrupt", c.Interrupt)
	h.Get("/state", c.State)
}

func (c *voiceController) Start(ctx *fiber.Ctx) error {
	var req dto.StartRecordingRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	res, err := c.service.Start(ctx.UserContext(), ctx.Params("id"), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Recording started", res))
}

func (c *voiceController) Audio(ctx *fiber.Ctx) error {
	file, err := ctx.FormFile("audio")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "audio file is required")
	}

	f, err := file.Open()
	if err != nil {
		return err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return err
	}

	res, err := c.service.UploadAudio(ctx.UserContext(), ctx.Params("id"), file.Filename, data)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Audio received", res))
}

func (c *voiceController) Stop(ctx *fiber.Ctx) error {
	res, err := c.service.Stop(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return err
	}
	return respond(ctx, "Recording processed", res.ErrorCode, res)
}

func (c *voiceController) Cancel(ctx *fiber.Ctx) error {
	res, err := c.service.Cancel(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Recording cancelled", res))
}

func (c *voiceController) Interrupt(ctx *fiber.Ctx) error {
	res, err := c.service.Interrupt(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Speech interrupted", res))
}

func (c *voiceController) State(ctx *fiber.Ctx) error {
	res, err := c.service.State(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get voice state", res))
}
