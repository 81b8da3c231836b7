package controller

import (
	"io"

	"kisansetu-be/internal/pkg/serverutils"
	"kisansetu-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IDiseaseController interface {
	RegisterRoutes(r fiber.Router)
	Detect(ctx *fiber.Ctx) error
}

type diseaseController struct {
	service service.IDiseaseService
}

func NewDiseaseController(service service.IDiseaseService) IDiseaseController {
	return &diseaseController{service: service}
}

func (c *diseaseController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/disease/v1")
	h.Post("/detect", c.Detect)
}

func (c *diseaseController) Detect(ctx *fiber.Ctx) error {
	file, err := ctx.FormFile("image")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "image file is required")
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

	res, err := c.service.Detect(ctx.UserContext(), data, file.Header.Get("Content-Type"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Image analysed", res))
}
