package controller

import (
	"kisansetu-be/internal/dto"
	"kisansetu-be/internal/pkg/serverutils"
	"kisansetu-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IProfileController interface {
	RegisterRoutes(r fiber.Router)
	Register(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Latest(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Me(ctx *fiber.Ctx) error
	SearchPhone(ctx *fiber.Ctx) error
	SearchName(ctx *fiber.Ctx) error
	Nearby(ctx *fiber.Ctx) error
	Stats(ctx *fiber.Ctx) error
}

type profileController struct {
	service service.IProfileService
}

func NewProfileController(service service.IProfileService) IProfileController {
	return &profileController{service: service}
}

func (c *profileController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/profile/v1")
	h.Post("", c.Register)
	h.Get("", c.List)
	h.Get("/latest", c.Latest)
	h.Get("/stats", c.Stats)
	h.Get("/nearby", c.Nearby)
	h.Get("/me", serverutils.JwtMiddleware, c.Me)
	h.Get("/search/phone/:phone", c.SearchPhone)
	h.Get("/search/name/:name", c.SearchName)
	h.Get("/:id", c.Show)
}

func (c *profileController) Register(ctx *fiber.Ctx) error {
	var req dto.RegisterProfileRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Register(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Profile registered", res))
}

func (c *profileController) List(ctx *fiber.Ctx) error {
	var req dto.ListProfilesRequest
	if err := ctx.QueryParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid query")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.List(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get profiles", res))
}

func (c *profileController) Latest(ctx *fiber.Ctx) error {
	res, err := c.service.Latest(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get latest profile", res))
}

func (c *profileController) Show(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid profile id")
	}

	res, err := c.service.GetByID(ctx.Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get profile", res))
}

func (c *profileController) Me(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, err := uuid.Parse(userIdStr)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid claims")
	}

	res, err := c.service.GetByID(ctx.Context(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get profile", res))
}

func (c *profileController) SearchPhone(ctx *fiber.Ctx) error {
	res, err := c.service.FindByPhone(ctx.Context(), ctx.Params("phone"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get profile", res))
}

func (c *profileController) SearchName(ctx *fiber.Ctx) error {
	res, err := c.service.SearchByName(ctx.Context(), ctx.Params("name"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success search profiles", res))
}

func (c *profileController) Nearby(ctx *fiber.Ctx) error {
	lat, lng, err := coordinatesQuery(ctx)
	if err != nil {
		return err
	}
	req := dto.NearbyRequest{Latitude: lat, Longitude: lng, RadiusKm: ctx.QueryFloat("radius", 0)}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Nearby(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get nearby profiles", res))
}

func (c *profileController) Stats(ctx *fiber.Ctx) error {
	res, err := c.service.Stats(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get stats", res))
}
