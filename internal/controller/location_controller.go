package controller

import (
	"kisansetu-be/internal/pkg/serverutils"
	"kisansetu-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ILocationController interface {
	RegisterRoutes(r fiber.Router)
	Reverse(ctx *fiber.Ctx) error
	Weather(ctx *fiber.Ctx) error
	Home(ctx *fiber.Ctx) error
}

type locationController struct {
	service service.ILocationService
	home    service.IHomeService
}

func NewLocationController(service service.ILocationService, home service.IHomeService) ILocationController {
	return &locationController{service: service, home: home}
}

func (c *locationController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/location/v1")
	h.Get("/reverse", c.Reverse)
	h.Get("/weather", c.Weather)
	h.Get("/home", c.Home)
}

func (c *locationController) Reverse(ctx *fiber.Ctx) error {
	lat, lng, err := coordinatesQuery(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.ReversePlace(ctx.UserContext(), lat, lng, ctx.Query("name"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success reverse geocode", res))
}

func (c *locationController) Weather(ctx *fiber.Ctx) error {
	lat, lng, err := coordinatesQuery(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.CurrentWeather(ctx.UserContext(), lat, lng)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get weather", res))
}

func (c *locationController) Home(ctx *fiber.Ctx) error {
	res, err := c.home.Home(ctx.UserContext())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get home", res))
}
