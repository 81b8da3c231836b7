package controller

import (
	"strconv"

	"kisansetu-be/internal/pkg/serverutils"

	"github.com/gofiber/fiber/v2"
)

// coordinatesQuery reads the required lat and lng query parameters.
func coordinatesQuery(ctx *fiber.Ctx) (float64, float64, error) {
	lat, err := strconv.ParseFloat(ctx.Query("lat"), 64)
	if err != nil || lat < -90 || lat > 90 {
		return 0, 0, fiber.NewError(fiber.StatusBadRequest, "lat must be a number between -90 and 90")
	}
	lng, err := strconv.ParseFloat(ctx.Query("lng"), 64)
	if err != nil || lng < -180 || lng > 180 {
		return 0, 0, fiber.NewError(fiber.StatusBadRequest, "lng must be a number between -180 and 180")
	}
	return lat, lng, nil
}

// respond writes a success envelope, or a degraded one when errorCode is set.
func respond(ctx *fiber.Ctx, message, errorCode string, data interface{}) error {
	if errorCode != "" {
		return ctx.JSON(serverutils.DegradedResponse(message, errorCode, data))
	}
	return ctx.JSON(serverutils.SuccessResponse(message, data))
}
