package controller

import (
	ws "kisansetu-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

type IWebSocketController interface {
	RegisterRoutes(r fiber.Router)
}

type webSocketController struct {
	hub *ws.Hub
}

func NewWebSocketController(hub *ws.Hub) IWebSocketController {
	return &webSocketController{hub: hub}
}

func (c *webSocketController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/ws")
	h.Use(func(ctx *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(ctx) {
			return ctx.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	h.Get("/sessions/:id", websocket.New(func(conn *websocket.Conn) {
		ws.ServeWs(c.hub, conn, conn.Params("id"))
	}))
}
