package realtime

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"academy/middleware"
)

// SetupRealtimeRoutes registers the WebSocket endpoints that bridge the
// hub to connected clients. Clients authenticate with a ?token= query
// parameter since browsers cannot set headers on WebSocket upgrades.
func SetupRealtimeRoutes(app *fiber.App, hub *Hub) {
	app.Use("/ws", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		userID, _, err := middleware.ParseToken(c.Query("token"))
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"status":  false,
				"message": "Invalid or expired token",
			})
		}
		c.Locals("userId", userID)
		return c.Next()
	})

	app.Get("/ws/notifications", websocket.New(func(conn *websocket.Conn) {
		userID := conn.Locals("userId").(uint)
		serveChannel(conn, hub, NotificationChannel(userID))
	}))

	app.Get("/ws/progress/:course_id", websocket.New(func(conn *websocket.Conn) {
		userID := conn.Locals("userId").(uint)
		courseID, err := strconv.Atoi(conn.Params("course_id"))
		if err != nil || courseID <= 0 {
			conn.Close()
			return
		}
		serveChannel(conn, hub, ProgressChannel(userID, uint(courseID)))
	}))
}

// serveChannel pumps hub messages to the socket until the client goes
// away. Reads are discarded; the protocol is push-only.
func serveChannel(conn *websocket.Conn, hub *Hub, channel string) {
	sub := hub.Subscribe(channel)
	defer hub.Unsubscribe(channel, sub)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case msg, ok := <-sub.Messages:
			if !ok {
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
