package stream

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// RegisterRoutes exposes the live event feed: a websocket per session at
// /ws/:sessionID carrying the JSON EventMessage stream. Inbound frames are
// drained only to notice the peer going away.
func RegisterRoutes(r fiber.Router, hub *Hub) {
	r.Get("/ws/:sessionID", websocket.New(func(conn *websocket.Conn) {
		subscriber := hub.Register(conn.Params("sessionID"))

		writerDone := make(chan struct{})
		go func() {
			defer close(writerDone)
			for payload := range subscriber.Send {
				if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
					return
				}
			}
		}()

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}

		// Unregister closes Send, which lets the writer drain and exit.
		hub.Unregister(subscriber)
		<-writerDone
	}))
}
