package server

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

// Message is the frame exchanged over the query websocket. The client
// sends {"type":"question","content":...}; the server answers with a
// run of "stream" frames followed by "done", or a single "error".
type Message struct {
	Type    string `json:"type"`
	Content string `json:"content,omitempty"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Same-origin policy is the browser's concern; tokens gate access.
	CheckOrigin: func(r *http.Request) bool { return true },
}

func (s *Server) websocket(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	ctx := c.Request().Context()
	tenant := tenantID(c)

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Printf("websocket read: %v", err)
			}
			return nil
		}
		if msg.Type != "question" {
			continue
		}

		stream, err := s.engine.AnswerStream(ctx, msg.Content, tenant)
		if err != nil {
			if werr := conn.WriteJSON(Message{Type: "error", Content: err.Error()}); werr != nil {
				return nil
			}
			continue
		}

		for chunk := range stream {
			if err := conn.WriteJSON(Message{Type: "stream", Content: chunk}); err != nil {
				return nil
			}
		}
		if err := conn.WriteJSON(Message{Type: "done"}); err != nil {
			return nil
		}
	}
}
