package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/xhad/buddy/internal/logger"
	"github.com/xhad/buddy/pkg/format"
	"github.com/xhad/buddy/pkg/pipeline"
)

// handleWebSocket answers queries one at a time per connection. A query
// sent while another is being answered waits for it to finish.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ctx = logger.ContextWithLogger(ctx, log)

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn("Error reading message", zap.Error(err))
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(payload, &msg); err != nil {
			log.Warn("Skipping malformed message", zap.Error(err), zap.Int("bytes", len(payload)))
			if err := s.send(conn, Message{Type: TypeError, Content: "malformed message"}); err != nil {
				return
			}
			continue
		}

		if msg.Type != TypeQuery && msg.Type != "" {
			log.Warn("Skipping unknown message type", zap.String("type", msg.Type))
			if err := s.send(conn, Message{Type: TypeError, Content: "unknown message type: " + msg.Type}); err != nil {
				return
			}
			continue
		}

		if err := s.answer(ctx, conn, msg.Content); err != nil {
			log.Warn("Closing connection", zap.Error(err))
			return
		}
	}
}

// answer runs the pipeline and streams the presented chunks. Only write
// failures are returned; pipeline failures are reported to the client.
func (s *Server) answer(ctx context.Context, conn *websocket.Conn, query string) error {
	log := logger.FromContext(ctx)

	if err := s.send(conn, Message{Type: TypeStatus, Content: "Thinking..."}); err != nil {
		return err
	}

	res, err := s.answerer.Run(ctx, pipeline.NewRequest(strings.TrimSpace(query)))
	if err != nil {
		log.Error("Failed to answer query", zap.Error(err))
		return s.send(conn, Message{Type: TypeError, Content: err.Error()})
	}

	err = s.presenter.Present(ctx, res.Chunks, func(f format.Frame) error {
		return s.send(conn, Message{Type: TypeChunk, Content: f.Delta, Data: f.Chunk})
	})
	if err != nil {
		return err
	}

	return s.send(conn, Message{
		Type:    TypeDone,
		Content: res.Answer,
		Data: Summary{
			RequestID: res.RequestID.String(),
			Keywords:  res.RefinedKeywords,
			Documents: res.RelatedDocuments(),
		},
	})
}

func (s *Server) send(conn *websocket.Conn, msg Message) error {
	if err := conn.WriteJSON(msg); err != nil {
		s.logger.Warn("Error sending message", zap.Error(err))
		return err
	}
	return nil
}
