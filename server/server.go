// Package server is the HTTP and WebSocket display layer over the answer
// pipeline.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/xhad/buddy/internal/logger"
	"github.com/xhad/buddy/internal/models"
	"github.com/xhad/buddy/internal/types"
	"github.com/xhad/buddy/pkg/format"
	"github.com/xhad/buddy/pkg/pipeline"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Be careful with this in production
	},
}

// Message types exchanged over the WebSocket.
const (
	TypeQuery  = "query"
	TypeStatus = "status"
	TypeChunk  = "chunk"
	TypeDone   = "done"
	TypeError  = "error"
)

type Message struct {
	Type    string      `json:"type"`
	Content string      `json:"content"`
	Data    interface{} `json:"data,omitempty"`
}

// Answerer runs one question to completion.
type Answerer interface {
	Run(ctx context.Context, req pipeline.Request) (*pipeline.Result, error)
}

// Summary is sent once an answer has been fully presented.
type Summary struct {
	RequestID string                  `json:"request_id"`
	Keywords  []string                `json:"keywords"`
	Documents []models.DocumentRecord `json:"documents"`
}

type AskRequest struct {
	Query string `json:"query"`
}

type AskResponse struct {
	*pipeline.Result
	Documents []models.DocumentRecord `json:"documents"`
}

type Server struct {
	answerer  Answerer
	presenter *format.Presenter
	logger    *zap.Logger
	router    chi.Router
}

func New(answerer Answerer, presenter *format.Presenter, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{answerer: answerer, presenter: presenter, logger: log}

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	r.Post("/api/ask", s.handleAsk)
	r.Get("/ws", s.handleWebSocket)

	s.router = r
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := chiMiddleware.GetReqID(r.Context())
		if requestID != "" {
			w.Header().Set("X-Request-ID", requestID)
		}

		reqLogger := s.logger.With(zap.String("request_id", requestID))
		ctx := logger.ContextWithLogger(r.Context(), reqLogger)

		ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))

		reqLogger.Info("HTTP request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, Message{Type: TypeError, Content: "invalid request body"})
		return
	}

	res, err := s.answerer.Run(r.Context(), pipeline.NewRequest(req.Query))
	if err != nil {
		logger.FromContext(r.Context()).Error("Failed to answer query", zap.Error(err))
		writeJSON(w, statusFor(err), Message{Type: TypeError, Content: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, AskResponse{Result: res, Documents: res.RelatedDocuments()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, pipeline.ErrEmptyQuery):
		return http.StatusBadRequest
	case errors.Is(err, types.ErrCollaborator):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
