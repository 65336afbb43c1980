package server

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/systemhub/member-api/internal/handler"
)

type Server struct {
	server *http.Server
	log    *zap.Logger
}

func NewServer(h *handler.Handler, addr string, log *zap.Logger) *Server {
	return &Server{
		server: &http.Server{
			Addr:              addr,
			Handler:           NewRouter(h, NewMetrics(), log),
			ReadHeaderTimeout: 10 * time.Second,
		},
		log: log,
	}
}

func (s *Server) Start() error {
	s.log.Info("server starting", zap.String("addr", s.server.Addr))
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return err
	}
	s.log.Info("server stopped")
	return nil
}
