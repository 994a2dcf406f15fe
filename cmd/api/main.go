//go:generate swag init -d ../.. -g cmd/api/main.go -o ../../docs

// Command api serves the job board HTTP API.
//
// @title OpenProfile API
// @version 1.0
// @description Job board backend for applicants and companies.
// @BasePath /api/v1
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT token.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Sseankzs/openprofile/internal/logger"
	"github.com/Sseankzs/openprofile/internal/server"
)

func main() {
	flush := logger.Init()
	defer flush()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := server.New(ctx)
	if err != nil {
		zap.L().Fatal("failed to start server", zap.Error(err))
	}
	defer func() {
		if err := s.DB.Close(); err != nil {
			zap.L().Warn("failed to close database", zap.Error(err))
		}
	}()

	httpServer := server.NewHTTPServer(s)
	serveErr := make(chan error, 1)
	go func() {
		zap.L().Info("listening", zap.String("addr", httpServer.Addr))
		serveErr <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			zap.L().Error("http server stopped", zap.Error(err))
		}
		return
	case <-ctx.Done():
	}

	zap.L().Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("graceful shutdown failed", zap.Error(err))
	}
}
