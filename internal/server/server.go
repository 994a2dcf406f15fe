package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	// Load env file into environments.
	_ "github.com/joho/godotenv/autoload"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/Sseankzs/openprofile/internal/analysis"
	"github.com/Sseankzs/openprofile/internal/auth"
	"github.com/Sseankzs/openprofile/internal/database"
	"github.com/Sseankzs/openprofile/internal/storage"
)

// Server holds the dependencies shared by the route handlers.
type Server struct {
	DB        *database.DBinstanceStruct
	Storage   storage.Client
	Analyzer  analysis.Analyzer
	Blacklist auth.JwtBlacklistStore
	Registry  *prometheus.Registry
}

// NewRegistry returns a prometheus registry with the Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// New wires the server dependencies from environment variables.
func New(ctx context.Context) (*Server, error) {
	db, err := database.GetMainDB()
	if err != nil {
		return nil, errors.Wrap(err, "initialize database")
	}

	store, err := storage.NewFromEnv(ctx, storage.NewDBStorageClient(db, os.Getenv("PUBLIC_BASE_URL")))
	if err != nil {
		return nil, errors.Wrap(err, "initialize storage")
	}

	s := &Server{
		DB:        db,
		Storage:   store,
		Blacklist: auth.NewBlacklistStoreFromEnv(ctx),
		Registry:  NewRegistry(),
	}

	client, err := analysis.NewFromEnv()
	switch {
	case errors.Is(err, analysis.ErrNotConfigured):
		zap.L().Info("ANALYSIS_ENDPOINT not set, applications are stored without analysis")
	case err != nil:
		return nil, errors.Wrap(err, "initialize analysis client")
	default:
		s.Analyzer = client
	}

	return s, nil
}

// NewHTTPServer binds the routes of s to PORT (default 8080).
func NewHTTPServer(s *Server) *http.Server {
	port, err := strconv.Atoi(os.Getenv("PORT"))
	if err != nil || port <= 0 {
		port = 8080
	}

	return &http.Server{
		Addr:        fmt.Sprintf(":%d", port),
		Handler:     s.RegisterRoutes(),
		IdleTimeout: time.Minute,
		ReadTimeout: 10 * time.Second,
		// applying waits for the analysis endpoint
		WriteTimeout: 2 * time.Minute,
	}
}
