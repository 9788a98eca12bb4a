// Package web serves the chart advisor over HTTP: the HTML form, a JSON API,
// stored uploads and the PWA assets.
package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"chart-advisor/internal/interfaces"
	"chart-advisor/internal/logger"
	"chart-advisor/internal/trace"
	"chart-advisor/internal/uploads"
)

//go:embed templates/*.html static/*
var assets embed.FS

// Config holds server settings.
type Config struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	MaxUploadBytes  int64
	CORSOrigins     []string
	ReleaseMode     bool
}

type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	analyzer   interfaces.Analyzer
	uploads    *uploads.Store
	config     Config
}

func New(config Config, analyzer interfaces.Analyzer, store *uploads.Store) (*Server, error) {
	if config.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}
	if config.MaxUploadBytes <= 0 {
		config.MaxUploadBytes = 16 << 20
	}
	if config.ShutdownTimeout <= 0 {
		config.ShutdownTimeout = 10 * time.Second
	}

	page, err := template.ParseFS(assets, "templates/index.html")
	if err != nil {
		return nil, err
	}

	router := gin.New()
	router.MaxMultipartMemory = config.MaxUploadBytes
	router.SetHTMLTemplate(page)

	router.Use(gin.Recovery())
	router.Use(requestLogger())
	router.Use(cors.New(corsConfig(config.CORSOrigins)))

	s := &Server{
		router:   router,
		analyzer: analyzer,
		uploads:  store,
		config:   config,
	}
	s.setupRoutes()
	return s, nil
}

func corsConfig(origins []string) cors.Config {
	c := cors.DefaultConfig()
	if len(origins) == 0 {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
	}
	c.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	c.AllowHeaders = []string{"Origin", "Content-Type"}
	return c
}

func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleIndex)
	s.router.POST("/", s.handleIndexSubmit)

	api := s.router.Group("/api")
	{
		api.POST("/analyze", s.handleAnalyze)
		api.GET("/symbols", s.handleSymbols)
		api.GET("/health", s.handleHealth)
	}

	s.router.GET("/uploads/:filename", s.handleUpload)
	s.router.GET("/manifest.json", s.handleAsset("static/manifest.json", "application/manifest+json"))
	s.router.GET("/sw.js", s.handleAsset("static/sw.js", "application/javascript"))

	s.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found", "path": c.Request.URL.Path})
	})
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:         s.config.Addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "Starting HTTP server", "addr", s.config.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info(ctx, "Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		ctx, span := trace.StartSpan(c.Request.Context(), "http "+c.Request.Method+" "+c.Request.URL.Path)
		defer span.End()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		status := c.Writer.Status()
		fields := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if status >= http.StatusInternalServerError {
			logger.Error(ctx, "HTTP request", fields...)
			return
		}
		logger.Info(ctx, "HTTP request", fields...)
	}
}
