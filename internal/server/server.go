package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/shinyyama/listing-studio/internal/config"
	"github.com/shinyyama/listing-studio/internal/handler"
	appmw "github.com/shinyyama/listing-studio/internal/middleware"
	"github.com/shinyyama/listing-studio/internal/repository"
	"github.com/shinyyama/listing-studio/internal/service"
)

// AIClient is everything the server needs from the Gemini client.
type AIClient interface {
	service.ImageGenerator
	service.ListingWriter
}

type Server struct {
	e      *echo.Echo
	editor service.EditorService
	idle   time.Duration
}

func New(cfg *config.Config, client AIClient, sha, buildTime string) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.Logger())
	e.Use(middleware.BodyLimit(fmt.Sprintf("%dM", cfg.MaxUploadMB+1)))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Content-Type", "Authorization", echo.HeaderXRequestID},
		ExposeHeaders:    []string{echo.HeaderXRequestID},
		AllowCredentials: true,
		AllowOriginFunc:  originAllowed(cfg.CORSAllowOrigins),
	}))
	e.Use(appmw.RequestContext)

	sessions := repository.NewSessionRepository()
	editorSvc := service.NewEditorService(sessions, client, cfg.RequestTimeout(), cfg.MaxImagePixels)
	contentSvc := service.NewContentService(client, cfg.ListingProfile, cfg.RequestTimeout())

	sessionHandler := handler.NewSessionHandler(editorSvc, cfg.MaxUploadBytes())
	contentHandler := handler.NewContentHandler(contentSvc)
	catalogHandler := handler.NewCatalogHandler(contentSvc.DefaultProfile())

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"ok":         "true",
			"git_sha":    sha,
			"build_time": buildTime,
		})
	})

	api := e.Group("/api")
	api.GET("/catalog", catalogHandler.Get)
	api.POST("/sessions", sessionHandler.Create)
	api.GET("/sessions/:id", sessionHandler.Get)
	api.DELETE("/sessions/:id", sessionHandler.Delete)
	api.PUT("/sessions/:id/brush", sessionHandler.SetBrush)
	api.POST("/sessions/:id/pointer", sessionHandler.Pointer)
	api.POST("/sessions/:id/undo", sessionHandler.Undo)
	api.POST("/sessions/:id/clear", sessionHandler.Clear)
	api.GET("/sessions/:id/mask", sessionHandler.GetMask)
	api.PUT("/sessions/:id/mask", sessionHandler.PutMask)
	api.GET("/sessions/:id/image", sessionHandler.GetImage)
	api.POST("/sessions/:id/enhance", sessionHandler.Enhance)
	api.POST("/sessions/:id/edit", sessionHandler.Edit)
	api.POST("/listings/content", contentHandler.Generate)

	return &Server{e: e, editor: editorSvc, idle: cfg.SessionIdle()}
}

func (s *Server) Start(addr string) error {
	return s.e.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.e.Shutdown(ctx)
}

func (s *Server) Handler() http.Handler {
	return s.e
}

// SweepIdle drops sessions that have been idle longer than the configured window.
func (s *Server) SweepIdle(ctx context.Context) int {
	return s.editor.SweepIdle(ctx, s.idle)
}

// RunJanitor sweeps idle sessions every interval until ctx is done.
func (s *Server) RunJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 || s.idle <= 0 {
		log.Printf("[janitor] disabled interval=%s idle=%s", interval, s.idle)
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.SweepIdle(ctx)
		}
	}
}

func originAllowed(allowed []string) func(string) (bool, error) {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o = strings.TrimRight(strings.TrimSpace(o), "/"); o != "" {
			set[strings.ToLower(o)] = struct{}{}
		}
	}
	return func(origin string) (bool, error) {
		low := strings.ToLower(origin)
		if _, ok := set["*"]; ok {
			return true, nil
		}
		if _, ok := set[low]; ok {
			return true, nil
		}
		return strings.HasPrefix(low, "http://localhost:") || strings.HasPrefix(low, "http://127.0.0.1:"), nil
	}
}
