package server

import (
	"context"
	"errors"
	"mime"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/bnema/modctl/internal/app"
	"github.com/bnema/modctl/internal/download"
	"github.com/bnema/modctl/internal/events"
	"github.com/bnema/modctl/internal/gamebanana"
	"github.com/bnema/modctl/internal/mods"
	"github.com/bnema/modctl/internal/scanner"
)

// Launcher starts and stops mod processes
type Launcher interface {
	Launch(ctx context.Context, key string) (mods.ModInfo, error)
	Stop(key string) error
}

// Installer runs background downloads
type Installer interface {
	Start(ctx context.Context, src download.Source) error
	Cancel(modID int64) error
}

// Hub is the websocket event stream
type Hub interface {
	http.Handler
	Count() int
}

// Deps are the components the API serves
type Deps struct {
	State     *app.State
	Scanner   *scanner.Scanner
	Launcher  Launcher
	Installer Installer
	Catalog   gamebanana.Catalog
	Hub       Hub
	Metrics   http.Handler // Optional
	Logger    *log.Logger
}

// Server is the local HTTP API of modctl
type Server struct {
	deps   Deps
	log    *log.Logger
	router *gin.Engine
}

func New(deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = log.Default()
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger), localOnly())
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	s := &Server{
		deps:   deps,
		log:    logger,
		router: router,
	}
	s.registerRoutes()
	return s
}

// Handler returns the router
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context, addr string) error {
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("HTTP API listening", "addr", addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("Shutting down HTTP API")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

func requestLogger(logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("HTTP request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

// localOnly refuses requests sent by pages on other origins and request
// bodies that are not JSON.
func localOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !events.LoopbackOrigin(c.Request) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "cross-origin requests are not allowed"})
			return
		}

		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
		default:
			if c.Request.ContentLength != 0 {
				mt, _, err := mime.ParseMediaType(c.GetHeader("Content-Type"))
				if err != nil || mt != "application/json" {
					c.AbortWithStatusJSON(http.StatusUnsupportedMediaType, gin.H{"error": "request body must be application/json"})
					return
				}
			}
		}
		c.Next()
	}
}
