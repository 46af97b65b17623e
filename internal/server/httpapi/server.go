// Package httpapi is the HTTP transport of the tokenkeeper server: a gin
// router in front of the auth service, with token pairs carried in request
// and response headers.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/osenouci/tokenkeeper/internal/logging"
	"github.com/osenouci/tokenkeeper/internal/server/config"
	"github.com/osenouci/tokenkeeper/internal/server/services"
)

const shutdownTimeout = 5 * time.Second

// Server owns the gin engine and the underlying http.Server.
type Server struct {
	engine *gin.Engine
	srv    *http.Server
	logger logging.Logger
}

func NewServer(cfg *config.Config, auth *services.AuthService, logger logging.Logger) *Server {
	ctrl := NewAuthController(auth, cfg, logger)

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestLogMiddleware(logger))

	engine.GET("/token/check", ctrl.Check)

	authGroup := engine.Group("/auth")
	{
		authGroup.POST("/register", ctrl.Register)
		authGroup.POST("/login", ctrl.Login)
		authGroup.POST("/google", ctrl.Google)
		authGroup.POST("/facebook", ctrl.Facebook)
	}

	guarded := engine.Group("/devices", ctrl.TokenAuthMiddleware())
	{
		guarded.GET("", ctrl.Devices)
		guarded.DELETE("/:name", ctrl.RevokeDevice)
	}

	return &Server{
		engine: engine,
		srv:    &http.Server{Addr: cfg.EndpointAddr, Handler: engine},
		logger: logger,
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.srv.Shutdown(shutdownCtx)
}

func requestLogMiddleware(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info(c.Request.Context(), "request completed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
