package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/username/attendance-dashboard/internal/attendance"
	"github.com/username/attendance-dashboard/internal/config"
	"github.com/username/attendance-dashboard/internal/dashboard"
)

const shutdownTimeout = 10 * time.Second

// Dashboard is the view source behind the API
type Dashboard interface {
	Today(ctx context.Context, date time.Time) (*attendance.TodayView, error)
	EmployeeMonth(ctx context.Context, uid string, month time.Time) (*dashboard.EmployeeMonth, error)
	MasterLog(ctx context.Context, month time.Time) (*dashboard.MasterLogView, error)
	Location() *time.Location
	Now() time.Time
}

// Snapshots serves a precomputed today view, usually the refresher
type Snapshots interface {
	Current(date time.Time) (*attendance.TodayView, bool)
}

// Server is the JSON HTTP API of the dashboard
type Server struct {
	dash      Dashboard
	snapshots Snapshots
	cfg       config.ServerConfig
	engine    *gin.Engine
	logger    *zap.Logger
}

// New creates a new server. snapshots may be nil.
func New(dash Dashboard, snapshots Snapshots, cfg config.ServerConfig, logger *zap.Logger) *Server {
	if cfg.Mode == "release" || cfg.Mode == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		dash:      dash,
		snapshots: snapshots,
		cfg:       cfg,
		logger:    logger,
	}

	r := gin.New()
	r.Use(s.requestLogger(), gin.Recovery())
	_ = r.SetTrustedProxies(nil)

	if cfg.IsDev() {
		r.Use(cors.New(cors.Config{
			AllowOrigins:  cfg.AllowOrigins,
			AllowHeaders:  []string{"Origin", "Content-Type"},
			ExposeHeaders: []string{"Content-Length"},
			AllowMethods:  []string{"GET", "OPTIONS"},
			MaxAge:        12 * time.Hour,
		}))
		logger.Info("CORS enabled", zap.Strings("origins", cfg.AllowOrigins))
	}

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	api := r.Group("/api")
	s.registerRoutes(api)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, errorDTO{Error: ErrNotFound("no such route")})
	})

	s.engine = r
	return s
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Server listening", zap.String("addr", s.cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

// requestLogger logs every request through zap
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			s.logger.Warn("Request failed", fields...)
			return
		}
		s.logger.Debug("Request served", fields...)
	}
}
