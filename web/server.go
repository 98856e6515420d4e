// ABOUTME: JSON HTTP API over the CRM store, served with gin
// ABOUTME: Mounts /api/v1 routes for contacts, deals, activities, stages, and the dashboard
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/harperreed/dealdesk/db"
	"github.com/harperreed/dealdesk/viz"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	store       *db.Store
	logger      *zap.Logger
	engine      *gin.Engine
	recentLimit int
	now         func() time.Time
	version     string
}

// Option configures a Server.
type Option func(*Server)

// WithRecentLimit sets the number of activities the dashboard shows.
func WithRecentLimit(n int) Option {
	return func(s *Server) { s.recentLimit = n }
}

func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

func WithVersion(v string) Option {
	return func(s *Server) { s.version = v }
}

func NewServer(store *db.Store, logger *zap.Logger, opts ...Option) *Server {
	s := &Server{
		store:       store,
		logger:      logger,
		recentLimit: viz.DefaultDashboardActivities,
		now:         time.Now,
		version:     "dev",
	}
	for _, opt := range opts {
		opt(s)
	}

	engine := gin.New()
	engine.Use(RecoveryMiddleware(logger), RequestLogger(logger))
	s.engine = engine
	s.routes()

	return s
}

func (s *Server) routes() {
	s.engine.GET("/health", s.health)

	api := s.engine.Group("/api/v1")
	api.GET("/health", s.health)
	api.GET("/dashboard", s.dashboard)

	contacts := api.Group("/contacts")
	{
		contacts.GET("", s.listContacts)
		contacts.GET("/search", s.searchContacts)
		contacts.POST("", s.createContact)
		contacts.GET("/:id", s.getContact)
		contacts.PUT("/:id", s.updateContact)
		contacts.DELETE("/:id", s.deleteContact)
		contacts.GET("/:id/deals", s.contactDeals)
		contacts.GET("/:id/activities", s.contactActivities)
	}

	deals := api.Group("/deals")
	{
		deals.GET("", s.listDeals)
		deals.GET("/metrics", s.pipelineMetrics)
		deals.POST("", s.createDeal)
		deals.GET("/:id", s.getDeal)
		deals.PUT("/:id", s.updateDeal)
		deals.PUT("/:id/stage", s.moveDeal)
		deals.DELETE("/:id", s.deleteDeal)
	}

	activities := api.Group("/activities")
	{
		activities.GET("", s.listActivities)
		activities.GET("/recent", s.recentActivities)
		activities.GET("/feed", s.activityFeed)
		activities.POST("", s.createActivity)
		activities.GET("/:id", s.getActivity)
		activities.PUT("/:id", s.updateActivity)
		activities.DELETE("/:id", s.deleteActivity)
	}

	stages := api.Group("/stages")
	{
		stages.GET("", s.listStages)
		stages.POST("", s.createStage)
		stages.POST("/reorder", s.reorderStages)
		stages.GET("/:id", s.getStage)
		stages.PUT("/:id", s.updateStage)
		stages.DELETE("/:id", s.deleteStage)
	}
}

// Handler exposes the router for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.logger.Info("http server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown failed: %w", err)
	}
	return nil
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": s.version,
		"session": s.store.SessionID(),
	})
}

func (s *Server) dashboard(c *gin.Context) {
	stats, err := viz.GenerateDashboardStats(c.Request.Context(), s.store, s.recentLimit)
	if err != nil {
		s.storeError(c, "failed to load dashboard", err)
		return
	}

	success(c, http.StatusOK, "dashboard loaded", gin.H{
		"metrics":         stats.Metrics,
		"stages":          viz.StageRows(stats.Metrics.StageBreakdown, stats.Stages),
		"recent_activity": stats.RecentActivity,
		"total_contacts":  stats.TotalContacts,
		"activity_stats":  viz.RecentActivityStats(stats.Activities, s.now()),
	})
}

// paramID reads the :id path parameter, answering 400 itself when invalid.
func paramID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		badRequest(c, "invalid ID", fmt.Errorf("%q is not a positive integer", c.Param("id")))
		return 0, false
	}
	return id, true
}

// queryInt reads an optional integer query parameter; zero when absent.
func queryInt(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		badRequest(c, "invalid "+name, err)
		return 0, false
	}
	return n, true
}
