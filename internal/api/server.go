package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/revloop/internal/orchestrator"
	"github.com/revloop/pkg/models"
)

// Server exposes the feedback-triage pipeline over HTTP.
type Server struct {
	echo           *echo.Echo
	orchestrator   *orchestrator.Service
	defaultProject string
	port           int
}

// NewServer creates a new API server.
func NewServer(orc *orchestrator.Service, defaultProject string, port int) *Server {
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	server := &Server{
		echo:           e,
		orchestrator:   orc,
		defaultProject: defaultProject,
		port:           port,
	}

	server.setupRoutes()

	return server
}

// setupRoutes configures all API endpoints.
func (s *Server) setupRoutes() {
	s.echo.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status": "healthy",
		})
	})

	v1 := s.echo.Group("/api/v1")
	v1.POST("/feedback", s.reviewFeedback)
}

// feedbackRequest is the wire form of an orchestration request.
type feedbackRequest struct {
	ProjectID       string   `json:"project_id"`
	MergeRequestIID int      `json:"merge_request_iid"`
	BranchName      string   `json:"branch_name"`
	MaxComments     int      `json:"max_comments"`
	Offset          int      `json:"offset"`
	CategoryFilter  []string `json:"category_filter"`
	MinSeverity     int      `json:"min_severity"`
	RiskThreshold   string   `json:"risk_threshold"`
	SummaryOnly     bool     `json:"summary_only"`
	IncludeResolved bool     `json:"include_resolved"`
}

func (s *Server) reviewFeedback(c echo.Context) error {
	var req feedbackRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	projectID := req.ProjectID
	if projectID == "" {
		projectID = s.defaultProject
	}

	risk := models.RiskLevel(req.RiskThreshold)
	if req.RiskThreshold != "" && !risk.Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("unknown risk threshold %q", req.RiskThreshold))
	}

	result, err := s.orchestrator.ReviewFeedback(c.Request().Context(), orchestrator.Request{
		ProjectID:       projectID,
		MergeRequestIID: req.MergeRequestIID,
		BranchName:      req.BranchName,
		MaxComments:     req.MaxComments,
		Offset:          req.Offset,
		CategoryFilter:  req.CategoryFilter,
		MinSeverity:     req.MinSeverity,
		RiskThreshold:   risk,
		SummaryOnly:     req.SummaryOnly,
		IncludeResolved: req.IncludeResolved,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	return c.JSON(http.StatusOK, result)
}

// Start begins serving and blocks until an interrupt, then shuts down
// gracefully.
func (s *Server) Start() error {
	go func() {
		if err := s.echo.Start(fmt.Sprintf(":%d", s.port)); err != nil && err != http.ErrServerClosed {
			s.echo.Logger.Fatal("shutting down the server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.echo.Shutdown(ctx)
}
