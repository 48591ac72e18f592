package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revloop/internal/analysis"
	"github.com/revloop/internal/analyzer"
	"github.com/revloop/internal/orchestrator"
	"github.com/revloop/pkg/models"
)

type stubSource struct{}

func (stubSource) GetMergeRequest(ctx context.Context, projectID string, iid int) (*models.MergeRequest, error) {
	return &models.MergeRequest{IID: iid, ProjectID: projectID, Title: "Test MR", SourceBranch: "feature"}, nil
}

func (stubSource) FindMergeRequestByBranch(ctx context.Context, projectID, branch string) (*models.MergeRequest, error) {
	return &models.MergeRequest{IID: 1, ProjectID: projectID, SourceBranch: branch}, nil
}

func (stubSource) ListDiscussions(ctx context.Context, projectID string, iid int) ([]*models.Discussion, error) {
	return []*models.Discussion{
		{ID: "d1", Notes: []*models.Note{{ID: 1, Body: "fix naming", Author: "reviewer"}}},
	}, nil
}

func (stubSource) GetDiffContext(ctx context.Context, projectID string, iid int) (string, error) {
	return "", nil
}

type stubAnalyzer struct{}

func (stubAnalyzer) AnalyzeComment(ctx context.Context, note *models.Note, mrCtx analyzer.MRContext) (*models.CommentAnalysis, error) {
	return &models.CommentAnalysis{
		ID: strconv.Itoa(note.ID), Category: "style", Severity: 2, IsValid: true,
	}, nil
}

func newTestServer() *Server {
	scheduler := analysis.NewScheduler(
		stubAnalyzer{},
		analysis.SchedulerConfig{BatchSize: 10, BatchDelay: time.Millisecond},
		zerolog.Nop(),
	)
	orc := orchestrator.NewService(stubSource{}, scheduler, nil, nil, zerolog.Nop())
	return NewServer(orc, "group/project", 0)
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestFeedbackEndpoint(t *testing.T) {
	s := newTestServer()

	body := `{"merge_request_iid": 42}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/feedback", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var result models.FeedbackResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 42, result.MergeRequest.IID)
	assert.Len(t, result.Analyses, 1)
	// Empty project_id falls back to the configured default.
	assert.Equal(t, "group/project", result.MergeRequest.ProjectID)
}

func TestFeedbackEndpointRejectsBadRisk(t *testing.T) {
	s := newTestServer()

	body := `{"merge_request_iid": 1, "risk_threshold": "extreme"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/feedback", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFeedbackEndpointOrchestrationFailure(t *testing.T) {
	s := newTestServer()

	// Neither an IID nor a branch selects a merge request.
	body := `{}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/feedback", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
