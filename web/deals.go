// ABOUTME: Deal endpoints for the HTTP API
// ABOUTME: CRUD, stage transitions that log to the activity feed, and pipeline metrics
package web

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/harperreed/dealdesk/db"
	"github.com/harperreed/dealdesk/models"
)

const dateLayout = "2006-01-02"

type dealRequest struct {
	Title             string  `json:"title" binding:"required"`
	ContactID         int     `json:"contact_id" binding:"required,gt=0"`
	Value             float64 `json:"value" binding:"gte=0"`
	Stage             string  `json:"stage"`
	Probability       *int    `json:"probability" binding:"omitempty,gte=0,lte=100"`
	ExpectedCloseDate string  `json:"expected_close_date"`
	Notes             string  `json:"notes"`
}

type dealPatchRequest struct {
	Title             *string  `json:"title" binding:"omitempty,min=1"`
	ContactID         *int     `json:"contact_id" binding:"omitempty,gt=0"`
	Value             *float64 `json:"value" binding:"omitempty,gte=0"`
	Probability       *int     `json:"probability" binding:"omitempty,gte=0,lte=100"`
	ExpectedCloseDate *string  `json:"expected_close_date"`
	Notes             *string  `json:"notes"`
}

type moveRequest struct {
	Stage string `json:"stage" binding:"required"`
}

type moveResponse struct {
	Deal      *models.Deal     `json:"deal"`
	FromStage string           `json:"from_stage"`
	Moved     bool             `json:"moved"`
	Activity  *models.Activity `json:"activity,omitempty"`
}

func (s *Server) listDeals(c *gin.Context) {
	ctx := c.Request.Context()

	var deals []models.Deal
	var err error
	if stage := c.Query("stage"); stage != "" {
		deals, err = s.store.Deals.GetByStage(ctx, stage)
	} else {
		deals, err = s.store.Deals.GetAll(ctx)
	}
	if err != nil {
		s.storeError(c, "failed to list deals", err)
		return
	}

	success(c, http.StatusOK, "deals retrieved", deals)
}

func (s *Server) getDeal(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	deal, err := s.store.Deals.GetByID(c.Request.Context(), id)
	if err != nil {
		s.storeError(c, "deal not found", err)
		return
	}

	success(c, http.StatusOK, "deal retrieved", deal)
}

func (s *Server) createDeal(c *gin.Context) {
	var req dealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request", err)
		return
	}

	closeDate, err := optionalDate(req.ExpectedCloseDate)
	if err != nil {
		badRequest(c, "invalid request", err)
		return
	}

	ctx := c.Request.Context()
	if _, err := s.store.Contacts.GetByID(ctx, req.ContactID); err != nil {
		if db.IsNotFound(err) {
			badRequest(c, "unknown contact", err)
			return
		}
		s.storeError(c, "failed to create deal", err)
		return
	}

	stage := req.Stage
	if stage == "" {
		stage = models.StageLead
	}

	deal, err := s.store.Deals.Create(ctx, models.DealFields{
		Title:             req.Title,
		ContactID:         req.ContactID,
		Value:             req.Value,
		Stage:             stage,
		Probability:       req.Probability,
		ExpectedCloseDate: closeDate,
		Notes:             req.Notes,
	})
	if err != nil {
		s.storeError(c, "failed to create deal", err)
		return
	}

	success(c, http.StatusCreated, "deal created", deal)
}

// updateDeal patches everything except the stage, which goes through moveDeal
// so the change is recorded in the activity feed.
func (s *Server) updateDeal(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	var req dealPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request", err)
		return
	}

	patch := models.DealPatch{
		Title:       req.Title,
		ContactID:   req.ContactID,
		Value:       req.Value,
		Probability: req.Probability,
		Notes:       req.Notes,
	}
	if req.ExpectedCloseDate != nil {
		closeDate, err := optionalDate(*req.ExpectedCloseDate)
		if err != nil {
			badRequest(c, "invalid request", err)
			return
		}
		patch.ExpectedCloseDate = closeDate
	}

	deal, err := s.store.Deals.Update(c.Request.Context(), id, patch)
	if err != nil {
		s.storeError(c, "failed to update deal", err)
		return
	}

	success(c, http.StatusOK, "deal updated", deal)
}

func (s *Server) moveDeal(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request", err)
		return
	}

	move, err := s.store.MoveDeal(c.Request.Context(), id, req.Stage)
	if err != nil {
		s.storeError(c, "failed to move deal", err)
		return
	}

	message := "deal moved"
	if !move.Moved {
		message = "deal already in stage"
	}
	success(c, http.StatusOK, message, moveResponse{
		Deal:      move.Deal,
		FromStage: move.From,
		Moved:     move.Moved,
		Activity:  move.Activity,
	})
}

func (s *Server) deleteDeal(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	deal, note, err := s.store.RemoveDeal(c.Request.Context(), id)
	if err != nil {
		s.storeError(c, "failed to delete deal", err)
		return
	}

	success(c, http.StatusOK, "deal deleted", gin.H{
		"deal":     deal,
		"activity": note,
	})
}

func (s *Server) pipelineMetrics(c *gin.Context) {
	metrics, err := s.store.Deals.GetPipelineMetrics(c.Request.Context())
	if err != nil {
		s.storeError(c, "failed to compute metrics", err)
		return
	}

	success(c, http.StatusOK, "metrics computed", metrics)
}

func optionalDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: use YYYY-MM-DD", raw)
	}
	return &t, nil
}
