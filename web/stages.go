// ABOUTME: Stage endpoints for the HTTP API
// ABOUTME: Pipeline column CRUD and bulk reordering
package web

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/harperreed/dealdesk/models"
)

const defaultStageColor = "#6b7280"

type stageRequest struct {
	Name  string `json:"name" binding:"required"`
	Color string `json:"color"`
}

type stagePatchRequest struct {
	Name  *string `json:"name" binding:"omitempty,min=1"`
	Color *string `json:"color"`
	Order *int    `json:"order"`
}

type reorderRequest struct {
	Stages []models.StageOrder `json:"stages" binding:"required,min=1"`
}

func (s *Server) listStages(c *gin.Context) {
	stages, err := s.store.Stages.GetAll(c.Request.Context())
	if err != nil {
		s.storeError(c, "failed to list stages", err)
		return
	}

	success(c, http.StatusOK, "stages retrieved", stages)
}

func (s *Server) getStage(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	stage, err := s.store.Stages.GetByID(c.Request.Context(), id)
	if err != nil {
		s.storeError(c, "stage not found", err)
		return
	}

	success(c, http.StatusOK, "stage retrieved", stage)
}

func (s *Server) createStage(c *gin.Context) {
	var req stageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request", err)
		return
	}

	ctx := c.Request.Context()
	_, exists, err := s.store.Stages.GetByName(ctx, req.Name)
	if err != nil {
		s.storeError(c, "failed to create stage", err)
		return
	}
	if exists {
		failure(c, http.StatusConflict, "stage already exists", fmt.Errorf("stage %q already exists", req.Name))
		return
	}

	if req.Color == "" {
		req.Color = defaultStageColor
	}

	stage, err := s.store.Stages.Create(ctx, models.StageFields(req))
	if err != nil {
		s.storeError(c, "failed to create stage", err)
		return
	}

	success(c, http.StatusCreated, "stage created", stage)
}

func (s *Server) updateStage(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	var req stagePatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request", err)
		return
	}

	stage, err := s.store.Stages.Update(c.Request.Context(), id, models.StagePatch(req))
	if err != nil {
		s.storeError(c, "failed to update stage", err)
		return
	}

	success(c, http.StatusOK, "stage updated", stage)
}

func (s *Server) deleteStage(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	stage, err := s.store.Stages.Delete(c.Request.Context(), id)
	if err != nil {
		s.storeError(c, "failed to delete stage", err)
		return
	}

	success(c, http.StatusOK, "stage deleted", stage)
}

// reorderStages ignores unknown IDs and answers with the resulting order.
func (s *Server) reorderStages(c *gin.Context) {
	var req reorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request", err)
		return
	}

	stages, err := s.store.Stages.Reorder(c.Request.Context(), req.Stages)
	if err != nil {
		s.storeError(c, "failed to reorder stages", err)
		return
	}

	success(c, http.StatusOK, "stages reordered", stages)
}
