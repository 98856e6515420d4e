// ABOUTME: Stage MCP tool handlers
// ABOUTME: Implements list_stages and reorder_stages
package handlers

import (
	"context"
	"fmt"

	"github.com/harperreed/dealdesk/db"
	"github.com/harperreed/dealdesk/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

type StageHandlers struct {
	store  *db.Store
	logger *zap.Logger
}

func NewStageHandlers(store *db.Store, logger *zap.Logger) *StageHandlers {
	return &StageHandlers{store: store, logger: logger}
}

type ListStagesInput struct{}

type StagesOutput struct {
	Stages []StageOutput `json:"stages"`
}

func (h *StageHandlers) ListStages(ctx context.Context, _ *mcp.CallToolRequest, _ ListStagesInput) (*mcp.CallToolResult, StagesOutput, error) {
	stages, err := h.store.Stages.GetAll(ctx)
	if err != nil {
		return nil, StagesOutput{}, wrap(h.logger, "list stages", err)
	}

	return nil, StagesOutput{Stages: stagesToOutput(stages)}, nil
}

type StagePosition struct {
	ID    int `json:"id" jsonschema:"Stage ID"`
	Order int `json:"order" jsonschema:"New column position"`
}

type ReorderStagesInput struct {
	Stages []StagePosition `json:"stages" jsonschema:"Stage ID and order pairs; unknown IDs are ignored"`
}

func (h *StageHandlers) ReorderStages(ctx context.Context, _ *mcp.CallToolRequest, input ReorderStagesInput) (*mcp.CallToolResult, StagesOutput, error) {
	if len(input.Stages) == 0 {
		return nil, StagesOutput{}, fmt.Errorf("at least one stage position is required")
	}

	orders := make([]models.StageOrder, len(input.Stages))
	for i, p := range input.Stages {
		orders[i] = models.StageOrder{ID: p.ID, Order: p.Order}
	}

	stages, err := h.store.Stages.Reorder(ctx, orders)
	if err != nil {
		return nil, StagesOutput{}, wrap(h.logger, "reorder stages", err)
	}

	return nil, StagesOutput{Stages: stagesToOutput(stages)}, nil
}
