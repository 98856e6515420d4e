// ABOUTME: GraphViz visualization MCP handlers
// ABOUTME: Provides generate_graph tool for agents
package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/harperreed/dealdesk/db"
	"github.com/harperreed/dealdesk/viz"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

type VizHandlers struct {
	store  *db.Store
	logger *zap.Logger
}

func NewVizHandlers(store *db.Store, logger *zap.Logger) *VizHandlers {
	return &VizHandlers{store: store, logger: logger}
}

type GenerateGraphInput struct {
	Type     string `json:"type" jsonschema:"Graph type: pipeline or contact"`
	EntityID int    `json:"entity_id,omitempty" jsonschema:"Contact ID (required for contact graphs)"`
}

type GenerateGraphOutput struct {
	GraphType string `json:"graph_type"`
	DOTSource string `json:"dot_source"`
	NodeCount int    `json:"node_count"`
	EdgeCount int    `json:"edge_count"`
}

func (h *VizHandlers) GenerateGraph(ctx context.Context, _ *mcp.CallToolRequest, input GenerateGraphInput) (*mcp.CallToolResult, GenerateGraphOutput, error) {
	if input.Type == "" {
		return nil, GenerateGraphOutput{}, fmt.Errorf("type is required")
	}

	generator := viz.NewGraphGenerator(h.store)
	var dot string
	var err error

	switch input.Type {
	case "pipeline":
		dot, err = generator.GeneratePipelineGraph(ctx)
	case "contact":
		if input.EntityID == 0 {
			return nil, GenerateGraphOutput{}, fmt.Errorf("entity_id required for contact graph")
		}
		dot, err = generator.GenerateContactGraph(ctx, input.EntityID)
	default:
		return nil, GenerateGraphOutput{}, fmt.Errorf("unknown graph type: %s (valid types: pipeline, contact)", input.Type)
	}

	if err != nil {
		return nil, GenerateGraphOutput{}, wrap(h.logger, "generate graph", err)
	}

	return nil, GenerateGraphOutput{
		GraphType: input.Type,
		DOTSource: dot,
		NodeCount: strings.Count(dot, "[label="),
		EdgeCount: strings.Count(dot, "->"),
	}, nil
}
