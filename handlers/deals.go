// ABOUTME: Deal MCP tool handlers
// ABOUTME: Implements list, create, update, stage move, delete, and pipeline metrics tools
package handlers

import (
	"context"
	"fmt"

	"github.com/harperreed/dealdesk/db"
	"github.com/harperreed/dealdesk/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

type DealHandlers struct {
	store  *db.Store
	logger *zap.Logger
}

func NewDealHandlers(store *db.Store, logger *zap.Logger) *DealHandlers {
	return &DealHandlers{store: store, logger: logger}
}

type ListDealsInput struct {
	Stage     string `json:"stage,omitempty" jsonschema:"Only deals in this stage (exact name)"`
	ContactID int    `json:"contact_id,omitempty" jsonschema:"Only deals for this contact ID"`
}

type DealsOutput struct {
	Deals      []DealOutput `json:"deals"`
	Count      int          `json:"count"`
	TotalValue float64      `json:"total_value"`
}

func (h *DealHandlers) ListDeals(ctx context.Context, _ *mcp.CallToolRequest, input ListDealsInput) (*mcp.CallToolResult, DealsOutput, error) {
	var deals []models.Deal
	var err error
	switch {
	case input.ContactID != 0:
		deals, err = h.store.Deals.GetByContactID(ctx, input.ContactID)
	case input.Stage != "":
		deals, err = h.store.Deals.GetByStage(ctx, input.Stage)
	default:
		deals, err = h.store.Deals.GetAll(ctx)
	}
	if err != nil {
		return nil, DealsOutput{}, wrap(h.logger, "list deals", err)
	}

	// contact and stage filters combine
	if input.ContactID != 0 && input.Stage != "" {
		kept := deals[:0]
		for _, d := range deals {
			if d.Stage == input.Stage {
				kept = append(kept, d)
			}
		}
		deals = kept
	}

	out := DealsOutput{Deals: dealsToOutput(deals), Count: len(deals)}
	for _, d := range deals {
		out.TotalValue += d.Value
	}
	return nil, out, nil
}

type CreateDealInput struct {
	Title             string  `json:"title" jsonschema:"Deal title (required)"`
	ContactID         int     `json:"contact_id" jsonschema:"ID of the contact the deal belongs to (required)"`
	Value             float64 `json:"value" jsonschema:"Deal value, must not be negative"`
	Stage             string  `json:"stage,omitempty" jsonschema:"Pipeline stage (default: Lead)"`
	Probability       *int    `json:"probability,omitempty" jsonschema:"Close probability 0-100; derived from the stage when omitted"`
	ExpectedCloseDate string  `json:"expected_close_date,omitempty" jsonschema:"Expected close date (YYYY-MM-DD)"`
	Notes             string  `json:"notes,omitempty" jsonschema:"Deal notes"`
}

func (h *DealHandlers) CreateDeal(ctx context.Context, _ *mcp.CallToolRequest, input CreateDealInput) (*mcp.CallToolResult, DealOutput, error) {
	if input.Title == "" {
		return nil, DealOutput{}, fmt.Errorf("title is required")
	}
	if err := validateDealNumbers(&input.Value, input.Probability); err != nil {
		return nil, DealOutput{}, err
	}
	// The contact must exist at creation; later deletes may still orphan the deal.
	if _, err := h.store.Contacts.GetByID(ctx, input.ContactID); err != nil {
		return nil, DealOutput{}, wrap(h.logger, "create deal", err)
	}

	stage := input.Stage
	if stage == "" {
		stage = models.StageLead
	}
	fields := models.DealFields{
		Title:       input.Title,
		ContactID:   input.ContactID,
		Value:       input.Value,
		Stage:       stage,
		Probability: input.Probability,
		Notes:       input.Notes,
	}
	if input.ExpectedCloseDate != "" {
		date, err := parseDate(input.ExpectedCloseDate)
		if err != nil {
			return nil, DealOutput{}, err
		}
		fields.ExpectedCloseDate = date
	}

	deal, err := h.store.Deals.Create(ctx, fields)
	if err != nil {
		return nil, DealOutput{}, wrap(h.logger, "create deal", err)
	}

	return nil, dealToOutput(deal), nil
}

type UpdateDealInput struct {
	ID                int      `json:"id" jsonschema:"Deal ID (required)"`
	Title             *string  `json:"title,omitempty" jsonschema:"Updated title"`
	ContactID         *int     `json:"contact_id,omitempty" jsonschema:"Updated contact ID"`
	Value             *float64 `json:"value,omitempty" jsonschema:"Updated value"`
	Probability       *int     `json:"probability,omitempty" jsonschema:"Updated probability 0-100"`
	ExpectedCloseDate *string  `json:"expected_close_date,omitempty" jsonschema:"Updated expected close date (YYYY-MM-DD)"`
	Notes             *string  `json:"notes,omitempty" jsonschema:"Updated notes"`
}

// UpdateDeal patches fields other than the stage. Stage changes go through
// move_deal_stage so probability and the activity log stay consistent.
func (h *DealHandlers) UpdateDeal(ctx context.Context, _ *mcp.CallToolRequest, input UpdateDealInput) (*mcp.CallToolResult, DealOutput, error) {
	if input.Title != nil && *input.Title == "" {
		return nil, DealOutput{}, fmt.Errorf("title cannot be empty")
	}
	if err := validateDealNumbers(input.Value, input.Probability); err != nil {
		return nil, DealOutput{}, err
	}

	patch := models.DealPatch{
		Title:       input.Title,
		ContactID:   input.ContactID,
		Value:       input.Value,
		Probability: input.Probability,
		Notes:       input.Notes,
	}
	if input.ExpectedCloseDate != nil {
		date, err := parseDate(*input.ExpectedCloseDate)
		if err != nil {
			return nil, DealOutput{}, err
		}
		patch.ExpectedCloseDate = date
	}

	deal, err := h.store.Deals.Update(ctx, input.ID, patch)
	if err != nil {
		return nil, DealOutput{}, wrap(h.logger, "update deal", err)
	}

	return nil, dealToOutput(deal), nil
}

type MoveDealStageInput struct {
	ID    int    `json:"id" jsonschema:"Deal ID (required)"`
	Stage string `json:"stage" jsonschema:"Target stage name (required)"`
}

type MoveDealStageOutput struct {
	Deal      DealOutput      `json:"deal"`
	FromStage string          `json:"from_stage"`
	Moved     bool            `json:"moved"`
	Activity  *ActivityOutput `json:"activity,omitempty"`
}

func (h *DealHandlers) MoveDealStage(ctx context.Context, _ *mcp.CallToolRequest, input MoveDealStageInput) (*mcp.CallToolResult, MoveDealStageOutput, error) {
	if input.Stage == "" {
		return nil, MoveDealStageOutput{}, fmt.Errorf("stage is required")
	}

	move, err := h.store.MoveDeal(ctx, input.ID, input.Stage)
	if err != nil {
		return nil, MoveDealStageOutput{}, wrap(h.logger, "move deal", err)
	}

	out := MoveDealStageOutput{
		Deal:      dealToOutput(move.Deal),
		FromStage: move.From,
		Moved:     move.Moved,
	}
	if move.Activity != nil {
		a := activityToOutput(move.Activity)
		out.Activity = &a
	}
	return nil, out, nil
}

type DeleteDealInput struct {
	ID int `json:"id" jsonschema:"Deal ID (required)"`
}

type DeleteDealOutput struct {
	Message  string          `json:"message"`
	Deal     DealOutput      `json:"deal"`
	Activity *ActivityOutput `json:"activity,omitempty"`
}

func (h *DealHandlers) DeleteDeal(ctx context.Context, _ *mcp.CallToolRequest, input DeleteDealInput) (*mcp.CallToolResult, DeleteDealOutput, error) {
	deal, activity, err := h.store.RemoveDeal(ctx, input.ID)
	if err != nil {
		return nil, DeleteDealOutput{}, wrap(h.logger, "delete deal", err)
	}

	out := DeleteDealOutput{
		Message: fmt.Sprintf("Deleted deal %q", deal.Title),
		Deal:    dealToOutput(deal),
	}
	if activity != nil {
		a := activityToOutput(activity)
		out.Activity = &a
	}
	return nil, out, nil
}

type GetPipelineMetricsInput struct{}

func (h *DealHandlers) GetPipelineMetrics(ctx context.Context, _ *mcp.CallToolRequest, _ GetPipelineMetricsInput) (*mcp.CallToolResult, models.PipelineMetrics, error) {
	metrics, err := h.store.Deals.GetPipelineMetrics(ctx)
	if err != nil {
		return nil, models.PipelineMetrics{}, wrap(h.logger, "compute pipeline metrics", err)
	}

	return nil, metrics, nil
}
