// ABOUTME: Activity MCP tool handlers
// ABOUTME: Implements log_activity and get_recent_activities
package handlers

import (
	"context"
	"fmt"

	"github.com/harperreed/dealdesk/db"
	"github.com/harperreed/dealdesk/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

type ActivityHandlers struct {
	store       *db.Store
	logger      *zap.Logger
	recentLimit int
}

// NewActivityHandlers builds the activity tools. recentLimit is used when a
// caller omits the limit; zero falls through to the store default.
func NewActivityHandlers(store *db.Store, logger *zap.Logger, recentLimit int) *ActivityHandlers {
	return &ActivityHandlers{store: store, logger: logger, recentLimit: recentLimit}
}

type LogActivityInput struct {
	Type        string `json:"type" jsonschema:"Activity type: call, email, meeting, note, task, or demo (required)"`
	Description string `json:"description" jsonschema:"What happened (required)"`
	ContactID   *int   `json:"contact_id,omitempty" jsonschema:"Related contact ID"`
	DealID      *int   `json:"deal_id,omitempty" jsonschema:"Related deal ID"`
}

func (h *ActivityHandlers) LogActivity(ctx context.Context, _ *mcp.CallToolRequest, input LogActivityInput) (*mcp.CallToolResult, ActivityOutput, error) {
	kind := models.ActivityType(input.Type)
	if !kind.Valid() {
		return nil, ActivityOutput{}, fmt.Errorf("invalid activity type %q", input.Type)
	}
	if input.Description == "" {
		return nil, ActivityOutput{}, fmt.Errorf("description is required")
	}

	activity, err := h.store.Activities.Create(ctx, models.ActivityFields{
		Type:        kind,
		ContactID:   input.ContactID,
		DealID:      input.DealID,
		Description: input.Description,
	})
	if err != nil {
		return nil, ActivityOutput{}, wrap(h.logger, "log activity", err)
	}

	return nil, activityToOutput(activity), nil
}

type GetRecentActivitiesInput struct {
	Limit     int    `json:"limit,omitempty" jsonschema:"Maximum number of activities to return"`
	Type      string `json:"type,omitempty" jsonschema:"Only activities of this type"`
	ContactID int    `json:"contact_id,omitempty" jsonschema:"Only activities for this contact ID"`
	DealID    int    `json:"deal_id,omitempty" jsonschema:"Only activities for this deal ID"`
}

type ActivitiesOutput struct {
	Activities []ActivityOutput `json:"activities"`
	Count      int              `json:"count"`
}

// GetRecentActivities returns the newest activities. Filters narrow the
// feed before the limit is applied.
func (h *ActivityHandlers) GetRecentActivities(ctx context.Context, _ *mcp.CallToolRequest, input GetRecentActivitiesInput) (*mcp.CallToolResult, ActivitiesOutput, error) {
	if input.Type != "" && !models.ActivityType(input.Type).Valid() {
		return nil, ActivitiesOutput{}, fmt.Errorf("invalid activity type %q", input.Type)
	}

	limit := input.Limit
	if limit <= 0 {
		limit = h.recentLimit
	}

	var list []models.Activity
	var err error
	switch {
	case input.ContactID != 0:
		list, err = h.store.Activities.GetByContactID(ctx, input.ContactID)
	case input.DealID != 0:
		list, err = h.store.Activities.GetByDealID(ctx, input.DealID)
	case input.Type != "":
		list, err = h.store.Activities.GetByType(ctx, models.ActivityType(input.Type))
	default:
		list, err = h.store.Activities.GetRecent(ctx, limit)
	}
	if err != nil {
		return nil, ActivitiesOutput{}, wrap(h.logger, "get recent activities", err)
	}

	list = narrow(list, input)
	if limit <= 0 {
		limit = db.DefaultRecentLimit
	}
	if len(list) > limit {
		list = list[:limit]
	}

	return nil, ActivitiesOutput{Activities: activitiesToOutput(list), Count: len(list)}, nil
}

// narrow applies whichever filters the store query did not.
func narrow(list []models.Activity, input GetRecentActivitiesInput) []models.Activity {
	out := list[:0]
	for _, a := range list {
		if input.Type != "" && string(a.Type) != input.Type {
			continue
		}
		if input.ContactID != 0 && (a.ContactID == nil || *a.ContactID != input.ContactID) {
			continue
		}
		if input.DealID != 0 && (a.DealID == nil || *a.DealID != input.DealID) {
			continue
		}
		out = append(out, a)
	}
	return out
}
