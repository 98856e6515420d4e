// ABOUTME: Universal query tool handler
// ABOUTME: Implements flexible filtering across contacts, deals, and activities
package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/harperreed/dealdesk/db"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

const defaultQueryLimit = 10

type QueryHandlers struct {
	store  *db.Store
	logger *zap.Logger
}

func NewQueryHandlers(store *db.Store, logger *zap.Logger) *QueryHandlers {
	return &QueryHandlers{store: store, logger: logger}
}

type QueryCRMInput struct {
	EntityType string         `json:"entity_type" jsonschema:"Type of entity to query (contact, deal, activity)"`
	Query      string         `json:"query,omitempty" jsonschema:"Search text (contact fields, deal title, activity description)"`
	Filters    map[string]any `json:"filters,omitempty" jsonschema:"Additional filters: stage, contact_id, deal_id, type, tag, min_value, max_value"`
	Limit      int            `json:"limit,omitempty" jsonschema:"Maximum results to return (default 10)"`
}

type QueryCRMOutput struct {
	EntityType string `json:"entity_type"`
	Results    []any  `json:"results"`
	Count      int    `json:"count"`
}

func (h *QueryHandlers) QueryCRM(ctx context.Context, _ *mcp.CallToolRequest, input QueryCRMInput) (*mcp.CallToolResult, QueryCRMOutput, error) {
	if input.Limit <= 0 {
		input.Limit = defaultQueryLimit
	}

	var results []any
	var err error
	switch input.EntityType {
	case "contact":
		results, err = h.queryContacts(ctx, input)
	case "deal":
		results, err = h.queryDeals(ctx, input)
	case "activity":
		results, err = h.queryActivities(ctx, input)
	default:
		return nil, QueryCRMOutput{}, fmt.Errorf("invalid entity_type: %s (valid: contact, deal, activity)", input.EntityType)
	}
	if err != nil {
		return nil, QueryCRMOutput{}, err
	}

	if len(results) > input.Limit {
		results = results[:input.Limit]
	}
	if results == nil {
		results = []any{}
	}

	return nil, QueryCRMOutput{
		EntityType: input.EntityType,
		Results:    results,
		Count:      len(results),
	}, nil
}

func (h *QueryHandlers) queryContacts(ctx context.Context, input QueryCRMInput) ([]any, error) {
	contacts, err := h.store.Contacts.Search(ctx, input.Query)
	if err != nil {
		return nil, wrap(h.logger, "find contacts", err)
	}

	tag, _ := input.Filters["tag"].(string)
	var results []any
	for i := range contacts {
		if tag != "" && !hasTag(contacts[i].Tags, tag) {
			continue
		}
		results = append(results, contactToOutput(&contacts[i]))
	}
	return results, nil
}

func (h *QueryHandlers) queryDeals(ctx context.Context, input QueryCRMInput) ([]any, error) {
	deals, err := h.store.Deals.GetAll(ctx)
	if err != nil {
		return nil, wrap(h.logger, "find deals", err)
	}

	stage, _ := input.Filters["stage"].(string)
	contactID, hasContact := intFilter(input.Filters, "contact_id")
	minValue, hasMin := input.Filters["min_value"].(float64)
	maxValue, hasMax := input.Filters["max_value"].(float64)
	query := strings.ToLower(input.Query)

	var results []any
	for i, d := range deals {
		if stage != "" && d.Stage != stage {
			continue
		}
		if hasContact && d.ContactID != contactID {
			continue
		}
		if hasMin && d.Value < minValue {
			continue
		}
		if hasMax && d.Value > maxValue {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(d.Title), query) {
			continue
		}
		results = append(results, dealToOutput(&deals[i]))
	}
	return results, nil
}

func (h *QueryHandlers) queryActivities(ctx context.Context, input QueryCRMInput) ([]any, error) {
	activities, err := h.store.Activities.GetAll(ctx)
	if err != nil {
		return nil, wrap(h.logger, "find activities", err)
	}

	kind, _ := input.Filters["type"].(string)
	contactID, hasContact := intFilter(input.Filters, "contact_id")
	dealID, hasDeal := intFilter(input.Filters, "deal_id")
	query := strings.ToLower(input.Query)

	var results []any
	for i, a := range activities {
		if kind != "" && string(a.Type) != kind {
			continue
		}
		if hasContact && (a.ContactID == nil || *a.ContactID != contactID) {
			continue
		}
		if hasDeal && (a.DealID == nil || *a.DealID != dealID) {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(a.Description), query) {
			continue
		}
		results = append(results, activityToOutput(&activities[i]))
	}
	return results, nil
}

// intFilter reads a numeric filter. JSON numbers arrive as float64.
func intFilter(filters map[string]any, key string) (int, bool) {
	switch v := filters[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	default:
		return 0, false
	}
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}
