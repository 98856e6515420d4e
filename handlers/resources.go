// ABOUTME: MCP resource handlers for exposing CRM data
// ABOUTME: Provides read-only access to contacts, deals, stages, pipeline, and activities via URI
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/harperreed/dealdesk/db"
	"github.com/harperreed/dealdesk/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

const resourceScheme = "crm://"

type ResourceHandlers struct {
	store  *db.Store
	logger *zap.Logger
}

func NewResourceHandlers(store *db.Store, logger *zap.Logger) *ResourceHandlers {
	return &ResourceHandlers{store: store, logger: logger}
}

// Resources lists the fixed resource URIs.
func (h *ResourceHandlers) Resources() []*mcp.Resource {
	return []*mcp.Resource{
		{URI: "crm://contacts", Name: "contacts", Description: "All contacts", MIMEType: "application/json"},
		{URI: "crm://deals", Name: "deals", Description: "All deals", MIMEType: "application/json"},
		{URI: "crm://stages", Name: "stages", Description: "Pipeline stages in column order", MIMEType: "application/json"},
		{URI: "crm://pipeline", Name: "pipeline", Description: "Pipeline metrics and stage breakdown", MIMEType: "application/json"},
		{URI: "crm://activities", Name: "activities", Description: "Recent activity feed", MIMEType: "application/json"},
	}
}

// Templates lists the per-record resource templates.
func (h *ResourceHandlers) Templates() []*mcp.ResourceTemplate {
	return []*mcp.ResourceTemplate{
		{URITemplate: "crm://contacts/{id}", Name: "contact", Description: "One contact with its deals and activities", MIMEType: "application/json"},
		{URITemplate: "crm://deals/{id}", Name: "deal", Description: "One deal with its activity history", MIMEType: "application/json"},
	}
}

// ReadResource handles resource read requests
func (h *ResourceHandlers) ReadResource(ctx context.Context, request *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := request.Params.URI
	if !strings.HasPrefix(uri, resourceScheme) {
		return nil, fmt.Errorf("invalid URI scheme: expected crm://")
	}

	parts := strings.Split(strings.TrimPrefix(uri, resourceScheme), "/")

	var payload any
	var err error
	switch {
	case parts[0] == "contacts" && len(parts) == 1:
		payload, err = h.store.Contacts.GetAll(ctx)
	case parts[0] == "contacts":
		payload, err = h.contactDetail(ctx, parts[1])
	case parts[0] == "deals" && len(parts) == 1:
		payload, err = h.store.Deals.GetAll(ctx)
	case parts[0] == "deals":
		payload, err = h.dealDetail(ctx, parts[1])
	case parts[0] == "stages":
		payload, err = h.store.Stages.GetAll(ctx)
	case parts[0] == "pipeline":
		payload, err = h.store.Deals.GetPipelineMetrics(ctx)
	case parts[0] == "activities":
		payload, err = h.store.Activities.GetRecent(ctx, 0)
	default:
		return nil, mcp.ResourceNotFoundError(uri)
	}
	if err != nil {
		if db.IsNotFound(err) {
			h.logger.Debug("resource not found", zap.String("uri", uri))
			return nil, mcp.ResourceNotFoundError(uri)
		}
		return nil, fmt.Errorf("failed to read %s: %w", uri, err)
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", uri, err)
	}

	return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{
		{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}}, nil
}

func (h *ResourceHandlers) contactDetail(ctx context.Context, idStr string) (any, error) {
	id, err := strconv.Atoi(idStr)
	if err != nil {
		return nil, fmt.Errorf("invalid contact ID: %w", err)
	}

	contact, err := h.store.Contacts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	deals, err := h.store.Deals.GetByContactID(ctx, id)
	if err != nil {
		return nil, err
	}
	activities, err := h.store.Activities.GetByContactID(ctx, id)
	if err != nil {
		return nil, err
	}

	return struct {
		models.Contact
		Deals      []models.Deal     `json:"deals"`
		Activities []models.Activity `json:"activities"`
	}{*contact, deals, activities}, nil
}

func (h *ResourceHandlers) dealDetail(ctx context.Context, idStr string) (any, error) {
	id, err := strconv.Atoi(idStr)
	if err != nil {
		return nil, fmt.Errorf("invalid deal ID: %w", err)
	}

	deal, err := h.store.Deals.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	activities, err := h.store.Activities.GetByDealID(ctx, id)
	if err != nil {
		return nil, err
	}

	return struct {
		models.Deal
		Activities []models.Activity `json:"activities"`
	}{*deal, activities}, nil
}
