// ABOUTME: MCP prompt handlers for reusable CRM workflow templates
// ABOUTME: Provides contact summary, deal analysis, and follow-up prompts
package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/harperreed/dealdesk/db"
	"github.com/harperreed/dealdesk/models"
	"github.com/harperreed/dealdesk/viz"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

type PromptHandlers struct {
	store  *db.Store
	logger *zap.Logger
	now    func() time.Time
}

func NewPromptHandlers(store *db.Store, logger *zap.Logger) *PromptHandlers {
	return &PromptHandlers{store: store, logger: logger, now: time.Now}
}

// Prompts lists the prompt templates this handler serves.
func (h *PromptHandlers) Prompts() []*mcp.Prompt {
	return []*mcp.Prompt{
		{
			Name:        "contact-summary",
			Description: "Summarize a contact with their deals and recent activity",
			Arguments: []*mcp.PromptArgument{
				{Name: "contact_id", Description: "Contact ID", Required: true},
			},
		},
		{
			Name:        "deal-analysis",
			Description: "Analyze pipeline health by stage",
		},
		{
			Name:        "follow-up-suggestions",
			Description: "Suggest follow-ups for open deals that have gone quiet",
			Arguments: []*mcp.PromptArgument{
				{Name: "days", Description: "Days without activity before a deal counts as quiet (default 7)"},
			},
		},
	}
}

// GetPrompt generates the prompt message based on the template
func (h *PromptHandlers) GetPrompt(ctx context.Context, request *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	name := request.Params.Name
	arguments := request.Params.Arguments
	switch name {
	case "contact-summary":
		return h.getContactSummaryPrompt(ctx, arguments)
	case "deal-analysis":
		return h.getDealAnalysisPrompt(ctx)
	case "follow-up-suggestions":
		return h.getFollowUpSuggestionsPrompt(ctx, arguments)
	default:
		return nil, fmt.Errorf("unknown prompt: %s", name)
	}
}

func (h *PromptHandlers) getContactSummaryPrompt(ctx context.Context, args map[string]string) (*mcp.GetPromptResult, error) {
	idStr, ok := args["contact_id"]
	if !ok {
		return nil, fmt.Errorf("contact_id is required")
	}
	contactID, err := strconv.Atoi(idStr)
	if err != nil {
		return nil, fmt.Errorf("invalid contact_id: %w", err)
	}

	contact, err := h.store.Contacts.GetByID(ctx, contactID)
	if err != nil {
		return nil, wrap(h.logger, "fetch contact", err)
	}
	deals, err := h.store.Deals.GetByContactID(ctx, contactID)
	if err != nil {
		return nil, wrap(h.logger, "fetch deals", err)
	}
	activities, err := h.store.Activities.GetByContactID(ctx, contactID)
	if err != nil {
		return nil, wrap(h.logger, "fetch activities", err)
	}

	var b strings.Builder
	b.WriteString("Please provide a comprehensive summary of this contact:\n\n")
	fmt.Fprintf(&b, "Name: %s\n", contact.Name)
	if contact.Position != "" || contact.Company != "" {
		fmt.Fprintf(&b, "Role: %s at %s\n", contact.Position, contact.Company)
	}
	if contact.Email != "" {
		fmt.Fprintf(&b, "Email: %s\n", contact.Email)
	}
	if len(contact.Tags) > 0 {
		fmt.Fprintf(&b, "Tags: %s\n", strings.Join(contact.Tags, ", "))
	}
	if contact.Notes != "" {
		fmt.Fprintf(&b, "\nNotes: %s\n", contact.Notes)
	}

	if len(deals) > 0 {
		b.WriteString("\nDeals:\n")
		for _, d := range deals {
			fmt.Fprintf(&b, "  - %s: %s, %s (%d%%)\n", d.Title, viz.FormatMoney(d.Value), d.Stage, d.Probability)
		}
	}
	if len(activities) > 0 {
		b.WriteString("\nRecent activity:\n")
		for i, a := range activities {
			if i == 5 {
				break
			}
			fmt.Fprintf(&b, "  - %s %s: %s\n", humanize.RelTime(a.Timestamp, h.now(), "ago", "from now"), a.Type, a.Description)
		}
	}

	b.WriteString("\nPlease analyze this contact and provide:")
	b.WriteString("\n1. A brief summary of their role and where their deals stand")
	b.WriteString("\n2. Recommendations for next steps or follow-up actions")
	b.WriteString("\n3. Any patterns or insights from their interaction history")

	return userPrompt(fmt.Sprintf("Summary for contact: %s", contact.Name), b.String()), nil
}

func (h *PromptHandlers) getDealAnalysisPrompt(ctx context.Context) (*mcp.GetPromptResult, error) {
	metrics, err := h.store.Deals.GetPipelineMetrics(ctx)
	if err != nil {
		return nil, wrap(h.logger, "compute pipeline metrics", err)
	}
	stages, err := h.store.Stages.GetAll(ctx)
	if err != nil {
		return nil, wrap(h.logger, "fetch stages", err)
	}

	var b strings.Builder
	b.WriteString("Please analyze the current deal pipeline:\n\n")
	fmt.Fprintf(&b, "Total Deals: %d (%d active)\n", metrics.TotalDeals, metrics.ActiveDeals)
	fmt.Fprintf(&b, "Total Value: %s\n", viz.FormatMoney(metrics.TotalValue))
	fmt.Fprintf(&b, "Win Rate: %.1f%%\n", metrics.WinRate)
	fmt.Fprintf(&b, "Average Deal Size: %s\n\n", viz.FormatMoney(metrics.AverageDealSize))
	b.WriteString("Pipeline by Stage:\n")
	for _, row := range viz.StageRows(metrics.StageBreakdown, stages) {
		fmt.Fprintf(&b, "  - %s: %d deals, %s\n", row.Stage, row.Count, viz.FormatMoney(row.Value))
	}

	b.WriteString("\nPlease provide:")
	b.WriteString("\n1. Analysis of pipeline health and distribution")
	b.WriteString("\n2. Recommendations for deals that may need attention")
	b.WriteString("\n3. Suggestions for improving conversion rates")

	return userPrompt("Deal pipeline analysis", b.String()), nil
}

func (h *PromptHandlers) getFollowUpSuggestionsPrompt(ctx context.Context, args map[string]string) (*mcp.GetPromptResult, error) {
	days := 7
	if s, ok := args["days"]; ok && s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid days: %q", s)
		}
		days = n
	}

	deals, err := h.store.Deals.GetAll(ctx)
	if err != nil {
		return nil, wrap(h.logger, "fetch deals", err)
	}
	activities, err := h.store.Activities.GetAll(ctx)
	if err != nil {
		return nil, wrap(h.logger, "fetch activities", err)
	}

	// activities are newest first, so the first hit per deal is its latest touch
	lastTouch := make(map[int]time.Time)
	for _, a := range activities {
		if a.DealID == nil {
			continue
		}
		if _, seen := lastTouch[*a.DealID]; !seen {
			lastTouch[*a.DealID] = a.Timestamp
		}
	}

	now := h.now()
	cutoff := now.AddDate(0, 0, -days)
	var quiet []models.Deal
	for _, d := range deals {
		if models.IsClosedStage(d.Stage) {
			continue
		}
		if t, ok := lastTouch[d.ID]; !ok || t.Before(cutoff) {
			quiet = append(quiet, d)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "These open deals have had no activity in the last %d days:\n\n", days)
	if len(quiet) == 0 {
		b.WriteString("(none, every open deal has recent activity)\n")
	}
	for _, d := range quiet {
		last := "never"
		if t, ok := lastTouch[d.ID]; ok {
			last = humanize.RelTime(t, now, "ago", "from now")
		}
		fmt.Fprintf(&b, "  - %s (%s, %s), last activity %s\n", d.Title, d.Stage, viz.FormatMoney(d.Value), last)
	}

	b.WriteString("\nFor each deal, suggest a concrete next step and who to contact.")

	return userPrompt("Follow-up suggestions", b.String()), nil
}

func userPrompt(description, text string) *mcp.GetPromptResult {
	return &mcp.GetPromptResult{
		Description: description,
		Messages: []*mcp.PromptMessage{
			{
				Role:    "user",
				Content: &mcp.TextContent{Text: text},
			},
		},
	}
}
