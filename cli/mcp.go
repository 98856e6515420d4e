// ABOUTME: MCP server subcommand
// ABOUTME: Registers the CRM tools, resources, and prompts and serves them over stdio
package cli

import (
	"fmt"

	"github.com/harperreed/dealdesk/handlers"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newMCPCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Start the MCP server on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext(cmd.Context())
			defer stop()

			app.Logger.Info("starting MCP server", zap.String("session", app.Store.SessionID()))
			if err := newMCPServer(app).Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
				return fmt.Errorf("MCP server failed: %w", err)
			}
			return nil
		},
	}
}

// newMCPServer builds the server with every tool, resource, and prompt
// registered against the app's store.
func newMCPServer(app *App) *mcp.Server {
	store, logger := app.Store, app.Logger

	contactHandlers := handlers.NewContactHandlers(store, logger)
	dealHandlers := handlers.NewDealHandlers(store, logger)
	activityHandlers := handlers.NewActivityHandlers(store, logger, app.Config.RecentLimit)
	stageHandlers := handlers.NewStageHandlers(store, logger)
	queryHandlers := handlers.NewQueryHandlers(store, logger)
	vizHandlers := handlers.NewVizHandlers(store, logger)
	resourceHandlers := handlers.NewResourceHandlers(store, logger)
	promptHandlers := handlers.NewPromptHandlers(store, logger)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "dealdesk",
		Version: Version,
	}, nil)

	// Contacts
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_contacts",
		Description: "List all contacts, optionally only those carrying a tag",
	}, contactHandlers.ListContacts)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_contacts",
		Description: "Search contacts by name, email, or company (case-insensitive)",
	}, contactHandlers.SearchContacts)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_contact",
		Description: "Get a contact with their deals and activity history",
	}, contactHandlers.GetContact)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_contact",
		Description: "Add a new contact to the CRM",
	}, contactHandlers.AddContact)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_contact",
		Description: "Update an existing contact's information",
	}, contactHandlers.UpdateContact)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_contact",
		Description: "Delete a contact. Their deals and activities are kept.",
	}, contactHandlers.DeleteContact)

	// Deals
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_deals",
		Description: "List deals, optionally filtered by stage and contact",
	}, dealHandlers.ListDeals)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "create_deal",
		Description: "Create a deal for a contact. Probability defaults from the stage.",
	}, dealHandlers.CreateDeal)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_deal",
		Description: "Update a deal's title, value, probability, close date, or notes",
	}, dealHandlers.UpdateDeal)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "move_deal_stage",
		Description: "Move a deal to another pipeline stage, resetting its probability and logging the move",
	}, dealHandlers.MoveDealStage)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_deal",
		Description: "Delete a deal and log a note against its contact",
	}, dealHandlers.DeleteDeal)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_pipeline_metrics",
		Description: "Total value, win rate, average deal size, and per-stage breakdown",
	}, dealHandlers.GetPipelineMetrics)

	// Activities
	mcp.AddTool(server, &mcp.Tool{
		Name:        "log_activity",
		Description: "Log a call, email, meeting, note, task, or demo",
	}, activityHandlers.LogActivity)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_recent_activities",
		Description: "Most recent activities first, optionally filtered by type, contact, or deal",
	}, activityHandlers.GetRecentActivities)

	// Stages
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_stages",
		Description: "List pipeline stages in column order",
	}, stageHandlers.ListStages)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "reorder_stages",
		Description: "Set new column positions for stages; unknown IDs are ignored",
	}, stageHandlers.ReorderStages)

	// Query and visualization
	mcp.AddTool(server, &mcp.Tool{
		Name:        "query_crm",
		Description: "Flexible query across contacts, deals, or activities with filters",
	}, queryHandlers.QueryCRM)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "generate_graph",
		Description: "Generate a GraphViz DOT graph of the pipeline or one contact",
	}, vizHandlers.GenerateGraph)

	for _, r := range resourceHandlers.Resources() {
		server.AddResource(r, resourceHandlers.ReadResource)
	}
	for _, t := range resourceHandlers.Templates() {
		server.AddResourceTemplate(t, resourceHandlers.ReadResource)
	}

	for _, p := range promptHandlers.Prompts() {
		server.AddPrompt(p, promptHandlers.GetPrompt)
	}

	return server
}
