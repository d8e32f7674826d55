package task_tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/tasknest/tasknest/internal/board"
	"github.com/tasknest/tasknest/internal/server"
	"github.com/tasknest/tasknest/internal/tools/common"
	"github.com/tasknest/tasknest/internal/trello"
)

// getChecklist fetches the well-known checklist of a card. The returned
// checklist carries its check items in stored order.
func getChecklist(ctx context.Context, sc *server.ServerContext, card *trello.Card) (*trello.Checklist, error) {
	checklists, err := sc.TrelloClient().ListChecklists(ctx, card.ID)
	if err != nil {
		return nil, fmt.Errorf("Failed to fetch checklists: %v", err)
	}

	checklist := board.FindChecklist(checklists, DefaultChecklistName)
	if checklist == nil {
		return nil, fmt.Errorf("Checklist '%s' not found for task '%s'.", DefaultChecklistName, card.Name)
	}
	return checklist, nil
}

// registerChecklistTools registers the tools that manage checklist items on
// a task's well-known checklist.
func registerChecklistTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	// Update task with checklist tool
	updateChecklistTool := mcp.NewTool("update_task_with_checklist",
		mcp.WithDescription("Add checklist items to a task. Creates the checklist if the task has none yet; items are appended in the given order."),
		mcp.WithString("task_id",
			mcp.Required(),
			mcp.Description("The ID of the task to update"),
		),
		mcp.WithArray("items",
			mcp.Required(),
			mcp.Description("Checklist item names, in order"),
			mcp.WithStringItems(),
		),
	)

	s.AddTool(updateChecklistTool, common.InstrumentedToolHandlerWithOperation("update_task_with_checklist", "update", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := request.GetArguments()

			taskID, ok := args["task_id"].(string)
			if !ok || taskID == "" {
				return mcp.NewToolResultError("task_id is required"), nil
			}

			rawItems, ok := args["items"].([]interface{})
			if !ok || len(rawItems) == 0 {
				return mcp.NewToolResultError("items is required and must be a non-empty array of strings"), nil
			}

			items := make([]string, 0, len(rawItems))
			for _, raw := range rawItems {
				item, ok := raw.(string)
				if !ok || item == "" {
					return mcp.NewToolResultError("items must contain non-empty strings"), nil
				}
				items = append(items, item)
			}

			card, err := getCard(ctx, sc, taskID)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			checklists, err := sc.TrelloClient().ListChecklists(ctx, card.ID)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to fetch checklists: %v", err)), nil
			}

			checklist := board.FindChecklist(checklists, DefaultChecklistName)
			if checklist == nil {
				checklist, err = sc.TrelloClient().CreateChecklist(ctx, card.ID, DefaultChecklistName)
				if err != nil {
					return mcp.NewToolResultError(fmt.Sprintf("Failed to create checklist: %v", err)), nil
				}
			}

			for _, item := range items {
				if _, err := sc.TrelloClient().AddCheckItem(ctx, checklist.ID, item); err != nil {
					return mcp.NewToolResultError(fmt.Sprintf("Failed to add checklist item '%s': %v", item, err)), nil
				}
			}

			// Re-fetch so the response reflects the stored item order
			checklists, err = sc.TrelloClient().ListChecklists(ctx, card.ID)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to fetch checklists: %v", err)), nil
			}
			message := fmt.Sprintf("Checklist added to task '%s'.", card.Name)
			if updated := board.FindChecklist(checklists, DefaultChecklistName); updated != nil {
				payload, _ := json.MarshalIndent(board.ItemsFromChecklist(*updated), "", "  ")
				message = fmt.Sprintf("%s\n%s", message, payload)
			}

			return mcp.NewToolResultText(message), nil
		}))

	// Complete checklist item tool
	completeItemTool := mcp.NewTool("complete_checklist_item",
		mcp.WithDescription("Mark one checklist item of a task as complete. The item is matched by ID first, then by exact name."),
		mcp.WithString("task_id",
			mcp.Required(),
			mcp.Description("The ID of the task the item belongs to"),
		),
		mcp.WithString("item",
			mcp.Required(),
			mcp.Description("The checklist item's ID or exact name"),
		),
	)

	s.AddTool(completeItemTool, common.InstrumentedToolHandlerWithOperation("complete_checklist_item", "update", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return completeChecklistItemHandler(ctx, sc, request)
		}))

	return registerNextUncheckedItemTool(s, sc)
}

// completeChecklistItemHandler marks one checklist item of a task as
// complete. The item is matched by ID first, then by exact name, and an
// already-complete item is left untouched.
func completeChecklistItemHandler(ctx context.Context, sc *server.ServerContext, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	taskID, ok := args["task_id"].(string)
	if !ok || taskID == "" {
		return mcp.NewToolResultError("task_id is required"), nil
	}

	identifier, ok := args["item"].(string)
	if !ok || identifier == "" {
		return mcp.NewToolResultError("item is required"), nil
	}

	card, err := getCard(ctx, sc, taskID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	checklist, err := getChecklist(ctx, sc, card)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	item := board.FindCheckItem(checklist, identifier)
	if item == nil {
		return mcp.NewToolResultError(fmt.Sprintf("Checklist item '%s' not found for task '%s'.",
			identifier, card.Name)), nil
	}

	// Completing an already-complete item is a no-op
	if !item.Complete() {
		if _, err := sc.TrelloClient().SetCheckItemState(ctx, card.ID, item.ID, true); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to complete checklist item: %v", err)), nil
		}
	}

	return mcp.NewToolResultText(fmt.Sprintf("Checklist item '%s' in task '%s' completed.",
		item.Name, card.Name)), nil
}

// registerNextUncheckedItemTool registers the tool that suggests the next
// checklist item to work on.
func registerNextUncheckedItemTool(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	nextItemTool := mcp.NewTool("get_next_unchecked_checklist_item",
		mcp.WithDescription("Get the first unchecked checklist item of a task, in stored order."),
		mcp.WithString("task_id",
			mcp.Required(),
			mcp.Description("The ID of the task to inspect"),
		),
	)

	s.AddTool(nextItemTool, common.InstrumentedToolHandlerWithOperation("get_next_unchecked_checklist_item", "get", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := request.GetArguments()

			taskID, ok := args["task_id"].(string)
			if !ok || taskID == "" {
				return mcp.NewToolResultError("task_id is required"), nil
			}

			card, err := getCard(ctx, sc, taskID)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			checklist, err := getChecklist(ctx, sc, card)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			item := board.NextUncheckedItem(checklist)
			if item == nil {
				// All items checked is a normal outcome, not an error
				return mcp.NewToolResultText(fmt.Sprintf("No unchecked checklist items found for task '%s'.",
					card.Name)), nil
			}

			return mcp.NewToolResultText(fmt.Sprintf("Next unchecked checklist item for task '%s': %s",
				card.Name, item.Name)), nil
		}))

	return nil
}
