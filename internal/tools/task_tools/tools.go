package task_tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/tasknest/tasknest/internal/board"
	"github.com/tasknest/tasknest/internal/server"
	"github.com/tasknest/tasknest/internal/tools/common"
	"github.com/tasknest/tasknest/internal/trello"
)

// DefaultChecklistName is the checklist the checklist tools operate on.
// Cards carry a single well-known checklist rather than arbitrary ones.
const DefaultChecklistName = "Checklist"

// getCard fetches a card by identifier, translating a remote 404 into a
// caller-friendly not-found message.
func getCard(ctx context.Context, sc *server.ServerContext, taskID string) (*trello.Card, error) {
	card, err := sc.TrelloClient().GetCard(ctx, taskID)
	if err != nil {
		if trello.IsNotFound(err) {
			return nil, fmt.Errorf("Task '%s' not found on board '%s'.", taskID, sc.Resolver().BoardName())
		}
		return nil, fmt.Errorf("Failed to fetch task: %v", err)
	}
	return card, nil
}

// RegisterTaskTools registers all task management tools with the MCP server.
func RegisterTaskTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	if err := registerTaskLifecycleTools(s, sc); err != nil {
		return fmt.Errorf("failed to register task lifecycle tools: %w", err)
	}

	if err := registerChecklistTools(s, sc); err != nil {
		return fmt.Errorf("failed to register checklist tools: %w", err)
	}

	return nil
}

// registerTaskLifecycleTools registers the tools that create, list, and
// advance tasks between state buckets.
func registerTaskLifecycleTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	// Add task tool
	addTaskTool := mcp.NewTool("add_task",
		mcp.WithDescription("Add a new task to the board. The task starts in the 'To Do' state."),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("The title of the new task"),
		),
		mcp.WithString("description",
			mcp.Description("Optional description of the task"),
		),
	)

	s.AddTool(addTaskTool, common.InstrumentedToolHandlerWithOperation("add_task", "create", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := request.GetArguments()

			title, ok := args["title"].(string)
			if !ok || title == "" {
				return mcp.NewToolResultError("title is required"), nil
			}
			description, _ := args["description"].(string)

			todoListID, err := sc.Resolver().TodoListID(ctx)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to resolve 'To Do' list: %v", err)), nil
			}

			card, err := sc.TrelloClient().CreateCard(ctx, trello.CardInput{
				Name:   title,
				Desc:   description,
				ListID: todoListID,
				Pos:    "bottom",
			})
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to add task: %v", err)), nil
			}

			task := board.TaskFromCard(*card, board.StatusTodo)
			result, _ := json.MarshalIndent(task, "", "  ")
			return mcp.NewToolResultText(fmt.Sprintf("Added new task '%s' to %s\n%s",
				title, sc.Resolver().BoardName(), string(result))), nil
		}))

	// Get tasks tool
	getTasksTool := mcp.NewTool("get_tasks",
		mcp.WithDescription("Get tasks from the board with optional filtering by state."),
		mcp.WithString("filter",
			mcp.Description("Filter type - 'all' (default), 'wip' (work in progress), or 'done'"),
		),
	)

	s.AddTool(getTasksTool, common.InstrumentedToolHandlerWithOperation("get_tasks", "list", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := request.GetArguments()

			filterArg, _ := args["filter"].(string)
			filter, err := board.ParseFilter(filterArg)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			var tasks []board.Task
			for _, status := range filter.Statuses() {
				listID, err := sc.Resolver().ListIDForStatus(ctx, status)
				if err != nil {
					return mcp.NewToolResultError(fmt.Sprintf("Failed to resolve list: %v", err)), nil
				}

				cards, err := sc.TrelloClient().ListCards(ctx, listID)
				if err != nil {
					return mcp.NewToolResultError(fmt.Sprintf("Failed to list tasks: %v", err)), nil
				}

				for _, card := range cards {
					tasks = append(tasks, board.TaskFromCard(card, status))
				}
			}

			message := tasksMessage(filter, len(tasks), sc.Resolver().BoardName())
			if len(tasks) == 0 {
				return mcp.NewToolResultText(message), nil
			}

			lines := []string{message}
			for i, task := range tasks {
				lines = append(lines, fmt.Sprintf("%d. %s - %s (Status: %s)",
					i+1, task.Title, task.Description, task.Status))
			}
			return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
		}))

	// Get next available task tool
	nextTaskTool := mcp.NewTool("get_next_available_task",
		mcp.WithDescription("Get the next available task from the 'To Do' list, in board order."),
	)

	s.AddTool(nextTaskTool, common.InstrumentedToolHandlerWithOperation("get_next_available_task", "list", sc,
		func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return nextAvailableTaskHandler(ctx, sc)
		}))

	// Update task description tool
	updateDescriptionTool := mcp.NewTool("update_task_description",
		mcp.WithDescription("Update a task's description. The new text is appended as a timestamped entry; earlier entries are preserved."),
		mcp.WithString("task_id",
			mcp.Required(),
			mcp.Description("The ID of the task to update"),
		),
		mcp.WithString("description",
			mcp.Required(),
			mcp.Description("The description text to record"),
		),
	)

	s.AddTool(updateDescriptionTool, common.InstrumentedToolHandlerWithOperation("update_task_description", "update", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return updateTaskDescriptionHandler(ctx, sc, request)
		}))

	// Mark as in progress tool
	markInProgressTool := mcp.NewTool("mark_as_in_progress",
		mcp.WithDescription("Move a task to the 'In Progress' list."),
		mcp.WithString("task_id",
			mcp.Required(),
			mcp.Description("The ID of the task to mark as in progress"),
		),
	)

	s.AddTool(markInProgressTool, common.InstrumentedToolHandlerWithOperation("mark_as_in_progress", "update", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return moveTaskHandler(ctx, sc, request, board.StatusWip,
				"Task '%s' marked as in progress.")
		}))

	// Mark as completed tool
	markCompletedTool := mcp.NewTool("mark_as_completed",
		mcp.WithDescription("Move a task to the 'Done' list."),
		mcp.WithString("task_id",
			mcp.Required(),
			mcp.Description("The ID of the task to mark as completed"),
		),
	)

	s.AddTool(markCompletedTool, common.InstrumentedToolHandlerWithOperation("mark_as_completed", "update", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return moveTaskHandler(ctx, sc, request, board.StatusDone,
				"Task '%s' has been completed.")
		}))

	return nil
}

// nextAvailableTaskHandler returns the first card of the 'To Do' list in
// board order. An empty list is reported as a normal outcome.
func nextAvailableTaskHandler(ctx context.Context, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	todoListID, err := sc.Resolver().TodoListID(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to resolve 'To Do' list: %v", err)), nil
	}

	cards, err := sc.TrelloClient().ListCards(ctx, todoListID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list tasks: %v", err)), nil
	}

	// An empty list is a normal outcome, not an error
	if len(cards) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No available tasks found in '%s'.",
			sc.Resolver().BoardName())), nil
	}

	task := board.TaskFromCard(cards[0], board.StatusTodo)
	result, _ := json.MarshalIndent(task, "", "  ")
	return mcp.NewToolResultText(fmt.Sprintf("Next available task: %s - %s\n%s",
		task.Title, task.Description, string(result))), nil
}

// updateTaskDescriptionHandler records a new description entry on a task.
// Existing text is never overwritten; each update appends a timestamped
// block so the description reads as a change log.
func updateTaskDescriptionHandler(ctx context.Context, sc *server.ServerContext, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	taskID, ok := args["task_id"].(string)
	if !ok || taskID == "" {
		return mcp.NewToolResultError("task_id is required"), nil
	}

	description, ok := args["description"].(string)
	if !ok || description == "" {
		return mcp.NewToolResultError("description is required"), nil
	}

	card, err := getCard(ctx, sc, taskID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	var desc string
	if card.Desc != "" {
		desc = fmt.Sprintf("%s\n\n--- Updated on %s ---\n%s", card.Desc, timestamp, description)
	} else {
		desc = fmt.Sprintf("--- Created on %s ---\n%s", timestamp, description)
	}

	updated, err := sc.TrelloClient().UpdateCardDesc(ctx, card.ID, desc)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to update task description: %v", err)), nil
	}

	// Derive the status from the card's current list so the response
	// reflects where the task actually sits
	status := board.StatusTodo
	if _, err := sc.Resolver().TodoListID(ctx); err == nil {
		if s, ok := sc.Resolver().StatusForList(updated.ListID); ok {
			status = s
		}
	}

	task := board.TaskFromCard(*updated, status)
	result, _ := json.MarshalIndent(task, "", "  ")
	return mcp.NewToolResultText(fmt.Sprintf("Description updated for task '%s' on board '%s'.\n%s",
		card.Name, sc.Resolver().BoardName(), string(result))), nil
}

// moveTaskHandler is the shared implementation of the two state-advance
// tools. It moves the identified card to the list encoding the target
// status. Moving is idempotent when the card is already there.
func moveTaskHandler(ctx context.Context, sc *server.ServerContext, request mcp.CallToolRequest, target board.Status, successFormat string) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	taskID, ok := args["task_id"].(string)
	if !ok || taskID == "" {
		return mcp.NewToolResultError("task_id is required"), nil
	}

	card, err := getCard(ctx, sc, taskID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	listID, err := sc.Resolver().ListIDForStatus(ctx, target)
	if err != nil {
		if errors.Is(err, board.ErrListNotFound) {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("Failed to resolve list: %v", err)), nil
	}

	if _, err := sc.TrelloClient().MoveCard(ctx, card.ID, listID); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to move task: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf(successFormat, card.Name)), nil
}

// tasksMessage builds the summary line for get_tasks results.
func tasksMessage(filter board.Filter, count int, boardName string) string {
	if count == 0 {
		switch filter {
		case board.FilterWip:
			return fmt.Sprintf("No work in progress tasks found in '%s'.", boardName)
		case board.FilterDone:
			return fmt.Sprintf("No completed tasks found in '%s'.", boardName)
		default:
			return fmt.Sprintf("No tasks found in '%s'.", boardName)
		}
	}

	switch filter {
	case board.FilterWip:
		return fmt.Sprintf("Found %d work in progress task(s) in '%s'.", count, boardName)
	case board.FilterDone:
		return fmt.Sprintf("Found %d completed task(s) in '%s'.", count, boardName)
	default:
		return fmt.Sprintf("Found %d task(s) in '%s'.", count, boardName)
	}
}
