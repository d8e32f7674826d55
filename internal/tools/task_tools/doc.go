// Package task_tools provides the MCP tools for managing tasks on a Trello
// board.
//
// A task's state is encoded purely by list membership: cards in "To Do" are
// pending, cards in "In Progress" are being worked on, and cards in "Done"
// are finished. State transitions are card moves between those lists.
//
// # Available Tools
//
// Task lifecycle:
//   - add_task: Create a task at the bottom of "To Do"
//   - get_tasks: List tasks, optionally filtered by state (all/wip/done)
//   - get_next_available_task: First card of "To Do" in board order
//   - update_task_description: Append a timestamped description entry
//   - mark_as_in_progress: Move a task to "In Progress"
//   - mark_as_completed: Move a task to "Done"
//
// Checklists:
//   - update_task_with_checklist: Append items to the task's checklist,
//     creating it when absent
//   - complete_checklist_item: Check off one item by ID or exact name
//   - get_next_unchecked_checklist_item: First incomplete item in stored order
//
// Tasks are addressed by card ID. Not-found conditions, invalid arguments,
// and remote failures are returned as tool errors; an empty "To Do" list or
// a fully checked checklist is a normal text result, never an error.
package task_tools
