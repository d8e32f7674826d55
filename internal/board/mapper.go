package board

import (
	"fmt"

	"github.com/tasknest/tasknest/internal/trello"
)

// Status is the task state derived from list membership
type Status string

// Task states. A card is in exactly one list at any time, so a task has
// exactly one status; transitions between states are list moves.
const (
	StatusTodo Status = "todo"
	StatusWip  Status = "wip"
	StatusDone Status = "done"
)

// Filter selects which tasks get_tasks returns
type Filter string

// Filter values accepted by get_tasks
const (
	FilterAll  Filter = "all"
	FilterWip  Filter = "wip"
	FilterDone Filter = "done"
)

// ParseFilter validates a filter argument, defaulting empty input to "all"
func ParseFilter(s string) (Filter, error) {
	switch Filter(s) {
	case "":
		return FilterAll, nil
	case FilterAll, FilterWip, FilterDone:
		return Filter(s), nil
	default:
		return "", fmt.Errorf("invalid filter %q: must be one of all, wip, done", s)
	}
}

// Statuses returns the task states the filter covers
func (f Filter) Statuses() []Status {
	switch f {
	case FilterWip:
		return []Status{StatusWip}
	case FilterDone:
		return []Status{StatusDone}
	default:
		return []Status{StatusTodo, StatusWip, StatusDone}
	}
}

// Task is a unit of work as exposed to tool callers
type Task struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Status      Status          `json:"status"`
	URL         string          `json:"url,omitempty"`
	Checklist   []ChecklistItem `json:"checklist,omitempty"`
}

// ChecklistItem is a sub-task entry attached to a Task. Order follows the
// sequence returned by the remote service.
type ChecklistItem struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Complete bool   `json:"complete"`
}

// TaskFromCard converts a remote card into a Task with the given status
func TaskFromCard(card trello.Card, status Status) Task {
	return Task{
		ID:          card.ID,
		Title:       card.Name,
		Description: card.Desc,
		Status:      status,
		URL:         card.ShortURL,
	}
}

// ItemsFromChecklist converts remote check items, preserving their order
func ItemsFromChecklist(checklist trello.Checklist) []ChecklistItem {
	if len(checklist.CheckItems) == 0 {
		return nil
	}

	items := make([]ChecklistItem, len(checklist.CheckItems))
	for i, ci := range checklist.CheckItems {
		items[i] = ChecklistItem{
			ID:       ci.ID,
			Name:     ci.Name,
			Complete: ci.Complete(),
		}
	}
	return items
}

// FindChecklist returns the checklist with the given name, or nil
func FindChecklist(checklists []trello.Checklist, name string) *trello.Checklist {
	for i := range checklists {
		if checklists[i].Name == name {
			return &checklists[i]
		}
	}
	return nil
}

// FindCheckItem locates a check item by ID first, then by exact name.
// Returns nil if nothing matches.
func FindCheckItem(checklist *trello.Checklist, identifier string) *trello.CheckItem {
	for i := range checklist.CheckItems {
		if checklist.CheckItems[i].ID == identifier {
			return &checklist.CheckItems[i]
		}
	}
	for i := range checklist.CheckItems {
		if checklist.CheckItems[i].Name == identifier {
			return &checklist.CheckItems[i]
		}
	}
	return nil
}

// NextUncheckedItem returns the first incomplete item in stored order,
// or nil when every item is complete
func NextUncheckedItem(checklist *trello.Checklist) *trello.CheckItem {
	for i := range checklist.CheckItems {
		if !checklist.CheckItems[i].Complete() {
			return &checklist.CheckItems[i]
		}
	}
	return nil
}
