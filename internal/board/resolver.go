package board

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/tasknest/tasknest/internal/logging"
	"github.com/tasknest/tasknest/internal/trello"
)

// Sentinel errors for resolution failures. ErrBoardNotFound is a
// configuration problem (the board name comes from the environment);
// ErrListNotFound means the board is missing one of its state buckets.
var (
	ErrBoardNotFound = errors.New("board not found")
	ErrListNotFound  = errors.New("list not found")
)

// ListNames holds the names of the three well-known state buckets
type ListNames struct {
	Todo       string
	InProgress string
	Done       string
}

// DefaultListNames returns the conventional bucket names
func DefaultListNames() ListNames {
	return ListNames{
		Todo:       "To Do",
		InProgress: "In Progress",
		Done:       "Done",
	}
}

// Resolver locates the configured board and its well-known lists by name
// and caches the identifiers for the process lifetime. The remote board
// structure is assumed stable for the duration of a run; repopulating the
// cache is idempotent, so concurrent first calls are safe.
type Resolver struct {
	client    *trello.Client
	boardName string
	names     ListNames

	mu      sync.RWMutex
	boardID string
	listIDs map[string]string // list name -> ID
}

// NewResolver creates a resolver for the named board
func NewResolver(client *trello.Client, boardName string, names ListNames) *Resolver {
	return &Resolver{
		client:    client,
		boardName: boardName,
		names:     names,
		listIDs:   make(map[string]string),
	}
}

// ListNames returns the configured bucket names
func (r *Resolver) ListNames() ListNames {
	return r.names
}

// BoardName returns the configured board name
func (r *Resolver) BoardName() string {
	return r.boardName
}

// Populated reports whether the configured board has been resolved to an
// identifier. Readiness checks use this to tell a configured server from
// one that can actually reach its board.
func (r *Resolver) Populated() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.boardID != ""
}

// BoardID resolves the configured board name to its identifier,
// caching the result
func (r *Resolver) BoardID(ctx context.Context) (string, error) {
	r.mu.RLock()
	id := r.boardID
	r.mu.RUnlock()
	if id != "" {
		return id, nil
	}

	boards, err := r.client.ListBoards(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list boards: %w", err)
	}

	for _, b := range boards {
		if b.Name == r.boardName {
			r.mu.Lock()
			r.boardID = b.ID
			r.mu.Unlock()
			slog.Debug("resolved board", logging.Board(r.boardName), slog.String("board_id", b.ID))
			return b.ID, nil
		}
	}

	return "", fmt.Errorf("%w: no board named %q", ErrBoardNotFound, r.boardName)
}

// ListID resolves a list name within the configured board to its
// identifier, caching the result. All lists of the board are cached on the
// first lookup so the three buckets cost one remote call.
func (r *Resolver) ListID(ctx context.Context, name string) (string, error) {
	r.mu.RLock()
	id, ok := r.listIDs[name]
	r.mu.RUnlock()
	if ok {
		return id, nil
	}

	boardID, err := r.BoardID(ctx)
	if err != nil {
		return "", err
	}

	lists, err := r.client.ListLists(ctx, boardID)
	if err != nil {
		return "", fmt.Errorf("failed to list lists: %w", err)
	}

	r.mu.Lock()
	for _, l := range lists {
		r.listIDs[l.Name] = l.ID
	}
	id, ok = r.listIDs[name]
	r.mu.Unlock()

	if !ok {
		return "", fmt.Errorf("%w: no list named %q on board %q", ErrListNotFound, name, r.boardName)
	}
	slog.Debug("resolved list", logging.Board(r.boardName), logging.List(name), slog.String("list_id", id))
	return id, nil
}

// TodoListID resolves the "To Do" bucket
func (r *Resolver) TodoListID(ctx context.Context) (string, error) {
	return r.ListID(ctx, r.names.Todo)
}

// InProgressListID resolves the "In Progress" bucket
func (r *Resolver) InProgressListID(ctx context.Context) (string, error) {
	return r.ListID(ctx, r.names.InProgress)
}

// DoneListID resolves the "Done" bucket
func (r *Resolver) DoneListID(ctx context.Context) (string, error) {
	return r.ListID(ctx, r.names.Done)
}

// ListIDForStatus resolves the bucket encoding the given status
func (r *Resolver) ListIDForStatus(ctx context.Context, status Status) (string, error) {
	switch status {
	case StatusTodo:
		return r.TodoListID(ctx)
	case StatusWip:
		return r.InProgressListID(ctx)
	case StatusDone:
		return r.DoneListID(ctx)
	default:
		return "", fmt.Errorf("no list for status %q", status)
	}
}

// StatusForList reports the task status a list membership encodes.
// The boolean is false for lists outside the three well-known buckets,
// and for any list while the cache is still empty. Callers resolve at
// least one bucket via ListID before mapping cards.
func (r *Resolver) StatusForList(listID string) (Status, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	switch listID {
	case r.listIDs[r.names.Todo]:
		return StatusTodo, listID != ""
	case r.listIDs[r.names.InProgress]:
		return StatusWip, listID != ""
	case r.listIDs[r.names.Done]:
		return StatusDone, listID != ""
	default:
		return "", false
	}
}
