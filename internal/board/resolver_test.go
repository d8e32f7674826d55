package board

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasknest/tasknest/internal/trello"
)

// boardFixture serves a board "Work" with the three default lists and
// counts how many remote calls the resolver makes.
func boardFixture(t *testing.T) (*Resolver, *atomic.Int64) {
	t.Helper()

	var calls atomic.Int64
	mux := http.NewServeMux()
	mux.HandleFunc("/members/me/boards", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id": "b1", "name": "Work"}, {"id": "b2", "name": "Home"}]`))
	})
	mux.HandleFunc("/boards/b1/lists", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id": "l1", "name": "To Do", "idBoard": "b1"},
			{"id": "l2", "name": "In Progress", "idBoard": "b1"},
			{"id": "l3", "name": "Done", "idBoard": "b1"}
		]`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client, err := trello.NewClient("k", "t", trello.WithBaseURL(srv.URL))
	require.NoError(t, err)

	return NewResolver(client, "Work", DefaultListNames()), &calls
}

func TestResolverBoardID(t *testing.T) {
	r, calls := boardFixture(t)
	ctx := context.Background()

	id, err := r.BoardID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "b1", id)

	// Second lookup served from cache
	id, err = r.BoardID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "b1", id)
	assert.Equal(t, int64(1), calls.Load())
}

func TestResolverPopulated(t *testing.T) {
	r, _ := boardFixture(t)

	assert.False(t, r.Populated())

	_, err := r.BoardID(context.Background())
	require.NoError(t, err)
	assert.True(t, r.Populated())
}

func TestResolverBoardNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id": "b2", "name": "Home"}]`))
	}))
	t.Cleanup(srv.Close)

	client, err := trello.NewClient("k", "t", trello.WithBaseURL(srv.URL))
	require.NoError(t, err)

	r := NewResolver(client, "Work", DefaultListNames())
	_, err = r.BoardID(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBoardNotFound))
}

func TestResolverListIDsCachedTogether(t *testing.T) {
	r, calls := boardFixture(t)
	ctx := context.Background()

	todoID, err := r.TodoListID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "l1", todoID)

	// The other buckets come out of the same cached lookup
	wipID, err := r.InProgressListID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "l2", wipID)

	doneID, err := r.DoneListID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "l3", doneID)

	// One boards call, one lists call
	assert.Equal(t, int64(2), calls.Load())
}

func TestResolverListNotFound(t *testing.T) {
	r, _ := boardFixture(t)

	_, err := r.ListID(context.Background(), "Blocked")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrListNotFound))
}

func TestResolverListIDForStatus(t *testing.T) {
	r, _ := boardFixture(t)
	ctx := context.Background()

	for status, want := range map[Status]string{
		StatusTodo: "l1",
		StatusWip:  "l2",
		StatusDone: "l3",
	} {
		id, err := r.ListIDForStatus(ctx, status)
		require.NoError(t, err)
		assert.Equal(t, want, id, "status %s", status)
	}

	_, err := r.ListIDForStatus(ctx, Status("blocked"))
	assert.Error(t, err)
}

func TestResolverStatusForList(t *testing.T) {
	r, _ := boardFixture(t)
	ctx := context.Background()

	// Populate the cache
	_, err := r.TodoListID(ctx)
	require.NoError(t, err)

	status, ok := r.StatusForList("l2")
	assert.True(t, ok)
	assert.Equal(t, StatusWip, status)

	_, ok = r.StatusForList("l999")
	assert.False(t, ok)
}
