package trello

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tasknest/tasknest/internal/instrumentation"
	"github.com/tasknest/tasknest/internal/logging"
)

// DefaultBaseURL is the Trello REST API endpoint
const DefaultBaseURL = "https://api.trello.com/1"

const maxErrorBody = 512

// Client wraps authenticated calls to the Trello REST API.
// Authentication uses the key/token query parameters; every call is a single
// attempt and failures are surfaced to the caller without retries.
type Client struct {
	baseURL    string
	key        string
	token      string
	httpClient *http.Client
}

// Option configures a Client
type Option func(*Client)

// WithBaseURL overrides the API endpoint. Used by tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithHTTPClient overrides the underlying HTTP client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a new Trello client with the given credentials
func NewClient(key, token string, opts ...Option) (*Client, error) {
	if key == "" || token == "" {
		return nil, fmt.Errorf("trello: API key and token are required")
	}

	c := &Client{
		baseURL: DefaultBaseURL,
		key:     key,
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// do performs a single request against the API and decodes the JSON response
// into out when out is non-nil.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, out interface{}) error {
	ctx, span := instrumentation.StartTrelloAPISpan(ctx, op)
	defer span.End()

	if query == nil {
		query = url.Values{}
	}
	query.Set("key", c.key)
	query.Set("token", c.token)

	u := c.baseURL + path + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, method, u, nil)
	if err != nil {
		apiErr := &APIError{Op: op, Err: err}
		instrumentation.SetSpanError(span, apiErr)
		return apiErr
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		apiErr := &APIError{Op: op, Err: err}
		instrumentation.SetSpanError(span, apiErr)
		return apiErr
	}
	defer resp.Body.Close()

	slog.Debug("trello api call",
		logging.Operation(op),
		slog.Int("status_code", resp.StatusCode),
		slog.Duration(logging.KeyDuration, time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		apiErr := &APIError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
		instrumentation.SetSpanError(span, apiErr)
		return apiErr
	}

	if out == nil {
		instrumentation.SetSpanSuccess(span)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		apiErr := &APIError{Op: op, Err: fmt.Errorf("failed to decode response: %w", err)}
		instrumentation.SetSpanError(span, apiErr)
		return apiErr
	}

	instrumentation.SetSpanSuccess(span)
	return nil
}

// ListBoards lists the open boards the token's member can see
func (c *Client) ListBoards(ctx context.Context) ([]Board, error) {
	query := url.Values{}
	query.Set("filter", "open")
	query.Set("fields", "id,name,closed,url")

	var boards []Board
	if err := c.do(ctx, "listBoards", http.MethodGet, "/members/me/boards", query, &boards); err != nil {
		return nil, err
	}
	return boards, nil
}

// ListLists lists the open lists on a board
func (c *Client) ListLists(ctx context.Context, boardID string) ([]List, error) {
	query := url.Values{}
	query.Set("filter", "open")

	var lists []List
	if err := c.do(ctx, "listLists", http.MethodGet, "/boards/"+boardID+"/lists", query, &lists); err != nil {
		return nil, err
	}
	return lists, nil
}

// ListCards lists the cards in a list, in the service's native order
func (c *Client) ListCards(ctx context.Context, listID string) ([]Card, error) {
	var cards []Card
	if err := c.do(ctx, "listCards", http.MethodGet, "/lists/"+listID+"/cards", nil, &cards); err != nil {
		return nil, err
	}
	return cards, nil
}

// GetCard retrieves a single card by ID
func (c *Client) GetCard(ctx context.Context, cardID string) (*Card, error) {
	var card Card
	if err := c.do(ctx, "getCard", http.MethodGet, "/cards/"+cardID, nil, &card); err != nil {
		return nil, err
	}
	return &card, nil
}

// CreateCard creates a new card in the given list
func (c *Client) CreateCard(ctx context.Context, input CardInput) (*Card, error) {
	query := url.Values{}
	query.Set("idList", input.ListID)
	query.Set("name", input.Name)
	if input.Desc != "" {
		query.Set("desc", input.Desc)
	}
	if input.Pos != "" {
		query.Set("pos", input.Pos)
	}

	var card Card
	if err := c.do(ctx, "createCard", http.MethodPost, "/cards", query, &card); err != nil {
		return nil, err
	}
	return &card, nil
}

// MoveCard moves a card to a different list
func (c *Client) MoveCard(ctx context.Context, cardID, listID string) (*Card, error) {
	query := url.Values{}
	query.Set("idList", listID)

	var card Card
	if err := c.do(ctx, "moveCard", http.MethodPut, "/cards/"+cardID, query, &card); err != nil {
		return nil, err
	}
	return &card, nil
}

// UpdateCardDesc replaces a card's description
func (c *Client) UpdateCardDesc(ctx context.Context, cardID, desc string) (*Card, error) {
	query := url.Values{}
	query.Set("desc", desc)

	var card Card
	if err := c.do(ctx, "updateCardDesc", http.MethodPut, "/cards/"+cardID, query, &card); err != nil {
		return nil, err
	}
	return &card, nil
}

// DeleteCard permanently deletes a card
func (c *Client) DeleteCard(ctx context.Context, cardID string) error {
	return c.do(ctx, "deleteCard", http.MethodDelete, "/cards/"+cardID, nil, nil)
}

// ListChecklists lists the checklists on a card, check items included
func (c *Client) ListChecklists(ctx context.Context, cardID string) ([]Checklist, error) {
	query := url.Values{}
	query.Set("checkItems", "all")

	var checklists []Checklist
	if err := c.do(ctx, "listChecklists", http.MethodGet, "/cards/"+cardID+"/checklists", query, &checklists); err != nil {
		return nil, err
	}
	return checklists, nil
}

// CreateChecklist creates a new, empty checklist on a card
func (c *Client) CreateChecklist(ctx context.Context, cardID, name string) (*Checklist, error) {
	query := url.Values{}
	query.Set("name", name)

	var checklist Checklist
	if err := c.do(ctx, "createChecklist", http.MethodPost, "/cards/"+cardID+"/checklists", query, &checklist); err != nil {
		return nil, err
	}
	return &checklist, nil
}

// AddCheckItem appends an item to the end of a checklist
func (c *Client) AddCheckItem(ctx context.Context, checklistID, name string) (*CheckItem, error) {
	query := url.Values{}
	query.Set("name", name)
	query.Set("pos", "bottom")

	var item CheckItem
	if err := c.do(ctx, "addCheckItem", http.MethodPost, "/checklists/"+checklistID+"/checkItems", query, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// SetCheckItemState sets the completion state of a check item.
// The card ID is required because the Trello API addresses check item
// updates through the owning card.
func (c *Client) SetCheckItemState(ctx context.Context, cardID, itemID string, complete bool) (*CheckItem, error) {
	state := CheckItemIncomplete
	if complete {
		state = CheckItemComplete
	}

	query := url.Values{}
	query.Set("state", state)

	var item CheckItem
	if err := c.do(ctx, "setCheckItemState", http.MethodPut, "/cards/"+cardID+"/checkItem/"+itemID, query, &item); err != nil {
		return nil, err
	}
	return &item, nil
}
