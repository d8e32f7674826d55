package trello

// Board represents a Trello board
type Board struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Closed bool   `json:"closed"`
	URL    string `json:"url,omitempty"`
}

// List represents a list (column) on a board
type List struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	BoardID string  `json:"idBoard"`
	Closed  bool    `json:"closed"`
	Pos     float64 `json:"pos"`
}

// Card represents a card on a board.
// Field names follow the Trello REST API (idList, desc, dueComplete).
type Card struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Desc        string  `json:"desc"`
	ListID      string  `json:"idList"`
	BoardID     string  `json:"idBoard"`
	Closed      bool    `json:"closed"`
	Due         string  `json:"due,omitempty"`
	DueComplete bool    `json:"dueComplete"`
	Pos         float64 `json:"pos"`
	URL         string  `json:"url,omitempty"`
	ShortURL    string  `json:"shortUrl,omitempty"`
}

// Checklist represents a checklist attached to a card.
// CheckItems preserves the order returned by the service.
type Checklist struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	CardID     string      `json:"idCard"`
	Pos        float64     `json:"pos"`
	CheckItems []CheckItem `json:"checkItems"`
}

// CheckItem state values as used by the Trello API.
const (
	CheckItemComplete   = "complete"
	CheckItemIncomplete = "incomplete"
)

// CheckItem represents a single entry in a checklist
type CheckItem struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	State       string  `json:"state"` // "complete" or "incomplete"
	ChecklistID string  `json:"idChecklist"`
	Pos         float64 `json:"pos"`
}

// Complete reports whether the item has been checked off
func (ci CheckItem) Complete() bool {
	return ci.State == CheckItemComplete
}

// CardInput represents the input for creating a card
type CardInput struct {
	Name   string
	Desc   string
	ListID string
	// Pos is "top", "bottom" or a numeric string; empty means service default
	Pos string
}
