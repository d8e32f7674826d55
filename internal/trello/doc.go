// Package trello provides a client for the Trello REST API.
//
// The client covers the subset of the API the task manager needs:
//   - Boards and lists (read-only lookups)
//   - Cards (list, get, create, move, delete)
//   - Checklists and check items (list, create, append, set state)
//
// # Authentication
//
// Trello authenticates requests with an API key and a member token, passed
// as query parameters on every call. Both are supplied at construction time
// and typically come from the TRELLO_API_KEY and TRELLO_API_TOKEN
// environment variables.
//
// # Error handling
//
// Every failed call returns an *APIError carrying the operation name and,
// when the service responded, the HTTP status and a truncated body. Use
// IsNotFound and IsUnauthorized to classify failures. The client performs a
// single attempt per call; retries and backoff are left to the caller.
package trello
