// Package board maps the remote Trello vocabulary (boards, lists, cards,
// check items) onto the task model the tools expose.
//
// A task's state is encoded entirely by which list its card sits in: the
// three well-known lists ("To Do", "In Progress", "Done" by default) are the
// state buckets, and state transitions are card moves between them. There
// are no local flags or labels.
//
// The Resolver translates the configured board name and the bucket names
// into remote identifiers once per process and caches them; the board
// structure is treated as immutable for the lifetime of a run.
package board
