// Package service defines the remote task backend that local tasks are
// mirrored into by the push command.
package service

import "context"

// Service is the remote side of push. Commands never import the Google SDK
// directly.
type Service interface {
	// DefaultList returns the user's default remote list.
	DefaultList(ctx context.Context) (TaskList, error)

	// ResolveList finds a list by name (case-insensitive, trimmed).
	// Returns an error containing "not found" or "ambiguous" on failure.
	ResolveList(ctx context.Context, name string) (TaskList, error)

	// ListOpenTasks returns every open task in the list, across all pages,
	// in API order.
	ListOpenTasks(ctx context.Context, listID string) ([]Task, error)

	// CreateTask creates an open task with optional notes.
	CreateTask(ctx context.Context, listID, title, notes string) error
}
