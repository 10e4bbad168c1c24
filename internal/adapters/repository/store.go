// Package repository defines the note store interface and errors.
//
// The store is a key-value collaborator keyed by team identifier: one
// ordered sequence of note strings per team. Keys embed the team id, so
// cross-team collisions are impossible by construction.
package repository

import "context"

// Store provides read/write access to persisted team notes.
type Store interface {
	// Load returns the note sequence persisted for a team.
	// Returns ErrNotFound if the team has never saved notes.
	Load(ctx context.Context, teamID int) ([]string, error)

	// Save persists the note sequence for a team, replacing any previous one.
	Save(ctx context.Context, teamID int, notes []string) error

	// Delete removes a team's persisted notes. Deleting an absent team is
	// not an error.
	Delete(ctx context.Context, teamID int) error

	// Count returns the number of teams with persisted notes.
	Count(ctx context.Context) int
}
