// Package account resolves an opaque user identifier against the external
// account service that owns display name and email.
package account

import (
	"context"
	"errors"
)

// Account is the subset of the account record this service consumes.
// Read-only: the dispatcher never writes back to the account service.
type Account struct {
	ID    string
	Name  string
	Email string
}

// Service looks up accounts by id.
type Service interface {
	// Get fetches the account. Returns ErrNotFound if the id is unknown.
	Get(ctx context.Context, userID string) (*Account, error)
}

// ErrNotFound indica que la cuenta no existe en el servicio externo.
var ErrNotFound = errors.New("account: not found")
