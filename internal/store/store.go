// Package store abstracts the externally-owned profile document store that
// holds the social-media verification fields, queryable by account id.
package store

import (
	"context"
	"errors"
)

// ProfileDocument is one creator profile record. The document is owned by the
// external store; this service only reads it and overwrites the code fields.
type ProfileDocument struct {
	ID                  string
	AccountID           string
	SocialMedia         string
	SocialMediaUsername string
	VerificationCode    string
	CodeConfirmed       bool
}

// Profiles is the document-store contract the dispatcher needs.
type Profiles interface {
	// FindByAccountID returns every profile document whose account-id field
	// equals accountID, in store order. An empty slice means not found.
	FindByAccountID(ctx context.Context, accountID string) ([]ProfileDocument, error)

	// SetVerificationCode overwrites the stored code and resets the
	// confirmation flag to false in a single update.
	SetVerificationCode(ctx context.Context, documentID, code string) error
}

// ErrNotFound indica que no hay documento de perfil para esa cuenta.
var ErrNotFound = errors.New("store: document not found")
