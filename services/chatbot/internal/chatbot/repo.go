package chatbot

import (
	"context"

	"github.com/google/uuid"
)

// LinkRepo persists identity links and pending link tokens.
//
// CreateLink fails ErrAlreadyLinked when the channel already holds a
// link; link lookups fail ErrNotLinked when it does not. Token lookups
// return ErrTokenNotFound for absent or consumed tokens; expiry is the
// caller's call, the repo just stores records.
type LinkRepo interface {
	CreateToken(ctx context.Context, token *LinkToken) error
	GetToken(ctx context.Context, token string) (*LinkToken, error)
	DeleteToken(ctx context.Context, token string) error

	CreateLink(ctx context.Context, link *IdentityLink) error
	GetLinkByChannel(ctx context.Context, channelID string) (*IdentityLink, error)
	GetLinkByCustomer(ctx context.Context, customerID uuid.UUID) (*IdentityLink, error)
	DeleteLinkByChannel(ctx context.Context, channelID string) error
}
