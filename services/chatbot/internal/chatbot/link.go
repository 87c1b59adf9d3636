package chatbot

import (
	"errors"
	"time"

	"github.com/aquamarinepk/aqm"
	"github.com/google/uuid"
)

// TokenTTL is how long an issued link token stays redeemable.
const TokenTTL = 10 * time.Minute

var (
	ErrTokenNotFound = errors.New("link token not found")
	ErrTokenExpired  = errors.New("link token expired")
	ErrAlreadyLinked = errors.New("channel already linked")
	ErrNotLinked     = errors.New("channel not linked")
)

// IdentityLink binds one chat channel to one customer account. A channel
// holds at most one link at a time.
type IdentityLink struct {
	ID            uuid.UUID `json:"id" bson:"_id"`
	CustomerID    uuid.UUID `json:"customer_id" bson:"customer_id"`
	ChatChannelID string    `json:"chat_channel_id" bson:"chat_channel_id"`
	DisplayName   string    `json:"display_name,omitempty" bson:"display_name,omitempty"`
	LinkedAt      time.Time `json:"linked_at" bson:"linked_at"`
}

// LinkToken is a single-use, short-lived token a customer redeems in
// chat to prove account ownership. Redemption or expiry removes it.
type LinkToken struct {
	ID         uuid.UUID `json:"id" bson:"_id"`
	CustomerID uuid.UUID `json:"customer_id" bson:"customer_id"`
	Token      string    `json:"token" bson:"token"`
	ExpiresAt  time.Time `json:"expires_at" bson:"expires_at"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
}

func (t *LinkToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

func (l *IdentityLink) GetID() uuid.UUID {
	return l.ID
}

func (l *IdentityLink) ResourceType() string {
	return "identity-link"
}

func (l *IdentityLink) EnsureID() {
	if l.ID == uuid.Nil {
		l.ID = aqm.GenerateNewID()
	}
}
