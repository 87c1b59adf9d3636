package chatbot

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aquamarinepk/aqm"
	"github.com/google/uuid"
)

var testLinkCustomerID = uuid.MustParse("550e8400-e29b-41d4-a716-446655440020")

func TestIssueAndRedeemToken(t *testing.T) {
	repo := NewMockLinkRepo()
	service := NewService(repo, aqm.NewNoopLogger())
	ctx := context.Background()

	token, err := service.IssueToken(ctx, testLinkCustomerID)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if token.Token == "" {
		t.Fatal("expected non-empty token")
	}
	if ttl := time.Until(token.ExpiresAt); ttl > TokenTTL || ttl < TokenTTL-time.Minute {
		t.Errorf("unexpected token TTL: %v", ttl)
	}

	link, err := service.Link(ctx, "chan-1", "Mei Ling", token.Token)
	if err != nil {
		t.Fatalf("link failed: %v", err)
	}
	if link.CustomerID != testLinkCustomerID {
		t.Errorf("expected customer %s, got %s", testLinkCustomerID, link.CustomerID)
	}

	stored, err := service.Status(ctx, "chan-1")
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if stored.ChatChannelID != "chan-1" {
		t.Errorf("expected channel chan-1, got %q", stored.ChatChannelID)
	}
}

func TestTokenSingleUse(t *testing.T) {
	repo := NewMockLinkRepo()
	service := NewService(repo, aqm.NewNoopLogger())
	ctx := context.Background()

	token, _ := service.IssueToken(ctx, testLinkCustomerID)
	if _, err := service.Link(ctx, "chan-1", "", token.Token); err != nil {
		t.Fatalf("first redemption failed: %v", err)
	}

	_, err := service.Link(ctx, "chan-2", "", token.Token)
	if !errors.Is(err, ErrTokenNotFound) {
		t.Errorf("expected TokenNotFound on reuse, got %v", err)
	}
}

func TestExpiredTokenDistinctThenNotFound(t *testing.T) {
	repo := NewMockLinkRepo()
	service := NewService(repo, aqm.NewNoopLogger())
	ctx := context.Background()

	token, _ := service.IssueToken(ctx, testLinkCustomerID)

	// Age the stored record past its TTL.
	stored, _ := repo.GetToken(ctx, token.Token)
	stored.ExpiresAt = time.Now().Add(-time.Minute)
	repo.CreateToken(ctx, stored)

	_, err := service.Link(ctx, "chan-1", "", token.Token)
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected TokenExpired, got %v", err)
	}

	// The expired use consumed the token; a retry is a plain miss.
	_, err = service.Link(ctx, "chan-1", "", token.Token)
	if !errors.Is(err, ErrTokenNotFound) {
		t.Errorf("expected TokenNotFound after expiry consumption, got %v", err)
	}
}

func TestLinkAlreadyLinkedChannel(t *testing.T) {
	repo := NewMockLinkRepo()
	service := NewService(repo, aqm.NewNoopLogger())
	ctx := context.Background()

	first, _ := service.IssueToken(ctx, testLinkCustomerID)
	if _, err := service.Link(ctx, "chan-1", "", first.Token); err != nil {
		t.Fatalf("first link failed: %v", err)
	}

	second, _ := service.IssueToken(ctx, uuid.New())
	_, err := service.Link(ctx, "chan-1", "", second.Token)
	if !errors.Is(err, ErrAlreadyLinked) {
		t.Errorf("expected AlreadyLinked, got %v", err)
	}
}

func TestUnlink(t *testing.T) {
	repo := NewMockLinkRepo()
	service := NewService(repo, aqm.NewNoopLogger())
	ctx := context.Background()

	token, _ := service.IssueToken(ctx, testLinkCustomerID)
	service.Link(ctx, "chan-1", "", token.Token)

	if err := service.Unlink(ctx, "chan-1"); err != nil {
		t.Fatalf("unlink failed: %v", err)
	}
	if _, err := service.Status(ctx, "chan-1"); !errors.Is(err, ErrNotLinked) {
		t.Errorf("expected NotLinked after unlink, got %v", err)
	}
	if err := service.Unlink(ctx, "chan-1"); !errors.Is(err, ErrNotLinked) {
		t.Errorf("expected NotLinked on double unlink, got %v", err)
	}
}
