package chatbot

import (
	"context"
	"strings"
	"testing"

	"github.com/aquamarinepk/aqm"
	"github.com/google/uuid"
)

func newTestBot(t *testing.T) (*Bot, *Service, *MockLinkRepo) {
	t.Helper()
	repo := NewMockLinkRepo()
	service := NewService(repo, aqm.NewNoopLogger())
	return NewBot(service, aqm.NewNoopLogger()), service, repo
}

func testChannel() ChannelInfo {
	return ChannelInfo{ChannelID: "chan-1", DisplayName: "Mei Ling"}
}

func TestFindCommandVariations(t *testing.T) {
	bot, _, _ := newTestBot(t)

	tests := []struct {
		input      string
		wantCmd    string
		wantParams int
	}{
		{"/start", "start", 0},
		{"start", "start", 0},
		{"/start abc123", "start", 1},
		{"/link abc123", "link", 1},
		{"CONNECT abc123", "link", 1},
		{"/unlink", "unlink", 0},
		{"disconnect", "unlink", 0},
		{"/status", "status", 0},
		{"whoami", "status", 0},
		{"/help", "help", 0},
		{"?", "help", 0},
		{"h", "help", 0},
		{"  /link   abc123  ", "link", 1},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			cmd, params, found := bot.registry.FindCommand(tt.input)
			if !found {
				t.Fatalf("command not found for %q", tt.input)
			}
			if cmd.Canonical != tt.wantCmd {
				t.Errorf("expected %q, got %q", tt.wantCmd, cmd.Canonical)
			}
			if len(params) != tt.wantParams {
				t.Errorf("expected %d params, got %d", tt.wantParams, len(params))
			}
		})
	}
}

func TestProcessUnknownCommand(t *testing.T) {
	bot, _, _ := newTestBot(t)

	resp, err := bot.Process(context.Background(), testChannel(), "/frobnicate")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Success {
		t.Error("unknown command must not succeed")
	}
	if !strings.Contains(resp.Text, "/help") {
		t.Errorf("expected pointer to help, got %q", resp.Text)
	}
}

func TestProcessInvalidParamCount(t *testing.T) {
	bot, _, _ := newTestBot(t)

	resp, err := bot.Process(context.Background(), testChannel(), "/link")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Success {
		t.Error("link without token must not succeed")
	}
	if resp.Message != "Invalid parameter count" {
		t.Errorf("unexpected message: %q", resp.Message)
	}
}

func TestStartWithTokenLinks(t *testing.T) {
	bot, service, _ := newTestBot(t)

	token, _ := service.IssueToken(context.Background(), uuid.New())
	resp, err := bot.Process(context.Background(), testChannel(), "/start "+token.Token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.Success {
		t.Fatalf("expected link success, got %q", resp.Text)
	}

	if _, err := service.Status(context.Background(), "chan-1"); err != nil {
		t.Errorf("expected channel linked after /start with token: %v", err)
	}
}

func TestBareStartGreets(t *testing.T) {
	bot, service, _ := newTestBot(t)

	resp, err := bot.Process(context.Background(), testChannel(), "/start")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.Success {
		t.Error("bare start should greet")
	}
	if _, err := service.Status(context.Background(), "chan-1"); err == nil {
		t.Error("bare start must not create a link")
	}
}

func TestLinkOutcomeMessages(t *testing.T) {
	bot, service, repo := newTestBot(t)
	ctx := context.Background()

	resp, _ := bot.Process(ctx, testChannel(), "/link bogus")
	if resp.Message != "token not found" {
		t.Errorf("expected token not found, got %q", resp.Message)
	}

	token, _ := service.IssueToken(ctx, uuid.New())
	stored, _ := repo.GetToken(ctx, token.Token)
	stored.ExpiresAt = stored.ExpiresAt.Add(-2 * TokenTTL)
	repo.CreateToken(ctx, stored)

	resp, _ = bot.Process(ctx, testChannel(), "/link "+token.Token)
	if resp.Message != "token expired" {
		t.Errorf("expected token expired, got %q", resp.Message)
	}

	fresh, _ := service.IssueToken(ctx, uuid.New())
	if resp, _ = bot.Process(ctx, testChannel(), "/link "+fresh.Token); !resp.Success {
		t.Fatalf("link failed: %q", resp.Text)
	}

	again, _ := service.IssueToken(ctx, uuid.New())
	resp, _ = bot.Process(ctx, testChannel(), "/link "+again.Token)
	if resp.Message != "already linked" {
		t.Errorf("expected already linked, got %q", resp.Message)
	}
}

func TestHelpListsAllCommands(t *testing.T) {
	bot, _, _ := newTestBot(t)

	resp, err := bot.Process(context.Background(), testChannel(), "help")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, name := range []string{"/start", "/link", "/unlink", "/status", "/help"} {
		if !strings.Contains(resp.Text, name) {
			t.Errorf("help output missing %s", name)
		}
	}
}
