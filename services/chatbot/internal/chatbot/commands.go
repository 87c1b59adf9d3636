package chatbot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aquamarinepk/aqm"
)

// Bot processes chat commands using pattern matching against the
// command registry.
type Bot struct {
	service  *Service
	registry *CommandRegistry
	logger   aqm.Logger
}

func NewBot(service *Service, logger aqm.Logger) *Bot {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	bot := &Bot{
		service: service,
		logger:  logger,
	}
	bot.registry = NewCommandRegistry(bot)
	return bot
}

// Process resolves one inbound message to a command and runs it.
func (b *Bot) Process(ctx context.Context, channel ChannelInfo, input string) (*CommandResponse, error) {
	cmd, params, found := b.registry.FindCommand(input)
	if !found {
		return &CommandResponse{
			Text:    fmt.Sprintf("Command not recognized: %s\nType /help to see available commands.", strings.TrimSpace(input)),
			Success: false,
			Message: "Command not recognized",
		}, nil
	}

	if len(params) < cmd.MinParams || len(params) > cmd.MaxParams {
		return &CommandResponse{
			Text:    b.formatInvalidParams(cmd, len(params)),
			Success: false,
			Message: "Invalid parameter count",
		}, nil
	}

	return cmd.Handler(ctx, channel, params)
}

func (b *Bot) formatInvalidParams(cmd *CommandDefinition, got int) string {
	expected := fmt.Sprintf("%d", cmd.MinParams)
	if cmd.MaxParams != cmd.MinParams {
		expected = fmt.Sprintf("%d-%d", cmd.MinParams, cmd.MaxParams)
	}
	return fmt.Sprintf("Invalid parameters for /%s\nExpected: %s, got: %d\n%s",
		cmd.Canonical, expected, got, cmd.Description)
}

// handleStart greets the channel; with a token it behaves as /link.
func (b *Bot) handleStart(ctx context.Context, channel ChannelInfo, params []string) (*CommandResponse, error) {
	if len(params) == 1 {
		return b.handleLink(ctx, channel, params)
	}
	return &CommandResponse{
		Text: "👋 Welcome to Hawkr! I will keep you posted on your orders.\n" +
			"Open the app, go to Settings > Chat Notifications, and send me the code with /link <code>.",
		Success: true,
	}, nil
}

func (b *Bot) handleLink(ctx context.Context, channel ChannelInfo, params []string) (*CommandResponse, error) {
	link, err := b.service.Link(ctx, channel.ChannelID, channel.DisplayName, params[0])
	switch {
	case errors.Is(err, ErrTokenNotFound):
		return &CommandResponse{
			Text:    "❌ That code is not valid. Generate a fresh one in the app and try again.",
			Success: false,
			Message: "token not found",
		}, nil
	case errors.Is(err, ErrTokenExpired):
		return &CommandResponse{
			Text:    "⌛ That code has expired. Codes are valid for 10 minutes; generate a new one in the app.",
			Success: false,
			Message: "token expired",
		}, nil
	case errors.Is(err, ErrAlreadyLinked):
		return &CommandResponse{
			Text:    "⚠️ This chat is already linked to an account. Use /unlink first to switch accounts.",
			Success: false,
			Message: "already linked",
		}, nil
	case err != nil:
		b.logger.Error("link failed", "channel_id", channel.ChannelID, "error", err)
		return &CommandResponse{
			Text:    "Something went wrong linking your account. Please try again later.",
			Success: false,
			Message: "internal error",
		}, nil
	}

	return &CommandResponse{
		Text:    fmt.Sprintf("✅ Linked! Order updates for account %s will arrive here.", shortID(link.CustomerID.String())),
		Success: true,
	}, nil
}

func (b *Bot) handleUnlink(ctx context.Context, channel ChannelInfo, params []string) (*CommandResponse, error) {
	err := b.service.Unlink(ctx, channel.ChannelID)
	if errors.Is(err, ErrNotLinked) {
		return &CommandResponse{
			Text:    "This chat is not linked to any account.",
			Success: false,
			Message: "not linked",
		}, nil
	}
	if err != nil {
		b.logger.Error("unlink failed", "channel_id", channel.ChannelID, "error", err)
		return &CommandResponse{
			Text:    "Something went wrong. Please try again later.",
			Success: false,
			Message: "internal error",
		}, nil
	}
	return &CommandResponse{
		Text:    "🔌 Unlinked. You will no longer receive order updates here.",
		Success: true,
	}, nil
}

func (b *Bot) handleStatus(ctx context.Context, channel ChannelInfo, params []string) (*CommandResponse, error) {
	link, err := b.service.Status(ctx, channel.ChannelID)
	if errors.Is(err, ErrNotLinked) {
		return &CommandResponse{
			Text:    "This chat is not linked. Use /link <code> with a code from the app.",
			Success: true,
		}, nil
	}
	if err != nil {
		b.logger.Error("status failed", "channel_id", channel.ChannelID, "error", err)
		return &CommandResponse{
			Text:    "Something went wrong. Please try again later.",
			Success: false,
			Message: "internal error",
		}, nil
	}
	return &CommandResponse{
		Text: fmt.Sprintf("🔗 Linked to account %s since %s.",
			shortID(link.CustomerID.String()), link.LinkedAt.Format("2 Jan 2006")),
		Success: true,
	}, nil
}

func (b *Bot) handleHelp(ctx context.Context, channel ChannelInfo, params []string) (*CommandResponse, error) {
	var sb strings.Builder
	sb.WriteString("Available commands:\n")
	for _, cmd := range b.registry.All() {
		fmt.Fprintf(&sb, "/%s - %s\n", cmd.Canonical, cmd.Description)
	}
	return &CommandResponse{
		Text:    sb.String(),
		Success: true,
	}, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
