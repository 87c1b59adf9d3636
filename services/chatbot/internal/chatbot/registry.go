package chatbot

import (
	"context"
	"regexp"
	"strings"
)

// CommandDefinition defines a chat command with its variations and handler
type CommandDefinition struct {
	Canonical   string
	Variations  []string
	ShortForms  []string
	Handler     CommandHandler
	Description string
	MinParams   int
	MaxParams   int
}

// CommandHandler processes a matched command for one channel
type CommandHandler func(ctx context.Context, channel ChannelInfo, params []string) (*CommandResponse, error)

// CommandResponse represents the structured response from command processing
type CommandResponse struct {
	Text    string
	Success bool
	Message string
}

// ChannelInfo identifies the chat channel a command arrived on.
type ChannelInfo struct {
	ChannelID   string
	DisplayName string
}

// CommandRegistry holds all available commands
type CommandRegistry struct {
	commands map[string]*CommandDefinition
	bot      *Bot
}

func NewCommandRegistry(bot *Bot) *CommandRegistry {
	r := &CommandRegistry{
		commands: make(map[string]*CommandDefinition),
		bot:      bot,
	}
	r.registerAllCommands()
	return r
}

// FindCommand matches input against canonical names, short forms and
// variations. The slash prefix is optional; "/link abc" and "link abc"
// resolve identically.
func (r *CommandRegistry) FindCommand(input string) (*CommandDefinition, []string, bool) {
	tokens := tokenize(normalizeInput(input))
	if len(tokens) == 0 {
		return nil, nil, false
	}

	if cmd, ok := r.commands[tokens[0]]; ok {
		return cmd, tokens[1:], true
	}

	for _, cmd := range r.commands {
		for _, short := range cmd.ShortForms {
			if tokens[0] == short {
				return cmd, tokens[1:], true
			}
		}
		for _, variation := range cmd.Variations {
			if tokens[0] == variation {
				return cmd, tokens[1:], true
			}
		}
	}

	return nil, nil, false
}

func (r *CommandRegistry) registerAllCommands() {
	r.register("start", &CommandDefinition{
		Canonical:   "start",
		Variations:  []string{"start", "hello", "hi"},
		Handler:     r.bot.handleStart,
		Description: "Greet the bot, optionally redeeming a link token",
		MinParams:   0,
		MaxParams:   1,
	})

	r.register("link", &CommandDefinition{
		Canonical:   "link",
		Variations:  []string{"link", "connect"},
		Handler:     r.bot.handleLink,
		Description: "Link this chat to your account with a token from the app",
		MinParams:   1,
		MaxParams:   1,
	})

	r.register("unlink", &CommandDefinition{
		Canonical:   "unlink",
		Variations:  []string{"unlink", "disconnect"},
		Handler:     r.bot.handleUnlink,
		Description: "Remove the link between this chat and your account",
		MinParams:   0,
		MaxParams:   0,
	})

	r.register("status", &CommandDefinition{
		Canonical:   "status",
		Variations:  []string{"status", "whoami"},
		Handler:     r.bot.handleStatus,
		Description: "Show whether this chat is linked",
		MinParams:   0,
		MaxParams:   0,
	})

	r.register("help", &CommandDefinition{
		Canonical:   "help",
		Variations:  []string{"help", "?"},
		ShortForms:  []string{"h"},
		Handler:     r.bot.handleHelp,
		Description: "Show available commands",
		MinParams:   0,
		MaxParams:   0,
	})
}

func (r *CommandRegistry) register(canonical string, def *CommandDefinition) {
	r.commands[canonical] = def
}

// All returns the registered definitions for help rendering.
func (r *CommandRegistry) All() []*CommandDefinition {
	out := make([]*CommandDefinition, 0, len(r.commands))
	for _, canonical := range []string{"start", "link", "unlink", "status", "help"} {
		if cmd, ok := r.commands[canonical]; ok {
			out = append(out, cmd)
		}
	}
	return out
}

var spaceRe = regexp.MustCompile(`\s+`)

func normalizeInput(input string) string {
	s := strings.ToLower(strings.TrimSpace(input))
	s = spaceRe.ReplaceAllString(s, " ")
	s = strings.TrimPrefix(s, "/")
	return s
}

func tokenize(input string) []string {
	return strings.Fields(input)
}
