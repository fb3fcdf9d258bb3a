package app

import (
	"fmt"
	"strings"

	"github.com/darellchua2/telegram-example-app/telegram"
	tgbotapi "github.com/yangrq1018/telegram-bot-api/v5"
)

// Canned replies for the built-in commands.
const (
	WelcomeReply = "Hello! I'm your Telegram bot. How can I help you?"
	HelpReply    = "Available commands:\n" +
		"/start - Start the bot\n" +
		"/help - Show this help message\n" +
		"/echo <text> - Echo your message\n" +
		"/whoami - Show your user information"
	EmptyEchoReply = "Please provide text to echo"

	// shown by /whoami when the sender has no public username
	unknownUsername = "unknown"
)

// SimpleCommand is a stateless command backed by a single respond function.
type SimpleCommand struct {
	name,
	description string
	respond func(args string, userID int64, username string) string
}

func (s SimpleCommand) ID() tgbotapi.BotCommand {
	return tgbotapi.BotCommand{
		Command:     s.name,
		Description: s.description,
	}
}

func (s SimpleCommand) Respond(args string, userID int64, username string) string {
	return s.respond(args, userID, username)
}

func (s SimpleCommand) Authorize() telegram.Authorizer {
	return telegram.PolicyAllow
}

func StartCommand() telegram.Command {
	return SimpleCommand{
		name:        "start",
		description: "Start the bot",
		respond: func(string, int64, string) string {
			return WelcomeReply
		},
	}
}

func HelpCommand() telegram.Command {
	return SimpleCommand{
		name:        "help",
		description: "Show this help message",
		respond: func(string, int64, string) string {
			return HelpReply
		},
	}
}

func EchoCommand() telegram.Command {
	return SimpleCommand{
		name:        "echo",
		description: "Echo your message",
		respond: func(args string, _ int64, _ string) string {
			if text := strings.TrimSpace(args); text != "" {
				return text
			}
			return EmptyEchoReply
		},
	}
}

func WhoAmICommand() telegram.Command {
	return SimpleCommand{
		name:        "whoami",
		description: "Show your user information",
		respond: func(_ string, userID int64, username string) string {
			if username == "" {
				username = unknownUsername
			}
			return fmt.Sprintf("Your user ID: %d\nUsername: @%s", userID, username)
		},
	}
}

// Commands returns the full built-in command set in registration order.
func Commands() []telegram.Command {
	return []telegram.Command{
		StartCommand(),
		HelpCommand(),
		EchoCommand(),
		WhoAmICommand(),
	}
}
