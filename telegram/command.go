package telegram

import (
	tgbotapi "github.com/yangrq1018/telegram-bot-api/v5"
)

type Command interface {
	ID() tgbotapi.BotCommand

	// Respond computes the reply for one invocation of the command.
	// args is the text after the command token, leading space included.
	Respond(args string, userID int64, username string) string

	Authorize() Authorizer
}
