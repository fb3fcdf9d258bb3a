package telegram

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	tgbotapi "github.com/yangrq1018/telegram-bot-api/v5"
)

// Update types reported in Result.UpdateType.
const (
	UpdateTypeMessage  = "message"
	UpdateTypeCallback = "callback_query"
	UpdateTypeIgnored  = "ignored"
)

const (
	// FallbackReply answers any text that matches no registered command.
	FallbackReply = "Unrecognized command. Use /help to see available commands."
	// NoSenderReply answers updates whose variant carries no sender.
	NoSenderReply = "Cannot identify the sender of this update."
	// CallbackAnswer acknowledges an authorized button press.
	CallbackAnswer = "Button clicked!"
)

// Result is what the intake layer records for one update: the reply text,
// whether the sender passed the gate, and which update variant was handled.
type Result struct {
	Text       string `json:"message_sent,omitempty"`
	Ack        string `json:"callback_answered,omitempty"`
	Authorized bool   `json:"authorized"`
	UpdateType string `json:"update_type"`
}

// Dispatcher routes inbound updates through the authorization gate to the
// registered commands. It holds no mutable state after construction and can
// be shared by any number of request handlers.
type Dispatcher struct {
	gate     Gate
	commands map[string]Command
	logger   logrus.FieldLogger
}

func NewDispatcher(gate Gate, commands ...Command) *Dispatcher {
	d := &Dispatcher{
		gate:     gate,
		commands: make(map[string]Command, len(commands)),
		logger:   GetModuleLogger("dispatch"),
	}
	for _, c := range commands {
		d.commands[c.ID().Command] = c
	}
	return d
}

// Commands lists the registered commands, suitable for SetMyCommands.
func (d *Dispatcher) Commands() []tgbotapi.BotCommand {
	var cmd []tgbotapi.BotCommand
	for _, v := range d.commands {
		cmd = append(cmd, v.ID())
	}
	sort.Slice(cmd, func(i, j int) bool { return cmd[i].Command < cmd[j].Command })
	return cmd
}

// Dispatch maps message text to a reply. Deterministic and side-effect free:
// the first registered command whose token matches wins, everything else
// falls through to the fixed fallback reply.
func (d *Dispatcher) Dispatch(text string, userID int64, username string) string {
	cmd, args := splitCommand(text)
	if c, ok := d.commands[cmd]; ok {
		return c.Respond(args, userID, username)
	}
	return FallbackReply
}

// HandleUpdate is the intake entry point: determine the update variant,
// extract the sender, run the gate, then dispatch. Sending the reply is the
// caller's job.
func (d *Dispatcher) HandleUpdate(u tgbotapi.Update) Result {
	switch {
	case u.Message != nil:
		return d.handleMessage(*u.Message)
	case u.CallbackQuery != nil:
		return d.handleCallback(*u.CallbackQuery)
	default:
		d.logger.Debugf("update %d has no message or callback query, ignored", u.UpdateID)
		return Result{UpdateType: UpdateTypeIgnored}
	}
}

func (d *Dispatcher) handleMessage(m tgbotapi.Message) Result {
	if m.From == nil {
		d.logger.Warn("received message with no user information")
		return Result{Text: NoSenderReply, UpdateType: UpdateTypeMessage}
	}
	userID, username := int64(m.From.ID), m.From.UserName
	if !d.gate.Authorized(userID) {
		d.logger.Warnf("unauthorized message from user %d (@%s)", userID, username)
		return Result{Text: UnauthorizedMessage(), UpdateType: UpdateTypeMessage}
	}
	d.logger.Infof("authorized message from user %d (@%s): %s", userID, username, m.Text)

	if cmd, _ := splitCommand(m.Text); cmd != "" {
		if c, ok := d.commands[cmd]; ok {
			if ok2, reason := c.Authorize().Validate(m); !ok2 {
				return Result{
					Text:       fmt.Sprintf("Access denied, reason: %s", reason),
					UpdateType: UpdateTypeMessage,
				}
			}
		}
	}
	return Result{
		Text:       d.Dispatch(m.Text, userID, username),
		Authorized: true,
		UpdateType: UpdateTypeMessage,
	}
}

func (d *Dispatcher) handleCallback(q tgbotapi.CallbackQuery) Result {
	if q.From == nil {
		d.logger.Warn("received callback query with no user information")
		return Result{Ack: UnauthorizedCallbackAnswer(), UpdateType: UpdateTypeCallback}
	}
	userID, username := int64(q.From.ID), q.From.UserName
	if !d.gate.Authorized(userID) {
		d.logger.Warnf("unauthorized callback attempt from user %d (@%s)", userID, username)
		return Result{Ack: UnauthorizedCallbackAnswer(), UpdateType: UpdateTypeCallback}
	}
	d.logger.Infof("authorized callback %s from user %d (@%s): %s", q.ID, userID, username, q.Data)
	return Result{
		Text:       fmt.Sprintf("You clicked: %s", q.Data),
		Ack:        CallbackAnswer,
		Authorized: true,
		UpdateType: UpdateTypeCallback,
	}
}

// splitCommand splits "/echo@SomeBot hello world" into ("echo", "hello world").
// Non-command text yields an empty token.
func splitCommand(text string) (cmd, args string) {
	if !strings.HasPrefix(text, "/") {
		return "", text
	}
	cmd = text[1:]
	if i := strings.IndexByte(cmd, ' '); i >= 0 {
		cmd, args = cmd[:i], cmd[i+1:]
	}
	if i := strings.IndexByte(cmd, '@'); i >= 0 {
		cmd = cmd[:i]
	}
	return cmd, args
}
