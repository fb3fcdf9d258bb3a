package telegram

import (
	"fmt"
	"net/http"
	"net/url"

	log "github.com/sirupsen/logrus"
	tgbotapi "github.com/yangrq1018/telegram-bot-api/v5"
)

// Replier delivers replies back to Telegram. The webhook server talks to
// this interface instead of the concrete API client so tests can record
// outbound traffic without network access.
type Replier interface {
	Reply(chatID int64, text string) error
	AnswerCallback(callbackID, text string) error
}

// Bot wraps the Telegram Bot API client used for outbound delivery.
type Bot struct {
	bot    *tgbotapi.BotAPI
	client *http.Client
	debug  bool
}

var _ Replier = (*Bot)(nil)

func (b *Bot) SetDebug(debug bool) {
	b.debug = debug
	b.bot.Debug = debug
}

func (b *Bot) Bot() *tgbotapi.BotAPI {
	return b.bot
}

// Reply sends a plain text message to the chat.
func (b *Bot) Reply(chatID int64, text string) error {
	_, err := b.bot.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

// AnswerCallback acknowledges a callback query with a short notice.
func (b *Bot) AnswerCallback(callbackID, text string) error {
	_, err := b.bot.AnswerCallbackQuery(tgbotapi.CallbackConfig{
		CallbackQueryID: callbackID,
		Text:            text,
	})
	return err
}

// Sendf formats and sends a message, dropping any delivery error.
func (b *Bot) Sendf(id int64, msg string, o ...interface{}) {
	_, _ = b.bot.Send(tgbotapi.NewMessage(
		id,
		fmt.Sprintf(msg, o...),
	))
}

// PublishCommands advertises the command list to Telegram clients.
func (b *Bot) PublishCommands(commands []tgbotapi.BotCommand) error {
	return b.bot.SetMyCommands(commands)
}

func (b *Bot) SetClient(client *http.Client) {
	b.client = client
	b.bot.Client = client
}

type BotWrapperConfig func(b *Bot)

func setProxy(httpProxy *http.Transport) BotWrapperConfig {
	return func(b *Bot) {
		b.client.Transport = httpProxy
	}
}

func SetProxyFromURL(u *url.URL) BotWrapperConfig {
	return setProxy(&http.Transport{
		Proxy: http.ProxyURL(u),
	})
}

func SetNoProxy() BotWrapperConfig {
	return setProxy(nil)
}

func proxyTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
	}
}

func setUpBot(bot *tgbotapi.BotAPI, client *http.Client, configs ...BotWrapperConfig) *Bot {
	bw := &Bot{
		bot: bot,
	}
	// keep a reference to the client
	bw.SetClient(client)
	for i := range configs {
		configs[i](bw)
	}
	return bw
}

func NewMessageBot(token string, configs ...BotWrapperConfig) (*Bot, error) {
	// use a proxy client, or you cannot get bot created
	client := &http.Client{
		Transport: proxyTransport(),
	}
	bot, err := tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, client)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot api: %v", err)
	}
	log.Infof("authorized on bot account %s", bot.Self.UserName)
	return setUpBot(bot, client, configs...), nil
}

// NewMessageBotWithURLProxy use fixed url proxy, not reading system env variables
// this is useful when other part of the system is unhappy to have `http_proxy`
func NewMessageBotWithURLProxy(token string, proxy string, configs ...BotWrapperConfig) (*Bot, error) {
	u, err := url.Parse(proxy)
	if err != nil {
		return nil, err
	}
	client := &http.Client{
		Transport: &http.Transport{
			Proxy: http.ProxyURL(u),
		},
	}
	bot, err := tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, client)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot api: %v", err)
	}
	return setUpBot(bot, client, configs...), nil
}
