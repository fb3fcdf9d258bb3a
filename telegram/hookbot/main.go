package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/darellchua2/telegram-example-app/config"
	"github.com/darellchua2/telegram-example-app/telegram"
)

var (
	GitCommit string
	BuildDate string
	Version   string
)

func main() {
	var (
		noProxy  bool
		urlProxy string
		addr     string
		debug    bool
	)

	cliApp := cli.NewApp()
	cliApp.Name = "hookbot"
	cliApp.Usage = "Telegram webhook command bot"
	cliApp.Version = Version
	cliApp.Flags = []cli.Flag{
		&cli.BoolFlag{
			Name:        "no-proxy",
			Usage:       "ignore any configured outbound proxy",
			Destination: &noProxy,
		},
		&cli.StringFlag{
			Name:        "url-proxy",
			Usage:       "outbound proxy URL, overrides TL_PROXY",
			Destination: &urlProxy,
		},
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "listen address, overrides HOST/PORT",
			Destination: &addr,
		},
		&cli.BoolFlag{
			Name:        "debug",
			Usage:       "log raw updates",
			Destination: &debug,
		},
	}
	cliApp.Action = func(_ *cli.Context) error {
		return run(noProxy, urlProxy, addr, debug)
	}
	if err := cliApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(noProxy bool, urlProxy, addr string, debug bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}
	cfg.LogSummary()

	proxy := cfg.ProxyURL
	if urlProxy != "" {
		proxy = urlProxy
	}
	var bot *telegram.Bot
	switch {
	case !noProxy && proxy != "":
		bot, err = telegram.NewMessageBotWithURLProxy(cfg.BotToken, proxy)
	case noProxy:
		bot, err = telegram.NewMessageBot(cfg.BotToken, telegram.SetNoProxy())
	default:
		bot, err = telegram.NewMessageBot(cfg.BotToken)
	}
	if err != nil {
		return err
	}
	bot.SetDebug(debug)

	dispatcher := telegram.NewDispatcher(telegram.NewGate(cfg.AuthorizedUsers), commands()...)
	if err := bot.PublishCommands(dispatcher.Commands()); err != nil {
		return err
	}

	if addr == "" {
		addr = cfg.Addr()
	}
	server := telegram.NewServer(addr, cfg.WebhookSecret, dispatcher, bot)
	server.SetDebug(debug)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(server.Start)
	g.Go(func() error {
		<-ctx.Done()
		log.Println("signal received, exiting gracefully...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
