package main

import (
	"github.com/darellchua2/telegram-example-app/telegram"
	"github.com/darellchua2/telegram-example-app/telegram/app"
)

func commands() []telegram.Command {
	return app.Commands()
}
