package telegram

import (
	"github.com/sirupsen/logrus"
)

// GetModuleLogger returns a logrus.Entry scoped to one module of the bot.
func GetModuleLogger(name string) logrus.FieldLogger {
	return logrus.WithField("module", name)
}
