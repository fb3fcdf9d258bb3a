package telegram_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	tgbotapi "github.com/yangrq1018/telegram-bot-api/v5"

	"github.com/darellchua2/telegram-example-app/telegram"
	"github.com/darellchua2/telegram-example-app/telegram/app"
)

func openDispatcher() *telegram.Dispatcher {
	return telegram.NewDispatcher(telegram.NewGate(nil), app.Commands()...)
}

func messageUpdate(text string, from *tgbotapi.User) tgbotapi.Update {
	return tgbotapi.Update{
		UpdateID: 1,
		Message: &tgbotapi.Message{
			Text: text,
			From: from,
			Chat: &tgbotapi.Chat{ID: 7},
		},
	}
}

func TestDispatchStart(t *testing.T) {
	d := openDispatcher()
	assert.Equal(t, app.WelcomeReply, d.Dispatch("/start", 1, "x"))
	// pure: repeated invocations are identical
	assert.Equal(t, d.Dispatch("/start", 1, "x"), d.Dispatch("/start", 99, ""))
}

func TestDispatchHelp(t *testing.T) {
	d := openDispatcher()
	reply := d.Dispatch("/help", 1, "x")
	assert.Equal(t, app.HelpReply, reply)
	for _, cmd := range []string{"/start", "/help", "/echo", "/whoami"} {
		assert.Contains(t, reply, cmd)
	}
}

func TestDispatchEcho(t *testing.T) {
	d := openDispatcher()
	assert.Equal(t, "hello", d.Dispatch("/echo hello", 1, "x"))
	assert.Equal(t, "hello world", d.Dispatch("/echo hello world", 1, "x"))
	assert.Equal(t, "spaced", d.Dispatch("/echo    spaced   ", 1, "x"))
	assert.Equal(t, "hi", d.Dispatch("/echo@SomeBot hi", 1, "x"))
	assert.Equal(t, app.EmptyEchoReply, d.Dispatch("/echo", 1, "x"))
	assert.Equal(t, app.EmptyEchoReply, d.Dispatch("/echo   ", 1, "x"))
}

func TestDispatchWhoAmI(t *testing.T) {
	d := openDispatcher()
	reply := d.Dispatch("/whoami", 42, "alice")
	assert.Contains(t, reply, "42")
	assert.Contains(t, reply, "alice")

	reply = d.Dispatch("/whoami", 42, "")
	assert.Contains(t, reply, "unknown")
}

func TestDispatchFallback(t *testing.T) {
	d := openDispatcher()
	for _, text := range []string{
		"anything else",
		"hello",
		"/unknown",
		"start", // no slash
		"",
	} {
		assert.Equal(t, telegram.FallbackReply, d.Dispatch(text, 1, "x"), text)
	}
}

func TestHandleUpdateMessage(t *testing.T) {
	d := openDispatcher()
	res := d.HandleUpdate(messageUpdate("/start", &tgbotapi.User{ID: 42, UserName: "alice"}))
	assert.True(t, res.Authorized)
	assert.Equal(t, telegram.UpdateTypeMessage, res.UpdateType)
	assert.Equal(t, app.WelcomeReply, res.Text)
}

func TestHandleUpdateUnauthorized(t *testing.T) {
	d := telegram.NewDispatcher(telegram.NewGate([]int64{99}), app.Commands()...)
	res := d.HandleUpdate(messageUpdate("/start", &tgbotapi.User{ID: 42, UserName: "alice"}))
	assert.False(t, res.Authorized)
	assert.Equal(t, telegram.UnauthorizedMessage(), res.Text)
}

func TestHandleUpdateNoSender(t *testing.T) {
	d := openDispatcher()
	res := d.HandleUpdate(messageUpdate("/start", nil))
	assert.False(t, res.Authorized)
	assert.Equal(t, telegram.NoSenderReply, res.Text)
}

func TestHandleUpdateCallback(t *testing.T) {
	d := openDispatcher()
	res := d.HandleUpdate(tgbotapi.Update{
		CallbackQuery: &tgbotapi.CallbackQuery{
			ID:   "q1",
			From: &tgbotapi.User{ID: 42, UserName: "alice"},
			Data: "red",
		},
	})
	assert.True(t, res.Authorized)
	assert.Equal(t, telegram.UpdateTypeCallback, res.UpdateType)
	assert.Equal(t, telegram.CallbackAnswer, res.Ack)
	assert.Equal(t, "You clicked: red", res.Text)
}

func TestHandleUpdateCallbackUnauthorized(t *testing.T) {
	d := telegram.NewDispatcher(telegram.NewGate([]int64{99}), app.Commands()...)
	res := d.HandleUpdate(tgbotapi.Update{
		CallbackQuery: &tgbotapi.CallbackQuery{
			ID:   "q1",
			From: &tgbotapi.User{ID: 42},
			Data: "red",
		},
	})
	assert.False(t, res.Authorized)
	assert.Empty(t, res.Text)
	assert.Equal(t, telegram.UnauthorizedCallbackAnswer(), res.Ack)
}

func TestHandleUpdateIgnored(t *testing.T) {
	d := openDispatcher()
	res := d.HandleUpdate(tgbotapi.Update{UpdateID: 5})
	assert.Equal(t, telegram.UpdateTypeIgnored, res.UpdateType)
	assert.False(t, res.Authorized)
	assert.Empty(t, res.Text)
}

// the dispatcher holds no mutable state, concurrent callers must observe
// identical replies
func TestDispatchConcurrent(t *testing.T) {
	d := openDispatcher()
	want := d.Dispatch("/whoami", 42, "alice")

	var wg sync.WaitGroup
	errs := make(chan error, 64)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if got := d.Dispatch("/whoami", 42, "alice"); got != want {
					errs <- fmt.Errorf("got %q, want %q", got, want)
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}
