package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/sirupsen/logrus"
	tgbotapi "github.com/yangrq1018/telegram-bot-api/v5"

	"github.com/darellchua2/telegram-example-app/util"
)

const webhookPathPrefix = "/webhook/"

// Server receives Telegram webhook updates over HTTP and feeds them to the
// dispatcher. Replies go out through the Replier.
type Server struct {
	secret     string
	dispatcher *Dispatcher
	replier    Replier
	srv        *http.Server
	logger     logrus.FieldLogger
	debug      bool
}

func NewServer(addr, secret string, dispatcher *Dispatcher, replier Replier) *Server {
	s := &Server{
		secret:     secret,
		dispatcher: dispatcher,
		replier:    replier,
		logger:     GetModuleLogger("webhook"),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRoot)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc(webhookPathPrefix, s.handleWebhook)
	s.srv = &http.Server{Addr: addr, Handler: mux}
	return s
}

func (s *Server) SetDebug(debug bool) {
	s.debug = debug
}

// Handler exposes the route table, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// Start blocks serving HTTP until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Infof("listening on %s", s.srv.Addr)
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the server, waiting for in-flight requests up to the
// context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// webhookResponse is the JSON envelope returned to Telegram. Telegram only
// cares about the status code, the body exists for logs and tests.
type webhookResponse struct {
	Status   string  `json:"status"`
	Message  string  `json:"message,omitempty"`
	Response *Result `json:"response,omitempty"`
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, webhookResponse{Status: "error", Message: "method not allowed"})
		return
	}
	token := strings.TrimPrefix(r.URL.Path, webhookPathPrefix)
	if token != s.secret {
		s.logger.Warnf("invalid webhook token received: %s", token)
		writeJSON(w, http.StatusForbidden, webhookResponse{Status: "error", Message: "invalid webhook token"})
		return
	}

	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		s.logger.Errorf("cannot decode update: %v", err)
		writeJSON(w, http.StatusBadRequest, webhookResponse{Status: "error", Message: "malformed update payload"})
		return
	}
	if s.debug {
		s.logger.Debugf("received update: %s", util.IndentedJSON(update))
	}

	res := s.dispatcher.HandleUpdate(update)
	if res.UpdateType == UpdateTypeIgnored {
		writeJSON(w, http.StatusOK, webhookResponse{Status: "ok", Message: "update ignored"})
		return
	}

	s.deliver(update, &res)
	writeJSON(w, http.StatusOK, webhookResponse{Status: "ok", Response: &res})
}

// deliver sends the computed reply. Delivery is best-effort: a failed send is
// logged and reported in the envelope but never turns into a 5xx, or
// Telegram would retry the whole update.
func (s *Server) deliver(update tgbotapi.Update, res *Result) {
	if update.CallbackQuery != nil && res.Ack != "" {
		if err := s.replier.AnswerCallback(update.CallbackQuery.ID, res.Ack); err != nil {
			s.logger.Errorf("failed to answer callback query: %v", err)
			res.Ack = ""
		}
	}
	if res.Text == "" {
		return
	}
	chatID, ok := updateChatID(update)
	if !ok {
		s.logger.Warn("update has no chat to reply to")
		return
	}
	if err := s.replier.Reply(chatID, res.Text); err != nil {
		s.logger.Errorf("failed to send message: %v", err)
		res.Text = ""
	}
}

func updateChatID(u tgbotapi.Update) (int64, bool) {
	switch {
	case u.Message != nil && u.Message.Chat != nil:
		return u.Message.Chat.ID, true
	case u.CallbackQuery != nil && u.CallbackQuery.Message != nil && u.CallbackQuery.Message.Chat != nil:
		return u.CallbackQuery.Message.Chat.ID, true
	}
	return 0, false
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Telegram Bot Webhook Server is running",
	})
}

type healthResponse struct {
	Status         string  `json:"status"`
	UptimeSeconds  uint64  `json:"uptime_seconds,omitempty"`
	MemUsedPercent float64 `json:"mem_used_percent,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "healthy"}
	if uptime, err := host.Uptime(); err == nil {
		resp.UptimeSeconds = uptime
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		resp.MemUsedPercent = vm.UsedPercent
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, code int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
