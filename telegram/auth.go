package telegram

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/enescakir/emoji"
	"github.com/thoas/go-funk"
	tgbotapi "github.com/yangrq1018/telegram-bot-api/v5"
)

// Authorizer decides whether a message may invoke a command.
type Authorizer interface {
	Validate(m tgbotapi.Message) (ok bool, reason string)
}

type allow struct{}

func (a allow) Validate(m tgbotapi.Message) (ok bool, reason string) {
	return true, ""
}

var PolicyAllow = allow{}

// Gate is the process-wide whitelist of Telegram user IDs. It is built once
// at startup and never mutated afterwards, so it is safe to share between
// request handlers without locking.
//
// An empty gate permits everyone. That is the documented open-access mode,
// announced with a single warning at construction time.
type Gate struct {
	ids map[int64]struct{}
}

// NewGate builds the gate from the configured user IDs.
func NewGate(ids []int64) Gate {
	logger := GetModuleLogger("auth")
	if len(ids) == 0 {
		logger.Warn("no authorized users configured - allowing all users")
		return Gate{}
	}
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	logger.Infof("gate initialized with %d authorized users", len(set))
	return Gate{ids: set}
}

// Authorized reports whether the user may talk to the bot.
func (g Gate) Authorized(userID int64) bool {
	if len(g.ids) == 0 {
		return true
	}
	_, ok := g.ids[userID]
	return ok
}

// Size returns the number of whitelisted users, zero in open-access mode.
func (g Gate) Size() int {
	return len(g.ids)
}

// ParseUserIDs parses a comma-separated list of Telegram user IDs, the
// format of the AUTHORIZED_USERS environment variable. Whitespace around
// entries is ignored and duplicates are collapsed. An empty string yields an
// empty list, which NewGate treats as open access.
func ParseUserIDs(s string) ([]int64, error) {
	var ids []int64
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		id, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("authorized users must be a comma-separated list of integers, got %q", field)
		}
		if !funk.ContainsInt64(ids, id) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// UnauthorizedMessage is the reply sent to users rejected by the gate.
func UnauthorizedMessage() string {
	return fmt.Sprintf("%v Sorry, you are not authorized to use this bot.", emoji.Prohibited)
}

// UnauthorizedCallbackAnswer is the short answer shown for rejected button
// presses, where a full message would be too noisy.
func UnauthorizedCallbackAnswer() string {
	return fmt.Sprintf("%v Unauthorized", emoji.Prohibited)
}
