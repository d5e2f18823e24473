package telegram

import (
	"context"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/snowvesna25-sys/runspark-bot/internal/domain"
	"github.com/snowvesna25-sys/runspark-bot/internal/store"
)

// Prompts is the part of the scheduler the router drives.
type Prompts interface {
	Register(userID, chatID int64) error
	Cancel(userID int64) bool
	Answer(userID, chatID int64, text string) bool
	NextPrompt(userID int64) (time.Time, bool)
	Pending(userID int64) (domain.PendingPrompt, bool)
}

// Router wires Telegram updates to handlers.
type Router struct {
	msg      *Messenger
	log      *zap.Logger
	repo     store.Repo
	prompts  Prompts
	zone     *time.Location
	promptAt int // minutes after local midnight, for the greeting
	now      func() time.Time
}

// NewRouter creates a new Telegram router.
func NewRouter(msg *Messenger, log *zap.Logger, repo store.Repo, prompts Prompts, zone *time.Location, promptAt int) *Router {
	return &Router{
		msg:      msg,
		log:      log,
		repo:     repo,
		prompts:  prompts,
		zone:     zone,
		promptAt: promptAt,
		now:      time.Now,
	}
}

// HandleUpdate routes a single update to appropriate handler.
// Updates other than messages are ignored.
func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	msg := upd.Message
	if msg == nil {
		return
	}
	chatID := msg.Chat.ID
	userID := chatID
	if msg.From != nil {
		userID = msg.From.ID
	}

	cmd, ok := command(msg)
	if !ok {
		r.handleText(userID, chatID, strings.TrimSpace(msg.Text))
		return
	}

	switch cmd {
	case "start":
		r.handleStart(ctx, userID, chatID, displayName(msg.From))
	case "ran":
		r.handleRan(ctx, userID, chatID)
	case "stop":
		r.handleStop(userID, chatID)
	case "status":
		r.handleStatus(ctx, userID, chatID)
	default:
		r.sendText(chatID, helpText)
	}
}

// command extracts the bot command without the leading slash and any
// @botname suffix.
func command(msg *tgbotapi.Message) (string, bool) {
	if msg.IsCommand() {
		return strings.ToLower(msg.Command()), true
	}
	text := strings.TrimSpace(msg.Text)
	if !strings.HasPrefix(text, "/") {
		return "", false
	}
	cmd := strings.Fields(text)[0][1:]
	if i := strings.IndexByte(cmd, '@'); i >= 0 {
		cmd = cmd[:i]
	}
	return strings.ToLower(cmd), true
}

func displayName(u *tgbotapi.User) string {
	switch {
	case u == nil:
		return "runner"
	case u.FirstName != "":
		return u.FirstName
	case u.UserName != "":
		return u.UserName
	default:
		return "runner"
	}
}
