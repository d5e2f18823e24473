package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/snowvesna25-sys/runspark-bot/internal/domain"
)

const (
	promptText  = "🌅 Good morning! How are you feeling? (Reply: great / okay / bad)"
	apologyText = "🔊 The voice message is temporarily unavailable."
)

// Cron is the subset of *cron.Cron the scheduler drives.
type Cron interface {
	AddFunc(spec string, cmd func()) (cron.EntryID, error)
	Remove(id cron.EntryID)
	Entry(id cron.EntryID) cron.Entry
	Start()
	Stop() context.Context
}

// Timer is a cancellable one-shot timer.
type Timer interface {
	Stop() bool
}

// AfterFunc arms a one-shot timer running f on its own goroutine.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// Config fixes when prompts go out and how long replies are awaited.
type Config struct {
	PromptAt    int // minutes after local midnight
	ReplyWindow time.Duration
	Location    domain.Location
}

// Deps are the collaborators of the scheduler. Journal may be nil.
type Deps struct {
	Cron      Cron
	Messenger Messenger
	Weather   WeatherProvider
	Voice     VoiceRenderer
	Journal   Journal
	Log       *zap.Logger
}

// userState is the per-user record. mu serializes every transition of
// pending, whether it comes from a reply, a timeout or a trigger.
type userState struct {
	mu      sync.Mutex
	chatID  int64
	entry   cron.EntryID
	gen     uint64
	removed bool
	pending *domain.PendingPrompt
	timer   Timer
}

// Scheduler owns the daily trigger and the reply window of every user.
type Scheduler struct {
	cfg     Config
	zone    *time.Location
	cron    Cron
	msg     Messenger
	weather WeatherProvider
	voice   VoiceRenderer
	journal Journal
	log     *zap.Logger

	now       func() time.Time
	afterFunc AfterFunc
	newID     func() string

	mu    sync.Mutex
	users map[int64]*userState
	ctx   context.Context

	inflight sync.WaitGroup // answered deliveries
}

// New creates a Scheduler. The daily triggers only fire once Run is called.
func New(cfg Config, deps Deps) *Scheduler {
	if cfg.ReplyWindow <= 0 {
		cfg.ReplyWindow = 15 * time.Minute
	}
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	return &Scheduler{
		cfg:       cfg,
		zone:      cfg.Location.Zone(),
		cron:      deps.Cron,
		msg:       deps.Messenger,
		weather:   deps.Weather,
		voice:     deps.Voice,
		journal:   deps.Journal,
		log:       deps.Log,
		now:       time.Now,
		afterFunc: realAfterFunc,
		newID:     uuid.NewString,
		users:     make(map[int64]*userState),
		ctx:       context.Background(),
	}
}

// Run starts the daily triggers and blocks until ctx is canceled.
func (s *Scheduler) Run(ctx context.Context) {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()

	s.cron.Start()
	s.log.Info("scheduler started",
		zap.String("promptAt", domain.FormatMinutes(s.cfg.PromptAt)),
		zap.String("tz", s.zone.String()),
		zap.Duration("replyWindow", s.cfg.ReplyWindow),
	)

	<-ctx.Done()
	s.log.Info("scheduler stopping")
	<-s.cron.Stop().Done()
	defer s.inflight.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, st := range s.users {
		st.mu.Lock()
		if st.timer != nil {
			st.timer.Stop()
		}
		st.mu.Unlock()
	}
}

// Register arms the user's daily prompt, replacing any trigger armed by an
// earlier registration. An Awaiting prompt is left untouched.
func (s *Scheduler) Register(userID, chatID int64) error {
	for {
		st := s.stateFor(userID)
		st.mu.Lock()
		if st.removed {
			// lost a race with Cancel; the map now holds a fresh state
			st.mu.Unlock()
			continue
		}
		err := s.arm(st, userID, chatID)
		drop := err != nil && st.entry == 0 && st.pending == nil
		if drop {
			st.removed = true
		}
		st.mu.Unlock()
		if drop {
			s.forget(userID, st)
		}
		return err
	}
}

func (s *Scheduler) arm(st *userState, userID, chatID int64) error {
	if st.entry != 0 {
		s.cron.Remove(st.entry)
		st.entry = 0
	}
	st.gen++
	gen := st.gen
	id, err := s.cron.AddFunc(domain.DailySpec(s.cfg.PromptAt), func() { s.onTrigger(userID, gen) })
	if err != nil {
		return fmt.Errorf("schedule daily prompt: %w", err)
	}
	st.entry = id
	st.chatID = chatID
	s.log.Info("daily prompt armed",
		zap.Int64("userID", userID),
		zap.Int64("chatID", chatID),
		zap.Int("entryID", int(id)),
	)
	return nil
}

// Cancel drops the user's daily trigger and any reply window.
// It reports whether the user was registered.
func (s *Scheduler) Cancel(userID int64) bool {
	s.mu.Lock()
	st, ok := s.users[userID]
	delete(s.users, userID)
	s.mu.Unlock()
	if !ok {
		return false
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	st.removed = true
	if st.entry != 0 {
		s.cron.Remove(st.entry)
		st.entry = 0
	}
	s.clearPending(st)
	s.log.Info("user unregistered", zap.Int64("userID", userID))
	return true
}

// Answer resolves the user's Awaiting prompt with text as the mood and
// starts delivering the follow-up to chatID in the background. It returns
// false if nothing was Awaiting; the reply is then not a mood answer.
func (s *Scheduler) Answer(userID, chatID int64, text string) bool {
	st := s.lookup(userID)
	if st == nil {
		return false
	}

	st.mu.Lock()
	p := st.pending
	if !p.Awaiting() {
		st.mu.Unlock()
		return false
	}
	p.Status = domain.StatusAnswered
	s.clearPending(st)
	st.mu.Unlock()

	if chatID != 0 {
		p.ChatID = chatID
	}
	s.log.Info("mood answered",
		zap.Int64("userID", userID),
		zap.String("promptID", p.ID),
		zap.Duration("after", s.now().Sub(p.CreatedAt)),
	)
	s.deliverAsync(p, text)
	return true
}

// deliverAsync runs deliver on its own goroutine, so a slow weather or
// speech provider never holds up the caller. Run waits for these.
func (s *Scheduler) deliverAsync(p *domain.PendingPrompt, mood string) {
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		s.deliver(s.context(), p, mood)
	}()
}

// onTrigger opens a new reply window and asks for the mood.
func (s *Scheduler) onTrigger(userID int64, gen uint64) {
	st := s.lookup(userID)
	if st == nil {
		return
	}

	st.mu.Lock()
	if st.removed || st.gen != gen {
		st.mu.Unlock()
		return
	}
	var stale *domain.PendingPrompt
	if st.pending.Awaiting() {
		stale = st.pending
		stale.Status = domain.StatusTimedOut
		s.clearPending(st)
	}

	now := s.now().UTC()
	p := &domain.PendingPrompt{
		ID:        s.newID(),
		UserID:    userID,
		ChatID:    st.chatID,
		CreatedAt: now,
		Deadline:  now.Add(s.cfg.ReplyWindow),
		Status:    domain.StatusAwaiting,
	}
	st.pending = p
	promptID := p.ID
	st.timer = s.afterFunc(s.cfg.ReplyWindow, func() { s.onTimeout(userID, promptID) })
	chatID := p.ChatID
	st.mu.Unlock()

	ctx := s.context()
	if stale != nil {
		s.log.Warn("previous prompt still awaiting, closing it",
			zap.Int64("userID", userID),
			zap.String("promptID", stale.ID),
		)
		s.deliver(ctx, stale, domain.FallbackMood)
	}

	if err := s.msg.SendMessage(chatID, promptText); err != nil {
		s.log.Error("send prompt failed", zap.Error(err), zap.Int64("chatID", chatID))
		return
	}
	s.log.Info("mood prompt sent",
		zap.Int64("userID", userID),
		zap.String("promptID", promptID),
	)
}

// onTimeout closes a reply window nobody answered. A timer that fires after
// its prompt was answered or replaced finds a different or no prompt.
func (s *Scheduler) onTimeout(userID int64, promptID string) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("timeout handler panic", zap.Any("panic", r), zap.Int64("userID", userID))
		}
	}()

	st := s.lookup(userID)
	if st == nil {
		return
	}

	st.mu.Lock()
	p := st.pending
	if p == nil || p.ID != promptID || !p.Awaiting() {
		st.mu.Unlock()
		return
	}
	p.Status = domain.StatusTimedOut
	st.pending = nil
	st.timer = nil
	st.mu.Unlock()

	s.log.Info("mood prompt timed out", zap.Int64("userID", userID), zap.String("promptID", promptID))
	s.deliver(s.context(), p, domain.FallbackMood)
}

// clearPending drops the pending prompt and stops its timer. st.mu must be held.
func (s *Scheduler) clearPending(st *userState) {
	if st.timer != nil {
		st.timer.Stop()
		st.timer = nil
	}
	st.pending = nil
}

// NextPrompt returns when the user's next daily prompt fires.
func (s *Scheduler) NextPrompt(userID int64) (time.Time, bool) {
	st := s.lookup(userID)
	if st == nil {
		return time.Time{}, false
	}
	st.mu.Lock()
	entry := st.entry
	st.mu.Unlock()
	if entry == 0 {
		return time.Time{}, false
	}
	if next := s.cron.Entry(entry).Next; !next.IsZero() {
		return next, true
	}
	// cron not started yet
	return domain.NextDaily(s.now(), s.cfg.PromptAt, s.zone), true
}

// Pending returns a copy of the user's Awaiting prompt, if any.
func (s *Scheduler) Pending(userID int64) (domain.PendingPrompt, bool) {
	st := s.lookup(userID)
	if st == nil {
		return domain.PendingPrompt{}, false
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	if !st.pending.Awaiting() {
		return domain.PendingPrompt{}, false
	}
	return *st.pending, true
}

// Registered returns the number of users with a daily prompt.
func (s *Scheduler) Registered() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

func (s *Scheduler) stateFor(userID int64) *userState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.users[userID]
	if !ok {
		st = &userState{}
		s.users[userID] = st
	}
	return st
}

// forget removes st from the map unless it was already replaced.
func (s *Scheduler) forget(userID int64, st *userState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.users[userID] == st {
		delete(s.users, userID)
	}
}

func (s *Scheduler) lookup(userID int64) *userState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[userID]
}

func (s *Scheduler) context() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctx
}
