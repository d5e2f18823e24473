package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/snowvesna25-sys/runspark-bot/internal/domain"
	"github.com/snowvesna25-sys/runspark-bot/internal/voice"
)

type fakeJob struct {
	spec string
	fn   func()
}

type fakeCron struct {
	mu      sync.Mutex
	next    cron.EntryID
	active  map[cron.EntryID]fakeJob
	all     map[cron.EntryID]fakeJob
	removed []cron.EntryID
}

func newFakeCron() *fakeCron {
	return &fakeCron{active: map[cron.EntryID]fakeJob{}, all: map[cron.EntryID]fakeJob{}}
}

func (c *fakeCron) AddFunc(spec string, cmd func()) (cron.EntryID, error) {
	if _, err := cron.ParseStandard(spec); err != nil {
		return 0, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.next++
	c.active[c.next] = fakeJob{spec: spec, fn: cmd}
	c.all[c.next] = c.active[c.next]
	return c.next, nil
}

func (c *fakeCron) Remove(id cron.EntryID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.active, id)
	c.removed = append(c.removed, id)
}

func (c *fakeCron) Entry(id cron.EntryID) cron.Entry { return cron.Entry{ID: id} }

func (c *fakeCron) Start() {}

func (c *fakeCron) Stop() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	return ctx
}

func (c *fakeCron) jobs() []fakeJob {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]fakeJob, 0, len(c.active))
	for _, j := range c.active {
		out = append(out, j)
	}
	return out
}

// fireAll runs every active daily job, like cron at the prompt time.
func (c *fakeCron) fireAll() {
	for _, j := range c.jobs() {
		j.fn()
	}
}

type fakeTimer struct {
	mu      sync.Mutex
	d       time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	wasPending := !t.stopped && !t.fired
	t.stopped = true
	return wasPending
}

// fire runs the callback even if Stop was called, the way a timer that had
// already expired races a cancellation.
func (t *fakeTimer) fire() {
	t.mu.Lock()
	t.fired = true
	t.mu.Unlock()
	t.f()
}

func (t *fakeTimer) isStopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

type fakeTimers struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func (ft *fakeTimers) AfterFunc(d time.Duration, f func()) Timer {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	t := &fakeTimer{d: d, f: f}
	ft.timers = append(ft.timers, t)
	return t
}

func (ft *fakeTimers) last(tb testing.TB) *fakeTimer {
	tb.Helper()
	ft.mu.Lock()
	defer ft.mu.Unlock()
	if len(ft.timers) == 0 {
		tb.Fatal("no timer armed")
	}
	return ft.timers[len(ft.timers)-1]
}

type sent struct {
	kind   string // text, markdown, voice
	chatID int64
	body   string
}

type fakeMessenger struct {
	mu       sync.Mutex
	events   []sent
	failText bool
}

func (m *fakeMessenger) record(kind string, chatID int64, body string, fail bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, sent{kind: kind, chatID: chatID, body: body})
	if fail {
		return errors.New("telegram: bad gateway")
	}
	return nil
}

func (m *fakeMessenger) SendMessage(chatID int64, text string) error {
	return m.record("text", chatID, text, m.failText)
}

func (m *fakeMessenger) SendMarkdown(chatID int64, text string) error {
	return m.record("markdown", chatID, text, false)
}

func (m *fakeMessenger) SendVoice(chatID int64, audio []byte) error {
	return m.record("voice", chatID, string(audio), false)
}

func (m *fakeMessenger) byKind(kind string) []sent {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []sent
	for _, e := range m.events {
		if e.kind == kind {
			out = append(out, e)
		}
	}
	return out
}

func (m *fakeMessenger) all() []sent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sent(nil), m.events...)
}

type fakeWeather struct{ snap domain.Snapshot }

func (w fakeWeather) Fetch(context.Context) domain.Snapshot { return w.snap }

type fakeVoice struct{ fail bool }

func (v fakeVoice) Render(_ context.Context, text string) ([]byte, error) {
	if v.fail {
		return nil, &voice.RenderError{Err: errors.New("tts down")}
	}
	return []byte(fmt.Sprintf("mp3(%d)", len(text))), nil
}

// blockingVoice holds every render until release is closed.
type blockingVoice struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func newBlockingVoice() *blockingVoice {
	return &blockingVoice{started: make(chan struct{}), release: make(chan struct{})}
}

func (v *blockingVoice) Render(ctx context.Context, _ string) ([]byte, error) {
	v.once.Do(func() { close(v.started) })
	select {
	case <-v.release:
		return []byte("mp3"), nil
	case <-ctx.Done():
		return nil, &voice.RenderError{Err: ctx.Err()}
	}
}

type memJournal struct {
	mu   sync.Mutex
	recs []domain.CycleRecord
}

func (j *memJournal) RecordCycle(_ context.Context, rec domain.CycleRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.recs = append(j.recs, rec)
	return nil
}

func (j *memJournal) records() []domain.CycleRecord {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]domain.CycleRecord(nil), j.recs...)
}

type harness struct {
	s       *Scheduler
	cron    *fakeCron
	timers  *fakeTimers
	msg     *fakeMessenger
	journal *memJournal

	mu  sync.Mutex
	now time.Time
}

func newHarness(t *testing.T, start time.Time) *harness {
	t.Helper()
	h := &harness{
		cron:    newFakeCron(),
		timers:  &fakeTimers{},
		msg:     &fakeMessenger{},
		journal: &memJournal{},
		now:     start,
	}
	h.s = New(Config{
		PromptAt:    4 * 60,
		ReplyWindow: 15 * time.Minute,
		Location:    domain.Vladivostok,
	}, Deps{
		Cron:      h.cron,
		Messenger: h.msg,
		Weather:   fakeWeather{snap: domain.Snapshot{TemperatureC: 8, Code: 3, Condition: "overcast"}},
		Voice:     fakeVoice{},
		Journal:   h.journal,
		Log:       zap.NewNop(),
	})
	h.s.now = h.clock
	h.s.afterFunc = h.timers.AfterFunc
	ids := 0
	var idMu sync.Mutex
	h.s.newID = func() string {
		idMu.Lock()
		defer idMu.Unlock()
		ids++
		return fmt.Sprintf("prompt-%d", ids)
	}
	return h
}

// settle waits for answered deliveries running in the background.
func (h *harness) settle() {
	h.s.inflight.Wait()
}

func (h *harness) clock() time.Time {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.now
}

func (h *harness) advance(d time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.now = h.now.Add(d)
}

// vladivostok returns the instant of a local wall-clock time in the fixed zone.
func vladivostok(t *testing.T, y int, m time.Month, d, hh, mm int) time.Time {
	t.Helper()
	return time.Date(y, m, d, hh, mm, 0, 0, domain.Vladivostok.Zone())
}
