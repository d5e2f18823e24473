package scheduler

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/snowvesna25-sys/runspark-bot/internal/compose"
	"github.com/snowvesna25-sys/runspark-bot/internal/domain"
	"github.com/snowvesna25-sys/runspark-bot/internal/voice"
)

const deliveryTimeout = 2 * time.Minute

// Messenger is the outbound chat transport.
// telegram.Messenger implements it.
type Messenger interface {
	SendMessage(chatID int64, text string) error
	SendMarkdown(chatID int64, text string) error
	SendVoice(chatID int64, audio []byte) error
}

// WeatherProvider never fails; it falls back to domain.SentinelSnapshot.
type WeatherProvider interface {
	Fetch(ctx context.Context) domain.Snapshot
}

// VoiceRenderer synthesizes speech for a message.
type VoiceRenderer interface {
	Render(ctx context.Context, text string) ([]byte, error)
}

// Journal records resolved cycles.
type Journal interface {
	RecordCycle(ctx context.Context, rec domain.CycleRecord) error
}

// deliver composes the follow-up for a resolved prompt and sends it as text
// and then as voice. Failures are logged and never returned: the cycle is
// complete once deliver returns.
func (s *Scheduler) deliver(ctx context.Context, p *domain.PendingPrompt, mood string) {
	ctx, cancel := context.WithTimeout(ctx, deliveryTimeout)
	defer cancel()

	local := s.now().In(s.zone)
	snap := s.weather.Fetch(ctx)
	text := compose.Compose(mood, snap, domain.SeasonOf(local), domain.IsSunday(local, s.zone))

	rec := domain.CycleRecord{
		PromptID:   p.ID,
		UserID:     p.UserID,
		ChatID:     p.ChatID,
		Status:     p.Status,
		Mood:       mood,
		CreatedAt:  p.CreatedAt,
		ResolvedAt: local.UTC(),
	}
	log := s.log.With(zap.Int64("userID", p.UserID), zap.Int64("chatID", p.ChatID), zap.String("promptID", p.ID))

	if err := s.msg.SendMarkdown(p.ChatID, text); err != nil {
		log.Error("send motivation failed", zap.Error(err))
	} else {
		rec.TextDelivered = true
	}

	audio, err := s.voice.Render(ctx, compose.PlainText(text))
	if err != nil {
		var rerr *voice.RenderError
		if errors.As(err, &rerr) {
			log.Warn("voice render failed", zap.Error(rerr.Err))
		} else {
			log.Error("voice render failed", zap.Error(err))
		}
		if err := s.msg.SendMessage(p.ChatID, apologyText); err != nil {
			log.Error("send voice apology failed", zap.Error(err))
		}
	} else if err := s.msg.SendVoice(p.ChatID, audio); err != nil {
		log.Error("send voice failed", zap.Error(err))
	} else {
		rec.VoiceDelivered = true
	}

	log.Info("motivation delivered",
		zap.String("status", string(p.Status)),
		zap.String("weather", snap.Condition),
		zap.Bool("text", rec.TextDelivered),
		zap.Bool("voice", rec.VoiceDelivered),
	)

	if s.journal != nil {
		if err := s.journal.RecordCycle(ctx, rec); err != nil {
			log.Error("record cycle failed", zap.Error(err))
		}
	}
}
