package telegram

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/snowvesna25-sys/runspark-bot/internal/domain"
	"github.com/snowvesna25-sys/runspark-bot/internal/store"
)

// statusRunDays bounds how far back /status looks for runs.
const statusRunDays = 366

func (r *Router) sendText(chatID int64, text string) {
	if err := r.msg.SendMessage(chatID, text); err != nil {
		r.log.Warn("send reply failed", zap.Int64("chatID", chatID), zap.Error(err))
	}
}

func (r *Router) handleStart(ctx context.Context, userID, chatID int64, name string) {
	p := &domain.UserProfile{
		UserID:       userID,
		ChatID:       chatID,
		DisplayName:  name,
		RegisteredAt: r.now().UTC(),
	}
	// The journal is not needed for prompts to work.
	if err := r.repo.UpsertProfile(ctx, p); err != nil {
		r.log.Error("upsert profile failed", zap.Int64("userID", userID), zap.Error(err))
	}

	if err := r.prompts.Register(userID, chatID); err != nil {
		r.log.Error("register failed", zap.Int64("userID", userID), zap.Error(err))
		r.sendText(chatID, errorText)
		return
	}
	r.sendText(chatID, fmt.Sprintf(greetingFmt, name, domain.FormatMinutes(r.promptAt)))
}

func (r *Router) handleRan(ctx context.Context, userID, chatID int64) {
	day := domain.DayKey(r.now(), r.zone)
	if err := r.repo.RecordRun(ctx, userID, day); err != nil {
		r.log.Error("record run failed", zap.Int64("userID", userID), zap.String("day", day), zap.Error(err))
	}
	r.sendText(chatID, ranText)
}

func (r *Router) handleStop(userID, chatID int64) {
	if !r.prompts.Cancel(userID) {
		r.sendText(chatID, notStartedText)
		return
	}
	r.sendText(chatID, stoppedText)
}

func (r *Router) handleStatus(ctx context.Context, userID, chatID int64) {
	next := "—"
	if t, ok := r.prompts.NextPrompt(userID); ok {
		next = domain.LocalizeTime(t, r.zone)
	}
	waiting := "no"
	if p, ok := r.prompts.Pending(userID); ok {
		waiting = "yes, until " + domain.LocalizeTime(p.Deadline, r.zone)
	}

	days, err := r.repo.RunDays(ctx, userID, statusRunDays)
	if err != nil {
		r.log.Error("read runs failed", zap.Int64("userID", userID), zap.Error(err))
		r.sendText(chatID, errorText)
		return
	}
	streak := domain.Streak(days, r.now(), r.zone)

	last := "—"
	rec, err := r.repo.LastCycle(ctx, userID)
	switch {
	case err == nil:
		last = fmt.Sprintf("%s, %s (%s)", domain.LocalizeTime(rec.ResolvedAt, r.zone), rec.Mood, rec.Status)
	case !errors.Is(err, store.ErrNotFound):
		r.log.Warn("read last cycle failed", zap.Int64("userID", userID), zap.Error(err))
	}

	title := statusTitle
	p, err := r.repo.GetProfile(ctx, userID)
	switch {
	case err == nil && p.DisplayName != "":
		title = fmt.Sprintf(statusTitleFmt, p.DisplayName)
	case err != nil && !errors.Is(err, store.ErrNotFound):
		r.log.Warn("read profile failed", zap.Int64("userID", userID), zap.Error(err))
	}

	r.sendText(chatID, fmt.Sprintf("%s\n\n"+statusFmt, title, next, waiting, len(days), streak, last))
}

// handleText treats free text as the answer to the morning question.
func (r *Router) handleText(userID, chatID int64, text string) {
	if text == "" {
		return
	}
	if r.prompts.Answer(userID, chatID, text) {
		return
	}
	r.sendText(chatID, hintText)
}
