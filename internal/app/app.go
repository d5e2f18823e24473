package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/snowvesna25-sys/runspark-bot/internal/config"
	"github.com/snowvesna25-sys/runspark-bot/internal/domain"
	"github.com/snowvesna25-sys/runspark-bot/internal/scheduler"
	"github.com/snowvesna25-sys/runspark-bot/internal/store"
	"github.com/snowvesna25-sys/runspark-bot/internal/telegram"
	"github.com/snowvesna25-sys/runspark-bot/internal/voice"
	"github.com/snowvesna25-sys/runspark-bot/internal/weather"
)

// registry is what the health endpoint reports on.
type registry interface {
	Registered() int
}

type App struct {
	cfg     config.Config
	log     *zap.Logger
	bot     *tgbotapi.BotAPI
	httpSrv *http.Server
}

func New(cfg config.Config, log *zap.Logger) (*App, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	bot.Debug = false
	log.Info("telegram authorized", zap.String("bot", bot.Self.UserName))

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}

	return &App{cfg: cfg, log: log, bot: bot, httpSrv: srv}, nil
}

// sender is the outbound half of *tgbotapi.BotAPI.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// wire builds the scheduler and the update router around one messenger.
func wire(cfg config.Config, bot sender, repo store.Repo, cr scheduler.Cron, log *zap.Logger) (*scheduler.Scheduler, *telegram.Router) {
	loc := domain.Vladivostok
	msgr := telegram.NewMessenger(bot)

	sched := scheduler.New(
		scheduler.Config{
			PromptAt:    cfg.PromptMinutes(),
			ReplyWindow: cfg.ReplyWindow,
			Location:    loc,
		},
		scheduler.Deps{
			Cron:      cr,
			Messenger: msgr,
			Weather:   weather.NewClient(cfg.WeatherURL, loc, log.Named("weather")),
			Voice:     voice.NewRenderer(cfg.TTSURL, cfg.TTSLang),
			Journal:   repo,
			Log:       log.Named("scheduler"),
		},
	)
	router := telegram.NewRouter(msgr, log.Named("telegram"), repo, sched, loc.Zone(), cfg.PromptMinutes())
	return sched, router
}

// healthHandler answers 200 with the number of armed users.
func healthHandler(reg registry) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintf(w, "ok\nregistered %d\n", reg.Registered())
	})
	return mux
}

// Run wires the components and blocks until SIGINT/SIGTERM, ctx
// cancellation or a fatal component error.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.log.Info("starting runspark-bot",
		zap.String("http", a.cfg.HTTPAddr),
		zap.String("promptAt", a.cfg.PromptAt),
		zap.Duration("replyWindow", a.cfg.ReplyWindow),
		zap.Int("workers", a.cfg.Workers),
	)

	repo, err := store.Open(ctx, a.cfg.DatabaseURL, a.cfg.DBPath)
	if err != nil {
		a.log.Error("open journal failed", zap.Error(err))
		return err
	}
	defer func() {
		if err := repo.Close(); err != nil {
			a.log.Warn("close journal", zap.Error(err))
		}
	}()
	a.log.Info("journal ready", zap.Bool("postgres", a.cfg.DatabaseURL != ""))

	sched, router := wire(a.cfg, a.bot, repo, scheduler.NewCron(domain.Vladivostok.Zone(), a.log.Named("cron")), a.log)
	a.httpSrv.Handler = healthHandler(sched)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := a.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.httpSrv.Shutdown(shCtx); err != nil {
			a.log.Warn("http server shutdown error", zap.Error(err))
		}
		return nil
	})
	g.Go(func() error {
		sched.Run(gctx)
		return nil
	})
	g.Go(func() error {
		return a.pollUpdates(gctx, router)
	})

	err = g.Wait()
	a.log.Info("stopped", zap.Error(err))
	return err
}

// pollUpdates long-polls Telegram and handles updates on at most
// cfg.Workers goroutines.
func (a *App) pollUpdates(ctx context.Context, router *telegram.Router) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updCh := a.bot.GetUpdatesChan(u)

	var workers errgroup.Group
	workers.SetLimit(a.cfg.Workers)

	for {
		select {
		case <-ctx.Done():
			a.log.Info("shutdown signal received")
			a.bot.StopReceivingUpdates()
			return workers.Wait()

		case upd, ok := <-updCh:
			if !ok {
				_ = workers.Wait()
				return errors.New("telegram updates channel closed")
			}
			workers.Go(func() error {
				router.HandleUpdate(ctx, upd)
				return nil
			})
		}
	}
}
