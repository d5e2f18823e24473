package main

import (
	"context"
	"os"
	// Asia/Vladivostok must resolve even on hosts without zoneinfo.
	_ "time/tzdata"

	"go.uber.org/zap"

	"github.com/snowvesna25-sys/runspark-bot/internal/app"
	"github.com/snowvesna25-sys/runspark-bot/internal/config"
	"github.com/snowvesna25-sys/runspark-bot/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// No logger yet; exit immediately.
		_, _ = os.Stderr.WriteString("config error: " + err.Error() + "\n")
		os.Exit(2)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		_, _ = os.Stderr.WriteString("logger init error: " + err.Error() + "\n")
		os.Exit(2)
	}
	defer func() { _ = log.Sync() }()

	application, err := app.New(cfg, log)
	if err != nil {
		log.Fatal("app init failed", zap.Error(err))
	}

	if err := application.Run(context.Background()); err != nil {
		log.Fatal("app run failed", zap.Error(err))
	}
}
