package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"Gateway/internal/auth"
	"Gateway/internal/config"
	"Gateway/internal/repo"

	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load("tgbot", os.Args[1:])
	if err != nil {
		logrus.Fatal(err)
	}
	if err := config.SetupLogging(cfg.LogLevel, cfg.LogFormat); err != nil {
		logrus.Fatal(err)
	}
	if cfg.TokenBot == "" || cfg.AdminPeerID == 0 {
		logrus.Fatal("TOKEN_BOT or ADMIN_PEER_ID missing")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	db := auth.InitDB(cfg.DatabaseURL)
	defer db.Close()

	logrus.WithField("admin", cfg.AdminPeerID).Info("approval bot started")
	NewBot(cfg.TokenBot, cfg.AdminPeerID, repo.NewPostgresUserDB(db)).Run(ctx)
	logrus.Info("approval bot stopped")
}
