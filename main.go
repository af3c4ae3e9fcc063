package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/hskvocab/internal/bot"
	"github.com/example/hskvocab/internal/config"
	"github.com/example/hskvocab/internal/database"
	"github.com/example/hskvocab/internal/excel"
	"github.com/example/hskvocab/internal/quiz"
	"github.com/example/hskvocab/internal/scheduler"
	"github.com/example/hskvocab/internal/session"
	"github.com/example/hskvocab/internal/web"
)

func main() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.Open(cfg.DBType, cfg.DSN())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if cfg.AutoSeed {
		res, err := excel.SeedIfEmpty(ctx, database.NewVocabularyRepository(db), cfg.SeedFile)
		if err != nil {
			log.Printf("Error seeding vocabulary from %s: %v", cfg.SeedFile, err)
		} else if res != nil {
			log.Printf("Seeded vocabulary from %s: %d created, %d skipped", cfg.SeedFile, res.Created, res.Skipped)
		}
	}

	rnd := quiz.NewTimeRand()
	sessions := session.NewStore(cfg.SessionTTL, cfg.RememberTTL)

	sweeper := scheduler.New(sessions, cfg.SweepInterval)

	var tg *bot.Bot
	if cfg.TelegramToken != "" {
		botCfg := bot.DefaultConfig()
		botCfg.DefaultQuizSize = cfg.DefaultQuizSize
		tg, err = bot.New(cfg.TelegramToken, db, rnd, botCfg)
		if err != nil {
			log.Fatalf("Failed to create bot: %v", err)
		}
		sweeper.AddSweeper("telegram quizzes", tg)
	} else {
		log.Println("TELEGRAM_BOT_TOKEN is not set, Telegram bot disabled")
	}

	if err := sweeper.Start(); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}
	defer sweeper.Stop()

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           web.NewRouter(web.NewAPI(db, sessions, rnd, cfg.DefaultQuizSize)),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Printf("HTTP server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Server error: %v", err)
			cancel()
		}
	}()

	if tg != nil {
		go func() {
			if err := tg.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("Bot error: %v", err)
			}
		}()
	}

	select {
	case sig := <-sigChan:
		log.Printf("Received signal: %v", sig)
	case <-ctx.Done():
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
	if tg != nil {
		tg.Stop()
	}
	log.Println("Stopped successfully")
}
