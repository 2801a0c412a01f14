package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"

	"github.com/erickiiim/newsroom/internal/config"
	"github.com/erickiiim/newsroom/internal/fetcher"
	"github.com/erickiiim/newsroom/internal/pipeline"
	"github.com/erickiiim/newsroom/internal/reporter"
	"github.com/erickiiim/newsroom/internal/server"
	"github.com/erickiiim/newsroom/internal/storage"
	"github.com/erickiiim/newsroom/internal/summary"
)

func main() {
	once := flag.Bool("once", false, "run the analysis for every category once and exit")
	flag.Parse()

	db, err := sqlx.Connect("postgres", config.Get().DatabaseDSN)
	if err != nil {
		log.Printf("[ERROR] failed to connect to db: %v", err)
		return
	}
	defer db.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := storage.InitSchema(ctx, db); err != nil {
		log.Printf("[ERROR] failed to init schema: %v", err)
		return
	}

	var (
		archiveStorage = storage.NewArchiveStorage(db)
		feedStorage    = storage.NewFeedStorage(db)
		statsStorage   = storage.NewStatsStorage(db)
		commentStorage = storage.NewCommentStorage(db)
	)

	var gen summary.Generator
	switch config.Get().AIType {
	case "ollama":
		if config.Get().AIBaseURL == "" {
			log.Printf("[ERROR] ai_base_url is required when ai_type is \"ollama\"")
			return
		}
		gen = summary.NewOllamaGenerator(config.Get().AIBaseURL, config.Get().AITimeout)
		log.Printf("[INFO] using Ollama generator")
	default:
		if config.Get().AIKey == "" {
			log.Printf("[ERROR] ai_key is required when ai_type is \"openai\"")
			return
		}
		gen = summary.NewOpenAIGenerator(config.Get().AIBaseURL, config.Get().AIKey, config.Get().AITimeout)
		log.Printf("[INFO] using OpenAI-compatible generator (models: %v)", config.Get().AIModels)
	}

	var (
		summarizer = summary.New(gen, config.Get().AIModels)
		feedFetch  = fetcher.New(config.Get().ItemsPerFeed, config.Get().FeedTimeout)
		pipe       = pipeline.New(feedStorage, feedFetch, summarizer, archiveStorage)
	)

	var adminReporter *reporter.Reporter
	if config.Get().TelegramBotToken != "" {
		botAPI, err := tgbotapi.NewBotAPI(config.Get().TelegramBotToken)
		if err != nil {
			log.Printf("[ERROR] failed to create botAPI: %v", err)
			return
		}
		adminReporter = reporter.New(botAPI, config.Get().TelegramAdminChatID)
	}

	if *once {
		runBatch(ctx, pipe, adminReporter)
		return
	}

	c := cron.New()
	if _, err := c.AddFunc(config.Get().Schedule, func() {
		runBatch(ctx, pipe, adminReporter)
	}); err != nil {
		log.Printf("[ERROR] failed to set up schedule %q: %v", config.Get().Schedule, err)
		return
	}
	c.Start()
	defer c.Stop()
	log.Printf("[INFO] scheduled daily analysis with cron expression %q", config.Get().Schedule)

	srv := &http.Server{
		Addr: config.Get().HTTPAddr,
		Handler: server.New(
			pipe,
			feedStorage,
			archiveStorage,
			statsStorage,
			commentStorage,
			config.Get().AdminPassword,
		).Handler(),
	}

	go func() {
		log.Printf("[INFO] http server listening on %s", config.Get().HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("[ERROR] failed to run http server: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[ERROR] http server shutdown: %v", err)
	}
	log.Printf("[INFO] shutdown complete")
}

func runBatch(ctx context.Context, pipe *pipeline.Pipeline, adminReporter *reporter.Reporter) {
	date := time.Now().Format("2006-01-02")
	log.Printf("[INFO] running analysis batch for %s", date)

	results := pipe.RunAll(ctx)
	for _, res := range results {
		if res.Err != nil {
			log.Printf("[INFO] %s: %s (%v)", res.Category, res.Outcome, res.Err)
			continue
		}
		log.Printf("[INFO] %s: %s", res.Category, res.Outcome)
	}

	adminReporter.ReportOutcomes(date, results)
}
