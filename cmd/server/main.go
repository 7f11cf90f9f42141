package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"bn9-backend/internal/alert"
	"bn9-backend/internal/api"
	"bn9-backend/internal/classify"
	"bn9-backend/internal/config"
	"bn9-backend/internal/line"
	"bn9-backend/internal/llm"
	"bn9-backend/internal/scheduler"
	"bn9-backend/internal/storage"
	"bn9-backend/internal/webhook"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	cfg := config.New()
	ctx := context.Background()

	classifier, summarizer := newLLMServices(cfg)
	store := newStore(ctx, cfg)
	messenger := line.New(cfg.LineChannelToken)
	policy := alert.NewPolicy(cfg.AlertCategories)
	notifier := newNotifier(cfg, messenger)

	pipeline := webhook.NewPipeline(classifier, store, policy, notifier, messenger)
	hook := webhook.NewHandler(cfg.LineChannelSecret, cfg.LineStrictSignature, pipeline)

	server := api.NewServer(api.Options{
		Port:         cfg.Port,
		Webhook:      hook,
		Store:        store,
		Messenger:    messenger,
		Notifier:     notifier,
		Summarizer:   summarizer,
		AdminAPIKey:  cfg.AdminAPIKey,
		AllowOrigins: cfg.AllowOrigins,
	})

	if cfg.DigestCron != "" {
		digest := scheduler.NewDigest(cfg.DigestCron, store, notifier)
		if err := digest.Start(); err != nil {
			log.Printf("failed to start digest scheduler: %v", err)
		} else {
			defer digest.Stop()
		}
	}

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server failed: %v", err)
		}
	case <-sigCtx.Done():
		log.Printf("shutting down")
		if err := server.Stop(); err != nil {
			log.Printf("shutdown error: %v", err)
		}
	}
}

func newLLMServices(cfg *config.Config) (classify.Classifier, classify.Summarizer) {
	factory := llm.NewFactory(cfg)
	if !factory.Configured(string(cfg.LLMProvider)) {
		log.Printf("no %s credential configured, classifier runs in mock mode", cfg.LLMProvider)
		return classify.Mock{}, classify.MockSummarizer{}
	}
	client, err := factory.CreateClient(string(cfg.LLMProvider), cfg.OpenAIModel)
	if err != nil {
		log.Printf("failed to create llm client (%v), falling back to mock mode", err)
		return classify.Mock{}, classify.MockSummarizer{}
	}
	return classify.NewLLM(client), classify.NewLLMSummarizer(client)
}

func newStore(ctx context.Context, cfg *config.Config) storage.Store {
	if cfg.GoogleSheetID == "" || cfg.GoogleServiceEmail == "" || cfg.GooglePrivateKey == "" {
		log.Printf("Google Sheets credentials not configured, using in-memory log store")
		return storage.NewMemoryStore()
	}
	store, err := storage.NewSheetsStore(ctx, cfg.GoogleSheetID, cfg.GoogleServiceEmail, cfg.GooglePrivateKey, cfg.SheetMasterTab)
	if err != nil {
		log.Printf("failed to init sheets store (%v), using in-memory log store", err)
		return storage.NewMemoryStore()
	}
	go store.MustTail(ctx)
	return store
}

func newNotifier(cfg *config.Config, messenger line.Messenger) alert.Notifier {
	var notifiers []alert.Notifier
	if cfg.AdminLineUserID != "" {
		notifiers = append(notifiers, alert.NewLineNotifier(messenger, cfg.AdminLineUserID))
	}
	if cfg.TelegramBotToken != "" && cfg.TelegramAdminChat != 0 {
		tg, err := alert.NewTelegramNotifier(cfg.TelegramBotToken, cfg.TelegramAdminChat)
		if err != nil {
			log.Printf("telegram notifier unavailable: %v", err)
		} else {
			notifiers = append(notifiers, tg)
		}
	}
	return alert.Combine(notifiers...)
}
