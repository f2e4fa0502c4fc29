package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/estudos/internal/billing"
	"github.com/example/estudos/internal/bot"
	"github.com/example/estudos/internal/config"
	"github.com/example/estudos/internal/database"
	"github.com/example/estudos/internal/excel"
	"github.com/example/estudos/internal/revisoes"
	"github.com/example/estudos/internal/scheduler"
	"github.com/example/estudos/internal/service"
	"github.com/example/estudos/internal/storage"
)

func main() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg.DBType, cfg.DSN())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	repos := database.NewRepositories(db)

	// Remote services are optional; their operations report ErrNaoConfigurado
	var billingClient service.Billing
	if cfg.BillingBaseURL != "" {
		billingClient = billing.NewClient(cfg.BillingBaseURL, cfg.BillingAPIKey)
	} else {
		log.Println("Billing not configured, subscriptions disabled")
	}

	var storageClient service.Storage
	if cfg.StorageBaseURL != "" {
		storageClient = storage.NewClient(cfg.StorageBaseURL, cfg.StorageBucket, cfg.StorageServiceKey)
	} else {
		log.Println("Storage not configured, edital uploads disabled")
	}

	svc := service.New(repos, billingClient, storageClient, service.Options{
		PriceID:    cfg.BillingPriceID,
		SuccessURL: cfg.BillingSuccessURL,
		CancelURL:  cfg.BillingCancelURL,
		Intervalos: revisoes.DefaultIntervalos,
	})

	botConfig := bot.DefaultConfig()
	botConfig.Token = cfg.TelegramToken
	botConfig.AdminIDs = cfg.AdminUserIDs
	botConfig.TempoPadraoSessao = cfg.SessaoPadrao

	b, err := bot.New(botConfig, svc, excel.NewImporter(repos.Editais))
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}

	var sched *scheduler.Scheduler
	if cfg.EnableScheduler {
		sched = scheduler.New(revisoes.NewReconciler(repos.Revisoes), repos.Users, repos.Revisoes, b, scheduler.Options{
			ReconcileInterval:     cfg.ReconcileInterval,
			NotificationStartHour: cfg.NotificationStartHour,
			NotificationEndHour:   cfg.NotificationEndHour,
		})
		if err := sched.Start(); err != nil {
			log.Fatalf("Failed to start scheduler: %v", err)
		}
		log.Println("Scheduler started")
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := b.Start(ctx); err != nil {
			log.Printf("Bot error: %v", err)
		}
	}()

	log.Println("Bot started. Press Ctrl+C to stop.")
	select {
	case sig := <-sigChan:
		log.Printf("Received signal: %v", sig)
	case <-done:
	}

	cancel()
	if sched != nil {
		sched.Stop()
	}
	<-done
	log.Println("Bot stopped successfully")
}
