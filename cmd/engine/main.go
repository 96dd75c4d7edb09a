package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/mentionpulse/alert-engine/internal/archive"
	"github.com/mentionpulse/alert-engine/internal/config"
	"github.com/mentionpulse/alert-engine/internal/delivery"
	"github.com/mentionpulse/alert-engine/internal/dispatch"
	"github.com/mentionpulse/alert-engine/internal/models"
	"github.com/mentionpulse/alert-engine/internal/scheduler"
	"github.com/mentionpulse/alert-engine/internal/senders"
	"github.com/mentionpulse/alert-engine/internal/store"
)

func main() {
	// Load environment variables from .env file if it exists
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set up logging
	logrus.SetLevel(logrus.InfoLevel)
	if cfg.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
	logrus.SetFormatter(&logrus.JSONFormatter{})

	logrus.Info("Starting alert delivery engine")

	// The entity store is owned by the surrounding product; the in-memory
	// implementation backs local runs.
	st := store.NewMemoryStore()

	var archiver archive.Archiver
	if cfg.StorageAccount != "" {
		azureArchive, err := archive.NewAzureArchive(cfg.StorageAccount, cfg.StorageContainer)
		if err != nil {
			logrus.Fatalf("Failed to initialize outcome archive: %v", err)
		}
		archiver = azureArchive
	} else {
		logrus.Info("No storage account configured, outcome events will not be archived")
		archiver = archive.NopArchive{}
	}

	dispatcher := dispatch.NewDispatcher(cfg, st, dispatch.Senders{
		Email:      senders.NewEmailSender(cfg),
		Slack:      senders.NewSlackSender(cfg.SendTimeout),
		DiscordWeb: senders.NewDiscordWebhookSender(cfg.SendTimeout),
		DiscordBot: senders.NewDiscordBotSender(cfg.SendTimeout, st),
		Generic:    senders.NewGenericWebhookSender(cfg.SendTimeout),
		InApp:      senders.NewInAppSender(st),
	}, archiver)

	tracker := delivery.NewTracker(cfg, st, senders.NewGenericWebhookSender(cfg.SendTimeout))

	schedulerService := scheduler.NewService(cfg, dispatcher, tracker)
	if err := schedulerService.Start(); err != nil {
		logrus.Fatalf("Failed to start scheduler: %v", err)
	}
	defer schedulerService.Stop()

	// Set up HTTP server for health checks and manual triggers
	router := mux.NewRouter()

	router.HandleFunc("/health", healthCheckHandler).Methods("GET")
	router.HandleFunc("/metrics", metricsHandler(dispatcher)).Methods("GET")
	router.HandleFunc("/trigger/alerts/{frequency}", triggerAlertsHandler(dispatcher)).Methods("POST")
	router.HandleFunc("/trigger/sweep", triggerSweepHandler(tracker)).Methods("POST")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logrus.Infof("HTTP server starting on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("HTTP server failed: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	logrus.Info("Server exited")
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy","timestamp":"` + time.Now().Format(time.RFC3339) + `"}`))
}

func metricsHandler(dispatcher *dispatch.Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(dispatcher.GetMetrics()))
	}
}

func triggerAlertsHandler(dispatcher *dispatch.Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		frequency := models.Frequency(mux.Vars(r)["frequency"])

		switch frequency {
		case models.FrequencyInstant, models.FrequencyDaily, models.FrequencyWeekly, models.FrequencyMonthly:
		default:
			http.Error(w, `{"error":"unknown frequency"}`, http.StatusBadRequest)
			return
		}

		go func() {
			if err := dispatcher.DispatchDue(context.Background(), frequency); err != nil {
				logrus.Errorf("Manual %s dispatch failed: %v", frequency, err)
			}
		}()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"message":"Dispatch triggered successfully"}`))
	}
}

func triggerSweepHandler(tracker *delivery.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		go func() {
			if err := tracker.ProcessDue(context.Background(), time.Now()); err != nil {
				logrus.Errorf("Manual sweep failed: %v", err)
			}
		}()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"message":"Sweep triggered successfully"}`))
	}
}
