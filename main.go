package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	rotatelogs "github.com/iproj/file-rotatelogs"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"meal-manager/internal"
	"meal-manager/internal/activity"
	"meal-manager/internal/auth"
	"meal-manager/web"
	"meal-manager/workers"
)

func main() {
	var err error

	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	// Load .env
	err = godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		log.Error(err)
	}

	cfg, err := internal.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}
	setupLogging(cfg)

	// connect to database
	database := internal.DatabaseConnection{
		URI:    cfg.MongoURI,
		DB:     cfg.DB,
		Logger: log.StandardLogger(),
	}
	if err = database.Connect(context.Background()); err != nil {
		log.Fatalf("Failed to connect to database %s: %v", cfg.DB, err)
	}
	if err = database.EnsureIndexes(context.Background()); err != nil {
		log.Fatal(err)
	}

	r := web.NewRouter(database.MongoDB, auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL))
	r.Activity = make(chan activity.Event, workers.ActivityBuffer)
	drained := workers.CreateActivityWorker(r.Activity, database.MongoDB)

	stopped := handleSignals(r, &database, drained)

	// fully load and apply routes
	r.Init()
	if err = r.Listen(cfg.Listen); err != nil {
		log.Fatal(err)
	}
	<-stopped
}

func setupLogging(cfg *internal.Config) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	if cfg.Debug {
		level = log.DebugLevel
	}
	log.SetLevel(level)

	if cfg.LogDir == "" {
		return
	}
	rotated, err := rotatelogs.New(
		filepath.Join(cfg.LogDir, "meal-manager.%Y%m%d.log"),
		rotatelogs.WithLinkName(filepath.Join(cfg.LogDir, "meal-manager.log")),
		rotatelogs.WithMaxAge(7*24*time.Hour),
		rotatelogs.WithRotationTime(24*time.Hour),
	)
	if err != nil {
		log.Errorf("unable to open rotated log in %s: %v", cfg.LogDir, err)
		return
	}
	log.SetOutput(io.MultiWriter(os.Stdout, rotated))
}

// handleSignals shuts everything down on SIGINT/SIGTERM; the returned channel
// closes once that has finished.
func handleSignals(r *web.Router, database *internal.DatabaseConnection, drained <-chan struct{}) <-chan struct{} {
	stopped := make(chan struct{})
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signals
		shutdown(r, database, drained)
		close(stopped)
	}()
	return stopped
}

func shutdown(r *web.Router, database *internal.DatabaseConnection, drained <-chan struct{}) {
	fmt.Println()
	log.Warnf("%d goroutines at exit.", runtime.NumGoroutine())
	log.Warn("Shutting down meal manager...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := r.Shutdown(ctx); err != nil {
		log.Error(err)
	}
	r.CloseActivity()
	select {
	case <-drained:
	case <-ctx.Done():
		log.Warn("activity worker did not drain before timeout")
	}
	database.Disconnect(ctx)
}
