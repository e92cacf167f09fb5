package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"roombook/internal/config"
	"roombook/internal/database"
	"roombook/internal/events"
	"roombook/internal/export"
	"roombook/internal/google"
	"roombook/internal/httpapi"
	"roombook/internal/metrics"
	"roombook/internal/notify"
	"roombook/internal/report"
	"roombook/internal/service"
)

func main() {
	// Initialize logger
	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()

	// .env is optional; real deployments set env vars directly
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("ROOMBOOK_CONFIG_PATH"))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		logger.Fatal().Err(err).Msg("open db error")
	}
	defer db.Close()

	var rdb *redis.Client
	if cfg.Redis.Address != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	roomCache := service.NewRoomCache(rdb, cfg.CacheTTL(), &logger)

	bus := events.NewEventBus()

	detector := service.NewConflictDetector(db, &logger)
	recommender := service.NewRecommender(db, roomCache, &logger)
	reservations := service.NewReservationService(db, detector, recommender, bus, cfg.Booking.MaxRepeatWeeks, &logger)
	rooms := service.NewRoomService(db, roomCache, &logger)
	schedule := service.NewScheduleService(db, &logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Sheets.Enabled {
		mirror, err := google.NewSheetsService(ctx, cfg.Sheets.CredentialsPath, cfg.Sheets.SpreadsheetID, cfg.Sheets.SheetName, &logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("sheets mirror init error")
		}
		wireSheetsMirror(ctx, bus, mirror, schedule, &logger)
	}

	if cfg.Report.Enabled {
		notifier, err := notify.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.Managers, &logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("telegram notifier init error")
		}

		reportCfg := &report.Config{
			DataRetentionDays: cfg.Report.DataRetentionDays,
			ExportOnStart:     cfg.Report.ExportOnStart,
			SheetName:         cfg.Sheets.SheetName,
		}
		var reportNotifier report.Notifier
		if notifier != nil {
			reportNotifier = notifier
		}
		reports := report.NewService(reportCfg, db,
			func() export.ExcelWriter { return export.NewExcelizeWriter() },
			reportNotifier, db, &logger)
		reports.EnableTableDump(db)
		reports.Start()
		defer reports.Stop()
	}

	if cfg.Backup.Enabled {
		backup := database.NewBackupService(cfg.Database.Path, database.BackupConfig{
			Enabled:       true,
			Interval:      cfg.BackupInterval(),
			StoragePath:   cfg.Backup.Path,
			RetentionDays: cfg.Backup.RetentionDays,
		}, &logger)
		go backup.Start(ctx)
	}

	if cfg.Monitoring.HealthCheckPort == 0 {
		cfg.Monitoring.HealthCheckPort = 8090
	}
	go startHealthServer(ctx, cfg.Monitoring.HealthCheckPort, db, rdb, &logger)

	if cfg.Monitoring.PrometheusEnabled {
		if cfg.Monitoring.PrometheusPort == 0 {
			cfg.Monitoring.PrometheusPort = 9090
		}
		metrics.Register()
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, &logger)
	}

	api := httpapi.NewHTTPServer(httpapi.Options{
		Port:           cfg.HTTP.Port,
		APIKey:         cfg.HTTP.APIKey,
		RateLimitRPS:   cfg.HTTP.RateLimitRPS,
		RateLimitBurst: cfg.HTTP.RateLimitBurst,
	}, reservations, rooms, recommender, schedule, &logger)

	logger.Info().Msg("room scheduler started")
	if err := api.Start(ctx); err != nil {
		logger.Fatal().Err(err).Msg("http api error")
	}
}

// wireSheetsMirror re-syncs the spreadsheet after every series change. The
// mirror covers the surrounding year so past and upcoming weeks stay visible.
func wireSheetsMirror(ctx context.Context, bus *events.EventBus, mirror *google.SheetsService, schedule *service.ScheduleService, logger *zerolog.Logger) {
	sync := func(events.Event) error {
		now := time.Now().UTC()
		from := now.AddDate(0, -6, 0)
		to := now.AddDate(0, 6, 0)

		rows, err := schedule.Schedule(ctx, from, to, "", "")
		if err != nil {
			logger.Error().Err(err).Msg("sheets mirror query failed")
			return err
		}
		if err := mirror.SyncSchedule(ctx, rows); err != nil {
			logger.Error().Err(err).Msg("sheets mirror sync failed")
			return err
		}
		return nil
	}

	bus.Subscribe(events.SeriesCreated, sync)
	bus.Subscribe(events.SeriesEdited, sync)
	bus.Subscribe(events.SeriesDeleted, sync)
}

func startHealthServer(ctx context.Context, port int, db *database.DB, rdb *redis.Client, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		ctxPing, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		if err := db.PingContext(ctxPing); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		if rdb != nil {
			if err := rdb.Ping(ctxPing).Err(); err != nil {
				http.Error(w, "redis not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("health server error")
	}
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
