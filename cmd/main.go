package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/cors"
	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/m04kA/SMC-RentalService/internal/abuseguard"
	bansHandler "github.com/m04kA/SMC-RentalService/internal/api/handlers/bans"
	confirmReservationHandler "github.com/m04kA/SMC-RentalService/internal/api/handlers/confirm_reservation"
	createReservationHandler "github.com/m04kA/SMC-RentalService/internal/api/handlers/create_reservation"
	deleteReservationHandler "github.com/m04kA/SMC-RentalService/internal/api/handlers/delete_reservation"
	getReservationHandler "github.com/m04kA/SMC-RentalService/internal/api/handlers/get_reservation"
	getReservationHistoryHandler "github.com/m04kA/SMC-RentalService/internal/api/handlers/get_reservation_history"
	getSettingsHandler "github.com/m04kA/SMC-RentalService/internal/api/handlers/get_settings"
	listReservationsHandler "github.com/m04kA/SMC-RentalService/internal/api/handlers/list_reservations"
	moveReservationHandler "github.com/m04kA/SMC-RentalService/internal/api/handlers/move_reservation"
	reconcileLinksHandler "github.com/m04kA/SMC-RentalService/internal/api/handlers/reconcile_links"
	updateReservationHandler "github.com/m04kA/SMC-RentalService/internal/api/handlers/update_reservation"
	updateSettingsHandler "github.com/m04kA/SMC-RentalService/internal/api/handlers/update_settings"
	"github.com/m04kA/SMC-RentalService/internal/api/middleware"
	"github.com/m04kA/SMC-RentalService/internal/config"
	"github.com/m04kA/SMC-RentalService/internal/domain"
	"github.com/m04kA/SMC-RentalService/internal/infra/cache"
	"github.com/m04kA/SMC-RentalService/internal/infra/events"
	auditRepo "github.com/m04kA/SMC-RentalService/internal/infra/storage/audit"
	fleetRepo "github.com/m04kA/SMC-RentalService/internal/infra/storage/fleet"
	reservationRepo "github.com/m04kA/SMC-RentalService/internal/infra/storage/reservation"
	settingsRepo "github.com/m04kA/SMC-RentalService/internal/infra/storage/settings"
	pricingClient "github.com/m04kA/SMC-RentalService/internal/integrations/pricing"
	linkageService "github.com/m04kA/SMC-RentalService/internal/service/linkage"
	reservationsService "github.com/m04kA/SMC-RentalService/internal/service/reservations"
	settingsService "github.com/m04kA/SMC-RentalService/internal/service/settings"
	confirmReservationUC "github.com/m04kA/SMC-RentalService/internal/usecase/confirm_reservation"
	createReservationUC "github.com/m04kA/SMC-RentalService/internal/usecase/create_reservation"
	deleteReservationUC "github.com/m04kA/SMC-RentalService/internal/usecase/delete_reservation"
	moveReservationUC "github.com/m04kA/SMC-RentalService/internal/usecase/move_reservation"
	updateReservationUC "github.com/m04kA/SMC-RentalService/internal/usecase/update_reservation"
	"github.com/m04kA/SMC-RentalService/pkg/dbmetrics"
	"github.com/m04kA/SMC-RentalService/pkg/keylock"
	"github.com/m04kA/SMC-RentalService/pkg/logger"
	"github.com/m04kA/SMC-RentalService/pkg/metrics"
	"github.com/m04kA/SMC-RentalService/pkg/txmanager"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load(config.DefaultPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-RentalService...")

	calendar, err := domain.NewCalendar(cfg.Booking.Timezone)
	if err != nil {
		log.Fatal("Invalid business timezone: %v", err)
	}

	// Инициализируем метрики (если включены); nil-коллектор безопасен
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	var wrappedDB *dbmetrics.DB
	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, stopMetricsCh)
		log.Info("Database metrics collection started")
	} else {
		wrappedDB = dbmetrics.Wrap(db, nil)
	}
	txMgr := txmanager.NewTransactionManager(wrappedDB, txmanager.WithMaxAttempts(cfg.Database.TxRetries))

	// Redis: сессии операторов, лимиты и баны abuse guard
	rootCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	redisClient, err := cache.NewClient(rootCtx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Fatal("Failed to connect to redis: %v", err)
	}
	defer redisClient.Close()
	log.Info("Successfully connected to redis (addr=%s)", cfg.Redis.Addr)

	sessions := cache.NewSessionStore(redisClient, cfg.Redis.KeyPrefix, time.Duration(cfg.Redis.SessionTTLMin)*time.Minute)
	guard := abuseguard.NewGuard(
		cfg.AbuseGuard.GuardConfig(),
		cache.NewCounter(redisClient, cfg.Redis.KeyPrefix),
		cache.NewBanStore(redisClient, cfg.Redis.KeyPrefix),
		metricsCollector,
		log,
	)

	// Канал уведомлений
	var writer events.MessageWriter
	if cfg.Kafka.Enabled {
		writer = events.NewWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		log.Info("Notifications go to kafka topic %s (brokers=%v)", cfg.Kafka.Topic, cfg.Kafka.Brokers)
	} else {
		writer = events.NewLogWriter(log)
		log.Warn("Kafka disabled, notifications are written to the log")
	}
	producer := events.NewProducer(writer, metricsCollector, log)
	defer producer.Close()

	// Внешняя функция цены
	pricing := pricingClient.NewClient(cfg.Pricing.URL, time.Duration(cfg.Pricing.Timeout)*time.Second, log)
	log.Info("Pricing client initialized (url=%s, timeout=%ds)", cfg.Pricing.URL, cfg.Pricing.Timeout)

	// Репозитории
	reservationRepository := reservationRepo.NewRepository(wrappedDB, calendar.Location())
	vehicleRepository := fleetRepo.NewRepository(wrappedDB)
	settingsRepository := settingsRepo.NewRepository(wrappedDB)
	auditRepository := auditRepo.NewRepository(wrappedDB)

	// Сервисы
	settingsSvc := settingsService.NewService(settingsRepository, cfg.Booking.AccountID, cfg.Booking.DefaultBufferHours, log)
	reservationsSvc := reservationsService.NewService(reservationRepository, settingsSvc, calendar, log)
	reconciler := linkageService.NewReconciler(reservationRepository, txMgr, metricsCollector, cfg.Booking.ReconcilerConfig(), log)
	locker := keylock.New()

	// Use cases
	createReservationUseCase := createReservationUC.NewUseCase(
		reservationRepository,
		vehicleRepository,
		pricing,
		reconciler,
		auditRepository,
		producer,
		guard,
		locker,
		metricsCollector,
		txMgr,
		calendar,
		log,
	)
	updateReservationUseCase := updateReservationUC.NewUseCase(
		reservationRepository,
		settingsSvc,
		pricing,
		reconciler,
		auditRepository,
		producer,
		locker,
		metricsCollector,
		txMgr,
		calendar,
		log,
	)
	confirmReservationUseCase := confirmReservationUC.NewUseCase(
		reservationRepository,
		settingsSvc,
		auditRepository,
		producer,
		locker,
		metricsCollector,
		txMgr,
		calendar,
		log,
	)
	moveReservationUseCase := moveReservationUC.NewUseCase(
		reservationRepository,
		vehicleRepository,
		reconciler,
		auditRepository,
		producer,
		locker,
		metricsCollector,
		txMgr,
		calendar,
		log,
	)
	deleteReservationUseCase := deleteReservationUC.NewUseCase(
		reservationRepository,
		reconciler,
		auditRepository,
		producer,
		locker,
		txMgr,
		calendar,
		log,
	)

	// Инициализируем handlers
	createReservation := createReservationHandler.NewHandler(createReservationUseCase, calendar, log)
	updateReservation := updateReservationHandler.NewHandler(updateReservationUseCase, calendar, log)
	confirmReservation := confirmReservationHandler.NewHandler(confirmReservationUseCase, calendar, log)
	moveReservation := moveReservationHandler.NewHandler(moveReservationUseCase, calendar, log)
	deleteReservation := deleteReservationHandler.NewHandler(deleteReservationUseCase, log)
	getReservation := getReservationHandler.NewHandler(reservationsSvc, log)
	getReservationHistory := getReservationHistoryHandler.NewHandler(auditRepository, log)
	listReservations := listReservationsHandler.NewHandler(reservationsSvc, calendar, log)
	getSettings := getSettingsHandler.NewHandler(settingsSvc, log)
	updateSettings := updateSettingsHandler.NewHandler(settingsSvc, log)
	reconcileLinks := reconcileLinksHandler.NewHandler(reconciler, log)
	bans := bansHandler.NewHandler(guard, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (заявки клиентов сайта, под abuse guard)
	// ============================================================

	public := api.PathPrefix("/public").Subrouter()
	public.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.Server.CORSOrigins,
		AllowedMethods: []string{http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization", middleware.FingerprintHeader},
		ExposedHeaders: []string{"Retry-After"},
		MaxAge:         300,
	}))
	public.Use(middleware.ClientMeta(cfg.Server.TrustProxy))
	public.Use(middleware.OptionalAuth(sessions, log))
	public.HandleFunc("/reservations", createReservation.Handle).Methods(http.MethodPost, http.MethodOptions)

	// ============================================================
	// PROTECTED ROUTES (сессия оператора, Authorization: Bearer)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.ClientMeta(cfg.Server.TrustProxy))
	protected.Use(middleware.Auth(sessions, log))

	// --- Бронирования ---
	protected.HandleFunc("/reservations", createReservation.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/reservations/{reservationId}", getReservation.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/reservations/{reservationId}", updateReservation.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/reservations/{reservationId}", deleteReservation.Handle).Methods(http.MethodDelete)
	protected.HandleFunc("/reservations/{reservationId}/confirm", confirmReservation.HandleConfirm).Methods(http.MethodPost)
	protected.HandleFunc("/reservations/{reservationId}/unconfirm", confirmReservation.HandleUnconfirm).Methods(http.MethodPost)
	protected.HandleFunc("/reservations/{reservationId}/move", moveReservation.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/reservations/{reservationId}/history", getReservationHistory.Handle).Methods(http.MethodGet)

	// --- Автомобили ---
	protected.HandleFunc("/vehicles/{resourceId}/reservations", listReservations.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/vehicles/{resourceId}/links/reconcile", reconcileLinks.Handle).Methods(http.MethodPost)

	// --- Настройки аккаунта ---
	protected.HandleFunc("/settings", getSettings.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/settings", updateSettings.Handle).Methods(http.MethodPut)

	// --- Баны (суперадминистратор) ---
	protected.HandleFunc("/bans/{subject}", bans.HandleGet).Methods(http.MethodGet)
	protected.HandleFunc("/bans/{subject}", bans.HandlePut).Methods(http.MethodPut)
	protected.HandleFunc("/bans/{subject}", bans.HandleDelete).Methods(http.MethodDelete)

	// Фоновая сверка ссылок конфликтов
	go reconciler.Run(rootCtx)
	log.Info("Link reconciler started")

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	stopWorkers()

	// Останавливаем сбор метрик connection pool
	if cfg.Metrics.Enabled {
		close(stopMetricsCh)
		log.Info("Metrics collection stopped")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}
