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

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	cancelBookingHandler "github.com/m04kA/HPS-BookingService/internal/api/handlers/cancel_booking"
	createBookingHandler "github.com/m04kA/HPS-BookingService/internal/api/handlers/create_booking"
	createTemplateHandler "github.com/m04kA/HPS-BookingService/internal/api/handlers/create_template"
	deleteTemplateHandler "github.com/m04kA/HPS-BookingService/internal/api/handlers/delete_template"
	getAvailableSlotsHandler "github.com/m04kA/HPS-BookingService/internal/api/handlers/get_available_slots"
	getBookingHandler "github.com/m04kA/HPS-BookingService/internal/api/handlers/get_booking"
	getCityBookingsHandler "github.com/m04kA/HPS-BookingService/internal/api/handlers/get_city_bookings"
	getCityTemplatesHandler "github.com/m04kA/HPS-BookingService/internal/api/handlers/get_city_templates"
	getUserBookingsHandler "github.com/m04kA/HPS-BookingService/internal/api/handlers/get_user_bookings"
	updateBookingCommentHandler "github.com/m04kA/HPS-BookingService/internal/api/handlers/update_booking_comment"
	updateBookingStatusHandler "github.com/m04kA/HPS-BookingService/internal/api/handlers/update_booking_status"
	updateTemplateHandler "github.com/m04kA/HPS-BookingService/internal/api/handlers/update_template"
	"github.com/m04kA/HPS-BookingService/internal/api/middleware"
	"github.com/m04kA/HPS-BookingService/internal/config"
	bookingRepo "github.com/m04kA/HPS-BookingService/internal/infra/storage/booking"
	healthPostRepo "github.com/m04kA/HPS-BookingService/internal/infra/storage/healthpost"
	templateRepo "github.com/m04kA/HPS-BookingService/internal/infra/storage/template"
	bookingsService "github.com/m04kA/HPS-BookingService/internal/service/bookings"
	templatesService "github.com/m04kA/HPS-BookingService/internal/service/templates"
	createBookingUC "github.com/m04kA/HPS-BookingService/internal/usecase/create_booking"
	getAvailableSlotsUC "github.com/m04kA/HPS-BookingService/internal/usecase/get_available_slots"
	"github.com/m04kA/HPS-BookingService/pkg/dbmetrics"
	"github.com/m04kA/HPS-BookingService/pkg/logger"
	"github.com/m04kA/HPS-BookingService/pkg/metrics"
	"github.com/m04kA/HPS-BookingService/pkg/simpletxmanager"
	"github.com/m04kA/HPS-BookingService/pkg/txmanager"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
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

	log.Info("Starting HPS-BookingService...")
	log.Info("Configuration loaded from config.toml")

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	var wrappedDB *dbmetrics.DB
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

	// Инициализируем репозитории (с метриками или без)
	var (
		bookingRepository    *bookingRepo.Repository
		templateRepository   *templateRepo.Repository
		healthPostRepository *healthPostRepo.Repository
	)

	// Интерфейс менеджера транзакций для use cases
	type TxManager interface {
		DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	}
	var txMgr TxManager

	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		log.Info("Database metrics collection started")

		bookingRepository = bookingRepo.NewRepository(wrappedDB)
		templateRepository = templateRepo.NewRepository(wrappedDB)
		healthPostRepository = healthPostRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB)
	} else {
		bookingRepository = bookingRepo.NewRepository(db)
		templateRepository = templateRepo.NewRepository(db)
		healthPostRepository = healthPostRepo.NewRepository(db)
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	// Инициализируем сервисы
	bookingSvc := bookingsService.NewService(bookingRepository, log)
	templateSvc := templatesService.NewService(templateRepository, healthPostRepository, log)

	// Инициализируем use cases
	timeProvider := &createBookingUC.RealTimeProvider{}

	createBookingUseCase := createBookingUC.NewUseCase(
		templateRepository,
		bookingRepository,
		healthPostRepository,
		txMgr,
		timeProvider,
		log,
	)

	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		templateRepository,
		bookingRepository,
		&getAvailableSlotsUC.RealTimeProvider{},
		log,
	)

	// Инициализируем handlers
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	cancelBooking := cancelBookingHandler.NewHandler(bookingSvc, log)
	updateBookingStatus := updateBookingStatusHandler.NewHandler(bookingSvc, log)
	updateBookingComment := updateBookingCommentHandler.NewHandler(bookingSvc, log)
	getUserBookings := getUserBookingsHandler.NewHandler(bookingSvc, log)
	getCityBookings := getCityBookingsHandler.NewHandler(bookingSvc, log)
	createTemplate := createTemplateHandler.NewHandler(templateSvc, log)
	updateTemplate := updateTemplateHandler.NewHandler(templateSvc, log)
	deleteTemplate := deleteTemplateHandler.NewHandler(templateSvc, log)
	getCityTemplates := getCityTemplatesHandler.NewHandler(templateSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector, cfg.Metrics.ServiceName))
		log.Info("HTTP metrics middleware enabled")
	}

	// Metrics endpoint (публичный, без аутентификации)
	if cfg.Metrics.Enabled {
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Доступные слоты поста/услуги на дату
	api.HandleFunc("/health-posts/{healthPostId}/services/{serviceId}/available-slots",
		getAvailableSlots.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Бронирования ---
	// Создание бронирования
	protected.HandleFunc("/bookings", createBooking.Handle).Methods(http.MethodPost)

	// Получение бронирования по ID
	protected.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)

	// Отмена бронирования
	protected.HandleFunc("/bookings/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPatch)

	// Изменение статуса бронирования (администратор)
	protected.HandleFunc("/bookings/{bookingId}/status", updateBookingStatus.Handle).Methods(http.MethodPatch)

	// Изменение комментария персонала (администратор)
	protected.HandleFunc("/bookings/{bookingId}/comment", updateBookingComment.Handle).Methods(http.MethodPut)

	// История бронирований пользователя
	protected.HandleFunc("/users/{userId}/bookings", getUserBookings.Handle).Methods(http.MethodGet)

	// --- Администрирование города ---
	// Постраничный список бронирований города
	protected.HandleFunc("/cities/{cityId}/bookings", getCityBookings.Handle).Methods(http.MethodGet)

	// Шаблоны расписания города
	protected.HandleFunc("/cities/{cityId}/templates", getCityTemplates.Handle).Methods(http.MethodGet)

	// --- Шаблоны расписания ---
	protected.HandleFunc("/templates", createTemplate.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/templates/{templateId}", updateTemplate.Handle).Methods(http.MethodPut)
	protected.HandleFunc("/templates/{templateId}", deleteTemplate.Handle).Methods(http.MethodDelete)

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
