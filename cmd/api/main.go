package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"shopoholic/config"
	"shopoholic/internal/api"
	"shopoholic/internal/auth"
	"shopoholic/internal/logger"
	"shopoholic/internal/repository"
	"shopoholic/pkg/database"
)

func main() {
	// Загружаем .env файл
	envErr := godotenv.Load()

	// Загружаем конфигурацию
	cfg, err := config.Load()
	if err != nil {
		fatalLog := zerolog.New(os.Stderr)
		fatalLog.Fatal().Err(err).Msg("ошибка конфигурации")
	}

	log := logger.New(cfg.Log).With().Str("service", "api").Logger()
	if envErr != nil {
		log.Debug().Msg("файл .env не найден")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("API остановлен с ошибкой")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	// Подключаемся к БД
	db, err := database.Connect(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer database.Close(db, log)

	if err := database.Migrate(ctx, db); err != nil {
		return err
	}

	hash, err := auth.HashPassword(cfg.Admin.Password)
	if err != nil {
		return err
	}
	created, err := database.SeedAdmin(ctx, db, cfg.Admin, hash)
	if err != nil {
		return err
	}
	if created {
		log.Info().Str("email", cfg.Admin.Email).Msg("создан главный администратор")
	}

	srv := &api.Server{
		Users:    repository.NewUsers(db),
		Products: repository.NewProducts(db),
		Carts:    repository.NewCarts(db),
		Orders:   repository.NewOrders(db),
		Tokens:   auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Expiration),
		Log:      log,
	}

	// Настраиваем маршруты
	r := mux.NewRouter()
	r.Use(logger.Middleware(log))
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if err := db.PingContext(req.Context()); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}).Methods(http.MethodGet)

	r.PathPrefix("/api/").Handler(http.StripPrefix("/api", srv.Handler()))

	httpServer := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// Запуск сервера
		log.Info().Str("addr", httpServer.Addr).Str("env", cfg.Server.Env).Msg("API запущен")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info().Msg("остановка API")
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
