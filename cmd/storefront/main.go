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
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"shopoholic/config"
	"shopoholic/internal/client"
	"shopoholic/internal/guard"
	"shopoholic/internal/handler"
	"shopoholic/internal/logger"
	"shopoholic/internal/session"
	"shopoholic/internal/storage"
)

func main() {
	// Загружаем .env файл
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fatalLog := zerolog.New(os.Stderr)
		fatalLog.Fatal().Err(err).Msg("ошибка конфигурации")
	}

	log := logger.New(cfg.Log).With().Str("service", "storefront").Logger()
	if envErr != nil {
		log.Debug().Msg("файл .env не найден")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("витрина остановлена с ошибкой")
	}
}

// sessionBackend - где лежат сессии браузеров: в памяти процесса или в Redis,
// общем для нескольких экземпляров витрины.
func sessionBackend(ctx context.Context, cfg *config.Config, log zerolog.Logger) (storage.Backend, func(), error) {
	if cfg.Storefront.Storage != config.StorageRedis {
		log.Info().Msg("сессии хранятся в памяти процесса")
		return storage.NewMemory(), func() {}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, err
	}

	log.Info().Str("addr", cfg.Redis.Addr).Msg("сессии хранятся в Redis")
	closeFn := func() {
		if err := rdb.Close(); err != nil {
			log.Warn().Err(err).Msg("ошибка при закрытии Redis")
		}
	}
	return storage.NewRedis(rdb, cfg.Redis.Prefix, cfg.Redis.TTL, log), closeFn, nil
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	backend, closeBackend, err := sessionBackend(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeBackend()

	manager := session.NewManager(backend, log)
	defer manager.Close()

	resolver := &session.Resolver{
		Identity: session.NewBrowserIdentity(
			[]byte(cfg.Storefront.CookieHashKey),
			[]byte(cfg.Storefront.CookieBlockKey),
			cfg.Storefront.SecureCookies,
		),
		Manager: manager,
	}

	api := client.New(cfg.Storefront.BackendURL+"/api", &http.Client{Timeout: cfg.Storefront.BackendTimeout}, log)
	policy := guard.DefaultPolicy()

	// Создаем обработчик
	h, err := handler.NewHandler(api, policy, resolver, log)
	if err != nil {
		return err
	}

	g := &guard.Guard{
		Policy:   policy,
		Table:    handler.Requirements(),
		Resolver: resolver,
		Loading:  http.HandlerFunc(h.Loading),
		Log:      log,
	}

	// Настраиваем маршруты
	r := mux.NewRouter()
	r.Use(logger.Middleware(log))
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	h.Routes(r, g.Middleware)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Storefront.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg, egctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		// Запуск сервера
		log.Info().
			Str("addr", httpServer.Addr).
			Str("backend", cfg.Storefront.BackendURL).
			Msg("витрина запущена")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info().Int("browsers", manager.Len()).Msg("остановка витрины")
		return httpServer.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}
