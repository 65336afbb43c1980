package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/systemhub/member-api/internal/auth"
	"github.com/systemhub/member-api/internal/cache"
	"github.com/systemhub/member-api/internal/config"
	"github.com/systemhub/member-api/internal/db"
	"github.com/systemhub/member-api/internal/handler"
	"github.com/systemhub/member-api/internal/handler/server"
	"github.com/systemhub/member-api/internal/logger"
	"github.com/systemhub/member-api/internal/repository/postgres"
	"github.com/systemhub/member-api/internal/service"
)

func main() {
	cfg := config.MustLoad()

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx := context.Background()

	database := db.MustLoad(ctx, cfg.Database)
	log.Info("connected to database", zap.String("host", cfg.Database.Host), zap.String("name", cfg.Database.DBName))
	defer database.Close()

	if cfg.Database.MigrateOnStart {
		if err := db.Migrate(ctx, database, log); err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	var accounts cache.AccountCache = cache.Noop{}
	if cfg.Redis.Addr != "" {
		client, err := cache.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer client.Close()
		accounts = cache.NewRedisAccountCache(client, cfg.Redis.AccountCacheTTL)
		log.Info("account cache enabled", zap.String("addr", cfg.Redis.Addr), zap.Duration("ttl", cfg.Redis.AccountCacheTTL))
	}

	systemRepo := postgres.NewSystemRepository(database)
	memberRepo := postgres.NewMemberRepository(database)
	transactor := postgres.NewTransactor(database)

	systemService := service.NewSystemService(systemRepo, accounts, log)
	memberService := service.NewMemberService(memberRepo, transactor, service.NewLimitEnforcer(cfg.Limits.MaxMemberCount), log)

	h := handler.NewHandler(systemService, memberService, auth.NewAuthenticator(cfg.Auth.JWTSecret), log)
	srv := server.NewServer(h, cfg.HTTP.Addr, log)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("server forced to shutdown", zap.Error(err))
	}
}
