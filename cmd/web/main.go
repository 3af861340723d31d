package main

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app/server"
	hzconfig "github.com/cloudwego/hertz/pkg/common/config"
	"github.com/cloudwego/hertz/pkg/common/hlog"

	"account-service/pkg/common/config"
	"account-service/pkg/common/database"
	"account-service/pkg/core/auth"
	dao "account-service/pkg/core/user/repository/dao/impl"
	"account-service/pkg/core/user/service"
	"account-service/pkg/web/handler"
	"account-service/pkg/web/middleware"
	"account-service/pkg/web/router"
)

func main() {
	cfg := config.Load()
	hlog.SetLevel(cfg.HlogLevel())

	db, err := cfg.InitDB()
	if err != nil {
		hlog.Fatalf("Failed to initialize database: %v", err)
	}
	if err := database.Migrate(context.Background(), db, cfg.Database.Driver); err != nil {
		hlog.Fatalf("Failed to migrate database: %v", err)
	}

	tokens, err := auth.NewTokenService(
		cfg.Middleware.JWT.Secret,
		cfg.Middleware.JWT.SigningMethod,
		cfg.Middleware.JWT.ExpireDuration,
	)
	if err != nil {
		hlog.Fatalf("Failed to initialize token service: %v", err)
	}
	if cfg.IsProd() && cfg.Middleware.JWT.Secret == config.Default().Middleware.JWT.Secret {
		hlog.Warn("SECRET_KEY is not set, tokens are signed with the development secret")
	}

	repo := dao.NewGormUserRepository(db)
	users := service.NewUserService(repo, auth.NewPasswordHasher(cfg.BcryptCost), tokens)

	deps := router.Dependencies{
		Users:  users,
		Tokens: tokens,
		HealthProbes: []handler.HealthProbe{
			{Name: "database", IsCore: true, Check: repo.Ping},
		},
	}
	if cfg.Middleware.RateLimit.Rate > 0 {
		deps.RateLimiter = middleware.NewTokenBucket(cfg.Middleware.RateLimit.Rate, cfg.Middleware.RateLimit.Interval)
	}

	opts := []hzconfig.Option{
		server.WithHostPorts(cfg.Server.Address),
		server.WithHandleMethodNotAllowed(true),
	}
	if cfg.Middleware.Security.MaxBodySize > 0 {
		opts = append(opts, server.WithMaxRequestBodySize(int(cfg.Middleware.Security.MaxBodySize)))
	}
	h := server.Default(opts...)

	router.RegisterAPIs(h, cfg, deps)

	h.OnShutdown = append(h.OnShutdown, func(ctx context.Context) {
		if deps.RateLimiter != nil {
			deps.RateLimiter.Close()
		}
		sqlDB, err := db.DB()
		if err != nil {
			hlog.CtxErrorf(ctx, "Failed to get database instance: %v", err)
			return
		}
		if err := sqlDB.Close(); err != nil {
			hlog.CtxErrorf(ctx, "Failed to close database: %v", err)
			return
		}
		hlog.CtxInfof(ctx, "Database connection closed")
	})

	hlog.Infof("server running on %s (env=%s, driver=%s)", cfg.Server.Address, cfg.Env, cfg.Database.Driver)
	h.Spin()
}
