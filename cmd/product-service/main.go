package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/MikeMC777/mavunohub/docs"
	"github.com/MikeMC777/mavunohub/internal/config"
	"github.com/MikeMC777/mavunohub/internal/httpx"
	"github.com/MikeMC777/mavunohub/internal/logging"
	"github.com/MikeMC777/mavunohub/internal/metrics"
	"github.com/MikeMC777/mavunohub/internal/postgres"
	prod "github.com/MikeMC777/mavunohub/internal/product"
	"github.com/MikeMC777/mavunohub/internal/telemetry"
	"github.com/MikeMC777/mavunohub/internal/user"
	pb "github.com/MikeMC777/mavunohub/internal/userpb"
)

func main() {
	cfg := config.Load("product-service")
	logging.Init(cfg.ServiceName, cfg.LogLevel)
	cfg.Log()
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := telemetry.SetupTracer(ctx, cfg.ServiceName, cfg.OTLPEndpoint)
	if err != nil {
		slog.Error("tracer setup", "err", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownTracer(context.Background()) }()

	pool, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		slog.Error("postgres connect", "err", err)
		os.Exit(1)
	}
	defer pool.Close()
	if err := postgres.Migrate(ctx, pool); err != nil {
		slog.Error("postgres migrate", "err", err)
		os.Exit(1)
	}

	var catalog prod.Versioner = prod.NopVersion{}
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			slog.Warn("redis unavailable, catalog version disabled", "addr", cfg.RedisAddr, "err", err)
		} else {
			catalog = prod.NewRedisVersion(rdb)
		}
	}

	conn, err := user.Dial(cfg.UserSvcAddr)
	if err != nil {
		slog.Error("user-service dial", "addr", cfg.UserSvcAddr, "err", err)
		os.Exit(1)
	}
	defer conn.Close()
	resolver := user.NewGRPCResolver(pb.NewUserServiceClient(conn))

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewServerMetrics(cfg.ServiceName, reg)

	r := gin.New()
	r.Use(gin.Recovery(), httpx.RequestID(), httpx.Logger(), m.Middleware())
	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/metrics", gin.WrapH(m.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.InstanceName(docs.ProductsInstance)))
	registerRoutes(r, prod.NewPGRepo(pool), catalog, resolver)

	srv := &http.Server{
		Addr:              cfg.ProductSvcAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		slog.Info("product-service listening", "addr", cfg.ProductSvcAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http shutdown", "err", err)
	}
}
