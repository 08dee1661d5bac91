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
	"github.com/MikeMC777/mavunohub/internal/events"
	"github.com/MikeMC777/mavunohub/internal/httpx"
	"github.com/MikeMC777/mavunohub/internal/kafka"
	"github.com/MikeMC777/mavunohub/internal/logging"
	"github.com/MikeMC777/mavunohub/internal/metrics"
	ord "github.com/MikeMC777/mavunohub/internal/order"
	"github.com/MikeMC777/mavunohub/internal/payment"
	"github.com/MikeMC777/mavunohub/internal/postgres"
	"github.com/MikeMC777/mavunohub/internal/telemetry"
	"github.com/MikeMC777/mavunohub/internal/user"
	pb "github.com/MikeMC777/mavunohub/internal/userpb"
)

func main() {
	cfg := config.Load("order-service")
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

	var cache ord.Cache = ord.NopCache{}
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			slog.Warn("redis unavailable, order cache disabled", "addr", cfg.RedisAddr, "err", err)
		} else {
			cache = ord.NewRedisCache(rdb)
		}
	}

	var pub events.Publisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		kp := kafka.NewPublisher(cfg.KafkaBrokers, cfg.KafkaOrdersTopic)
		defer kp.Close()
		pub = kp
	}

	conn, err := user.Dial(cfg.UserSvcAddr)
	if err != nil {
		slog.Error("user-service dial", "addr", cfg.UserSvcAddr, "err", err)
		os.Exit(1)
	}
	defer conn.Close()
	resolver := user.NewGRPCResolver(pb.NewUserServiceClient(conn))

	orders := ord.NewService(ord.NewPGRepo(pool), cache, pub, cfg.ServiceName)
	payments := payment.NewService(payment.NewPGRepo(pool), pub, cfg.ServiceName)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewServerMetrics(cfg.ServiceName, reg)

	r := gin.New()
	r.Use(gin.Recovery(), httpx.RequestID(), httpx.Logger(), m.Middleware())
	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/metrics", gin.WrapH(m.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.InstanceName(docs.OrdersInstance)))
	registerRoutes(r, orders, payments, resolver)

	srv := &http.Server{
		Addr:              cfg.OrderSvcAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		slog.Info("order-service listening", "addr", cfg.OrderSvcAddr)
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
