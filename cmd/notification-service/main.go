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

	"github.com/MikeMC777/mavunohub/internal/config"
	"github.com/MikeMC777/mavunohub/internal/events"
	"github.com/MikeMC777/mavunohub/internal/httpx"
	"github.com/MikeMC777/mavunohub/internal/kafka"
	"github.com/MikeMC777/mavunohub/internal/logging"
	"github.com/MikeMC777/mavunohub/internal/metrics"
	"github.com/MikeMC777/mavunohub/internal/notification"
	"github.com/MikeMC777/mavunohub/internal/postgres"
	"github.com/MikeMC777/mavunohub/internal/telemetry"
)

func main() {
	cfg := config.Load("notification-service")
	logging.Init(cfg.ServiceName, cfg.LogLevel)
	cfg.Log()
	gin.SetMode(cfg.GinMode)

	if len(cfg.KafkaBrokers) == 0 {
		slog.Error("KAFKA_BROKERS is required")
		os.Exit(1)
	}

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

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewServerMetrics(cfg.ServiceName, reg)
	consumed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mavuno",
		Subsystem: "notification_service",
		Name:      "events_consumed_total",
		Help:      "Events consumed from the orders topic.",
	}, []string{"event_type", "result"})
	reg.MustRegister(consumed)

	r := gin.New()
	r.Use(gin.Recovery(), httpx.RequestID(), m.Middleware())
	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/metrics", gin.WrapH(m.Handler()))
	srv := &http.Server{Addr: cfg.NotificationSvcAddr, Handler: r, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		slog.Info("notification-service listening", "addr", cfg.NotificationSvcAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server", "err", err)
			stop()
		}
	}()

	handle := notification.Handler(notification.NewPGRepo(pool))
	consumer := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaOrdersTopic, cfg.KafkaGroupID)
	defer consumer.Close()

	slog.Info("consuming", "topic", cfg.KafkaOrdersTopic, "group", cfg.KafkaGroupID)
	err = consumer.Run(ctx, func(ctx context.Context, ev events.Envelope) error {
		ctx = logging.WithRequestID(ctx, ev.RequestID)
		if err := handle(ctx, ev); err != nil {
			consumed.WithLabelValues(ev.EventType, "error").Inc()
			return err
		}
		consumed.WithLabelValues(ev.EventType, "ok").Inc()
		return nil
	})
	if err != nil {
		slog.Error("consumer stopped", "err", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
