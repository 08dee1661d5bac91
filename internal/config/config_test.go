package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("SERVICE_NAME", "")

	cfg := Load("order-service")

	assert.Equal(t, "order-service", cfg.ServiceName)
	assert.Equal(t, ":8082", cfg.OrderSvcAddr)
	assert.Equal(t, "mavuno.orders", cfg.KafkaOrdersTopic)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Empty(t, cfg.RedisAddr)
}

func TestLoad_KafkaBrokersCSV(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", " kafka-1:9092, ,kafka-2:9092 ")

	cfg := Load("order-service")

	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
}
