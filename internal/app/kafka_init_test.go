package app

import (
	"testing"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/deliverytech/internal/service/outbox"
)

func TestInitKafkaProducer_EmptyBrokers(t *testing.T) {
	if producer := initKafkaProducer(nil, log.WithField("test", "kafka")); producer != nil {
		t.Error("expected nil producer for empty brokers")
	}
}

func TestInitKafkaProducer_UnreachableBrokers(t *testing.T) {
	producer := initKafkaProducer([]string{"127.0.0.1:1"}, log.WithField("test", "kafka"))
	if producer != nil {
		closeKafka(producer, log.WithField("test", "kafka"))
		t.Fatal("expected nil producer for unreachable broker")
	}
}

func TestCloseKafka_NilProducer(_ *testing.T) {
	closeKafka(nil, log.WithField("test", "kafka"))
}

func TestOutboxPublishers_WithoutKafka(t *testing.T) {
	publisher, dlq := outboxPublishers(nil, "", log.WithField("test", "kafka"))

	if _, ok := publisher.(*outbox.LogPublisher); !ok {
		t.Fatalf("expected log publisher without kafka, got %T", publisher)
	}
	if dlq != nil {
		t.Fatalf("expected no dlq without kafka, got %T", dlq)
	}
}
