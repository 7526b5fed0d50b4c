package app

import (
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/deliverytech/internal/domain"
	"github.com/vladislavdragonenkov/deliverytech/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/deliverytech/internal/service/outbox"
)

// initKafkaProducer создаёт producer, если брокеры заданы.
// Ошибка подключения не фатальна: события остаются в outbox и уходят в лог.
func initKafkaProducer(brokers []string, logger *log.Entry) *kafka.Producer {
	if len(brokers) == 0 {
		return nil
	}

	producer, err := kafka.NewProducer(brokers, logger.WithField("component", "kafka-producer"))
	if err != nil {
		logger.WithError(err).Warn("failed to create kafka producer, continuing without kafka")
		return nil
	}

	logger.WithField("brokers", brokers).Info("kafka producer initialized")
	return producer
}

// outboxPublishers выбирает, куда outbox worker отправляет события.
func outboxPublishers(producer *kafka.Producer, topic string, logger *log.Entry) (publisher, dlq domain.OutboxPublisher) {
	if producer == nil {
		return outbox.NewLogPublisher(logger.WithField("component", "outbox-log")), nil
	}
	if topic == "" {
		topic = kafka.TopicOrderEvents
	}
	return kafka.NewOutboxPublisher(producer, topic), kafka.NewDLQPublisher(producer, topic)
}

// closeKafka закрывает producer, если он был создан.
func closeKafka(producer *kafka.Producer, logger *log.Entry) {
	if producer == nil {
		return
	}

	if err := producer.Close(); err != nil {
		logger.WithError(err).Warn("failed to close kafka producer")
	} else {
		logger.Info("kafka producer closed")
	}
}
