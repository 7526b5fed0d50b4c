package kafka

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/deliverytech/internal/domain"
)

func TestProducer_Publish(t *testing.T) {
	mockProducer := mocks.NewSyncProducer(t, nil)
	producer := newProducer(mockProducer, log.WithField("component", "kafka-producer-test"))

	mockProducer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var event OrderEvent
		if err := json.Unmarshal(val, &event); err != nil {
			return err
		}
		if event.OrderID != 42 || event.EventType != EventTypeOrderCreated {
			return errors.New("unexpected event payload")
		}
		return nil
	})

	payload, err := json.Marshal(NewOrderEvent(EventTypeOrderCreated, domain.Order{
		ID:         42,
		CustomerID: 7,
		Status:     domain.OrderStatusCreated,
		Total:      decimal.RequireFromString("27.50"),
	}))
	if err != nil {
		t.Fatal(err)
	}

	if err := producer.Publish(TopicOrderEvents, "42", payload, map[string]string{HeaderEventType: "OrderCreated"}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := producer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestProducer_Publish_Error(t *testing.T) {
	mockProducer := mocks.NewSyncProducer(t, nil)
	producer := newProducer(mockProducer, nil)

	mockProducer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	err := producer.Publish(TopicOrderEvents, "42", []byte(`{}`), nil)
	if !errors.Is(err, sarama.ErrOutOfBrokers) {
		t.Fatalf("expected ErrOutOfBrokers, got %v", err)
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestRecordHeaders_SortedByKey(t *testing.T) {
	if recordHeaders(nil) != nil {
		t.Fatal("empty headers must produce nil")
	}

	headers := recordHeaders(map[string]string{
		HeaderOriginalTopic: TopicOrderEvents,
		HeaderEventType:     "OrderCanceled",
		HeaderAggregateType: "order",
	})
	want := []string{HeaderAggregateType, HeaderEventType, HeaderOriginalTopic}
	if len(headers) != len(want) {
		t.Fatalf("expected %d headers, got %d", len(want), len(headers))
	}
	for i, key := range want {
		if string(headers[i].Key) != key {
			t.Errorf("header %d: expected %s, got %s", i, key, headers[i].Key)
		}
	}
	if string(headers[1].Value) != "OrderCanceled" {
		t.Errorf("unexpected event type header value %q", headers[1].Value)
	}
}

func TestNewSaramaConfig(t *testing.T) {
	cfg := newSaramaConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("config must be valid: %v", err)
	}
	if !cfg.Producer.Idempotent || cfg.Producer.RequiredAcks != sarama.WaitForAll {
		t.Error("producer must be idempotent and wait for all replicas")
	}
	if cfg.ClientID != clientID {
		t.Errorf("unexpected client id %q", cfg.ClientID)
	}
}

func TestNewOrderEvent(t *testing.T) {
	reason := "cliente desistiu"
	order := domain.Order{
		ID:                 10,
		CustomerID:         3,
		Status:             domain.OrderStatusCanceled,
		Total:              decimal.RequireFromString("79.70"),
		CancellationReason: &reason,
		Version:            2,
	}

	event := NewOrderEvent(EventTypeOrderCanceled, order)

	if event.EventType != EventTypeOrderCanceled {
		t.Errorf("expected event type %s, got %s", EventTypeOrderCanceled, event.EventType)
	}
	if event.OrderID != 10 || event.CustomerID != 3 {
		t.Errorf("unexpected ids: %+v", event)
	}
	if event.Status != "CANCELADO" || event.Reason != reason {
		t.Errorf("unexpected status or reason: %+v", event)
	}
	if !event.Total.Equal(order.Total) {
		t.Errorf("expected total %s, got %s", order.Total, event.Total)
	}
	if event.Timestamp.IsZero() || time.Since(event.Timestamp) > time.Second {
		t.Error("timestamp should be close to current time")
	}

	data, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if raw["total"] != "79.7" {
		t.Errorf("total must be encoded as exact decimal string, got %v", raw["total"])
	}
}

func TestEventTypeFor(t *testing.T) {
	cases := map[string]EventType{
		domain.TimelineOrderCreated:       EventTypeOrderCreated,
		domain.TimelineOrderStatusChanged: EventTypeOrderStatusChanged,
		domain.TimelineOrderCanceled:      EventTypeOrderCanceled,
		domain.TimelineOrderDeleted:       EventTypeOrderDeleted,
	}
	for timelineType, want := range cases {
		got, ok := EventTypeFor(timelineType)
		if !ok || got != want {
			t.Errorf("EventTypeFor(%s) = %s, %v; want %s", timelineType, got, ok, want)
		}
	}
	if _, ok := EventTypeFor("OrderPaid"); ok {
		t.Error("unknown timeline type must not map")
	}
}
