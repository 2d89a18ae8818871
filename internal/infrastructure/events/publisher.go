// Package events publishes rate-shop summaries to the message broker.
package events

import (
	"context"
	"fmt"

	ratingUsecase "carrier-rate-engine/internal/usecase/rating"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Broker is the slice of the MQTT client the publisher needs.
type Broker interface {
	Publish(ctx context.Context, topic string, qos byte, retained bool, payload []byte) error
	IsConnected() bool
}

type MQTTPublisher struct {
	broker Broker
	topic  string
	qos    byte
	logger *zap.Logger
}

func NewMQTTPublisher(broker Broker, topic string, qos byte, log *zap.Logger) *MQTTPublisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &MQTTPublisher{broker: broker, topic: topic, qos: qos, logger: log}
}

func (p *MQTTPublisher) PublishQuoted(ctx context.Context, event ratingUsecase.QuoteEvent) error {
	if !p.broker.IsConnected() {
		return fmt.Errorf("broker not connected")
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode quote event: %w", err)
	}

	if err := p.broker.Publish(ctx, p.topic, p.qos, false, payload); err != nil {
		return err
	}

	p.logger.Debug("Quote event published",
		zap.String("event", "quote_event_published"),
		zap.String("topic", p.topic),
		zap.String("quote_id", event.QuoteID),
	)
	return nil
}
