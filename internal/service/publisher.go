// Package service hosts background workers and broker publishing for
// the scheduling API.
package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/cegyard/dock-scheduler/internal/queue"
)

// PublishCargaChanged publishes a CargaChangedEvent to the
// carga.changed queue. Errors are logged and returned so callers can
// ignore broker outages without interrupting the request flow.
// Messages are marked persistent.
func PublishCargaChanged(ctx context.Context, log *logrus.Logger, event queue.CargaChangedEvent) error {
	if event.EventID == "" {
		event.EventID = uuid.NewString()
	}
	conn, err := amqp.Dial(queue.BrokerURL())
	if err != nil {
		log.WithError(err).Warn("rabbitmq: dial failed")
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.WithError(err).Warn("rabbitmq: channel open failed")
		return err
	}
	defer func() { _ = ch.Close() }()

	// Idempotent declare. Durable so events survive broker restarts.
	if _, err := ch.QueueDeclare(queue.CargaChangedQueue, true, false, false, false, nil); err != nil {
		log.WithError(err).Warn("rabbitmq: queue declare failed")
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		log.WithError(err).Warn("rabbitmq: marshal event failed")
		return err
	}

	pub := amqp.Publishing{
		MessageId:    event.EventID,
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx, "", queue.CargaChangedQueue, false, false, pub); err != nil {
		log.WithError(err).Warn("rabbitmq: publish failed")
		return err
	}
	return nil
}
