package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// decisionQueue is the durable queue admission decisions are published to.
const decisionQueue = "gateway.admission.decisions"

// AMQPSink publishes admission decisions as JSON messages to RabbitMQ.
type AMQPSink struct {
	conn *amqp.Connection
	ch   *amqp.Channel
	log  *zap.Logger

	// amqp channels are not safe for concurrent publishes
	mu sync.Mutex
}

// NewAMQPSink connects to RabbitMQ and declares the decision queue.
func NewAMQPSink(amqpURL string, log *zap.Logger) (*AMQPSink, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	_, err = ch.QueueDeclare(
		decisionQueue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	return &AMQPSink{conn: conn, ch: ch, log: log}, nil
}

// Emit publishes a decision. Failures are logged and swallowed.
func (s *AMQPSink) Emit(ctx context.Context, d Decision) {
	body, err := json.Marshal(d)
	if err != nil {
		s.log.Warn("failed_to_marshal_admission_decision", zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(ctx, emitTimeout)
	defer cancel()

	s.mu.Lock()
	defer s.mu.Unlock()

	err = s.ch.PublishWithContext(ctx,
		"",            // default exchange
		decisionQueue, // routing key
		false,         // mandatory
		false,         // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
	if err != nil {
		s.log.Warn("failed_to_emit_admission_decision",
			zap.String("sink", "rabbitmq"),
			zap.Error(err),
		)
	}
}

// Close closes the channel and connection.
func (s *AMQPSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ch.Close(); err != nil {
		_ = s.conn.Close()
		return err
	}
	return s.conn.Close()
}
