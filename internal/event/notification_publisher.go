package event

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	evaluationExchange          = "rfp.events"
	evaluationCompletedRouteKey = "evaluation.completed"
)

// EvaluationCompletedEvent is published after a run's results are persisted.
type EvaluationCompletedEvent struct {
	ProjectID      uuid.UUID   `json:"project_id"`
	ProposalIDs    []uuid.UUID `json:"proposal_ids"`
	EvaluationMode string      `json:"evaluation_mode"`
	TopProposalID  uuid.UUID   `json:"top_proposal_id"`
	CompletedAt    time.Time   `json:"completed_at"`
}

// NotificationPublisher publishes evaluation lifecycle events. All publishing
// is best-effort; a broker failure never fails the evaluation run.
type NotificationPublisher struct {
	conn *RabbitMQConnection
}

func NewNotificationPublisher(conn *RabbitMQConnection) *NotificationPublisher {
	return &NotificationPublisher{conn: conn}
}

// PublishEvaluationCompleted emits the completed event for a run.
func (p *NotificationPublisher) PublishEvaluationCompleted(ctx context.Context, event EvaluationCompletedEvent) {
	if p == nil || p.conn == nil || p.conn.Channel == nil {
		return
	}

	body, err := json.Marshal(event)
	if err != nil {
		slog.Warn("Failed to marshal evaluation completed event", "project_id", event.ProjectID, "error", err)
		return
	}

	err = p.conn.Channel.ExchangeDeclare(
		evaluationExchange,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		slog.Warn("Failed to declare events exchange", "error", err)
		return
	}

	err = p.conn.Channel.PublishWithContext(ctx,
		evaluationExchange,
		evaluationCompletedRouteKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Body:         body,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		slog.Warn("Failed to publish evaluation completed event",
			"project_id", event.ProjectID,
			"error", err)
		return
	}

	slog.Info("Published evaluation completed event",
		"project_id", event.ProjectID,
		"proposal_count", len(event.ProposalIDs))
}
