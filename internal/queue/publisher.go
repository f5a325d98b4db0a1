package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// MessageType — тип сообщения в очереди.
type MessageType string

const (
	MessageTypeDispatch MessageType = "processor.dispatch"
)

// Publisher публикует задачи диспетчеризации процессоров в RabbitMQ.
type Publisher struct {
	conn   *Connection
	logger *slog.Logger
}

// NewPublisher создаёт новый Publisher.
func NewPublisher(conn *Connection, logger *slog.Logger) *Publisher {
	return &Publisher{conn: conn, logger: logger}
}

// Message — конверт сообщения.
type Message struct {
	ID        string      `json:"id"`
	Type      MessageType `json:"type"`
	Payload   any         `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

// DispatchPayload — контракт диспетчеризации процессора: имя процессора,
// flow, к которому он относится, корневые аргументы запуска и собранные
// результаты предшественников.
type DispatchPayload struct {
	ProcessorName string         `json:"processor_name"`
	FlowID        uuid.UUID      `json:"flow_id"`
	RootArguments map[string]any `json:"root_arguments"`
	Inputs        map[string]any `json:"inputs"`
	Attempt       int            `json:"attempt"`
}

// Publish публикует сообщение в указанный exchange с routing key.
func (p *Publisher) Publish(ctx context.Context, exchange Exchange, routingKey RoutingKey, msg *Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	return p.conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		err := ch.PublishWithContext(
			ctx,
			string(exchange),
			string(routingKey),
			false,
			false,
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				MessageId:    msg.ID,
				Timestamp:    msg.Timestamp,
				Body:         body,
			},
		)
		if err != nil {
			return fmt.Errorf("publish to %s/%s: %w", exchange, routingKey, err)
		}

		p.logger.Debug("published message",
			"exchange", exchange,
			"routing_key", routingKey,
			"message_id", msg.ID,
			"type", msg.Type,
		)
		return nil
	})
}

// Enqueue публикует диспетчеризацию процессора на основную очередь
// evaluation_queue (попытка 1). Это реализация абстрактного
// Enqueue(queue_name, task_body) — единственная очередь, единственный
// routing key, дифференциация по содержимому payload, а не по topology.
func (p *Publisher) Enqueue(ctx context.Context, processorName string, flowID uuid.UUID, rootArgs, inputs map[string]any) error {
	msg := &Message{
		ID:   uuid.New().String(),
		Type: MessageTypeDispatch,
		Payload: DispatchPayload{
			ProcessorName: processorName,
			FlowID:        flowID,
			RootArguments: rootArgs,
			Inputs:        inputs,
			Attempt:       1,
		},
		Timestamp: time.Now(),
	}
	return p.Publish(ctx, ExchangeTasks, RoutingKeyDispatch, msg)
}

// EnqueueRetry переопубликовывает диспетчеризацию процессора на ступень
// лестницы задержек, соответствующую failedAttempt (1-indexed: какая по
// счёту попытка только что провалилась транзиентно). failedAttempt=1
// маршрутизирует на retry.1 (10s), т.е. самую первую провалившуюся
// попытку, а не вторую — тот же счётчик, что нёс провалившийся
// DispatchPayload.Attempt. Переопубликованное сообщение несёт
// Attempt=failedAttempt+1 для следующего вызова Dispatch. Если
// failedAttempt выходит за пределы лестницы, сообщение направляется в DLQ
// (исчерпаны все 5 попыток, §7).
func (p *Publisher) EnqueueRetry(ctx context.Context, processorName string, flowID uuid.UUID, rootArgs, inputs map[string]any, failedAttempt int) error {
	msg := &Message{
		ID:   uuid.New().String(),
		Type: MessageTypeDispatch,
		Payload: DispatchPayload{
			ProcessorName: processorName,
			FlowID:        flowID,
			RootArguments: rootArgs,
			Inputs:        inputs,
			Attempt:       failedAttempt + 1,
		},
		Timestamp: time.Now(),
	}

	if rk, ok := retryRoutingKey(failedAttempt); ok {
		return p.Publish(ctx, ExchangeTasks, rk, msg)
	}

	p.logger.Warn("retriable error exhausted all attempts, routing to dlq",
		"processor_name", processorName, "flow_id", flowID, "attempt", failedAttempt)
	return p.Publish(ctx, ExchangeDLQ, RoutingKeyDLQ, msg)
}

func retryRoutingKey(attempt int) (RoutingKey, bool) {
	if _, ok := RetryQueueForAttempt(attempt); !ok {
		return "", false
	}
	return RoutingKey(fmt.Sprintf("retry.%d", attempt)), true
}

// PublishJSON публикует произвольный JSON payload, не обязанный совпадать с
// DispatchPayload. Termination-процессоры через него не идут: AbortFlow
// ставит их в очередь через Enqueue с пустыми inputs.
func (p *Publisher) PublishJSON(ctx context.Context, exchange Exchange, routingKey RoutingKey, msgType MessageType, payload any) error {
	msg := &Message{
		ID:        uuid.New().String(),
		Type:      msgType,
		Payload:   payload,
		Timestamp: time.Now(),
	}
	return p.Publish(ctx, exchange, routingKey, msg)
}
