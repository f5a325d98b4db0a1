package queue

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchange — тип для имени обменника.
type Exchange string

// Queue — тип для имени очереди.
type Queue string

// RoutingKey — тип для ключа маршрутизации.
type RoutingKey string

// Exchanges.
const (
	ExchangeTasks Exchange = "eventflow.tasks"
	ExchangeDLQ   Exchange = "eventflow.dlq"
)

// RoutingKeyDispatch — единственный routing key для диспетчеризации
// процессоров в evaluation_queue.
const RoutingKeyDispatch RoutingKey = "dispatch"

// RoutingKeyDLQ — routing key сообщений, исчерпавших все попытки.
const RoutingKeyDLQ RoutingKey = "exhausted"

// QueueEvaluation — единственная очередь, которую слушает worker.
const QueueEvaluation Queue = "evaluation_queue"

// QueueDLQ — очередь для сообщений, исчерпавших 5 попыток (§7). Обрабатывается
// вручную, никогда не переигрывается автоматически.
const QueueDLQ Queue = "evaluation_queue.dlq"

// retryLadder описывает лестницу очередей отложенной передоставки для
// RETRIABLE_ERROR backoff: каждая ступень хранит сообщение TTL миллисекунд,
// затем dead-letter'ит его обратно в evaluation_queue. Та же схема, что
// teacher использует для единственного DLQ-перехода tasks.ready, но здесь
// выстроена в цепочку ступеней вместо одного прыжка.
var retryLadder = []struct {
	queue  Queue
	ttlMs  int
}{
	{"evaluation_queue.retry.1", 10_000},
	{"evaluation_queue.retry.2", 20_000},
	{"evaluation_queue.retry.3", 40_000},
	{"evaluation_queue.retry.4", 80_000},
	{"evaluation_queue.retry.5", 160_000},
}

// RetryQueueForAttempt возвращает имя очереди задержки для данной попытки
// (1-indexed) и ok=false, если attempt выходит за пределы лестницы —
// вызывающий код в этом случае должен направить сообщение в DLQ.
func RetryQueueForAttempt(attempt int) (Queue, bool) {
	if attempt < 1 || attempt > len(retryLadder) {
		return "", false
	}
	return retryLadder[attempt-1].queue, true
}

func SetupTopology(ctx context.Context, conn *Connection) error {
	return conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		if err := declareExchanges(ch); err != nil {
			return err
		}
		if err := declareQueues(ch); err != nil {
			return err
		}
		if err := bindQueues(ch); err != nil {
			return err
		}
		return nil
	})
}

// declareExchanges создаёт обменники.
func declareExchanges(ch *amqp.Channel) error {
	exchanges := []Exchange{ExchangeTasks, ExchangeDLQ}
	for _, ex := range exchanges {
		err := ch.ExchangeDeclare(
			string(ex), // name
			"direct",   // type
			true,       // durable
			false,      // auto-deleted
			false,      // internal
			false,      // no-wait
			nil,        // arguments
		)
		if err != nil {
			return fmt.Errorf("declare exchange %s: %w", ex, err)
		}
	}
	return nil
}

// declareQueues создаёт evaluation_queue, лестницу retry-очередей и DLQ.
func declareQueues(ch *amqp.Channel) error {
	evaluationArgs := amqp.Table{
		"x-dead-letter-exchange":    string(ExchangeDLQ),
		"x-dead-letter-routing-key": string(RoutingKeyDLQ),
	}
	if _, err := ch.QueueDeclare(
		string(QueueEvaluation),
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		evaluationArgs,
	); err != nil {
		return fmt.Errorf("declare queue %s: %w", QueueEvaluation, err)
	}

	for _, step := range retryLadder {
		args := amqp.Table{
			"x-dead-letter-exchange":    string(ExchangeTasks),
			"x-dead-letter-routing-key": string(RoutingKeyDispatch),
			"x-message-ttl":             int32(step.ttlMs),
		}
		if _, err := ch.QueueDeclare(
			string(step.queue),
			true,
			false,
			false,
			false,
			args,
		); err != nil {
			return fmt.Errorf("declare retry queue %s: %w", step.queue, err)
		}
	}

	if _, err := ch.QueueDeclare(
		string(QueueDLQ),
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		return fmt.Errorf("declare queue %s: %w", QueueDLQ, err)
	}

	return nil
}

// bindQueues привязывает очереди к обменникам. Retry-ступени привязаны к
// eventflow.tasks по ключам retry.1..retry.5; обычная диспетчеризация идёт
// по ключу dispatch, поэтому в них попадают только через явную публикацию
// с ключом retry.N при планировании retry.
func bindQueues(ch *amqp.Channel) error {
	bindings := []struct {
		queue      Queue
		routingKey RoutingKey
		exchange   Exchange
	}{
		{QueueEvaluation, RoutingKeyDispatch, ExchangeTasks},
		{QueueDLQ, RoutingKeyDLQ, ExchangeDLQ},
	}

	for _, b := range bindings {
		err := ch.QueueBind(
			string(b.queue),
			string(b.routingKey),
			string(b.exchange),
			false,
			nil,
		)
		if err != nil {
			return fmt.Errorf("bind queue %s to %s: %w", b.queue, b.exchange, err)
		}
	}

	for i, step := range retryLadder {
		rk := RoutingKey(fmt.Sprintf("retry.%d", i+1))
		if err := ch.QueueBind(string(step.queue), string(rk), string(ExchangeTasks), false, nil); err != nil {
			return fmt.Errorf("bind retry queue %s: %w", step.queue, err)
		}
	}

	return nil
}

// TopologyInfo возвращает описание топологии для логирования при старте.
func TopologyInfo() string {
	return `
  EventFlow RabbitMQ Topology:

    eventflow.tasks (direct)
    ├── evaluation_queue [routing: dispatch]
    │       Consumer: eventflow-worker
    │       dead-letters to eventflow.dlq on reject/nack(requeue=false)
    ├── evaluation_queue.retry.1..5 [routing: retry.1..5]
    │       TTL 10s/20s/40s/80s/160s, dead-letters back to evaluation_queue
    └── (no direct consumer — delay-then-redeliver only)

    eventflow.dlq (direct)
    └── evaluation_queue.dlq [routing: exhausted]
            Manual processing only
  `
}
