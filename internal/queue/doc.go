// Package queue предоставляет интеграцию с RabbitMQ для диспетчеризации
// процессоров между процессами.
//
// Включает:
//   - connection.go — управление подключением с auto-reconnect
//   - publisher.go  — публикация задач диспетчеризации процессоров
//   - consumer.go   — потребление задач из evaluation_queue
//   - topology.go   — декларация exchanges, очереди и лестницы retry-задержек
package queue
